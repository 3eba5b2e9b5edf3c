package handlers

import (
	"context"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Leomister1233/Backend/internal/constants"
	"github.com/Leomister1233/Backend/internal/db"
	"github.com/Leomister1233/Backend/internal/geo"
	"github.com/Leomister1233/Backend/internal/models"
	"github.com/Leomister1233/Backend/internal/query"
	"github.com/Leomister1233/Backend/internal/utils"
)

const (
	defaultLivrariaLimit = 10
	booksPerLivraria     = 5
)

// LivrariaHandler serves the bookshop dataset. Listings that need exact
// polygon or route geometry read the whole collection and filter in
// process; that is fine for a few hundred shops and does not scale past it.
type LivrariaHandler struct {
	Collection     *mongo.Collection
	BookCollection *mongo.Collection
	AuditLogger    utils.AuditLogger
	Log            zerolog.Logger
	// Shuffle orders the book pool before each shop takes its share.
	Shuffle func(n int, swap func(i, j int))
}

func NewLivrariaHandler(c db.Collections, audit utils.AuditLogger, log zerolog.Logger) *LivrariaHandler {
	return &LivrariaHandler{
		Collection:     c.Livrarias,
		BookCollection: c.Books,
		AuditLogger:    audit,
		Log:            log,
		Shuffle:        rand.Shuffle,
	}
}

func (h *LivrariaHandler) Routes(r *mux.Router) {
	r.HandleFunc("", h.GetLivrarias).Methods("GET")
	r.HandleFunc("/", h.GetLivrarias).Methods("GET")
	r.HandleFunc("/addbooks", h.AssignBooks).Methods("POST")
	r.HandleFunc("/getbooks/{id}", h.GetLivrariaBooks).Methods("GET")
	r.HandleFunc("/locatelivrarias", h.Locate).Methods("GET")
	r.HandleFunc("/countlivrarias", h.CountNearby).Methods("GET")
	r.HandleFunc("/livrarias_em_rota", h.InRouteArea).Methods("GET")
	r.HandleFunc("/check-point", h.CheckPoint).Methods("GET")
	r.HandleFunc("/perto", h.NearRoute).Methods("POST")
}

// GET /livrarias
func (h *LivrariaHandler) GetLivrarias(w http.ResponseWriter, r *http.Request) {
	listRaw(h.Log, h.Collection, "Error retrieving livrarias")(w, r)
}

func (h *LivrariaHandler) all(ctx context.Context) ([]models.Livraria, error) {
	cursor, err := h.Collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, errors.Wrap(err, "find livrarias")
	}
	defer cursor.Close(ctx)

	livrarias := []models.Livraria{}
	if err := cursor.All(ctx, &livrarias); err != nil {
		return nil, errors.Wrap(err, "decode livrarias")
	}
	return livrarias, nil
}

// POST /livrarias/addbooks
//
// Every shop gets up to booksPerLivraria random book snapshots. Shops are
// updated one at a time; a failure part way leaves the earlier shops
// updated and is reported as a 500.
func (h *LivrariaHandler) AssignBooks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	bookCursor, err := h.BookCollection.Find(ctx, bson.M{})
	if err != nil {
		storeFailure(h.Log, w, r, "Error reading books", err)
		return
	}
	books := []models.Book{}
	err = bookCursor.All(ctx, &books)
	_ = bookCursor.Close(ctx)
	if err != nil {
		storeFailure(h.Log, w, r, "Error reading books", err)
		return
	}

	pool := make([]models.BookSnapshot, len(books))
	for i, b := range books {
		pool[i] = b.Snapshot()
	}

	livrarias, err := h.all(ctx)
	if err != nil {
		storeFailure(h.Log, w, r, "Error reading livrarias", err)
		return
	}

	updated := []interface{}{}
	for _, l := range livrarias {
		h.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
		picked := make([]models.BookSnapshot, min(booksPerLivraria, len(pool)))
		copy(picked, pool)

		result, err := h.Collection.UpdateOne(ctx,
			bson.M{"_id": l.ID},
			bson.M{"$set": bson.M{"properties.books": picked}},
		)
		if err != nil {
			h.Log.Error().Err(err).Int("updated", len(updated)).Msg("book assignment stopped part way")
			storeFailure(h.Log, w, r, "Error assigning books", err)
			return
		}
		if result.ModifiedCount > 0 {
			updated = append(updated, l.ID)
		}
	}

	verified := []models.Livraria{}
	if len(updated) > 0 {
		cursor, err := h.Collection.Find(ctx, bson.M{"_id": bson.M{"$in": updated}})
		if err != nil {
			storeFailure(h.Log, w, r, "Error reading updated livrarias", err)
			return
		}
		err = cursor.All(ctx, &verified)
		_ = cursor.Close(ctx)
		if err != nil {
			storeFailure(h.Log, w, r, "Error reading updated livrarias", err)
			return
		}
	}

	h.AuditLogger.Log(ctx, models.LivrariaEntity, constants.AssignBooks, bson.M{"updated": updated})

	utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message":          "Random books assigned to livrarias",
		"updatedLivrarias": verified,
	})
}

type livrariaBooks struct {
	LivrariaID   interface{}           `json:"livrariaId"`
	LivrariaName string                `json:"livrariaName"`
	Pagination   query.Envelope        `json:"pagination"`
	Books        []models.BookSnapshot `json:"books"`
}

// GET /livrarias/getbooks/{id}?page&limit
func (h *LivrariaHandler) GetLivrariaBooks(w http.ResponseWriter, r *http.Request) {
	id := utils.ParseOpaqueID(mux.Vars(r)["id"])
	params := query.ParseParams(r.URL.Query(), query.PageKey, query.LimitKey, defaultLivrariaLimit)

	var livraria models.Livraria
	if err := h.Collection.FindOne(r.Context(), bson.M{"_id": id}).Decode(&livraria); err != nil {
		if isNotFound(err) {
			utils.JSONError(w, "Livraria not found", http.StatusNotFound)
			return
		}
		storeFailure(h.Log, w, r, "Error retrieving livraria", err)
		return
	}

	books := livraria.Properties.Books
	if books == nil {
		books = []models.BookSnapshot{}
	}

	utils.WriteJSON(w, http.StatusOK, livrariaBooks{
		LivrariaID:   livraria.ID,
		LivrariaName: livraria.Properties.Name,
		Pagination:   query.NewEnvelope(int64(len(books)), params, query.RequestLinker(r, query.PageKey, query.LimitKey)),
		Books:        query.Window(books, params),
	})
}

type point struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

func toPoint(p orb.Point) point {
	return point{Longitude: p.Lon(), Latitude: p.Lat()}
}

func floatParam(values url.Values, key string, def float64) (float64, error) {
	raw := values.Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.Errorf("%s must be a number", key)
	}
	return v, nil
}

// pointParam reads longitude/latitude, defaulting to def.
func pointParam(values url.Values, def orb.Point) (orb.Point, error) {
	lon, err := floatParam(values, "longitude", def.Lon())
	if err != nil {
		return orb.Point{}, err
	}
	lat, err := floatParam(values, "latitude", def.Lat())
	if err != nil {
		return orb.Point{}, err
	}
	if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		return orb.Point{}, errors.New("longitude must be in [-180, 180] and latitude in [-90, 90]")
	}
	return orb.Point{lon, lat}, nil
}

func radiusParams(values url.Values) (orb.Point, float64, error) {
	center, err := pointParam(values, orb.Point{geo.DefaultLongitude, geo.DefaultLatitude})
	if err != nil {
		return orb.Point{}, 0, err
	}
	radius, err := floatParam(values, "radius", geo.DefaultRadius)
	if err != nil {
		return orb.Point{}, 0, err
	}
	if radius < 0 {
		return orb.Point{}, 0, errors.New("radius must not be negative")
	}
	return center, radius, nil
}

type livrariaPage struct {
	Pagination query.Envelope    `json:"pagination"`
	Center     *point            `json:"center,omitempty"`
	Radius     *float64          `json:"radius,omitempty"`
	Livrarias  []models.Livraria `json:"livrarias"`
}

// GET /livrarias/locatelivrarias?longitude&latitude&radius&page&limit
//
// The radius is in coordinate degrees, matching the flat 2d index.
func (h *LivrariaHandler) Locate(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	center, radius, err := radiusParams(values)
	if err != nil {
		utils.JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	params := query.ParseParams(values, query.PageKey, query.LimitKey, defaultLivrariaLimit)

	livrarias := []models.Livraria{}
	total, err := query.FindPage(r.Context(), h.Collection,
		geo.RadiusFilter(geo.CoordinatesField, center, radius),
		bson.D{{Key: "_id", Value: 1}}, params, &livrarias)
	if err != nil {
		storeFailure(h.Log, w, r, "Error locating livrarias", err)
		return
	}

	c := toPoint(center)
	utils.WriteJSON(w, http.StatusOK, livrariaPage{
		Pagination: query.NewEnvelope(total, params, query.RequestLinker(r, query.PageKey, query.LimitKey)),
		Center:     &c,
		Radius:     &radius,
		Livrarias:  livrarias,
	})
}

// GET /livrarias/countlivrarias?longitude&latitude&radius
func (h *LivrariaHandler) CountNearby(w http.ResponseWriter, r *http.Request) {
	center, radius, err := radiusParams(r.URL.Query())
	if err != nil {
		utils.JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	count, err := h.Collection.CountDocuments(r.Context(), geo.RadiusFilter(geo.CoordinatesField, center, radius))
	if err != nil {
		storeFailure(h.Log, w, r, "Error counting livrarias", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"longitude": center.Lon(),
		"latitude":  center.Lat(),
		"radius":    radius,
		"count":     count,
	})
}

// GET /livrarias/livrarias_em_rota?page&limit
func (h *LivrariaHandler) InRouteArea(w http.ResponseWriter, r *http.Request) {
	params := query.ParseParams(r.URL.Query(), query.PageKey, query.LimitKey, defaultLivrariaLimit)

	livrarias, err := h.all(r.Context())
	if err != nil {
		storeFailure(h.Log, w, r, "Error retrieving livrarias", err)
		return
	}

	inside := query.Filter(livrarias, func(l models.Livraria) bool {
		p, ok := geo.PointFromCoordinates(l.Geometry.Coordinates)
		return ok && geo.Contains(geo.RouteArea, p)
	})

	utils.WriteJSON(w, http.StatusOK, livrariaPage{
		Pagination: query.NewEnvelope(int64(len(inside)), params, query.RequestLinker(r, query.PageKey, query.LimitKey)),
		Livrarias:  query.Window(inside, params),
	})
}

// GET /livrarias/check-point?longitude&latitude
func (h *LivrariaHandler) CheckPoint(w http.ResponseWriter, r *http.Request) {
	p, err := pointParam(r.URL.Query(), geo.CheckPoint)
	if err != nil {
		utils.JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"point":  toPoint(p),
		"inside": geo.Contains(geo.RouteArea, p),
	})
}

type NearRouteRequest struct {
	Route         [][]float64 `json:"rota"`
	DistanceLimit *float64    `json:"distanciaLimite"`
}

type nearLivraria struct {
	models.Livraria
	DistanceKm float64 `json:"distanciaKm"`
}

// POST /livrarias/perto?page&limit
//
// Shops within distanciaLimite kilometres of the route, in store order.
func (h *LivrariaHandler) NearRoute(w http.ResponseWriter, r *http.Request) {
	var req NearRouteRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	route := geo.Route(req.Route)
	if len(route) < 2 {
		utils.JSONError(w, "rota must hold at least two [longitude, latitude] points", http.StatusBadRequest)
		return
	}
	if req.DistanceLimit == nil || *req.DistanceLimit < 0 {
		utils.JSONError(w, "distanciaLimite must be a non-negative number of kilometres", http.StatusBadRequest)
		return
	}
	params := query.ParseParams(r.URL.Query(), query.PageKey, query.LimitKey, defaultLivrariaLimit)

	livrarias, err := h.all(r.Context())
	if err != nil {
		storeFailure(h.Log, w, r, "Error retrieving livrarias", err)
		return
	}

	near := []nearLivraria{}
	for _, l := range livrarias {
		p, ok := geo.PointFromCoordinates(l.Geometry.Coordinates)
		if !ok {
			continue
		}
		if d := geo.DistanceToRouteKm(route, p); d <= *req.DistanceLimit {
			near = append(near, nearLivraria{Livraria: l, DistanceKm: d})
		}
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"pagination": query.NewEnvelope(int64(len(near)), params, query.RequestLinker(r, query.PageKey, query.LimitKey)),
		"livrarias":  query.Window(near, params),
	})
}
