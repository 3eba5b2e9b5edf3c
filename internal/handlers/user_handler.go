package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Leomister1233/Backend/internal/constants"
	"github.com/Leomister1233/Backend/internal/db"
	"github.com/Leomister1233/Backend/internal/models"
	"github.com/Leomister1233/Backend/internal/query"
	"github.com/Leomister1233/Backend/internal/utils"
)

const (
	defaultUserLimit       = 20
	defaultUserReviewLimit = 3
	defaultJobLimit        = 10
)

type UserHandler struct {
	Collection  *mongo.Collection
	IDs         *db.Sequence
	AuditLogger utils.AuditLogger
	Log         zerolog.Logger
}

func NewUserHandler(c db.Collections, ids *db.Sequence, audit utils.AuditLogger, log zerolog.Logger) *UserHandler {
	return &UserHandler{Collection: c.Users, IDs: ids, AuditLogger: audit, Log: log}
}

func (h *UserHandler) Routes(r *mux.Router) {
	r.HandleFunc("", h.GetUsers).Methods("GET")
	r.HandleFunc("/", h.GetUsers).Methods("GET")
	r.HandleFunc("/getusers", h.GetUserPage).Methods("GET")
	r.HandleFunc("/user/{id}", h.GetUserReviews).Methods("GET")
	r.HandleFunc("/usersid", h.PeekNextID).Methods("GET")
	r.HandleFunc("/createusers", h.CreateUser).Methods("POST")
	r.HandleFunc("/deleteuser/{id}", h.DeleteUser).Methods("DELETE")
	r.HandleFunc("/users/job", h.GetReviewsPerJob).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateUser).Methods("PUT")
}

func (h *UserHandler) target() idTarget {
	return idTarget{
		coll:     h.Collection,
		entity:   models.UserEntity,
		notFound: "User not found",
		audit:    &h.AuditLogger,
		log:      h.Log,
	}
}

// GET /users
func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	listRaw(h.Log, h.Collection, "Error retrieving users")(w, r)
}

type userPage struct {
	Pagination  query.Envelope `json:"pagination"`
	TotalUsers  int64          `json:"totalUsers"`
	TotalPages  int64          `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
	Users       []models.User  `json:"users"`
}

// GET /users/getusers?page&limit
func (h *UserHandler) GetUserPage(w http.ResponseWriter, r *http.Request) {
	params := query.ParseParams(r.URL.Query(), query.PageKey, query.LimitKey, defaultUserLimit)

	users := []models.User{}
	total, err := query.FindPage(r.Context(), h.Collection, bson.M{}, nil, params, &users)
	if err != nil {
		storeFailure(h.Log, w, r, "Error retrieving users", err)
		return
	}

	env := query.NewEnvelope(total, params, query.RequestLinker(r, query.PageKey, query.LimitKey))
	utils.WriteJSON(w, http.StatusOK, userPage{
		Pagination:  env,
		TotalUsers:  env.Count,
		TotalPages:  env.Pages,
		CurrentPage: env.CurrentPage,
		Users:       users,
	})
}

type reviewedBook struct {
	Title     string `json:"title" bson:"title"`
	ISBN      string `json:"isbn" bson:"isbn"`
	Thumbnail string `json:"thumbnail" bson:"thumbnail"`
}

type joinedReview struct {
	BookID int64        `json:"book_id" bson:"book_id"`
	Score  int          `json:"score" bson:"score"`
	Book   reviewedBook `json:"book" bson:"book"`
}

type userReviews struct {
	Pagination query.Envelope `json:"pagination"`
	UserID     int64          `json:"userId"`
	Reviews    []joinedReview `json:"reviews"`
}

// GET /users/user/{id}?page&limit
//
// Reviews whose book no longer exists are skipped, and are not counted.
func (h *UserHandler) GetUserReviews(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParseID(mux.Vars(r)["id"])
	if err != nil {
		utils.JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	params := query.ParseParams(r.URL.Query(), query.PageKey, query.LimitKey, defaultUserReviewLimit)

	reviews := query.NewPipeline().
		Match(bson.M{"_id": id}).
		Unwind("$reviews").
		Lookup(models.BooksCollection, "reviews.book_id", "_id", "book_details").
		Unwind("$book_details").
		SortBy(bson.D{
			{Key: "reviews.score", Value: -1},
			{Key: "reviews.book_id", Value: 1},
		}).
		Project(bson.D{
			{Key: "_id", Value: 0},
			{Key: "book_id", Value: "$reviews.book_id"},
			{Key: "score", Value: "$reviews.score"},
			{Key: "book", Value: bson.D{
				{Key: "title", Value: "$book_details.title"},
				{Key: "isbn", Value: "$book_details.isbn"},
				{Key: "thumbnail", Value: "$book_details.thumbnailUrl"},
			}},
		})

	rows := []joinedReview{}
	total, err := query.Page(r.Context(), h.Collection, reviews, params, &rows)
	if err != nil {
		storeFailure(h.Log, w, r, "Error retrieving user reviews", err)
		return
	}
	if total == 0 {
		utils.JSONError(w, "No reviews found for this user", http.StatusNotFound)
		return
	}

	utils.WriteJSON(w, http.StatusOK, userReviews{
		Pagination: query.NewEnvelope(total, params, query.RequestLinker(r, query.PageKey, query.LimitKey)),
		UserID:     id,
		Reviews:    rows,
	})
}

// GET /users/usersid
//
// A preview only: the id returned here is not reserved, and two callers
// can see the same value. Creation allocates ids from the users sequence.
func (h *UserHandler) PeekNextID(w http.ResponseWriter, r *http.Request) {
	maxID, found, err := db.MaxID(r.Context(), h.Collection)
	if err != nil {
		storeFailure(h.Log, w, r, "Error retrieving", err)
		return
	}
	if !found {
		utils.JSONError(w, "No users found", http.StatusNotFound)
		return
	}
	utils.WriteJSON(w, http.StatusOK, maxID+1)
}

// POST /users/createusers
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var user models.User
	if err := utils.DecodeJSON(r, &user); err != nil {
		utils.JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if user.FirstName == "" {
		utils.JSONError(w, "first_name is required", http.StatusBadRequest)
		return
	}
	for i, review := range user.Reviews {
		if !models.IsValidScore(review.Score) {
			utils.JSONError(w, fmt.Sprintf("reviews[%d].score must be between %d and %d",
				i, models.MinReviewScore, models.MaxReviewScore), http.StatusBadRequest)
			return
		}
	}
	if user.Reviews == nil {
		user.Reviews = []models.Review{}
	}

	ctx := r.Context()
	id, err := h.IDs.Next(ctx)
	if err != nil {
		storeFailure(h.Log, w, r, "Error creating user", err)
		return
	}
	user.ID = id

	if _, err := h.Collection.InsertOne(ctx, user); err != nil {
		storeFailure(h.Log, w, r, "Error creating user", err)
		return
	}

	h.AuditLogger.Log(ctx, models.UserEntity, constants.Create, user)

	utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "User created successfully",
		"user":    user,
	})
}

// DELETE /users/deleteuser/{id}
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	h.target().deleteByID(w, r, mux.Vars(r)["id"], "User deleted successfully")
}

// PUT /users/{id}
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	h.target().updateByID(w, r, mux.Vars(r)["id"], "User updated successfully")
}

type jobReviews struct {
	Job         string `json:"_id" bson:"_id"`
	TotalReview int    `json:"totalreview" bson:"totalreview"`
}

type jobPage struct {
	Pagination query.Envelope `json:"pagination"`
	Results    []jobReviews   `json:"results"`
}

// GET /users/users/job?page&limit
//
// Jobs whose users have written no review do not appear, and are not
// counted.
func (h *UserHandler) GetReviewsPerJob(w http.ResponseWriter, r *http.Request) {
	params := query.ParseParams(r.URL.Query(), query.PageKey, query.LimitKey, defaultJobLimit)

	perJob := query.NewPipeline().
		Unwind("$reviews").
		Group("$job", bson.D{{Key: "totalreview", Value: bson.M{"$sum": 1}}}).
		SortBy(bson.D{{Key: "totalreview", Value: -1}})

	jobs := []jobReviews{}
	total, err := query.Page(r.Context(), h.Collection, perJob, params, &jobs)
	if err != nil {
		storeFailure(h.Log, w, r, "Error retrieving reviews per job", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, jobPage{
		Pagination: query.NewEnvelope(total, params, query.RequestLinker(r, query.PageKey, query.LimitKey)),
		Results:    jobs,
	})
}
