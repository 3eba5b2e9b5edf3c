package handlers

import (
	"net/http"
	"time"

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
	defaultBookLimit     = 20
	defaultCategoryLimit = 10
	rankingPageSize      = 20
	fiveStarMinimum      = 5
)

type BookHandler struct {
	BookCollection    *mongo.Collection
	CommentCollection *mongo.Collection
	UserCollection    *mongo.Collection
	IDs               *db.Sequence
	AuditLogger       utils.AuditLogger
	Log               zerolog.Logger
}

func NewBookHandler(c db.Collections, ids *db.Sequence, audit utils.AuditLogger, log zerolog.Logger) *BookHandler {
	return &BookHandler{
		BookCollection:    c.Books,
		CommentCollection: c.Comments,
		UserCollection:    c.Users,
		IDs:               ids,
		AuditLogger:       audit,
		Log:               log,
	}
}

func (h *BookHandler) Routes(r *mux.Router) {
	r.HandleFunc("", h.GetBooks).Methods("GET")
	r.HandleFunc("/", h.GetBooks).Methods("GET")
	r.HandleFunc("/getbook", h.GetBookPage).Methods("GET")
	r.HandleFunc("/searchbook/{id}", h.SearchBook).Methods("GET")
	r.HandleFunc("/createbooks", h.CreateBook).Methods("POST")
	r.HandleFunc("/deletebook/{id}", h.DeleteBook).Methods("DELETE")
	r.HandleFunc("/comments", h.GetBooksByCommentCount).Methods("GET")
	r.HandleFunc("/search/categories/{category}", h.SearchByCategory).Methods("GET")
	r.HandleFunc("/top/{limit}", h.GetTopRated).Methods("GET")
	r.HandleFunc("/ratings/{order}", h.GetByReviewCount).Methods("GET")
	r.HandleFunc("/star", h.GetFiveStar).Methods("GET")
	r.HandleFunc("/book/{year}", h.GetByYear).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateBook).Methods("PUT")
}

func (h *BookHandler) target() idTarget {
	return idTarget{
		coll:     h.BookCollection,
		entity:   models.BookEntity,
		notFound: "Book not found",
		audit:    &h.AuditLogger,
		log:      h.Log,
	}
}

// GET /books
func (h *BookHandler) GetBooks(w http.ResponseWriter, r *http.Request) {
	listRaw(h.Log, h.BookCollection, "Error retrieving books")(w, r)
}

type bookPage struct {
	query.Envelope
	Books []models.Book `json:"books"`
}

// GET /books/getbook?page&limit
func (h *BookHandler) GetBookPage(w http.ResponseWriter, r *http.Request) {
	params := query.ParseParams(r.URL.Query(), query.PageKey, query.LimitKey, defaultBookLimit)

	books := []models.Book{}
	total, err := query.FindPage(r.Context(), h.BookCollection, bson.M{}, nil, params, &books)
	if err != nil {
		storeFailure(h.Log, w, r, "Error retrieving books", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, bookPage{
		Envelope: query.NewEnvelope(total, params, query.RequestLinker(r, query.PageKey, query.LimitKey)),
		Books:    books,
	})
}

type bookDetail struct {
	Pagination   bookDetailPagination `json:"pagination"`
	Book         models.Book          `json:"book"`
	AverageScore *float64             `json:"averageScore"`
	Reviews      []models.Review      `json:"reviews"`
	Comments     []models.Comment     `json:"comments"`
}

type bookDetailPagination struct {
	Reviews  query.Envelope `json:"reviews"`
	Comments query.Envelope `json:"comments"`
}

// GET /books/searchbook/{id}?page&limit&commentPage&commentLimit
func (h *BookHandler) SearchBook(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParseID(mux.Vars(r)["id"])
	if err != nil {
		utils.JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	ctx := r.Context()

	var book models.Book
	if err := h.BookCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&book); err != nil {
		if isNotFound(err) {
			utils.JSONError(w, "Book not found", http.StatusNotFound)
			return
		}
		storeFailure(h.Log, w, r, "Error retrieving book", err)
		return
	}

	values := r.URL.Query()
	reviewParams := query.ParseParams(values, query.PageKey, query.LimitKey, defaultBookLimit)
	commentParams := query.ParseParams(values, "commentPage", "commentLimit", defaultBookLimit)

	reviewsOfBook := query.NewPipeline().
		Unwind("$reviews").
		Match(bson.M{"reviews.book_id": id}).
		SortBy(bson.D{{Key: "reviews.review_date", Value: -1}}).
		ReplaceRoot("$reviews")

	reviews := []models.Review{}
	reviewTotal, err := query.Page(ctx, h.UserCollection, reviewsOfBook, reviewParams, &reviews)
	if err != nil {
		storeFailure(h.Log, w, r, "Error retrieving book reviews", err)
		return
	}

	// The average covers every review of the book, not just this page.
	var summary struct {
		AverageScore *float64 `bson:"averageScore"`
	}
	if _, err := query.Summarize(ctx, h.UserCollection, reviewsOfBook,
		bson.D{{Key: "averageScore", Value: bson.M{"$avg": "$reviews.score"}}}, &summary); err != nil {
		storeFailure(h.Log, w, r, "Error retrieving book reviews", err)
		return
	}

	comments := []models.Comment{}
	commentTotal, err := query.FindPage(ctx, h.CommentCollection, bson.M{"book_id": id},
		bson.D{{Key: "_id", Value: 1}}, commentParams, &comments)
	if err != nil {
		storeFailure(h.Log, w, r, "Error retrieving book comments", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, bookDetail{
		Pagination: bookDetailPagination{
			Reviews:  query.NewEnvelope(reviewTotal, reviewParams, query.RequestLinker(r, query.PageKey, query.LimitKey)),
			Comments: query.NewEnvelope(commentTotal, commentParams, query.RequestLinker(r, "commentPage", "commentLimit")),
		},
		Book:         book,
		AverageScore: summary.AverageScore,
		Reviews:      reviews,
		Comments:     comments,
	})
}

// POST /books/createbooks
func (h *BookHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var book models.Book
	if err := utils.DecodeJSON(r, &book); err != nil {
		utils.JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if book.Title == "" {
		utils.JSONError(w, "title is required", http.StatusBadRequest)
		return
	}
	if book.Authors == nil {
		book.Authors = []string{}
	}
	if book.Categories == nil {
		book.Categories = []string{}
	}

	ctx := r.Context()
	id, err := h.IDs.Next(ctx)
	if err != nil {
		storeFailure(h.Log, w, r, "Error creating book", err)
		return
	}
	book.ID = id

	if _, err := h.BookCollection.InsertOne(ctx, book); err != nil {
		storeFailure(h.Log, w, r, "Error creating book", err)
		return
	}

	h.AuditLogger.Log(ctx, models.BookEntity, constants.Create, book)

	utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Book created successfully",
		"book":    book,
	})
}

// DELETE /books/deletebook/{id}
func (h *BookHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	h.target().deleteByID(w, r, mux.Vars(r)["id"], "Book deleted successfully")
}

// PUT /books/{id}
func (h *BookHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	h.target().updateByID(w, r, mux.Vars(r)["id"], "Book updated successfully")
}

type pagedBooks[T any] struct {
	Pagination query.Envelope `json:"pagination"`
	Books      []T            `json:"books"`
}

type commentCount struct {
	ID           int64  `json:"_id" bson:"_id"`
	Title        string `json:"title" bson:"title"`
	CommentCount int    `json:"commentCount" bson:"commentCount"`
}

// GET /books/comments?page&limit
func (h *BookHandler) GetBooksByCommentCount(w http.ResponseWriter, r *http.Request) {
	params := query.ParseParams(r.URL.Query(), query.PageKey, query.LimitKey, defaultBookLimit)

	withComments := query.NewPipeline().
		Lookup(models.CommentsCollection, "_id", "book_id", "comments").
		AddFields(bson.D{{Key: "commentCount", Value: bson.M{"$size": "$comments"}}}).
		Match(bson.M{"commentCount": bson.M{"$gt": 0}}).
		SortBy(bson.D{{Key: "commentCount", Value: -1}}).
		Project(bson.D{{Key: "title", Value: 1}, {Key: "commentCount", Value: 1}})

	books := []commentCount{}
	total, err := query.Page(r.Context(), h.BookCollection, withComments, params, &books)
	if err != nil {
		storeFailure(h.Log, w, r, "Error retrieving books with comments", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, pagedBooks[commentCount]{
		Pagination: query.NewEnvelope(total, params, query.RequestLinker(r, query.PageKey, query.LimitKey)),
		Books:      books,
	})
}

// GET /books/search/categories/{category}?page&limit
func (h *BookHandler) SearchByCategory(w http.ResponseWriter, r *http.Request) {
	category := utils.PathParam(mux.Vars(r)["category"])
	params := query.ParseParams(r.URL.Query(), query.PageKey, query.LimitKey, defaultCategoryLimit)

	inCategory := query.NewPipeline().
		Match(bson.M{"categories": category}).
		SortBy(bson.D{{Key: "title", Value: 1}})

	books := []models.Book{}
	total, err := query.Page(r.Context(), h.BookCollection, inCategory, params, &books)
	if err != nil {
		storeFailure(h.Log, w, r, "Error searching books by category", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, pagedBooks[models.Book]{
		Pagination: query.NewEnvelope(total, params, query.RequestLinker(r, query.PageKey, query.LimitKey)),
		Books:      books,
	})
}

type scoredBook struct {
	models.Book  `bson:",inline"`
	AverageScore *float64 `json:"averageScore" bson:"averageScore"`
}

type rankedResults[T any] struct {
	Info    *query.Envelope `json:"info,omitempty"`
	Results []T             `json:"results"`
}

// GET /books/top/{limit}?page
//
// Up to rankingPageSize books are returned at once. A larger limit pages
// through the top limit books rankingPageSize at a time.
func (h *BookHandler) GetTopRated(w http.ResponseWriter, r *http.Request) {
	n, err := utils.ParseID(mux.Vars(r)["limit"])
	if err != nil || n <= 0 {
		utils.JSONError(w, "limit must be a positive integer", http.StatusBadRequest)
		return
	}
	ctx := r.Context()

	byScore := query.NewPipeline().
		AddFields(bson.D{{Key: "averageScore", Value: bson.M{"$avg": "$ratings"}}}).
		SortBy(bson.D{{Key: "averageScore", Value: -1}})

	books := []scoredBook{}
	if n <= rankingPageSize {
		if err := query.Collect(ctx, h.BookCollection, byScore.Limited(int(n)), &books); err != nil {
			storeFailure(h.Log, w, r, "Error retrieving top rated books", err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, rankedResults[scoredBook]{Results: books})
		return
	}

	params := query.Params{
		Page:  query.ParseParams(r.URL.Query(), query.PageKey, query.LimitKey, rankingPageSize).Page,
		Limit: rankingPageSize,
	}
	total, err := query.Page(ctx, h.BookCollection, byScore, params, &books)
	if err != nil {
		storeFailure(h.Log, w, r, "Error retrieving top rated books", err)
		return
	}

	if total > n {
		total = n
	}
	if remaining := total - params.Skip(); remaining < int64(len(books)) {
		if remaining < 0 {
			remaining = 0
		}
		books = books[:remaining]
	}

	env := query.NewEnvelope(total, params, query.RequestLinker(r, query.PageKey, ""))
	utils.WriteJSON(w, http.StatusOK, rankedResults[scoredBook]{Info: &env, Results: books})
}

type reviewCount struct {
	BookID      int64       `json:"bookId" bson:"bookId"`
	ReviewCount int         `json:"reviewCount" bson:"reviewCount"`
	BookDetails models.Book `json:"bookDetails" bson:"bookDetails"`
}

// GET /books/ratings/{order}
func (h *BookHandler) GetByReviewCount(w http.ResponseWriter, r *http.Request) {
	var direction int
	switch utils.PathParam(mux.Vars(r)["order"]) {
	case "asc":
		direction = 1
	case "desc":
		direction = -1
	default:
		utils.JSONError(w, "Invalid order. Use 'asc' or 'desc'.", http.StatusBadRequest)
		return
	}

	byReviews := query.NewPipeline().
		Unwind("$reviews").
		Group("$reviews.book_id", bson.D{{Key: "reviewCount", Value: bson.M{"$sum": 1}}}).
		Lookup(models.BooksCollection, "_id", "_id", "bookDetails").
		Unwind("$bookDetails").
		SortBy(bson.D{{Key: "reviewCount", Value: direction}}).
		Project(bson.D{
			{Key: "_id", Value: 0},
			{Key: "bookId", Value: "$_id"},
			{Key: "reviewCount", Value: 1},
			{Key: "bookDetails", Value: 1},
		})

	books := []reviewCount{}
	if err := query.Collect(r.Context(), h.UserCollection, byReviews.All(), &books); err != nil {
		storeFailure(h.Log, w, r, "Error retrieving books by review count", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, books)
}

type fiveStarCount struct {
	BookID          int64       `json:"bookId" bson:"bookId"`
	FiveStarReviews int         `json:"fiveStarReviews" bson:"fiveStarReviews"`
	BookDetails     models.Book `json:"bookDetails" bson:"bookDetails"`
}

// GET /books/star?page
//
// Books with more than fiveStarMinimum reviews scoring 5. Review groups
// whose book no longer exists are excluded from both the page and the
// count.
func (h *BookHandler) GetFiveStar(w http.ResponseWriter, r *http.Request) {
	params := query.Params{
		Page:  query.ParseParams(r.URL.Query(), query.PageKey, query.LimitKey, rankingPageSize).Page,
		Limit: rankingPageSize,
	}

	fiveStar := query.NewPipeline().
		Unwind("$reviews").
		Match(bson.M{"reviews.score": models.MaxReviewScore}).
		Group("$reviews.book_id", bson.D{{Key: "fiveStarReviews", Value: bson.M{"$sum": 1}}}).
		Match(bson.M{"fiveStarReviews": bson.M{"$gt": fiveStarMinimum}}).
		Lookup(models.BooksCollection, "_id", "_id", "bookDetails").
		Unwind("$bookDetails").
		SortBy(bson.D{{Key: "fiveStarReviews", Value: -1}}).
		Project(bson.D{
			{Key: "_id", Value: 0},
			{Key: "bookId", Value: "$_id"},
			{Key: "fiveStarReviews", Value: 1},
			{Key: "bookDetails", Value: 1},
		})

	books := []fiveStarCount{}
	total, err := query.Page(r.Context(), h.UserCollection, fiveStar, params, &books)
	if err != nil {
		storeFailure(h.Log, w, r, "Error retrieving five star books", err)
		return
	}

	env := query.NewEnvelope(total, params, query.RequestLinker(r, query.PageKey, ""))
	utils.WriteJSON(w, http.StatusOK, rankedResults[fiveStarCount]{Info: &env, Results: books})
}

// GET /books/book/{year}
func (h *BookHandler) GetByYear(w http.ResponseWriter, r *http.Request) {
	year, err := utils.ParseID(mux.Vars(r)["year"])
	if err != nil || year < 1 || year > 9998 {
		utils.JSONError(w, "Invalid year", http.StatusBadRequest)
		return
	}

	start := time.Date(int(year), time.January, 1, 0, 0, 0, 0, time.UTC)
	filter := bson.M{"publishedDate": bson.M{"$gte": start, "$lt": start.AddDate(1, 0, 0)}}

	cursor, err := h.BookCollection.Find(r.Context(), filter)
	if err != nil {
		storeFailure(h.Log, w, r, "Error retrieving books of the year", err)
		return
	}
	defer cursor.Close(r.Context())

	books := []models.Book{}
	if err := cursor.All(r.Context(), &books); err != nil {
		storeFailure(h.Log, w, r, "Error retrieving books of the year", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, books)
}
