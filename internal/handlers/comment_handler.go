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

const defaultCommentLimit = 10

type CommentHandler struct {
	Collection  *mongo.Collection
	IDs         *db.Sequence
	AuditLogger utils.AuditLogger
	Log         zerolog.Logger
}

func NewCommentHandler(c db.Collections, ids *db.Sequence, audit utils.AuditLogger, log zerolog.Logger) *CommentHandler {
	return &CommentHandler{Collection: c.Comments, IDs: ids, AuditLogger: audit, Log: log}
}

func (h *CommentHandler) Routes(r *mux.Router) {
	r.HandleFunc("", h.GetComments).Methods("GET")
	r.HandleFunc("/", h.GetComments).Methods("GET")
	r.HandleFunc("", h.CreateComment).Methods("POST")
	r.HandleFunc("/", h.CreateComment).Methods("POST")
	r.HandleFunc("/{id}", h.DeleteComment).Methods("DELETE")
}

type commentPage struct {
	Comments   []models.Comment `json:"comments"`
	Pagination query.Envelope   `json:"pagination"`
}

// GET /comments?page&limit
func (h *CommentHandler) GetComments(w http.ResponseWriter, r *http.Request) {
	params := query.ParseParams(r.URL.Query(), query.PageKey, query.LimitKey, defaultCommentLimit)

	comments := []models.Comment{}
	total, err := query.FindPage(r.Context(), h.Collection, bson.M{}, nil, params, &comments)
	if err != nil {
		storeFailure(h.Log, w, r, "Error retrieving comments", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, commentPage{
		Comments:   comments,
		Pagination: query.NewEnvelope(total, params, query.RequestLinker(r, query.PageKey, query.LimitKey)),
	})
}

type CreateCommentRequest struct {
	UserID  int64  `json:"user_id"`
	BookID  int64  `json:"book_id"`
	Comment string `json:"comment"`
}

// POST /comments
//
// book_id is stored as given; the book is not required to exist.
func (h *CommentHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req CreateCommentRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.BookID <= 0 || req.Comment == "" {
		utils.JSONError(w, "book_id and comment are required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	id, err := h.IDs.Next(ctx)
	if err != nil {
		storeFailure(h.Log, w, r, "Error adding comment", err)
		return
	}

	comment := models.Comment{
		ID:      id,
		UserID:  req.UserID,
		BookID:  req.BookID,
		Comment: req.Comment,
		Date:    models.NewCommentDate(time.Now()),
	}
	if _, err := h.Collection.InsertOne(ctx, comment); err != nil {
		storeFailure(h.Log, w, r, "Error adding comment", err)
		return
	}

	h.AuditLogger.Log(ctx, models.CommentEntity, constants.Create, comment)

	utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Comment added successfully",
		"comment": comment,
	})
}

// DELETE /comments/{id}
func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	idTarget{
		coll:     h.Collection,
		entity:   models.CommentEntity,
		notFound: "Comment not found",
		audit:    &h.AuditLogger,
		log:      h.Log,
	}.deleteByID(w, r, mux.Vars(r)["id"], "Comment deleted successfully")
}
