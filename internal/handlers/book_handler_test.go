package handlers_test

import (
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/Leomister1233/Backend/internal/db"
	"github.com/Leomister1233/Backend/internal/handlers"
	"github.com/Leomister1233/Backend/internal/utils"
)

const booksNS = "test.books"

func bookHandler(mt *mtest.T) *handlers.BookHandler {
	return &handlers.BookHandler{
		BookCollection:    mt.Coll,
		CommentCollection: mt.Coll,
		UserCollection:    mt.Coll,
		IDs:               db.NewSequence(mt.Coll, "books"),
		AuditLogger:       utils.AuditLogger{Logger: zerolog.Nop()},
		Log:               zerolog.Nop(),
	}
}

func bookDoc(id int32, title string) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "title", Value: title},
		{Key: "authors", Value: bson.A{"W. Frank Ableson"}},
		{Key: "categories", Value: bson.A{"Java"}},
	}
}

func TestBookHandler_GetBookPage(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("middle page of 45 books", func(mt *mtest.T) {
		mt.AddMockResponses(
			cursor(booksNS, bookDoc(21, "Android in Action"), bookDoc(22, "Specification by Example")),
			countOf(booksNS, 45),
		)

		w := serve(bookHandler(mt), "/api/books", http.MethodGet, "/api/books/getbook?page=2", nil)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		body := decodeBody(t, w)
		assert.EqualValues(t, 45, body["count"])
		assert.EqualValues(t, 3, body["pages"])
		assert.EqualValues(t, 2, body["currentPage"])
		assert.Equal(t, "http://example.com/api/books/getbook?page=3&limit=20", body["next"])
		assert.Equal(t, "http://example.com/api/books/getbook?page=1&limit=20", body["prev"])
		assert.Len(t, body["books"], 2)
	})

	mt.Run("past the last page", func(mt *mtest.T) {
		mt.AddMockResponses(cursor(booksNS), countOf(booksNS, 45))

		w := serve(bookHandler(mt), "/api/books", http.MethodGet, "/api/books/getbook?page=9&limit=20", nil)

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, []interface{}{}, body["books"])
		assert.Nil(t, body["next"])
		assert.NotNil(t, body["prev"])
	})

	mt.Run("store failure", func(mt *mtest.T) {
		mt.AddMockResponses(storeFailed())

		w := serve(bookHandler(mt), "/api/books", http.MethodGet, "/api/books/getbook", nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "Error retrieving books", body["message"])
		assert.NotEmpty(t, body["error"])
	})
}

func TestBookHandler_GetBooks(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("raw listing", func(mt *mtest.T) {
		mt.AddMockResponses(cursor(booksNS, bookDoc(1, "Unlocking Android")))

		w := serve(bookHandler(mt), "/api/books", http.MethodGet, "/api/books", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Unlocking Android")
	})
}

func TestBookHandler_SearchBook(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("book with reviews and comments", func(mt *mtest.T) {
		mt.AddMockResponses(
			cursor(booksNS, bookDoc(1, "Unlocking Android")),
			cursor("test.users",
				bson.D{{Key: "book_id", Value: int32(1)}, {Key: "score", Value: int32(5)}},
				bson.D{{Key: "book_id", Value: int32(1)}, {Key: "score", Value: int32(3)}},
			),
			totalOf("test.users", 2),
			cursor("test.users", bson.D{{Key: "_id", Value: nil}, {Key: "averageScore", Value: 4.0}}),
			cursor("test.comments", bson.D{
				{Key: "_id", Value: int32(8)},
				{Key: "user_id", Value: int32(3)},
				{Key: "book_id", Value: int32(1)},
				{Key: "comment", Value: "Great read"},
			}),
			countOf("test.comments", 1),
		)

		w := serve(bookHandler(mt), "/api/books", http.MethodGet, "/api/books/searchbook/1", nil)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		body := decodeBody(t, w)
		assert.EqualValues(t, 4, body["averageScore"])
		assert.Len(t, body["reviews"], 2)
		assert.Len(t, body["comments"], 1)

		pagination := body["pagination"].(map[string]interface{})
		assert.EqualValues(t, 2, pagination["reviews"].(map[string]interface{})["count"])
		assert.EqualValues(t, 1, pagination["comments"].(map[string]interface{})["count"])
	})

	mt.Run("unknown book", func(mt *mtest.T) {
		mt.AddMockResponses(cursor(booksNS))

		w := serve(bookHandler(mt), "/api/books", http.MethodGet, "/api/books/searchbook/999", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Book not found", decodeBody(t, w)["message"])
	})

	mt.Run("id is not a number", func(mt *mtest.T) {
		w := serve(bookHandler(mt), "/api/books", http.MethodGet, "/api/books/searchbook/abc", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBookHandler_CreateBook(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("assigns the next id", func(mt *mtest.T) {
		mt.AddMockResponses(counterValue("books", 46), mtest.CreateSuccessResponse())

		payload := mustJSON(t, map[string]interface{}{"title": "Test Book", "isbn": "978-3-16-148410-0"})
		w := serve(bookHandler(mt), "/api/books", http.MethodPost, "/api/books/createbooks", payload)

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		body := decodeBody(t, w)
		assert.Equal(t, "Book created successfully", body["message"])
		book := body["book"].(map[string]interface{})
		assert.EqualValues(t, 46, book["_id"])
		assert.Equal(t, []interface{}{}, book["authors"])
	})

	mt.Run("title missing", func(mt *mtest.T) {
		w := serve(bookHandler(mt), "/api/books", http.MethodPost, "/api/books/createbooks", []byte("{}"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	mt.Run("malformed body", func(mt *mtest.T) {
		w := serve(bookHandler(mt), "/api/books", http.MethodPost, "/api/books/createbooks", []byte("{"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBookHandler_DeleteBook(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("deleted", func(mt *mtest.T) {
		mt.AddMockResponses(written(1, 0))

		w := serve(bookHandler(mt), "/api/books", http.MethodDelete, "/api/books/deletebook/7", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Book deleted successfully", decodeBody(t, w)["message"])
	})

	mt.Run("nonexistent id", func(mt *mtest.T) {
		mt.AddMockResponses(written(0, 0))

		w := serve(bookHandler(mt), "/api/books", http.MethodDelete, "/api/books/deletebook/99999", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Book not found", decodeBody(t, w)["message"])
	})

	mt.Run("placeholder prefix tolerated", func(mt *mtest.T) {
		mt.AddMockResponses(written(1, 0))

		w := serve(bookHandler(mt), "/api/books", http.MethodDelete, "/api/books/deletebook/:7", nil)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	mt.Run("invalid id", func(mt *mtest.T) {
		w := serve(bookHandler(mt), "/api/books", http.MethodDelete, "/api/books/deletebook/seven", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBookHandler_UpdateBook(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("updated", func(mt *mtest.T) {
		mt.AddMockResponses(written(1, 1))

		w := serve(bookHandler(mt), "/api/books", http.MethodPut, "/api/books/3", []byte(`{"title":"New title"}`))

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		body := decodeBody(t, w)
		assert.EqualValues(t, 1, body["matchedCount"])
		assert.EqualValues(t, 1, body["modifiedCount"])
	})

	mt.Run("only _id in body", func(mt *mtest.T) {
		w := serve(bookHandler(mt), "/api/books", http.MethodPut, "/api/books/3", []byte(`{"_id":4}`))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "No update fields provided", decodeBody(t, w)["message"])
	})

	mt.Run("unknown book", func(mt *mtest.T) {
		mt.AddMockResponses(written(0, 0))

		w := serve(bookHandler(mt), "/api/books", http.MethodPut, "/api/books/3", []byte(`{"title":"x"}`))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestBookHandler_Rankings(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("top N within one page", func(mt *mtest.T) {
		mt.AddMockResponses(cursor(booksNS,
			append(bookDoc(1, "A"), bson.E{Key: "averageScore", Value: 4.5}),
			append(bookDoc(2, "B"), bson.E{Key: "averageScore", Value: 4.0}),
		))

		w := serve(bookHandler(mt), "/api/books", http.MethodGet, "/api/books/top/2", nil)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		body := decodeBody(t, w)
		assert.Len(t, body["results"], 2)
		assert.NotContains(t, body, "info")
	})

	mt.Run("top N above one page is capped to N", func(mt *mtest.T) {
		docs := make([]bson.D, 0, 20)
		for i := int32(1); i <= 20; i++ {
			docs = append(docs, bookDoc(20+i, "B"))
		}
		mt.AddMockResponses(cursor(booksNS, docs...), totalOf(booksNS, 300))

		w := serve(bookHandler(mt), "/api/books", http.MethodGet, "/api/books/top/25?page=2", nil)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		body := decodeBody(t, w)
		assert.Len(t, body["results"], 5)
		info := body["info"].(map[string]interface{})
		assert.EqualValues(t, 25, info["count"])
		assert.EqualValues(t, 2, info["pages"])
		assert.Nil(t, info["next"])
	})

	mt.Run("bad top limit", func(mt *mtest.T) {
		w := serve(bookHandler(mt), "/api/books", http.MethodGet, "/api/books/top/many", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	mt.Run("ratings order must be asc or desc", func(mt *mtest.T) {
		w := serve(bookHandler(mt), "/api/books", http.MethodGet, "/api/books/ratings/sideways", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid order. Use 'asc' or 'desc'.", decodeBody(t, w)["message"])
	})

	mt.Run("five star page", func(mt *mtest.T) {
		mt.AddMockResponses(
			cursor("test.users", bson.D{
				{Key: "bookId", Value: int32(1)},
				{Key: "fiveStarReviews", Value: int32(9)},
				{Key: "bookDetails", Value: bookDoc(1, "A")},
			}),
			totalOf("test.users", 1),
		)

		w := serve(bookHandler(mt), "/api/books", http.MethodGet, "/api/books/star", nil)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		body := decodeBody(t, w)
		assert.Len(t, body["results"], 1)
		info := body["info"].(map[string]interface{})
		assert.EqualValues(t, 1, info["count"])
		assert.EqualValues(t, 1, info["pages"])
	})
}

func TestBookHandler_GetByYear(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("books of the year", func(mt *mtest.T) {
		mt.AddMockResponses(cursor(booksNS, bookDoc(1, "Unlocking Android")))

		w := serve(bookHandler(mt), "/api/books", http.MethodGet, "/api/books/book/2009", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Unlocking Android")
	})

	mt.Run("invalid year", func(mt *mtest.T) {
		w := serve(bookHandler(mt), "/api/books", http.MethodGet, "/api/books/book/20x9", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid year", decodeBody(t, w)["message"])
	})
}

func TestBookHandler_AuditFailureDoesNotFailRequest(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("delete still succeeds", func(mt *mtest.T) {
		h := bookHandler(mt)
		h.AuditLogger.Collection = mt.Coll
		mt.AddMockResponses(written(1, 0), storeFailed())

		w := serve(h, "/api/books", http.MethodDelete, "/api/books/deletebook/7", nil)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "Book deleted successfully", decodeBody(t, w)["message"])
	})

	mt.Run("create still succeeds", func(mt *mtest.T) {
		h := bookHandler(mt)
		h.AuditLogger.Collection = mt.Coll
		mt.AddMockResponses(counterValue("books", 47), mtest.CreateSuccessResponse(), storeFailed())

		w := serve(h, "/api/books", http.MethodPost, "/api/books/createbooks", []byte(`{"title":"Audited"}`))

		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	})
}
