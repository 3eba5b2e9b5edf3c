package utils_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Leomister1233/Backend/internal/utils"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{"42", 42, false},
		{":42", 42, false},
		{"-3", -3, false},
		{"abc", 0, true},
		{"", 0, true},
		{"4.2", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := utils.ParseID(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseOpaqueID(t *testing.T) {
	oid := primitive.NewObjectID()

	assert.Equal(t, int64(12), utils.ParseOpaqueID(":12"))
	assert.Equal(t, oid, utils.ParseOpaqueID(oid.Hex()))
	assert.Equal(t, "livraria-x", utils.ParseOpaqueID("livraria-x"))
}

func TestJSONError(t *testing.T) {
	w := httptest.NewRecorder()

	utils.JSONError(w, "Book not found", http.StatusNotFound)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"message":"Book not found"}`, w.Body.String())
}

func TestStoreError(t *testing.T) {
	w := httptest.NewRecorder()

	utils.StoreError(w, "Error retrieving books", errors.New("connection reset"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Error retrieving books","error":"connection reset"}`, w.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	var body struct {
		Title string `json:"title"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"Go"}`))
	require.NoError(t, utils.DecodeJSON(r, &body))
	assert.Equal(t, "Go", body.Title)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	assert.ErrorIs(t, utils.DecodeJSON(r, &body), utils.ErrEmptyBody)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":`))
	assert.Error(t, utils.DecodeJSON(r, &body))
}

func TestRequestID(t *testing.T) {
	ctx := utils.WithRequestID(context.Background(), "abc")

	assert.Equal(t, "abc", utils.RequestID(ctx))
	assert.Equal(t, "", utils.RequestID(context.Background()))
}

func TestAuditLogger_WithoutCollection(t *testing.T) {
	var l utils.AuditLogger

	assert.NoError(t, l.Log(context.Background(), "book", "CREATE", map[string]int{"_id": 1}))
}
