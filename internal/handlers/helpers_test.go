package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

type routable interface {
	Routes(r *mux.Router)
}

// serve mounts h under prefix and runs one request through it.
func serve(h routable, prefix, method, target string, body []byte) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	h.Routes(router.PathPrefix(prefix).Subrouter())

	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func cursor(ns string, docs ...bson.D) bson.D {
	return mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, docs...)
}

// countOf answers a CountDocuments call.
func countOf(ns string, n int32) bson.D {
	return cursor(ns, bson.D{{Key: "n", Value: n}})
}

// totalOf answers the count execution of an aggregate pipeline.
func totalOf(ns string, n int32) bson.D {
	return cursor(ns, bson.D{{Key: "total", Value: n}})
}

func written(n, modified int32) bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "n", Value: n}, bson.E{Key: "nModified", Value: modified})
}

func counterValue(name string, seq int64) bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
		{Key: "_id", Value: name},
		{Key: "seq", Value: seq},
	}})
}

func storeFailed() bson.D {
	return mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Name: "BadValue", Message: "store rejected the command"})
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}
