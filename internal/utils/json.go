package utils

import (
	"io"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrorBody is the shape of every error response.
type ErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func JSONError(w http.ResponseWriter, message string, status int) {
	WriteJSON(w, status, ErrorBody{Message: message})
}

// StoreError reports a failed store call as a 500 carrying the raw cause.
func StoreError(w http.ResponseWriter, message string, err error) {
	WriteJSON(w, http.StatusInternalServerError, ErrorBody{Message: message, Error: err.Error()})
}

var ErrEmptyBody = errors.New("request body is empty")

// DecodeJSON decodes the request body into v.
func DecodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return ErrEmptyBody
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return ErrEmptyBody
	}
	return errors.Wrap(err, "invalid JSON payload")
}
