package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Leomister1233/Backend/internal/utils"
)

const welcome = "Welcome to the API! Use /api/books to access books data."

// RootRoutes registers the welcome page, the health probe and the JSON
// fallbacks for unknown routes and methods. mux does not run r.Use
// middleware on the fallbacks, so mws are applied to them here.
func RootRoutes(r *mux.Router, mws ...mux.MiddlewareFunc) {
	r.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, welcome)
	}).Methods("GET")
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, "OK")
	}).Methods("GET")

	r.NotFoundHandler = wrap(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		utils.JSONError(w, "Route not found", http.StatusNotFound)
	}), mws)
	r.MethodNotAllowedHandler = wrap(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		utils.JSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}), mws)
}

// wrap applies mws in mux order: the first one sees the request first.
func wrap(h http.Handler, mws []mux.MiddlewareFunc) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
