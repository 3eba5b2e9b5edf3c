package handlers

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Leomister1233/Backend/internal/constants"
	"github.com/Leomister1233/Backend/internal/query"
	"github.com/Leomister1233/Backend/internal/utils"
)

const rawListLimit = 50

// storeFailure logs err and answers 500 with the raw cause in the body.
func storeFailure(log zerolog.Logger, w http.ResponseWriter, r *http.Request, message string, err error) {
	log.Error().Err(err).
		Str("path", r.URL.Path).
		Str("request_id", utils.RequestID(r.Context())).
		Msg(message)
	utils.StoreError(w, message, err)
}

// listRaw answers with the first rawListLimit documents of coll as stored.
func listRaw(log zerolog.Logger, coll *mongo.Collection, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docs := []bson.M{}
		if err := query.FindLimited(r.Context(), coll, bson.M{}, rawListLimit, &docs); err != nil {
			storeFailure(log, w, r, message, err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, docs)
	}
}

type idTarget struct {
	coll     *mongo.Collection
	entity   string
	notFound string
	audit    *utils.AuditLogger
	log      zerolog.Logger
}

// deleteByID removes the document with the given integer id. Nothing that
// references it is removed.
func (t idTarget) deleteByID(w http.ResponseWriter, r *http.Request, rawID, deleted string) {
	id, err := utils.ParseID(rawID)
	if err != nil {
		utils.JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := t.coll.DeleteOne(r.Context(), bson.M{"_id": id})
	if err != nil {
		storeFailure(t.log, w, r, "Delete failed", err)
		return
	}
	if result.DeletedCount == 0 {
		utils.JSONError(w, t.notFound, http.StatusNotFound)
		return
	}

	t.audit.Log(r.Context(), t.entity, constants.Delete, bson.M{"_id": id})
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": deleted})
}

// updateByID applies the request body as a field level $set. The _id
// field can not be changed.
func (t idTarget) updateByID(w http.ResponseWriter, r *http.Request, rawID, updated string) {
	id, err := utils.ParseID(rawID)
	if err != nil {
		utils.JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var fields map[string]interface{}
	if err := utils.DecodeJSON(r, &fields); err != nil {
		utils.JSONError(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	delete(fields, "_id")
	if len(fields) == 0 {
		utils.JSONError(w, "No update fields provided", http.StatusBadRequest)
		return
	}

	result, err := t.coll.UpdateOne(r.Context(), bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		storeFailure(t.log, w, r, "Update failed", err)
		return
	}
	if result.MatchedCount == 0 {
		utils.JSONError(w, t.notFound, http.StatusNotFound)
		return
	}

	t.audit.Log(r.Context(), t.entity, constants.Update, bson.M{"_id": id, "fields": fields})
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":       updated,
		"matchedCount":  result.MatchedCount,
		"modifiedCount": result.ModifiedCount,
	})
}

// isNotFound reports whether err, possibly wrapped, is a missing document.
func isNotFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
