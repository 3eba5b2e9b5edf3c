package utils

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParseID reads an integer id path segment. A leading ':' is tolerated
// for clients that send the route placeholder literally, e.g. "/:42".
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(raw, ":"), 10, 64)
	if err != nil {
		return 0, errors.Errorf("invalid id %q: must be an integer", raw)
	}
	return id, nil
}

// ParseOpaqueID reads an id that may be an integer, an ObjectID or any
// other string.
func ParseOpaqueID(raw string) interface{} {
	raw = strings.TrimPrefix(raw, ":")
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return id
	}
	if oid, err := primitive.ObjectIDFromHex(raw); err == nil {
		return oid
	}
	return raw
}

// PathParam strips the ':' placeholder prefix from a non-numeric segment.
func PathParam(raw string) string {
	return strings.TrimPrefix(raw, ":")
}
