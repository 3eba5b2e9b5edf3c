package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuditLog records one write made through the API. Exported flips to true
// once the exporter has shipped the entry.
type AuditLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
	Entity    string             `bson:"entity" json:"entity"`
	Action    string             `bson:"action" json:"action"`
	RequestID string             `bson:"request_id,omitempty" json:"request_id,omitempty"`
	Data      any                `bson:"data" json:"data"`
	Exported  bool               `bson:"exported" json:"exported"`
}

const AuditLogsCollection = "audit_logs"
