package utils

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Leomister1233/Backend/internal/models"
)

// AuditLogger records writes to the audit_logs collection. A nil
// Collection only logs. Audit failures never fail the request.
type AuditLogger struct {
	Collection *mongo.Collection
	Logger     zerolog.Logger
}

func (l *AuditLogger) Log(ctx context.Context, entity, action string, data any) error {
	entry := models.AuditLog{
		Timestamp: time.Now().UTC(),
		Entity:    entity,
		Action:    action,
		RequestID: RequestID(ctx),
		Data:      data,
	}

	l.Logger.Debug().Str("entity", entity).Str("action", action).Str("request_id", entry.RequestID).Msg("audit")
	if l.Collection == nil {
		return nil
	}

	if _, err := l.Collection.InsertOne(ctx, entry); err != nil {
		l.Logger.Error().Err(err).Str("entity", entity).Str("action", action).Msg("audit log insert failed")
		return errors.Wrap(err, "insert audit log")
	}
	return nil
}
