package daemon

import (
	"context"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Leomister1233/Backend/internal/models"
)

// LogExporter ships audit entries that have not been exported yet to the
// structured log and marks them exported.
type LogExporter struct {
	Coll *mongo.Collection
	Log  zerolog.Logger

	cron *cron.Cron
}

func NewLogExporter(coll *mongo.Collection, log zerolog.Logger) *LogExporter {
	return &LogExporter{Coll: coll, Log: log}
}

// Start runs ExportOnce on schedule, a cron spec such as "@every 30s".
func (l *LogExporter) Start(schedule string) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		n, err := l.ExportOnce(context.Background())
		if err != nil {
			l.Log.Error().Err(err).Msg("audit export failed")
			return
		}
		if n > 0 {
			l.Log.Debug().Int("entries", n).Msg("audit entries exported")
		}
	}); err != nil {
		return errors.Wrapf(err, "schedule audit export %q", schedule)
	}
	l.cron = c
	c.Start()
	return nil
}

// Stop halts the schedule and waits for a running export to finish.
func (l *LogExporter) Stop() {
	if l.cron == nil {
		return
	}
	<-l.cron.Stop().Done()
}

// ExportOnce exports every pending entry and returns how many were marked.
func (l *LogExporter) ExportOnce(ctx context.Context) (int, error) {
	cursor, err := l.Coll.Find(ctx, bson.M{"exported": false})
	if err != nil {
		return 0, errors.Wrap(err, "find pending audit logs")
	}
	var logs []models.AuditLog
	err = cursor.All(ctx, &logs)
	_ = cursor.Close(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "decode audit logs")
	}
	if len(logs) == 0 {
		return 0, nil
	}

	ids := make([]primitive.ObjectID, 0, len(logs))
	for _, entry := range logs {
		l.Log.Info().
			Str("audit_id", entry.ID.Hex()).
			Time("timestamp", entry.Timestamp).
			Str("entity", entry.Entity).
			Str("action", entry.Action).
			Str("request_id", entry.RequestID).
			Interface("data", entry.Data).
			Msg("audit")
		ids = append(ids, entry.ID)
	}

	if _, err := l.Coll.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$set": bson.M{"exported": true}},
	); err != nil {
		return 0, errors.Wrap(err, "mark audit logs exported")
	}
	return len(ids), nil
}
