// Package db owns the process-wide Mongo client. The client is built once
// at startup and shared by every handler; the driver makes it safe for
// concurrent use.
package db

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/Leomister1233/Backend/internal/geo"
	"github.com/Leomister1233/Backend/internal/models"
)

const pingTimeout = 10 * time.Second

// Connect dials uri and pings the primary. timeout bounds every later
// operation issued through the client.
func Connect(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	if uri == "" {
		return nil, errors.New("empty mongo uri")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetTimeout(timeout))
	if err != nil {
		return nil, errors.Wrap(err, "connect")
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "ping")
	}
	return client, nil
}

// Collections groups the collections the API works on.
type Collections struct {
	Books     *mongo.Collection
	Comments  *mongo.Collection
	Users     *mongo.Collection
	Livrarias *mongo.Collection
	Counters  *mongo.Collection
	AuditLogs *mongo.Collection
}

func GetCollections(client *mongo.Client, dbName string) Collections {
	database := client.Database(dbName)
	return Collections{
		Books:     database.Collection(models.BooksCollection),
		Comments:  database.Collection(models.CommentsCollection),
		Users:     database.Collection(models.UsersCollection),
		Livrarias: database.Collection(models.LivrariasCollection),
		Counters:  database.Collection(models.CountersCollection),
		AuditLogs: database.Collection(models.AuditLogsCollection),
	}
}

// EnsureIndexes creates the flat 2d index the radius search relies on and
// the lookup indexes used by the joins. Creating an existing index is a no-op.
func EnsureIndexes(ctx context.Context, c Collections) error {
	if _, err := c.Livrarias.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: geo.CoordinatesField, Value: "2d"}},
	}); err != nil {
		return errors.Wrap(err, "create livrarias 2d index")
	}

	if _, err := c.Comments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "book_id", Value: 1}},
	}); err != nil {
		return errors.Wrap(err, "create comments book_id index")
	}

	if _, err := c.Users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "reviews.book_id", Value: 1}},
	}); err != nil {
		return errors.Wrap(err, "create users reviews.book_id index")
	}
	return nil
}
