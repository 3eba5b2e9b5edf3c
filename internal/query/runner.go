package query

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Aggregator is the part of *mongo.Collection the pipeline runners need.
type Aggregator interface {
	Aggregate(ctx context.Context, pipeline interface{}, opts ...*options.AggregateOptions) (*mongo.Cursor, error)
}

// Finder is the part of *mongo.Collection direct filter listings need.
type Finder interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}

// Collect runs pipeline and decodes every row into results, which must be
// a pointer to a slice.
func Collect(ctx context.Context, coll Aggregator, pipeline mongo.Pipeline, results interface{}) error {
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return errors.Wrap(err, "aggregate")
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, results); err != nil {
		return errors.Wrap(err, "decode aggregate results")
	}
	return nil
}

// Count runs the mirrored count execution of p.
func Count(ctx context.Context, coll Aggregator, p *Pipeline) (int64, error) {
	var rows []struct {
		Total int64 `bson:"total"`
	}
	if err := Collect(ctx, coll, p.Counted(), &rows); err != nil {
		return 0, errors.Wrap(err, "count")
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

// Page decodes the window of p described by params into results and
// returns the total row count computed from the same shaping stages.
func Page(ctx context.Context, coll Aggregator, p *Pipeline, params Params, results interface{}) (int64, error) {
	if err := Collect(ctx, coll, p.Windowed(params), results); err != nil {
		return 0, err
	}
	return Count(ctx, coll, p)
}

// Summarize decodes the single summary row of p into result and reports
// whether there was one.
func Summarize(ctx context.Context, coll Aggregator, p *Pipeline, accumulators bson.D, result interface{}) (bool, error) {
	cursor, err := coll.Aggregate(ctx, p.Summarized(accumulators))
	if err != nil {
		return false, errors.Wrap(err, "summarize")
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		return false, errors.Wrap(cursor.Err(), "summarize")
	}
	if err := cursor.Decode(result); err != nil {
		return false, errors.Wrap(err, "decode summary")
	}
	return true, nil
}

// FindPage lists the window of documents matching filter, ordered by sort
// (natural order when nil), and returns the total number of matches.
func FindPage(ctx context.Context, coll Finder, filter interface{}, sort bson.D, params Params, results interface{}) (int64, error) {
	opts := options.Find().SetSkip(params.Skip()).SetLimit(int64(params.Limit))
	if sort != nil {
		opts.SetSort(sort)
	}

	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return 0, errors.Wrap(err, "find")
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, results); err != nil {
		return 0, errors.Wrap(err, "decode find results")
	}

	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, errors.Wrap(err, "count documents")
	}
	return total, nil
}

// FindLimited decodes the first n documents matching filter.
func FindLimited(ctx context.Context, coll Finder, filter interface{}, n int64, results interface{}) error {
	cursor, err := coll.Find(ctx, filter, options.Find().SetLimit(n))
	if err != nil {
		return errors.Wrap(err, "find")
	}
	defer cursor.Close(ctx)

	return errors.Wrap(cursor.All(ctx, results), "decode find results")
}
