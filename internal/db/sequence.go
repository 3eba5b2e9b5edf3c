package db

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Leomister1233/Backend/internal/models"
)

// Sequence hands out integer ids for one collection from a counter
// document. Next is a single atomic findAndModify, so concurrent callers
// never receive the same id.
type Sequence struct {
	Counters *mongo.Collection
	Name     string
}

func NewSequence(counters *mongo.Collection, name string) *Sequence {
	return &Sequence{Counters: counters, Name: name}
}

func (s *Sequence) Next(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter models.Counter
	err := s.Counters.FindOneAndUpdate(ctx,
		bson.M{"_id": s.Name},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, errors.Wrapf(err, "next id for %s", s.Name)
	}
	return counter.Seq, nil
}

// Seed raises the counter to at least floor. It never lowers it, so it is
// safe to run on every start.
func (s *Sequence) Seed(ctx context.Context, floor int64) error {
	_, err := s.Counters.UpdateOne(ctx,
		bson.M{"_id": s.Name},
		bson.M{"$max": bson.M{"seq": floor}},
		options.Update().SetUpsert(true),
	)
	return errors.Wrapf(err, "seed %s counter", s.Name)
}

// SeedFromCollection seeds the counter with the largest numeric id in coll.
func (s *Sequence) SeedFromCollection(ctx context.Context, coll *mongo.Collection) error {
	maxID, _, err := MaxID(ctx, coll)
	if err != nil {
		return err
	}
	return s.Seed(ctx, maxID)
}

// MaxID reads the largest numeric _id in coll. found is false for a
// collection without numeric ids.
//
// "MaxID + 1" is not a safe way to allocate ids: two writers can read the
// same maximum. Use a Sequence for that.
func MaxID(ctx context.Context, coll *mongo.Collection) (maxID int64, found bool, err error) {
	opts := options.FindOne().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetProjection(bson.M{"_id": 1})

	var top struct {
		ID int64 `bson:"_id"`
	}
	err = coll.FindOne(ctx, bson.M{"_id": bson.M{"$type": "number"}}, opts).Decode(&top)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrapf(err, "max id of %s", coll.Name())
	}
	return top.ID, true, nil
}

// Sequences holds one Sequence per collection with integer ids.
type Sequences struct {
	Books    *Sequence
	Comments *Sequence
	Users    *Sequence
}

func NewSequences(c Collections) Sequences {
	return Sequences{
		Books:    NewSequence(c.Counters, models.BooksCollection),
		Comments: NewSequence(c.Counters, models.CommentsCollection),
		Users:    NewSequence(c.Counters, models.UsersCollection),
	}
}

// SeedAll lines every counter up with the data already in the store.
func SeedAll(ctx context.Context, c Collections, s Sequences) error {
	if err := s.Books.SeedFromCollection(ctx, c.Books); err != nil {
		return err
	}
	if err := s.Comments.SeedFromCollection(ctx, c.Comments); err != nil {
		return err
	}
	return s.Users.SeedFromCollection(ctx, c.Users)
}
