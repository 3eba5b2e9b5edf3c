package models

import (
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment.BookID is a weak reference: deleting the book leaves its
// comments in place.
type Comment struct {
	ID      int64       `json:"_id" bson:"_id"`
	UserID  int64       `json:"user_id" bson:"user_id"`
	BookID  int64       `json:"book_id" bson:"book_id"`
	Comment string      `json:"comment" bson:"comment"`
	Date    CommentDate `json:"date" bson:"date"`
}

// CommentDate is written as a BSON date. Comments imported from the old
// service carry epoch milliseconds instead; both read back the same.
type CommentDate primitive.DateTime

func NewCommentDate(t time.Time) CommentDate {
	return CommentDate(primitive.NewDateTimeFromTime(t))
}

func (d CommentDate) Time() time.Time {
	return primitive.DateTime(d).Time()
}

func (d CommentDate) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(primitive.DateTime(d))
}

func (d *CommentDate) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.DateTime:
		*d = CommentDate(raw.DateTime())
	case bsontype.Int64:
		*d = CommentDate(raw.Int64())
	case bsontype.Int32:
		*d = CommentDate(raw.Int32())
	case bsontype.Double:
		*d = CommentDate(int64(raw.Double()))
	case bsontype.Null, bsontype.Undefined:
		*d = 0
	default:
		return errors.Errorf("cannot decode %s into a comment date", t)
	}
	return nil
}

func (d CommentDate) MarshalJSON() ([]byte, error) {
	return primitive.DateTime(d).MarshalJSON()
}

const (
	CommentEntity = "comment"

	CommentsCollection = "comments"
)
