package models

import "time"

type Book struct {
	ID               int64      `json:"_id" bson:"_id"`
	Title            string     `json:"title" bson:"title"`
	ISBN             string     `json:"isbn,omitempty" bson:"isbn,omitempty"`
	PageCount        int        `json:"pageCount,omitempty" bson:"pageCount,omitempty"`
	PublishedDate    *time.Time `json:"publishedDate,omitempty" bson:"publishedDate,omitempty"`
	ThumbnailURL     string     `json:"thumbnailUrl,omitempty" bson:"thumbnailUrl,omitempty"`
	ShortDescription string     `json:"shortDescription,omitempty" bson:"shortDescription,omitempty"`
	LongDescription  string     `json:"longDescription,omitempty" bson:"longDescription,omitempty"`
	Status           string     `json:"status,omitempty" bson:"status,omitempty"`
	Authors          []string   `json:"authors" bson:"authors"`
	Categories       []string   `json:"categories" bson:"categories"`
	Ratings          []float64  `json:"ratings,omitempty" bson:"ratings,omitempty"`
}

// BookSnapshot is the denormalized copy of a book embedded in a library.
// It is not kept in sync with the books collection.
type BookSnapshot struct {
	ID               int64    `json:"_id" bson:"_id"`
	Title            string   `json:"title" bson:"title"`
	ISBN             string   `json:"isbn,omitempty" bson:"isbn,omitempty"`
	Authors          []string `json:"authors" bson:"authors"`
	Categories       []string `json:"categories" bson:"categories"`
	ShortDescription string   `json:"shortDescription,omitempty" bson:"shortDescription,omitempty"`
	LongDescription  string   `json:"longDescription,omitempty" bson:"longDescription,omitempty"`
	ThumbnailURL     string   `json:"thumbnailUrl,omitempty" bson:"thumbnailUrl,omitempty"`
}

func (b Book) Snapshot() BookSnapshot {
	return BookSnapshot{
		ID:               b.ID,
		Title:            b.Title,
		ISBN:             b.ISBN,
		Authors:          b.Authors,
		Categories:       b.Categories,
		ShortDescription: b.ShortDescription,
		LongDescription:  b.LongDescription,
		ThumbnailURL:     b.ThumbnailURL,
	}
}

const (
	BookEntity = "book"

	BooksCollection = "books"
)
