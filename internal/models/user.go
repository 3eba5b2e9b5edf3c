package models

import (
	"time"
)

type User struct {
	ID          int64    `json:"_id" bson:"_id"`
	FirstName   string   `json:"first_name" bson:"first_name"`
	LastName    string   `json:"last_name" bson:"last_name"`
	YearOfBirth int      `json:"year_of_birth,omitempty" bson:"year_of_birth,omitempty"`
	Job         string   `json:"job" bson:"job"`
	Reviews     []Review `json:"reviews" bson:"reviews"`
}

type Review struct {
	BookID         int64      `json:"book_id" bson:"book_id"`
	Score          int        `json:"score" bson:"score"`
	Recommendation bool       `json:"recommendation" bson:"recommendation"`
	ReviewDate     *time.Time `json:"review_date,omitempty" bson:"review_date,omitempty"`
}

const (
	MinReviewScore = 1
	MaxReviewScore = 5

	UserEntity = "user"

	UsersCollection = "users"
)

func IsValidScore(score int) bool {
	return score >= MinReviewScore && score <= MaxReviewScore
}
