package models

// Counter holds the last id handed out for the collection named by ID.
type Counter struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

const CountersCollection = "counters"
