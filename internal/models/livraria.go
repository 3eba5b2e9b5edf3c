package models

type Livraria struct {
	ID         interface{}        `json:"_id" bson:"_id"`
	Type       string             `json:"type,omitempty" bson:"type,omitempty"`
	Geometry   Geometry           `json:"geometry" bson:"geometry"`
	Properties LivrariaProperties `json:"properties" bson:"properties"`
}

// Geometry.Coordinates is a [longitude, latitude] pair in degrees.
type Geometry struct {
	Type        string    `json:"type,omitempty" bson:"type,omitempty"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
}

type LivrariaProperties struct {
	Name    string         `json:"INF_NOME" bson:"INF_NOME"`
	Address string         `json:"INF_MORADA,omitempty" bson:"INF_MORADA,omitempty"`
	Books   []BookSnapshot `json:"books" bson:"books,omitempty"`
}

const (
	LivrariaEntity = "livraria"

	LivrariasCollection = "livrarias"
)
