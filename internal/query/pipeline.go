package query

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

/***** Pipeline *****/

// Pipeline composes an aggregation in three parts:
//
//   - shaping stages (match, unwind, lookup, group, addFields) which decide
//     which rows exist
//   - an ordering
//   - projection stages which only reshape rows
//
// Every execution (windowed, limited, counted, summarized) is derived from
// the same shaping stages, so a reported count always describes the rows
// the window is cut from.
type Pipeline struct {
	shaping    mongo.Pipeline
	order      bson.D
	projection mongo.Pipeline
}

func NewPipeline() *Pipeline {
	return &Pipeline{}
}

func stage(op string, value interface{}) bson.D {
	return bson.D{{Key: op, Value: value}}
}

func (p *Pipeline) Match(filter interface{}) *Pipeline {
	p.shaping = append(p.shaping, stage("$match", filter))
	return p
}

// Unwind flattens an array field into one row per element. Rows whose
// array is missing or empty are dropped.
func (p *Pipeline) Unwind(path string) *Pipeline {
	p.shaping = append(p.shaping, stage("$unwind", path))
	return p
}

// Lookup joins rows of another collection by equality of localField and
// foreignField into the array field as.
func (p *Pipeline) Lookup(from, localField, foreignField, as string) *Pipeline {
	p.shaping = append(p.shaping, stage("$lookup", bson.D{
		{Key: "from", Value: from},
		{Key: "localField", Value: localField},
		{Key: "foreignField", Value: foreignField},
		{Key: "as", Value: as},
	}))
	return p
}

// Group groups rows by key, accumulators maps output fields to accumulator
// expressions such as bson.M{"$sum": 1}.
func (p *Pipeline) Group(key interface{}, accumulators bson.D) *Pipeline {
	group := append(bson.D{{Key: "_id", Value: key}}, accumulators...)
	p.shaping = append(p.shaping, stage("$group", group))
	return p
}

func (p *Pipeline) AddFields(fields bson.D) *Pipeline {
	p.shaping = append(p.shaping, stage("$addFields", fields))
	return p
}

// SortBy sets the ordering. _id ascending is appended as a tiebreaker
// unless already present, so consecutive windows never overlap.
func (p *Pipeline) SortBy(keys bson.D) *Pipeline {
	order := make(bson.D, 0, len(keys)+1)
	hasID := false
	for _, k := range keys {
		if k.Key == "_id" {
			hasID = true
		}
		order = append(order, k)
	}
	if !hasID {
		order = append(order, bson.E{Key: "_id", Value: 1})
	}
	p.order = order
	return p
}

func (p *Pipeline) Project(fields bson.D) *Pipeline {
	p.projection = append(p.projection, stage("$project", fields))
	return p
}

// ReplaceRoot promotes the document at expr (e.g. "$reviews") to the row.
func (p *Pipeline) ReplaceRoot(expr string) *Pipeline {
	p.projection = append(p.projection, stage("$replaceRoot", bson.D{{Key: "newRoot", Value: expr}}))
	return p
}

func (p *Pipeline) ordered() mongo.Pipeline {
	out := make(mongo.Pipeline, 0, len(p.shaping)+len(p.projection)+3)
	out = append(out, p.shaping...)
	if len(p.order) > 0 {
		out = append(out, stage("$sort", p.order))
	}
	return out
}

// All is the full, unwindowed execution.
func (p *Pipeline) All() mongo.Pipeline {
	return append(p.ordered(), p.projection...)
}

// Windowed cuts the page described by params out of the ordered rows.
func (p *Pipeline) Windowed(params Params) mongo.Pipeline {
	out := p.ordered()
	if skip := params.Skip(); skip > 0 {
		out = append(out, stage("$skip", skip))
	}
	out = append(out, stage("$limit", int64(params.Limit)))
	return append(out, p.projection...)
}

// Limited keeps the first n ordered rows.
func (p *Pipeline) Limited(n int) mongo.Pipeline {
	out := append(p.ordered(), stage("$limit", int64(n)))
	return append(out, p.projection...)
}

// Counted yields a single {total: n} row, or no row when nothing matches.
func (p *Pipeline) Counted() mongo.Pipeline {
	out := make(mongo.Pipeline, 0, len(p.shaping)+1)
	out = append(out, p.shaping...)
	return append(out, stage("$count", "total"))
}

// Summarized folds every shaped row into one document using accumulators.
func (p *Pipeline) Summarized(accumulators bson.D) mongo.Pipeline {
	out := make(mongo.Pipeline, 0, len(p.shaping)+1)
	out = append(out, p.shaping...)
	group := append(bson.D{{Key: "_id", Value: nil}}, accumulators...)
	return append(out, stage("$group", group))
}
