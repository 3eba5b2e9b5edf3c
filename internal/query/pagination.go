package query

import (
	"math"
	"net/url"
	"strconv"
)

const (
	PageKey  = "page"
	LimitKey = "limit"
)

// Params is a 1-based page request. Both fields are always positive.
type Params struct {
	Page  int
	Limit int
}

// ParseParams reads page and limit from values. Missing, non-numeric, zero
// or negative inputs coerce to page 1 and defaultLimit; they never fail.
func ParseParams(values url.Values, pageKey, limitKey string, defaultLimit int) Params {
	return Params{
		Page:  positiveInt(values.Get(pageKey), 1),
		Limit: positiveInt(values.Get(limitKey), defaultLimit),
	}
}

func positiveInt(raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// Skip is the number of rows before the page. It saturates at
// math.MaxInt64, so an absurdly large page is simply past the end.
func (p Params) Skip() int64 {
	page, limit := int64(p.Page-1), int64(p.Limit)
	if page <= 0 || limit <= 0 {
		return 0
	}
	if page > math.MaxInt64/limit {
		return math.MaxInt64
	}
	return page * limit
}

// Envelope carries pagination metadata next to a result window.
type Envelope struct {
	Count       int64   `json:"count"`
	Pages       int64   `json:"pages"`
	CurrentPage int     `json:"currentPage"`
	Next        *string `json:"next"`
	Prev        *string `json:"prev"`
}

// TotalPages is ceil(total/limit), zero for an empty result set.
func TotalPages(total int64, limit int) int64 {
	if total <= 0 || limit <= 0 {
		return 0
	}
	l := int64(limit)
	return (total + l - 1) / l
}

// NewEnvelope computes the envelope for a window of p over total rows.
// The current page is not validated against the page count: a page past
// the end yields an empty window with a prev link.
func NewEnvelope(total int64, p Params, link Linker) Envelope {
	pages := TotalPages(total, p.Limit)
	env := Envelope{
		Count:       total,
		Pages:       pages,
		CurrentPage: p.Page,
	}
	if link == nil {
		return env
	}
	if int64(p.Page) < pages {
		next := link(p.Page+1, p.Limit)
		env.Next = &next
	}
	if p.Page > 1 {
		prev := link(p.Page-1, p.Limit)
		env.Prev = &prev
	}
	return env
}
