package pagination

import (
	"math"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

type Params struct {
	Page  int64
	Limit int64
}

// Parse reads page and limit query values. Empty values fall back to the
// defaults; anything else must be a positive integer. A page whose offset
// does not fit in an int64 is rejected.
func Parse(page, limit string) (Params, error) {
	p := Params{Page: DefaultPage, Limit: DefaultLimit}
	if limit != "" {
		n, err := strconv.ParseInt(limit, 10, 64)
		if err != nil || n < 1 {
			return Params{}, errInvalid("limit")
		}
		p.Limit = min(n, MaxLimit)
	}
	if page != "" {
		n, err := strconv.ParseInt(page, 10, 64)
		if err != nil || n < 1 || n-1 > (math.MaxInt64-p.Limit)/p.Limit {
			return Params{}, errInvalid("page")
		}
		p.Page = n
	}
	return p, nil
}

func (p Params) Skip() int64 {
	return (p.Page - 1) * p.Limit
}

type Page[T any] struct {
	Items       []T   `json:"items"`
	TotalItems  int64 `json:"totalItems"`
	TotalPages  int64 `json:"totalPages"`
	CurrentPage int64 `json:"currentPage"`
	Limit       int64 `json:"limit"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

func New[T any](items []T, total int64, p Params) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := int64(0)
	if total > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return Page[T]{
		Items:       items,
		TotalItems:  total,
		TotalPages:  pages,
		CurrentPage: p.Page,
		Limit:       p.Limit,
		HasNextPage: p.Page < pages,
		HasPrevPage: p.Page > 1,
	}
}

// FacetStage splits an aggregation into the requested page of documents and
// the total count of the filtered set. It must be the last stage. itemStages
// run only on the page, which keeps joins off the rest of the result set.
func FacetStage(p Params, itemStages ...bson.D) bson.D {
	items := bson.A{
		bson.M{"$skip": p.Skip()},
		bson.M{"$limit": p.Limit},
	}
	for _, s := range itemStages {
		items = append(items, s)
	}
	return bson.D{{Key: "$facet", Value: bson.M{
		"items": items,
		"total": bson.A{
			bson.M{"$count": "count"},
		},
	}}}
}

// FacetResult is the decoded shape of FacetStage's single output document.
type FacetResult[T any] struct {
	Items []T `bson:"items"`
	Total []struct {
		Count int64 `bson:"count"`
	} `bson:"total"`
}

func (r FacetResult[T]) Page(p Params) Page[T] {
	var total int64
	if len(r.Total) > 0 {
		total = r.Total[0].Count
	}
	return New(r.Items, total, p)
}
