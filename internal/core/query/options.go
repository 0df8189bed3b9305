// internal/core/query/options.go
package query

import (
	"go.mongodb.org/mongo-driver/bson"
)

// Default paging values for list operations.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// Filter is one declarative constraint on a field. Exactly one comparison
// operator should be set; when more are present the first recognized one
// wins (see BuildMongoMatch for the precedence).
type Filter struct {
	Eq         any
	Ne         any
	Any        []any
	All        []any
	Lt         any
	Lte        any
	Gt         any
	Gte        any
	StartsWith string
	EndsWith   string
	Contains   string
}

// Options captures the declarative list parameters a caller supplies:
// sorting, paging, and per-field filters.
type Options struct {
	OrderBy       string
	SortDirection string // "asc" or "desc"
	Page          int
	PageSize      int
	Filters       map[string]Filter
}

// NewOptions returns Options with the documented defaults.
func NewOptions() Options {
	return Options{
		SortDirection: "asc",
		Page:          DefaultPage,
		PageSize:      DefaultPageSize,
	}
}

// Clone returns a copy whose Filters map is independent of the original.
func (o Options) Clone() Options {
	out := o
	if o.Filters != nil {
		out.Filters = make(map[string]Filter, len(o.Filters))
		for k, v := range o.Filters {
			out.Filters[k] = v
		}
	}
	return out
}

// SortValue translates SortDirection into Mongo's 1/-1 convention.
func (o Options) SortValue() int {
	if o.SortDirection == "desc" {
		return -1
	}
	return 1
}

// PagedResult is one page of a filtered collection plus the arithmetic a
// client needs to walk the rest.
type PagedResult struct {
	Entities   []bson.M `json:"entities"`
	Total      int64    `json:"total"`
	Page       int      `json:"page"`
	PageSize   int      `json:"pageSize"`
	TotalPages int      `json:"totalPages"`
}

// NewPagedResult computes TotalPages = ceil(total / pageSize).
func NewPagedResult(entities []bson.M, total int64, page, pageSize int) PagedResult {
	if entities == nil {
		entities = []bson.M{}
	}
	pages := 0
	if pageSize > 0 {
		pages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return PagedResult{
		Entities:   entities,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: pages,
	}
}
