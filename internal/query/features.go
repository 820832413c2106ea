// Package query translates URL query-string parameters into MongoDB
// filter, sort, projection and pagination directives. The stages run in a
// fixed order (filter, sort, field limiting, paginate) because later
// stages depend on the shape the earlier ones produce.
package query

import (
	"regexp"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rlaxodnjs199/natours-api/internal/apperror"
)

const (
	DefaultPage  = 1
	DefaultLimit = 100
)

// Keys consumed by sort/projection/pagination rather than filtering.
var reservedKeys = map[string]struct{}{
	"page":   {},
	"sort":   {},
	"limit":  {},
	"fields": {},
}

var comparisonOps = map[string]string{
	"gte": "$gte",
	"gt":  "$gt",
	"lte": "$lte",
	"lt":  "$lt",
}

// matches keys like price[gte]
var comparisonKey = regexp.MustCompile(`^([^\[\]]+)\[(gte|gt|lte|lt)\]$`)

type Features struct {
	Filter     bson.M
	Sort       bson.D
	Projection bson.M
	Page       int
	Limit      int64
	Skip       int64

	pageRequested bool
}

// Parse builds Features from raw query-string parameters, typically
// c.Queries() from a fiber handler.
func Parse(params map[string]string) *Features {
	f := &Features{
		Filter: bson.M{},
		Page:   DefaultPage,
		Limit:  DefaultLimit,
	}

	// 1) Filtering. Reserved keys are excluded; remaining pairs become
	// equality filters, except comparison suffixes which become range
	// operators on the same field.
	for key, value := range params {
		if _, reserved := reservedKeys[key]; reserved {
			continue
		}
		if m := comparisonKey.FindStringSubmatch(key); m != nil {
			field, op := m[1], comparisonOps[m[2]]
			rangeFilter, ok := f.Filter[field].(bson.M)
			if !ok {
				rangeFilter = bson.M{}
				f.Filter[field] = rangeFilter
			}
			rangeFilter[op] = coerce(value)
			continue
		}
		f.Filter[key] = coerce(value)
	}

	// 2) Sorting. Comma-separated fields, leading '-' for descending,
	// default newest first.
	if sort := params["sort"]; sort != "" {
		for _, field := range strings.Split(sort, ",") {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			order := 1
			if strings.HasPrefix(field, "-") {
				order = -1
				field = field[1:]
			}
			f.Sort = append(f.Sort, bson.E{Key: field, Value: order})
		}
	}
	if len(f.Sort) == 0 {
		f.Sort = bson.D{{Key: "createdAt", Value: -1}}
	}

	// 3) Field limiting. Comma-separated allow-list; default excludes only
	// the internal version field.
	if fields := params["fields"]; fields != "" {
		f.Projection = bson.M{}
		for _, field := range strings.Split(fields, ",") {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			if strings.HasPrefix(field, "-") {
				f.Projection[field[1:]] = 0
			} else {
				f.Projection[field] = 1
			}
		}
	} else {
		f.Projection = bson.M{"__v": 0}
	}

	// 4) Pagination.
	if page, err := strconv.Atoi(params["page"]); err == nil && page > 0 {
		f.Page = page
		f.pageRequested = true
	}
	if limit, err := strconv.ParseInt(params["limit"], 10, 64); err == nil && limit > 0 {
		f.Limit = limit
	}
	f.Skip = int64(f.Page-1) * f.Limit

	return f
}

// FindOptions assembles the driver options for the parsed features.
func (f *Features) FindOptions() *options.FindOptions {
	return options.Find().
		SetSort(f.Sort).
		SetProjection(f.Projection).
		SetSkip(f.Skip).
		SetLimit(f.Limit)
}

// PageRequested reports whether the client asked for an explicit page.
// Only explicit pages are checked against the record count.
func (f *Features) PageRequested() bool {
	return f.pageRequested
}

// CheckPage fails when the requested page starts past the last record.
// Page 1 of an empty result set is a plain empty list, not an error.
func (f *Features) CheckPage(total int64) error {
	if f.Page > 1 && f.Skip >= total {
		return apperror.NotFound("This page does not exist.")
	}
	return nil
}

// coerce converts query values to the type the database compares with:
// numbers and booleans where they parse, strings otherwise.
func coerce(value string) interface{} {
	if n, err := strconv.ParseFloat(value, 64); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	return value
}
