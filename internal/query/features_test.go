package query

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/rlaxodnjs199/natours-api/internal/apperror"
)

func TestParse_EqualityFilters(t *testing.T) {
	f := Parse(map[string]string{
		"difficulty": "easy",
		"duration":   "5",
	})

	assert.Equal(t, "easy", f.Filter["difficulty"])
	assert.Equal(t, float64(5), f.Filter["duration"])
}

func TestParse_ReservedKeysExcluded(t *testing.T) {
	f := Parse(map[string]string{
		"page":       "2",
		"sort":       "price",
		"limit":      "10",
		"fields":     "name",
		"difficulty": "medium",
	})

	assert.Equal(t, bson.M{"difficulty": "medium"}, f.Filter)
}

func TestParse_ComparisonSuffixes(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want bson.M
	}{
		{"gte", "price[gte]", bson.M{"$gte": float64(100)}},
		{"gt", "price[gt]", bson.M{"$gt": float64(100)}},
		{"lte", "price[lte]", bson.M{"$lte": float64(100)}},
		{"lt", "price[lt]", bson.M{"$lt": float64(100)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Parse(map[string]string{tt.key: "100"})
			assert.Equal(t, tt.want, f.Filter["price"])
		})
	}
}

func TestParse_RangeOperatorsShareField(t *testing.T) {
	f := Parse(map[string]string{
		"price[gte]": "100",
		"price[lt]":  "500",
	})

	assert.Equal(t, bson.M{"$gte": float64(100), "$lt": float64(500)}, f.Filter["price"])
}

func TestParse_Sort(t *testing.T) {
	f := Parse(map[string]string{"sort": "-price,ratingsAverage"})

	require.Len(t, f.Sort, 2)
	assert.Equal(t, bson.E{Key: "price", Value: -1}, f.Sort[0])
	assert.Equal(t, bson.E{Key: "ratingsAverage", Value: 1}, f.Sort[1])
}

func TestParse_DefaultSortIsNewestFirst(t *testing.T) {
	f := Parse(map[string]string{})

	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}}, f.Sort)
}

func TestParse_Fields(t *testing.T) {
	f := Parse(map[string]string{"fields": "name,price,-duration"})

	assert.Equal(t, bson.M{"name": 1, "price": 1, "duration": 0}, f.Projection)
}

func TestParse_DefaultProjectionExcludesVersionField(t *testing.T) {
	f := Parse(map[string]string{})

	assert.Equal(t, bson.M{"__v": 0}, f.Projection)
}

func TestParse_Pagination(t *testing.T) {
	tests := []struct {
		name      string
		params    map[string]string
		page      int
		limit     int64
		skip      int64
		requested bool
	}{
		{"defaults", map[string]string{}, 1, 100, 0, false},
		{"explicit", map[string]string{"page": "3", "limit": "10"}, 3, 10, 20, true},
		{"malformed page falls back", map[string]string{"page": "abc"}, 1, 100, 0, false},
		{"zero page falls back", map[string]string{"page": "0"}, 1, 100, 0, false},
		{"malformed limit falls back", map[string]string{"page": "2", "limit": "x"}, 2, 100, 100, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Parse(tt.params)
			assert.Equal(t, tt.page, f.Page)
			assert.Equal(t, tt.limit, f.Limit)
			assert.Equal(t, tt.skip, f.Skip)
			assert.Equal(t, tt.requested, f.PageRequested())
		})
	}
}

func TestCheckPage(t *testing.T) {
	tests := []struct {
		name    string
		params  map[string]string
		total   int64
		wantErr bool
	}{
		{"page within data", map[string]string{"page": "2", "limit": "10"}, 11, false},
		{"page exactly past data", map[string]string{"page": "2", "limit": "10"}, 10, true},
		{"page far past data", map[string]string{"page": "5", "limit": "100"}, 3, true},
		{"first page of empty set", map[string]string{"page": "1"}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Parse(tt.params)
			err := f.CheckPage(tt.total)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			appErr, ok := apperror.As(err)
			require.True(t, ok)
			assert.Equal(t, 404, appErr.StatusCode)
			assert.Equal(t, "This page does not exist.", appErr.Message)
		})
	}
}

func TestParse_PagesTileWithoutOverlap(t *testing.T) {
	// Fixed limit: consecutive pages cover consecutive disjoint windows.
	var prevEnd int64
	for page := 1; page <= 4; page++ {
		f := Parse(map[string]string{"page": strconv.Itoa(page), "limit": "10"})
		assert.Equal(t, prevEnd, f.Skip)
		prevEnd = f.Skip + f.Limit
	}
}

func TestFindOptions(t *testing.T) {
	f := Parse(map[string]string{"page": "2", "limit": "5", "sort": "-price"})
	opts := f.FindOptions()

	assert.Equal(t, int64(5), *opts.Limit)
	assert.Equal(t, int64(5), *opts.Skip)
	assert.Equal(t, bson.D{{Key: "price", Value: -1}}, opts.Sort)
}

func TestCoerce(t *testing.T) {
	assert.Equal(t, float64(42), coerce("42"))
	assert.Equal(t, 4.5, coerce("4.5"))
	assert.Equal(t, true, coerce("true"))
	assert.Equal(t, "easy", coerce("easy"))
}
