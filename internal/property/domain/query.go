package domain

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const (
	DefaultPage   = 1
	DefaultLimit  = 10
	MaxLimit      = 100
	FeaturedLimit = 6
	// MaxPage keeps (page-1)*MaxLimit well inside int64.
	MaxPage = math.MaxInt32
)

type SortKey string

const (
	SortNewest           SortKey = "newest"
	SortPriceLocalAsc    SortKey = "priceLocal_asc"
	SortPriceLocalDesc   SortKey = "priceLocal_desc"
	SortPriceForeignAsc  SortKey = "priceForeign_asc"
	SortPriceForeignDesc SortKey = "priceForeign_desc"
)

// ParseSortKey maps a client token to a sort key. Unknown tokens sort by newest.
func ParseSortKey(token string) SortKey {
	switch k := SortKey(token); k {
	case SortPriceLocalAsc, SortPriceLocalDesc, SortPriceForeignAsc, SortPriceForeignDesc, SortNewest:
		return k
	}
	return SortNewest
}

// PropertyFilter is the typed search criteria. Nil bounds are not applied.
type PropertyFilter struct {
	ActiveOnly      bool
	MinPriceLocal   *float64
	MaxPriceLocal   *float64
	MinPriceForeign *float64
	MaxPriceForeign *float64
	Rooms           *int
	Environments    *int
	OperationType   *OperationType
	AcceptsPets     *bool
	// Location is matched as an uppercased substring.
	Location string
}

type PropertyQuery struct {
	Filter PropertyFilter
	Sort   SortKey
	Page   int
	Limit  int
}

func DefaultPropertyQuery() PropertyQuery {
	return PropertyQuery{
		Filter: PropertyFilter{ActiveOnly: true},
		Sort:   SortNewest,
		Page:   DefaultPage,
		Limit:  DefaultLimit,
	}
}

// Skip is the number of documents before the page. It saturates instead of
// overflowing so a page past the end stays an empty page.
func (q PropertyQuery) Skip() int64 {
	if q.Page <= 1 || q.Limit <= 0 {
		return 0
	}
	pages := int64(q.Page - 1)
	if pages > math.MaxInt64/int64(q.Limit) {
		return math.MaxInt64
	}
	return pages * int64(q.Limit)
}

// TotalPages is ceil(total/limit); a zero limit yields zero pages.
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

var queryParams = map[string]func(*PropertyQuery, string) error{
	"minPriceLocal": func(q *PropertyQuery, v string) error {
		return parseAmount("minPriceLocal", v, &q.Filter.MinPriceLocal)
	},
	"maxPriceLocal": func(q *PropertyQuery, v string) error {
		return parseAmount("maxPriceLocal", v, &q.Filter.MaxPriceLocal)
	},
	"minPriceForeign": func(q *PropertyQuery, v string) error {
		return parseAmount("minPriceForeign", v, &q.Filter.MinPriceForeign)
	},
	"maxPriceForeign": func(q *PropertyQuery, v string) error {
		return parseAmount("maxPriceForeign", v, &q.Filter.MaxPriceForeign)
	},
	"rooms": func(q *PropertyQuery, v string) error {
		return parseCount("rooms", v, &q.Filter.Rooms)
	},
	"environments": func(q *PropertyQuery, v string) error {
		return parseCount("environments", v, &q.Filter.Environments)
	},
	"acceptsPets": func(q *PropertyQuery, v string) error {
		var b bool
		switch v {
		case "true":
			b = true
		case "false":
			b = false
		default:
			return fmt.Errorf("%w: acceptsPets must be true or false, got %q", ErrValidation, v)
		}
		q.Filter.AcceptsPets = &b
		return nil
	},
	"operationType": func(q *PropertyQuery, v string) error {
		t := OperationType(v)
		if !t.IsValid() {
			return fmt.Errorf("%w: operationType must be one of sale, rental, got %q", ErrValidation, v)
		}
		q.Filter.OperationType = &t
		return nil
	},
	"location": func(q *PropertyQuery, v string) error {
		q.Filter.Location = NormalizeLocation(v)
		return nil
	},
	"sortBy": func(q *PropertyQuery, v string) error {
		q.Sort = ParseSortKey(v)
		return nil
	},
	"page": func(q *PropertyQuery, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > MaxPage {
			return fmt.Errorf("%w: page must be an integer between 1 and %d, got %q", ErrValidation, MaxPage, v)
		}
		q.Page = n
		return nil
	},
	"limit": func(q *PropertyQuery, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > MaxLimit {
			return fmt.Errorf("%w: limit must be an integer between 0 and %d, got %q", ErrValidation, MaxLimit, v)
		}
		q.Limit = n
		return nil
	},
}

// ParsePropertyQuery builds a validated search request from raw query
// parameters. Unknown parameters, repeated parameters and malformed values
// are rejected; empty values are treated as absent.
func ParsePropertyQuery(values url.Values) (PropertyQuery, error) {
	q := DefaultPropertyQuery()

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		apply, ok := queryParams[key]
		if !ok {
			return PropertyQuery{}, fmt.Errorf("%w: unknown query parameter %q", ErrValidation, key)
		}
		vals := values[key]
		if len(vals) > 1 {
			return PropertyQuery{}, fmt.Errorf("%w: query parameter %q given more than once", ErrValidation, key)
		}
		v := strings.TrimSpace(vals[0])
		if v == "" {
			continue
		}
		if err := apply(&q, v); err != nil {
			return PropertyQuery{}, err
		}
	}

	f := q.Filter
	if f.MinPriceLocal != nil && f.MaxPriceLocal != nil && *f.MinPriceLocal > *f.MaxPriceLocal {
		return PropertyQuery{}, fmt.Errorf("%w: minPriceLocal is greater than maxPriceLocal", ErrValidation)
	}
	if f.MinPriceForeign != nil && f.MaxPriceForeign != nil && *f.MinPriceForeign > *f.MaxPriceForeign {
		return PropertyQuery{}, fmt.Errorf("%w: minPriceForeign is greater than maxPriceForeign", ErrValidation)
	}
	return q, nil
}

func parseAmount(name, v string, dst **float64) error {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return fmt.Errorf("%w: %s must be a non-negative number, got %q", ErrValidation, name, v)
	}
	*dst = &f
	return nil
}

func parseCount(name, v string, dst **int) error {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fmt.Errorf("%w: %s must be a non-negative integer, got %q", ErrValidation, name, v)
	}
	*dst = &n
	return nil
}
