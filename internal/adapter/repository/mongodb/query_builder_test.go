package mongodb

import (
	"testing"

	"github.com/Abdurahmanit/GroupProject/property-service/internal/property/domain"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func ptr[T any](v T) *T { return &v }

func TestBuildPropertyFilter_Empty(t *testing.T) {
	assert.Equal(t, bson.M{}, buildPropertyFilter(domain.PropertyFilter{}))
	assert.Equal(t, bson.M{"isActive": true}, buildPropertyFilter(domain.PropertyFilter{ActiveOnly: true}))
}

func TestBuildPropertyFilter_PriceBounds(t *testing.T) {
	got := buildPropertyFilter(domain.PropertyFilter{
		MinPriceLocal:   ptr(100.0),
		MaxPriceLocal:   ptr(500.0),
		MaxPriceForeign: ptr(20.0),
	})
	assert.Equal(t, bson.M{"$gte": 100.0, "$lte": 500.0}, got["priceLocal"])
	assert.Equal(t, bson.M{"$lte": 20.0}, got["priceForeign"])
}

func TestBuildPropertyFilter_ExactMatches(t *testing.T) {
	sale := domain.OperationSale
	got := buildPropertyFilter(domain.PropertyFilter{
		ActiveOnly:    true,
		Rooms:         ptr(3),
		Environments:  ptr(4),
		OperationType: &sale,
		AcceptsPets:   ptr(false),
	})
	assert.Equal(t, bson.M{
		"isActive":      true,
		"rooms":         3,
		"environments":  4,
		"operationType": "sale",
		"acceptsPets":   false,
	}, got)
}

func TestBuildPropertyFilter_LocationIsQuotedAndUppercased(t *testing.T) {
	got := buildPropertyFilter(domain.PropertyFilter{Location: " san.isidro (n)"})
	assert.Equal(t, primitive.Regex{Pattern: `SAN\.ISIDRO \(N\)`, Options: "i"}, got["location"])

	assert.NotContains(t, buildPropertyFilter(domain.PropertyFilter{Location: "   "}), "location")
}

func TestBuildSort(t *testing.T) {
	cases := map[domain.SortKey]bson.D{
		domain.SortNewest:           {{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
		domain.SortPriceLocalAsc:    {{Key: "priceLocal", Value: 1}, {Key: "_id", Value: 1}},
		domain.SortPriceLocalDesc:   {{Key: "priceLocal", Value: -1}, {Key: "_id", Value: -1}},
		domain.SortPriceForeignAsc:  {{Key: "priceForeign", Value: 1}, {Key: "_id", Value: 1}},
		domain.SortPriceForeignDesc: {{Key: "priceForeign", Value: -1}, {Key: "_id", Value: -1}},
		domain.SortKey("bogus"):     {{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
	}
	for key, want := range cases {
		assert.Equal(t, want, buildSort(key), string(key))
	}
}
