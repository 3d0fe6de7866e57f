package mongodb

import (
	"regexp"

	"github.com/Abdurahmanit/GroupProject/property-service/internal/property/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// buildPropertyFilter translates typed search criteria into a Mongo filter.
func buildPropertyFilter(f domain.PropertyFilter) bson.M {
	filter := bson.M{}
	if f.ActiveOnly {
		filter["isActive"] = true
	}
	if r := priceRange(f.MinPriceLocal, f.MaxPriceLocal); r != nil {
		filter["priceLocal"] = r
	}
	if r := priceRange(f.MinPriceForeign, f.MaxPriceForeign); r != nil {
		filter["priceForeign"] = r
	}
	if f.Rooms != nil {
		filter["rooms"] = *f.Rooms
	}
	if f.Environments != nil {
		filter["environments"] = *f.Environments
	}
	if f.OperationType != nil {
		filter["operationType"] = string(*f.OperationType)
	}
	if f.AcceptsPets != nil {
		filter["acceptsPets"] = *f.AcceptsPets
	}
	if loc := domain.NormalizeLocation(f.Location); loc != "" {
		filter["location"] = primitive.Regex{Pattern: regexp.QuoteMeta(loc), Options: "i"}
	}
	return filter
}

func priceRange(lo, hi *float64) bson.M {
	if lo == nil && hi == nil {
		return nil
	}
	r := bson.M{}
	if lo != nil {
		r["$gte"] = *lo
	}
	if hi != nil {
		r["$lte"] = *hi
	}
	return r
}

// buildSort maps a sort key to a Mongo sort document. _id breaks ties so
// paging is stable across requests.
func buildSort(key domain.SortKey) bson.D {
	switch key {
	case domain.SortPriceLocalAsc:
		return bson.D{{Key: "priceLocal", Value: 1}, {Key: "_id", Value: 1}}
	case domain.SortPriceLocalDesc:
		return bson.D{{Key: "priceLocal", Value: -1}, {Key: "_id", Value: -1}}
	case domain.SortPriceForeignAsc:
		return bson.D{{Key: "priceForeign", Value: 1}, {Key: "_id", Value: 1}}
	case domain.SortPriceForeignDesc:
		return bson.D{{Key: "priceForeign", Value: -1}, {Key: "_id", Value: -1}}
	default:
		return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
	}
}
