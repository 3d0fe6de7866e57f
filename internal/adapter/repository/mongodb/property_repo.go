package mongodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Abdurahmanit/GroupProject/property-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/property/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	propertyCollectionName = "properties"
	counterCollectionName  = "counters"
	propertyCodeCounterID  = "property_code"
)

// PropertyRepository implements domain.PropertyRepository on MongoDB.
type PropertyRepository struct {
	collection *mongo.Collection
	counters   *mongo.Collection
	logger     *logger.Logger
}

// NewPropertyRepository ensures indexes and aligns the code counter with the
// highest code already stored.
func NewPropertyRepository(ctx context.Context, db *mongo.Database, log *logger.Logger) (*PropertyRepository, error) {
	r := &PropertyRepository{
		collection: db.Collection(propertyCollectionName),
		counters:   db.Collection(counterCollectionName),
		logger:     log.Named("PropertyRepository"),
	}

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "priceLocal", Value: 1}}},
		{Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "priceForeign", Value: 1}}},
		{Keys: bson.D{{Key: "location", Value: 1}}},
	}
	indexCtx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()
	if _, err := r.collection.Indexes().CreateMany(indexCtx, indexes); err != nil {
		return nil, fmt.Errorf("create indexes for %s: %w", propertyCollectionName, err)
	}

	if err := r.SeedCounter(indexCtx); err != nil {
		return nil, err
	}
	r.logger.Info("Property repository ready")
	return r, nil
}

// SeedCounter raises the code counter to the current max(code). It never
// lowers it, so codes of deleted listings are not handed out again.
func (r *PropertyRepository) SeedCounter(ctx context.Context) error {
	var top propertyDocument
	opts := options.FindOne().
		SetSort(bson.D{{Key: "code", Value: -1}}).
		SetProjection(bson.M{"code": 1})
	maxCode := int64(0)
	err := r.collection.FindOne(ctx, bson.M{}, opts).Decode(&top)
	switch {
	case err == nil:
		maxCode = top.Code
	case !errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("read highest listing code: %w", err)
	}

	_, err = r.counters.UpdateOne(ctx,
		bson.M{"_id": propertyCodeCounterID},
		bson.M{"$max": bson.M{"seq": maxCode}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("seed listing code counter: %w", err)
	}
	r.logger.Debug("Listing code counter seeded", zap.Int64("max_code", maxCode))
	return nil
}

func (r *PropertyRepository) NextCode(ctx context.Context) (int64, error) {
	var counter counterDocument
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": propertyCodeCounterID},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		r.logger.Error("Failed to allocate listing code", zap.Error(err))
		return 0, fmt.Errorf("db counter increment failed: %w", err)
	}
	return counter.Seq, nil
}

func (r *PropertyRepository) Create(ctx context.Context, p *domain.Property) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	doc := fromDomainProperty(p)
	doc.ID = primitive.NewObjectID()

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			r.logger.Warn("Duplicate listing code", zap.Int64("code", p.Code))
			return fmt.Errorf("%w: listing code %d", domain.ErrConflict, p.Code)
		}
		r.logger.Error("Failed to insert listing", zap.Error(err))
		return fmt.Errorf("db insert failed: %w", err)
	}
	p.ID = doc.ID.Hex()
	p.Images = doc.Images
	return nil
}

func (r *PropertyRepository) FindByID(ctx context.Context, id string) (*domain.Property, error) {
	oid, err := parseObjectID("property", id)
	if err != nil {
		return nil, err
	}
	var doc propertyDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, r.notFound(err, id, "db findone failed")
	}
	return doc.toDomain(), nil
}

func (r *PropertyRepository) Update(ctx context.Context, id string, patch domain.PropertyPatch) (*domain.Property, error) {
	oid, err := parseObjectID("property", id)
	if err != nil {
		return nil, err
	}
	return r.findOneAndUpdate(ctx, oid, buildPatchUpdate(patch, time.Now().UTC()))
}

// buildPatchUpdate sets every non-nil field. Images are pushed onto the
// gallery, or replace it when ClearImages is set.
func buildPatchUpdate(patch domain.PropertyPatch, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	strs := map[string]*string{
		"title":        patch.Title,
		"description":  patch.Description,
		"address":      patch.Address,
		"location":     patch.Location,
		"requirements": patch.Requirements,
	}
	for field, v := range strs {
		if v != nil {
			set[field] = *v
		}
	}
	for field, v := range map[string]*float64{
		"priceLocal":   patch.PriceLocal,
		"priceForeign": patch.PriceForeign,
		"fees":         patch.Fees,
	} {
		if v != nil {
			set[field] = *v
		}
	}
	for field, v := range map[string]*int{
		"rooms":        patch.Rooms,
		"bathrooms":    patch.Bathrooms,
		"environments": patch.Environments,
	} {
		if v != nil {
			set[field] = *v
		}
	}
	if patch.AcceptsPets != nil {
		set["acceptsPets"] = *patch.AcceptsPets
	}
	if patch.IsActive != nil {
		set["isActive"] = *patch.IsActive
	}
	if patch.OperationType != nil {
		set["operationType"] = string(*patch.OperationType)
	}

	update := bson.M{"$set": set}
	switch {
	case patch.ClearImages:
		images := patch.Images
		if images == nil {
			images = []string{}
		}
		set["images"] = images
	case len(patch.Images) > 0:
		update["$push"] = bson.M{"images": bson.M{"$each": patch.Images}}
	}
	return update
}

func (r *PropertyRepository) AppendImages(ctx context.Context, id string, urls []string) (*domain.Property, error) {
	oid, err := parseObjectID("property", id)
	if err != nil {
		return nil, err
	}
	return r.findOneAndUpdate(ctx, oid, bson.M{
		"$push": bson.M{"images": bson.M{"$each": urls}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
}

func (r *PropertyRepository) RemoveImage(ctx context.Context, id string, url string) (*domain.Property, error) {
	oid, err := parseObjectID("property", id)
	if err != nil {
		return nil, err
	}
	return r.findOneAndUpdate(ctx, oid, bson.M{
		"$pull": bson.M{"images": url},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
}

func (r *PropertyRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseObjectID("property", id)
	if err != nil {
		return err
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		r.logger.Error("Failed to delete listing", zap.String("property_id", id), zap.Error(err))
		return fmt.Errorf("db delete failed: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: property %s", domain.ErrNotFound, id)
	}
	return nil
}

func (r *PropertyRepository) Find(ctx context.Context, filter domain.PropertyFilter, sortKey domain.SortKey, skip, limit int64) ([]*domain.Property, error) {
	opts := options.Find().SetSort(buildSort(sortKey)).SetSkip(skip)
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, buildPropertyFilter(filter), opts)
	if err != nil {
		r.logger.Error("Failed to query listings", zap.Error(err))
		return nil, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []propertyDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db cursor all failed: %w", err)
	}
	out := make([]*domain.Property, len(docs))
	for i := range docs {
		out[i] = docs[i].toDomain()
	}
	return out, nil
}

func (r *PropertyRepository) Count(ctx context.Context, filter domain.PropertyFilter) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, buildPropertyFilter(filter))
	if err != nil {
		r.logger.Error("Failed to count listings", zap.Error(err))
		return 0, fmt.Errorf("db count failed: %w", err)
	}
	return n, nil
}

func (r *PropertyRepository) DistinctLocations(ctx context.Context) ([]string, error) {
	values, err := r.collection.Distinct(ctx, "location", bson.M{"isActive": true})
	if err != nil {
		return nil, fmt.Errorf("db distinct failed: %w", err)
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *PropertyRepository) findOneAndUpdate(ctx context.Context, oid primitive.ObjectID, update bson.M) (*domain.Property, error) {
	var doc propertyDocument
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, r.notFound(err, oid.Hex(), "db update failed")
	}
	return doc.toDomain(), nil
}

func (r *PropertyRepository) notFound(err error, id, op string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%w: property %s", domain.ErrNotFound, id)
	}
	r.logger.Error("Listing query failed", zap.String("property_id", id), zap.Error(err))
	return fmt.Errorf("%s: %w", op, err)
}
