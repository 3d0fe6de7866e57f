package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/property-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/property/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const userCollectionName = "users"

type UserRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewUserRepository(ctx context.Context, db *mongo.Database, log *logger.Logger) (*UserRepository, error) {
	collection := db.Collection(userCollectionName)

	indexCtx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()
	if _, err := collection.Indexes().CreateMany(indexCtx, userIndexes()); err != nil {
		return nil, fmt.Errorf("create indexes for %s: %w", userCollectionName, err)
	}

	return &UserRepository{collection: collection, logger: log.Named("UserRepository")}, nil
}

// userIndexes keeps identity fields unique among active users only, so a
// deactivated account never blocks a new sign-in with the same identity.
func userIndexes() []mongo.IndexModel {
	activeOnly := bson.M{"isActive": true}
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "externalAuthId", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(activeOnly),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(activeOnly),
		},
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	doc := userDocument{
		ID:                 primitive.NewObjectID(),
		Email:              user.Email,
		Name:               user.Name,
		Picture:            user.Picture,
		ExternalAuthID:     user.ExternalAuthID,
		FavoriteProperties: user.FavoriteProperties,
		IsActive:           user.IsActive,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if doc.FavoriteProperties == nil {
		doc.FavoriteProperties = []string{}
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: user with this email or external auth id", domain.ErrConflict)
		}
		r.logger.Error("Failed to insert user", zap.Error(err))
		return fmt.Errorf("db insert failed: %w", err)
	}
	user.ID = doc.ID.Hex()
	user.FavoriteProperties = doc.FavoriteProperties
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := parseObjectID("user", id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid}, id)
}

// FindByExternalAuthID only matches active users.
func (r *UserRepository) FindByExternalAuthID(ctx context.Context, externalAuthID string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"externalAuthId": externalAuthID, "isActive": true}, externalAuthID)
}

// UpdateProfile refreshes name and email. The picture is kept when the
// identity carries none.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, identity domain.UserIdentity) (*domain.User, error) {
	oid, err := parseObjectID("user", id)
	if err != nil {
		return nil, err
	}
	set := bson.M{
		"name":      identity.Name,
		"email":     identity.Email,
		"updatedAt": time.Now().UTC(),
	}
	if identity.Picture != "" {
		set["picture"] = identity.Picture
	}
	return r.update(ctx, oid, bson.M{"$set": set})
}

func (r *UserRepository) AddFavorite(ctx context.Context, userID, propertyID string) (*domain.User, error) {
	oid, err := r.favoriteIDs(userID, propertyID)
	if err != nil {
		return nil, err
	}
	return r.update(ctx, oid, bson.M{
		"$addToSet": bson.M{"favoriteProperties": propertyID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	})
}

func (r *UserRepository) RemoveFavorite(ctx context.Context, userID, propertyID string) (*domain.User, error) {
	oid, err := r.favoriteIDs(userID, propertyID)
	if err != nil {
		return nil, err
	}
	return r.update(ctx, oid, bson.M{
		"$pull": bson.M{"favoriteProperties": propertyID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
}

func (r *UserRepository) favoriteIDs(userID, propertyID string) (primitive.ObjectID, error) {
	if _, err := parseObjectID("property", propertyID); err != nil {
		return primitive.NilObjectID, err
	}
	return parseObjectID("user", userID)
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M, ref string) (*domain.User, error) {
	var doc userDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, ref)
		}
		r.logger.Error("Failed to read user", zap.String("ref", ref), zap.Error(err))
		return nil, fmt.Errorf("db findone failed: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) update(ctx context.Context, oid primitive.ObjectID, update bson.M) (*domain.User, error) {
	var doc userDocument
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, oid.Hex())
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: email already registered", domain.ErrConflict)
		}
		r.logger.Error("Failed to update user", zap.String("user_id", oid.Hex()), zap.Error(err))
		return nil, fmt.Errorf("db update failed: %w", err)
	}
	return doc.toDomain(), nil
}
