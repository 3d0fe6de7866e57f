package domain

import (
	"context"
	"time"
)

type PropertyRepository interface {
	// NextCode atomically reserves the next listing code.
	NextCode(ctx context.Context) (int64, error)
	Create(ctx context.Context, property *Property) error
	FindByID(ctx context.Context, id string) (*Property, error)
	Update(ctx context.Context, id string, patch PropertyPatch) (*Property, error)
	AppendImages(ctx context.Context, id string, urls []string) (*Property, error)
	RemoveImage(ctx context.Context, id string, url string) (*Property, error)
	Delete(ctx context.Context, id string) error
	Find(ctx context.Context, filter PropertyFilter, sort SortKey, skip, limit int64) ([]*Property, error)
	Count(ctx context.Context, filter PropertyFilter) (int64, error)
	DistinctLocations(ctx context.Context) ([]string, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByExternalAuthID(ctx context.Context, externalAuthID string) (*User, error)
	UpdateProfile(ctx context.Context, id string, identity UserIdentity) (*User, error)
	AddFavorite(ctx context.Context, userID, propertyID string) (*User, error)
	RemoveFavorite(ctx context.Context, userID, propertyID string) (*User, error)
}

// MediaStore is the external image host.
type MediaStore interface {
	Upload(ctx context.Context, file MediaFile, opts UploadOptions) (StoredMedia, error)
	Delete(ctx context.Context, id string) error
}

// PropertyCache misses are reported as (nil, nil).
type PropertyCache interface {
	GetProperty(ctx context.Context, id string) (*Property, error)
	SetProperty(ctx context.Context, property *Property) error
	DeleteProperty(ctx context.Context, id string) error
	GetFeatured(ctx context.Context) ([]*Property, error)
	SetFeatured(ctx context.Context, properties []*Property, ttl time.Duration) error
	DeleteFeatured(ctx context.Context) error
}

type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

type Notifier interface {
	SendPropertyCreated(property *Property) error
}
