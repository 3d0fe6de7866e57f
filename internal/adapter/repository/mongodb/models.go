package mongodb

import (
	"time"

	"github.com/Abdurahmanit/GroupProject/property-service/internal/property/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type propertyDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Code          int64              `bson:"code"`
	Title         string             `bson:"title"`
	Description   string             `bson:"description"`
	Address       string             `bson:"address"`
	Location      string             `bson:"location"`
	Requirements  string             `bson:"requirements,omitempty"`
	AcceptsPets   bool               `bson:"acceptsPets"`
	IsActive      bool               `bson:"isActive"`
	PriceLocal    float64            `bson:"priceLocal"`
	PriceForeign  float64            `bson:"priceForeign"`
	Fees          float64            `bson:"fees"`
	Rooms         int                `bson:"rooms"`
	Bathrooms     int                `bson:"bathrooms"`
	Environments  int                `bson:"environments"`
	OperationType string             `bson:"operationType"`
	Images        []string           `bson:"images"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

func fromDomainProperty(p *domain.Property) propertyDocument {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return propertyDocument{
		Code:          p.Code,
		Title:         p.Title,
		Description:   p.Description,
		Address:       p.Address,
		Location:      p.Location,
		Requirements:  p.Requirements,
		AcceptsPets:   p.AcceptsPets,
		IsActive:      p.IsActive,
		PriceLocal:    p.PriceLocal,
		PriceForeign:  p.PriceForeign,
		Fees:          p.Fees,
		Rooms:         p.Rooms,
		Bathrooms:     p.Bathrooms,
		Environments:  p.Environments,
		OperationType: string(p.OperationType),
		Images:        images,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func (d *propertyDocument) toDomain() *domain.Property {
	images := d.Images
	if images == nil {
		images = []string{}
	}
	return &domain.Property{
		ID:            d.ID.Hex(),
		Code:          d.Code,
		Title:         d.Title,
		Description:   d.Description,
		Address:       d.Address,
		Location:      d.Location,
		Requirements:  d.Requirements,
		AcceptsPets:   d.AcceptsPets,
		IsActive:      d.IsActive,
		PriceLocal:    d.PriceLocal,
		PriceForeign:  d.PriceForeign,
		Fees:          d.Fees,
		Rooms:         d.Rooms,
		Bathrooms:     d.Bathrooms,
		Environments:  d.Environments,
		OperationType: domain.OperationType(d.OperationType),
		Images:        images,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

type userDocument struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	Email              string             `bson:"email"`
	Name               string             `bson:"name"`
	Picture            string             `bson:"picture,omitempty"`
	ExternalAuthID     string             `bson:"externalAuthId"`
	FavoriteProperties []string           `bson:"favoriteProperties"`
	IsActive           bool               `bson:"isActive"`
	CreatedAt          time.Time          `bson:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt"`
}

func (d *userDocument) toDomain() *domain.User {
	favs := d.FavoriteProperties
	if favs == nil {
		favs = []string{}
	}
	return &domain.User{
		ID:                 d.ID.Hex(),
		Email:              d.Email,
		Name:               d.Name,
		Picture:            d.Picture,
		ExternalAuthID:     d.ExternalAuthID,
		FavoriteProperties: favs,
		IsActive:           d.IsActive,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

// counterDocument backs atomic sequence allocation.
type counterDocument struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}
