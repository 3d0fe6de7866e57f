package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type OperationType string

const (
	OperationSale   OperationType = "sale"
	OperationRental OperationType = "rental"
)

func (t OperationType) IsValid() bool {
	switch t {
	case OperationSale, OperationRental:
		return true
	}
	return false
}

// Property is a unit of real estate inventory. Code is assigned by the
// repository on creation and never changes afterwards.
type Property struct {
	ID            string        `json:"id"`
	Code          int64         `json:"code"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Address       string        `json:"address"`
	Location      string        `json:"location"`
	Requirements  string        `json:"requirements,omitempty"`
	AcceptsPets   bool          `json:"acceptsPets"`
	IsActive      bool          `json:"isActive"`
	PriceLocal    float64       `json:"priceLocal"`
	PriceForeign  float64       `json:"priceForeign"`
	Fees          float64       `json:"fees"`
	Rooms         int           `json:"rooms"`
	Bathrooms     int           `json:"bathrooms"`
	Environments  int           `json:"environments"`
	OperationType OperationType `json:"operationType"`
	Images        []string      `json:"images"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// CreatePropertyInput carries client supplied fields for a new listing.
// Optional booleans and the operation type fall back to their defaults.
type CreatePropertyInput struct {
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Address       string        `json:"address"`
	Location      string        `json:"location"`
	Requirements  string        `json:"requirements,omitempty"`
	AcceptsPets   *bool         `json:"acceptsPets,omitempty"`
	IsActive      *bool         `json:"isActive,omitempty"`
	PriceLocal    *float64      `json:"priceLocal"`
	PriceForeign  *float64      `json:"priceForeign"`
	Fees          *float64      `json:"fees"`
	Rooms         *int          `json:"rooms"`
	Bathrooms     *int          `json:"bathrooms"`
	Environments  *int          `json:"environments"`
	OperationType OperationType `json:"operationType,omitempty"`
	Images        []string      `json:"images,omitempty"`
}

type textField struct {
	name string
	v    *string
}

type amountField struct {
	name string
	v    *float64
}

type countField struct {
	name string
	v    *int
}

// Fields are checked in declaration order so the reported field is stable.
func (in CreatePropertyInput) Validate() error {
	var missing []string
	for _, f := range []textField{
		{"title", &in.Title},
		{"description", &in.Description},
		{"address", &in.Address},
		{"location", &in.Location},
	} {
		if strings.TrimSpace(*f.v) == "" {
			missing = append(missing, f.name)
		}
	}
	for _, f := range []amountField{
		{"priceLocal", in.PriceLocal},
		{"priceForeign", in.PriceForeign},
		{"fees", in.Fees},
	} {
		if f.v == nil {
			missing = append(missing, f.name)
		} else if *f.v < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrValidation, f.name)
		}
	}
	for _, f := range []countField{
		{"rooms", in.Rooms},
		{"bathrooms", in.Bathrooms},
		{"environments", in.Environments},
	} {
		if f.v == nil {
			missing = append(missing, f.name)
		} else if *f.v < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrValidation, f.name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w: missing required fields: %s", ErrValidation, strings.Join(missing, ", "))
	}
	if in.OperationType != "" && !in.OperationType.IsValid() {
		return fmt.Errorf("%w: operationType must be one of sale, rental", ErrValidation)
	}
	return nil
}

// ToProperty builds an active listing with defaults applied. Code, ID and
// timestamps are left for the repository.
func (in CreatePropertyInput) ToProperty() *Property {
	p := &Property{
		Title:         in.Title,
		Description:   in.Description,
		Address:       in.Address,
		Location:      NormalizeLocation(in.Location),
		Requirements:  in.Requirements,
		IsActive:      true,
		OperationType: OperationRental,
		Images:        []string{},
	}
	if in.AcceptsPets != nil {
		p.AcceptsPets = *in.AcceptsPets
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if in.PriceLocal != nil {
		p.PriceLocal = *in.PriceLocal
	}
	if in.PriceForeign != nil {
		p.PriceForeign = *in.PriceForeign
	}
	if in.Fees != nil {
		p.Fees = *in.Fees
	}
	if in.Rooms != nil {
		p.Rooms = *in.Rooms
	}
	if in.Bathrooms != nil {
		p.Bathrooms = *in.Bathrooms
	}
	if in.Environments != nil {
		p.Environments = *in.Environments
	}
	if in.OperationType != "" {
		p.OperationType = in.OperationType
	}
	if len(in.Images) > 0 {
		p.Images = append(p.Images, in.Images...)
	}
	return p
}

// PropertyPatch is a partial update. Nil fields are left untouched.
// Images are appended to the stored list unless ClearImages is set.
type PropertyPatch struct {
	Title         *string        `json:"title,omitempty"`
	Description   *string        `json:"description,omitempty"`
	Address       *string        `json:"address,omitempty"`
	Location      *string        `json:"location,omitempty"`
	Requirements  *string        `json:"requirements,omitempty"`
	AcceptsPets   *bool          `json:"acceptsPets,omitempty"`
	IsActive      *bool          `json:"isActive,omitempty"`
	PriceLocal    *float64       `json:"priceLocal,omitempty"`
	PriceForeign  *float64       `json:"priceForeign,omitempty"`
	Fees          *float64       `json:"fees,omitempty"`
	Rooms         *int           `json:"rooms,omitempty"`
	Bathrooms     *int           `json:"bathrooms,omitempty"`
	Environments  *int           `json:"environments,omitempty"`
	OperationType *OperationType `json:"operationType,omitempty"`
	Images        []string       `json:"images,omitempty"`
	ClearImages   bool           `json:"clearImages,omitempty"`
}

func (p PropertyPatch) Validate() error {
	for _, f := range []textField{
		{"title", p.Title},
		{"description", p.Description},
		{"address", p.Address},
		{"location", p.Location},
	} {
		if f.v != nil && strings.TrimSpace(*f.v) == "" {
			return fmt.Errorf("%w: %s must not be empty", ErrValidation, f.name)
		}
	}
	for _, f := range []amountField{
		{"priceLocal", p.PriceLocal},
		{"priceForeign", p.PriceForeign},
		{"fees", p.Fees},
	} {
		if f.v != nil && *f.v < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrValidation, f.name)
		}
	}
	for _, f := range []countField{
		{"rooms", p.Rooms},
		{"bathrooms", p.Bathrooms},
		{"environments", p.Environments},
	} {
		if f.v != nil && *f.v < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrValidation, f.name)
		}
	}
	if p.OperationType != nil && !p.OperationType.IsValid() {
		return fmt.Errorf("%w: operationType must be one of sale, rental", ErrValidation)
	}
	return nil
}

// Normalize applies write-time transformations (location is stored uppercased).
func (p *PropertyPatch) Normalize() {
	if p.Location != nil {
		loc := NormalizeLocation(*p.Location)
		p.Location = &loc
	}
}

func NormalizeLocation(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

type PropertyPage struct {
	Items      []*Property `json:"items"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"totalPages"`
}

type User struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	Name               string    `json:"name"`
	Picture            string    `json:"picture,omitempty"`
	ExternalAuthID     string    `json:"externalAuthId"`
	FavoriteProperties []string  `json:"favoriteProperties"`
	IsActive           bool      `json:"isActive"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// UserIdentity is the profile received from the federated identity provider.
type UserIdentity struct {
	Email          string `json:"email"`
	Name           string `json:"name"`
	Picture        string `json:"picture,omitempty"`
	ExternalAuthID string `json:"externalAuthId"`
}

func (u UserIdentity) Validate() error {
	if strings.TrimSpace(u.ExternalAuthID) == "" {
		return fmt.Errorf("%w: externalAuthId is required", ErrValidation)
	}
	if strings.TrimSpace(u.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	at := strings.Index(u.Email, "@")
	if at <= 0 || at == len(u.Email)-1 || strings.ContainsAny(u.Email, " \t") {
		return fmt.Errorf("%w: email %q is not valid", ErrValidation, u.Email)
	}
	return nil
}
