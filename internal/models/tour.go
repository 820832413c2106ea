package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rlaxodnjs199/natours-api/internal/slug"
)

// Location is a GeoJSON point. Coordinates are [lng, lat].
type Location struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
	Address     string    `json:"address,omitempty" bson:"address,omitempty"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Day         int       `json:"day,omitempty" bson:"day,omitempty"`
}

type Tour struct {
	ID              primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Name            string               `json:"name" bson:"name"`
	Slug            string               `json:"slug" bson:"slug"`
	Duration        float64              `json:"duration" bson:"duration"`
	MaxGroupSize    int                  `json:"maxGroupSize" bson:"maxGroupSize"`
	Difficulty      string               `json:"difficulty" bson:"difficulty"`
	RatingsAverage  float64              `json:"ratingsAverage" bson:"ratingsAverage"`
	RatingsQuantity int                  `json:"ratingsQuantity" bson:"ratingsQuantity"`
	Price           float64              `json:"price" bson:"price"`
	PriceDiscount   float64              `json:"priceDiscount,omitempty" bson:"priceDiscount,omitempty"`
	Summary         string               `json:"summary" bson:"summary"`
	Description     string               `json:"description,omitempty" bson:"description,omitempty"`
	ImageCover      string               `json:"imageCover" bson:"imageCover"`
	Images          []string             `json:"images,omitempty" bson:"images,omitempty"`
	CreatedAt       time.Time            `json:"-" bson:"createdAt"`
	StartDates      []time.Time          `json:"startDates,omitempty" bson:"startDates,omitempty"`
	SecretTour      bool                 `json:"-" bson:"secretTour"`
	StartLocation   *Location            `json:"startLocation,omitempty" bson:"startLocation,omitempty"`
	Locations       []Location           `json:"locations,omitempty" bson:"locations,omitempty"`
	Guides          []primitive.ObjectID `json:"guides,omitempty" bson:"guides,omitempty"`

	// Derived at read time, never stored.
	DurationWeeks float64      `json:"durationWeeks" bson:"-"`
	GuideUsers    []PublicUser `json:"guideUsers,omitempty" bson:"-"`
}

// Derive fills the computed fields after a document is decoded.
func (t *Tour) Derive() {
	t.DurationWeeks = t.Duration / 7
}

type CreateTourRequest struct {
	Name          string      `json:"name" validate:"required,min=10,max=40"`
	Duration      float64     `json:"duration" validate:"required,gt=0"`
	MaxGroupSize  int         `json:"maxGroupSize" validate:"required,gt=0"`
	Difficulty    string      `json:"difficulty" validate:"required,oneof=easy medium difficult"`
	Price         float64     `json:"price" validate:"required,gt=0"`
	PriceDiscount float64     `json:"priceDiscount" validate:"omitempty,ltfield=Price"`
	Summary       string      `json:"summary" validate:"required"`
	Description   string      `json:"description"`
	ImageCover    string      `json:"imageCover" validate:"required"`
	Images        []string    `json:"images"`
	StartDates    []time.Time `json:"startDates"`
	SecretTour    bool        `json:"secretTour"`
	StartLocation *Location   `json:"startLocation"`
	Locations     []Location  `json:"locations"`
	Guides        []string    `json:"guides" validate:"omitempty,dive,len=24"`
}

// Tour builds a persistable document from the request: trims text fields,
// applies schema defaults and derives the slug from the name.
func (r *CreateTourRequest) Tour() (*Tour, error) {
	guides := make([]primitive.ObjectID, 0, len(r.Guides))
	for _, g := range r.Guides {
		oid, err := primitive.ObjectIDFromHex(g)
		if err != nil {
			return nil, err
		}
		guides = append(guides, oid)
	}

	t := &Tour{
		ID:              primitive.NewObjectID(),
		Name:            trim(r.Name),
		Slug:            slug.Make(r.Name),
		Duration:        r.Duration,
		MaxGroupSize:    r.MaxGroupSize,
		Difficulty:      r.Difficulty,
		RatingsAverage:  4.5,
		RatingsQuantity: 0,
		Price:           r.Price,
		PriceDiscount:   r.PriceDiscount,
		Summary:         trim(r.Summary),
		Description:     trim(r.Description),
		ImageCover:      r.ImageCover,
		Images:          r.Images,
		CreatedAt:       time.Now(),
		StartDates:      r.StartDates,
		SecretTour:      r.SecretTour,
		StartLocation:   r.StartLocation,
		Locations:       r.Locations,
	}
	if len(guides) > 0 {
		t.Guides = guides
	}
	return t, nil
}

// UpdateTourRequest carries a partial tour update. Nil fields are left
// untouched; unknown body fields are dropped by JSON decoding.
type UpdateTourRequest struct {
	Name          *string     `json:"name" validate:"omitempty,min=10,max=40"`
	Duration      *float64    `json:"duration" validate:"omitempty,gt=0"`
	MaxGroupSize  *int        `json:"maxGroupSize" validate:"omitempty,gt=0"`
	Difficulty    *string     `json:"difficulty" validate:"omitempty,oneof=easy medium difficult"`
	Price         *float64    `json:"price" validate:"omitempty,gt=0"`
	PriceDiscount *float64    `json:"priceDiscount"`
	Summary       *string     `json:"summary"`
	Description   *string     `json:"description"`
	ImageCover    *string     `json:"imageCover"`
	Images        []string    `json:"images"`
	StartDates    []time.Time `json:"startDates"`
	SecretTour    *bool       `json:"secretTour"`
	StartLocation *Location   `json:"startLocation"`
	Locations     []Location  `json:"locations"`
}

// SetDoc turns the non-nil fields into a $set document. Changing the name
// re-derives the slug.
func (r *UpdateTourRequest) SetDoc() bson.M {
	set := bson.M{}
	if r.Name != nil {
		set["name"] = trim(*r.Name)
		set["slug"] = slug.Make(*r.Name)
	}
	if r.Duration != nil {
		set["duration"] = *r.Duration
	}
	if r.MaxGroupSize != nil {
		set["maxGroupSize"] = *r.MaxGroupSize
	}
	if r.Difficulty != nil {
		set["difficulty"] = *r.Difficulty
	}
	if r.Price != nil {
		set["price"] = *r.Price
	}
	if r.PriceDiscount != nil {
		set["priceDiscount"] = *r.PriceDiscount
	}
	if r.Summary != nil {
		set["summary"] = trim(*r.Summary)
	}
	if r.Description != nil {
		set["description"] = trim(*r.Description)
	}
	if r.ImageCover != nil {
		set["imageCover"] = *r.ImageCover
	}
	if r.Images != nil {
		set["images"] = r.Images
	}
	if r.StartDates != nil {
		set["startDates"] = r.StartDates
	}
	if r.SecretTour != nil {
		set["secretTour"] = *r.SecretTour
	}
	if r.StartLocation != nil {
		set["startLocation"] = r.StartLocation
	}
	if r.Locations != nil {
		set["locations"] = r.Locations
	}
	return set
}

// ValidateDiscount checks the cross-field rule a partial update can break:
// a new discount must stay below the effective price.
func (r *UpdateTourRequest) ValidateDiscount(currentPrice float64) bool {
	if r.PriceDiscount == nil || *r.PriceDiscount == 0 {
		return true
	}
	price := currentPrice
	if r.Price != nil {
		price = *r.Price
	}
	return *r.PriceDiscount < price
}
