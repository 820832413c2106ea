package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Review struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Review    string             `json:"review" bson:"review"`
	Rating    float64            `json:"rating" bson:"rating"`
	Tour      primitive.ObjectID `json:"tour" bson:"tour"`
	User      primitive.ObjectID `json:"user" bson:"user"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`

	// Filled when the user reference is expanded on reads.
	Author *PublicUser `json:"author,omitempty" bson:"-"`
}

type CreateReviewRequest struct {
	Review string  `json:"review" validate:"required"`
	Rating float64 `json:"rating" validate:"required,min=1,max=5"`
	// Optional on the nested route, where it comes from the URL.
	Tour string `json:"tour" validate:"omitempty,len=24"`
}

type UpdateReviewRequest struct {
	Review *string  `json:"review" validate:"omitempty,min=1"`
	Rating *float64 `json:"rating" validate:"omitempty,min=1,max=5"`
}

func (r *UpdateReviewRequest) SetDoc() bson.M {
	set := bson.M{}
	if r.Review != nil {
		set["review"] = trim(*r.Review)
	}
	if r.Rating != nil {
		set["rating"] = *r.Rating
	}
	return set
}
