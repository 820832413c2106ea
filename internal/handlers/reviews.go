package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/rlaxodnjs199/natours-api/internal/apperror"
	"github.com/rlaxodnjs199/natours-api/internal/database"
	"github.com/rlaxodnjs199/natours-api/internal/models"
	"github.com/rlaxodnjs199/natours-api/utils"
)

// nestedTourFilter scopes reviews to the tour in the URL on the nested
// routes; the flat /reviews routes carry no tourId parameter.
func nestedTourFilter(c *fiber.Ctx) (bson.M, error) {
	raw := c.Params("tourId")
	if raw == "" {
		return bson.M{}, nil
	}
	oid, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return nil, apperror.BadRequest(fmt.Sprintf("Invalid tour: %s.", raw))
	}
	return bson.M{"tour": oid}, nil
}

var reviewResource = ResourceConfig[models.Review]{
	Collection:  database.ColReviews,
	Singular:    "review",
	Plural:      "reviews",
	BaseFilter:  nestedTourFilter,
	ParseCreate: parseCreateReview,
	ParseUpdate: parseUpdateReview,
	Expand:      expandReviewAuthor,
	AfterWrite:  recalcTourRatings,
}

var (
	GetAllReviews = GetAll(reviewResource)
	GetReview     = GetOne(reviewResource)
	CreateReview  = CreateOne(reviewResource)
	UpdateReview  = UpdateOne(reviewResource)
	DeleteReview  = DeleteOne(reviewResource)
)

func parseCreateReview(c *fiber.Ctx) (*models.Review, error) {
	var req models.CreateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, apperror.BadRequest("Invalid request body")
	}
	if err := utils.Validate.Struct(req); err != nil {
		return nil, err
	}

	// Tour comes from the nested URL when present, from the body otherwise.
	rawTour := c.Params("tourId")
	if rawTour == "" {
		rawTour = req.Tour
	}
	tourID, err := primitive.ObjectIDFromHex(rawTour)
	if err != nil {
		return nil, apperror.BadRequest(fmt.Sprintf("Invalid tour: %s.", rawTour))
	}

	user := CurrentUser(c)
	if user == nil {
		return nil, apperror.Unauthorized("You are not logged in! Please log in to get access.")
	}

	return &models.Review{
		ID:        primitive.NewObjectID(),
		Review:    req.Review,
		Rating:    req.Rating,
		Tour:      tourID,
		User:      user.ID,
		CreatedAt: time.Now(),
	}, nil
}

func parseUpdateReview(c *fiber.Ctx, _ primitive.ObjectID) (bson.M, error) {
	var req models.UpdateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, apperror.BadRequest("Invalid request body")
	}
	if err := utils.Validate.Struct(req); err != nil {
		return nil, err
	}
	return req.SetDoc(), nil
}

func expandReviewAuthor(ctx context.Context, review *models.Review) error {
	var user models.User
	err := database.GetCollection(database.ColUsers).
		FindOne(ctx, bson.M{"_id": review.User}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil
		}
		return err
	}
	author := user.Public()
	author.Role = ""
	review.Author = &author
	return nil
}

// recalcTourRatings refreshes the owning tour's rating statistics after
// any review write or delete. With no reviews left the tour falls back to
// the schema defaults: quantity 0, average 4.5.
func recalcTourRatings(ctx context.Context, review *models.Review) error {
	pipeline := []bson.M{
		{"$match": bson.M{"tour": review.Tour}},
		{"$group": bson.M{
			"_id":       "$tour",
			"nRating":   bson.M{"$sum": 1},
			"avgRating": bson.M{"$avg": "$rating"},
		}},
	}

	cursor, err := database.GetCollection(database.ColReviews).Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var stats []struct {
		NRating   int     `bson:"nRating"`
		AvgRating float64 `bson:"avgRating"`
	}
	if err := cursor.All(ctx, &stats); err != nil {
		return err
	}

	set := bson.M{"ratingsQuantity": 0, "ratingsAverage": 4.5}
	if len(stats) > 0 {
		set = bson.M{
			"ratingsQuantity": stats[0].NRating,
			"ratingsAverage":  stats[0].AvgRating,
		}
	}

	_, err = database.GetCollection(database.ColTours).
		UpdateByID(ctx, review.Tour, bson.M{"$set": set})
	return err
}
