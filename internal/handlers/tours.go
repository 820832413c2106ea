package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
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

// Earth radii used to convert distances to radians for $centerSphere.
const (
	earthRadiusMiles = 3963.2
	earthRadiusKm    = 6378.1
)

// secretTourFilter hides secret tours from every read. Documents written
// before the field existed lack it entirely, hence $ne instead of a plain
// equality.
func secretTourFilter(*fiber.Ctx) (bson.M, error) {
	return bson.M{"secretTour": bson.M{"$ne": true}}, nil
}

var tourResource = ResourceConfig[models.Tour]{
	Collection:  database.ColTours,
	Singular:    "tour",
	Plural:      "tours",
	BaseFilter:  secretTourFilter,
	ParseCreate: parseCreateTour,
	ParseUpdate: parseUpdateTour,
	AfterDecode: func(t *models.Tour) { t.Derive() },
	Expand:      expandTourGuides,
}

var (
	GetAllTours = GetAll(tourResource)
	GetTour     = GetOne(tourResource)
	CreateTour  = CreateOne(tourResource)
	UpdateTour  = UpdateOne(tourResource)
	DeleteTour  = DeleteOne(tourResource)
)

func parseCreateTour(c *fiber.Ctx) (*models.Tour, error) {
	var req models.CreateTourRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, apperror.BadRequest("Invalid request body")
	}
	if err := utils.Validate.Struct(req); err != nil {
		return nil, err
	}

	tour, err := req.Tour()
	if err != nil {
		return nil, apperror.BadRequest(fmt.Sprintf("Invalid guides: %v", req.Guides))
	}
	return tour, nil
}

func parseUpdateTour(c *fiber.Ctx, id primitive.ObjectID) (bson.M, error) {
	var req models.UpdateTourRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, apperror.BadRequest("Invalid request body")
	}
	if err := utils.Validate.Struct(req); err != nil {
		return nil, err
	}

	// The discount rule spans two fields, one of which may keep its
	// stored value, so it is checked against the current document.
	if req.PriceDiscount != nil {
		var current models.Tour
		err := database.GetCollection(database.ColTours).
			FindOne(context.Background(), bson.M{"_id": id}).Decode(&current)
		if err := checkDiscountUpdate(&req, &current, err); err != nil {
			return nil, err
		}
	}

	return req.SetDoc(), nil
}

// checkDiscountUpdate validates a discount change against the stored
// price. Lookup failures propagate; a missing document is left for the
// update itself to report as not found.
func checkDiscountUpdate(req *models.UpdateTourRequest, current *models.Tour, lookupErr error) error {
	if lookupErr != nil {
		if lookupErr == mongo.ErrNoDocuments {
			return nil
		}
		return lookupErr
	}
	if !req.ValidateDiscount(current.Price) {
		return apperror.BadRequest("Invalid input data. priceDiscount must be below the regular price.")
	}
	return nil
}

// expandTourGuides resolves the guide references into public user shapes.
func expandTourGuides(ctx context.Context, tour *models.Tour) error {
	if len(tour.Guides) == 0 {
		return nil
	}

	cursor, err := database.GetCollection(database.ColUsers).
		Find(ctx, bson.M{"_id": bson.M{"$in": tour.Guides}})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var guides []models.PublicUser
	if err := cursor.All(ctx, &guides); err != nil {
		return err
	}
	tour.GuideUsers = guides
	return nil
}

// AliasTopTours presets the query string for the top-5-cheap route before
// the regular list handler runs.
func AliasTopTours(c *fiber.Ctx) error {
	c.Request().URI().SetQueryString("limit=5&sort=-ratingsAverage,price&fields=name,price,ratingsAverage,summary,difficulty")
	return c.Next()
}

// GetTourStats groups the well-rated tours by difficulty.
func GetTourStats(c *fiber.Ctx) error {
	ctx := context.Background()

	pipeline := []bson.M{
		{"$match": bson.M{
			"secretTour":     bson.M{"$ne": true},
			"ratingsAverage": bson.M{"$gte": 4.5},
		}},
		{"$group": bson.M{
			"_id":        bson.M{"$toUpper": "$difficulty"},
			"numTours":   bson.M{"$sum": 1},
			"numRatings": bson.M{"$sum": "$ratingsQuantity"},
			"avgRating":  bson.M{"$avg": "$ratingsAverage"},
			"avgPrice":   bson.M{"$avg": "$price"},
			"minPrice":   bson.M{"$min": "$price"},
			"maxPrice":   bson.M{"$max": "$price"},
		}},
		{"$sort": bson.M{"avgPrice": 1}},
	}

	cursor, err := database.GetCollection(database.ColTours).Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var stats []bson.M
	if err := cursor.All(ctx, &stats); err != nil {
		return err
	}

	return utils.SendData(c, fiber.StatusOK, "stats", stats)
}

// GetMonthlyPlan counts tour starts per month of the given year.
func GetMonthlyPlan(c *fiber.Ctx) error {
	ctx := context.Background()

	year, err := strconv.Atoi(c.Params("year"))
	if err != nil {
		return apperror.BadRequest(fmt.Sprintf("Invalid year: %s.", c.Params("year")))
	}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)

	pipeline := []bson.M{
		{"$match": bson.M{"secretTour": bson.M{"$ne": true}}},
		{"$unwind": "$startDates"},
		{"$match": bson.M{"startDates": bson.M{"$gte": from, "$lte": to}}},
		{"$group": bson.M{
			"_id":           bson.M{"$month": "$startDates"},
			"numTourStarts": bson.M{"$sum": 1},
			"tours":         bson.M{"$push": "$name"},
		}},
		{"$addFields": bson.M{"month": "$_id"}},
		{"$project": bson.M{"_id": 0}},
		{"$sort": bson.M{"numTourStarts": -1}},
		{"$limit": 12},
	}

	cursor, err := database.GetCollection(database.ColTours).Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var plan []bson.M
	if err := cursor.All(ctx, &plan); err != nil {
		return err
	}

	return utils.SendData(c, fiber.StatusOK, "plan", plan)
}

// GetToursWithin lists tours whose start location falls inside a sphere of
// the given radius around a center point.
// Route: /tours-within/:distance/center/:latlng/unit/:unit
func GetToursWithin(c *fiber.Ctx) error {
	ctx := context.Background()

	distance, err := strconv.ParseFloat(c.Params("distance"), 64)
	if err != nil {
		return apperror.BadRequest(fmt.Sprintf("Invalid distance: %s.", c.Params("distance")))
	}
	lat, lng, err := parseLatLng(c.Params("latlng"))
	if err != nil {
		return err
	}

	radius := distance / earthRadiusKm
	if c.Params("unit") == "mi" {
		radius = distance / earthRadiusMiles
	}

	filter := bson.M{
		"secretTour": bson.M{"$ne": true},
		"startLocation": bson.M{
			"$geoWithin": bson.M{"$centerSphere": []interface{}{[]float64{lng, lat}, radius}},
		},
	}

	cursor, err := database.GetCollection(database.ColTours).Find(ctx, filter)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	tours := make([]models.Tour, 0)
	if err := cursor.All(ctx, &tours); err != nil {
		return err
	}
	for i := range tours {
		tours[i].Derive()
	}

	return utils.SendList(c, "tours", len(tours), tours)
}

// GetDistances returns the distance from a point to every tour start.
// Route: /distances/:latlng/unit/:unit
func GetDistances(c *fiber.Ctx) error {
	ctx := context.Background()

	lat, lng, err := parseLatLng(c.Params("latlng"))
	if err != nil {
		return err
	}

	// $geoNear yields meters; convert to the requested unit.
	multiplier := 0.001
	if c.Params("unit") == "mi" {
		multiplier = 0.000621371
	}

	pipeline := []bson.M{
		{"$geoNear": bson.M{
			"near": bson.M{
				"type":        "Point",
				"coordinates": []float64{lng, lat},
			},
			"distanceField":      "distance",
			"distanceMultiplier": multiplier,
			"query":              bson.M{"secretTour": bson.M{"$ne": true}},
		}},
		{"$project": bson.M{"distance": 1, "name": 1}},
	}

	cursor, err := database.GetCollection(database.ColTours).Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var distances []bson.M
	if err := cursor.All(ctx, &distances); err != nil {
		return err
	}

	return utils.SendData(c, fiber.StatusOK, "distances", distances)
}

func parseLatLng(latlng string) (lat, lng float64, err error) {
	parts := strings.Split(latlng, ",")
	if len(parts) == 2 {
		lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		lng, errLng := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if errLat == nil && errLng == nil {
			return lat, lng, nil
		}
	}
	return 0, 0, apperror.BadRequest("Please provide latitude and longitude in the format lat,lng.")
}
