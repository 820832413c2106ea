package handlers

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rlaxodnjs199/natours-api/internal/apperror"
	"github.com/rlaxodnjs199/natours-api/internal/database"
	"github.com/rlaxodnjs199/natours-api/internal/query"
	"github.com/rlaxodnjs199/natours-api/utils"
)

// ResourceConfig is the capability surface one resource exposes to the
// generic CRUD handlers: where it lives, how to parse and validate writes,
// and which derivations and side effects surround them. Hooks left nil are
// skipped.
type ResourceConfig[T any] struct {
	Collection string
	Singular   string
	Plural     string

	// BaseFilter constrains every read and write, e.g. the secret-tour
	// exclusion or the nested-route tour scope.
	BaseFilter func(c *fiber.Ctx) (bson.M, error)

	// ParseCreate decodes, validates and defaults a create payload into a
	// full document with its _id already assigned.
	ParseCreate func(c *fiber.Ctx) (*T, error)

	// ParseUpdate decodes and validates a partial update into a $set doc.
	ParseUpdate func(c *fiber.Ctx, id primitive.ObjectID) (bson.M, error)

	// AfterDecode derives computed fields on every document read back.
	AfterDecode func(doc *T)

	// Expand resolves one reference field on single-document reads.
	Expand func(ctx context.Context, doc *T) error

	// AfterWrite runs post-persistence side effects (aggregate recomputes)
	// after create, update and delete.
	AfterWrite func(ctx context.Context, doc *T) error
}

func (rc ResourceConfig[T]) col() *mongo.Collection {
	return database.GetCollection(rc.Collection)
}

func (rc ResourceConfig[T]) filter(c *fiber.Ctx, base bson.M) (bson.M, error) {
	if rc.BaseFilter == nil {
		return base, nil
	}
	extra, err := rc.BaseFilter(c)
	if err != nil {
		return nil, err
	}
	for k, v := range extra {
		base[k] = v
	}
	return base, nil
}

func (rc ResourceConfig[T]) notFound() error {
	return apperror.NotFound(fmt.Sprintf("No %s found with that ID", rc.Singular))
}

// parseID reads an identifier path parameter; a malformed value is a cast
// failure reported with the field and value.
func parseID(c *fiber.Ctx, param string) (primitive.ObjectID, error) {
	raw := c.Params(param)
	oid, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperror.BadRequest(fmt.Sprintf("Invalid _id: %s.", raw))
	}
	return oid, nil
}

// GetAll lists documents through the query builder: filter, sort, field
// limiting and pagination in that order.
func GetAll[T any](rc ResourceConfig[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		f := query.Parse(c.Queries())
		filter, err := rc.filter(c, f.Filter)
		if err != nil {
			return err
		}
		f.Filter = filter

		col := rc.col()
		if f.PageRequested() {
			total, err := col.CountDocuments(ctx, f.Filter)
			if err != nil {
				return err
			}
			if err := f.CheckPage(total); err != nil {
				return err
			}
		}

		cursor, err := col.Find(ctx, f.Filter, f.FindOptions())
		if err != nil {
			return err
		}
		defer cursor.Close(ctx)

		docs := make([]T, 0)
		if err := cursor.All(ctx, &docs); err != nil {
			return err
		}
		if rc.AfterDecode != nil {
			for i := range docs {
				rc.AfterDecode(&docs[i])
			}
		}

		return utils.SendList(c, rc.Plural, len(docs), docs)
	}
}

func GetOne[T any](rc ResourceConfig[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		oid, err := parseID(c, "id")
		if err != nil {
			return err
		}
		filter, err := rc.filter(c, bson.M{"_id": oid})
		if err != nil {
			return err
		}

		var doc T
		if err := rc.col().FindOne(ctx, filter).Decode(&doc); err != nil {
			if err == mongo.ErrNoDocuments {
				return rc.notFound()
			}
			return err
		}
		if rc.AfterDecode != nil {
			rc.AfterDecode(&doc)
		}
		if rc.Expand != nil {
			if err := rc.Expand(ctx, &doc); err != nil {
				return err
			}
		}

		return utils.SendData(c, fiber.StatusOK, rc.Singular, &doc)
	}
}

func CreateOne[T any](rc ResourceConfig[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		doc, err := rc.ParseCreate(c)
		if err != nil {
			return err
		}
		if _, err := rc.col().InsertOne(ctx, doc); err != nil {
			return err
		}
		if rc.AfterDecode != nil {
			rc.AfterDecode(doc)
		}
		if rc.AfterWrite != nil {
			if err := rc.AfterWrite(ctx, doc); err != nil {
				return err
			}
		}

		return utils.SendData(c, fiber.StatusCreated, rc.Singular, doc)
	}
}

func UpdateOne[T any](rc ResourceConfig[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		oid, err := parseID(c, "id")
		if err != nil {
			return err
		}
		filter, err := rc.filter(c, bson.M{"_id": oid})
		if err != nil {
			return err
		}
		set, err := rc.ParseUpdate(c, oid)
		if err != nil {
			return err
		}

		var doc T
		if len(set) == 0 {
			err = rc.col().FindOne(ctx, filter).Decode(&doc)
		} else {
			opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
			err = rc.col().FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&doc)
		}
		if err != nil {
			if err == mongo.ErrNoDocuments {
				return rc.notFound()
			}
			return err
		}
		if rc.AfterDecode != nil {
			rc.AfterDecode(&doc)
		}
		if rc.AfterWrite != nil {
			if err := rc.AfterWrite(ctx, &doc); err != nil {
				return err
			}
		}

		return utils.SendData(c, fiber.StatusOK, rc.Singular, &doc)
	}
}

func DeleteOne[T any](rc ResourceConfig[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		oid, err := parseID(c, "id")
		if err != nil {
			return err
		}
		filter, err := rc.filter(c, bson.M{"_id": oid})
		if err != nil {
			return err
		}

		var doc T
		if err := rc.col().FindOneAndDelete(ctx, filter).Decode(&doc); err != nil {
			if err == mongo.ErrNoDocuments {
				return rc.notFound()
			}
			return err
		}
		if rc.AfterWrite != nil {
			if err := rc.AfterWrite(ctx, &doc); err != nil {
				return err
			}
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
