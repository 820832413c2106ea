package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var Client *mongo.Client
var DB *mongo.Database

// Collection names
const (
	ColTours   = "tours"
	ColUsers   = "users"
	ColReviews = "reviews"
)

func Connect(uri, dbName string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return err
	}

	if err := client.Ping(ctx, nil); err != nil {
		return err
	}

	Client = client
	DB = client.Database(dbName)

	if err := ensureIndexes(ctx); err != nil {
		log.Printf("WARNING: ensure indexes failed: %v", err)
	}

	log.Println("DB connection successful")
	return nil
}

func Disconnect() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return Client.Disconnect(ctx)
}

func GetCollection(name string) *mongo.Collection {
	return DB.Collection(name)
}

// ensureIndexes declares every index the service relies on. The unique
// indexes back the duplicate-key error translation; the 2dsphere index
// backs the geo queries on tours.
func ensureIndexes(ctx context.Context) error {
	type idx struct {
		col    string
		keys   bson.D
		unique bool
	}

	indexes := []idx{
		{ColTours, bson.D{{Key: "name", Value: 1}}, true},
		{ColTours, bson.D{{Key: "slug", Value: 1}}, false},
		{ColTours, bson.D{{Key: "price", Value: 1}, {Key: "ratingsAverage", Value: -1}}, false},
		{ColTours, bson.D{{Key: "startLocation", Value: "2dsphere"}}, false},

		{ColUsers, bson.D{{Key: "email", Value: 1}}, true},

		// at most one review per (tour, user) pair
		{ColReviews, bson.D{{Key: "tour", Value: 1}, {Key: "user", Value: 1}}, true},
		{ColReviews, bson.D{{Key: "createdAt", Value: -1}}, false},
	}

	for _, i := range indexes {
		opts := options.Index()
		if i.unique {
			opts.SetUnique(true)
		}
		_, err := DB.Collection(i.col).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    i.keys,
			Options: opts,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
