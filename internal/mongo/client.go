package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Collection names.
const (
	Buyers       = "buyers"
	Sellers      = "sellers"
	Admins       = "admins"
	Properties   = "properties"
	Appointments = "appointments"
	PhotoBucket  = "photos"
)

const connectTimeout = 10 * time.Second

// NewMongoClient connects and pings the server.
func NewMongoClient(ctx context.Context, uri string, log *zap.Logger) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	log.Info("connected to MongoDB")
	return client, nil
}

// EnsureIndexes creates the unique handle indexes on every identity
// collection plus the lookup indexes used by listing and appointment queries.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)
	for _, coll := range []string{Buyers, Sellers, Admins} {
		_, err := db.Collection(coll).Indexes().CreateMany(ctx, []mongo.IndexModel{
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
		})
		if err != nil {
			return fmt.Errorf("index %s: %w", coll, err)
		}
	}

	_, err := db.Collection(Properties).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "createdBy", Value: 1}, {Key: "createdByModel", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("index %s: %w", Properties, err)
	}

	_, err = db.Collection(Appointments).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "buyer", Value: 1}}},
		{Keys: bson.D{{Key: "seller", Value: 1}}},
		{Keys: bson.D{{Key: "property", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("index %s: %w", Appointments, err)
	}
	return nil
}
