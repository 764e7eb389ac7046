package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// NewMongoStore wires every repository to one database.
func NewMongoStore(client *mongo.Client, dbName string) *Store {
	db := client.Database(dbName)
	return &Store{
		Identities:   NewMongoIdentityRepository(db),
		Listings:     NewMongoListingRepository(db),
		Appointments: NewMongoAppointmentRepository(db),
		Photos:       NewGridFSPhotoRepository(db),
		Ping:         func(ctx context.Context) error { return client.Ping(ctx, nil) },
		Close:        client.Disconnect,
	}
}

var (
	_ IdentityRepository    = (*MongoIdentityRepository)(nil)
	_ ListingRepository     = (*MongoListingRepository)(nil)
	_ AppointmentRepository = (*MongoAppointmentRepository)(nil)
	_ PhotoRepository       = (*GridFSPhotoRepository)(nil)
)
