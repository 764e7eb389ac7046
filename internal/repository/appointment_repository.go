package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"realestate-service/internal/model"
	mongodb "realestate-service/internal/mongo"
)

type appointmentDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Date         time.Time          `bson:"date"`
	PlaceToVisit string             `bson:"placeToVisit"`
	Message      string             `bson:"message"`
	Seller       primitive.ObjectID `bson:"seller"`
	Buyer        primitive.ObjectID `bson:"buyer"`
	Property     primitive.ObjectID `bson:"property"`
	Status       string             `bson:"status"`
	CreatedAt    time.Time          `bson:"createdAt"`
}

func (d *appointmentDoc) toModel() model.Appointment {
	return model.Appointment{
		ID:           d.ID.Hex(),
		Date:         d.Date,
		PlaceToVisit: d.PlaceToVisit,
		Message:      d.Message,
		SellerID:     d.Seller.Hex(),
		BuyerID:      d.Buyer.Hex(),
		ListingID:    d.Property.Hex(),
		Status:       model.AppointmentStatus(d.Status),
		CreatedAt:    d.CreatedAt,
	}
}

type MongoAppointmentRepository struct {
	Coll *mongo.Collection
}

func NewMongoAppointmentRepository(db *mongo.Database) *MongoAppointmentRepository {
	return &MongoAppointmentRepository{Coll: db.Collection(mongodb.Appointments)}
}

func (r *MongoAppointmentRepository) Create(ctx context.Context, a *model.Appointment) error {
	seller, err := objectID(a.SellerID)
	if err != nil {
		return err
	}
	buyer, err := objectID(a.BuyerID)
	if err != nil {
		return err
	}
	property, err := objectID(a.ListingID)
	if err != nil {
		return err
	}
	doc := appointmentDoc{
		ID:           primitive.NewObjectID(),
		Date:         a.Date,
		PlaceToVisit: a.PlaceToVisit,
		Message:      a.Message,
		Seller:       seller,
		Buyer:        buyer,
		Property:     property,
		Status:       string(a.Status),
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := r.Coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	*a = doc.toModel()
	return nil
}

func (r *MongoAppointmentRepository) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc appointmentDoc
	err = r.Coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find appointment: %w", err)
	}
	a := doc.toModel()
	return &a, nil
}

func (r *MongoAppointmentRepository) Find(ctx context.Context, f AppointmentFilter) ([]model.Appointment, error) {
	q := bson.M{}
	if f.BuyerID != "" {
		oid, err := objectID(f.BuyerID)
		if err != nil {
			return []model.Appointment{}, nil
		}
		q["buyer"] = oid
	}
	if f.SellerID != "" {
		oid, err := objectID(f.SellerID)
		if err != nil {
			return []model.Appointment{}, nil
		}
		q["seller"] = oid
	}
	if f.ListingIDs != nil {
		ids := make([]primitive.ObjectID, 0, len(f.ListingIDs))
		for _, id := range f.ListingIDs {
			if oid, err := primitive.ObjectIDFromHex(id); err == nil {
				ids = append(ids, oid)
			}
		}
		// A non-nil filter with no usable ids matches nothing.
		if len(ids) == 0 {
			return []model.Appointment{}, nil
		}
		q["property"] = bson.M{"$in": ids}
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.Coll.Find(ctx, q, opts)
	if err != nil {
		return nil, fmt.Errorf("find appointments: %w", err)
	}
	var docs []appointmentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode appointments: %w", err)
	}
	out := make([]model.Appointment, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toModel())
	}
	return out, nil
}

func (r *MongoAppointmentRepository) UpdateStatus(ctx context.Context, id string, status model.AppointmentStatus) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.Coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{"status": string(status)}})
	if err != nil {
		return fmt.Errorf("update appointment: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoAppointmentRepository) DeletePending(ctx context.Context, id, buyerID string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	buyer, err := primitive.ObjectIDFromHex(buyerID)
	if err != nil {
		return false, nil
	}
	res, err := r.Coll.DeleteOne(ctx, bson.M{
		"_id":    oid,
		"buyer":  buyer,
		"status": string(model.AppointmentPending),
	})
	if err != nil {
		return false, fmt.Errorf("delete appointment: %w", err)
	}
	return res.DeletedCount > 0, nil
}
