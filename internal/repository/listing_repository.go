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

type listingDoc struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty"`
	Title          string               `bson:"title"`
	PropertyType   string               `bson:"propertyType"`
	Price          string               `bson:"price"`
	Address        string               `bson:"address"`
	ImageURL       string               `bson:"imageUrl"`
	Beds           int                  `bson:"beds,omitempty"`
	Baths          int                  `bson:"baths,omitempty"`
	Sqft           string               `bson:"sqft,omitempty"`
	LandArea       string               `bson:"landArea,omitempty"`
	Zoning         string               `bson:"zoning,omitempty"`
	FloorNumber    int                  `bson:"floorNumber,omitempty"`
	TotalFloors    int                  `bson:"totalFloors,omitempty"`
	Status         string               `bson:"status"`
	CreatedBy      primitive.ObjectID   `bson:"createdBy"`
	CreatedByModel string               `bson:"createdByModel"`
	Interested     []primitive.ObjectID `bson:"interested"`
	PhotoID        string               `bson:"photoId,omitempty"`
	CreatedAt      time.Time            `bson:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt"`
}

func (d *listingDoc) toModel() model.Listing {
	return model.Listing{
		ID:             d.ID.Hex(),
		Title:          d.Title,
		PropertyType:   model.PropertyType(d.PropertyType),
		Price:          d.Price,
		Address:        d.Address,
		ImageURL:       d.ImageURL,
		Beds:           d.Beds,
		Baths:          d.Baths,
		Sqft:           d.Sqft,
		LandArea:       d.LandArea,
		Zoning:         d.Zoning,
		FloorNumber:    d.FloorNumber,
		TotalFloors:    d.TotalFloors,
		Status:         model.ListingStatus(d.Status),
		CreatedBy:      d.CreatedBy.Hex(),
		CreatedByModel: model.CreatorModel(d.CreatedByModel),
		Interested:     hexes(d.Interested),
		PhotoID:        d.PhotoID,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

// editable holds the fields a full update rewrites.
func editable(l *model.Listing) bson.M {
	return bson.M{
		"title":          l.Title,
		"propertyType":   string(l.PropertyType),
		"price":          l.Price,
		"address":        l.Address,
		"imageUrl":       l.ImageURL,
		"beds":           l.Beds,
		"baths":          l.Baths,
		"sqft":           l.Sqft,
		"landArea":       l.LandArea,
		"zoning":         l.Zoning,
		"floorNumber":    l.FloorNumber,
		"totalFloors":    l.TotalFloors,
		"status":         string(l.Status),
		"createdByModel": string(l.CreatedByModel),
		"photoId":        l.PhotoID,
	}
}

type MongoListingRepository struct {
	Coll *mongo.Collection
}

func NewMongoListingRepository(db *mongo.Database) *MongoListingRepository {
	return &MongoListingRepository{Coll: db.Collection(mongodb.Properties)}
}

func (r *MongoListingRepository) Create(ctx context.Context, l *model.Listing) error {
	creator, err := primitive.ObjectIDFromHex(l.CreatedBy)
	if err != nil {
		return fmt.Errorf("listing creator %q: %w", l.CreatedBy, err)
	}
	now := time.Now().UTC()
	doc := listingDoc{
		ID:             primitive.NewObjectID(),
		Title:          l.Title,
		PropertyType:   string(l.PropertyType),
		Price:          l.Price,
		Address:        l.Address,
		ImageURL:       l.ImageURL,
		Beds:           l.Beds,
		Baths:          l.Baths,
		Sqft:           l.Sqft,
		LandArea:       l.LandArea,
		Zoning:         l.Zoning,
		FloorNumber:    l.FloorNumber,
		TotalFloors:    l.TotalFloors,
		Status:         string(l.Status),
		CreatedBy:      creator,
		CreatedByModel: string(l.CreatedByModel),
		Interested:     []primitive.ObjectID{},
		PhotoID:        l.PhotoID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := r.Coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert listing: %w", err)
	}
	*l = doc.toModel()
	return nil
}

func (r *MongoListingRepository) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc listingDoc
	err = r.Coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find listing: %w", err)
	}
	l := doc.toModel()
	return &l, nil
}

// toBSON builds the query document. ok is false when the filter can never
// match, e.g. a malformed creator id.
func (f ListingFilter) toBSON() (bson.M, bool) {
	q := bson.M{}
	if f.Status != "" {
		q["status"] = string(f.Status)
	}
	if f.PropertyType != "" {
		q["propertyType"] = string(f.PropertyType)
	}
	if f.CreatedBy != "" {
		oid, err := primitive.ObjectIDFromHex(f.CreatedBy)
		if err != nil {
			return nil, false
		}
		q["createdBy"] = oid
	}
	if f.CreatedByModel != "" {
		q["createdByModel"] = string(f.CreatedByModel)
	}
	return q, true
}

func (r *MongoListingRepository) Find(ctx context.Context, f ListingFilter) ([]model.Listing, error) {
	q, ok := f.toBSON()
	if !ok {
		return []model.Listing{}, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	cur, err := r.Coll.Find(ctx, q, opts)
	if err != nil {
		return nil, fmt.Errorf("find listings: %w", err)
	}
	var docs []listingDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode listings: %w", err)
	}
	out := make([]model.Listing, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toModel())
	}
	return out, nil
}

func (r *MongoListingRepository) Count(ctx context.Context, f ListingFilter) (int64, error) {
	q, ok := f.toBSON()
	if !ok {
		return 0, nil
	}
	n, err := r.Coll.CountDocuments(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("count listings: %w", err)
	}
	return n, nil
}

func (r *MongoListingRepository) updateByID(ctx context.Context, id string, update bson.M) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.Coll.UpdateByID(ctx, oid, update)
	if err != nil {
		return fmt.Errorf("update listing: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoListingRepository) Update(ctx context.Context, l *model.Listing) error {
	set := editable(l)
	set["updatedAt"] = time.Now().UTC()
	return r.updateByID(ctx, l.ID, bson.M{"$set": set})
}

func (r *MongoListingRepository) SetStatus(ctx context.Context, id string, status model.ListingStatus) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{
		"status":    string(status),
		"updatedAt": time.Now().UTC(),
	}})
}

func (r *MongoListingRepository) SetPhoto(ctx context.Context, id, photoID, imageURL string, status model.ListingStatus) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{
		"photoId":   photoID,
		"imageUrl":  imageURL,
		"status":    string(status),
		"updatedAt": time.Now().UTC(),
	}})
}

func (r *MongoListingRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.Coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoListingRepository) AddInterest(ctx context.Context, id, buyerID string) error {
	buyer, err := objectID(buyerID)
	if err != nil {
		return err
	}
	return r.updateByID(ctx, id, bson.M{"$addToSet": bson.M{"interested": buyer}})
}

func (r *MongoListingRepository) RemoveInterest(ctx context.Context, id, buyerID string) error {
	buyer, err := objectID(buyerID)
	if err != nil {
		return err
	}
	return r.updateByID(ctx, id, bson.M{"$pull": bson.M{"interested": buyer}})
}
