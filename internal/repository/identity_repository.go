package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"realestate-service/internal/model"
	mongodb "realestate-service/internal/mongo"
)

// objectID parses a hex id. Malformed ids can never match a document, so
// they surface as ErrNotFound.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrNotFound
	}
	return oid, nil
}

func hexes(ids []primitive.ObjectID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Hex())
	}
	return out
}

type identityDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Username    string             `bson:"username"`
	Email       string             `bson:"email"`
	Password    string             `bson:"password"`
	PhoneNumber string             `bson:"phoneNumber,omitempty"`
	Role        string             `bson:"role"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d *identityDoc) toModel() *model.Identity {
	return &model.Identity{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.Password,
		PhoneNumber:  d.PhoneNumber,
		Role:         model.Role(d.Role),
		CreatedAt:    d.CreatedAt,
	}
}

type MongoIdentityRepository struct {
	DB *mongo.Database
}

func NewMongoIdentityRepository(db *mongo.Database) *MongoIdentityRepository {
	return &MongoIdentityRepository{DB: db}
}

func (r *MongoIdentityRepository) coll(role model.Role) *mongo.Collection {
	switch role {
	case model.RoleSeller:
		return r.DB.Collection(mongodb.Sellers)
	case model.RoleAdmin:
		return r.DB.Collection(mongodb.Admins)
	default:
		return r.DB.Collection(mongodb.Buyers)
	}
}

func (r *MongoIdentityRepository) Create(ctx context.Context, role model.Role, ident *model.Identity) error {
	now := time.Now().UTC()
	doc := identityDoc{
		ID:          primitive.NewObjectID(),
		Name:        ident.Name,
		Username:    model.NormalizeHandle(ident.Username),
		Email:       model.NormalizeHandle(ident.Email),
		Password:    ident.PasswordHash,
		PhoneNumber: ident.PhoneNumber,
		Role:        string(role),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.coll(role).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert %s: %w", role, err)
	}
	*ident = *doc.toModel()
	return nil
}

func (r *MongoIdentityRepository) findOne(ctx context.Context, role model.Role, filter bson.M) (*model.Identity, error) {
	var doc identityDoc
	err := r.coll(role).FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", role, err)
	}
	return doc.toModel(), nil
}

func (r *MongoIdentityRepository) GetByID(ctx context.Context, role model.Role, id string) (*model.Identity, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, role, bson.M{"_id": oid})
}

func (r *MongoIdentityRepository) GetByEmail(ctx context.Context, role model.Role, email string) (*model.Identity, error) {
	return r.findOne(ctx, role, bson.M{"email": model.NormalizeHandle(email)})
}

func (r *MongoIdentityRepository) FindConflict(ctx context.Context, role model.Role, email, username, excludeID string) (*model.Identity, error) {
	var or bson.A
	if email = model.NormalizeHandle(email); email != "" {
		or = append(or, bson.M{"email": email})
	}
	if username = model.NormalizeHandle(username); username != "" {
		or = append(or, bson.M{"username": username})
	}
	if len(or) == 0 {
		return nil, ErrNotFound
	}
	filter := bson.M{"$or": or}
	if excludeID != "" {
		if oid, err := primitive.ObjectIDFromHex(excludeID); err == nil {
			filter["_id"] = bson.M{"$ne": oid}
		}
	}
	return r.findOne(ctx, role, filter)
}

func (r *MongoIdentityRepository) Update(ctx context.Context, role model.Role, ident *model.Identity) error {
	oid, err := objectID(ident.ID)
	if err != nil {
		return err
	}
	set := bson.M{
		"name":        ident.Name,
		"username":    model.NormalizeHandle(ident.Username),
		"email":       model.NormalizeHandle(ident.Email),
		"password":    ident.PasswordHash,
		"phoneNumber": ident.PhoneNumber,
		"updatedAt":   time.Now().UTC(),
	}
	res, err := r.coll(role).UpdateByID(ctx, oid, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update %s: %w", role, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoIdentityRepository) Delete(ctx context.Context, role model.Role, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.coll(role).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete %s: %w", role, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoIdentityRepository) List(ctx context.Context, role model.Role, q IdentityQuery) ([]model.Identity, int64, error) {
	q = q.Normalize()
	filter := bson.M{}
	if q.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": re},
			bson.M{"email": re},
			bson.M{"username": re},
			bson.M{"phoneNumber": re},
		}
	}

	total, err := r.coll(role).CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", role, err)
	}

	dir := 1
	if q.Desc {
		dir = -1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: q.SortBy, Value: dir}, {Key: "_id", Value: dir}}).
		SetSkip(int64(q.Offset())).
		SetLimit(int64(q.Limit))

	cur, err := r.coll(role).Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", role, err)
	}
	var docs []identityDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode %s: %w", role, err)
	}
	out := make([]model.Identity, 0, len(docs))
	for i := range docs {
		out = append(out, *docs[i].toModel())
	}
	return out, total, nil
}

func (r *MongoIdentityRepository) Count(ctx context.Context, role model.Role) (int64, error) {
	n, err := r.coll(role).CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", role, err)
	}
	return n, nil
}
