// internal/cats/repository.go
package cats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"catshelter/internal/observability/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository errors.
var (
	// ErrNotFound indicates that no cat matches the query.
	ErrNotFound = errors.New("cat not found")

	// ErrInvalidID indicates a malformed document id.
	ErrInvalidID = errors.New("invalid cat id")
)

// Reader reads cats. The cached repository implements only this side.
type Reader interface {
	// FindByID returns the cat with the given id, or ErrNotFound.
	FindByID(ctx context.Context, id string) (*Cat, error)

	// FindByOrg returns all cats belonging to an organization.
	FindByOrg(ctx context.Context, orgID string) ([]Cat, error)

	// FindByAdopter returns all cats adopted by a user.
	FindByAdopter(ctx context.Context, userID string) ([]Cat, error)
}

// Repository reads and writes cats.
type Repository interface {
	Reader

	// Insert stores a new cat and fills in its id and timestamps.
	Insert(ctx context.Context, cat *Cat) error

	// Update applies the non-nil fields of update, returning the updated
	// cat or ErrNotFound.
	Update(ctx context.Context, id string, update Update) (*Cat, error)

	// Delete removes a cat, returning ErrNotFound when absent.
	Delete(ctx context.Context, id string) error
}

// MongoRepository implements Repository over MongoDB.
type MongoRepository struct {
	collection *mongo.Collection
	metrics    *metrics.Collector
}

// NewMongoRepository creates a repository bound to the cats collection of
// the given database.
func NewMongoRepository(db *mongo.Database, collector *metrics.Collector) *MongoRepository {
	return &MongoRepository{
		collection: db.Collection(CollectionName),
		metrics:    collector,
	}
}

// FindByID returns the cat with the given id.
func (r *MongoRepository) FindByID(ctx context.Context, id string) (*Cat, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	start := time.Now()
	defer r.observe("findOne", start)

	var cat Cat
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&cat); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find cat: %w", err)
	}
	return &cat, nil
}

// FindByOrg returns all cats belonging to an organization.
func (r *MongoRepository) FindByOrg(ctx context.Context, orgID string) ([]Cat, error) {
	oid, err := primitive.ObjectIDFromHex(orgID)
	if err != nil {
		return nil, ErrInvalidID
	}

	start := time.Now()
	defer r.observe("find", start)

	cursor, err := r.collection.Find(ctx, bson.M{"orgId": oid})
	if err != nil {
		return nil, fmt.Errorf("find cats by org: %w", err)
	}
	defer cursor.Close(ctx)

	cats := []Cat{}
	if err := cursor.All(ctx, &cats); err != nil {
		return nil, fmt.Errorf("decode cats: %w", err)
	}
	return cats, nil
}

// FindByAdopter returns all cats adopted by a user.
func (r *MongoRepository) FindByAdopter(ctx context.Context, userID string) ([]Cat, error) {
	start := time.Now()
	defer r.observe("find", start)

	cursor, err := r.collection.Find(ctx, bson.M{"adoptedBy": userID})
	if err != nil {
		return nil, fmt.Errorf("find cats by adopter: %w", err)
	}
	defer cursor.Close(ctx)

	cats := []Cat{}
	if err := cursor.All(ctx, &cats); err != nil {
		return nil, fmt.Errorf("decode cats: %w", err)
	}
	return cats, nil
}

// Insert stores a new cat.
func (r *MongoRepository) Insert(ctx context.Context, cat *Cat) error {
	now := time.Now().UTC()
	cat.CreatedAt = now
	cat.UpdatedAt = now
	if cat.ID.IsZero() {
		cat.ID = primitive.NewObjectID()
	}

	start := time.Now()
	defer r.observe("insertOne", start)

	if _, err := r.collection.InsertOne(ctx, cat); err != nil {
		return fmt.Errorf("insert cat: %w", err)
	}
	return nil
}

// Update applies the non-nil fields of update and returns the updated cat.
func (r *MongoRepository) Update(ctx context.Context, id string, update Update) (*Cat, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Breed != nil {
		set["breed"] = *update.Breed
	}
	if update.Age != nil {
		set["age"] = *update.Age
	}
	if update.AdoptedBy != nil {
		set["adoptedBy"] = *update.AdoptedBy
	}

	start := time.Now()
	defer r.observe("findOneAndUpdate", start)

	after := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var cat Cat
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, after).Decode(&cat)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update cat: %w", err)
	}
	return &cat, nil
}

// Delete removes a cat.
func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	start := time.Now()
	defer r.observe("deleteOne", start)

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete cat: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) observe(operation string, start time.Time) {
	if r.metrics != nil {
		r.metrics.RecordRepositoryQuery(CollectionName, operation, time.Since(start))
	}
}
