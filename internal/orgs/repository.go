// internal/orgs/repository.go

// Package orgs provides read access to organizations. Organizations are
// reference data: they are addressed by an externally visible slug and
// resolved to an internal id for authorization checks.
package orgs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"catshelter/internal/observability/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CollectionName is the MongoDB collection holding organizations.
const CollectionName = "organizations"

// ErrNotFound indicates that no organization matches the query.
var ErrNotFound = errors.New("organization not found")

// Organization is the stored organization document.
type Organization struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Slug      string             `bson:"slug" json:"slug"`
	Name      string             `bson:"name" json:"name"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Repository reads organizations.
type Repository interface {
	// FindBySlug returns the organization with the given slug, or
	// ErrNotFound.
	FindBySlug(ctx context.Context, slug string) (*Organization, error)
}

// MongoRepository implements Repository over MongoDB.
type MongoRepository struct {
	collection *mongo.Collection
	metrics    *metrics.Collector
}

// NewMongoRepository creates a repository bound to the organizations
// collection of the given database.
func NewMongoRepository(db *mongo.Database, collector *metrics.Collector) *MongoRepository {
	return &MongoRepository{
		collection: db.Collection(CollectionName),
		metrics:    collector,
	}
}

// FindBySlug returns the organization with the given slug.
func (r *MongoRepository) FindBySlug(ctx context.Context, slug string) (*Organization, error) {
	start := time.Now()
	defer r.observe("findOne", start)

	var org Organization
	err := r.collection.FindOne(ctx, bson.M{"slug": slug}).Decode(&org)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find organization by slug: %w", err)
	}
	return &org, nil
}

func (r *MongoRepository) observe(operation string, start time.Time) {
	if r.metrics != nil {
		r.metrics.RecordRepositoryQuery(CollectionName, operation, time.Since(start))
	}
}
