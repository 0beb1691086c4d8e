// internal/cats/module.go
package cats

import (
	"time"

	"catshelter/internal/authz"
	"catshelter/internal/cache"
	"catshelter/internal/observability/logging"
	"catshelter/internal/observability/metrics"

	"go.mongodb.org/mongo-driver/mongo"
)

// Module exposes the cats resource to the rest of the application: the
// direct repository, the cached read repository, and the HTTP handler.
type Module struct {
	Repository *MongoRepository
	Cached     *CachedRepository
	Handler    *Handler
}

// Dependencies are the capabilities the module is built from.
type Dependencies struct {
	// DB is the document database the cats collection lives in
	DB *mongo.Database

	// Cache backs the cached read repository
	Cache cache.Cache

	// Orgs resolves organization slugs for the HTTP surface
	Orgs authz.OrgResolver

	// ReadTTL bounds staleness of cached reads; 0 selects DefaultReadTTL
	ReadTTL time.Duration

	// Metrics records repository query durations, may be nil
	Metrics *metrics.Collector

	// Logger is the application logger
	Logger *logging.Logger
}

// NewModule wires the cats resource: the model bound to its collection, the
// direct repository, the cached repository over it, and the handler
// consuming both.
func NewModule(deps Dependencies) Module {
	repo := NewMongoRepository(deps.DB, deps.Metrics)
	cached := NewCachedRepository(repo, deps.Cache, deps.ReadTTL)

	return Module{
		Repository: repo,
		Cached:     cached,
		Handler:    NewHandler(cached, repo, deps.Orgs, deps.Logger),
	}
}
