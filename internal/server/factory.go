// internal/server/factory.go
package server

import (
	"context"
	stdtls "crypto/tls"
	"fmt"
	"net/http"
	"time"

	"catshelter/internal/auth/manager"
	"catshelter/internal/authz"
	"catshelter/internal/authz/rules"
	"catshelter/internal/cache"
	"catshelter/internal/cats"
	"catshelter/internal/config"
	"catshelter/internal/observability"
	"catshelter/internal/observability/logging"
	"catshelter/internal/orgs"
	tlsconfig "catshelter/internal/tls"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// NewFromConfig creates a new server from configuration
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Server, error) {
	// Initialize observability
	obs, err := observability.NewProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	logger := obs.Logger

	// Initialize TLS configuration
	var tlsCfg *stdtls.Config
	if cfg.TLS.Enabled {
		tlsSetup := &tlsconfig.Config{
			Logger:     logger,
			RootCAPath: cfg.TLS.CAPath,
			CertPath:   cfg.TLS.CertPath,
			KeyPath:    cfg.TLS.KeyPath,
		}
		tlsCfg, err = tlsSetup.GetTLSConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS configuration: %w", err)
		}
	}

	// Initialize authentication manager
	authManager, err := manager.NewManagerFromConfig(cfg, logger, obs.Metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize authentication manager: %w", err)
	}

	// Connect to the document database
	db, err := connectMongo(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Initialize the cache backend
	byteCache, err := createCache(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	// Organizations: repository plus the cached slug resolver the guard and
	// the cats handlers share
	orgRepo := orgs.NewMongoRepository(db, obs.Metrics)
	orgResolver := orgs.NewSlugResolver(orgRepo, byteCache, 0)

	// Cats resource module
	catsModule := cats.NewModule(cats.Dependencies{
		DB:      db,
		Cache:   byteCache,
		Orgs:    orgResolver,
		ReadTTL: cfg.Cache.ReadTTL,
		Metrics: obs.Metrics,
		Logger:  logger,
	})

	// Rule registration and the guard
	source, err := registerRules(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to register authorization rules: %w", err)
	}
	registry := authz.NewRegistry(source, cfg.Authz.RuleTTL, obs.Metrics)
	guard := authz.NewGuard(authz.Config{
		PublicRoutes: cfg.Authz.PublicRoutes,
	}, orgResolver, registry, logger, obs.Metrics)

	// Router: guard runs inside the router so the matched route is known
	router := mux.NewRouter()
	router.Use(guard.Middleware)
	catsModule.Handler.Register(router)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet).Name("health.check")

	// Complete middleware chain: observability -> auth -> guard+router
	handler := obs.Middleware(authManager.Middleware(router))

	srv := New(Config{
		Address:         cfg.Server.Address,
		MetricsAddress:  cfg.Metrics.Address,
		TLSConfig:       tlsCfg,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, handler, obs.MetricsHandler(), logger)

	srv.OnShutdown(func(ctx context.Context) error {
		return db.Client().Disconnect(ctx)
	})
	srv.OnShutdown(func(context.Context) error {
		return byteCache.Close()
	})

	return srv, nil
}

// registerRules populates the rule source. Handler-level registrations fully
// shadow the controller default.
func registerRules(cfg *config.Config, logger *logging.Logger) (*authz.StaticSource, error) {
	source := authz.NewStaticSource()

	admin := rules.Role{Accepted: []string{"admin"}}

	// Controller default for the cats resource: any org member or an admin
	source.SetControllerRules(cats.Controller,
		rules.Authenticated{},
		rules.AnyOf{Rules: []authz.Rule{admin, rules.OrgMember{}}},
	)

	// Listing and creating are org-scoped
	source.SetHandlerRules(cats.HandlerList, rules.Authenticated{}, rules.OrgMember{})
	source.SetHandlerRules(cats.HandlerCreate, rules.Authenticated{}, rules.OrgMember{})

	// Any signed-in user may view a single cat
	source.SetHandlerRules(cats.HandlerGet, rules.Authenticated{})

	// A user sees their own adoptions, admins see everyone's
	source.SetHandlerRules(cats.HandlerAdopted,
		rules.Authenticated{},
		rules.AnyOf{Rules: []authz.Rule{rules.Self{}, admin}},
	)

	// Deletion is admin-only unless SpiceDB grants a manage permission
	deleteRule := authz.Rule(admin)
	if cfg.Authz.SpiceDB.Enabled {
		spiceCfg := rules.SpiceDBConfig{
			Endpoint:     cfg.Authz.SpiceDB.Endpoint,
			Insecure:     cfg.Authz.SpiceDB.Insecure,
			Token:        cfg.Authz.SpiceDB.Token,
			ResourceType: cfg.Authz.SpiceDB.ResourceType,
			SubjectType:  cfg.Authz.SpiceDB.SubjectType,
		}
		client, err := rules.NewSpiceDBClient(spiceCfg)
		if err != nil {
			return nil, err
		}
		remote := rules.NewRemotePermission(spiceCfg, client, "manage_cats", logger)
		deleteRule = rules.AnyOf{Rules: []authz.Rule{admin, remote}}
		logger.Info("SpiceDB remote rule enabled", "endpoint", cfg.Authz.SpiceDB.Endpoint)
	}
	source.SetHandlerRules(cats.HandlerDelete, rules.Authenticated{}, deleteRule)

	return source, nil
}

// connectMongo connects to MongoDB and verifies the connection.
func connectMongo(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*mongo.Database, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		return nil, err
	}

	logger.Info("Connected to MongoDB",
		"uri", logging.RedactMongoURI(cfg.Mongo.URI),
		"database", cfg.Mongo.Database,
	)
	return client.Database(cfg.Mongo.Database), nil
}

// createCache builds the configured cache backend.
func createCache(ctx context.Context, cfg *config.Config, logger *logging.Logger) (cache.Cache, error) {
	switch cfg.Cache.Type {
	case "redis":
		return cache.NewRedis(ctx, cache.RedisConfig{
			Addr:      cfg.Cache.Redis.Addr,
			Password:  cfg.Cache.Redis.Password,
			DB:        cfg.Cache.Redis.DB,
			KeyPrefix: cfg.Cache.Redis.KeyPrefix,
		}, logger)
	default:
		return cache.NewMemory(cfg.Cache.MaxEntries, logger), nil
	}
}
