package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Server.Address)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, ":9090", cfg.Metrics.Address)
	assert.False(t, cfg.TLS.Enabled)

	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	assert.Equal(t, "catshelter", cfg.Mongo.Database)

	assert.Equal(t, "memory", cfg.Cache.Type)
	assert.Equal(t, 10000, cfg.Cache.MaxEntries)
	assert.Equal(t, 5*time.Minute, cfg.Cache.ReadTTL)

	assert.False(t, cfg.Auth.Bearer.Enabled)

	require.NotNil(t, cfg.Authz.PublicRoutes)
	assert.True(t, cfg.Authz.PublicRoutes.MatchString("/healthz"))
	assert.False(t, cfg.Authz.PublicRoutes.MatchString("/cats/abc"))
	assert.Equal(t, 7*24*time.Hour, cfg.Authz.RuleTTL)
	assert.False(t, cfg.Authz.SpiceDB.Enabled)

	assert.Equal(t, "info", cfg.Observability.LogLevel)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CATS_SERVER_ADDR", ":9999")
	t.Setenv("CATS_MONGO_DATABASE", "shelterdb")
	t.Setenv("CATS_AUTHZ_PUBLIC_ROUTES", "^/(healthz|version)$")
	t.Setenv("CATS_AUTHZ_RULE_TTL", "1h")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Address)
	assert.Equal(t, "shelterdb", cfg.Mongo.Database)
	assert.True(t, cfg.Authz.PublicRoutes.MatchString("/version"))
	assert.Equal(t, time.Hour, cfg.Authz.RuleTTL)
}

func TestLoadRejectsInvalidPublicRoutes(t *testing.T) {
	t.Setenv("CATS_AUTHZ_PUBLIC_ROUTES", "([unclosed")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "public routes")
}

func TestLoadRejectsInvalidRuleTTL(t *testing.T) {
	t.Setenv("CATS_AUTHZ_RULE_TTL", "not-a-duration")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadRejectsUnknownCacheType(t *testing.T) {
	t.Setenv("CATS_CACHE_TYPE", "memcached")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown cache type")
}

func TestLoadRedisCacheRequiresAddr(t *testing.T) {
	t.Setenv("CATS_CACHE_TYPE", "redis")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis address")
}

func TestLoadBearerRequiresIssuerAndClientID(t *testing.T) {
	t.Setenv("CATS_AUTH_BEARER_ENABLED", "true")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "issuer")

	t.Setenv("CATS_AUTH_BEARER_ISSUER", "https://issuer.example.com")

	_, err = Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client ID")
}

func TestLoadSpiceDBRequiresEndpointAndToken(t *testing.T) {
	t.Setenv("CATS_AUTHZ_SPICEDB_ENABLED", "true")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SpiceDB endpoint")

	t.Setenv("CATS_AUTHZ_SPICEDB_ENDPOINT", "spicedb.internal:50051")

	_, err = Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SpiceDB token")
}

func TestLoadTLSRequiresExistingFiles(t *testing.T) {
	t.Setenv("CATS_TLS_ENABLED", "true")
	t.Setenv("CATS_TLS_CERT_PATH", "/nonexistent/cert.pem")
	t.Setenv("CATS_TLS_KEY_PATH", "/nonexistent/key.pem")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "certificate file not found")
}
