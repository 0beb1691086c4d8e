// internal/config/types.go
package config

import (
	"regexp"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	// Server holds HTTP server configuration
	Server struct {
		// Address is the address to listen on
		Address string
		// ShutdownTimeout is the maximum time to wait for a graceful shutdown
		ShutdownTimeout time.Duration
	}

	// Metrics holds metrics server configuration
	Metrics struct {
		// Address is the address to listen on for the metrics server
		Address string
	}

	// TLS holds TLS configuration
	TLS struct {
		// Enabled indicates whether TLS is enabled
		Enabled bool
		// CertPath is the path to the TLS certificate
		CertPath string
		// KeyPath is the path to the TLS key
		KeyPath string
		// CAPath is the path to the CA certificate
		CAPath string
	}

	// Mongo holds document database configuration
	Mongo struct {
		// URI is the MongoDB connection string
		URI string
		// Database is the database name
		Database string
	}

	// Cache holds cache configuration
	Cache struct {
		// Type selects the backend: "memory" or "redis"
		Type string
		// MaxEntries bounds the memory backend
		MaxEntries int
		// ReadTTL bounds staleness of cached repository reads
		ReadTTL time.Duration
		// Redis holds redis backend settings
		Redis struct {
			// Addr is the redis host:port
			Addr string
			// Password is the redis password
			Password string
			// DB is the redis database number
			DB int
			// KeyPrefix is prepended to every cache key
			KeyPrefix string
		}
	}

	// Auth holds authentication configuration
	Auth struct {
		// Bearer holds Bearer token authentication configuration
		Bearer struct {
			// Enabled indicates whether Bearer token authentication is enabled
			Enabled bool
			// Issuer is the JWT issuer URL
			Issuer string
			// ClientID is the client ID for token validation
			ClientID string
		}
	}

	// Authz holds authorization configuration
	Authz struct {
		// PublicRoutes matches request paths exempt from authorization
		PublicRoutes *regexp.Regexp
		// RuleTTL is how long resolved rule sets stay cached
		RuleTTL time.Duration

		// SpiceDB holds the optional remote permission system configuration
		SpiceDB struct {
			// Enabled indicates whether the SpiceDB rule is available
			Enabled bool
			// Endpoint is the SpiceDB gRPC endpoint
			Endpoint string
			// Insecure indicates whether to use an insecure connection
			Insecure bool
			// Token is the SpiceDB authentication token
			Token string
			// ResourceType is the SpiceDB resource type for organizations
			ResourceType string
			// SubjectType is the SpiceDB subject type for users
			SubjectType string
		}
	}

	// Observability holds observability configuration
	Observability struct {
		// LogLevel is the minimum log level to emit
		LogLevel string
	}
}
