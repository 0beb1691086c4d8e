// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load loads the configuration from all sources and returns the merged result
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	Settings.PopulateViperDefaults(v)

	// Set up environment variable handling
	v.SetEnvPrefix("CATS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	// Load from config file if specified
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			// A missing config file is fine, other errors are not
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	config := &Config{}

	// Populate server configuration
	config.Server.Address = v.GetString("SERVER_ADDR")
	shutdownTimeout, err := time.ParseDuration(v.GetString("SHUTDOWN_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}
	config.Server.ShutdownTimeout = shutdownTimeout

	// Populate metrics configuration
	config.Metrics.Address = v.GetString("METRICS_ADDR")

	// Populate TLS configuration
	config.TLS.Enabled = v.GetBool("TLS_ENABLED")
	config.TLS.CertPath = v.GetString("TLS_CERT_PATH")
	config.TLS.KeyPath = v.GetString("TLS_KEY_PATH")
	config.TLS.CAPath = v.GetString("TLS_CA_PATH")

	// Populate document database configuration
	config.Mongo.URI = v.GetString("MONGO_URI")
	config.Mongo.Database = v.GetString("MONGO_DATABASE")

	// Populate cache configuration
	config.Cache.Type = v.GetString("CACHE_TYPE")
	config.Cache.MaxEntries = v.GetInt("CACHE_MAX_ENTRIES")
	readTTL, err := time.ParseDuration(v.GetString("CACHE_READ_TTL"))
	if err != nil {
		return nil, fmt.Errorf("invalid cache read TTL: %w", err)
	}
	config.Cache.ReadTTL = readTTL
	config.Cache.Redis.Addr = v.GetString("CACHE_REDIS_ADDR")
	config.Cache.Redis.Password = v.GetString("CACHE_REDIS_PASSWORD")
	config.Cache.Redis.DB = v.GetInt("CACHE_REDIS_DB")
	config.Cache.Redis.KeyPrefix = v.GetString("CACHE_REDIS_KEY_PREFIX")

	// Populate authentication configuration
	config.Auth.Bearer.Enabled = v.GetBool("AUTH_BEARER_ENABLED")
	config.Auth.Bearer.Issuer = v.GetString("AUTH_BEARER_ISSUER")
	config.Auth.Bearer.ClientID = v.GetString("AUTH_BEARER_CLIENT_ID")

	// Populate authorization configuration
	publicRoutes, err := regexp.Compile(v.GetString("AUTHZ_PUBLIC_ROUTES"))
	if err != nil {
		return nil, fmt.Errorf("invalid public routes pattern: %w", err)
	}
	config.Authz.PublicRoutes = publicRoutes

	ruleTTL, err := time.ParseDuration(v.GetString("AUTHZ_RULE_TTL"))
	if err != nil {
		return nil, fmt.Errorf("invalid rule TTL: %w", err)
	}
	config.Authz.RuleTTL = ruleTTL

	config.Authz.SpiceDB.Enabled = v.GetBool("AUTHZ_SPICEDB_ENABLED")
	config.Authz.SpiceDB.Endpoint = v.GetString("AUTHZ_SPICEDB_ENDPOINT")
	config.Authz.SpiceDB.Insecure = v.GetBool("AUTHZ_SPICEDB_INSECURE")
	config.Authz.SpiceDB.Token = v.GetString("AUTHZ_SPICEDB_TOKEN")
	config.Authz.SpiceDB.ResourceType = v.GetString("AUTHZ_SPICEDB_RESOURCE_TYPE")
	config.Authz.SpiceDB.SubjectType = v.GetString("AUTHZ_SPICEDB_SUBJECT_TYPE")

	// Populate observability configuration
	config.Observability.LogLevel = v.GetString("LOG_LEVEL")

	// Validate the configuration
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// validateConfig performs validation on the loaded configuration
func validateConfig(cfg *Config) error {
	if cfg.Mongo.URI == "" {
		return fmt.Errorf("MongoDB URI is required")
	}
	if cfg.Mongo.Database == "" {
		return fmt.Errorf("MongoDB database name is required")
	}

	switch cfg.Cache.Type {
	case "memory":
	case "redis":
		if cfg.Cache.Redis.Addr == "" {
			return fmt.Errorf("redis address is required when using the redis cache")
		}
	default:
		return fmt.Errorf("unknown cache type: %s", cfg.Cache.Type)
	}

	// Validate TLS configuration
	if cfg.TLS.Enabled {
		if cfg.TLS.CertPath == "" {
			return fmt.Errorf("TLS certificate path is required when TLS is enabled")
		}
		if cfg.TLS.KeyPath == "" {
			return fmt.Errorf("TLS key path is required when TLS is enabled")
		}

		if _, err := os.Stat(cfg.TLS.CertPath); os.IsNotExist(err) {
			return fmt.Errorf("TLS certificate file not found: %s", cfg.TLS.CertPath)
		}
		if _, err := os.Stat(cfg.TLS.KeyPath); os.IsNotExist(err) {
			return fmt.Errorf("TLS key file not found: %s", cfg.TLS.KeyPath)
		}
	}

	// Validate authentication configuration
	if cfg.Auth.Bearer.Enabled {
		if cfg.Auth.Bearer.Issuer == "" {
			return fmt.Errorf("Bearer issuer is required when Bearer is enabled")
		}
		if cfg.Auth.Bearer.ClientID == "" {
			return fmt.Errorf("Bearer client ID is required when Bearer is enabled")
		}
	}

	// Validate authorization configuration
	if cfg.Authz.SpiceDB.Enabled {
		if cfg.Authz.SpiceDB.Endpoint == "" {
			return fmt.Errorf("SpiceDB endpoint is required when SpiceDB is enabled")
		}
		if cfg.Authz.SpiceDB.Token == "" {
			return fmt.Errorf("SpiceDB token is required when SpiceDB is enabled")
		}
	}

	return nil
}
