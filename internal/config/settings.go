// internal/config/settings.go
package config

import "github.com/spf13/viper"

// SettingType represents the type of a setting
type SettingType string

const (
	// String type for string settings
	String SettingType = "string"
	// Bool type for boolean settings
	Bool SettingType = "bool"
	// Int type for integer settings
	Int SettingType = "int"
)

// Setting defines a configuration setting
type Setting struct {
	// Name is the name of the setting
	Name string
	// Short is a short description of the setting
	Short string
	// Type is the type of the setting
	Type SettingType
	// Default is the default value of the setting
	Default interface{}
	// Required indicates whether the setting is required
	Required bool
}

// SettingList is a list of settings
type SettingList []Setting

// PopulateViperDefaults registers the default value of every setting
func (sl SettingList) PopulateViperDefaults(v *viper.Viper) {
	for _, s := range sl {
		v.SetDefault(s.Name, s.Default)
	}
}

// Settings defines all application settings
var Settings = SettingList{
	// Server settings
	{
		Name:    "SERVER_ADDR",
		Short:   "Address on which the server listens",
		Type:    String,
		Default: ":8000",
	},
	{
		Name:    "METRICS_ADDR",
		Short:   "Address on which the metrics server listens",
		Type:    String,
		Default: ":9090",
	},
	{
		Name:    "SHUTDOWN_TIMEOUT",
		Short:   "Maximum time to wait for graceful shutdown",
		Type:    String,
		Default: "30s",
	},

	// TLS settings
	{
		Name:    "TLS_ENABLED",
		Short:   "Enable TLS for the server",
		Type:    Bool,
		Default: false,
	},
	{
		Name:    "TLS_CERT_PATH",
		Short:   "Path to TLS certificate file",
		Type:    String,
		Default: "",
	},
	{
		Name:    "TLS_KEY_PATH",
		Short:   "Path to TLS key file",
		Type:    String,
		Default: "",
	},
	{
		Name:    "TLS_CA_PATH",
		Short:   "Path to TLS CA certificate file",
		Type:    String,
		Default: "",
	},

	// Document database settings
	{
		Name:     "MONGO_URI",
		Short:    "MongoDB connection string",
		Type:     String,
		Default:  "mongodb://localhost:27017",
		Required: true,
	},
	{
		Name:     "MONGO_DATABASE",
		Short:    "MongoDB database name",
		Type:     String,
		Default:  "catshelter",
		Required: true,
	},

	// Cache settings
	{
		Name:    "CACHE_TYPE",
		Short:   "Cache backend: memory or redis",
		Type:    String,
		Default: "memory",
	},
	{
		Name:    "CACHE_MAX_ENTRIES",
		Short:   "Maximum entries held by the memory cache",
		Type:    Int,
		Default: 10000,
	},
	{
		Name:    "CACHE_READ_TTL",
		Short:   "TTL for cached repository reads",
		Type:    String,
		Default: "5m",
	},
	{
		Name:    "CACHE_REDIS_ADDR",
		Short:   "Redis address for the redis cache backend",
		Type:    String,
		Default: "",
	},
	{
		Name:    "CACHE_REDIS_PASSWORD",
		Short:   "Redis password",
		Type:    String,
		Default: "",
	},
	{
		Name:    "CACHE_REDIS_DB",
		Short:   "Redis database number",
		Type:    Int,
		Default: 0,
	},
	{
		Name:    "CACHE_REDIS_KEY_PREFIX",
		Short:   "Prefix prepended to every redis cache key",
		Type:    String,
		Default: "catshelter:",
	},

	// Authentication: Bearer
	{
		Name:    "AUTH_BEARER_ENABLED",
		Short:   "Enable Bearer token authentication",
		Type:    Bool,
		Default: false,
	},
	{
		Name:    "AUTH_BEARER_ISSUER",
		Short:   "Bearer token issuer URL",
		Type:    String,
		Default: "",
	},
	{
		Name:    "AUTH_BEARER_CLIENT_ID",
		Short:   "Client ID for Bearer token validation",
		Type:    String,
		Default: "",
	},

	// Authorization
	{
		Name:    "AUTHZ_PUBLIC_ROUTES",
		Short:   "Regular expression matching public request paths",
		Type:    String,
		Default: "^/healthz$",
	},
	{
		Name:    "AUTHZ_RULE_TTL",
		Short:   "TTL for cached rule-set resolutions",
		Type:    String,
		Default: "168h",
	},
	{
		Name:    "AUTHZ_SPICEDB_ENABLED",
		Short:   "Enable the SpiceDB-backed remote rule",
		Type:    Bool,
		Default: false,
	},
	{
		Name:    "AUTHZ_SPICEDB_ENDPOINT",
		Short:   "SpiceDB gRPC endpoint",
		Type:    String,
		Default: "",
	},
	{
		Name:    "AUTHZ_SPICEDB_INSECURE",
		Short:   "Use an insecure connection to SpiceDB",
		Type:    Bool,
		Default: false,
	},
	{
		Name:    "AUTHZ_SPICEDB_TOKEN",
		Short:   "SpiceDB authentication token",
		Type:    String,
		Default: "",
	},
	{
		Name:    "AUTHZ_SPICEDB_RESOURCE_TYPE",
		Short:   "SpiceDB resource type for organizations",
		Type:    String,
		Default: "organization",
	},
	{
		Name:    "AUTHZ_SPICEDB_SUBJECT_TYPE",
		Short:   "SpiceDB subject type for users",
		Type:    String,
		Default: "user",
	},

	// Observability
	{
		Name:    "LOG_LEVEL",
		Short:   "Minimum log level to emit",
		Type:    String,
		Default: "info",
	},
}
