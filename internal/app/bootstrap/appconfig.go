// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig handles
// framework-level settings (ports, TLS, logging, CORS); AppConfig is
// everything specific to this service. Nothing here is global: the values
// flow into constructors, so every component's dependencies stay explicit
// and independently testable.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Tenancy configuration
	OrgIDField          string   // tenant-identifier field name stamped on scoped documents
	ExcludedCollections []string // collections shared across tenants, never scoped

	// Identity headers the API trusts for the acting user. Real
	// authentication happens upstream (gateway/middleware); this service
	// only consumes the result.
	UserIDHeader string
	OrgIDHeader  string

	// Default page size for list endpoints when the client sends none.
	DefaultPageSize int
}
