// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for crudkit.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, org_id_field, etc.
//   - Environment variables: CRUDKIT_MONGO_URI, CRUDKIT_ORG_ID_FIELD, etc.
//   - Command-line flags: --mongo_uri, --org_id_field, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "crudkit", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	{Name: "org_id_field", Default: "_orgId", Desc: "Tenant-identifier field name on scoped documents"},
	{Name: "excluded_collections", Default: "", Desc: "Comma-separated collections exempt from tenant scoping"},

	{Name: "user_id_header", Default: "X-User-ID", Desc: "Trusted header carrying the acting user id"},
	{Name: "org_id_header", Default: "X-Org-ID", Desc: "Trusted header carrying the acting organization id"},

	{Name: "default_page_size", Default: 10, Desc: "Default page size for list endpoints"},
}

// LoadConfig loads WAFFLE core config and app-specific config. It runs
// early in startup so both layers have configuration before any backends
// or handlers are built.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "CRUDKIT", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		OrgIDField:       appValues.String("org_id_field"),
		UserIDHeader:     appValues.String("user_id_header"),
		OrgIDHeader:      appValues.String("org_id_header"),
		DefaultPageSize:  appValues.Int("default_page_size"),
	}
	if raw := appValues.String("excluded_collections"); raw != "" {
		for _, c := range strings.Split(raw, ",") {
			if c = strings.TrimSpace(c); c != "" {
				appCfg.ExcludedCollections = append(appCfg.ExcludedCollections, c)
			}
		}
	}
	return coreCfg, appCfg, nil
}

// ValidateConfig rejects configurations the service cannot run with.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if appCfg.MongoURI == "" {
		return fmt.Errorf("mongo_uri is required")
	}
	if appCfg.MongoDatabase == "" {
		return fmt.Errorf("mongo_database is required")
	}
	if appCfg.DefaultPageSize < 1 {
		return fmt.Errorf("default_page_size must be positive, got %d", appCfg.DefaultPageSize)
	}
	return nil
}
