// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	healthfeature "github.com/dalemusser/crudkit/internal/app/features/health"
	notesfeature "github.com/dalemusser/crudkit/internal/app/features/notes"
	"github.com/dalemusser/crudkit/internal/core/tenant"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// The crudkit demo app exposes a health endpoint plus the notes resource,
// a JSON CRUD API scoped per organization.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	tenantCfg := tenant.New(appCfg.OrgIDField, appCfg.ExcludedCollections...)

	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	notesHandler := notesfeature.NewHandler(notesfeature.HandlerConfig{
		DB:              deps.MongoDatabase,
		Tenant:          tenantCfg,
		UserIDHeader:    appCfg.UserIDHeader,
		OrgIDHeader:     appCfg.OrgIDHeader,
		DefaultPageSize: appCfg.DefaultPageSize,
		Logger:          logger,
	})
	r.Mount("/notes", notesfeature.Routes(notesHandler))

	return r, nil
}
