// Package di provides dependency injection configuration for the ICGDB server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/icgdb/icgdb-server/internal/auth"
	"github.com/icgdb/icgdb-server/internal/config"
	"github.com/icgdb/icgdb-server/internal/di/providers"
	"github.com/icgdb/icgdb-server/internal/logger"
	"github.com/icgdb/icgdb-server/internal/media/images"
	"github.com/icgdb/icgdb-server/internal/service"
	"github.com/icgdb/icgdb-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)
	do.Provide(injector, providers.ProvideAuthKey)
	do.Provide(injector, providers.ProvideValidator)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvidePictureStorage)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSearchService)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)
	do.Provide(injector, providers.ProvideGoogle)

	// Business services
	do.Provide(injector, providers.ProvideNameRegistry)
	do.Provide(injector, providers.ProvideUserService)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideCategoryService)
	do.Provide(injector, providers.ProvideGameService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	if _, err := do.Invoke[providers.AuthKey](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*validation.Validator](injector)
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*images.Storage](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.SearchIndexHandle](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*service.SearchService](injector)
	if _, err := do.Invoke[*auth.TokenService](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*providers.GoogleHandle](injector)

	// Business services
	_ = do.MustInvoke[*service.NameRegistry](injector)
	_ = do.MustInvoke[*service.UserService](injector)
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.CategoryService](injector)
	_ = do.MustInvoke[*service.GameService](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	// Rebuild the search index if it is new or empty
	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}
