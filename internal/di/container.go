// Package di provides dependency injection configuration for the Thumblify server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/thumblifyapp/thumblify-server/internal/auth"
	"github.com/thumblifyapp/thumblify-server/internal/config"
	"github.com/thumblifyapp/thumblify-server/internal/di/providers"
	"github.com/thumblifyapp/thumblify-server/internal/logger"
	"github.com/thumblifyapp/thumblify-server/internal/media"
	"github.com/thumblifyapp/thumblify-server/internal/provider"
	"github.com/thumblifyapp/thumblify-server/internal/service"
	"github.com/thumblifyapp/thumblify-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideMediaHost)

	// Provider layer
	do.Provide(injector, providers.ProvideProviderClient)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Rate limiting
	do.Provide(injector, providers.ProvideLoginLimiter)
	do.Provide(injector, providers.ProvideGenerationLimiter)

	// Business services
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideSessionService)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideThumbnailService)
	do.Provide(injector, providers.ProvideAdminService)
	do.Provide(injector, providers.ProvideImportService)

	// Workers
	do.Provide(injector, providers.ProvideSessionCleanupJob)
	do.Provide(injector, providers.ProvideThumbnailSweepJob)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*media.MinioHost](injector)
	_ = do.MustInvoke[*provider.Client](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)
	_ = do.MustInvoke[*providers.LoginLimiter](injector)
	_ = do.MustInvoke[*providers.GenerationLimiter](injector)

	// Business services
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*service.SessionService](injector)
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.ThumbnailService](injector)
	_ = do.MustInvoke[*service.AdminService](injector)
	_ = do.MustInvoke[*service.ImportService](injector)

	// Workers
	_ = do.MustInvoke[*providers.SessionCleanupJob](injector)
	_ = do.MustInvoke[*providers.ThumbnailSweepJob](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
