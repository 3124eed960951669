package providers

import (
	"github.com/samber/do/v2"

	"github.com/thumblifyapp/thumblify-server/internal/auth"
	"github.com/thumblifyapp/thumblify-server/internal/config"
	"github.com/thumblifyapp/thumblify-server/internal/logger"
	"github.com/thumblifyapp/thumblify-server/internal/media"
	"github.com/thumblifyapp/thumblify-server/internal/provider"
	"github.com/thumblifyapp/thumblify-server/internal/service"
	"github.com/thumblifyapp/thumblify-server/internal/validation"
)

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideSessionService provides the session lifecycle service.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(storeHandle.Store, tokenService, log.Logger), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	validator := do.MustInvoke[*validation.Validator](i)
	loginLimiter := do.MustInvoke[*LoginLimiter](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(
		storeHandle.Store,
		tokenService,
		sessionService,
		validator,
		loginLimiter.KeyedRateLimiter,
		cfg.Auth.AllowRegistration,
		log.Logger,
	), nil
}

// ProvideThumbnailService provides the thumbnail generation service.
func ProvideThumbnailService(i do.Injector) (*service.ThumbnailService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	providerClient := do.MustInvoke[*provider.Client](i)
	mediaHost := do.MustInvoke[*media.MinioHost](i)
	searchHandle := do.MustInvoke[*SearchIndexHandle](i)
	generationLimiter := do.MustInvoke[*GenerationLimiter](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewThumbnailService(
		storeHandle.Store,
		providerClient,
		mediaHost,
		searchHandle.SearchIndex,
		generationLimiter.KeyedRateLimiter,
		validator,
		cfg.Media.Folder,
		log.Logger,
	), nil
}

// ProvideAdminService provides the admin service.
func ProvideAdminService(i do.Injector) (*service.AdminService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAdminService(storeHandle.Store, log.Logger), nil
}

// ProvideImportService provides the legacy export import service.
func ProvideImportService(i do.Injector) (*service.ImportService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewImportService(storeHandle.Store, log.Logger), nil
}
