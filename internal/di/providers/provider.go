package providers

import (
	"github.com/samber/do/v2"

	"github.com/thumblifyapp/thumblify-server/internal/config"
	"github.com/thumblifyapp/thumblify-server/internal/logger"
	"github.com/thumblifyapp/thumblify-server/internal/provider"
)

// ProvideProviderClient provides the generative image API client.
func ProvideProviderClient(i do.Injector) (*provider.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := provider.New(provider.Config{
		BaseURL:           cfg.Provider.BaseURL,
		APIKey:            cfg.Provider.APIKey,
		Model:             cfg.Provider.Model,
		Timeout:           cfg.Provider.Timeout,
		RequestsPerMinute: cfg.Provider.RequestsPerMinute,
		Burst:             cfg.Provider.Burst,
	}, log.Logger)

	log.Info("Image provider configured",
		"model", cfg.Provider.Model,
		"rpm", cfg.Provider.RequestsPerMinute,
	)

	return client, nil
}
