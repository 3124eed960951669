package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/thumblifyapp/thumblify-server/internal/config"
	"github.com/thumblifyapp/thumblify-server/internal/logger"
	"github.com/thumblifyapp/thumblify-server/internal/media"
)

// ProvideMediaHost provides the object store client for generated
// images. The bucket is verified at startup so a misconfigured media
// host fails the boot, not the first generation.
func ProvideMediaHost(i do.Injector) (*media.MinioHost, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	host, err := media.NewMinioHost(media.Config{
		Endpoint:      cfg.Media.Endpoint,
		AccessKey:     cfg.Media.AccessKey,
		SecretKey:     cfg.Media.SecretKey,
		Bucket:        cfg.Media.Bucket,
		UseSSL:        cfg.Media.UseSSL,
		PublicBaseURL: cfg.Media.PublicBaseURL,
	}, log.Logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), ensureBucketTimeout)
	defer cancel()
	if err := host.EnsureBucket(ctx); err != nil {
		return nil, err
	}

	log.Info("Media host ready",
		"endpoint", cfg.Media.Endpoint,
		"bucket", cfg.Media.Bucket,
		"folder", cfg.Media.Folder,
	)

	return host, nil
}
