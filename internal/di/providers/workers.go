package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/thumblifyapp/thumblify-server/internal/config"
	"github.com/thumblifyapp/thumblify-server/internal/logger"
	"github.com/thumblifyapp/thumblify-server/internal/service"
)

// SessionCleanupJob runs periodic session cleanup.
type SessionCleanupJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *SessionCleanupJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideSessionCleanupJob provides the periodic session cleanup job.
func ProvideSessionCleanupJob(i do.Injector) (*SessionCleanupJob, error) {
	sessionService := do.MustInvoke[*service.SessionService](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		// Initial cleanup on startup
		if count, err := sessionService.DeleteExpiredSessions(ctx); err != nil {
			log.Warn("Initial session cleanup failed", "error", err)
		} else if count > 0 {
			log.Info("Initial session cleanup completed", "deleted", count)
		}

		for {
			select {
			case <-ticker.C:
				if count, err := sessionService.DeleteExpiredSessions(ctx); err != nil {
					log.Warn("Session cleanup failed", "error", err)
				} else if count > 0 {
					log.Info("Session cleanup completed", "deleted", count)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Session cleanup job started")

	return &SessionCleanupJob{cancel: cancel}, nil
}

// ThumbnailSweepJob periodically fails records stuck in the generating
// state, so clients polling a record orphaned by a crash reach a
// terminal state.
type ThumbnailSweepJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *ThumbnailSweepJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideThumbnailSweepJob provides the stale generation sweep job.
func ProvideThumbnailSweepJob(i do.Injector) (*ThumbnailSweepJob, error) {
	cfg := do.MustInvoke[*config.Config](i)
	thumbnailService := do.MustInvoke[*service.ThumbnailService](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		ticker := time.NewTicker(cfg.Sweep.Interval)
		defer ticker.Stop()

		// Sweep once on startup to catch records orphaned by the last run
		if count, err := thumbnailService.SweepStale(ctx, cfg.Sweep.StaleAfter); err != nil {
			log.Warn("Initial stale generation sweep failed", "error", err)
		} else if count > 0 {
			log.Info("Initial stale generation sweep completed", "failed", count)
		}

		for {
			select {
			case <-ticker.C:
				if count, err := thumbnailService.SweepStale(ctx, cfg.Sweep.StaleAfter); err != nil {
					log.Warn("Stale generation sweep failed", "error", err)
				} else if count > 0 {
					log.Info("Stale generation sweep completed", "failed", count)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Stale generation sweep started",
		"interval", cfg.Sweep.Interval,
		"stale_after", cfg.Sweep.StaleAfter,
	)

	return &ThumbnailSweepJob{cancel: cancel}, nil
}
