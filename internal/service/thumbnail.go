package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/thumblifyapp/thumblify-server/internal/domain"
	domainerrors "github.com/thumblifyapp/thumblify-server/internal/errors"
	"github.com/thumblifyapp/thumblify-server/internal/id"
	"github.com/thumblifyapp/thumblify-server/internal/media"
	"github.com/thumblifyapp/thumblify-server/internal/prompt"
	"github.com/thumblifyapp/thumblify-server/internal/provider"
	"github.com/thumblifyapp/thumblify-server/internal/ratelimit"
	"github.com/thumblifyapp/thumblify-server/internal/search"
	"github.com/thumblifyapp/thumblify-server/internal/store"
	"github.com/thumblifyapp/thumblify-server/internal/validation"
)

// Generator produces one image per prompt. Satisfied by the provider
// client; tests substitute fakes.
type Generator interface {
	GenerateImage(ctx context.Context, req provider.GenerateRequest) (*provider.Image, error)
}

// Searcher finds a user's thumbnails by free text.
type Searcher interface {
	Search(ctx context.Context, ownerID, q string, limit int) ([]search.Hit, error)
	RemoveThumbnail(ctx context.Context, thumbID string) error
}

// ThumbnailService drives the generation flow and owner-scoped reads.
type ThumbnailService struct {
	store     *store.Store
	generator Generator
	media     media.Host
	search    Searcher
	limiter   *ratelimit.KeyedRateLimiter
	validator *validation.Validator
	folder    string
	logger    *slog.Logger
}

// NewThumbnailService creates the thumbnail service. folder is the
// fixed object-store folder generated images are uploaded under.
func NewThumbnailService(
	store *store.Store,
	generator Generator,
	mediaHost media.Host,
	searcher Searcher,
	limiter *ratelimit.KeyedRateLimiter,
	validator *validation.Validator,
	folder string,
	logger *slog.Logger,
) *ThumbnailService {
	return &ThumbnailService{
		store:     store,
		generator: generator,
		media:     mediaHost,
		search:    searcher,
		limiter:   limiter,
		validator: validator,
		folder:    folder,
		logger:    logger,
	}
}

// GenerateThumbnailRequest is the validated input for a generation.
type GenerateThumbnailRequest struct {
	Title       string             `json:"title" validate:"required,max=200"`
	Details     string             `json:"details" validate:"max=2000"`
	TextOverlay string             `json:"text_overlay" validate:"max=100"`
	Style       domain.Style       `json:"style" validate:"required,style"`
	AspectRatio domain.AspectRatio `json:"aspect_ratio" validate:"required,aspect_ratio"`
	ColorScheme domain.ColorScheme `json:"color_scheme" validate:"omitempty,color_scheme"`
}

// Generate runs the full flow: validate, build the prompt, persist a
// generating record, call the provider once, store the image, and mark
// the record completed. Any handled failure marks the record failed
// before returning, so a polling client always reaches a terminal
// state.
func (s *ThumbnailService) Generate(ctx context.Context, ownerID string, req GenerateThumbnailRequest) (*domain.Thumbnail, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	promptText, err := prompt.Build(prompt.Params{
		Title:       req.Title,
		Style:       req.Style,
		AspectRatio: req.AspectRatio,
		ColorScheme: req.ColorScheme,
		TextOverlay: req.TextOverlay,
		Details:     req.Details,
	})
	if err != nil {
		return nil, err
	}

	thumbID, err := id.Generate(id.PrefixThumbnail)
	if err != nil {
		return nil, fmt.Errorf("generate thumbnail ID: %w", err)
	}

	thumb := domain.NewThumbnail(thumbID, ownerID, promptText, domain.ThumbnailParams{
		Title:       req.Title,
		Details:     req.Details,
		TextOverlay: req.TextOverlay,
		Style:       req.Style,
		AspectRatio: req.AspectRatio,
		ColorScheme: req.ColorScheme,
	})

	// Persist before the provider call so the id is pollable immediately
	if err := s.store.CreateThumbnail(ctx, thumb); err != nil {
		return nil, fmt.Errorf("create thumbnail record: %w", err)
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx, ownerID); err != nil {
			return s.failGeneration(ctx, thumb, "generation cancelled",
				domainerrors.Wrap(err, domainerrors.CodeProvider, "generation cancelled while rate limited"))
		}
	}

	img, err := s.generator.GenerateImage(ctx, provider.GenerateRequest{
		Prompt:      promptText,
		AspectRatio: req.AspectRatio,
	})
	if err != nil {
		reason := providerFailureReason(err)
		return s.failGeneration(ctx, thumb, reason,
			domainerrors.Provider(reason).WithCause(err))
	}

	processed := media.Process(img.Data, img.MimeType, s.logger)

	objectKey := media.ObjectKey(s.folder, thumbID, img.MimeType)
	imageURL, err := s.media.Upload(ctx, objectKey, img.Data, img.MimeType)
	if err != nil {
		return s.failGeneration(ctx, thumb, "image upload failed",
			domainerrors.Upload("failed to store generated image").WithCause(err))
	}

	// Preview upload is cosmetic; the original is already safe
	previewURL := ""
	if len(processed.Preview) > 0 {
		previewKey := media.PreviewKey(s.folder, thumbID)
		previewURL, err = s.media.Upload(ctx, previewKey, processed.Preview, "image/jpeg")
		if err != nil {
			s.logger.Warn("failed to upload preview", "thumbnail_id", thumbID, "error", err)
			previewURL = ""
		}
	}

	if err := thumb.MarkCompleted(imageURL, previewURL, processed.Meta); err != nil {
		return nil, fmt.Errorf("mark completed: %w", err)
	}

	if err := s.store.UpdateThumbnail(ctx, thumb); err != nil {
		return nil, fmt.Errorf("persist completed thumbnail: %w", err)
	}

	s.logger.Info("thumbnail generated",
		"thumbnail_id", thumbID,
		"owner_id", ownerID,
		"style", req.Style,
		"size_bytes", processed.Meta.SizeBytes,
	)

	return thumb, nil
}

// Get returns a single record. Another owner's record is reported as
// missing.
func (s *ThumbnailService) Get(ctx context.Context, ownerID, thumbID string) (*domain.Thumbnail, error) {
	thumb, err := s.store.GetUserThumbnail(ctx, ownerID, thumbID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("thumbnail not found")
		}
		return nil, fmt.Errorf("get thumbnail: %w", err)
	}
	return thumb, nil
}

// List returns all of a user's records, newest first.
func (s *ThumbnailService) List(ctx context.Context, ownerID string) ([]*domain.Thumbnail, error) {
	thumbs, err := s.store.ListUserThumbnails(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list thumbnails: %w", err)
	}

	sort.Slice(thumbs, func(i, j int) bool {
		return thumbs[i].CreatedAt.After(thumbs[j].CreatedAt)
	})

	return thumbs, nil
}

// Delete removes a record along with its stored objects and search
// document. Deleting a missing id succeeds; repeated deletes are
// indistinguishable from the first.
func (s *ThumbnailService) Delete(ctx context.Context, ownerID, thumbID string) error {
	thumb, err := s.store.GetUserThumbnail(ctx, ownerID, thumbID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("get thumbnail for deletion: %w", err)
	}

	if err := s.store.DeleteThumbnail(ctx, thumbID); err != nil {
		return fmt.Errorf("delete thumbnail: %w", err)
	}

	// Object and index cleanup is best effort; the record is the source
	// of truth and it is already gone
	if thumb.ImageURL != "" {
		objectKey := media.ObjectKey(s.folder, thumbID, thumb.MimeType)
		if err := s.media.Delete(ctx, objectKey); err != nil {
			s.logger.Warn("failed to delete stored image", "thumbnail_id", thumbID, "error", err)
		}
	}
	if thumb.PreviewURL != "" {
		if err := s.media.Delete(ctx, media.PreviewKey(s.folder, thumbID)); err != nil {
			s.logger.Warn("failed to delete stored preview", "thumbnail_id", thumbID, "error", err)
		}
	}
	if s.search != nil {
		if err := s.search.RemoveThumbnail(ctx, thumbID); err != nil {
			s.logger.Warn("failed to remove search document", "thumbnail_id", thumbID, "error", err)
		}
	}

	return nil
}

// Search finds the owner's thumbnails matching q and hydrates the full
// records from the store. Hits whose record has since been deleted are
// skipped.
func (s *ThumbnailService) Search(ctx context.Context, ownerID, q string, limit int) ([]*domain.Thumbnail, error) {
	if s.search == nil {
		return nil, domainerrors.Internal("search is not configured")
	}

	hits, err := s.search.Search(ctx, ownerID, q, limit)
	if err != nil {
		return nil, fmt.Errorf("search thumbnails: %w", err)
	}

	thumbs := make([]*domain.Thumbnail, 0, len(hits))
	for _, hit := range hits {
		thumb, err := s.store.GetUserThumbnail(ctx, ownerID, hit.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("hydrate search hit %s: %w", hit.ID, err)
		}
		thumbs = append(thumbs, thumb)
	}

	return thumbs, nil
}

// DownloadURL returns a URL that triggers a file download for a
// completed thumbnail's image.
func (s *ThumbnailService) DownloadURL(ctx context.Context, ownerID, thumbID string) (string, error) {
	thumb, err := s.Get(ctx, ownerID, thumbID)
	if err != nil {
		return "", err
	}

	if thumb.Status != domain.ThumbnailStatusCompleted || thumb.ImageURL == "" {
		return "", domainerrors.Validation("thumbnail has no image to download")
	}

	objectKey := media.ObjectKey(s.folder, thumbID, thumb.MimeType)
	filename := media.DownloadFilename(thumb.Title, thumb.MimeType)

	url, err := s.media.DownloadURL(ctx, thumb.ImageURL, objectKey, filename)
	if err != nil {
		return "", fmt.Errorf("build download url: %w", err)
	}

	return url, nil
}

// SweepStale marks records stuck in the generating state for longer
// than olderThan as failed. Run periodically so a crash mid-generation
// never strands a polling client.
func (s *ThumbnailService) SweepStale(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)

	stale, err := s.store.ListGeneratingOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list stale generations: %w", err)
	}

	count := 0
	for _, thumb := range stale {
		if err := thumb.MarkFailed("generation timed out"); err != nil {
			continue
		}
		if err := s.store.UpdateThumbnail(ctx, thumb); err != nil {
			s.logger.Warn("failed to persist swept thumbnail", "thumbnail_id", thumb.ID, "error", err)
			continue
		}
		count++
	}

	return count, nil
}

// failGeneration marks the record failed and persists it, then returns
// the caller-facing error carrying the record id. The record must
// never be left generating on a handled failure.
func (s *ThumbnailService) failGeneration(ctx context.Context, thumb *domain.Thumbnail, reason string, callerErr *domainerrors.Error) (*domain.Thumbnail, error) {
	if err := thumb.MarkFailed(reason); err != nil {
		s.logger.Warn("failed to mark thumbnail failed", "thumbnail_id", thumb.ID, "error", err)
	} else if err := s.store.UpdateThumbnail(ctx, thumb); err != nil {
		s.logger.Warn("failed to persist failed thumbnail", "thumbnail_id", thumb.ID, "error", err)
	}

	return nil, callerErr.WithDetails(map[string]string{"thumbnail_id": thumb.ID})
}

// providerFailureReason maps provider errors to the message stored on
// the failed record and shown to the user.
func providerFailureReason(err error) string {
	switch {
	case errors.Is(err, provider.ErrBlocked):
		return "prompt was blocked by the provider's safety filter"
	case errors.Is(err, provider.ErrNoImage):
		return "provider returned no image"
	case errors.Is(err, provider.ErrRateLimited):
		return "provider rate limit exceeded, try again shortly"
	case errors.Is(err, provider.ErrUnauthorized):
		return "provider rejected the server's credentials"
	default:
		return "image generation failed"
	}
}
