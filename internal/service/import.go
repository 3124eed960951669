package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/thumblifyapp/thumblify-server/internal/domain"
	"github.com/thumblifyapp/thumblify-server/internal/id"
	"github.com/thumblifyapp/thumblify-server/internal/legacy"
	"github.com/thumblifyapp/thumblify-server/internal/normalize"
	"github.com/thumblifyapp/thumblify-server/internal/store"
)

// ImportService loads thumbnail history from a legacy sqlite export
// into the store. Legacy users are matched to existing accounts by
// email; rows belonging to unmatched users are skipped, never created.
type ImportService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewImportService creates a new import service.
func NewImportService(store *store.Store, logger *slog.Logger) *ImportService {
	return &ImportService{
		store:  store,
		logger: logger,
	}
}

// ImportSummary reports what an import did.
type ImportSummary struct {
	UsersMatched  int `json:"users_matched"`
	UsersSkipped  int `json:"users_skipped"`
	Imported      int `json:"imported"`
	Skipped       int `json:"skipped"`
	FailedState   int `json:"failed_state"`
	EnumFallbacks int `json:"enum_fallbacks"`
}

// ImportLegacy reads the export at path and inserts its thumbnails.
// Records with an image URL arrive completed; records the export
// caught mid-generation arrive failed, because the image they were
// waiting on will never exist here.
func (s *ImportService) ImportLegacy(ctx context.Context, path string) (*ImportSummary, error) {
	export, err := legacy.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}

	summary := &ImportSummary{}

	// Map legacy user ids to local user ids by normalized email
	userMap := make(map[string]string, len(export.Users))
	for _, lu := range export.Users {
		user, err := s.store.Users.GetByIndex(ctx, "email", normalize.Email(lu.Email))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				summary.UsersSkipped++
				s.logger.Info("legacy user has no local account, skipping",
					"legacy_user_id", lu.ID,
				)
				continue
			}
			return nil, fmt.Errorf("lookup user by email: %w", err)
		}
		userMap[lu.ID] = user.ID
		summary.UsersMatched++
	}

	for _, row := range export.Thumbnails {
		ownerID, ok := userMap[row.UserID]
		if !ok {
			summary.Skipped++
			continue
		}

		thumb, fallbacks, err := s.convertRow(row, ownerID)
		if err != nil {
			s.logger.Warn("failed to convert legacy thumbnail",
				"legacy_id", row.ID,
				"error", err,
			)
			summary.Skipped++
			continue
		}
		summary.EnumFallbacks += fallbacks

		if err := s.store.CreateThumbnail(ctx, thumb); err != nil {
			s.logger.Warn("failed to insert imported thumbnail",
				"legacy_id", row.ID,
				"error", err,
			)
			summary.Skipped++
			continue
		}

		summary.Imported++
		if thumb.Status == domain.ThumbnailStatusFailed {
			summary.FailedState++
		}
	}

	s.logger.Info("legacy import finished",
		"users_matched", summary.UsersMatched,
		"users_skipped", summary.UsersSkipped,
		"imported", summary.Imported,
		"skipped", summary.Skipped,
		"failed_state", summary.FailedState,
	)

	return summary, nil
}

// convertRow maps one export row to a domain record. Unknown enum tags
// fall back to safe defaults rather than failing the import; the count
// of fallbacks is returned for the summary.
func (s *ImportService) convertRow(row legacy.Thumbnail, ownerID string) (*domain.Thumbnail, int, error) {
	fallbacks := 0

	style := domain.Style(row.Style)
	if !style.Valid() {
		style = domain.StyleProfessional
		fallbacks++
	}

	aspect := domain.AspectRatio(row.AspectRatio)
	if !aspect.Valid() {
		aspect = domain.AspectRatio16x9
		fallbacks++
	}

	scheme := domain.ColorScheme(row.ColorScheme)
	if scheme != "" && !scheme.Valid() {
		scheme = ""
		fallbacks++
	}

	thumbID, err := id.Generate(id.PrefixImport)
	if err != nil {
		return nil, 0, fmt.Errorf("generate id: %w", err)
	}

	thumb := domain.NewThumbnail(thumbID, ownerID, row.Prompt, domain.ThumbnailParams{
		Title:       normalize.Text(row.Title),
		TextOverlay: row.TextOverlay,
		Style:       style,
		AspectRatio: aspect,
		ColorScheme: scheme,
	})
	switch {
	case row.ImageURL != "":
		if err := thumb.MarkCompleted(row.ImageURL, "", domain.ImageMeta{}); err != nil {
			return nil, 0, fmt.Errorf("mark completed: %w", err)
		}
	default:
		// In-progress at export time, or exported without an image
		// either way the image will never arrive
		if err := thumb.MarkFailed("import: generation incomplete"); err != nil {
			return nil, 0, fmt.Errorf("mark failed: %w", err)
		}
	}

	// Preserve the original creation time for sorting; Mark* touched
	// UpdatedAt, so restore that too
	thumb.CreatedAt = row.CreatedAt
	thumb.UpdatedAt = row.CreatedAt

	return thumb, fallbacks, nil
}
