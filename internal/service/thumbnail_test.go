package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thumblifyapp/thumblify-server/internal/domain"
	domainerrors "github.com/thumblifyapp/thumblify-server/internal/errors"
	"github.com/thumblifyapp/thumblify-server/internal/media"
	"github.com/thumblifyapp/thumblify-server/internal/provider"
	"github.com/thumblifyapp/thumblify-server/internal/search"
	"github.com/thumblifyapp/thumblify-server/internal/store"
	"github.com/thumblifyapp/thumblify-server/internal/validation"
)

// fakeGenerator returns a canned image or error.
type fakeGenerator struct {
	img   *provider.Image
	err   error
	calls int
}

func (f *fakeGenerator) GenerateImage(_ context.Context, _ provider.GenerateRequest) (*provider.Image, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.img, nil
}

// fakeHost records uploads and deletes in memory.
type fakeHost struct {
	uploads   map[string][]byte
	deleted   []string
	uploadErr error
}

func newFakeHost() *fakeHost {
	return &fakeHost{uploads: make(map[string][]byte)}
}

func (f *fakeHost) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploads[key] = data
	return "http://media.test/bucket/" + key, nil
}

func (f *fakeHost) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	delete(f.uploads, key)
	return nil
}

func (f *fakeHost) DownloadURL(_ context.Context, storedURL, key, filename string) (string, error) {
	if transformed, ok := media.AttachmentURL(storedURL); ok {
		return transformed, nil
	}
	return fmt.Sprintf("http://media.test/presigned/%s?filename=%s", key, filename), nil
}

// fakeSearcher records indexed and removed ids.
type fakeSearcher struct {
	hits    []search.Hit
	removed []string
}

func (f *fakeSearcher) Search(_ context.Context, _, _ string, _ int) ([]search.Hit, error) {
	return f.hits, nil
}

func (f *fakeSearcher) RemoveThumbnail(_ context.Context, thumbID string) error {
	f.removed = append(f.removed, thumbID)
	return nil
}

type thumbTestEnv struct {
	svc       *ThumbnailService
	store     *store.Store
	generator *fakeGenerator
	host      *fakeHost
	searcher  *fakeSearcher
}

func setupThumbnailTest(t *testing.T) *thumbTestEnv {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	generator := &fakeGenerator{img: &provider.Image{
		Data:     encodeServicePNG(t, 640, 360),
		MimeType: "image/png",
	}}
	host := newFakeHost()
	searcher := &fakeSearcher{}

	svc := NewThumbnailService(s, generator, host, searcher, nil, validation.New(), "thumbnails", logger)

	return &thumbTestEnv{
		svc:       svc,
		store:     s,
		generator: generator,
		host:      host,
		searcher:  searcher,
	}
}

func encodeServicePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func validRequest() GenerateThumbnailRequest {
	return GenerateThumbnailRequest{
		Title:       "10 Sleep Tips",
		Details:     "calm bedroom scene",
		TextOverlay: "SLEEP BETTER",
		Style:       domain.StyleMinimalist,
		AspectRatio: domain.AspectRatio16x9,
		ColorScheme: domain.ColorSchemePastel,
	}
}

func TestThumbnailService_Generate(t *testing.T) {
	env := setupThumbnailTest(t)

	thumb, err := env.svc.Generate(t.Context(), "user_1", validRequest())
	require.NoError(t, err)

	assert.Equal(t, domain.ThumbnailStatusCompleted, thumb.Status)
	assert.False(t, thumb.IsGenerating())
	assert.NotEmpty(t, thumb.ImageURL)
	assert.NotEmpty(t, thumb.PreviewURL)
	assert.Equal(t, 640, thumb.Width)
	assert.Equal(t, 360, thumb.Height)
	assert.NotEmpty(t, thumb.BlurHash)
	assert.Equal(t, "image/png", thumb.MimeType)
	assert.NotNil(t, thumb.CompletedAt)
	assert.Contains(t, thumb.Prompt, "10 Sleep Tips")
	assert.Equal(t, 1, env.generator.calls)

	// Original and preview both uploaded
	assert.Contains(t, env.host.uploads, "thumbnails/"+thumb.ID+".png")
	assert.Contains(t, env.host.uploads, "thumbnails/"+thumb.ID+"_preview.jpg")

	// Record persisted in its completed form
	stored, err := env.svc.Get(t.Context(), "user_1", thumb.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ThumbnailStatusCompleted, stored.Status)
	assert.Equal(t, thumb.ImageURL, stored.ImageURL)
}

func TestThumbnailService_Generate_InvalidRequest(t *testing.T) {
	env := setupThumbnailTest(t)

	tests := []struct {
		name   string
		mutate func(*GenerateThumbnailRequest)
	}{
		{"missing title", func(r *GenerateThumbnailRequest) { r.Title = "" }},
		{"unknown style", func(r *GenerateThumbnailRequest) { r.Style = "vaporwave" }},
		{"unknown aspect ratio", func(r *GenerateThumbnailRequest) { r.AspectRatio = "21:9" }},
		{"unknown color scheme", func(r *GenerateThumbnailRequest) { r.ColorScheme = "plaid" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			_, err := env.svc.Generate(t.Context(), "user_1", req)
			assert.ErrorIs(t, err, domainerrors.ErrValidation)
		})
	}

	// No record was created and no provider call made
	thumbs, err := env.svc.List(t.Context(), "user_1")
	require.NoError(t, err)
	assert.Empty(t, thumbs)
	assert.Equal(t, 0, env.generator.calls)
}

func TestThumbnailService_Generate_ProviderFailure(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantReason string
	}{
		{"blocked", provider.ErrBlocked, "prompt was blocked by the provider's safety filter"},
		{"no image", provider.ErrNoImage, "provider returned no image"},
		{"rate limited", provider.ErrRateLimited, "provider rate limit exceeded, try again shortly"},
		{"server error", provider.ErrServer, "image generation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupThumbnailTest(t)
			env.generator.err = tt.err

			_, err := env.svc.Generate(t.Context(), "user_1", validRequest())
			require.Error(t, err)
			assert.ErrorIs(t, err, domainerrors.ErrProvider)

			// The failed record is persisted with the reason, never left generating
			thumbs, listErr := env.svc.List(t.Context(), "user_1")
			require.NoError(t, listErr)
			require.Len(t, thumbs, 1)
			assert.Equal(t, domain.ThumbnailStatusFailed, thumbs[0].Status)
			assert.Equal(t, tt.wantReason, thumbs[0].ErrorMessage)

			// And the error carries the record id so the client can inspect it
			var derr *domainerrors.Error
			require.ErrorAs(t, err, &derr)
			details, ok := derr.Details.(map[string]string)
			require.True(t, ok)
			assert.Equal(t, thumbs[0].ID, details["thumbnail_id"])
		})
	}
}

func TestThumbnailService_Generate_UploadFailure(t *testing.T) {
	env := setupThumbnailTest(t)
	env.host.uploadErr = errors.New("bucket on fire")

	_, err := env.svc.Generate(t.Context(), "user_1", validRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrUpload)

	thumbs, err := env.svc.List(t.Context(), "user_1")
	require.NoError(t, err)
	require.Len(t, thumbs, 1)
	assert.Equal(t, domain.ThumbnailStatusFailed, thumbs[0].Status)
	assert.Equal(t, "image upload failed", thumbs[0].ErrorMessage)
}

func TestThumbnailService_Get_OwnerScoped(t *testing.T) {
	env := setupThumbnailTest(t)

	thumb, err := env.svc.Generate(t.Context(), "user_1", validRequest())
	require.NoError(t, err)

	// Another owner's record is indistinguishable from a missing one
	_, err = env.svc.Get(t.Context(), "user_2", thumb.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = env.svc.Get(t.Context(), "user_1", "thumb_missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestThumbnailService_List_NewestFirst(t *testing.T) {
	env := setupThumbnailTest(t)

	first, err := env.svc.Generate(t.Context(), "user_1", validRequest())
	require.NoError(t, err)

	// Backdate the first record so ordering is deterministic
	first.CreatedAt = first.CreatedAt.Add(-time.Hour)
	require.NoError(t, env.store.UpdateThumbnail(t.Context(), first))

	second, err := env.svc.Generate(t.Context(), "user_1", validRequest())
	require.NoError(t, err)

	thumbs, err := env.svc.List(t.Context(), "user_1")
	require.NoError(t, err)
	require.Len(t, thumbs, 2)
	assert.Equal(t, second.ID, thumbs[0].ID)
	assert.Equal(t, first.ID, thumbs[1].ID)
}

func TestThumbnailService_Delete(t *testing.T) {
	env := setupThumbnailTest(t)

	thumb, err := env.svc.Generate(t.Context(), "user_1", validRequest())
	require.NoError(t, err)

	require.NoError(t, env.svc.Delete(t.Context(), "user_1", thumb.ID))

	_, err = env.svc.Get(t.Context(), "user_1", thumb.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	// Stored objects and the search doc went with it
	assert.Contains(t, env.host.deleted, "thumbnails/"+thumb.ID+".png")
	assert.Contains(t, env.host.deleted, "thumbnails/"+thumb.ID+"_preview.jpg")
	assert.Contains(t, env.searcher.removed, thumb.ID)

	// Deleting again, or deleting something that never existed, succeeds
	assert.NoError(t, env.svc.Delete(t.Context(), "user_1", thumb.ID))
	assert.NoError(t, env.svc.Delete(t.Context(), "user_1", "thumb_missing"))
}

func TestThumbnailService_Delete_ForeignOwnerKeepsRecord(t *testing.T) {
	env := setupThumbnailTest(t)

	thumb, err := env.svc.Generate(t.Context(), "user_1", validRequest())
	require.NoError(t, err)

	// Looks like a no-op delete to the other user
	require.NoError(t, env.svc.Delete(t.Context(), "user_2", thumb.ID))

	// But the record is untouched
	_, err = env.svc.Get(t.Context(), "user_1", thumb.ID)
	assert.NoError(t, err)
}

func TestThumbnailService_Search_HydratesRecords(t *testing.T) {
	env := setupThumbnailTest(t)

	thumb, err := env.svc.Generate(t.Context(), "user_1", validRequest())
	require.NoError(t, err)

	env.searcher.hits = []search.Hit{
		{ID: thumb.ID, Title: thumb.Title},
		{ID: "thumb_stale", Title: "deleted meanwhile"},
	}

	results, err := env.svc.Search(t.Context(), "user_1", "sleep", 10)
	require.NoError(t, err)

	// The stale hit is dropped, the live one hydrated
	require.Len(t, results, 1)
	assert.Equal(t, thumb.ID, results[0].ID)
	assert.Equal(t, domain.ThumbnailStatusCompleted, results[0].Status)
}

func TestThumbnailService_DownloadURL(t *testing.T) {
	env := setupThumbnailTest(t)

	thumb, err := env.svc.Generate(t.Context(), "user_1", validRequest())
	require.NoError(t, err)

	// Plain media-host URL has no /upload/ segment, so it presigns
	url, err := env.svc.DownloadURL(t.Context(), "user_1", thumb.ID)
	require.NoError(t, err)
	assert.Contains(t, url, "presigned")
	assert.Contains(t, url, "10-sleep-tips.png")

	// Upload-style hosts get the attachment flag spliced in instead
	thumb2, err := env.svc.Generate(t.Context(), "user_1", validRequest())
	require.NoError(t, err)
	thumb2.ImageURL = "https://res.example.com/demo/image/upload/v1/" + thumb2.ID + ".png"
	require.NoError(t, env.store.UpdateThumbnail(t.Context(), thumb2))

	url, err = env.svc.DownloadURL(t.Context(), "user_1", thumb2.ID)
	require.NoError(t, err)
	assert.Contains(t, url, "/upload/fl_attachment/")
}

func TestThumbnailService_DownloadURL_NotCompleted(t *testing.T) {
	env := setupThumbnailTest(t)
	env.generator.err = provider.ErrServer

	_, err := env.svc.Generate(t.Context(), "user_1", validRequest())
	require.Error(t, err)

	thumbs, err := env.svc.List(t.Context(), "user_1")
	require.NoError(t, err)
	require.Len(t, thumbs, 1)

	_, err = env.svc.DownloadURL(t.Context(), "user_1", thumbs[0].ID)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestThumbnailService_SweepStale(t *testing.T) {
	env := setupThumbnailTest(t)

	// A record stuck generating since an hour ago
	stale := domain.NewThumbnail("thumb_stale", "user_1", "prompt", domain.ThumbnailParams{
		Title:       "Stuck",
		Style:       domain.StyleBold,
		AspectRatio: domain.AspectRatio16x9,
	})
	stale.CreatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, env.store.CreateThumbnail(t.Context(), stale))

	// A fresh record still within its window
	fresh := domain.NewThumbnail("thumb_fresh", "user_1", "prompt", domain.ThumbnailParams{
		Title:       "Fresh",
		Style:       domain.StyleBold,
		AspectRatio: domain.AspectRatio16x9,
	})
	require.NoError(t, env.store.CreateThumbnail(t.Context(), fresh))

	count, err := env.svc.SweepStale(t.Context(), 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	swept, err := env.svc.Get(t.Context(), "user_1", "thumb_stale")
	require.NoError(t, err)
	assert.Equal(t, domain.ThumbnailStatusFailed, swept.Status)
	assert.Equal(t, "generation timed out", swept.ErrorMessage)

	kept, err := env.svc.Get(t.Context(), "user_1", "thumb_fresh")
	require.NoError(t, err)
	assert.True(t, kept.IsGenerating())

	// A second sweep finds nothing
	count, err = env.svc.SweepStale(t.Context(), 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
