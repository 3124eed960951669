package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGeneratingThumbnail() *Thumbnail {
	return NewThumbnail("thumb-123", "user-456", "Design a clean, minimalist video thumbnail", ThumbnailParams{
		Title:       "10 sleep tips",
		Style:       StyleMinimalist,
		AspectRatio: AspectRatio1x1,
		ColorScheme: ColorSchemePastel,
	})
}

func TestNewThumbnail(t *testing.T) {
	thumb := newGeneratingThumbnail()

	require.NotNil(t, thumb)
	assert.Equal(t, "thumb-123", thumb.ID)
	assert.Equal(t, "user-456", thumb.OwnerID)
	assert.Equal(t, "10 sleep tips", thumb.Title)
	assert.Equal(t, StyleMinimalist, thumb.Style)
	assert.Equal(t, AspectRatio1x1, thumb.AspectRatio)
	assert.Equal(t, ColorSchemePastel, thumb.ColorScheme)
	assert.Equal(t, ThumbnailStatusGenerating, thumb.Status)
	assert.Empty(t, thumb.ImageURL)
	assert.Nil(t, thumb.CompletedAt)
	assert.True(t, thumb.IsGenerating())
	assert.False(t, thumb.IsTerminal())
	assert.False(t, thumb.CreatedAt.IsZero())
	assert.False(t, thumb.UpdatedAt.IsZero())
}

func TestStyle_Valid(t *testing.T) {
	for _, s := range Styles() {
		assert.True(t, s.Valid(), "style %q should be valid", s)
	}

	assert.False(t, Style("").Valid())
	assert.False(t, Style("vaporwave").Valid())
	assert.False(t, Style("Minimalist").Valid(), "tags are case sensitive")
}

func TestAspectRatio_Valid(t *testing.T) {
	for _, a := range AspectRatios() {
		assert.True(t, a.Valid(), "aspect ratio %q should be valid", a)
	}

	assert.False(t, AspectRatio("").Valid())
	assert.False(t, AspectRatio("21:9").Valid())
	assert.False(t, AspectRatio("16x9").Valid())
}

func TestColorScheme_Valid(t *testing.T) {
	for _, c := range ColorSchemes() {
		assert.True(t, c.Valid(), "color scheme %q should be valid", c)
	}

	assert.True(t, ColorScheme("").Valid(), "color scheme is optional")
	assert.False(t, ColorScheme("sepia").Valid())
}

func TestThumbnail_MarkCompleted(t *testing.T) {
	thumb := newGeneratingThumbnail()
	beforeMark := time.Now()

	meta := ImageMeta{
		Width:     1024,
		Height:    1024,
		BlurHash:  "LEHV6nWB2yk8pyo0adR*.7kCMdnj",
		SizeBytes: 204800,
		MimeType:  "image/png",
	}
	err := thumb.MarkCompleted("https://media.local/thumbnails/thumb-123.png", "https://media.local/thumbnails/thumb-123_preview.jpg", meta)

	require.NoError(t, err)
	assert.Equal(t, ThumbnailStatusCompleted, thumb.Status)
	assert.Equal(t, "https://media.local/thumbnails/thumb-123.png", thumb.ImageURL)
	assert.Equal(t, "https://media.local/thumbnails/thumb-123_preview.jpg", thumb.PreviewURL)
	assert.Equal(t, 1024, thumb.Width)
	assert.Equal(t, 1024, thumb.Height)
	assert.Equal(t, "LEHV6nWB2yk8pyo0adR*.7kCMdnj", thumb.BlurHash)
	assert.Equal(t, int64(204800), thumb.SizeBytes)
	assert.Equal(t, "image/png", thumb.MimeType)
	require.NotNil(t, thumb.CompletedAt)
	assert.True(t, thumb.CompletedAt.After(beforeMark) || thumb.CompletedAt.Equal(beforeMark))
	assert.False(t, thumb.IsGenerating())
	assert.True(t, thumb.IsTerminal())
}

func TestThumbnail_MarkCompleted_OnlyOnce(t *testing.T) {
	thumb := newGeneratingThumbnail()

	err := thumb.MarkCompleted("https://media.local/thumbnails/thumb-123.png", "", ImageMeta{})
	require.NoError(t, err)

	err = thumb.MarkCompleted("https://media.local/thumbnails/other.png", "", ImageMeta{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotGenerating)
	assert.Equal(t, "https://media.local/thumbnails/thumb-123.png", thumb.ImageURL, "first reference must survive")
}

func TestThumbnail_MarkCompleted_ImageAlreadySet(t *testing.T) {
	thumb := newGeneratingThumbnail()
	thumb.ImageURL = "https://media.local/thumbnails/preexisting.png"

	err := thumb.MarkCompleted("https://media.local/thumbnails/thumb-123.png", "", ImageMeta{})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrImageAlreadySet)
	assert.Equal(t, ThumbnailStatusGenerating, thumb.Status)
}

func TestThumbnail_MarkCompleted_EmptyURL(t *testing.T) {
	thumb := newGeneratingThumbnail()

	err := thumb.MarkCompleted("", "", ImageMeta{})

	require.Error(t, err)
	assert.Equal(t, ThumbnailStatusGenerating, thumb.Status, "record must stay pollable")
}

func TestThumbnail_MarkCompleted_AfterFailed(t *testing.T) {
	thumb := newGeneratingThumbnail()
	require.NoError(t, thumb.MarkFailed("provider returned no image"))

	err := thumb.MarkCompleted("https://media.local/thumbnails/thumb-123.png", "", ImageMeta{})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotGenerating)
	assert.Equal(t, ThumbnailStatusFailed, thumb.Status)
	assert.Empty(t, thumb.ImageURL)
}

func TestThumbnail_MarkFailed(t *testing.T) {
	thumb := newGeneratingThumbnail()

	err := thumb.MarkFailed("generation timed out")

	require.NoError(t, err)
	assert.Equal(t, ThumbnailStatusFailed, thumb.Status)
	assert.Equal(t, "generation timed out", thumb.ErrorMessage)
	assert.Nil(t, thumb.CompletedAt)
	assert.False(t, thumb.IsGenerating())
	assert.True(t, thumb.IsTerminal())
}

func TestThumbnail_MarkFailed_Terminal(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(*Thumbnail)
	}{
		{
			name: "already failed",
			prepare: func(th *Thumbnail) {
				_ = th.MarkFailed("first failure")
			},
		},
		{
			name: "already completed",
			prepare: func(th *Thumbnail) {
				_ = th.MarkCompleted("https://media.local/thumbnails/thumb-123.png", "", ImageMeta{})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			thumb := newGeneratingThumbnail()
			tt.prepare(thumb)

			err := thumb.MarkFailed("second failure")

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrNotGenerating)
		})
	}
}

func TestThumbnail_IsTerminal(t *testing.T) {
	tests := []struct {
		name   string
		status ThumbnailStatus
		want   bool
	}{
		{name: "generating", status: ThumbnailStatusGenerating, want: false},
		{name: "completed", status: ThumbnailStatusCompleted, want: true},
		{name: "failed", status: ThumbnailStatusFailed, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			thumb := &Thumbnail{Status: tt.status}
			assert.Equal(t, tt.want, thumb.IsTerminal())
		})
	}
}
