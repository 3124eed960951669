package domain

import (
	"errors"
	"fmt"
	"time"
)

// ThumbnailStatus tracks a generation record through its lifecycle.
type ThumbnailStatus string

const (
	// ThumbnailStatusGenerating means the record was persisted and the
	// provider call is still in flight. Clients poll while in this state.
	ThumbnailStatusGenerating ThumbnailStatus = "generating"
	// ThumbnailStatusCompleted means the image was generated and stored.
	ThumbnailStatusCompleted ThumbnailStatus = "completed"
	// ThumbnailStatusFailed means the generation errored or timed out.
	// Terminal, like completed.
	ThumbnailStatusFailed ThumbnailStatus = "failed"
)

// Style selects the overall look of a generated thumbnail.
// The accepted values are closed - unknown tags are rejected at the
// boundary, never passed through to the provider.
type Style string

const (
	StyleMinimalist   Style = "minimalist"
	StyleBold         Style = "bold"
	StyleCinematic    Style = "cinematic"
	StylePlayful      Style = "playful"
	StyleRetro        Style = "retro"
	StyleFuturistic   Style = "futuristic"
	StyleProfessional Style = "professional"
	StyleGrunge       Style = "grunge"
)

// Styles returns every accepted style tag.
func Styles() []Style {
	return []Style{
		StyleMinimalist,
		StyleBold,
		StyleCinematic,
		StylePlayful,
		StyleRetro,
		StyleFuturistic,
		StyleProfessional,
		StyleGrunge,
	}
}

// Valid reports whether s is one of the accepted style tags.
func (s Style) Valid() bool {
	for _, v := range Styles() {
		if s == v {
			return true
		}
	}
	return false
}

// AspectRatio is the exact shape the generated image must fill.
type AspectRatio string

const (
	AspectRatio16x9 AspectRatio = "16:9"
	AspectRatio1x1  AspectRatio = "1:1"
	AspectRatio9x16 AspectRatio = "9:16"
	AspectRatio4x3  AspectRatio = "4:3"
	AspectRatio3x4  AspectRatio = "3:4"
)

// AspectRatios returns every accepted aspect ratio tag.
func AspectRatios() []AspectRatio {
	return []AspectRatio{
		AspectRatio16x9,
		AspectRatio1x1,
		AspectRatio9x16,
		AspectRatio4x3,
		AspectRatio3x4,
	}
}

// Valid reports whether a is one of the accepted aspect ratio tags.
func (a AspectRatio) Valid() bool {
	for _, v := range AspectRatios() {
		if a == v {
			return true
		}
	}
	return false
}

// ColorScheme steers the palette of a generated thumbnail. Optional:
// the empty value leaves the palette to the provider.
type ColorScheme string

const (
	ColorSchemeVibrant    ColorScheme = "vibrant"
	ColorSchemePastel     ColorScheme = "pastel"
	ColorSchemeMonochrome ColorScheme = "monochrome"
	ColorSchemeDark       ColorScheme = "dark"
	ColorSchemeWarm       ColorScheme = "warm"
	ColorSchemeCool       ColorScheme = "cool"
	ColorSchemeNeon       ColorScheme = "neon"
	ColorSchemeEarthy     ColorScheme = "earthy"
)

// ColorSchemes returns every accepted color scheme tag.
func ColorSchemes() []ColorScheme {
	return []ColorScheme{
		ColorSchemeVibrant,
		ColorSchemePastel,
		ColorSchemeMonochrome,
		ColorSchemeDark,
		ColorSchemeWarm,
		ColorSchemeCool,
		ColorSchemeNeon,
		ColorSchemeEarthy,
	}
}

// Valid reports whether c is one of the accepted color scheme tags.
// The empty value is valid because the field is optional.
func (c ColorScheme) Valid() bool {
	if c == "" {
		return true
	}
	for _, v := range ColorSchemes() {
		if c == v {
			return true
		}
	}
	return false
}

// Transition errors returned by MarkCompleted and MarkFailed.
var (
	// ErrNotGenerating is returned when a terminal record is asked to
	// transition again.
	ErrNotGenerating = errors.New("thumbnail is not in the generating state")
	// ErrImageAlreadySet is returned when a completed image reference
	// would be overwritten. The reference is written exactly once.
	ErrImageAlreadySet = errors.New("thumbnail image reference already set")
)

// ThumbnailParams carries the user-supplied fields of a generation
// request into the domain layer.
type ThumbnailParams struct {
	Title       string
	Details     string
	TextOverlay string
	Style       Style
	AspectRatio AspectRatio
	ColorScheme ColorScheme
}

// ImageMeta holds measurements taken from the generated image bytes.
type ImageMeta struct {
	Width     int
	Height    int
	BlurHash  string
	SizeBytes int64
	MimeType  string
}

// Thumbnail is a single generation record. It is persisted in the
// generating state before the provider is called so clients can poll
// by id immediately, and moves to exactly one of the terminal states.
type Thumbnail struct {
	Record
	OwnerID     string      `json:"owner_id"`
	Title       string      `json:"title"`
	Details     string      `json:"details,omitempty"`
	TextOverlay string      `json:"text_overlay,omitempty"`
	Style       Style       `json:"style"`
	AspectRatio AspectRatio `json:"aspect_ratio"`
	ColorScheme ColorScheme `json:"color_scheme,omitempty"`

	// Prompt is the assembled provider prompt, kept for inspection
	// and for search indexing.
	Prompt string `json:"prompt,omitempty"`

	Status       ThumbnailStatus `json:"status"`
	ImageURL     string          `json:"image_url,omitempty"`
	PreviewURL   string          `json:"preview_url,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`

	// Set on completion from the stored image bytes.
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	BlurHash  string `json:"blur_hash,omitempty"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
	MimeType  string `json:"mime_type,omitempty"`
}

// NewThumbnail builds a record in the generating state with an empty
// image reference.
func NewThumbnail(id, ownerID, prompt string, p ThumbnailParams) *Thumbnail {
	t := &Thumbnail{
		OwnerID:     ownerID,
		Title:       p.Title,
		Details:     p.Details,
		TextOverlay: p.TextOverlay,
		Style:       p.Style,
		AspectRatio: p.AspectRatio,
		ColorScheme: p.ColorScheme,
		Prompt:      prompt,
		Status:      ThumbnailStatusGenerating,
	}
	t.ID = id
	t.InitTimestamps()
	return t
}

// IsGenerating reports whether the record is still waiting on the
// provider. Once false it never becomes true again.
func (t *Thumbnail) IsGenerating() bool {
	return t.Status == ThumbnailStatusGenerating
}

// IsTerminal reports whether the record reached a final state.
func (t *Thumbnail) IsTerminal() bool {
	return t.Status == ThumbnailStatusCompleted || t.Status == ThumbnailStatusFailed
}

// MarkCompleted records the stored image reference and its metadata.
// Valid only while the record is generating and the reference is
// unset, so the reference is written at most once.
func (t *Thumbnail) MarkCompleted(imageURL, previewURL string, meta ImageMeta) error {
	if t.Status != ThumbnailStatusGenerating {
		return fmt.Errorf("complete thumbnail %s: %w", t.ID, ErrNotGenerating)
	}
	if t.ImageURL != "" {
		return fmt.Errorf("complete thumbnail %s: %w", t.ID, ErrImageAlreadySet)
	}
	if imageURL == "" {
		return fmt.Errorf("complete thumbnail %s: empty image reference", t.ID)
	}

	now := time.Now()
	t.Status = ThumbnailStatusCompleted
	t.ImageURL = imageURL
	t.PreviewURL = previewURL
	t.Width = meta.Width
	t.Height = meta.Height
	t.BlurHash = meta.BlurHash
	t.SizeBytes = meta.SizeBytes
	t.MimeType = meta.MimeType
	t.ErrorMessage = ""
	t.CompletedAt = &now
	t.Touch()
	return nil
}

// MarkFailed records a terminal failure reason. Valid only while the
// record is generating.
func (t *Thumbnail) MarkFailed(reason string) error {
	if t.Status != ThumbnailStatusGenerating {
		return fmt.Errorf("fail thumbnail %s: %w", t.ID, ErrNotGenerating)
	}

	t.Status = ThumbnailStatusFailed
	t.ErrorMessage = reason
	t.Touch()
	return nil
}
