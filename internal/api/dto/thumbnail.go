package dto

import (
	"time"

	"github.com/thumblifyapp/thumblify-server/internal/domain"
)

// GenerateThumbnailRequest is the request body for a generation.
type GenerateThumbnailRequest struct {
	Title       string `json:"title" validate:"required,max=200" doc:"Video title the thumbnail is for"`
	Details     string `json:"details,omitempty" validate:"max=2000" doc:"Free-form creator notes folded into the prompt"`
	TextOverlay string `json:"text_overlay,omitempty" validate:"max=100" doc:"Exact text rendered onto the image"`
	Style       string `json:"style" validate:"required" doc:"Style tag (minimalist, bold, cinematic, playful, retro, futuristic, professional, grunge)"`
	AspectRatio string `json:"aspect_ratio" validate:"required" doc:"Aspect ratio tag (16:9, 1:1, 9:16, 4:3, 3:4)"`
	ColorScheme string `json:"color_scheme,omitempty" doc:"Optional color scheme tag (vibrant, pastel, monochrome, dark, warm, cool, neon, earthy)"`
}

// ThumbnailResponse is a generation record in API responses.
type ThumbnailResponse struct {
	ID           string     `json:"id" doc:"Thumbnail ID"`
	Title        string     `json:"title" doc:"Video title"`
	Details      string     `json:"details,omitempty" doc:"Creator notes"`
	TextOverlay  string     `json:"text_overlay,omitempty" doc:"Overlay text"`
	Style        string     `json:"style" doc:"Style tag"`
	AspectRatio  string     `json:"aspect_ratio" doc:"Aspect ratio tag"`
	ColorScheme  string     `json:"color_scheme,omitempty" doc:"Color scheme tag"`
	Status       string     `json:"status" doc:"generating, completed, or failed"`
	IsGenerating bool       `json:"is_generating" doc:"Whether the provider call is still in flight"`
	ImageURL     string     `json:"image_url,omitempty" doc:"Stored image URL, set on completion"`
	PreviewURL   string     `json:"preview_url,omitempty" doc:"Downscaled preview URL"`
	BlurHash     string     `json:"blur_hash,omitempty" doc:"BlurHash placeholder string"`
	Width        int        `json:"width,omitempty" doc:"Image width in pixels"`
	Height       int        `json:"height,omitempty" doc:"Image height in pixels"`
	ErrorMessage string     `json:"error_message,omitempty" doc:"Failure reason, set on failed records"`
	CreatedAt    time.Time  `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt    time.Time  `json:"updated_at" doc:"Last update timestamp"`
	CompletedAt  *time.Time `json:"completed_at,omitempty" doc:"Completion timestamp"`
}

// ListThumbnailsResponse contains a user's thumbnails.
type ListThumbnailsResponse struct {
	Thumbnails []ThumbnailResponse `json:"thumbnails" doc:"Thumbnail records"`
	Count      int                 `json:"count" doc:"Number of records returned"`
}

// DownloadResponse carries a URL that triggers a browser download.
type DownloadResponse struct {
	DownloadURL string `json:"download_url" doc:"URL serving the image as an attachment"`
}

// NewThumbnailResponse maps a domain record to its API shape.
func NewThumbnailResponse(t *domain.Thumbnail) ThumbnailResponse {
	return ThumbnailResponse{
		ID:           t.ID,
		Title:        t.Title,
		Details:      t.Details,
		TextOverlay:  t.TextOverlay,
		Style:        string(t.Style),
		AspectRatio:  string(t.AspectRatio),
		ColorScheme:  string(t.ColorScheme),
		Status:       string(t.Status),
		IsGenerating: t.IsGenerating(),
		ImageURL:     t.ImageURL,
		PreviewURL:   t.PreviewURL,
		BlurHash:     t.BlurHash,
		Width:        t.Width,
		Height:       t.Height,
		ErrorMessage: t.ErrorMessage,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
		CompletedAt:  t.CompletedAt,
	}
}
