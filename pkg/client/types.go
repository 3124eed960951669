package client

import "time"

// GenerateRequest describes one thumbnail generation.
type GenerateRequest struct {
	Title       string `json:"title"`
	Details     string `json:"details,omitempty"`
	TextOverlay string `json:"text_overlay,omitempty"`
	Style       string `json:"style"`
	AspectRatio string `json:"aspect_ratio"`
	ColorScheme string `json:"color_scheme,omitempty"`
}

// Thumbnail is one generation record as returned by the API.
type Thumbnail struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Details      string     `json:"details,omitempty"`
	TextOverlay  string     `json:"text_overlay,omitempty"`
	Style        string     `json:"style"`
	AspectRatio  string     `json:"aspect_ratio"`
	ColorScheme  string     `json:"color_scheme,omitempty"`
	Prompt       string     `json:"prompt"`
	Status       string     `json:"status"`
	IsGenerating bool       `json:"is_generating"`
	ImageURL     string     `json:"image_url,omitempty"`
	BlurHash     string     `json:"blur_hash,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// IsTerminal reports whether the record reached a final state.
func (t *Thumbnail) IsTerminal() bool {
	return t.Status == "completed" || t.Status == "failed"
}

// Session holds the tokens returned by login.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	SessionID    string `json:"session_id"`
}

// ThumbnailList is the gallery response.
type ThumbnailList struct {
	Thumbnails []Thumbnail `json:"thumbnails"`
	Count      int         `json:"count"`
}
