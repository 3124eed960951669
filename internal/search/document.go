// Package search provides full-text search over a user's thumbnails
// using Bleve. Every query is owner-scoped; the index never returns a
// document belonging to another user.
package search

import (
	"github.com/thumblifyapp/thumblify-server/internal/domain"
	"github.com/thumblifyapp/thumblify-server/internal/normalize"
)

// SearchDocument is the document structure for the Bleve index, one
// per thumbnail.
type SearchDocument struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
	Title   string `json:"title"`
	Details string `json:"details,omitempty"`
	Style   string `json:"style,omitempty"`

	// Unix millis, for sorting by recency.
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *SearchDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"owner_id":   d.OwnerID,
		"title":      d.Title,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}

	if d.Details != "" {
		m["details"] = d.Details
	}
	if d.Style != "" {
		m["style"] = d.Style
	}

	return m
}

// ThumbnailToSearchDocument converts a domain Thumbnail to its indexed
// form. Title and details are canonicalized so the same text typed with
// different unicode compositions matches.
func ThumbnailToSearchDocument(t *domain.Thumbnail) *SearchDocument {
	return &SearchDocument{
		ID:        t.ID,
		OwnerID:   t.OwnerID,
		Title:     normalize.Text(t.Title),
		Details:   normalize.Text(t.Details),
		Style:     string(t.Style),
		CreatedAt: t.CreatedAt.UnixMilli(),
		UpdatedAt: t.UpdatedAt.UnixMilli(),
	}
}
