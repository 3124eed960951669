package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/thumblifyapp/thumblify-server/internal/api/dto"
	"github.com/thumblifyapp/thumblify-server/internal/domain"
	"github.com/thumblifyapp/thumblify-server/internal/service"
)

func (s *Server) registerThumbnailRoutes() {
	authed := []map[string][]string{{"bearer": {}}, {"cookie": {}}}

	huma.Register(s.api, huma.Operation{
		OperationID: "generateThumbnail",
		Method:      http.MethodPost,
		Path:        "/api/thumbnail/generate",
		Summary:     "Generate thumbnail",
		Description: "Builds the prompt, calls the image provider once, stores the result, and returns the completed record. The record is pollable by id as soon as the call is accepted.",
		Tags:        []string{"Thumbnails"},
		Security:    authed,
	}, s.handleGenerateThumbnail)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteThumbnail",
		Method:      http.MethodDelete,
		Path:        "/api/thumbnail/delete/{id}",
		Summary:     "Delete thumbnail",
		Description: "Deletes a thumbnail and its stored objects. Deleting a missing id succeeds.",
		Tags:        []string{"Thumbnails"},
		Security:    authed,
	}, s.handleDeleteThumbnail)

	huma.Register(s.api, huma.Operation{
		OperationID: "getThumbnail",
		Method:      http.MethodGet,
		Path:        "/api/user/thumbnail/{id}",
		Summary:     "Get thumbnail",
		Description: "Returns one of the caller's thumbnails. Clients poll this while a record is generating.",
		Tags:        []string{"Thumbnails"},
		Security:    authed,
	}, s.handleGetThumbnail)

	huma.Register(s.api, huma.Operation{
		OperationID: "listThumbnails",
		Method:      http.MethodGet,
		Path:        "/api/user/thumbnails",
		Summary:     "List thumbnails",
		Description: "Returns all of the caller's thumbnails, newest first",
		Tags:        []string{"Thumbnails"},
		Security:    authed,
	}, s.handleListThumbnails)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchThumbnails",
		Method:      http.MethodGet,
		Path:        "/api/user/thumbnails/search",
		Summary:     "Search thumbnails",
		Description: "Full-text search over the caller's thumbnail titles and details",
		Tags:        []string{"Thumbnails"},
		Security:    authed,
	}, s.handleSearchThumbnails)

	huma.Register(s.api, huma.Operation{
		OperationID: "downloadThumbnail",
		Method:      http.MethodGet,
		Path:        "/api/user/thumbnail/{id}/download",
		Summary:     "Download thumbnail",
		Description: "Returns a URL that serves the image as a file download",
		Tags:        []string{"Thumbnails"},
		Security:    authed,
	}, s.handleDownloadThumbnail)
}

// === DTOs ===

// AuthedInput carries the two accepted credentials.
type AuthedInput struct {
	Authorization string `header:"Authorization"`
	SessionToken  string `cookie:"thumblify_token"`
}

// GenerateThumbnailInput wraps the generation request for Huma.
type GenerateThumbnailInput struct {
	AuthedInput
	Body dto.GenerateThumbnailRequest
}

// ThumbnailInput addresses a single thumbnail by id.
type ThumbnailInput struct {
	AuthedInput
	ID string `path:"id" doc:"Thumbnail ID"`
}

// ListThumbnailsInput wraps the list request for Huma.
type ListThumbnailsInput struct {
	AuthedInput
}

// SearchThumbnailsInput carries the search query parameters.
type SearchThumbnailsInput struct {
	AuthedInput
	Query string `query:"q" doc:"Search query; empty matches everything"`
	Limit int    `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Maximum number of hits"`
}

// ThumbnailOutput wraps a single thumbnail response for Huma.
type ThumbnailOutput struct {
	Body dto.ThumbnailResponse
}

// ListThumbnailsOutput wraps the list response for Huma.
type ListThumbnailsOutput struct {
	Body dto.ListThumbnailsResponse
}

// DownloadOutput wraps the download URL response for Huma.
type DownloadOutput struct {
	Body dto.DownloadResponse
}

// MessageOutput wraps a plain success message for Huma.
type MessageOutput struct {
	Body dto.MessageResponse
}

// === Handlers ===

func (s *Server) handleGenerateThumbnail(ctx context.Context, input *GenerateThumbnailInput) (*ThumbnailOutput, error) {
	ownerID, err := s.authenticateRequest(ctx, input.Authorization, input.SessionToken)
	if err != nil {
		return nil, err
	}

	thumb, err := s.services.Thumbnail.Generate(ctx, ownerID, service.GenerateThumbnailRequest{
		Title:       input.Body.Title,
		Details:     input.Body.Details,
		TextOverlay: input.Body.TextOverlay,
		Style:       domain.Style(input.Body.Style),
		AspectRatio: domain.AspectRatio(input.Body.AspectRatio),
		ColorScheme: domain.ColorScheme(input.Body.ColorScheme),
	})
	if err != nil {
		return nil, err
	}

	return &ThumbnailOutput{Body: dto.NewThumbnailResponse(thumb)}, nil
}

func (s *Server) handleDeleteThumbnail(ctx context.Context, input *ThumbnailInput) (*MessageOutput, error) {
	ownerID, err := s.authenticateRequest(ctx, input.Authorization, input.SessionToken)
	if err != nil {
		return nil, err
	}

	if err := s.services.Thumbnail.Delete(ctx, ownerID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: dto.MessageResponse{Message: "Thumbnail deleted"}}, nil
}

func (s *Server) handleGetThumbnail(ctx context.Context, input *ThumbnailInput) (*ThumbnailOutput, error) {
	ownerID, err := s.authenticateRequest(ctx, input.Authorization, input.SessionToken)
	if err != nil {
		return nil, err
	}

	thumb, err := s.services.Thumbnail.Get(ctx, ownerID, input.ID)
	if err != nil {
		return nil, err
	}

	return &ThumbnailOutput{Body: dto.NewThumbnailResponse(thumb)}, nil
}

func (s *Server) handleListThumbnails(ctx context.Context, input *ListThumbnailsInput) (*ListThumbnailsOutput, error) {
	ownerID, err := s.authenticateRequest(ctx, input.Authorization, input.SessionToken)
	if err != nil {
		return nil, err
	}

	thumbs, err := s.services.Thumbnail.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	return &ListThumbnailsOutput{Body: thumbnailList(thumbs)}, nil
}

func (s *Server) handleSearchThumbnails(ctx context.Context, input *SearchThumbnailsInput) (*ListThumbnailsOutput, error) {
	ownerID, err := s.authenticateRequest(ctx, input.Authorization, input.SessionToken)
	if err != nil {
		return nil, err
	}

	thumbs, err := s.services.Thumbnail.Search(ctx, ownerID, input.Query, input.Limit)
	if err != nil {
		return nil, err
	}

	return &ListThumbnailsOutput{Body: thumbnailList(thumbs)}, nil
}

func (s *Server) handleDownloadThumbnail(ctx context.Context, input *ThumbnailInput) (*DownloadOutput, error) {
	ownerID, err := s.authenticateRequest(ctx, input.Authorization, input.SessionToken)
	if err != nil {
		return nil, err
	}

	url, err := s.services.Thumbnail.DownloadURL(ctx, ownerID, input.ID)
	if err != nil {
		return nil, err
	}

	return &DownloadOutput{Body: dto.DownloadResponse{DownloadURL: url}}, nil
}

func thumbnailList(thumbs []*domain.Thumbnail) dto.ListThumbnailsResponse {
	resp := make([]dto.ThumbnailResponse, len(thumbs))
	for i, t := range thumbs {
		resp[i] = dto.NewThumbnailResponse(t)
	}
	return dto.ListThumbnailsResponse{Thumbnails: resp, Count: len(resp)}
}
