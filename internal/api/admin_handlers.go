package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/thumblifyapp/thumblify-server/internal/api/dto"
	"github.com/thumblifyapp/thumblify-server/internal/service"
)

func (s *Server) registerAdminRoutes() {
	authed := []map[string][]string{{"bearer": {}}, {"cookie": {}}}

	huma.Register(s.api, huma.Operation{
		OperationID: "listUsers",
		Method:      http.MethodGet,
		Path:        "/api/admin/users",
		Summary:     "List users",
		Description: "Returns every user account, oldest first. Root only.",
		Tags:        []string{"Admin"},
		Security:    authed,
	}, s.handleListUsers)

	huma.Register(s.api, huma.Operation{
		OperationID: "importLegacy",
		Method:      http.MethodPost,
		Path:        "/api/admin/import/legacy",
		Summary:     "Import legacy export",
		Description: "Imports thumbnail history from a legacy sqlite export on the server filesystem. Root only.",
		Tags:        []string{"Admin"},
		Security:    authed,
	}, s.handleImportLegacy)
}

// === DTOs ===

// ListUsersInput authenticates the list users request.
type ListUsersInput struct {
	AuthedInput
}

// ListUsersResponse contains all user accounts.
type ListUsersResponse struct {
	Users []dto.UserResponse `json:"users" doc:"User accounts"`
	Count int                `json:"count" doc:"Number of accounts"`
}

// ListUsersOutput wraps the list users response for Huma.
type ListUsersOutput struct {
	Body ListUsersResponse
}

// ImportLegacyRequest names the export file to import.
type ImportLegacyRequest struct {
	Path string `json:"path" validate:"required" doc:"Path to the sqlite export on the server"`
}

// ImportLegacyInput wraps the import request for Huma.
type ImportLegacyInput struct {
	AuthedInput
	Body ImportLegacyRequest
}

// ImportLegacyOutput wraps the import summary for Huma.
type ImportLegacyOutput struct {
	Body service.ImportSummary
}

// === Handlers ===

func (s *Server) handleListUsers(ctx context.Context, input *ListUsersInput) (*ListUsersOutput, error) {
	if _, err := s.authenticateRoot(ctx, input.Authorization, input.SessionToken); err != nil {
		return nil, err
	}

	users, err := s.services.Admin.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.UserResponse, len(users))
	for i, u := range users {
		resp[i] = dto.NewUserResponse(u)
	}

	return &ListUsersOutput{Body: ListUsersResponse{Users: resp, Count: len(resp)}}, nil
}

func (s *Server) handleImportLegacy(ctx context.Context, input *ImportLegacyInput) (*ImportLegacyOutput, error) {
	if _, err := s.authenticateRoot(ctx, input.Authorization, input.SessionToken); err != nil {
		return nil, err
	}

	summary, err := s.services.Import.ImportLegacy(ctx, input.Body.Path)
	if err != nil {
		return nil, err
	}

	return &ImportLegacyOutput{Body: *summary}, nil
}
