package api

import (
	"github.com/thumblifyapp/thumblify-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth      *service.AuthService
	Session   *service.SessionService
	Thumbnail *service.ThumbnailService
	Admin     *service.AdminService
	Import    *service.ImportService
}
