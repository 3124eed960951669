package api

import (
	"context"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/thumblifyapp/thumblify-server/internal/errors"
)

// SessionCookieName is the cookie carrying the access token for browser
// clients that cannot attach an Authorization header.
const SessionCookieName = "thumblify_token"

// authenticateRequest resolves the caller's identity and returns the user
// ID. The Authorization header wins; the session cookie is the fallback.
// The returned ID is passed explicitly into every service call.
func (s *Server) authenticateRequest(ctx context.Context, authHeader, cookieToken string) (string, error) {
	token, err := extractToken(authHeader, cookieToken)
	if err != nil {
		return "", err
	}

	user, _, err := s.services.Auth.VerifyAccessToken(ctx, token)
	if err != nil {
		return "", huma.Error401Unauthorized("Invalid or expired token")
	}

	return user.ID, nil
}

// authenticateRoot authenticates the request and requires the root user.
func (s *Server) authenticateRoot(ctx context.Context, authHeader, cookieToken string) (string, error) {
	token, err := extractToken(authHeader, cookieToken)
	if err != nil {
		return "", err
	}

	user, _, err := s.services.Auth.VerifyAccessToken(ctx, token)
	if err != nil {
		return "", huma.Error401Unauthorized("Invalid or expired token")
	}

	if !user.IsAdmin() {
		return "", domainerrors.Forbidden("Root access required")
	}

	return user.ID, nil
}

// extractToken picks the bearer token from the Authorization header,
// falling back to the session cookie value.
func extractToken(authHeader, cookieToken string) (string, error) {
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", huma.Error401Unauthorized("Invalid authorization header format")
		}
		return parts[1], nil
	}

	if cookieToken != "" {
		return cookieToken, nil
	}

	return "", huma.Error401Unauthorized("Authentication required")
}

// extractIP returns the originating client IP from forwarding headers.
func extractIP(xForwardedFor, xRealIP string) string {
	if xForwardedFor != "" {
		if i := strings.IndexByte(xForwardedFor, ','); i >= 0 {
			return strings.TrimSpace(xForwardedFor[:i])
		}
		return xForwardedFor
	}
	return xRealIP
}
