package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/thumblifyapp/thumblify-server/internal/api/dto"
	"github.com/thumblifyapp/thumblify-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "setup",
		Method:      http.MethodPost,
		Path:        "/api/auth/setup",
		Summary:     "Initial server setup",
		Description: "Creates the first user, who becomes root. Can only be called once.",
		Tags:        []string{"Authentication"},
	}, s.handleSetup)

	huma.Register(s.api, huma.Operation{
		OperationID: "register",
		Method:      http.MethodPost,
		Path:        "/api/auth/register",
		Summary:     "Register new user",
		Description: "Creates a new user account (requires open registration to be enabled).",
		Tags:        []string{"Authentication"},
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/auth/login",
		Summary:     "User login",
		Description: "Authenticates a user, sets the session cookie, and returns access and refresh tokens.",
		Tags:        []string{"Authentication"},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "refreshToken",
		Method:      http.MethodPost,
		Path:        "/api/auth/refresh",
		Summary:     "Refresh tokens",
		Description: "Exchanges a refresh token for new tokens. The old refresh token is invalidated.",
		Tags:        []string{"Authentication"},
	}, s.handleRefresh)

	huma.Register(s.api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/api/auth/logout",
		Summary:     "Logout",
		Description: "Revokes the specified session and clears the session cookie.",
		Tags:        []string{"Authentication"},
	}, s.handleLogout)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/auth/me",
		Summary:     "Current user",
		Description: "Returns the authenticated user",
		Tags:        []string{"Authentication"},
		Security:    []map[string][]string{{"bearer": {}}, {"cookie": {}}},
	}, s.handleGetCurrentUser)
}

// === DTOs ===

// SetupRequest is the request body for initial server setup.
type SetupRequest struct {
	Email       string `json:"email" validate:"required,email,max=254" doc:"Root user email address"`
	Password    string `json:"password" validate:"required,min=8,max=1024" doc:"Root user password"`
	DisplayName string `json:"display_name" validate:"required,max=100" doc:"Root user display name"`
}

// SetupInput wraps the setup request for Huma.
type SetupInput struct {
	Body SetupRequest
}

// RegisterRequest is the request body for user registration.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email,max=254" doc:"User email address"`
	Password    string `json:"password" validate:"required,min=8,max=1024" doc:"User password"`
	DisplayName string `json:"display_name" validate:"required,max=100" doc:"User display name"`
}

// RegisterInput wraps the register request for Huma.
type RegisterInput struct {
	Body RegisterRequest
}

// LoginRequest is the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254" doc:"User email"`
	Password string `json:"password" validate:"required,max=1024" doc:"User password"`
}

// LoginInput wraps the login request with headers for Huma.
type LoginInput struct {
	Body          LoginRequest
	UserAgent     string `header:"User-Agent"`
	XForwardedFor string `header:"X-Forwarded-For"`
	XRealIP       string `header:"X-Real-IP"`
}

// RefreshRequest is the request body for token refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required" doc:"Refresh token"`
}

// RefreshInput wraps the refresh request with headers for Huma.
type RefreshInput struct {
	Body          RefreshRequest
	UserAgent     string `header:"User-Agent"`
	XForwardedFor string `header:"X-Forwarded-For"`
	XRealIP       string `header:"X-Real-IP"`
}

// LogoutRequest is the request body for logout.
type LogoutRequest struct {
	SessionID string `json:"session_id" validate:"required,max=100" doc:"Session ID to revoke"`
}

// LogoutInput wraps the logout request for Huma.
type LogoutInput struct {
	Body LogoutRequest
}

// AuthOutput wraps the auth response for Huma and refreshes the session
// cookie alongside the token payload.
type AuthOutput struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      dto.AuthResponse
}

// LogoutOutput clears the session cookie alongside the success message.
type LogoutOutput struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      dto.MessageResponse
}

// CurrentUserInput authenticates via bearer token or session cookie.
type CurrentUserInput struct {
	Authorization string `header:"Authorization"`
	SessionToken  string `cookie:"thumblify_token"`
}

// CurrentUserOutput wraps the current user response for Huma.
type CurrentUserOutput struct {
	Body dto.UserResponse
}

// === Handlers ===

func (s *Server) handleSetup(ctx context.Context, input *SetupInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.Setup(ctx, service.SetupRequest{
		Email:       input.Body.Email,
		Password:    input.Body.Password,
		DisplayName: input.Body.DisplayName,
	})
	if err != nil {
		return nil, err
	}

	return s.authOutput(resp), nil
}

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.Register(ctx, service.RegisterRequest{
		Email:       input.Body.Email,
		Password:    input.Body.Password,
		DisplayName: input.Body.DisplayName,
	})
	if err != nil {
		return nil, err
	}

	return s.authOutput(resp), nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.Login(ctx, service.LoginRequest{
		Email:     input.Body.Email,
		Password:  input.Body.Password,
		UserAgent: input.UserAgent,
		IPAddress: extractIP(input.XForwardedFor, input.XRealIP),
	})
	if err != nil {
		return nil, err
	}

	return s.authOutput(resp), nil
}

func (s *Server) handleRefresh(ctx context.Context, input *RefreshInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.RefreshTokens(ctx, service.RefreshRequest{
		RefreshToken: input.Body.RefreshToken,
		UserAgent:    input.UserAgent,
		IPAddress:    extractIP(input.XForwardedFor, input.XRealIP),
	})
	if err != nil {
		return nil, err
	}

	return s.authOutput(resp), nil
}

func (s *Server) handleLogout(ctx context.Context, input *LogoutInput) (*LogoutOutput, error) {
	if err := s.services.Auth.Logout(ctx, input.Body.SessionID); err != nil {
		return nil, err
	}

	return &LogoutOutput{
		SetCookie: s.clearSessionCookie(),
		Body:      dto.MessageResponse{Message: "Logged out successfully"},
	}, nil
}

func (s *Server) handleGetCurrentUser(ctx context.Context, input *CurrentUserInput) (*CurrentUserOutput, error) {
	token, err := extractToken(input.Authorization, input.SessionToken)
	if err != nil {
		return nil, err
	}

	user, _, err := s.services.Auth.VerifyAccessToken(ctx, token)
	if err != nil {
		return nil, huma.Error401Unauthorized("Invalid or expired token")
	}

	return &CurrentUserOutput{Body: dto.NewUserResponse(user)}, nil
}

// === Helpers ===

func (s *Server) authOutput(resp *service.AuthResponse) *AuthOutput {
	return &AuthOutput{
		SetCookie: s.sessionCookie(resp.AccessToken, resp.ExpiresIn),
		Body: dto.AuthResponse{
			AccessToken:  resp.AccessToken,
			RefreshToken: resp.RefreshToken,
			TokenType:    resp.TokenType,
			ExpiresIn:    resp.ExpiresIn,
			SessionID:    resp.SessionID,
			User:         dto.NewUserResponse(resp.User),
		},
	}
}

// sessionCookie builds the access-token cookie. Production deployments
// serve the app cross-origin over https, which requires Secure together
// with SameSite=None; everywhere else Lax keeps plain http working.
func (s *Server) sessionCookie(token string, maxAge int) http.Cookie {
	c := http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if s.config.CookiesSecure() {
		c.Secure = true
		c.SameSite = http.SameSiteNoneMode
	}
	return c
}

func (s *Server) clearSessionCookie() http.Cookie {
	c := s.sessionCookie("", -1)
	return c
}
