// Package service implements the application's use cases on top of the
// store, the image provider, the media host, and the search index.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/thumblifyapp/thumblify-server/internal/auth"
	"github.com/thumblifyapp/thumblify-server/internal/domain"
	domainerrors "github.com/thumblifyapp/thumblify-server/internal/errors"
	"github.com/thumblifyapp/thumblify-server/internal/id"
	"github.com/thumblifyapp/thumblify-server/internal/ratelimit"
	"github.com/thumblifyapp/thumblify-server/internal/store"
	"github.com/thumblifyapp/thumblify-server/internal/validation"
)

// AuthService handles user authentication (setup, registration, login,
// token verification). Session lifecycle is delegated to SessionService.
type AuthService struct {
	store             *store.Store
	tokenService      *auth.TokenService
	sessionService    *SessionService
	validator         *validation.Validator
	loginLimiter      *ratelimit.KeyedRateLimiter
	allowRegistration bool
	logger            *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	store *store.Store,
	tokenService *auth.TokenService,
	sessionService *SessionService,
	validator *validation.Validator,
	loginLimiter *ratelimit.KeyedRateLimiter,
	allowRegistration bool,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:             store,
		tokenService:      tokenService,
		sessionService:    sessionService,
		validator:         validator,
		loginLimiter:      loginLimiter,
		allowRegistration: allowRegistration,
		logger:            logger,
	}
}

// SetupRequest contains the initial root user creation data.
type SetupRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=1024"`
	DisplayName string `json:"display_name" validate:"required,max=100"`
}

// RegisterRequest contains user registration data for open registration.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=1024"`
	DisplayName string `json:"display_name" validate:"required,max=100"`
}

// LoginRequest contains user credentials and request metadata.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`

	// Extracted from the request by the handler
	UserAgent string `json:"-"`
	IPAddress string `json:"-"`
}

// RefreshRequest contains the refresh token presented for rotation.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`

	UserAgent string `json:"-"`
	IPAddress string `json:"-"`
}

// AuthResponse contains authentication tokens and user data.
type AuthResponse struct {
	User *domain.User `json:"user"`
	SessionResponse
}

// Setup creates the first user, who becomes root. It can only succeed
// once, before any users exist.
func (s *AuthService) Setup(ctx context.Context, req SetupRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	anyUsers, err := s.store.Users.Any(ctx)
	if err != nil {
		return nil, fmt.Errorf("check existing users: %w", err)
	}
	if anyUsers {
		return nil, domainerrors.AlreadyConfigured("server is already configured")
	}

	user, err := s.createUser(ctx, req.Email, req.Password, req.DisplayName, true)
	if err != nil {
		return nil, err
	}

	sessionResp, err := s.sessionService.CreateSession(ctx, user, "", "")
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Server setup complete",
			"user_id", user.ID,
			"email", user.Email,
		)
	}

	return &AuthResponse{
		User:            user,
		SessionResponse: *sessionResp,
	}, nil
}

// Register creates a new user account when open registration is enabled.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if !s.allowRegistration {
		return nil, domainerrors.Forbidden("registration is not open")
	}

	user, err := s.createUser(ctx, req.Email, req.Password, req.DisplayName, false)
	if err != nil {
		return nil, err
	}

	sessionResp, err := s.sessionService.CreateSession(ctx, user, "", "")
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("User registered",
			"user_id", user.ID,
			"email", user.Email,
		)
	}

	return &AuthResponse{
		User:            user,
		SessionResponse: *sessionResp,
	}, nil
}

// Login authenticates a user and creates a new session. Attempts are
// rate limited per source IP so password guessing stays slow.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if s.loginLimiter != nil && req.IPAddress != "" && !s.loginLimiter.Allow(req.IPAddress) {
		return nil, domainerrors.RateLimited("too many login attempts, slow down")
	}

	user, err := s.store.Users.GetByIndex(ctx, "email", req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Don't leak whether the email exists
			return nil, domainerrors.InvalidCredentials("invalid email or password")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	valid, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return nil, domainerrors.InvalidCredentials("invalid email or password")
	}

	user.LastLoginAt = time.Now()
	user.Touch()
	if err := s.store.Users.Update(ctx, user.ID, user); err != nil {
		// Log but don't fail login
		if s.logger != nil {
			s.logger.Warn("Failed to update last login time",
				"user_id", user.ID,
				"error", err,
			)
		}
	}

	sessionResp, err := s.sessionService.CreateSession(ctx, user, req.UserAgent, req.IPAddress)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("User logged in", "user_id", user.ID)
	}

	return &AuthResponse{
		User:            user,
		SessionResponse: *sessionResp,
	}, nil
}

// RefreshTokens generates new tokens using a refresh token.
// The old refresh token is invalidated (token rotation).
func (s *AuthService) RefreshTokens(ctx context.Context, req RefreshRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	sessionResp, user, err := s.sessionService.RefreshSession(ctx, req.RefreshToken, req.UserAgent, req.IPAddress)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:            user,
		SessionResponse: *sessionResp,
	}, nil
}

// Logout revokes a session, invalidating its refresh token.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessionService.DeleteSession(ctx, sessionID)
}

// VerifyAccessToken validates a token and returns the associated user.
// Used by the authentication middleware.
func (s *AuthService) VerifyAccessToken(ctx context.Context, tokenString string) (*domain.User, *auth.AccessClaims, error) {
	claims, err := s.tokenService.VerifyAccessToken(tokenString)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid token: %w", err)
	}

	user, err := s.store.Users.Get(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, errors.New("user not found")
		}
		return nil, nil, fmt.Errorf("get user: %w", err)
	}

	return user, claims, nil
}

// createUser hashes the password and persists a new user record.
func (s *AuthService) createUser(ctx context.Context, email, password, displayName string, isRoot bool) (*domain.User, error) {
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	user := &domain.User{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		IsRoot:       isRoot,
		LastLoginAt:  time.Now(),
	}
	user.ID = userID
	user.InitTimestamps()

	if err := s.store.Users.Create(ctx, userID, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("email already in use")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}
