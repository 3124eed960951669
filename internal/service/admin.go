package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/thumblifyapp/thumblify-server/internal/domain"
	"github.com/thumblifyapp/thumblify-server/internal/store"
)

// AdminService exposes root-only operations.
type AdminService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewAdminService creates a new admin service.
func NewAdminService(store *store.Store, logger *slog.Logger) *AdminService {
	return &AdminService{
		store:  store,
		logger: logger,
	}
}

// ListUsers returns every user account, oldest first.
func (s *AdminService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	var users []*domain.User
	for user, err := range s.store.Users.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		users = append(users, user)
	}

	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})

	return users, nil
}
