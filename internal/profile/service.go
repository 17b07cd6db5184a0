// AngelaMos | 2026
// service.go

package profile

import (
	"context"
	"fmt"
	"strings"

	"github.com/caffeinepub/engineer-notes-shop/internal/actor"
	"github.com/caffeinepub/engineer-notes-shop/internal/core"
	"github.com/caffeinepub/engineer-notes-shop/internal/query"
)

const maxNameLength = 100

type Service struct {
	store *query.Store
}

func NewService(store *query.Store) *Service {
	return &Service{store: store}
}

// Me returns the caller's profile, nil when none has been saved yet.
func (s *Service) Me(ctx context.Context) (*actor.UserProfile, error) {
	return s.store.CallerProfile(ctx)
}

// Save normalizes and persists the caller's display name. The saved profile
// is returned so the response reflects normalization.
func (s *Service) Save(
	ctx context.Context,
	name string,
) (*actor.UserProfile, error) {
	normalized := strings.TrimSpace(name)
	if normalized == "" {
		return nil, fmt.Errorf(
			"profile name must not be empty: %w",
			core.ErrInvalidInput,
		)
	}
	if len(normalized) > maxNameLength {
		return nil, fmt.Errorf(
			"profile name exceeds %d characters: %w",
			maxNameLength,
			core.ErrInvalidInput,
		)
	}

	return s.store.SaveCallerProfile(ctx, actor.UserProfile{Name: normalized})
}

func (s *Service) Role(ctx context.Context) (actor.UserRole, error) {
	return s.store.CallerRole(ctx)
}

func (s *Service) Profile(
	ctx context.Context,
	principal string,
) (*actor.UserProfile, error) {
	return s.store.UserProfile(ctx, principal)
}

func (s *Service) AllProfiles(
	ctx context.Context,
) ([]actor.PrincipalProfile, error) {
	return s.store.AllUserProfiles(ctx)
}
