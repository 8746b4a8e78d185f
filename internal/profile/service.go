package profile

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/MiguelL1304/aquascape/internal/calendar"
	"github.com/MiguelL1304/aquascape/internal/shared/clock"
	"github.com/MiguelL1304/aquascape/internal/shared/envconfig"
)

// Service manages profiles and signup bootstrap.
type Service struct {
	repo         Repository
	clock        clock.Clock
	cal          calendar.Settings
	materializer Materializer
}

// NewService constructs a Service. materializer may be nil when recurrences are disabled.
func NewService(repo Repository, clk clock.Clock, cal calendar.Settings, materializer Materializer) (*Service, error) {
	if repo == nil {
		return nil, errors.New("repo is required")
	}
	if clk == nil {
		return nil, errors.New("clock is required")
	}
	return &Service{repo: repo, clock: clk, cal: cal, materializer: materializer}, nil
}

// Create registers a profile on signup and expands the user's recurrences for the
// current and next month.
func (s *Service) Create(ctx context.Context, input CreateInput) (Profile, error) {
	input.DisplayName = strings.TrimSpace(input.DisplayName)
	input.Avatar = strings.TrimSpace(input.Avatar)
	if err := envconfig.Validate(input); err != nil {
		return Profile{}, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}
	if input.Avatar == "" {
		input.Avatar = DefaultAvatar
	}
	if !slices.Contains(Avatars, input.Avatar) {
		return Profile{}, fmt.Errorf("%w: avatar must be one of: %s", ErrInvalidInput, strings.Join(Avatars, ", "))
	}
	if input.DisplayName == "" {
		input.DisplayName = AvatarLabel(input.Avatar)
	}

	now := s.clock.Now().UTC()
	if s.materializer != nil {
		through := calendar.EndOfNextMonth(s.cal.Today(now))
		if _, err := s.materializer.Materialize(ctx, input.UserID, through); err != nil {
			return Profile{}, fmt.Errorf("materialize recurrences: %w", err)
		}
	}

	p := Profile{
		UserID:      input.UserID,
		DisplayName: input.DisplayName,
		Avatar:      input.Avatar,
		Inventory:   Inventory{Fish: []string{}, Decorations: []string{}},
		Badges:      []EarnedBadge{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Get loads a profile.
func (s *Service) Get(ctx context.Context, userID string) (Profile, error) {
	if userID == "" {
		return Profile{}, ErrNotFound
	}
	return s.repo.Get(ctx, userID)
}

// UpdateAvatar selects a new avatar from the catalog.
func (s *Service) UpdateAvatar(ctx context.Context, userID, avatar string) (Profile, error) {
	if userID == "" {
		return Profile{}, ErrNotFound
	}
	avatar = strings.TrimSpace(avatar)
	if !slices.Contains(Avatars, avatar) {
		return Profile{}, fmt.Errorf("%w: avatar must be one of: %s", ErrInvalidInput, strings.Join(Avatars, ", "))
	}
	return s.repo.SetAvatar(ctx, userID, avatar, s.clock.Now().UTC())
}
