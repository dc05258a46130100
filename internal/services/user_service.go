package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mpmf/NexxtTask/internal/model"
	"github.com/mpmf/NexxtTask/internal/store"
)

type userServiceImpl struct {
	logger zerolog.Logger
	store  store.Store
}

func NewUserService(
	logger zerolog.Logger,
	store store.Store,
) UserService {
	return &userServiceImpl{
		logger: logger,
		store:  store,
	}
}

func (s *userServiceImpl) ListTeamMembers(ctx context.Context) ([]model.TeamMember, error) {
	users, err := s.store.GetUsers(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select users")
		return nil, err
	}

	members := make([]model.TeamMember, len(users))
	for i, u := range users {
		members[i] = model.TeamMember{
			ID:       u.ID,
			Email:    u.Email,
			FullName: u.DisplayName(),
		}
	}
	s.logger.Debug().
		Int("count", len(members)).
		Msg("selected team members")
	return members, nil
}
