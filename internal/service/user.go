// Package service holds the user business rules. It translates between
// transport DTOs and domain users and talks to storage through UserRepository.
package service

import (
	"context"

	"github.com/rs/zerolog"

	"usersvc/m/domain"
	"usersvc/m/internal/apperr"
)

// DefaultLimit caps how many users a single read returns.
const DefaultLimit = 100

// UserRepository is the storage contract the service depends on.
type UserRepository interface {
	GetUsers(ctx context.Context, limit int) ([]domain.User, error)
	AddUser(ctx context.Context, user domain.User) (domain.User, error)
}

// UserService applies the user business rules.
type UserService struct {
	repo   UserRepository
	logger zerolog.Logger
}

// NewUserService constructs a UserService backed by repo.
func NewUserService(repo UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

// GetUsers lists up to DefaultLimit users. An empty store is reported as
// apperr.UserNotFound rather than an empty list.
func (s *UserService) GetUsers(ctx context.Context) ([]UserResponse, error) {
	s.logger.Info().Ctx(ctx).Int("limit", DefaultLimit).Msg("fetching users")

	users, err := s.repo.GetUsers(ctx, DefaultLimit)
	if err != nil {
		return nil, apperr.Report(ctx, s.logger, err, "fetching users failed")
	}
	if len(users) == 0 {
		return nil, apperr.Report(ctx, s.logger, apperr.UserNotFound(), "no users found")
	}

	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toResponse(u))
	}
	s.logger.Info().Ctx(ctx).Int("count", len(out)).Msg("fetched users")
	return out, nil
}

// AddUser creates a user from dto and returns it with its assigned id.
func (s *UserService) AddUser(ctx context.Context, dto UserCreateDTO) (UserResponse, error) {
	s.logger.Info().Ctx(ctx).Str("user_name", dto.Name).Msg("adding user")

	if dto.Age == nil {
		return UserResponse{}, apperr.Report(ctx, s.logger, apperr.InvalidInput("age is required", nil), "rejected user")
	}
	user, err := domain.NewUser(dto.Name, *dto.Age, dto.Nickname)
	if err != nil {
		return UserResponse{}, apperr.Report(ctx, s.logger, apperr.InvalidInput(err.Error(), err), "rejected user")
	}

	stored, err := s.repo.AddUser(ctx, user)
	if err != nil {
		return UserResponse{}, apperr.Report(ctx, s.logger, err, "adding user failed")
	}

	s.logger.Info().Ctx(ctx).Str("user_name", stored.Name).Int64("user_id", stored.ID).Msg("user added")
	return toResponse(stored), nil
}
