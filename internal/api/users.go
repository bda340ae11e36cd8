package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pkg/errors"

	"usersvc/m/internal/scope"
	"usersvc/m/internal/service"
)

// UserService is what the user routes need from the service layer.
type UserService interface {
	GetUsers(ctx context.Context) ([]service.UserResponse, error)
	AddUser(ctx context.Context, dto service.UserCreateDTO) (service.UserResponse, error)
}

func resolveUserService(ctx context.Context) (UserService, error) {
	s, ok := scope.FromContext(ctx)
	if !ok {
		return nil, errors.New("request scope is not installed")
	}
	svc, err := s.UserService(ctx)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) error {
	svc, err := h.users(r.Context())
	if err != nil {
		return err
	}
	users, err := svc.GetUsers(r.Context())
	if err != nil {
		return err
	}
	respondJSON(w, http.StatusOK, users)
	return nil
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) error {
	var dto service.UserCreateDTO
	if err := decodeJSON(r, &dto); err != nil {
		return err
	}
	if err := dto.Validate(); err != nil {
		return err
	}

	svc, err := h.users(r.Context())
	if err != nil {
		return err
	}
	user, err := svc.AddUser(r.Context(), dto)
	if err != nil {
		return err
	}
	w.Header().Set("Location", fmt.Sprintf("/users/%d", user.ID))
	respondJSON(w, http.StatusCreated, user)
	return nil
}
