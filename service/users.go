package service

import (
	"context"

	"minishop/models"
	"minishop/store"
)

// RegisterUser returns the user with the given email, creating it if needed.
// The name of an existing user is left untouched.
func (s *Service) RegisterUser(ctx context.Context, name, email string) (models.User, error) {
	if email == "" {
		return models.User{}, invalid("email", "Missing email")
	}
	row, err := s.store.FindOrCreateUser(ctx, name, email)
	if err != nil {
		return models.User{}, storageErr("register user", err)
	}
	return toUser(row), nil
}

// GetUser returns ErrUserNotFound for an unknown id.
func (s *Service) GetUser(ctx context.Context, id int64) (models.User, error) {
	row, err := s.store.GetUser(ctx, id)
	if err != nil {
		return models.User{}, storageErr("get user", err)
	}
	if row == nil {
		return models.User{}, ErrUserNotFound
	}
	return toUser(*row), nil
}

func toUser(r store.UserRow) models.User {
	u := models.User{ID: r.ID, Email: r.Email}
	if r.Name.Valid {
		name := r.Name.String
		u.Name = &name
	}
	return u
}
