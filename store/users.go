package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// FindOrCreateUser returns the user registered under email, creating it when absent.
func (s *SQLStore) FindOrCreateUser(ctx context.Context, name, email string) (UserRow, error) {
	var u UserRow
	err := s.DB.QueryRowContext(ctx, queryFindUserByEmail, email).Scan(&u.ID, &u.Name, &u.Email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return UserRow{}, fmt.Errorf("failed to query user: %w", err)
	}

	u = UserRow{Name: sql.NullString{String: name, Valid: name != ""}, Email: email}
	if err := s.DB.QueryRowContext(ctx, queryInsertUser, u.Name, email).Scan(&u.ID); err != nil {
		return UserRow{}, fmt.Errorf("failed to insert user: %w", err)
	}
	return u, nil
}

// GetUser returns nil, nil when no user has the id.
func (s *SQLStore) GetUser(ctx context.Context, id int64) (*UserRow, error) {
	var u UserRow
	err := s.DB.QueryRowContext(ctx, queryGetUser, id).Scan(&u.ID, &u.Name, &u.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &u, nil
}
