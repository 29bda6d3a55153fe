package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rizwana27/psa/db"
)

type UserService struct {
	PG *sql.DB
}

func NewUserService(pg *sql.DB) *UserService {
	return &UserService{PG: pg}
}

// GetUser returns a user by ID
func (s *UserService) GetUser(userID string) (db.User, error) {
	var user db.User

	err := s.PG.QueryRow(`
		SELECT id, name, email, role, is_active, created_at, updated_at,
		       COALESCE(provider, '') as provider, COALESCE(provider_id, '') as provider_id,
		       COALESCE(fcm_token, '') as fcm_token
		FROM users
		WHERE id = $1
	`, userID).Scan(
		&user.ID, &user.Name, &user.Email, &user.Role, &user.IsActive,
		&user.CreatedAt, &user.UpdatedAt, &user.Provider, &user.ProviderID,
		&user.FCMToken,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return user, ErrNotFound
		}
		return user, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// CreateUserRecord inserts a user synced from the identity provider
func (s *UserService) CreateUserRecord(user db.User) error {
	_, err := s.PG.Exec(`
		INSERT INTO users (id, name, email, role, is_active, created_at, updated_at, provider, provider_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`, user.ID, user.Name, user.Email, user.Role, user.IsActive,
		user.CreatedAt, user.UpdatedAt, user.Provider, user.ProviderID)

	if err != nil {
		return fmt.Errorf("failed to create user record: %w", err)
	}

	return nil
}

// ListUsers returns all active users
func (s *UserService) ListUsers() ([]db.User, error) {
	rows, err := s.PG.Query(`
		SELECT id, name, email, role, is_active, created_at, updated_at,
		       COALESCE(provider, '') as provider, COALESCE(provider_id, '') as provider_id,
		       COALESCE(fcm_token, '') as fcm_token
		FROM users
		WHERE is_active = true
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []db.User
	for rows.Next() {
		var user db.User
		err := rows.Scan(
			&user.ID, &user.Name, &user.Email, &user.Role, &user.IsActive,
			&user.CreatedAt, &user.UpdatedAt, &user.Provider, &user.ProviderID,
			&user.FCMToken,
		)
		if err != nil {
			continue
		}
		users = append(users, user)
	}

	return users, nil
}

// UpdateUserRole changes a user's role
func (s *UserService) UpdateUserRole(userID, role string) error {
	result, err := s.PG.Exec(`
		UPDATE users SET role = $2, updated_at = $3 WHERE id = $1
	`, userID, role, time.Now())

	if err != nil {
		return fmt.Errorf("failed to update user role: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
