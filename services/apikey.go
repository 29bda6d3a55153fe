package services

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// APIKeyService manages machine credentials for integrations. Keys look
// like "psa_<prefix>_<secret>"; only a bcrypt hash of the secret is
// stored.
type APIKeyService struct {
	PG *sql.DB
}

type APIKey struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Name       string     `json:"name"`
	Prefix     string     `json:"prefix"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

func NewAPIKeyService(pg *sql.DB) *APIKeyService {
	return &APIKeyService{PG: pg}
}

// CreateAPIKey mints a new key for a user. The plaintext key is returned
// exactly once.
func (s *APIKeyService) CreateAPIKey(userID, name string) (APIKey, string, error) {
	key := APIKey{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		Prefix:    randomHex(4),
		IsActive:  true,
		CreatedAt: time.Now(),
	}

	secret := randomHex(24)
	plaintext := fmt.Sprintf("psa_%s_%s", key.Prefix, secret)

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return key, "", fmt.Errorf("failed to hash API key: %w", err)
	}

	_, err = s.PG.Exec(`
		INSERT INTO api_keys (id, user_id, name, prefix, secret_hash, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, key.ID, key.UserID, key.Name, key.Prefix, string(hash), key.IsActive, key.CreatedAt)

	if err != nil {
		return key, "", fmt.Errorf("failed to create API key: %w", err)
	}

	return key, plaintext, nil
}

// ValidateAPIKey checks a presented key against the stored hash
func (s *APIKeyService) ValidateAPIKey(token string) (*APIKey, error) {
	parts := strings.SplitN(token, "_", 3)
	if len(parts) != 3 || parts[0] != "psa" {
		return nil, fmt.Errorf("not an API key")
	}
	prefix, secret := parts[1], parts[2]

	var key APIKey
	var secretHash string
	var lastUsedAt sql.NullTime

	err := s.PG.QueryRow(`
		SELECT id, user_id, name, prefix, secret_hash, is_active, created_at, last_used_at
		FROM api_keys
		WHERE prefix = $1 AND is_active = true
	`, prefix).Scan(
		&key.ID, &key.UserID, &key.Name, &key.Prefix, &secretHash,
		&key.IsActive, &key.CreatedAt, &lastUsedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("API key not found")
		}
		return nil, fmt.Errorf("failed to look up API key: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(secretHash), []byte(secret)); err != nil {
		return nil, fmt.Errorf("invalid API key")
	}

	if lastUsedAt.Valid {
		key.LastUsedAt = &lastUsedAt.Time
	}

	return &key, nil
}

// UpdateLastUsed stamps the key's last use time
func (s *APIKeyService) UpdateLastUsed(keyID string) error {
	_, err := s.PG.Exec(`
		UPDATE api_keys SET last_used_at = NOW() WHERE id = $1
	`, keyID)
	return err
}

// RevokeAPIKey deactivates a key
func (s *APIKeyService) RevokeAPIKey(keyID, userID string) error {
	result, err := s.PG.Exec(`
		UPDATE api_keys SET is_active = false WHERE id = $1 AND user_id = $2
	`, keyID, userID)

	if err != nil {
		return fmt.Errorf("failed to revoke API key: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// ListAPIKeys returns a user's keys (without hashes)
func (s *APIKeyService) ListAPIKeys(userID string) ([]APIKey, error) {
	rows, err := s.PG.Query(`
		SELECT id, user_id, name, prefix, is_active, created_at, last_used_at
		FROM api_keys
		WHERE user_id = $1 AND is_active = true
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list API keys: %w", err)
	}
	defer rows.Close()

	var keys []APIKey
	for rows.Next() {
		var key APIKey
		var lastUsedAt sql.NullTime
		if err := rows.Scan(&key.ID, &key.UserID, &key.Name, &key.Prefix, &key.IsActive, &key.CreatedAt, &lastUsedAt); err != nil {
			continue
		}
		if lastUsedAt.Valid {
			key.LastUsedAt = &lastUsedAt.Time
		}
		keys = append(keys, key)
	}

	return keys, nil
}

func randomHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
