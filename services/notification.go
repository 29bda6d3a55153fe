package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rizwana27/psa/db"
	"github.com/rizwana27/psa/rules"
)

// PostgresNotificationStore is the production rules.Store backed by the
// notifications table. Dismissal deletes the row; there is no archive.
type PostgresNotificationStore struct {
	PG *sql.DB
}

func NewPostgresNotificationStore(pg *sql.DB) *PostgresNotificationStore {
	return &PostgresNotificationStore{PG: pg}
}

var _ rules.Store = (*PostgresNotificationStore)(nil)

func (s *PostgresNotificationStore) Append(ctx context.Context, n *db.SmartNotification) error {
	metadataJSON, _ := json.Marshal(n.Metadata)

	_, err := s.PG.ExecContext(ctx, `
		INSERT INTO notifications (id, type, category, title, message, priority, timestamp,
							   read, actionable, related_entity_id, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, n.ID, n.Type, n.Category, n.Title, n.Message, n.Priority, n.Timestamp,
		n.Read, n.Actionable, nullIfEmptyStr(n.RelatedEntityID), metadataJSON)

	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}

	return nil
}

func (s *PostgresNotificationStore) Get(ctx context.Context, id string) (*db.SmartNotification, error) {
	var n db.SmartNotification
	var relatedEntityID sql.NullString
	var metadataJSON []byte

	err := s.PG.QueryRowContext(ctx, `
		SELECT id, type, category, title, message, priority, timestamp,
		       read, actionable, related_entity_id, COALESCE(metadata, '{}') as metadata
		FROM notifications
		WHERE id = $1
	`, id).Scan(
		&n.ID, &n.Type, &n.Category, &n.Title, &n.Message, &n.Priority,
		&n.Timestamp, &n.Read, &n.Actionable, &relatedEntityID, &metadataJSON,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, rules.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	if relatedEntityID.Valid {
		n.RelatedEntityID = relatedEntityID.String
	}
	if len(metadataJSON) > 0 {
		_ = json.Unmarshal(metadataJSON, &n.Metadata)
	}

	return &n, nil
}

func (s *PostgresNotificationStore) List(ctx context.Context, f rules.Filter) ([]db.SmartNotification, error) {
	query := `
		SELECT id, type, category, title, message, priority, timestamp,
		       read, actionable, related_entity_id, COALESCE(metadata, '{}') as metadata
		FROM notifications
		WHERE 1=1
	`
	args := []interface{}{}
	argIndex := 1

	if f.Category != "" {
		query += fmt.Sprintf(" AND category = $%d", argIndex)
		args = append(args, f.Category)
		argIndex++
	}

	if f.Type != "" {
		query += fmt.Sprintf(" AND type = $%d", argIndex)
		args = append(args, f.Type)
		argIndex++
	}

	if f.Priority != "" {
		query += fmt.Sprintf(" AND priority = $%d", argIndex)
		args = append(args, f.Priority)
		argIndex++
	}

	if f.UnreadOnly {
		query += " AND read = false"
	}

	query += " ORDER BY timestamp DESC"

	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, f.Limit)
		argIndex++
	}

	rows, err := s.PG.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []db.SmartNotification
	for rows.Next() {
		var n db.SmartNotification
		var relatedEntityID sql.NullString
		var metadataJSON []byte

		err := rows.Scan(
			&n.ID, &n.Type, &n.Category, &n.Title, &n.Message, &n.Priority,
			&n.Timestamp, &n.Read, &n.Actionable, &relatedEntityID, &metadataJSON,
		)
		if err != nil {
			continue
		}

		if relatedEntityID.Valid {
			n.RelatedEntityID = relatedEntityID.String
		}
		if len(metadataJSON) > 0 {
			_ = json.Unmarshal(metadataJSON, &n.Metadata)
		}

		notifications = append(notifications, n)
	}

	return notifications, nil
}

// MarkRead flips the read flag. Unknown IDs are a silent no-op so that
// dismiss-then-read races don't surface as errors.
func (s *PostgresNotificationStore) MarkRead(ctx context.Context, id string) error {
	_, err := s.PG.ExecContext(ctx, `
		UPDATE notifications SET read = true WHERE id = $1
	`, id)

	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	return nil
}

func (s *PostgresNotificationStore) MarkAllRead(ctx context.Context) error {
	_, err := s.PG.ExecContext(ctx, `
		UPDATE notifications SET read = true WHERE read = false
	`)

	if err != nil {
		return fmt.Errorf("failed to mark all notifications read: %w", err)
	}

	return nil
}

// Dismiss permanently removes a notification. Unknown IDs are a silent
// no-op.
func (s *PostgresNotificationStore) Dismiss(ctx context.Context, id string) error {
	_, err := s.PG.ExecContext(ctx, `
		DELETE FROM notifications WHERE id = $1
	`, id)

	if err != nil {
		return fmt.Errorf("failed to dismiss notification: %w", err)
	}

	return nil
}

func (s *PostgresNotificationStore) UnreadCount(ctx context.Context) (int, error) {
	var count int
	err := s.PG.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM notifications WHERE read = false
	`).Scan(&count)

	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return count, nil
}
