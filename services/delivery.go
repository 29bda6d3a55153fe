package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/rizwana27/psa/db"
	"github.com/rizwana27/psa/internal/config"
)

// DeliveryService fans notifications out to external channels (email,
// webhooks) via PGMQ. The delivery worker consumes the queue.
type DeliveryService struct {
	DB *sql.DB
}

func NewDeliveryService(database *sql.DB) *DeliveryService {
	return &DeliveryService{
		DB: database,
	}
}

// DeliveryRequest is the message placed on the queue for the delivery
// worker.
type DeliveryRequest struct {
	NotificationID string         `json:"notification_id"`
	Payload        map[string]any `json:"payload"`
}

func (s *DeliveryService) queueName() string {
	name := config.App.Notifications.QueueName
	if name == "" {
		name = "psa_notifications"
	}
	return name
}

// QueueForDelivery publishes a notification to PGMQ for external delivery
func (s *DeliveryService) QueueForDelivery(n *db.SmartNotification) error {
	payload := map[string]any{
		"id":                n.ID,
		"type":              n.Type,
		"category":          n.Category,
		"title":             n.Title,
		"message":           n.Message,
		"priority":          n.Priority,
		"timestamp":         n.Timestamp,
		"related_entity_id": n.RelatedEntityID,
	}
	if n.Metadata != nil {
		payload["metadata"] = n.Metadata
	}

	messagePayload := DeliveryRequest{
		NotificationID: n.ID,
		Payload:        payload,
	}

	messageJSON, err := json.Marshal(messagePayload)
	if err != nil {
		return fmt.Errorf("failed to marshal delivery request: %w", err)
	}

	ctx := context.Background()
	query := `SELECT pgmq.send($1, $2::jsonb);`

	var msgID int64
	err = s.DB.QueryRowContext(ctx, query, s.queueName(), messageJSON).Scan(&msgID)
	if err != nil {
		return fmt.Errorf("failed to send message to PGMQ: %w", err)
	}

	log.Printf("Queued notification %s for delivery (PGMQ msg_id: %d)", n.ID, msgID)
	return nil
}

// QueueForDeliveryAsync is a non-blocking version that logs errors
// instead of returning them. Use this when delivery failures must not
// block the evaluation loop.
func (s *DeliveryService) QueueForDeliveryAsync(n *db.SmartNotification) {
	go func() {
		if err := s.QueueForDelivery(n); err != nil {
			log.Printf("Failed to queue notification %s for delivery: %v", n.ID, err)
		}
	}()
}

// CreateQueueIfNotExists ensures the PGMQ queue exists.
// Call this during service initialization
func (s *DeliveryService) CreateQueueIfNotExists() error {
	ctx := context.Background()
	query := `SELECT pgmq.create($1);`

	_, err := s.DB.ExecContext(ctx, query, s.queueName())
	if err != nil {
		// PGMQ create is idempotent, so we can ignore errors
		log.Printf("PGMQ queue '%s' setup (might already exist): %v", s.queueName(), err)
		return nil
	}

	log.Printf("  PGMQ queue '%s' ready", s.queueName())
	return nil
}
