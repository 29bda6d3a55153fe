package workers

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/rizwana27/psa/db"
	"github.com/rizwana27/psa/internal/config"
	"github.com/rizwana27/psa/services"
)

const (
	deliveryVisibilityTimeout = 30 // seconds a read message stays invisible
	deliveryBatchSize         = 10
	deliveryMaxReads          = 5 // give up after this many read attempts
)

// DeliveryWorker consumes queued notifications from PGMQ. Medium and low
// priority entries are pushed from here; high-priority ones were alerted
// at emit time and only get acknowledged.
type DeliveryWorker struct {
	PG   *sql.DB
	Push *services.PushService
}

// PGMQMessage represents a message read from PGMQ
type PGMQMessage struct {
	MsgID      int64           `json:"msg_id"`
	ReadCT     int             `json:"read_ct"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
	Message    json.RawMessage `json:"message"`
}

func NewDeliveryWorker(pg *sql.DB, push *services.PushService) *DeliveryWorker {
	return &DeliveryWorker{
		PG:   pg,
		Push: push,
	}
}

func (w *DeliveryWorker) queueName() string {
	name := config.App.Notifications.QueueName
	if name == "" {
		name = "psa_notifications"
	}
	return name
}

// StartDeliveryWorker polls the delivery queue until the context is
// cancelled.
func (w *DeliveryWorker) StartDeliveryWorker(ctx context.Context) {
	log.Printf("🔔 Delivery worker started, processing queue '%s'...", w.queueName())

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Delivery worker stopped")
			return
		case <-ticker.C:
			w.processQueue(ctx)
		}
	}
}

// processQueue reads one batch of messages and delivers each.
// pgmq.read returns: msg_id, read_ct, enqueued_at, vt, message
func (w *DeliveryWorker) processQueue(ctx context.Context) {
	query := `SELECT msg_id, read_ct, enqueued_at, vt, message FROM pgmq.read($1, $2, $3)`

	rows, err := w.PG.QueryContext(ctx, query, w.queueName(), deliveryVisibilityTimeout, deliveryBatchSize)
	if err != nil {
		log.Printf("❌ Failed to read from queue %s: %v", w.queueName(), err)
		return
	}
	defer rows.Close()

	processed := 0
	for rows.Next() {
		var (
			msgID      int64
			readCT     int
			enqueuedAt time.Time
			vt         time.Time
			messageRaw []byte
		)

		if err := rows.Scan(&msgID, &readCT, &enqueuedAt, &vt, &messageRaw); err != nil {
			log.Printf("❌ Failed to scan message from queue %s: %v", w.queueName(), err)
			continue
		}

		msg := &PGMQMessage{
			MsgID:      msgID,
			ReadCT:     readCT,
			EnqueuedAt: enqueuedAt,
			Message:    json.RawMessage(messageRaw),
		}

		w.deliverMessage(ctx, msg)
		processed++
	}

	if processed > 0 {
		log.Printf("⚡ Processed %d delivery messages", processed)
	}
}

// deliverMessage dispatches one queued notification. Malformed messages
// are deleted; transient dispatch failures are retried by leaving the
// message in place until the visibility timeout expires, up to
// deliveryMaxReads attempts.
func (w *DeliveryWorker) deliverMessage(ctx context.Context, msg *PGMQMessage) {
	var req services.DeliveryRequest
	if err := json.Unmarshal(msg.Message, &req); err != nil {
		log.Printf("❌ Failed to unmarshal delivery request: %v", err)
		w.deleteMessage(msg.MsgID)
		return
	}

	notification, err := notificationFromPayload(req)
	if err != nil {
		log.Printf("❌ Invalid delivery request %s: %v", req.NotificationID, err)
		w.deleteMessage(msg.MsgID)
		return
	}

	// High-priority notifications were alerted synchronously at emit
	// time; acknowledging them here just closes out the queue entry.
	if notification.Priority == db.PriorityHigh {
		w.deleteMessage(msg.MsgID)
		return
	}

	if err := w.Push.Dispatch(ctx, notification); err != nil {
		if msg.ReadCT >= deliveryMaxReads {
			log.Printf("❌ Giving up on notification %s after %d attempts: %v", req.NotificationID, msg.ReadCT, err)
			w.deleteMessage(msg.MsgID)
			return
		}
		log.Printf("⚠️  Delivery of notification %s failed (attempt %d): %v", req.NotificationID, msg.ReadCT, err)
		return
	}

	w.deleteMessage(msg.MsgID)
}

// deleteMessage removes a processed message from PGMQ
func (w *DeliveryWorker) deleteMessage(msgID int64) {
	query := `SELECT pgmq.delete($1, $2::bigint)`
	if _, err := w.PG.Exec(query, w.queueName(), msgID); err != nil {
		log.Printf("❌ Failed to delete message %d from queue %s: %v", msgID, w.queueName(), err)
	}
}

// notificationFromPayload rebuilds the notification from the queued
// payload map.
func notificationFromPayload(req services.DeliveryRequest) (*db.SmartNotification, error) {
	if req.NotificationID == "" {
		return nil, fmt.Errorf("missing notification_id")
	}

	n := &db.SmartNotification{ID: req.NotificationID}

	strField := func(key string) string {
		v, _ := req.Payload[key].(string)
		return v
	}

	n.Type = strField("type")
	n.Category = strField("category")
	n.Title = strField("title")
	n.Message = strField("message")
	n.Priority = strField("priority")
	n.RelatedEntityID = strField("related_entity_id")

	if n.Title == "" {
		return nil, fmt.Errorf("missing title")
	}

	if ts := strField("timestamp"); ts != "" {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			n.Timestamp = parsed
		}
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}

	if meta, ok := req.Payload["metadata"].(map[string]interface{}); ok {
		n.Metadata = meta
	}

	return n, nil
}
