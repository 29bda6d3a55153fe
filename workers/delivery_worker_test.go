package workers

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rizwana27/psa/db"
	"github.com/rizwana27/psa/services"
)

func queuedMessage(t *testing.T, msgID int64, priority string) *PGMQMessage {
	t.Helper()
	raw, err := json.Marshal(services.DeliveryRequest{
		NotificationID: "n-1",
		Payload: map[string]any{
			"id":       "n-1",
			"type":     db.NotificationTypeAlert,
			"category": db.NotificationCategoryFinancial,
			"title":    "Invoice overdue",
			"message":  "Invoice INV-7 is 12 days overdue",
			"priority": priority,
		},
	})
	require.NoError(t, err)
	return &PGMQMessage{MsgID: msgID, ReadCT: 1, Message: raw}
}

func TestDeliverMessage_HighPriorityOnlyAcknowledged(t *testing.T) {
	pg, mockDB, err := sqlmock.New()
	require.NoError(t, err)
	defer pg.Close()

	// Push left nil: a dispatch attempt for an already-alerted
	// notification would panic here
	w := NewDeliveryWorker(pg, nil)

	mockDB.ExpectExec("SELECT pgmq.delete").
		WithArgs("psa_notifications", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w.deliverMessage(context.Background(), queuedMessage(t, 7, db.PriorityHigh))

	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestDeliverMessage_MediumPriorityDispatchesThenDeletes(t *testing.T) {
	pg, mockDB, err := sqlmock.New()
	require.NoError(t, err)
	defer pg.Close()

	// A push service with neither FCM nor relay configured logs and
	// reports success, so the message completes
	w := NewDeliveryWorker(pg, &services.PushService{PG: pg})

	mockDB.ExpectExec("SELECT pgmq.delete").
		WithArgs("psa_notifications", int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w.deliverMessage(context.Background(), queuedMessage(t, 8, db.PriorityMedium))

	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestDeliverMessage_MalformedIsDeleted(t *testing.T) {
	pg, mockDB, err := sqlmock.New()
	require.NoError(t, err)
	defer pg.Close()

	w := NewDeliveryWorker(pg, nil)

	mockDB.ExpectExec("SELECT pgmq.delete").
		WithArgs("psa_notifications", int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w.deliverMessage(context.Background(), &PGMQMessage{MsgID: 9, Message: []byte("{not json")})

	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestNotificationFromPayload(t *testing.T) {
	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	n, err := notificationFromPayload(services.DeliveryRequest{
		NotificationID: "n-1",
		Payload: map[string]any{
			"title":     "Budget alert",
			"priority":  db.PriorityHigh,
			"category":  db.NotificationCategoryProject,
			"timestamp": ts.Format(time.RFC3339),
			"metadata":  map[string]interface{}{"budget_used": 95.0},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "n-1", n.ID)
	assert.Equal(t, db.PriorityHigh, n.Priority)
	assert.True(t, ts.Equal(n.Timestamp))
	assert.Equal(t, 95.0, n.Metadata["budget_used"])
}

func TestNotificationFromPayload_Invalid(t *testing.T) {
	_, err := notificationFromPayload(services.DeliveryRequest{
		Payload: map[string]any{"title": "No id"},
	})
	assert.Error(t, err)

	_, err = notificationFromPayload(services.DeliveryRequest{
		NotificationID: "n-2",
		Payload:        map[string]any{"priority": db.PriorityLow},
	})
	assert.Error(t, err)
}
