package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/rizwana27/psa/db"
)

// PushService delivers high-priority notifications to user devices.
// It prefers the cloud relay when configured and falls back to direct
// Firebase messaging. It implements rules.Alerter.
type PushService struct {
	PG     *sql.DB
	client *messaging.Client
	// Cloud relay configuration
	relayURL   string
	relayToken string
	instanceID string
}

func NewPushService(pg *sql.DB) (*PushService, error) {
	// Read cloud relay configuration
	relayURL := os.Getenv("psa_RELAY_URL")
	relayToken := os.Getenv("psa_RELAY_TOKEN")
	instanceID := os.Getenv("psa_INSTANCE_ID")

	service := &PushService{
		PG:         pg,
		relayURL:   relayURL,
		relayToken: relayToken,
		instanceID: instanceID,
	}

	if relayURL != "" && relayToken != "" && instanceID != "" {
		log.Printf("Push Service: Cloud relay configured (URL: %s, Instance: %s)", relayURL, instanceID)
	} else {
		log.Println("Push Service: Cloud relay not configured, will use direct FCM if available")
	}

	// Initialize Firebase Admin SDK (optional - used as fallback)
	// Requires GOOGLE_APPLICATION_CREDENTIALS or the key file below
	opt := option.WithCredentialsFile("firebase-service-account-key.json")
	app, err := firebase.NewApp(context.Background(), nil, opt)
	if err != nil {
		log.Printf("Firebase app not initialized: %v (will use cloud relay if configured)", err)
		return service, nil
	}

	client, err := app.Messaging(context.Background())
	if err != nil {
		log.Printf("Firebase messaging client not initialized: %v (will use cloud relay if configured)", err)
		return service, nil
	}

	service.client = client
	log.Println("Push Service: Direct Firebase messaging initialized")

	return service, nil
}

// IsCloudRelayEnabled returns true if cloud relay is configured
func (s *PushService) IsCloudRelayEnabled() bool {
	return s.relayURL != "" && s.relayToken != "" && s.instanceID != ""
}

// Dispatch pushes a notification to managers and admins. The notifier
// calls this directly for high-priority notifications; the delivery
// worker calls it for everything that went through the queue.
func (s *PushService) Dispatch(ctx context.Context, n *db.SmartNotification) error {
	data := map[string]string{
		"notification_id":   n.ID,
		"category":          n.Category,
		"priority":          n.Priority,
		"related_entity_id": n.RelatedEntityID,
		"type":              n.Type,
	}

	if s.IsCloudRelayEnabled() {
		return s.dispatchViaCloudRelay(ctx, n, data)
	}

	if s.client == nil {
		log.Println("FCM client not initialized and cloud relay not configured, skipping push")
		return nil
	}

	// Managers and admins get operational alerts on their devices
	rows, err := s.PG.QueryContext(ctx, `
		SELECT id, name, fcm_token
		FROM users
		WHERE role IN ('admin', 'manager')
		AND is_active = true
		AND fcm_token IS NOT NULL AND fcm_token != ''
	`)
	if err != nil {
		return fmt.Errorf("error fetching push recipients: %w", err)
	}
	defer rows.Close()

	var tokens []string
	var userNames []string
	for rows.Next() {
		var userID, userName, fcmToken string
		if err := rows.Scan(&userID, &userName, &fcmToken); err != nil {
			continue
		}
		tokens = append(tokens, fcmToken)
		userNames = append(userNames, userName)
	}

	if len(tokens) == 0 {
		log.Println("No push recipients with FCM tokens found")
		return nil
	}

	message := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Message,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Icon:         "ic_notification",
				Color:        getColorByPriority(n.Priority),
				Sound:        "default",
				ChannelID:    "high_importance_channel",
				Priority:     messaging.PriorityHigh,
				DefaultSound: true,
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: n.Title,
						Body:  n.Message,
					},
					Badge: intPtr(1),
					Sound: "default",
				},
			},
		},
	}

	response, err := s.client.SendEachForMulticast(ctx, message)
	if err != nil {
		log.Printf("Error sending multicast FCM message: %v", err)
		return err
	}

	log.Printf("Sent push %s to %d users (Success: %d, Failed: %d)",
		n.ID, len(userNames), response.SuccessCount, response.FailureCount)

	for i, resp := range response.Responses {
		if !resp.Success {
			log.Printf("Failed to send to %s: %v", userNames[i], resp.Error)
		}
	}

	return nil
}

// UpdateUserFCMToken updates a user's device token
func (s *PushService) UpdateUserFCMToken(userID, fcmToken string) error {
	_, err := s.PG.Exec(
		"UPDATE users SET fcm_token = $1, updated_at = NOW() WHERE id = $2",
		fcmToken, userID,
	)
	if err != nil {
		return fmt.Errorf("error updating FCM token: %w", err)
	}

	log.Printf("Updated FCM token for user %s", userID)
	return nil
}

// ============================================================================
// CLOUD RELAY METHODS
// ============================================================================

// CloudRelayNotification represents the notification payload for cloud relay
type CloudRelayNotification struct {
	InstanceID   string                 `json:"instance_id"`
	UserID       string                 `json:"user_id,omitempty"`
	Broadcast    bool                   `json:"broadcast,omitempty"`
	Notification CloudRelayNotifPayload `json:"notification"`
}

// CloudRelayNotifPayload represents the notification content
type CloudRelayNotifPayload struct {
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Priority string            `json:"priority"`
	Sound    string            `json:"sound,omitempty"`
	Data     map[string]string `json:"data,omitempty"`
}

// Default notification sound (used when user hasn't configured custom sound)
const DefaultNotificationSound = "alert.caf"

// CloudRelayResponse represents the response from cloud relay
type CloudRelayResponse struct {
	NotificationID string `json:"notification_id"`
	Status         string `json:"status"`
	DevicesCount   int    `json:"devices_count"`
	Error          string `json:"error,omitempty"`
}

func (s *PushService) dispatchViaCloudRelay(ctx context.Context, n *db.SmartNotification, data map[string]string) error {
	payload := CloudRelayNotification{
		InstanceID: s.instanceID,
		Broadcast:  true,
		Notification: CloudRelayNotifPayload{
			Title:    fmt.Sprintf("[%s] %s", strings.ToUpper(n.Priority), n.Title),
			Body:     n.Message,
			Priority: "high",
			Sound:    DefaultNotificationSound,
			Data:     data,
		},
	}

	return s.sendToCloudRelay(ctx, payload)
}

// sendToCloudRelay sends notification payload to cloud relay
func (s *PushService) sendToCloudRelay(ctx context.Context, payload CloudRelayNotification) error {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal cloud relay payload: %w", err)
	}

	url := s.relayURL + "/api/gateway/notifications/send"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return fmt.Errorf("failed to create cloud relay request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.relayToken)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send to cloud relay: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cloud relay error (status %d): %s", resp.StatusCode, string(body))
	}

	var relayResp CloudRelayResponse
	if err := json.Unmarshal(body, &relayResp); err != nil {
		log.Printf("Warning: Could not parse cloud relay response: %v", err)
	} else {
		log.Printf("Cloud relay notification sent: ID=%s, Status=%s, Devices=%d",
			relayResp.NotificationID, relayResp.Status, relayResp.DevicesCount)
	}

	return nil
}

func getColorByPriority(priority string) string {
	switch priority {
	case db.PriorityHigh:
		return "#FF0000" // Red
	case db.PriorityMedium:
		return "#FFD700" // Yellow
	case db.PriorityLow:
		return "#32CD32" // Green
	default:
		return "#2196F3" // Blue
	}
}

func intPtr(i int) *int {
	return &i
}
