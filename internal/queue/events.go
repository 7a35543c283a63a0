package queue

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"omegavideos/internal/model"
)

// Event types for the notification stream
const (
	EventNotificationsRequested = "notifications_requested"
)

// Stream names
const (
	StreamNotifications = "stream:notifications"
)

// Consumer group name for notification workers
const (
	ConsumerGroupNotifications = "notification_workers"
)

// NotificationEvent carries the intents produced by one social action.
type NotificationEvent struct {
	Type      string                     `json:"type"`
	Timestamp int64                      `json:"timestamp"`
	Intents   []model.NotificationIntent `json:"intents"`
}

// NewNotificationEvent wraps intents for publishing.
func NewNotificationEvent(intents []model.NotificationIntent) NotificationEvent {
	return NotificationEvent{
		Type:      EventNotificationsRequested,
		Timestamp: time.Now().Unix(),
		Intents:   intents,
	}
}

// ToMap converts the event to XADD field-value pairs. The payload is JSON
// in the "data" field.
func (e NotificationEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseNotificationEvent parses an event from stream message values.
func ParseNotificationEvent(values map[string]interface{}) (NotificationEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return NotificationEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event NotificationEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return NotificationEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
