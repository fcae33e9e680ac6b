package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeRecordCreated = "record.created"
	EventTypeRecordUpdated = "record.updated"
	EventTypeRecordDeleted = "record.deleted"
)

// RecordEvent is the audit trail entry emitted for every record mutation.
// Soft deletes keep rows in place; these events are how the history of who
// touched what stays observable.
type RecordEvent struct {
	BaseEvent
	RecordID      string `json:"record_id"`
	ProjectID     int64  `json:"project_id"`
	ModuleGroupID int64  `json:"module_group_id"`
	UserID        int64  `json:"user_id"`
}

func newRecordEvent(eventType, recordID string, projectID, moduleGroupID, userID int64) *RecordEvent {
	return &RecordEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"record_id":       recordID,
				"project_id":      projectID,
				"module_group_id": moduleGroupID,
				"user_id":         userID,
			},
		},
		RecordID:      recordID,
		ProjectID:     projectID,
		ModuleGroupID: moduleGroupID,
		UserID:        userID,
	}
}

func NewRecordCreatedEvent(recordID string, projectID, moduleGroupID, userID int64) *RecordEvent {
	return newRecordEvent(EventTypeRecordCreated, recordID, projectID, moduleGroupID, userID)
}

func NewRecordUpdatedEvent(recordID string, projectID, moduleGroupID, userID int64) *RecordEvent {
	return newRecordEvent(EventTypeRecordUpdated, recordID, projectID, moduleGroupID, userID)
}

func NewRecordDeletedEvent(recordID string, projectID, moduleGroupID, userID int64) *RecordEvent {
	return newRecordEvent(EventTypeRecordDeleted, recordID, projectID, moduleGroupID, userID)
}

// NewAuditLogger subscribes a structured-log audit consumer for all record
// events on the bus.
func NewAuditLogger(bus *EventBus) {
	for _, eventType := range []string{EventTypeRecordCreated, EventTypeRecordUpdated, EventTypeRecordDeleted} {
		bus.Subscribe(eventType, logRecordEvent)
	}
}

func logRecordEvent(ctx context.Context, event Event) error {
	slog.Info("audit",
		"event_type", event.EventType(),
		"event_id", event.EventID(),
		"occurred_at", event.OccurredAt(),
		"payload", event.Payload())
	return nil
}
