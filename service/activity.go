package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"go-postgres-procurement/config"
)

// ActivityEvent is the outbound contract to the activity-log collaborator.
// Storage and querying of events live outside this core.
type ActivityEvent struct {
	EntityType    string    `json:"entity_type"`
	EntityID      uint      `json:"entity_id"`
	ActorID       uint      `json:"actor_id"`
	Action        string    `json:"action"`
	Details       string    `json:"details"`
	Timestamp     time.Time `json:"timestamp"`
	CorrelationID string    `json:"correlation_id"`
}

// RecordActivity emits one event per state transition: a structured log line
// plus a fire-and-forget publish. It never blocks or fails the mutation that
// triggered it.
func RecordActivity(actorID uint, entityType string, entityID uint, action, details string) {
	ev := ActivityEvent{
		EntityType:    entityType,
		EntityID:      entityID,
		ActorID:       actorID,
		Action:        action,
		Details:       details,
		Timestamp:     time.Now().UTC(),
		CorrelationID: uuid.NewString(),
	}

	config.GetLogger().WithFields(logrus.Fields{
		"entity_type":    ev.EntityType,
		"entity_id":      ev.EntityID,
		"actor_id":       ev.ActorID,
		"action":         ev.Action,
		"details":        ev.Details,
		"correlation_id": ev.CorrelationID,
	}).Info("activity")

	go func() {
		if _, err := config.PublishActivity(ev); err != nil && err != config.ErrPubSubDisabled {
			config.LogError(config.GetLogger(), "service", "RecordActivity", "publish activity event", ev, err)
		}
	}()
}
