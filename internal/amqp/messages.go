package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DomainEvent announces a committed change to an expense, income or category.
// Consumers re-read the entity from storage when they need more than the
// carried summary.
type DomainEvent struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Action      string    `json:"action"`
	Entity      string    `json:"entity"`
	EntityID    int64     `json:"entity_id"`
	AmountCents int64     `json:"amount_cents"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewDomainEvent stamps an event with a fresh id and the current time.
func NewDomainEvent(userID, action, entity string, entityID, amountCents int64) *DomainEvent {
	return &DomainEvent{
		ID:          uuid.NewString(),
		UserID:      userID,
		Action:      action,
		Entity:      entity,
		EntityID:    entityID,
		AmountCents: amountCents,
		Timestamp:   time.Now().UTC(),
	}
}

// RoutingKey is "<entity>.<action>".
func (e *DomainEvent) RoutingKey() string {
	return e.Entity + "." + e.Action
}

func (e *DomainEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// DomainEventFromJSON decodes and validates an event body.
func DomainEventFromJSON(data []byte) (*DomainEvent, error) {
	var ev DomainEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	if ev.UserID == "" || ev.Entity == "" || ev.Action == "" {
		return nil, fmt.Errorf("incomplete event %q", ev.ID)
	}
	return &ev, nil
}
