package services

import (
	"context"
	"fmt"
	"time"

	"pennypal/internal/amqp"
	"pennypal/internal/core"
	"pennypal/internal/storage"
)

// ActivityService records domain events and lists the recent ones.
type ActivityService struct {
	store storage.ActivityStore
}

func NewActivityService(store storage.ActivityStore) *ActivityService {
	return &ActivityService{store: store}
}

// Record stores one event as an activity row.
func (s *ActivityService) Record(ctx context.Context, ev *amqp.DomainEvent) (core.Activity, error) {
	at := ev.Timestamp
	if at.IsZero() {
		at = time.Now().UTC()
	}
	a, err := s.store.RecordActivity(ctx, core.Activity{
		UserID:      ev.UserID,
		Action:      ev.Action,
		Entity:      ev.Entity,
		EntityID:    ev.EntityID,
		AmountCents: ev.AmountCents,
		OccurredAt:  at,
	})
	if err != nil {
		return core.Activity{}, fmt.Errorf("record activity: %w", err)
	}
	return a, nil
}

// Recent returns the newest activity first. A non-positive or oversized
// limit becomes storage.MaxActivityLimit.
func (s *ActivityService) Recent(ctx context.Context, userID string, limit int) ([]core.Activity, error) {
	list, err := s.store.ListActivity(ctx, userID, storage.ClampActivityLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	if list == nil {
		list = []core.Activity{}
	}
	return list, nil
}
