package services

import (
	"context"
	"log/slog"

	"pennypal/internal/amqp"
)

// EventPublisher sends domain events after a committed write.
type EventPublisher interface {
	Publish(ctx context.Context, ev *amqp.DomainEvent) error
}

// publish is best-effort: the write already succeeded, so a failure is only
// logged.
func publish(ctx context.Context, p EventPublisher, userID, action, entity string, entityID, amountCents int64) {
	if p == nil {
		slog.DebugContext(ctx, "Event publisher not configured, skipping event",
			"entity", entity, "action", action, "entity_id", entityID)
		return
	}
	ev := amqp.NewDomainEvent(userID, action, entity, entityID, amountCents)
	if err := p.Publish(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish domain event",
			"error", err,
			"routing_key", ev.RoutingKey(),
			"entity_id", entityID)
	}
}
