package core

import "time"

// Activity actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Activity entities.
const (
	EntityExpense  = "expense"
	EntityIncome   = "income"
	EntityCategory = "category"
)

// Activity is one recorded change, written by the worker from domain events.
type Activity struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	Action      string    `json:"action"`
	Entity      string    `json:"entity"`
	EntityID    int64     `json:"entity_id"`
	AmountCents int64     `json:"amount_cents"`
	OccurredAt  time.Time `json:"occurred_at"`
}
