package models

import "time"

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// Payment is one attempted purchase of a credit pack, keyed by the gateway
// order identifier.
type Payment struct {
	ID          int64         `json:"id"`
	UserID      string        `json:"user_id"`
	OrderID     string        `json:"order_id"`
	PlanID      string        `json:"plan_id"`
	Credits     int           `json:"credits"`
	Amount      int           `json:"amount"`
	Currency    string        `json:"currency"`
	Status      PaymentStatus `json:"status"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}
