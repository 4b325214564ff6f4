package payments

import "errors"

var (
	ErrOrderNotFound    = errors.New("payments: order not found")
	ErrUnknownPlan      = errors.New("payments: unknown plan")
	ErrInvalidSignature = errors.New("payments: invalid webhook signature")
)
