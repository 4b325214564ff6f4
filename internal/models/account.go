package models

import "time"

// SubscriptionStatus is a display label recomputed when credits are added.
// Entitlement decisions are made on CreditsRemaining alone.
type SubscriptionStatus string

const (
	SubscriptionFree    SubscriptionStatus = "free"
	SubscriptionPremium SubscriptionStatus = "premium"
)

type Account struct {
	ID                 string             `json:"id"`
	Email              string             `json:"email"`
	CreditsRemaining   int                `json:"credits_remaining"`
	TotalCreations     int                `json:"total_creations"`
	SubscriptionStatus SubscriptionStatus `json:"subscription_status"`
	LastCreationAt     *time.Time         `json:"last_creation_at,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

type ContentType string

const (
	ContentText  ContentType = "text"
	ContentImage ContentType = "image"
	ContentVideo ContentType = "video"
)

// Creation is one logged generation attempt, successful or fallback.
// Immutable once written.
type Creation struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	Type        ContentType    `json:"type"`
	Prompt      string         `json:"prompt"`
	ResultURL   string         `json:"result_url,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CostCredits int            `json:"cost_credits"`
	CreatedAt   time.Time      `json:"created_at"`
}
