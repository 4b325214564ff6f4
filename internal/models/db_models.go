package models

import (
	"time"

	"github.com/uptrace/bun"
)

type AccountDB struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID                 string     `bun:"id,pk" json:"id"`
	Email              string     `bun:"email,notnull" json:"email"`
	CreditsRemaining   int        `bun:"credits_remaining,notnull,default:1" json:"credits_remaining"`
	TotalCreations     int        `bun:"total_creations,notnull,default:0" json:"total_creations"`
	SubscriptionStatus string     `bun:"subscription_status,notnull,default:'free'" json:"subscription_status"`
	LastCreationAt     *time.Time `bun:"last_creation_at" json:"last_creation_at,omitempty"`
	CreatedAt          time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt          time.Time  `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

func (a *AccountDB) ToAccount() *Account {
	return &Account{
		ID:                 a.ID,
		Email:              a.Email,
		CreditsRemaining:   a.CreditsRemaining,
		TotalCreations:     a.TotalCreations,
		SubscriptionStatus: SubscriptionStatus(a.SubscriptionStatus),
		LastCreationAt:     a.LastCreationAt,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

func AccountFromDomain(a *Account) *AccountDB {
	return &AccountDB{
		ID:                 a.ID,
		Email:              a.Email,
		CreditsRemaining:   a.CreditsRemaining,
		TotalCreations:     a.TotalCreations,
		SubscriptionStatus: string(a.SubscriptionStatus),
		LastCreationAt:     a.LastCreationAt,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

type CreationDB struct {
	bun.BaseModel `bun:"table:creations,alias:c"`

	ID          string         `bun:"id,pk" json:"id"`
	UserID      string         `bun:"user_id,notnull" json:"user_id"`
	Type        string         `bun:"type,notnull" json:"type"`
	Prompt      string         `bun:"prompt,notnull" json:"prompt"`
	ResultURL   string         `bun:"result_url" json:"result_url,omitempty"`
	Metadata    map[string]any `bun:"metadata,type:jsonb" json:"metadata,omitempty"`
	CostCredits int            `bun:"cost_credits,notnull,default:1" json:"cost_credits"`
	CreatedAt   time.Time      `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

func (c *CreationDB) ToCreation() *Creation {
	return &Creation{
		ID:          c.ID,
		UserID:      c.UserID,
		Type:        ContentType(c.Type),
		Prompt:      c.Prompt,
		ResultURL:   c.ResultURL,
		Metadata:    c.Metadata,
		CostCredits: c.CostCredits,
		CreatedAt:   c.CreatedAt,
	}
}

type PaymentDB struct {
	bun.BaseModel `bun:"table:payments,alias:p"`

	ID          int64      `bun:"id,pk,autoincrement" json:"id"`
	UserID      string     `bun:"user_id,notnull" json:"user_id"`
	OrderID     string     `bun:"order_id,notnull,unique" json:"order_id"`
	PlanID      string     `bun:"plan_id,notnull" json:"plan_id"`
	Credits     int        `bun:"credits,notnull" json:"credits"`
	Amount      int        `bun:"amount,notnull" json:"amount"`
	Currency    string     `bun:"currency,notnull,default:'INR'" json:"currency"`
	Status      string     `bun:"status,notnull,default:'pending'" json:"status"`
	CompletedAt *time.Time `bun:"completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

func (p *PaymentDB) ToPayment() *Payment {
	return &Payment{
		ID:          p.ID,
		UserID:      p.UserID,
		OrderID:     p.OrderID,
		PlanID:      p.PlanID,
		Credits:     p.Credits,
		Amount:      p.Amount,
		Currency:    p.Currency,
		Status:      PaymentStatus(p.Status),
		CompletedAt: p.CompletedAt,
		CreatedAt:   p.CreatedAt,
	}
}
