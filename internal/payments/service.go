// Package payments converts confirmed gateway payments into durable credit
// grants, exactly once per order. Reconciliation is race-safe: the
// pending-to-completed flip is a single conditional update and only the
// caller that wins the flip grants credits.
package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/theaivault/backend/internal/models"
	"github.com/theaivault/backend/internal/plans"
)

// CreditLedger is the slice of the ledger the reconciler grants against.
type CreditLedger interface {
	Credit(ctx context.Context, userID string, amount int) (int, error)
	GetBalance(ctx context.Context, userID string) (*models.Account, error)
}

type Service struct {
	repo          Repository
	ledger        CreditLedger
	gateway       *CashfreeClient
	webhookSecret string
	appBaseURL    string
	log           *slog.Logger
}

func NewService(repo Repository, ledger CreditLedger, gateway *CashfreeClient, webhookSecret, appBaseURL string, log *slog.Logger) *Service {
	return &Service{
		repo:          repo,
		ledger:        ledger,
		gateway:       gateway,
		webhookSecret: webhookSecret,
		appBaseURL:    strings.TrimRight(appBaseURL, "/"),
		log:           log,
	}
}

// OrderSession is what the client needs to launch a checkout. Demo marks a
// degraded session that never reaches the gateway.
type OrderSession struct {
	OrderID          string `json:"orderId"`
	PaymentSessionID string `json:"paymentSessionId,omitempty"`
	PaymentURL       string `json:"paymentUrl,omitempty"`
	Amount           int    `json:"amount"`
	Currency         string `json:"currency"`
	Credits          int    `json:"credits"`
	Demo             bool   `json:"demo"`
}

// InitiateOrder opens a gateway session for a plan and persists a pending
// order record. Gateway trouble (missing credentials or a remote error)
// degrades to a demo session instead of failing the request.
func (s *Service) InitiateOrder(ctx context.Context, userID, email, planID string) (*OrderSession, error) {
	plan := plans.Get(planID)
	if plan == nil {
		return nil, ErrUnknownPlan
	}

	orderID := newOrderID()
	payment := &models.Payment{
		UserID:   userID,
		OrderID:  orderID,
		PlanID:   plan.ID,
		Credits:  plan.Credits,
		Amount:   plan.Price,
		Currency: "INR",
		Status:   models.PaymentPending,
	}
	// Best effort: a missing order row only breaks reconciliation for this
	// one order, not checkout itself.
	if err := s.repo.Insert(ctx, payment); err != nil {
		s.log.Error("failed to store pending payment", "order", orderID, "err", err)
	}

	session := &OrderSession{
		OrderID:  orderID,
		Amount:   plan.Price,
		Currency: "INR",
		Credits:  plan.Credits,
	}

	if !s.gateway.Configured() {
		s.log.Warn("payment gateway not configured, returning demo session", "order", orderID)
		session.Demo = true
		session.PaymentURL = fmt.Sprintf("%s/payment-demo?orderId=%s&amount=%d&plan=%s", s.appBaseURL, orderID, plan.Price, plan.ID)
		return session, nil
	}

	returnURL := fmt.Sprintf("%s/payment-success?orderId=%s", s.appBaseURL, orderID)
	notifyURL := s.appBaseURL + "/api/v1/payments/webhook"
	note := fmt.Sprintf("TheAIVault %s - %d Credits", plan.DisplayName, plan.Credits)

	sessionID, err := s.gateway.CreateOrder(ctx, orderID, plan.Price, userID, email, returnURL, notifyURL, note)
	if err != nil {
		s.log.Error("gateway order creation failed, returning demo session", "order", orderID, "err", err)
		session.Demo = true
		session.PaymentURL = fmt.Sprintf("%s/payment-demo?orderId=%s&amount=%d&plan=%s", s.appBaseURL, orderID, plan.Price, plan.ID)
		return session, nil
	}

	session.PaymentSessionID = sessionID
	return session, nil
}

// ReconcileResult reports what one reconcile call did. Credited is false on
// the idempotent no-op path even though the order is completed.
type ReconcileResult struct {
	Credited     bool `json:"credited"`
	CreditsAdded int  `json:"creditsAdded"`
	NewBalance   int  `json:"newBalance"`
}

// Reconcile grants an order's credits exactly once. Both the gateway webhook
// and the client redirect call it for the same order; whichever wins the
// conditional status flip performs the grant. A non-empty userID scopes the
// lookup to that caller's own orders; the webhook passes an empty one.
func (s *Service) Reconcile(ctx context.Context, orderID, userID string) (*ReconcileResult, error) {
	payment, err := s.repo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if userID != "" && payment.UserID != userID {
		return nil, ErrOrderNotFound
	}

	won, err := s.repo.CompleteIfPending(ctx, orderID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("complete order: %w", err)
	}
	if !won {
		// Another trigger got there first. Re-read rather than trusting
		// the pre-flip snapshot: the winner may have marked it failed.
		current, err := s.repo.GetByOrderID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		result := &ReconcileResult{}
		if current.Status == models.PaymentCompleted {
			result.CreditsAdded = current.Credits
		}
		if account, err := s.ledger.GetBalance(ctx, current.UserID); err == nil {
			result.NewBalance = account.CreditsRemaining
		}
		return result, nil
	}

	newBalance, err := s.ledger.Credit(ctx, payment.UserID, payment.Credits)
	if err != nil {
		// Reopen the order so a retry can perform the grant. Leaving it
		// completed would strand the payment with zero credits.
		if _, revertErr := s.repo.RevertToPending(ctx, orderID); revertErr != nil {
			s.log.Error("failed to reopen order after grant failure", "order", orderID, "err", revertErr)
		}
		return nil, fmt.Errorf("grant credits: %w", err)
	}
	s.log.Info("payment reconciled",
		"order", orderID,
		"user", payment.UserID,
		"credits", payment.Credits,
		"balance", newBalance)
	return &ReconcileResult{
		Credited:     true,
		CreditsAdded: payment.Credits,
		NewBalance:   newBalance,
	}, nil
}

// MarkFailed flips a pending order to failed without touching the ledger.
func (s *Service) MarkFailed(ctx context.Context, orderID string) error {
	if _, err := s.repo.GetByOrderID(ctx, orderID); err != nil {
		return err
	}
	_, err := s.repo.FailIfPending(ctx, orderID)
	return err
}

// VerifyWebhookSignature checks the keyed hash over timestamp+body. With no
// secret configured, verification is skipped entirely.
func (s *Service) VerifyWebhookSignature(timestamp, signature string, rawBody []byte) error {
	if s.webhookSecret == "" {
		return nil
	}
	if timestamp == "" || signature == "" {
		return ErrInvalidSignature
	}
	mac := hmac.New(sha256.New, []byte(s.webhookSecret))
	mac.Write([]byte(timestamp))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}
	return nil
}

func newOrderID() string {
	return fmt.Sprintf("theaivault_%d_%s", time.Now().UnixMilli(), strings.SplitN(uuid.New().String(), "-", 2)[0])
}
