package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/theaivault/backend/internal/models"
)

type memPaymentRepo struct {
	mu     sync.Mutex
	orders map[string]*models.Payment
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{orders: make(map[string]*models.Payment)}
}

func (r *memPaymentRepo) InitializeDatabase(ctx context.Context) error { return nil }

func (r *memPaymentRepo) Insert(ctx context.Context, payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *payment
	r.orders[payment.OrderID] = &copied
	return nil
}

func (r *memPaymentRepo) GetByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment, ok := r.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	copied := *payment
	return &copied, nil
}

func (r *memPaymentRepo) CompleteIfPending(ctx context.Context, orderID string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment, ok := r.orders[orderID]
	if !ok || payment.Status != models.PaymentPending {
		return false, nil
	}
	payment.Status = models.PaymentCompleted
	payment.CompletedAt = &at
	return true, nil
}

func (r *memPaymentRepo) RevertToPending(ctx context.Context, orderID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment, ok := r.orders[orderID]
	if !ok || payment.Status != models.PaymentCompleted {
		return false, nil
	}
	payment.Status = models.PaymentPending
	payment.CompletedAt = nil
	return true, nil
}

func (r *memPaymentRepo) FailIfPending(ctx context.Context, orderID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment, ok := r.orders[orderID]
	if !ok || payment.Status != models.PaymentPending {
		return false, nil
	}
	payment.Status = models.PaymentFailed
	return true, nil
}

type stubCreditLedger struct {
	mu       sync.Mutex
	balance  int
	grants   int
	failures int
}

func (l *stubCreditLedger) Credit(ctx context.Context, userID string, amount int) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failures > 0 {
		l.failures--
		return 0, errors.New("store unavailable")
	}
	l.balance += amount
	l.grants++
	return l.balance, nil
}

func (l *stubCreditLedger) GetBalance(ctx context.Context, userID string) (*models.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return &models.Account{ID: userID, CreditsRemaining: l.balance}, nil
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func testService(repo Repository, led CreditLedger, secret string) *Service {
	log := slog.New(slog.NewTextHandler(discard{}, nil))
	gateway := NewCashfreeClient("", "", "https://sandbox.cashfree.com", log)
	return NewService(repo, led, gateway, secret, "http://localhost:3000", log)
}

func TestInitiateOrderDegradesToDemoSession(t *testing.T) {
	repo := newMemPaymentRepo()
	svc := testService(repo, &stubCreditLedger{}, "")

	session, err := svc.InitiateOrder(context.Background(), "u1", "u1@example.com", "pro")
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if !session.Demo {
		t.Error("unconfigured gateway should produce a demo session")
	}
	if !strings.HasPrefix(session.OrderID, "theaivault_") {
		t.Errorf("order id %q missing expected prefix", session.OrderID)
	}
	if session.Credits != 12 || session.Amount != 199 {
		t.Errorf("got credits=%d amount=%d, want the pro plan's 12 and 199", session.Credits, session.Amount)
	}

	stored, err := repo.GetByOrderID(context.Background(), session.OrderID)
	if err != nil {
		t.Fatalf("pending order row not stored: %v", err)
	}
	if stored.Status != models.PaymentPending {
		t.Errorf("stored status %q, want pending", stored.Status)
	}
}

func TestInitiateOrderRejectsUnknownPlan(t *testing.T) {
	svc := testService(newMemPaymentRepo(), &stubCreditLedger{}, "")

	_, err := svc.InitiateOrder(context.Background(), "u1", "u1@example.com", "platinum")
	if !errors.Is(err, ErrUnknownPlan) {
		t.Errorf("got %v, want ErrUnknownPlan", err)
	}
}

func TestReconcileGrantsExactlyOnce(t *testing.T) {
	repo := newMemPaymentRepo()
	led := &stubCreditLedger{}
	svc := testService(repo, led, "")

	session, err := svc.InitiateOrder(context.Background(), "u1", "u1@example.com", "basic")
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}

	first, err := svc.Reconcile(context.Background(), session.OrderID, "u1")
	if err != nil {
		t.Fatalf("first reconcile: %v", err)
	}
	if !first.Credited || first.CreditsAdded != 5 || first.NewBalance != 5 {
		t.Errorf("first reconcile got %+v, want credited 5 credits", first)
	}

	second, err := svc.Reconcile(context.Background(), session.OrderID, "u1")
	if err != nil {
		t.Fatalf("second reconcile: %v", err)
	}
	if second.Credited {
		t.Error("second reconcile must be a no-op")
	}
	if second.CreditsAdded != 5 {
		t.Errorf("no-op should still report the granted amount, got %d", second.CreditsAdded)
	}
	if led.grants != 1 {
		t.Errorf("ledger credited %d times, want exactly 1", led.grants)
	}
}

func TestReconcileRaceBetweenWebhookAndRedirect(t *testing.T) {
	repo := newMemPaymentRepo()
	led := &stubCreditLedger{}
	svc := testService(repo, led, "")

	session, err := svc.InitiateOrder(context.Background(), "u1", "u1@example.com", "premium")
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}

	const callers = 10
	var wg sync.WaitGroup
	credited := make(chan bool, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := svc.Reconcile(context.Background(), session.OrderID, "")
			if err != nil {
				t.Errorf("reconcile: %v", err)
				return
			}
			credited <- result.Credited
		}()
	}
	wg.Wait()
	close(credited)

	wins := 0
	for c := range credited {
		if c {
			wins++
		}
	}
	if wins != 1 {
		t.Errorf("%d callers performed the grant, want exactly 1", wins)
	}
	if led.grants != 1 || led.balance != 30 {
		t.Errorf("ledger grants=%d balance=%d, want 1 grant of 30", led.grants, led.balance)
	}
}

func TestReconcileUnknownOrder(t *testing.T) {
	svc := testService(newMemPaymentRepo(), &stubCreditLedger{}, "")

	_, err := svc.Reconcile(context.Background(), "theaivault_0_missing", "")
	if !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("got %v, want ErrOrderNotFound", err)
	}
}

func TestReconcileScopedToOrderOwner(t *testing.T) {
	repo := newMemPaymentRepo()
	led := &stubCreditLedger{}
	svc := testService(repo, led, "")

	session, err := svc.InitiateOrder(context.Background(), "u1", "u1@example.com", "basic")
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}

	if _, err := svc.Reconcile(context.Background(), session.OrderID, "u2"); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("got %v, want ErrOrderNotFound for another user's order", err)
	}
	if led.grants != 0 {
		t.Error("no grant may happen for a mismatched caller")
	}

	// The owner (and the unscoped webhook path) still reconcile normally.
	result, err := svc.Reconcile(context.Background(), session.OrderID, "u1")
	if err != nil {
		t.Fatalf("owner reconcile: %v", err)
	}
	if !result.Credited {
		t.Error("owner reconcile should grant")
	}
}

func TestReconcileReopensOrderWhenGrantFails(t *testing.T) {
	repo := newMemPaymentRepo()
	led := &stubCreditLedger{failures: 1}
	svc := testService(repo, led, "")

	session, err := svc.InitiateOrder(context.Background(), "u1", "u1@example.com", "basic")
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}

	if _, err := svc.Reconcile(context.Background(), session.OrderID, "u1"); err == nil {
		t.Fatal("reconcile should surface the grant failure")
	}
	stored, _ := repo.GetByOrderID(context.Background(), session.OrderID)
	if stored.Status != models.PaymentPending {
		t.Fatalf("status %q after failed grant, want pending so a retry can complete", stored.Status)
	}

	// The retry performs the grant.
	result, err := svc.Reconcile(context.Background(), session.OrderID, "u1")
	if err != nil {
		t.Fatalf("retry reconcile: %v", err)
	}
	if !result.Credited || result.CreditsAdded != 5 || result.NewBalance != 5 {
		t.Errorf("retry got %+v, want the 5-credit grant", result)
	}
	if led.grants != 1 {
		t.Errorf("ledger credited %d times, want exactly 1", led.grants)
	}
}

// failRacingRepo fails the order between the reconciler's snapshot read and
// its status flip, like a concurrent failure webhook winning the race.
type failRacingRepo struct {
	*memPaymentRepo
}

func (r *failRacingRepo) CompleteIfPending(ctx context.Context, orderID string, at time.Time) (bool, error) {
	if _, err := r.memPaymentRepo.FailIfPending(ctx, orderID); err != nil {
		return false, err
	}
	return r.memPaymentRepo.CompleteIfPending(ctx, orderID, at)
}

func TestLostFlipToFailureReportsNoCredits(t *testing.T) {
	repo := &failRacingRepo{newMemPaymentRepo()}
	led := &stubCreditLedger{}
	svc := testService(repo, led, "")

	session, err := svc.InitiateOrder(context.Background(), "u1", "u1@example.com", "basic")
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}

	result, err := svc.Reconcile(context.Background(), session.OrderID, "u1")
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if result.Credited || result.CreditsAdded != 0 {
		t.Errorf("got %+v after losing the flip to a failure, want no credits reported", result)
	}
	if led.grants != 0 {
		t.Error("a failed order must not grant credits")
	}
}

func TestMarkFailedLeavesLedgerUntouched(t *testing.T) {
	repo := newMemPaymentRepo()
	led := &stubCreditLedger{}
	svc := testService(repo, led, "")

	session, err := svc.InitiateOrder(context.Background(), "u1", "u1@example.com", "basic")
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}

	if err := svc.MarkFailed(context.Background(), session.OrderID); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	stored, _ := repo.GetByOrderID(context.Background(), session.OrderID)
	if stored.Status != models.PaymentFailed {
		t.Errorf("status %q, want failed", stored.Status)
	}
	if led.grants != 0 {
		t.Error("failed orders must not grant credits")
	}

	// A failed order can no longer be reconciled into a grant.
	result, err := svc.Reconcile(context.Background(), session.OrderID, "u1")
	if err != nil {
		t.Fatalf("reconcile after failure: %v", err)
	}
	if result.Credited || led.grants != 0 {
		t.Error("reconcile after failure must not grant credits")
	}
}

func TestVerifyWebhookSignature(t *testing.T) {
	body := []byte(`{"data":{"order":{"order_id":"x","order_status":"PAID"}}}`)
	timestamp := "1717230000"
	secret := "whsec_test"

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write(body)
	valid := hex.EncodeToString(mac.Sum(nil))

	tests := []struct {
		name      string
		secret    string
		timestamp string
		signature string
		wantErr   error
	}{
		{"valid signature", secret, timestamp, valid, nil},
		{"wrong signature", secret, timestamp, "deadbeef", ErrInvalidSignature},
		{"wrong timestamp", secret, "1717230001", valid, ErrInvalidSignature},
		{"missing headers", secret, "", "", ErrInvalidSignature},
		{"no secret skips verification", "", "", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := testService(newMemPaymentRepo(), &stubCreditLedger{}, tt.secret)
			err := svc.VerifyWebhookSignature(tt.timestamp, tt.signature, body)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}
