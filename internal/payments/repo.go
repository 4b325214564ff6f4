package payments

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"github.com/theaivault/backend/internal/models"
)

type Repository interface {
	InitializeDatabase(ctx context.Context) error
	Insert(ctx context.Context, payment *models.Payment) error
	GetByOrderID(ctx context.Context, orderID string) (*models.Payment, error)
	// CompleteIfPending flips the order to completed only when it is still
	// pending, reporting whether this caller won the flip.
	CompleteIfPending(ctx context.Context, orderID string, at time.Time) (bool, error)
	// FailIfPending flips the order to failed only when it is still pending.
	FailIfPending(ctx context.Context, orderID string) (bool, error)
	// RevertToPending reopens a completed order whose credit grant did not
	// go through, so a later reconcile can retry it.
	RevertToPending(ctx context.Context, orderID string) (bool, error)
}

type PaymentRepository struct {
	db *bun.DB
}

func NewPaymentRepository(db *bun.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) InitializeDatabase(ctx context.Context) error {
	_, err := r.db.NewCreateTable().
		Model((*models.PaymentDB)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return err
	}

	_, err = r.db.NewCreateIndex().
		Model((*models.PaymentDB)(nil)).
		Index("idx_payments_user_id").
		Column("user_id").
		IfNotExists().
		Exec(ctx)
	return err
}

func (r *PaymentRepository) Insert(ctx context.Context, payment *models.Payment) error {
	paymentDB := &models.PaymentDB{
		UserID:    payment.UserID,
		OrderID:   payment.OrderID,
		PlanID:    payment.PlanID,
		Credits:   payment.Credits,
		Amount:    payment.Amount,
		Currency:  payment.Currency,
		Status:    string(payment.Status),
		CreatedAt: time.Now(),
	}
	_, err := r.db.NewInsert().Model(paymentDB).Exec(ctx)
	return err
}

func (r *PaymentRepository) GetByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	paymentDB := new(models.PaymentDB)
	err := r.db.NewSelect().
		Model(paymentDB).
		Where("order_id = ?", orderID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return paymentDB.ToPayment(), nil
}

// CompleteIfPending is the sole idempotence mechanism for reconciliation. Two
// callers racing on the same order resolve here: only one affects a row.
func (r *PaymentRepository) CompleteIfPending(ctx context.Context, orderID string, at time.Time) (bool, error) {
	res, err := r.db.NewUpdate().
		Model((*models.PaymentDB)(nil)).
		Set("status = ?", string(models.PaymentCompleted)).
		Set("completed_at = ?", at).
		Where("order_id = ? AND status = ?", orderID, string(models.PaymentPending)).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *PaymentRepository) RevertToPending(ctx context.Context, orderID string) (bool, error) {
	res, err := r.db.NewUpdate().
		Model((*models.PaymentDB)(nil)).
		Set("status = ?", string(models.PaymentPending)).
		Set("completed_at = NULL").
		Where("order_id = ? AND status = ?", orderID, string(models.PaymentCompleted)).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *PaymentRepository) FailIfPending(ctx context.Context, orderID string) (bool, error) {
	res, err := r.db.NewUpdate().
		Model((*models.PaymentDB)(nil)).
		Set("status = ?", string(models.PaymentFailed)).
		Where("order_id = ? AND status = ?", orderID, string(models.PaymentPending)).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
