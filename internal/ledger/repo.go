package ledger

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
	GetAccount(ctx context.Context, userID string) (*models.Account, error)
	InsertAccountIfAbsent(ctx context.Context, account *models.Account) error
	DebitOne(ctx context.Context, userID string) (bool, error)
	Credit(ctx context.Context, userID string, amount int) (bool, error)
	InsertCreation(ctx context.Context, creation *models.Creation) error
	BumpCreationStats(ctx context.Context, userID string, at time.Time) error
}

type AccountRepository struct {
	db *bun.DB
}

func NewAccountRepository(db *bun.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) InitializeDatabase(ctx context.Context) error {
	_, err := r.db.NewCreateTable().
		Model((*models.AccountDB)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return err
	}

	_, err = r.db.NewCreateTable().
		Model((*models.CreationDB)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return err
	}

	_, err = r.db.NewCreateIndex().
		Model((*models.CreationDB)(nil)).
		Index("idx_creations_user_id").
		Column("user_id").
		IfNotExists().
		Exec(ctx)
	return err
}

func (r *AccountRepository) GetAccount(ctx context.Context, userID string) (*models.Account, error) {
	accountDB := new(models.AccountDB)
	err := r.db.NewSelect().
		Model(accountDB).
		Where("id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return accountDB.ToAccount(), nil
}

func (r *AccountRepository) InsertAccountIfAbsent(ctx context.Context, account *models.Account) error {
	accountDB := models.AccountFromDomain(account)
	accountDB.CreatedAt = time.Now()
	accountDB.UpdatedAt = time.Now()
	_, err := r.db.NewInsert().
		Model(accountDB).
		On("CONFLICT (id) DO NOTHING").
		Exec(ctx)
	return err
}

// DebitOne performs the decrement-if-positive as a single statement. Two
// concurrent debits against a balance of 1 resolve here: only one affects a
// row.
func (r *AccountRepository) DebitOne(ctx context.Context, userID string) (bool, error) {
	res, err := r.db.NewUpdate().
		Model((*models.AccountDB)(nil)).
		Set("credits_remaining = credits_remaining - 1").
		Set("updated_at = ?", time.Now()).
		Where("id = ? AND credits_remaining >= 1", userID).
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

// Credit increments the balance and recomputes the subscription label in the
// same statement. The label is display-only.
func (r *AccountRepository) Credit(ctx context.Context, userID string, amount int) (bool, error) {
	res, err := r.db.NewUpdate().
		Model((*models.AccountDB)(nil)).
		Set("credits_remaining = credits_remaining + ?", amount).
		Set("subscription_status = CASE WHEN credits_remaining + ? > 1 THEN 'premium' ELSE 'free' END", amount).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", userID).
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

func (r *AccountRepository) InsertCreation(ctx context.Context, creation *models.Creation) error {
	creationDB := &models.CreationDB{
		ID:          creation.ID,
		UserID:      creation.UserID,
		Type:        string(creation.Type),
		Prompt:      creation.Prompt,
		ResultURL:   creation.ResultURL,
		Metadata:    creation.Metadata,
		CostCredits: creation.CostCredits,
		CreatedAt:   time.Now(),
	}
	_, err := r.db.NewInsert().Model(creationDB).Exec(ctx)
	return err
}

func (r *AccountRepository) BumpCreationStats(ctx context.Context, userID string, at time.Time) error {
	_, err := r.db.NewUpdate().
		Model((*models.AccountDB)(nil)).
		Set("total_creations = total_creations + 1").
		Set("last_creation_at = ?", at).
		Set("updated_at = ?", at).
		Where("id = ?", userID).
		Exec(ctx)
	return err
}
