package repository

import (
	"context"
	"errors"
	"time"

	"criptomain/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotPending means a status transition hit a request that is already
// terminal; re-actioning is a no-op reported to the caller.
var ErrNotPending = errors.New("withdrawal request already actioned")

const withdrawalColumns = `id, user_id, tokens_to_withdraw, global_price_at_withdrawal,
	personal_bonus_at_withdrawal, total_usd_value, commission_rate, commission_usd,
	amount_to_user_usd, payment_method, payment_details, status, requested_at,
	processed_at, COALESCE(admin_notes, '')`

type WithdrawalRepository struct {
	db *pgxpool.Pool
}

func NewWithdrawalRepository(db *pgxpool.Pool) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

// CreateWithTx persists a new pending request in the same transaction that
// escrowed the tokens out of the user's balance.
func (r *WithdrawalRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, w *domain.WithdrawalRequest) error {
	return tx.QueryRow(ctx,
		`INSERT INTO withdrawal_requests
		   (user_id, tokens_to_withdraw, global_price_at_withdrawal, personal_bonus_at_withdrawal,
		    total_usd_value, commission_rate, commission_usd, amount_to_user_usd,
		    payment_method, payment_details, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 'pending')
		 RETURNING id, requested_at`,
		w.UserID, w.TokensToWithdraw, w.GlobalPriceAt, w.PersonalBonusAt,
		w.TotalUSDValue, w.CommissionRate, w.CommissionUSD, w.AmountToUserUSD,
		w.PaymentMethod, w.PaymentDetails,
	).Scan(&w.ID, &w.RequestedAt)
}

func (r *WithdrawalRepository) GetByID(ctx context.Context, id int64) (*domain.WithdrawalRequest, error) {
	return scanWithdrawal(r.db.QueryRow(ctx,
		`SELECT `+withdrawalColumns+` FROM withdrawal_requests WHERE id = $1`, id))
}

// LockPendingWithTx loads a request under FOR UPDATE. Returns ErrNotPending
// when the request exists but is already terminal, so a repeated transition
// cannot double-credit.
func (r *WithdrawalRepository) LockPendingWithTx(ctx context.Context, tx pgx.Tx, id int64) (*domain.WithdrawalRequest, error) {
	w, err := scanWithdrawal(tx.QueryRow(ctx,
		`SELECT `+withdrawalColumns+` FROM withdrawal_requests WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}
	if w.Status != domain.WithdrawalPending {
		return nil, ErrNotPending
	}
	return w, nil
}

// TransitionWithTx moves a pending request to a terminal status. The
// status='pending' guard makes the transition idempotent at the SQL level
// even if the caller skipped the row lock.
func (r *WithdrawalRepository) TransitionWithTx(ctx context.Context, tx pgx.Tx, id int64, status domain.WithdrawalStatus, notes string) error {
	result, err := tx.Exec(ctx,
		`UPDATE withdrawal_requests
		 SET status = $2, processed_at = NOW(), admin_notes = $3
		 WHERE id = $1 AND status = 'pending'`,
		id, status, notes,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotPending
	}
	return nil
}

func (r *WithdrawalRepository) GetByUserID(ctx context.Context, userID int64, limit int) ([]domain.WithdrawalRequest, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+withdrawalColumns+` FROM withdrawal_requests
		 WHERE user_id = $1 ORDER BY requested_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWithdrawals(rows)
}

// ListByStatus pages withdrawal requests for the admin view; an empty
// status lists everything.
func (r *WithdrawalRepository) ListByStatus(ctx context.Context, status string, limit, offset int) ([]domain.WithdrawalRequest, error) {
	if limit <= 0 {
		limit = 15
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+withdrawalColumns+` FROM withdrawal_requests
		 WHERE ($1 = '' OR status = $1)
		 ORDER BY requested_at DESC
		 LIMIT $2 OFFSET $3`,
		status, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWithdrawals(rows)
}

func scanWithdrawal(row pgx.Row) (*domain.WithdrawalRequest, error) {
	var w domain.WithdrawalRequest
	var processedAt *time.Time
	err := row.Scan(
		&w.ID, &w.UserID, &w.TokensToWithdraw, &w.GlobalPriceAt,
		&w.PersonalBonusAt, &w.TotalUSDValue, &w.CommissionRate, &w.CommissionUSD,
		&w.AmountToUserUSD, &w.PaymentMethod, &w.PaymentDetails, &w.Status, &w.RequestedAt,
		&processedAt, &w.AdminNotes,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, err
	}
	w.ProcessedAt = processedAt
	return &w, nil
}

func scanWithdrawals(rows pgx.Rows) ([]domain.WithdrawalRequest, error) {
	var withdrawals []domain.WithdrawalRequest
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			return nil, err
		}
		withdrawals = append(withdrawals, *w)
	}
	return withdrawals, rows.Err()
}
