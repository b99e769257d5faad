package service

import (
	"context"
	"time"

	"criptomain/internal/db"
	"criptomain/internal/domain"
	"criptomain/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TapService converts tap events into token balance. All counter math runs
// under the user's row lock so concurrent taps never lose an increment.
type TapService struct {
	db          *pgxpool.Pool
	lockTimeout time.Duration
	userRepo    *repository.UserRepository
	txRepo      *repository.TransactionRepository
}

func NewTapService(pool *pgxpool.Pool, lockTimeout time.Duration) *TapService {
	return &TapService{
		db:          pool,
		lockTimeout: lockTimeout,
		userRepo:    repository.NewUserRepository(pool),
		txRepo:      repository.NewTransactionRepository(pool),
	}
}

// TapResult is the post-tap state returned to the client.
type TapResult struct {
	TokenBalance     float64 `json:"token_balance"`
	TapsForNextToken int     `json:"taps_for_next_token"`
	TokensEarned     int     `json:"tokens_earned_this_tap"`
}

// RecordTap applies one tap to the user's progress counter and credits any
// whole tokens earned.
func (s *TapService) RecordTap(ctx context.Context, userID int64) (*TapResult, error) {
	tx, err := db.BeginWithLockTimeout(ctx, s.db, s.lockTimeout, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	balance, taps, _, err := s.userRepo.LockForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, db.MapLockError(err)
	}

	earned, newTaps := domain.SettleTaps(taps, 1)
	newBalance := balance + float64(earned)

	if err := s.userRepo.UpdateTapState(ctx, tx, userID, newBalance, newTaps); err != nil {
		return nil, err
	}

	if earned > 0 {
		t := &domain.Transaction{
			UserID: userID,
			Type:   domain.TxTapReward,
			Amount: float64(earned),
		}
		if err := s.txRepo.CreateWithTx(ctx, tx, t); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, db.MapLockError(err)
	}

	return &TapResult{
		TokenBalance:     newBalance,
		TapsForNextToken: newTaps,
		TokensEarned:     earned,
	}, nil
}
