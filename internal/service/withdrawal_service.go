package service

import (
	"context"
	"errors"
	"time"

	"criptomain/internal/db"
	"criptomain/internal/domain"
	"criptomain/internal/logger"
	"criptomain/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrInvalidAmount       = errors.New("invalid withdrawal amount")
	ErrInsufficientBalance = errors.New("insufficient token balance")
	ErrMissingPaymentInfo  = errors.New("payment method and details are required")
	ErrAlreadyActioned     = errors.New("request has already been actioned")
	ErrRequestNotFound     = errors.New("withdrawal request not found")
	ErrInvalidAction       = errors.New("invalid withdrawal action")
)

// WithdrawalService is the settlement engine. A request is priced and the
// tokens escrowed out of the spendable balance in one transaction; the
// admin transition later finalizes or reverses that escrow.
type WithdrawalService struct {
	db             *pgxpool.Pool
	lockTimeout    time.Duration
	userRepo       *repository.UserRepository
	withdrawalRepo *repository.WithdrawalRepository
	settingsRepo   *repository.SettingsRepository
	txRepo         *repository.TransactionRepository
}

func NewWithdrawalService(pool *pgxpool.Pool, lockTimeout time.Duration) *WithdrawalService {
	return &WithdrawalService{
		db:             pool,
		lockTimeout:    lockTimeout,
		userRepo:       repository.NewUserRepository(pool),
		withdrawalRepo: repository.NewWithdrawalRepository(pool),
		settingsRepo:   repository.NewSettingsRepository(pool),
		txRepo:         repository.NewTransactionRepository(pool),
	}
}

// RequestResult is returned to the caller after a successful escrow.
type RequestResult struct {
	Request         *domain.WithdrawalRequest
	NewTokenBalance float64
}

// Request prices tokens at the current effective rate, debits them from
// the balance immediately and persists the pending request with the full
// valuation frozen.
func (s *WithdrawalService) Request(ctx context.Context, userID int64, tokens float64, method, details string) (*RequestResult, error) {
	if method == "" || details == "" {
		return nil, ErrMissingPaymentInfo
	}
	if tokens <= 0 || tokens != tokens { // rejects NaN
		return nil, ErrInvalidAmount
	}

	tx, err := db.BeginWithLockTimeout(ctx, s.db, s.lockTimeout, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	balance, _, bonus, err := s.userRepo.LockForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, db.MapLockError(err)
	}
	if tokens > balance {
		return nil, ErrInsufficientBalance
	}

	globalPrice, err := s.settingsRepo.GetFloatWithTx(ctx, tx, domain.SettingCurrentTokenPrice, 0)
	if err != nil {
		return nil, err
	}

	quote := domain.QuoteWithdrawal(tokens, globalPrice, bonus)

	newBalance, err := s.userRepo.DebitWithTx(ctx, tx, userID, tokens)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInsufficientBalance
		}
		return nil, err
	}

	request := &domain.WithdrawalRequest{
		UserID:           userID,
		TokensToWithdraw: tokens,
		GlobalPriceAt:    globalPrice,
		PersonalBonusAt:  bonus,
		TotalUSDValue:    quote.TotalUSD,
		CommissionRate:   domain.CommissionRate,
		CommissionUSD:    quote.CommissionUSD,
		AmountToUserUSD:  quote.AmountToUser,
		PaymentMethod:    method,
		PaymentDetails:   details,
		Status:           domain.WithdrawalPending,
	}
	if err := s.withdrawalRepo.CreateWithTx(ctx, tx, request); err != nil {
		return nil, err
	}

	escrow := &domain.Transaction{
		UserID: userID,
		Type:   domain.TxWithdrawalEscrow,
		Amount: -tokens,
		Meta:   map[string]interface{}{"withdrawal_id": request.ID},
	}
	if err := s.txRepo.CreateWithTx(ctx, tx, escrow); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, db.MapLockError(err)
	}

	logger.Info("withdrawal requested",
		"user_id", userID, "withdrawal_id", request.ID,
		"tokens", tokens, "amount_usd", quote.AmountToUser)

	return &RequestResult{Request: request, NewTokenBalance: newBalance}, nil
}

// TransitionResult reports the terminal state and whether a rejection
// managed to return the escrowed tokens.
type TransitionResult struct {
	Request        *domain.WithdrawalRequest
	TokensReturned bool
}

// Process moves a pending request to processed or rejected. Processing
// changes no balance (tokens were escrowed at request time); rejection
// credits the escrowed tokens back. Re-actioning a terminal request fails
// with ErrAlreadyActioned and has no side effect.
func (s *WithdrawalService) Process(ctx context.Context, requestID int64, status domain.WithdrawalStatus, notes string) (*TransitionResult, error) {
	if status != domain.WithdrawalProcessed && status != domain.WithdrawalRejected {
		return nil, ErrInvalidAction
	}

	tx, err := db.BeginWithLockTimeout(ctx, s.db, s.lockTimeout, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	request, err := s.withdrawalRepo.LockPendingWithTx(ctx, tx, requestID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotPending):
			return nil, ErrAlreadyActioned
		case errors.Is(err, pgx.ErrNoRows):
			return nil, ErrRequestNotFound
		}
		return nil, db.MapLockError(err)
	}

	if err := s.withdrawalRepo.TransitionWithTx(ctx, tx, requestID, status, notes); err != nil {
		if errors.Is(err, repository.ErrNotPending) {
			return nil, ErrAlreadyActioned
		}
		return nil, err
	}

	result := &TransitionResult{Request: request}

	if status == domain.WithdrawalRejected {
		_, err := s.userRepo.CreditWithTx(ctx, tx, request.UserID, request.TokensToWithdraw)
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			// The rejection still completes; the tokens are orphaned and
			// reported rather than blocking the transition.
			logger.Error("rejection refund failed: user missing",
				"withdrawal_id", requestID, "user_id", request.UserID,
				"tokens", request.TokensToWithdraw)
		case err != nil:
			return nil, db.MapLockError(err)
		default:
			refund := &domain.Transaction{
				UserID: request.UserID,
				Type:   domain.TxWithdrawalRefund,
				Amount: request.TokensToWithdraw,
				Meta:   map[string]interface{}{"withdrawal_id": requestID},
			}
			if err := s.txRepo.CreateWithTx(ctx, tx, refund); err != nil {
				return nil, err
			}
			result.TokensReturned = true
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, db.MapLockError(err)
	}

	now := time.Now().UTC()
	request.Status = status
	request.ProcessedAt = &now
	request.AdminNotes = notes

	logger.Info("withdrawal actioned",
		"withdrawal_id", requestID, "status", status,
		"tokens_returned", result.TokensReturned)
	return result, nil
}

// HistoryForUser lists a user's withdrawal requests, newest first.
func (s *WithdrawalService) HistoryForUser(ctx context.Context, userID int64, limit int) ([]domain.WithdrawalRequest, error) {
	return s.withdrawalRepo.GetByUserID(ctx, userID, limit)
}
