package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"criptomain/internal/db"
	"criptomain/internal/domain"
	"criptomain/internal/logger"
	"criptomain/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrDuplicateUser      = errors.New("username or email already registered")
	ErrWeakPassword       = errors.New("password must be at least 6 characters long")
	ErrMissingFields      = errors.New("username, email and password are required")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

const minPasswordLength = 6

// AuthService owns registration and login. Registration is the one place
// the global price moves: user insert, referral linkage, total-users bump,
// reprice and the price-history append commit as a single unit.
type AuthService struct {
	db           *pgxpool.Pool
	lockTimeout  time.Duration
	userRepo     *repository.UserRepository
	referralRepo *repository.ReferralRepository
	settingsRepo *repository.SettingsRepository
	priceRepo    *repository.PriceHistoryRepository

	// OnPriceChange is invoked after a successful commit with the new
	// price point (used to push the websocket price feed).
	OnPriceChange func(domain.PricePoint)
}

func NewAuthService(pool *pgxpool.Pool, lockTimeout time.Duration) *AuthService {
	return &AuthService{
		db:           pool,
		lockTimeout:  lockTimeout,
		userRepo:     repository.NewUserRepository(pool),
		referralRepo: repository.NewReferralRepository(pool),
		settingsRepo: repository.NewSettingsRepository(pool),
		priceRepo:    repository.NewPriceHistoryRepository(pool),
	}
}

// RegisterResult reports the outcome of a registration. Warning carries the
// invalid/self-referral condition, which does not fail the registration.
type RegisterResult struct {
	User            *domain.User
	ReferralApplied bool
	Warning         string
	NewGlobalPrice  float64
}

func (s *AuthService) Register(ctx context.Context, username, email, password, referralCode string) (*RegisterResult, error) {
	if username == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	tx, err := db.BeginWithLockTimeout(ctx, s.db, s.lockTimeout, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Lock the total_users row first: this serializes the increment-and-
	// reprice sequence across concurrent registrations.
	totalUsers, err := s.settingsRepo.LockIntWithTx(ctx, tx, domain.SettingTotalUsers, 0)
	if err != nil {
		return nil, db.MapLockError(err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		ReferralCode: repository.GenerateReferralCode(),
	}
	user.Settings.DisplayName = username

	if err := s.userRepo.CreateWithTx(ctx, tx, user); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, ErrDuplicateUser
		}
		return nil, err
	}

	result := &RegisterResult{User: user}

	if referralCode != "" {
		referrerID, err := s.userRepo.GetIDByReferralCodeWithTx(ctx, tx, referralCode)
		switch {
		case errors.Is(err, repository.ErrUserNotFound) || (err == nil && referrerID == user.ID):
			result.Warning = "invalid or self-referral code; registered without referral bonus"
		case err != nil:
			return nil, db.MapLockError(err)
		default:
			if err := s.userRepo.SetReferredByWithTx(ctx, tx, user.ID, referrerID); err != nil {
				return nil, err
			}
			if err := s.userRepo.AddRateBonusWithTx(ctx, tx, referrerID, domain.ReferralBonusIncrement); err != nil {
				return nil, db.MapLockError(err)
			}
			if _, err := s.referralRepo.CreateWithTx(ctx, tx, referrerID, user.ID); err != nil {
				return nil, err
			}
			user.ReferredBy = &referrerID
			result.ReferralApplied = true
		}
	}

	totalUsers++
	if err := s.settingsRepo.SetWithTx(ctx, tx, domain.SettingTotalUsers, totalUsers); err != nil {
		return nil, err
	}

	initialPrice, err := s.settingsRepo.GetFloatWithTx(ctx, tx, domain.SettingInitialTokenPrice, 0)
	if err != nil {
		return nil, err
	}
	increment, err := s.settingsRepo.GetFloatWithTx(ctx, tx, domain.SettingPriceIncrementPerUser, 0)
	if err != nil {
		return nil, err
	}

	newPrice := domain.PriceForUsers(initialPrice, increment, totalUsers)
	if err := s.settingsRepo.SetWithTx(ctx, tx, domain.SettingCurrentTokenPrice, newPrice); err != nil {
		return nil, err
	}

	point, err := s.priceRepo.RecordWithTx(ctx, tx, newPrice,
		fmt.Sprintf("New user: %s (ID: %d)", user.Username, user.ID))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, db.MapLockError(err)
	}

	result.NewGlobalPrice = newPrice
	logger.Info("user registered",
		"user_id", user.ID, "username", user.Username,
		"total_users", totalUsers, "new_price", newPrice,
		"referral_applied", result.ReferralApplied)

	if s.OnPriceChange != nil {
		s.OnPriceChange(*point)
	}
	return result, nil
}

// Login verifies the password credential and stamps last_login_at.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.userRepo.TouchLastLogin(ctx, user.ID); err != nil {
		logger.Warn("failed to stamp last login", "user_id", user.ID, "error", err)
	}
	now := time.Now().UTC()
	user.LastLoginAt = &now
	return user, nil
}
