package handlers

import (
	"math"
	"time"

	"criptomain/internal/repository"
	"criptomain/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Handler struct {
	DB *pgxpool.Pool

	AuthService       *service.AuthService
	TapService        *service.TapService
	WithdrawalService *service.WithdrawalService
	StatsService      *service.StatsService

	UserRepo        *repository.UserRepository
	SettingsRepo    *repository.SettingsRepository
	PriceRepo       *repository.PriceHistoryRepository
	WithdrawalRepo  *repository.WithdrawalRepository
	ReferralRepo    *repository.ReferralRepository
	TransactionRepo *repository.TransactionRepository
}

func NewHandler(db *pgxpool.Pool, lockTimeout time.Duration) *Handler {
	return &Handler{
		DB:                db,
		AuthService:       service.NewAuthService(db, lockTimeout),
		TapService:        service.NewTapService(db, lockTimeout),
		WithdrawalService: service.NewWithdrawalService(db, lockTimeout),
		StatsService:      service.NewStatsService(db),
		UserRepo:          repository.NewUserRepository(db),
		SettingsRepo:      repository.NewSettingsRepository(db),
		PriceRepo:         repository.NewPriceHistoryRepository(db),
		WithdrawalRepo:    repository.NewWithdrawalRepository(db),
		ReferralRepo:      repository.NewReferralRepository(db),
		TransactionRepo:   repository.NewTransactionRepository(db),
	}
}

// getUserID extracts the authenticated user id set by the JWT middleware.
func getUserID(c *gin.Context) (int64, bool) {
	uidVal, ok := c.Get("user_id")
	if !ok {
		return 0, false
	}
	switch v := uidVal.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

// round3 renders USD rates the way the API promises them: 3 decimals.
func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
