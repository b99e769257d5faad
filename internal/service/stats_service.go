package service

import (
	"context"
	"time"

	"criptomain/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StatsService computes the read-only operational rollups for the admin
// dashboard. Everything runs inside one repeatable-read transaction so the
// aggregates returned together describe a single point in time.
type StatsService struct {
	db *pgxpool.Pool
}

func NewStatsService(pool *pgxpool.Pool) *StatsService {
	return &StatsService{db: pool}
}

// DashboardStats is the admin dashboard snapshot.
type DashboardStats struct {
	TotalUsers              int64   `json:"total_users"`
	CurrentPriceUSD         float64 `json:"current_price_usd"`
	ActiveUsers24h          int64   `json:"active_users_24h"`
	ActiveUsers7d           int64   `json:"active_users_7d"`
	TokensInCirculation     float64 `json:"tokens_in_circulation"`
	PendingWithdrawalsCount int64   `json:"pending_withdrawals_count"`
	PendingWithdrawalsUSD   float64 `json:"pending_withdrawals_usd"`
	TotalPaidOutUSD         float64 `json:"total_paid_out_usd"`
	TotalCommissionUSD      float64 `json:"total_commission_usd"`
	NewUsersToday           int64   `json:"new_users_today"`
	NewUsersThisWeek        int64   `json:"new_users_this_week"`
	NewUsersThisMonth       int64   `json:"new_users_this_month"`
}

func (s *StatsService) GetDashboard(ctx context.Context) (*DashboardStats, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	stats := &DashboardStats{}
	now := time.Now().UTC()
	today := now.Truncate(24 * time.Hour)
	weekday := int(today.Weekday()+6) % 7 // Monday-based week
	startOfWeek := today.AddDate(0, 0, -weekday)
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	err = tx.QueryRow(ctx,
		`SELECT COALESCE(setting_value_int, 0) FROM global_settings WHERE setting_name = $1`,
		domain.SettingTotalUsers,
	).Scan(&stats.TotalUsers)
	if err != nil && err != pgx.ErrNoRows {
		return nil, err
	}

	err = tx.QueryRow(ctx,
		`SELECT COALESCE(setting_value_float, 0) FROM global_settings WHERE setting_name = $1`,
		domain.SettingCurrentTokenPrice,
	).Scan(&stats.CurrentPriceUSD)
	if err != nil && err != pgx.ErrNoRows {
		return nil, err
	}

	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FILTER (WHERE last_login_at >= $1),
		        COUNT(*) FILTER (WHERE last_login_at >= $2),
		        COALESCE(SUM(token_balance), 0),
		        COUNT(*) FILTER (WHERE created_at >= $3),
		        COUNT(*) FILTER (WHERE created_at >= $4),
		        COUNT(*) FILTER (WHERE created_at >= $5)
		 FROM users`,
		now.Add(-24*time.Hour), now.Add(-7*24*time.Hour),
		today, startOfWeek, startOfMonth,
	).Scan(
		&stats.ActiveUsers24h, &stats.ActiveUsers7d, &stats.TokensInCirculation,
		&stats.NewUsersToday, &stats.NewUsersThisWeek, &stats.NewUsersThisMonth,
	); err != nil {
		return nil, err
	}

	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FILTER (WHERE status = 'pending'),
		        COALESCE(SUM(amount_to_user_usd) FILTER (WHERE status = 'pending'), 0),
		        COALESCE(SUM(amount_to_user_usd) FILTER (WHERE status = 'processed'), 0),
		        COALESCE(SUM(commission_usd) FILTER (WHERE status = 'processed'), 0)
		 FROM withdrawal_requests`,
	).Scan(
		&stats.PendingWithdrawalsCount, &stats.PendingWithdrawalsUSD,
		&stats.TotalPaidOutUSD, &stats.TotalCommissionUSD,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return stats, nil
}
