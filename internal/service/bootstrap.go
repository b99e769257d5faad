package service

import (
	"context"

	"criptomain/internal/config"
	"criptomain/internal/domain"
	"criptomain/internal/logger"
	"criptomain/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// bootstrapLockKey is the advisory lock serializing first-boot seeding
// across replicas starting against the same database.
const bootstrapLockKey = 824660

// Bootstrap seeds the tokenomics settings and the admin account exactly
// once. The seed is gated on "settings table is empty": a store holding
// any setting is never re-seeded. The gate and the seed run in one
// transaction under an advisory lock, so concurrent replicas cannot both
// observe an empty store and double-seed.
func Bootstrap(ctx context.Context, pool *pgxpool.Pool, cfg *config.Config) error {
	settingsRepo := repository.NewSettingsRepository(pool)
	priceRepo := repository.NewPriceHistoryRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, bootstrapLockKey); err != nil {
		return err
	}

	count, err := settingsRepo.CountWithTx(ctx, tx)
	if err != nil {
		return err
	}
	if count > 0 {
		logger.Info("global settings already exist; skipping bootstrap")
		return nil
	}

	seeds := []struct {
		name  string
		value any
	}{
		{domain.SettingInitialTokenPrice, cfg.InitialTokenPriceUSD},
		{domain.SettingPriceIncrementPerUser, cfg.PriceIncrementPerUserUSD},
		{domain.SettingTotalUsers, int64(0)},
		{domain.SettingCurrentTokenPrice, cfg.InitialTokenPriceUSD},
	}
	for _, seed := range seeds {
		if err := settingsRepo.SetWithTx(ctx, tx, seed.name, seed.value); err != nil {
			return err
		}
	}

	if _, err := priceRepo.RecordWithTx(ctx, tx, cfg.InitialTokenPriceUSD, "Initial system setup"); err != nil {
		return err
	}

	if cfg.AdminPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		admin := &domain.User{
			Username:     cfg.AdminUsername,
			Email:        cfg.AdminEmail,
			PasswordHash: string(hash),
			ReferralCode: repository.GenerateReferralCode(),
			IsAdmin:      true,
		}
		admin.Settings.DisplayName = cfg.AdminUsername
		if err := userRepo.CreateWithTx(ctx, tx, admin); err != nil {
			return err
		}
		logger.Info("admin user provisioned", "username", admin.Username)
	} else {
		logger.Warn("ADMIN_PASSWORD not set; no admin user provisioned")
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	logger.Info("global settings initialized",
		"initial_price", cfg.InitialTokenPriceUSD,
		"increment_per_user", cfg.PriceIncrementPerUserUSD)
	return nil
}
