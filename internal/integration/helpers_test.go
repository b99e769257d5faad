package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"criptomain/internal/config"
	"criptomain/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
)

const testLockTimeout = 3 * time.Second

// testPool connects to the database named by DATABASE_URL, applies the
// migrations and wipes all data so every test starts from a clean slate.
// Skips when DATABASE_URL is not set.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(db.Close)

	applyMigrations(t, db)
	resetData(t, db)
	return db
}

func applyMigrations(t *testing.T, db *pgxpool.Pool) {
	t.Helper()
	migDir := filepath.Join("..", "..", "internal", "migrations")
	files, err := os.ReadDir(migDir)
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	for _, f := range files {
		b, err := os.ReadFile(filepath.Join(migDir, f.Name()))
		if err != nil {
			t.Fatalf("read file: %v", err)
		}
		if _, err := db.Exec(context.Background(), string(b)); err != nil {
			t.Fatalf("apply migration %s: %v", f.Name(), err)
		}
	}
}

func resetData(t *testing.T, db *pgxpool.Pool) {
	t.Helper()
	_, err := db.Exec(context.Background(),
		`TRUNCATE transactions, referrals, withdrawal_requests,
		 token_price_history, global_settings, users RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("reset data: %v", err)
	}
}

// seedTokenomics runs the first-boot seed with a known price curve and no
// admin account.
func seedTokenomics(t *testing.T, db *pgxpool.Pool) *config.Config {
	t.Helper()
	cfg := &config.Config{
		InitialTokenPriceUSD:     1.6,
		PriceIncrementPerUserUSD: 0.1,
		LockTimeout:              testLockTimeout,
	}
	if err := service.Bootstrap(context.Background(), db, cfg); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	return cfg
}

func currentPrice(t *testing.T, db *pgxpool.Pool) float64 {
	t.Helper()
	var price float64
	err := db.QueryRow(context.Background(),
		`SELECT setting_value_float FROM global_settings
		 WHERE setting_name = 'current_global_token_price_usd'`).Scan(&price)
	if err != nil {
		t.Fatalf("read current price: %v", err)
	}
	return price
}

func setBalance(t *testing.T, db *pgxpool.Pool, userID int64, balance float64) {
	t.Helper()
	if _, err := db.Exec(context.Background(),
		`UPDATE users SET token_balance = $2 WHERE id = $1`, userID, balance); err != nil {
		t.Fatalf("set balance: %v", err)
	}
}
