package integration

import (
	"context"
	"sync"
	"testing"

	"criptomain/internal/config"
	"criptomain/internal/service"
)

func TestBootstrap_Idempotent(t *testing.T) {
	db := testPool(t)
	ctx := context.Background()

	seedTokenomics(t, db)
	seedTokenomics(t, db) // second run must be a no-op

	var settings, history int64
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM global_settings`).Scan(&settings); err != nil {
		t.Fatalf("count settings: %v", err)
	}
	if settings != 4 {
		t.Fatalf("settings rows = %d; want 4", settings)
	}
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM token_price_history`).Scan(&history); err != nil {
		t.Fatalf("count price history: %v", err)
	}
	if history != 1 {
		t.Fatalf("price history rows = %d; want 1", history)
	}
}

func TestBootstrap_ConcurrentReplicasSeedOnce(t *testing.T) {
	db := testPool(t)
	ctx := context.Background()

	cfg := &config.Config{
		InitialTokenPriceUSD:     1.6,
		PriceIncrementPerUserUSD: 0.1,
	}

	const replicas = 4
	var wg sync.WaitGroup
	errs := make(chan error, replicas)
	for i := 0; i < replicas; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- service.Bootstrap(ctx, db, cfg)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("bootstrap: %v", err)
		}
	}

	var settings, history int64
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM global_settings`).Scan(&settings); err != nil {
		t.Fatalf("count settings: %v", err)
	}
	if settings != 4 {
		t.Fatalf("settings rows = %d; want 4", settings)
	}
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM token_price_history`).Scan(&history); err != nil {
		t.Fatalf("count price history: %v", err)
	}
	if history != 1 {
		t.Fatalf("price history rows = %d; want exactly one seed entry", history)
	}
}

func TestBootstrap_ProvisionsAdmin(t *testing.T) {
	db := testPool(t)
	ctx := context.Background()

	cfg := &config.Config{
		InitialTokenPriceUSD:     1.6,
		PriceIncrementPerUserUSD: 0.1,
		AdminUsername:            "root",
		AdminPassword:            "supersecret",
		AdminEmail:               "root@example.com",
	}
	if err := service.Bootstrap(ctx, db, cfg); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	auth := service.NewAuthService(db, testLockTimeout)
	u, err := auth.Login(ctx, "root", "supersecret")
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	if !u.IsAdmin {
		t.Fatalf("expected provisioned user to be an admin")
	}
}
