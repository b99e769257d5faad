package integration

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"criptomain/internal/repository"
	"criptomain/internal/service"
)

func TestRegister_PricingLedger(t *testing.T) {
	db := testPool(t)
	seedTokenomics(t, db)
	ctx := context.Background()

	auth := service.NewAuthService(db, testLockTimeout)

	for i := 1; i <= 3; i++ {
		res, err := auth.Register(ctx,
			fmt.Sprintf("user%d", i), fmt.Sprintf("user%d@example.com", i), "password123", "")
		if err != nil {
			t.Fatalf("register user%d: %v", i, err)
		}
		want := 1.6 + 0.1*float64(i)
		if math.Abs(res.NewGlobalPrice-want) > 1e-9 {
			t.Fatalf("price after user%d = %v; want %v", i, res.NewGlobalPrice, want)
		}
		if res.User.ReferralCode == "" {
			t.Fatalf("expected a referral code for user%d", i)
		}
	}

	if got := currentPrice(t, db); math.Abs(got-1.9) > 1e-9 {
		t.Fatalf("stored price = %v; want 1.9", got)
	}

	var total int64
	if err := db.QueryRow(ctx,
		`SELECT setting_value_int FROM global_settings WHERE setting_name = 'total_users'`,
	).Scan(&total); err != nil {
		t.Fatalf("read total_users: %v", err)
	}
	if total != 3 {
		t.Fatalf("total_users = %d; want 3", total)
	}

	// seed entry plus one per registration, strictly append-only
	var entries int64
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM token_price_history`).Scan(&entries); err != nil {
		t.Fatalf("count price history: %v", err)
	}
	if entries != 4 {
		t.Fatalf("price history entries = %d; want 4", entries)
	}
}

func TestRegister_Validation(t *testing.T) {
	db := testPool(t)
	seedTokenomics(t, db)
	ctx := context.Background()

	auth := service.NewAuthService(db, testLockTimeout)

	if _, err := auth.Register(ctx, "alice", "alice@example.com", "short", ""); !errors.Is(err, service.ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if _, err := auth.Register(ctx, "", "alice@example.com", "password123", ""); !errors.Is(err, service.ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}

	if _, err := auth.Register(ctx, "alice", "alice@example.com", "password123", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := auth.Register(ctx, "alice", "other@example.com", "password123", ""); !errors.Is(err, service.ErrDuplicateUser) {
		t.Fatalf("expected ErrDuplicateUser for username, got %v", err)
	}
	if _, err := auth.Register(ctx, "bob", "alice@example.com", "password123", ""); !errors.Is(err, service.ErrDuplicateUser) {
		t.Fatalf("expected ErrDuplicateUser for email, got %v", err)
	}

	// a failed registration must not have moved the price
	if got := currentPrice(t, db); math.Abs(got-1.7) > 1e-9 {
		t.Fatalf("stored price = %v; want 1.7 after one successful registration", got)
	}
}

func TestRegister_ReferralBonus(t *testing.T) {
	db := testPool(t)
	seedTokenomics(t, db)
	ctx := context.Background()

	auth := service.NewAuthService(db, testLockTimeout)
	users := repository.NewUserRepository(db)

	referrer, err := auth.Register(ctx, "referrer", "referrer@example.com", "password123", "")
	if err != nil {
		t.Fatalf("register referrer: %v", err)
	}

	res, err := auth.Register(ctx, "referred", "referred@example.com", "password123", referrer.User.ReferralCode)
	if err != nil {
		t.Fatalf("register referred: %v", err)
	}
	if !res.ReferralApplied {
		t.Fatalf("expected referral to be applied")
	}

	reloaded, err := users.GetByID(ctx, referrer.User.ID)
	if err != nil {
		t.Fatalf("reload referrer: %v", err)
	}
	if math.Abs(reloaded.PersonalRateBonus-0.01) > 1e-9 {
		t.Fatalf("referrer bonus = %v; want 0.01", reloaded.PersonalRateBonus)
	}

	var links int64
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM referrals WHERE referrer_id = $1`,
		referrer.User.ID).Scan(&links); err != nil {
		t.Fatalf("count referrals: %v", err)
	}
	if links != 1 {
		t.Fatalf("referral links = %d; want 1", links)
	}
}

func TestRegister_InvalidReferralCode(t *testing.T) {
	db := testPool(t)
	seedTokenomics(t, db)
	ctx := context.Background()

	auth := service.NewAuthService(db, testLockTimeout)

	res, err := auth.Register(ctx, "solo", "solo@example.com", "password123", "no-such-code")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if res.ReferralApplied {
		t.Fatalf("referral must not apply for an unknown code")
	}
	if res.Warning == "" {
		t.Fatalf("expected a warning for an unknown referral code")
	}
}

func TestLogin(t *testing.T) {
	db := testPool(t)
	seedTokenomics(t, db)
	ctx := context.Background()

	auth := service.NewAuthService(db, testLockTimeout)

	if _, err := auth.Register(ctx, "carol", "carol@example.com", "password123", ""); err != nil {
		t.Fatalf("register: %v", err)
	}

	u, err := auth.Login(ctx, "carol", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if u.Username != "carol" {
		t.Fatalf("username = %q; want carol", u.Username)
	}

	if _, err := auth.Login(ctx, "carol", "wrong-password"); !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := auth.Login(ctx, "nobody", "password123"); !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}
