package integration

import (
	"context"
	"math"
	"testing"

	"criptomain/internal/domain"
	"criptomain/internal/service"
)

func TestDashboard_Aggregates(t *testing.T) {
	db := testPool(t)
	seedTokenomics(t, db)
	ctx := context.Background()

	auth := service.NewAuthService(db, testLockTimeout)
	withdrawals := service.NewWithdrawalService(db, testLockTimeout)
	stats := service.NewStatsService(db)

	reg1, err := auth.Register(ctx, "stat1", "stat1@example.com", "password123", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := auth.Register(ctx, "stat2", "stat2@example.com", "password123", ""); err != nil {
		t.Fatalf("register: %v", err)
	}

	setBalance(t, db, reg1.User.ID, 10)
	res, err := withdrawals.Request(ctx, reg1.User.ID, 4, "bank", "IBAN")
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	dash, err := stats.GetDashboard(ctx)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if dash.TotalUsers != 2 {
		t.Fatalf("total users = %d; want 2", dash.TotalUsers)
	}
	if math.Abs(dash.CurrentPriceUSD-1.8) > 1e-9 {
		t.Fatalf("current price = %v; want 1.8", dash.CurrentPriceUSD)
	}
	if dash.PendingWithdrawalsCount != 1 {
		t.Fatalf("pending count = %d; want 1", dash.PendingWithdrawalsCount)
	}
	if dash.NewUsersToday != 2 {
		t.Fatalf("new users today = %d; want 2", dash.NewUsersToday)
	}

	if _, err := withdrawals.Process(ctx, res.Request.ID, domain.WithdrawalProcessed, ""); err != nil {
		t.Fatalf("process: %v", err)
	}

	dash, err = stats.GetDashboard(ctx)
	if err != nil {
		t.Fatalf("dashboard after processing: %v", err)
	}
	if dash.PendingWithdrawalsCount != 0 {
		t.Fatalf("pending count = %d; want 0", dash.PendingWithdrawalsCount)
	}
	if math.Abs(dash.TotalPaidOutUSD-res.Request.AmountToUserUSD) > 1e-9 {
		t.Fatalf("paid out = %v; want %v", dash.TotalPaidOutUSD, res.Request.AmountToUserUSD)
	}
	if math.Abs(dash.TotalCommissionUSD-res.Request.CommissionUSD) > 1e-9 {
		t.Fatalf("commission = %v; want %v", dash.TotalCommissionUSD, res.Request.CommissionUSD)
	}
}
