package integration

import (
	"context"
	"errors"
	"math"
	"testing"

	"criptomain/internal/domain"
	"criptomain/internal/service"
)

func TestWithdrawal_RequestFreezesValuation(t *testing.T) {
	db := testPool(t)
	seedTokenomics(t, db)
	ctx := context.Background()

	auth := service.NewAuthService(db, testLockTimeout)
	withdrawals := service.NewWithdrawalService(db, testLockTimeout)

	reg, err := auth.Register(ctx, "saver", "saver@example.com", "password123", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	userID := reg.User.ID
	setBalance(t, db, userID, 10)

	// price after one registration is 1.7, no personal bonus
	res, err := withdrawals.Request(ctx, userID, 4, "bank", "IBAN XX00")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	w := res.Request

	if math.Abs(res.NewTokenBalance-6) > 1e-9 {
		t.Fatalf("balance after escrow = %v; want 6", res.NewTokenBalance)
	}
	if w.Status != domain.WithdrawalPending {
		t.Fatalf("status = %q; want pending", w.Status)
	}
	if math.Abs(w.GlobalPriceAt-1.7) > 1e-9 {
		t.Fatalf("snapshot price = %v; want 1.7", w.GlobalPriceAt)
	}
	wantTotal := 4 * 1.7
	if math.Abs(w.TotalUSDValue-wantTotal) > 1e-9 {
		t.Fatalf("total = %v; want %v", w.TotalUSDValue, wantTotal)
	}
	if math.Abs(w.CommissionUSD-wantTotal*0.40) > 1e-9 {
		t.Fatalf("commission = %v; want %v", w.CommissionUSD, wantTotal*0.40)
	}
	if math.Abs(w.AmountToUserUSD-wantTotal*0.60) > 1e-9 {
		t.Fatalf("payout = %v; want %v", w.AmountToUserUSD, wantTotal*0.60)
	}

	// escrow is in the audit trail
	var escrow float64
	if err := db.QueryRow(ctx,
		`SELECT amount FROM transactions WHERE user_id = $1 AND type = 'withdrawal_escrow'`,
		userID).Scan(&escrow); err != nil {
		t.Fatalf("read escrow transaction: %v", err)
	}
	if math.Abs(escrow-(-4)) > 1e-9 {
		t.Fatalf("escrow amount = %v; want -4", escrow)
	}
}

func TestWithdrawal_RequestValidation(t *testing.T) {
	db := testPool(t)
	seedTokenomics(t, db)
	ctx := context.Background()

	auth := service.NewAuthService(db, testLockTimeout)
	withdrawals := service.NewWithdrawalService(db, testLockTimeout)

	reg, err := auth.Register(ctx, "broke", "broke@example.com", "password123", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	userID := reg.User.ID
	setBalance(t, db, userID, 2)

	if _, err := withdrawals.Request(ctx, userID, 4, "bank", "IBAN"); !errors.Is(err, service.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if _, err := withdrawals.Request(ctx, userID, 0, "bank", "IBAN"); !errors.Is(err, service.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for zero, got %v", err)
	}
	if _, err := withdrawals.Request(ctx, userID, -1, "bank", "IBAN"); !errors.Is(err, service.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for negative, got %v", err)
	}
	if _, err := withdrawals.Request(ctx, userID, 1, "", "IBAN"); !errors.Is(err, service.ErrMissingPaymentInfo) {
		t.Fatalf("expected ErrMissingPaymentInfo, got %v", err)
	}
	if _, err := withdrawals.Request(ctx, userID, 1, "bank", ""); !errors.Is(err, service.ErrMissingPaymentInfo) {
		t.Fatalf("expected ErrMissingPaymentInfo for empty details, got %v", err)
	}

	// nothing was escrowed by the failed attempts
	var count int64
	if err := db.QueryRow(ctx,
		`SELECT COUNT(*) FROM withdrawal_requests WHERE user_id = $1`, userID).Scan(&count); err != nil {
		t.Fatalf("count requests: %v", err)
	}
	if count != 0 {
		t.Fatalf("requests = %d; want 0", count)
	}
}

func TestWithdrawal_RejectRefunds(t *testing.T) {
	db := testPool(t)
	seedTokenomics(t, db)
	ctx := context.Background()

	auth := service.NewAuthService(db, testLockTimeout)
	withdrawals := service.NewWithdrawalService(db, testLockTimeout)

	reg, err := auth.Register(ctx, "refunded", "refunded@example.com", "password123", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	userID := reg.User.ID
	setBalance(t, db, userID, 10)

	res, err := withdrawals.Request(ctx, userID, 4, "bank", "IBAN")
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	tr, err := withdrawals.Process(ctx, res.Request.ID, domain.WithdrawalRejected, "details did not verify")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if !tr.TokensReturned {
		t.Fatalf("expected tokens to be returned on rejection")
	}
	if tr.Request.ProcessedAt == nil {
		t.Fatalf("expected processed_at to be stamped")
	}

	var balance float64
	if err := db.QueryRow(ctx,
		`SELECT token_balance FROM users WHERE id = $1`, userID).Scan(&balance); err != nil {
		t.Fatalf("read balance: %v", err)
	}
	if math.Abs(balance-10) > 1e-9 {
		t.Fatalf("balance after refund = %v; want 10", balance)
	}

	// rejecting again must fail and must not double-credit
	if _, err := withdrawals.Process(ctx, res.Request.ID, domain.WithdrawalRejected, ""); !errors.Is(err, service.ErrAlreadyActioned) {
		t.Fatalf("expected ErrAlreadyActioned, got %v", err)
	}
	if err := db.QueryRow(ctx,
		`SELECT token_balance FROM users WHERE id = $1`, userID).Scan(&balance); err != nil {
		t.Fatalf("read balance: %v", err)
	}
	if math.Abs(balance-10) > 1e-9 {
		t.Fatalf("balance after repeated reject = %v; want 10", balance)
	}
}

func TestWithdrawal_ProcessKeepsEscrow(t *testing.T) {
	db := testPool(t)
	seedTokenomics(t, db)
	ctx := context.Background()

	auth := service.NewAuthService(db, testLockTimeout)
	withdrawals := service.NewWithdrawalService(db, testLockTimeout)

	reg, err := auth.Register(ctx, "paid", "paid@example.com", "password123", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	userID := reg.User.ID
	setBalance(t, db, userID, 10)

	res, err := withdrawals.Request(ctx, userID, 4, "bank", "IBAN")
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	tr, err := withdrawals.Process(ctx, res.Request.ID, domain.WithdrawalProcessed, "paid out")
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if tr.TokensReturned {
		t.Fatalf("processing must not return tokens")
	}
	if tr.Request.Status != domain.WithdrawalProcessed {
		t.Fatalf("status = %q; want processed", tr.Request.Status)
	}

	var balance float64
	if err := db.QueryRow(ctx,
		`SELECT token_balance FROM users WHERE id = $1`, userID).Scan(&balance); err != nil {
		t.Fatalf("read balance: %v", err)
	}
	if math.Abs(balance-6) > 1e-9 {
		t.Fatalf("balance after processing = %v; want 6", balance)
	}

	if _, err := withdrawals.Process(ctx, res.Request.ID, domain.WithdrawalProcessed, ""); !errors.Is(err, service.ErrAlreadyActioned) {
		t.Fatalf("expected ErrAlreadyActioned, got %v", err)
	}
}

func TestWithdrawal_ProcessUnknownRequest(t *testing.T) {
	db := testPool(t)
	seedTokenomics(t, db)

	withdrawals := service.NewWithdrawalService(db, testLockTimeout)
	if _, err := withdrawals.Process(context.Background(), 424242, domain.WithdrawalProcessed, ""); !errors.Is(err, service.ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
	if _, err := withdrawals.Process(context.Background(), 1, "frozen", ""); !errors.Is(err, service.ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}
}
