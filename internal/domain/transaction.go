package domain

import "time"

// Transaction is one entry in the balance audit trail. Every token credit
// or debit (tap earnings, withdrawal escrow, rejection refunds) records a
// signed amount here inside the same database transaction that moved the
// balance.
type Transaction struct {
	ID        int64                  `db:"id" json:"id"`
	UserID    int64                  `db:"user_id" json:"user_id"`
	Type      string                 `db:"type" json:"type"`
	Amount    float64                `db:"amount" json:"amount"`
	Meta      map[string]interface{} `db:"meta" json:"meta,omitempty"`
	CreatedAt time.Time              `db:"created_at" json:"created_at"`
}

// Transaction types.
const (
	TxTapReward        = "tap_reward"
	TxWithdrawalEscrow = "withdrawal_escrow"
	TxWithdrawalRefund = "withdrawal_refund"
)
