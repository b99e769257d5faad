package domain

import "time"

// PricePoint is one append-only entry in the token price history. Entries
// are never updated or deleted; the current price lives in global settings
// and this ledger is the audit trail behind it.
type PricePoint struct {
	ID        int64     `db:"id" json:"id"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
	PriceUSD  float64   `db:"price_usd" json:"price_usd"`
	Reason    string    `db:"reason" json:"reason"`
}
