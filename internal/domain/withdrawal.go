package domain

import "time"

type WithdrawalStatus string

const (
	WithdrawalPending   WithdrawalStatus = "pending"
	WithdrawalProcessed WithdrawalStatus = "processed"
	WithdrawalRejected  WithdrawalStatus = "rejected"
)

// CommissionRate is the platform cut taken from every withdrawal.
const CommissionRate = 0.40

// WithdrawalRequest freezes the valuation of a withdrawal at request time.
// Later changes to the global price or the user's bonus never touch it.
// Status and ProcessedAt/AdminNotes are written exactly once by the admin
// transition; everything else is immutable after creation.
type WithdrawalRequest struct {
	ID                 int64            `db:"id" json:"id"`
	UserID             int64            `db:"user_id" json:"user_id"`
	TokensToWithdraw   float64          `db:"tokens_to_withdraw" json:"tokens_to_withdraw"`
	GlobalPriceAt      float64          `db:"global_price_at_withdrawal" json:"global_price_at_withdrawal"`
	PersonalBonusAt    float64          `db:"personal_bonus_at_withdrawal" json:"personal_bonus_at_withdrawal"`
	TotalUSDValue      float64          `db:"total_usd_value" json:"total_usd_value"`
	CommissionRate     float64          `db:"commission_rate" json:"commission_rate"`
	CommissionUSD      float64          `db:"commission_usd" json:"commission_usd"`
	AmountToUserUSD    float64          `db:"amount_to_user_usd" json:"amount_to_user_usd"`
	PaymentMethod      string           `db:"payment_method" json:"payment_method"`
	PaymentDetails     string           `db:"payment_details" json:"payment_details"`
	Status             WithdrawalStatus `db:"status" json:"status"`
	RequestedAt        time.Time        `db:"requested_at" json:"requested_at"`
	ProcessedAt        *time.Time       `db:"processed_at" json:"processed_at,omitempty"`
	AdminNotes         string           `db:"admin_notes" json:"admin_notes,omitempty"`
}

// Quote is the USD breakdown of a withdrawal at a fixed effective rate.
type Quote struct {
	EffectiveRate float64 `json:"effective_rate"`
	TotalUSD      float64 `json:"total_usd"`
	CommissionUSD float64 `json:"commission_usd"`
	AmountToUser  float64 `json:"amount_to_user_usd"`
}

// QuoteWithdrawal prices tokens at the given global price plus the user's
// personal bonus and splits commission from payout.
func QuoteWithdrawal(tokens, globalPrice, personalBonus float64) Quote {
	rate := globalPrice + personalBonus
	total := tokens * rate
	commission := total * CommissionRate
	return Quote{
		EffectiveRate: rate,
		TotalUSD:      total,
		CommissionUSD: commission,
		AmountToUser:  total - commission,
	}
}
