package domain

import "time"

// ReferralBonusIncrement is added to a referrer's personal rate bonus for
// every successful referred registration. Accrual is unbounded.
const ReferralBonusIncrement = 0.01

// Referral records one referrer -> referred relationship. ReferredID is
// unique system-wide: a user can be referred at most once, ever.
type Referral struct {
	ID         int64     `db:"id" json:"id"`
	ReferrerID int64     `db:"referrer_id" json:"referrer_id"`
	ReferredID int64     `db:"referred_id" json:"referred_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
