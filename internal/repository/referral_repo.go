package repository

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"criptomain/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReferralRepository struct {
	db *pgxpool.Pool
}

func NewReferralRepository(db *pgxpool.Pool) *ReferralRepository {
	return &ReferralRepository{db: db}
}

// GenerateReferralCode returns a fresh opaque referral token.
func GenerateReferralCode() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		// crypto/rand failing means the platform entropy source is broken;
		// an account must not be issued a guessable code.
		panic(err)
	}
	return hex.EncodeToString(bytes)
}

// CreateWithTx records a referrer -> referred link inside the registration
// transaction. The unique constraint on referred_id enforces at-most-once.
func (r *ReferralRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, referrerID, referredID int64) (*domain.Referral, error) {
	ref := &domain.Referral{ReferrerID: referrerID, ReferredID: referredID}
	err := tx.QueryRow(ctx,
		`INSERT INTO referrals (referrer_id, referred_id)
		 VALUES ($1, $2)
		 RETURNING id, created_at`,
		referrerID, referredID,
	).Scan(&ref.ID, &ref.CreatedAt)
	if err != nil {
		return nil, err
	}
	return ref, nil
}

func (r *ReferralRepository) GetByReferrer(ctx context.Context, referrerID int64) ([]domain.Referral, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, referrer_id, referred_id, created_at
		 FROM referrals
		 WHERE referrer_id = $1
		 ORDER BY created_at DESC`,
		referrerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var referrals []domain.Referral
	for rows.Next() {
		var ref domain.Referral
		if err := rows.Scan(&ref.ID, &ref.ReferrerID, &ref.ReferredID, &ref.CreatedAt); err != nil {
			return nil, err
		}
		referrals = append(referrals, ref)
	}
	return referrals, rows.Err()
}

// TopReferrer is one row of the admin referral report.
type TopReferrer struct {
	UserID            int64   `json:"user_id"`
	Username          string  `json:"username"`
	Email             string  `json:"email"`
	PersonalRateBonus float64 `json:"personal_rate_bonus"`
	ReferralCount     int64   `json:"referral_count"`
}

// ReferralReport aggregates the referral ledger for the admin surface.
type ReferralReport struct {
	TotalReferrals    int64         `json:"total_referrals"`
	NumberOfReferrers int64         `json:"number_of_referrers"`
	AvgPerReferrer    float64       `json:"average_referrals_per_referrer"`
	TopReferrers      []TopReferrer `json:"top_referrers"`
}

// GetReport builds the referral rollup: totals, distinct referrers and the
// most productive referrers with their accrued bonuses.
func (r *ReferralRepository) GetReport(ctx context.Context, limit int) (*ReferralReport, error) {
	if limit <= 0 {
		limit = 15
	}
	report := &ReferralReport{}

	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT referrer_id) FROM referrals`,
	).Scan(&report.TotalReferrals, &report.NumberOfReferrers)
	if err != nil {
		return nil, err
	}
	if report.NumberOfReferrers > 0 {
		report.AvgPerReferrer = float64(report.TotalReferrals) / float64(report.NumberOfReferrers)
	}

	rows, err := r.db.Query(ctx,
		`SELECT u.id, u.username, u.email, u.personal_rate_bonus, COUNT(r.id) AS referral_count
		 FROM users u
		 JOIN referrals r ON u.id = r.referrer_id
		 GROUP BY u.id, u.username, u.email, u.personal_rate_bonus
		 ORDER BY COUNT(r.id) DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var t TopReferrer
		if err := rows.Scan(&t.UserID, &t.Username, &t.Email, &t.PersonalRateBonus, &t.ReferralCount); err != nil {
			return nil, err
		}
		report.TopReferrers = append(report.TopReferrers, t)
	}
	return report, rows.Err()
}
