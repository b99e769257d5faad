package repository

import (
	"context"
	"errors"
	"time"

	"criptomain/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrUserNotFound = errors.New("user not found")

const userColumns = `id, username, email, password_hash, token_balance, taps_for_next_token,
	COALESCE(referral_code, ''), referred_by, personal_rate_bonus, is_admin, created_at, last_login_at,
	COALESCE(display_name, ''), COALESCE(phone_number, ''), COALESCE(payment_address, ''),
	music_enabled, selected_music_track, selected_theme, selected_click_animation, sound_effects_enabled`

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.TokenBalance, &u.TapsForNextToken,
		&u.ReferralCode, &u.ReferredBy, &u.PersonalRateBonus, &u.IsAdmin, &u.CreatedAt, &u.LastLoginAt,
		&u.Settings.DisplayName, &u.Settings.PhoneNumber, &u.Settings.PaymentAddress,
		&u.Settings.MusicEnabled, &u.Settings.SelectedMusicTrack, &u.Settings.SelectedTheme,
		&u.Settings.SelectedClickAnimation, &u.Settings.SoundEffectsEnabled,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (r *UserRepository) GetByReferralCode(ctx context.Context, code string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE referral_code = $1`, code))
}

// CreateWithTx inserts a user inside an open transaction so registration
// can link referrals and reprice atomically.
func (r *UserRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, u *domain.User) error {
	return tx.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, referral_code, is_admin, display_name)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		u.Username, u.Email, u.PasswordHash, u.ReferralCode, u.IsAdmin, u.Settings.DisplayName,
	).Scan(&u.ID, &u.CreatedAt)
}

// GetIDByReferralCodeWithTx resolves a referral code to its owner inside
// the registration transaction.
func (r *UserRepository) GetIDByReferralCodeWithTx(ctx context.Context, tx pgx.Tx, code string) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `SELECT id FROM users WHERE referral_code = $1`, code).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	return id, err
}

// LockForUpdate reads a user's balance state under FOR UPDATE so that
// concurrent taps and withdrawals for the same user serialize.
func (r *UserRepository) LockForUpdate(ctx context.Context, tx pgx.Tx, userID int64) (balance float64, taps int, bonus float64, err error) {
	err = tx.QueryRow(ctx,
		`SELECT token_balance, taps_for_next_token, personal_rate_bonus FROM users WHERE id = $1 FOR UPDATE`,
		userID,
	).Scan(&balance, &taps, &bonus)
	if errors.Is(err, pgx.ErrNoRows) {
		err = ErrUserNotFound
	}
	return balance, taps, bonus, err
}

// UpdateTapState writes back the settled tap counter and balance.
func (r *UserRepository) UpdateTapState(ctx context.Context, tx pgx.Tx, userID int64, balance float64, taps int) error {
	_, err := tx.Exec(ctx,
		`UPDATE users SET token_balance = $1, taps_for_next_token = $2 WHERE id = $3`,
		balance, taps, userID,
	)
	return err
}

// DebitWithTx removes tokens from a balance, guarded against going
// negative at the SQL level as well.
func (r *UserRepository) DebitWithTx(ctx context.Context, tx pgx.Tx, userID int64, tokens float64) (newBalance float64, err error) {
	err = tx.QueryRow(ctx,
		`UPDATE users SET token_balance = token_balance - $1
		 WHERE id = $2 AND token_balance >= $1
		 RETURNING token_balance`,
		tokens, userID,
	).Scan(&newBalance)
	if errors.Is(err, pgx.ErrNoRows) {
		err = ErrUserNotFound
	}
	return newBalance, err
}

// CreditWithTx returns tokens to a balance.
func (r *UserRepository) CreditWithTx(ctx context.Context, tx pgx.Tx, userID int64, tokens float64) (newBalance float64, err error) {
	err = tx.QueryRow(ctx,
		`UPDATE users SET token_balance = token_balance + $1 WHERE id = $2 RETURNING token_balance`,
		tokens, userID,
	).Scan(&newBalance)
	if errors.Is(err, pgx.ErrNoRows) {
		err = ErrUserNotFound
	}
	return newBalance, err
}

// AddRateBonusWithTx bumps a referrer's personal rate bonus.
func (r *UserRepository) AddRateBonusWithTx(ctx context.Context, tx pgx.Tx, userID int64, delta float64) error {
	result, err := tx.Exec(ctx,
		`UPDATE users SET personal_rate_bonus = personal_rate_bonus + $1 WHERE id = $2`,
		delta, userID,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetReferredByWithTx links the referred-back-reference, set at most once.
func (r *UserRepository) SetReferredByWithTx(ctx context.Context, tx pgx.Tx, userID, referrerID int64) error {
	_, err := tx.Exec(ctx,
		`UPDATE users SET referred_by = $1 WHERE id = $2 AND referred_by IS NULL`,
		referrerID, userID,
	)
	return err
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET last_login_at = $1 WHERE id = $2`, time.Now().UTC(), userID)
	return err
}

func (r *UserRepository) UpdateSettings(ctx context.Context, userID int64, s domain.UserSettings) error {
	result, err := r.db.Exec(ctx,
		`UPDATE users SET display_name = $1, phone_number = $2, payment_address = $3,
		 music_enabled = $4, selected_music_track = $5, selected_theme = $6,
		 selected_click_animation = $7, sound_effects_enabled = $8
		 WHERE id = $9`,
		s.DisplayName, s.PhoneNumber, s.PaymentAddress,
		s.MusicEnabled, s.SelectedMusicTrack, s.SelectedTheme,
		s.SelectedClickAnimation, s.SoundEffectsEnabled,
		userID,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Search lists users newest-first with an optional username/email filter.
func (r *UserRepository) Search(ctx context.Context, search string, limit, offset int) ([]domain.User, error) {
	if limit <= 0 {
		limit = 15
	}
	pattern := "%" + search + "%"
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE ($1 = '%%' OR username ILIKE $1 OR email ILIKE $1)
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		pattern, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}
