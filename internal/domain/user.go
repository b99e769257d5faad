package domain

import "time"

type User struct {
	ID                int64      `db:"id" json:"id"`
	Username          string     `db:"username" json:"username"`
	Email             string     `db:"email" json:"email"`
	PasswordHash      string     `db:"password_hash" json:"-"`
	TokenBalance      float64    `db:"token_balance" json:"token_balance"`
	TapsForNextToken  int        `db:"taps_for_next_token" json:"taps_for_next_token"`
	ReferralCode      string     `db:"referral_code" json:"referral_code"`
	ReferredBy        *int64     `db:"referred_by" json:"referred_by,omitempty"`
	PersonalRateBonus float64    `db:"personal_rate_bonus" json:"personal_rate_bonus"`
	IsAdmin           bool       `db:"is_admin" json:"is_admin"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	LastLoginAt       *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`

	Settings UserSettings `json:"settings"`
}

// UserSettings holds per-user presentation preferences returned with the
// game state so the frontend can restore its look without extra calls.
type UserSettings struct {
	DisplayName            string `db:"display_name" json:"display_name"`
	PhoneNumber            string `db:"phone_number" json:"phone_number"`
	PaymentAddress         string `db:"payment_address" json:"payment_address"`
	MusicEnabled           bool   `db:"music_enabled" json:"music_enabled"`
	SelectedMusicTrack     string `db:"selected_music_track" json:"selected_music_track"`
	SelectedTheme          string `db:"selected_theme" json:"selected_theme"`
	SelectedClickAnimation string `db:"selected_click_animation" json:"selected_click_animation"`
	SoundEffectsEnabled    bool   `db:"sound_effects_enabled" json:"sound_effects_enabled"`
}
