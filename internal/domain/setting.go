package domain

import "time"

// Global setting names. These four are seeded at first boot and are the
// single source of truth for the pricing formula.
const (
	SettingInitialTokenPrice     = "initial_token_price_usd"
	SettingPriceIncrementPerUser = "price_increment_per_user_usd"
	SettingTotalUsers            = "total_users"
	SettingCurrentTokenPrice     = "current_global_token_price_usd"
)

// GlobalSetting maps a name to exactly one typed value slot. Reads are
// strictly typed: a float read never coerces from the int or string slot.
type GlobalSetting struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"setting_name" json:"setting_name"`
	FloatValue  *float64  `db:"setting_value_float" json:"setting_value_float,omitempty"`
	IntValue    *int64    `db:"setting_value_int" json:"setting_value_int,omitempty"`
	StringValue *string   `db:"setting_value_str" json:"setting_value_str,omitempty"`
	LastUpdated time.Time `db:"last_updated" json:"last_updated"`
}
