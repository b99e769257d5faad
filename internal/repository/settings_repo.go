package repository

import (
	"context"
	"errors"

	"criptomain/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrUnsupportedSettingType means a caller tried to store a value type the
// settings table has no slot for. This is a programming error, not user
// input.
var ErrUnsupportedSettingType = errors.New("unsupported type for global setting")

// SettingsRepository is the process-wide typed key/value store behind the
// tokenomics configuration. Reads are strictly typed: asking for a float
// from a setting that holds no float yields the caller's default.
type SettingsRepository struct {
	db *pgxpool.Pool
}

func NewSettingsRepository(db *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) GetFloat(ctx context.Context, name string, def float64) (float64, error) {
	return getFloat(ctx, r.db, name, def)
}

func (r *SettingsRepository) GetInt(ctx context.Context, name string, def int64) (int64, error) {
	return getInt(ctx, r.db, name, def)
}

func (r *SettingsRepository) GetString(ctx context.Context, name string, def string) (string, error) {
	var v *string
	err := r.db.QueryRow(ctx,
		`SELECT setting_value_str FROM global_settings WHERE setting_name = $1`, name,
	).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && v == nil) {
		return def, nil
	}
	if err != nil {
		return def, err
	}
	return *v, nil
}

// GetFloatWithTx reads a float setting inside an open transaction.
func (r *SettingsRepository) GetFloatWithTx(ctx context.Context, tx pgx.Tx, name string, def float64) (float64, error) {
	return getFloat(ctx, tx, name, def)
}

// LockIntWithTx reads an int setting under FOR UPDATE. Locking the
// total_users row is what serializes concurrent registrations.
func (r *SettingsRepository) LockIntWithTx(ctx context.Context, tx pgx.Tx, name string, def int64) (int64, error) {
	var v *int64
	err := tx.QueryRow(ctx,
		`SELECT setting_value_int FROM global_settings WHERE setting_name = $1 FOR UPDATE`, name,
	).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && v == nil) {
		return def, nil
	}
	if err != nil {
		return def, err
	}
	return *v, nil
}

// Set upserts a setting, inferring the value slot from the runtime type.
// The write is durable once Set returns.
func (r *SettingsRepository) Set(ctx context.Context, name string, value any) error {
	sql, err := upsertFor(value)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, sql, name, value)
	return err
}

// SetWithTx upserts a setting inside an open transaction.
func (r *SettingsRepository) SetWithTx(ctx context.Context, tx pgx.Tx, name string, value any) error {
	sql, err := upsertFor(value)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, sql, name, value)
	return err
}

// Count reports how many settings exist; zero gates first-boot seeding.
func (r *SettingsRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM global_settings`).Scan(&n)
	return n, err
}

// CountWithTx reads the row count inside an open transaction, so the
// seeding gate and the seed itself can share one atomic unit.
func (r *SettingsRepository) CountWithTx(ctx context.Context, tx pgx.Tx) (int64, error) {
	var n int64
	err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM global_settings`).Scan(&n)
	return n, err
}

// GetAll lists every setting for the admin tokenomics view.
func (r *SettingsRepository) GetAll(ctx context.Context) ([]domain.GlobalSetting, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, setting_name, setting_value_float, setting_value_int, setting_value_str, last_updated
		 FROM global_settings ORDER BY setting_name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []domain.GlobalSetting
	for rows.Next() {
		var s domain.GlobalSetting
		if err := rows.Scan(&s.ID, &s.Name, &s.FloatValue, &s.IntValue, &s.StringValue, &s.LastUpdated); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getFloat(ctx context.Context, q rowQuerier, name string, def float64) (float64, error) {
	var v *float64
	err := q.QueryRow(ctx,
		`SELECT setting_value_float FROM global_settings WHERE setting_name = $1`, name,
	).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && v == nil) {
		return def, nil
	}
	if err != nil {
		return def, err
	}
	return *v, nil
}

func getInt(ctx context.Context, q rowQuerier, name string, def int64) (int64, error) {
	var v *int64
	err := q.QueryRow(ctx,
		`SELECT setting_value_int FROM global_settings WHERE setting_name = $1`, name,
	).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && v == nil) {
		return def, nil
	}
	if err != nil {
		return def, err
	}
	return *v, nil
}

// upsertFor picks the value slot for the runtime type of value. A write to
// one slot clears the others so a setting never holds two types at once.
func upsertFor(value any) (string, error) {
	var column string
	switch value.(type) {
	case float64, float32:
		column = "setting_value_float"
	case int, int32, int64:
		column = "setting_value_int"
	case string:
		column = "setting_value_str"
	default:
		return "", ErrUnsupportedSettingType
	}

	return `INSERT INTO global_settings (setting_name, ` + column + `, last_updated)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (setting_name) DO UPDATE SET
		   setting_value_float = CASE WHEN '` + column + `' = 'setting_value_float' THEN EXCLUDED.setting_value_float ELSE NULL END,
		   setting_value_int   = CASE WHEN '` + column + `' = 'setting_value_int' THEN EXCLUDED.setting_value_int ELSE NULL END,
		   setting_value_str   = CASE WHEN '` + column + `' = 'setting_value_str' THEN EXCLUDED.setting_value_str ELSE NULL END,
		   last_updated = NOW()`, nil
}
