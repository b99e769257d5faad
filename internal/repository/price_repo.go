package repository

import (
	"context"
	"time"

	"criptomain/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PriceHistoryRepository is the append-only price ledger. Entries are only
// ever inserted; the current price is cached in global settings.
type PriceHistoryRepository struct {
	db *pgxpool.Pool
}

func NewPriceHistoryRepository(db *pgxpool.Pool) *PriceHistoryRepository {
	return &PriceHistoryRepository{db: db}
}

// RecordWithTx appends a price point inside an open transaction so it
// commits together with the settings write that it audits.
func (r *PriceHistoryRepository) RecordWithTx(ctx context.Context, tx pgx.Tx, price float64, reason string) (*domain.PricePoint, error) {
	p := &domain.PricePoint{PriceUSD: price, Reason: reason}
	err := tx.QueryRow(ctx,
		`INSERT INTO token_price_history (price_usd, reason) VALUES ($1, $2) RETURNING id, timestamp`,
		price, reason,
	).Scan(&p.ID, &p.Timestamp)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// QuerySince returns entries with timestamp >= since, ascending, capped at
// limit.
func (r *PriceHistoryRepository) QuerySince(ctx context.Context, since time.Time, limit int) ([]domain.PricePoint, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, timestamp, price_usd, reason
		 FROM token_price_history
		 WHERE timestamp >= $1
		 ORDER BY timestamp ASC
		 LIMIT $2`,
		since, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPricePoints(rows)
}

// Latest returns the newest entries, newest-first, for the admin
// tokenomics view.
func (r *PriceHistoryRepository) Latest(ctx context.Context, limit int) ([]domain.PricePoint, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, timestamp, price_usd, reason
		 FROM token_price_history
		 ORDER BY timestamp DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPricePoints(rows)
}

func scanPricePoints(rows pgx.Rows) ([]domain.PricePoint, error) {
	var points []domain.PricePoint
	for rows.Next() {
		var p domain.PricePoint
		if err := rows.Scan(&p.ID, &p.Timestamp, &p.PriceUSD, &p.Reason); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
