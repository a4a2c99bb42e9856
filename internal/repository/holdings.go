package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kjannette/trahn-prices/internal/models"
)

// HoldingsRepo reads positions from the ledger's holdings table. The ledger
// owns writes; Upsert exists for seeding and tests.
type HoldingsRepo struct {
	pool *pgxpool.Pool
}

func NewHoldingsRepo(pool *pgxpool.Pool) *HoldingsRepo {
	return &HoldingsRepo{pool: pool}
}

func (r *HoldingsRepo) ByUser(ctx context.Context, userID string) ([]models.HoldingWeight, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT symbol, asset_type, quantity FROM holdings
		  WHERE user_id = $1 AND quantity > 0
		  ORDER BY symbol ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("holdings for %s: %w", userID, err)
	}
	defer rows.Close()

	var out []models.HoldingWeight
	for rows.Next() {
		var h models.HoldingWeight
		var t string
		if err := rows.Scan(&h.Symbol, &t, &h.Quantity); err != nil {
			return nil, err
		}
		h.Type = models.ParseAssetType(t)
		out = append(out, h)
	}
	return out, rows.Err()
}

// DistinctSymbols lists every symbol held by anyone, for cache warming.
func (r *HoldingsRepo) DistinctSymbols(ctx context.Context) ([]models.HoldingWeight, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT symbol, MIN(asset_type) FROM holdings
		  WHERE quantity > 0
		  GROUP BY symbol ORDER BY symbol ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("distinct held symbols: %w", err)
	}
	defer rows.Close()

	var out []models.HoldingWeight
	for rows.Next() {
		var h models.HoldingWeight
		var t string
		if err := rows.Scan(&h.Symbol, &t); err != nil {
			return nil, err
		}
		h.Type = models.ParseAssetType(t)
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *HoldingsRepo) Upsert(ctx context.Context, userID string, h models.HoldingWeight) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO holdings (user_id, symbol, asset_type, quantity)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, symbol)
		 DO UPDATE SET asset_type = EXCLUDED.asset_type, quantity = EXCLUDED.quantity, updated_at = NOW()`,
		userID, h.Symbol, string(h.Type), h.Quantity,
	)
	if err != nil {
		return fmt.Errorf("upsert holding %s/%s: %w", userID, h.Symbol, err)
	}
	return nil
}
