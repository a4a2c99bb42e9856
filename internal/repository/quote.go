package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kjannette/trahn-prices/internal/models"
)

const snapshotColumns = `id, symbol, asset_type, cache_key, price, change, change_percent,
	source, fetched_at, trading_day, created_at`

// QuoteRepo stores every quote that came back from a provider.
type QuoteRepo struct {
	pool *pgxpool.Pool
}

func NewQuoteRepo(pool *pgxpool.Pool) *QuoteRepo {
	return &QuoteRepo{pool: pool}
}

// Record inserts one snapshot. cacheKey is the key the quote is cached
// under: the ticker for stocks, the coin id for crypto.
func (r *QuoteRepo) Record(ctx context.Context, cacheKey string, q models.PriceQuote, fetchedAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO quote_snapshots
		   (symbol, asset_type, cache_key, price, change, change_percent, source, fetched_at, trading_day)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		q.Symbol, string(q.Type), cacheKey, q.Price, q.Change, q.ChangePercent, q.Source,
		fetchedAt, TradingDay(fetchedAt, q.Type),
	)
	if err != nil {
		return fmt.Errorf("insert snapshot %s: %w", cacheKey, err)
	}
	return nil
}

// LatestSince returns the newest snapshot per (type, cache key) fetched at or
// after since.
func (r *QuoteRepo) LatestSince(ctx context.Context, since time.Time) ([]models.QuoteSnapshot, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT ON (asset_type, cache_key) `+snapshotColumns+`
		   FROM quote_snapshots
		  WHERE fetched_at >= $1
		  ORDER BY asset_type, cache_key, fetched_at DESC`,
		since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSnapshots(rows)
}

// Prune deletes snapshots fetched before cutoff.
func (r *QuoteRepo) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM quote_snapshots WHERE fetched_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// --- scan helpers ---

type scannable interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scannable) (*models.QuoteSnapshot, error) {
	var s models.QuoteSnapshot
	var t string
	var td time.Time
	err := row.Scan(&s.ID, &s.Symbol, &t, &s.CacheKey, &s.Price, &s.Change, &s.ChangePercent,
		&s.Source, &s.FetchedAt, &td, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	s.Type = models.AssetType(t)
	s.TradingDay = td.Format("2006-01-02")
	return &s, nil
}

type rowsIter interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func collectSnapshots(rows rowsIter) ([]models.QuoteSnapshot, error) {
	var out []models.QuoteSnapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}
