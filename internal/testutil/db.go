package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/kjannette/trahn-prices/internal/db"
)

// SetupPool connects to TEST_DATABASE_URL with the production pool settings
// and applies the schema. Without a test database the test is skipped.
func SetupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	_ = godotenv.Load("../../.env")

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, dsn, db.PoolConfig{MaxConns: 4})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := db.Migrate(ctx, pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return pool
}

// DeleteAfter removes rows created by a test once it finishes.
func DeleteAfter(t *testing.T, pool *pgxpool.Pool, sql string, args ...any) {
	t.Helper()
	t.Cleanup(func() {
		if _, err := pool.Exec(context.Background(), sql, args...); err != nil {
			t.Logf("cleanup %q: %v", sql, err)
		}
	})
}
