package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"solana-drc/internal/domain"
	"solana-drc/internal/storage/migrations"
	"solana-drc/internal/storage/postgres"
)

// setupTestDB creates a PostgreSQL container and applies the embedded
// migrations. Returns a cleanup function that must be called after tests
// complete.
func setupTestDB(t *testing.T) (*postgres.Pool, func()) {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	pool, err := postgres.NewPool(ctx, dsn)
	require.NoError(t, err, "failed to create pool")

	require.NoError(t, migrations.RunPostgresMigrations(ctx, pool),
		"failed to apply migrations")

	cleanup := func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

// seedUser inserts a user the foreign keys on coins and trades require.
func seedUser(t *testing.T, pool *postgres.Pool, wallet string) {
	t.Helper()

	store := postgres.NewUserStore(pool)
	err := store.Insert(context.Background(), &domain.User{
		WalletAddress: wallet,
		CreatedAt:     time.Now().UTC(),
	})
	require.NoError(t, err, "failed to seed user %s", wallet)
}

// seedCoin inserts a coin owned by creator.
func seedCoin(t *testing.T, pool *postgres.Pool, address, creator string) {
	t.Helper()

	store := postgres.NewCoinStore(pool)
	err := store.Insert(context.Background(), &domain.Coin{
		Address:   address,
		Name:      "Coin " + address,
		Ticker:    "TST",
		Creator:   creator,
		Decimals:  9,
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err, "failed to seed coin %s", address)
}
