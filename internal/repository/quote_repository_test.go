package repository

import (
	"context"
	"testing"
	"time"

	"ctchen222/portfolio-tracker/internal/api/models"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	uri, err := ctr.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)

	client := redis.NewClient(opts)
	t.Cleanup(func() { client.Close() })
	return client
}

var testQuotes = []models.Quote{
	{Symbol: "MSFT", Name: "Microsoft Corp.", Price: 325.42, Change: 1.2},
	{Symbol: "AAPL", Name: "Apple Inc.", Price: 182.63, Change: 2.4},
}

func TestQuoteRepository(t *testing.T) {
	rdb := newTestRedis(t)
	repo := NewQuoteRepository(rdb)
	ctx := context.Background()

	t.Run("empty cache", func(t *testing.T) {
		q, err := repo.FindQuote(ctx, "AAPL")
		require.NoError(t, err)
		assert.Nil(t, q)

		quotes, err := repo.ListQuotes(ctx)
		require.NoError(t, err)
		assert.Empty(t, quotes)
	})

	t.Run("save and read back", func(t *testing.T) {
		require.NoError(t, repo.SaveQuotes(ctx, testQuotes, time.Minute))

		q, err := repo.FindQuote(ctx, "AAPL")
		require.NoError(t, err)
		require.NotNil(t, q)
		assert.Equal(t, testQuotes[1], *q)

		missing, err := repo.FindQuote(ctx, "ZZZZ")
		require.NoError(t, err)
		assert.Nil(t, missing)

		quotes, err := repo.ListQuotes(ctx)
		require.NoError(t, err)
		assert.Equal(t, testQuotes, quotes, "snapshot order must be preserved")

		ttl, err := rdb.TTL(ctx, quotesKey).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
	})

	t.Run("save replaces previous snapshot", func(t *testing.T) {
		require.NoError(t, repo.SaveQuotes(ctx, testQuotes[:1], time.Minute))

		q, err := repo.FindQuote(ctx, "AAPL")
		require.NoError(t, err)
		assert.Nil(t, q)
	})
}
