package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ctchen222/portfolio-tracker/internal/api/models"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("repository.quote")

const (
	quotesKey   = "market:quotes"
	snapshotKey = "market:snapshot"
)

// QuoteRepository caches the market snapshot.
type QuoteRepository interface {
	SaveQuotes(ctx context.Context, quotes []models.Quote, ttl time.Duration) error
	FindQuote(ctx context.Context, symbol string) (*models.Quote, error)
	ListQuotes(ctx context.Context) ([]models.Quote, error)
}

type redisQuoteRepository struct {
	rdb *redis.Client
}

// NewQuoteRepository creates a new Redis-based QuoteRepository.
func NewQuoteRepository(rdb *redis.Client) QuoteRepository {
	return &redisQuoteRepository{rdb: rdb}
}

// SaveQuotes replaces the cached snapshot and sets its expiry.
func (r *redisQuoteRepository) SaveQuotes(ctx context.Context, quotes []models.Quote, ttl time.Duration) error {
	ctx, span := tracer.Start(ctx, "QuoteRepository.SaveQuotes", trace.WithAttributes(
		attribute.Int("quotes.count", len(quotes)),
	))
	defer span.End()

	snapshot, err := json.Marshal(quotes)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	fields := make(map[string]interface{}, len(quotes))
	for _, q := range quotes {
		data, err := json.Marshal(q)
		if err != nil {
			return fmt.Errorf("failed to marshal quote %s: %w", q.Symbol, err)
		}
		fields[q.Symbol] = data
	}

	pipe := r.rdb.TxPipeline()
	pipe.Del(ctx, quotesKey, snapshotKey)
	if len(fields) > 0 {
		pipe.HSet(ctx, quotesKey, fields)
		pipe.Expire(ctx, quotesKey, ttl)
		pipe.Set(ctx, snapshotKey, snapshot, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to save quotes in redis: %w", err)
	}
	return nil
}

// FindQuote returns the cached quote for symbol, or nil when it is not cached.
func (r *redisQuoteRepository) FindQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	ctx, span := tracer.Start(ctx, "QuoteRepository.FindQuote", trace.WithAttributes(
		attribute.String("quote.symbol", symbol),
	))
	defer span.End()

	data, err := r.rdb.HGet(ctx, quotesKey, symbol).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get quote from redis: %w", err)
	}

	var q models.Quote
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quote %s: %w", symbol, err)
	}
	return &q, nil
}

// ListQuotes returns the cached snapshot in the order it was saved. A nil
// slice means nothing is cached.
func (r *redisQuoteRepository) ListQuotes(ctx context.Context) ([]models.Quote, error) {
	ctx, span := tracer.Start(ctx, "QuoteRepository.ListQuotes")
	defer span.End()

	data, err := r.rdb.Get(ctx, snapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list quotes from redis: %w", err)
	}

	var quotes []models.Quote
	if err := json.Unmarshal(data, &quotes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return quotes, nil
}
