package market

import (
	"context"
	"log/slog"
	"time"

	"ctchen222/portfolio-tracker/internal/api/models"
	"ctchen222/portfolio-tracker/internal/repository"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("market")

// CachedFeed is a read-through cache in front of a source Feed. Cache
// failures are logged and the source is used directly.
type CachedFeed struct {
	source Feed
	quotes repository.QuoteRepository
	ttl    time.Duration
}

// NewCachedFeed wraps source with a cache kept in quotes for ttl.
func NewCachedFeed(source Feed, quotes repository.QuoteRepository, ttl time.Duration) *CachedFeed {
	return &CachedFeed{source: source, quotes: quotes, ttl: ttl}
}

// PriceOf implements PriceLookup.
func (f *CachedFeed) PriceOf(ctx context.Context, symbol string) (float64, bool, error) {
	symbol = NormalizeSymbol(symbol)
	ctx, span := tracer.Start(ctx, "CachedFeed.PriceOf", trace.WithAttributes(
		attribute.String("quote.symbol", symbol),
	))
	defer span.End()

	q, err := f.quotes.FindQuote(ctx, symbol)
	if err != nil {
		slog.WarnContext(ctx, "quote cache read failed, using source feed", "symbol", symbol, "error", err)
		return f.source.PriceOf(ctx, symbol)
	}
	if q != nil {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return q.Price, true, nil
	}

	span.SetAttributes(attribute.Bool("cache.hit", false))

	// A warm cache without the symbol means the source does not price it.
	cached, err := f.quotes.ListQuotes(ctx)
	if err != nil {
		slog.WarnContext(ctx, "quote cache read failed, using source feed", "symbol", symbol, "error", err)
		return f.source.PriceOf(ctx, symbol)
	}
	if len(cached) == 0 {
		span.SetAttributes(attribute.Bool("cache.refreshed", true))
		if _, err := f.refresh(ctx); err != nil {
			return 0, false, err
		}
	}
	return f.source.PriceOf(ctx, symbol)
}

// Snapshot implements Feed.
func (f *CachedFeed) Snapshot(ctx context.Context) ([]models.Quote, error) {
	ctx, span := tracer.Start(ctx, "CachedFeed.Snapshot")
	defer span.End()

	quotes, err := f.quotes.ListQuotes(ctx)
	if err != nil {
		slog.WarnContext(ctx, "quote cache read failed, using source feed", "error", err)
		return f.source.Snapshot(ctx)
	}
	if len(quotes) > 0 {
		return quotes, nil
	}
	return f.refresh(ctx)
}

// refresh reloads the cache from the source and returns the fresh snapshot.
func (f *CachedFeed) refresh(ctx context.Context) ([]models.Quote, error) {
	quotes, err := f.source.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if err := f.quotes.SaveQuotes(ctx, quotes, f.ttl); err != nil {
		slog.WarnContext(ctx, "quote cache write failed", "error", err)
	}
	return quotes, nil
}
