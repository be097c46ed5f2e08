// Package market provides the price lookup used to value holdings and the
// market data snapshot served to clients. Prices are static; the Feed
// interface is where a live source would plug in.
package market

import (
	"context"
	"strings"

	"ctchen222/portfolio-tracker/internal/api/models"
)

// PriceLookup resolves the current price of a symbol. ok is false when the
// symbol is unknown to the feed.
type PriceLookup interface {
	PriceOf(ctx context.Context, symbol string) (price float64, ok bool, err error)
}

// Feed is a PriceLookup that can also list its whole snapshot.
type Feed interface {
	PriceLookup
	Snapshot(ctx context.Context) ([]models.Quote, error)
}

// DefaultQuotes is the fixed snapshot served when no live feed is configured.
func DefaultQuotes() []models.Quote {
	return []models.Quote{
		{Symbol: "AAPL", Name: "Apple Inc.", Price: 182.63, Change: 2.4},
		{Symbol: "MSFT", Name: "Microsoft Corp.", Price: 325.42, Change: 1.2},
		{Symbol: "GOOGL", Name: "Alphabet Inc.", Price: 142.65, Change: 0.8},
		{Symbol: "AMZN", Name: "Amazon.com Inc.", Price: 152.33, Change: -0.5},
		{Symbol: "TSLA", Name: "Tesla Inc.", Price: 174.50, Change: -3.2},
		{Symbol: "META", Name: "Meta Platforms Inc.", Price: 347.22, Change: 1.7},
		{Symbol: "NVDA", Name: "NVIDIA Corp.", Price: 475.38, Change: 5.2},
		{Symbol: "BRK.B", Name: "Berkshire Hathaway Inc.", Price: 408.15, Change: 0.3},
		{Symbol: "JPM", Name: "JPMorgan Chase & Co.", Price: 183.27, Change: -0.2},
		{Symbol: "V", Name: "Visa Inc.", Price: 235.45, Change: 0.6},
	}
}

// StaticFeed serves a fixed list of quotes.
type StaticFeed struct {
	quotes []models.Quote
	index  map[string]models.Quote
}

// NewStaticFeed creates a feed over quotes; with no arguments it serves
// DefaultQuotes.
func NewStaticFeed(quotes ...models.Quote) *StaticFeed {
	if len(quotes) == 0 {
		quotes = DefaultQuotes()
	}
	index := make(map[string]models.Quote, len(quotes))
	for _, q := range quotes {
		index[NormalizeSymbol(q.Symbol)] = q
	}
	return &StaticFeed{quotes: quotes, index: index}
}

// PriceOf implements PriceLookup.
func (f *StaticFeed) PriceOf(_ context.Context, symbol string) (float64, bool, error) {
	q, ok := f.index[NormalizeSymbol(symbol)]
	return q.Price, ok, nil
}

// Snapshot returns a copy of the quotes in their configured order.
func (f *StaticFeed) Snapshot(context.Context) ([]models.Quote, error) {
	out := make([]models.Quote, len(f.quotes))
	copy(out, f.quotes)
	return out, nil
}

// NormalizeSymbol trims and upper-cases a ticker.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
