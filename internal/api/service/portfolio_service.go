package service

import (
	"context"
	"log/slog"
	"strings"

	"ctchen222/portfolio-tracker/internal/api/models"
	"ctchen222/portfolio-tracker/internal/api/repository"
	"ctchen222/portfolio-tracker/internal/market"
	"ctchen222/portfolio-tracker/internal/position"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

var meter = otel.Meter("api.service")

// PortfolioService defines the interface for portfolio business logic.
type PortfolioService interface {
	Holdings(ctx context.Context, userID int64) ([]models.Holding, error)
	Summary(ctx context.Context, userID int64) (*models.Summary, error)
	Buy(ctx context.Context, userID int64, req *models.AddStockRequest) (*models.Position, error)
	Sell(ctx context.Context, userID int64, req *models.RemoveStockRequest) (*models.Position, error)
}

type portfolioService struct {
	repo   repository.PortfolioRepository
	prices market.PriceLookup
	locks  *position.KeyedMutex
	trades metric.Int64Counter
}

// NewPortfolioService creates a new PortfolioService pricing holdings with
// prices.
func NewPortfolioService(repo repository.PortfolioRepository, prices market.PriceLookup) PortfolioService {
	trades, err := meter.Int64Counter("portfolio.trades",
		metric.WithDescription("Number of applied buy and sell operations"),
		metric.WithUnit("{trade}"),
	)
	if err != nil {
		slog.Warn("failed to create trade counter", "error", err)
		trades, _ = noop.NewMeterProvider().Meter("api.service").Int64Counter("portfolio.trades")
	}

	return &portfolioService{
		repo:   repo,
		prices: prices,
		locks:  position.NewKeyedMutex(),
		trades: trades,
	}
}

// Holdings returns the positions of userID that have a known market price,
// each joined with that price. Positions without a quote are left out.
func (s *portfolioService) Holdings(ctx context.Context, userID int64) ([]models.Holding, error) {
	ctx, span := tracer.Start(ctx, "PortfolioService.Holdings", trace.WithAttributes(
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	positions, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	holdings := make([]models.Holding, 0, len(positions))
	for _, p := range positions {
		price, ok, err := s.prices.PriceOf(ctx, p.Symbol)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		holdings = append(holdings, models.Holding{
			Symbol:       p.Symbol,
			Name:         p.Name,
			Shares:       p.Shares,
			AvgPrice:     p.AvgPrice,
			CurrentPrice: price,
		})
	}
	span.SetAttributes(attribute.Int("portfolio.holdings", len(holdings)))
	return holdings, nil
}

// Summary totals the priced holdings of userID.
func (s *portfolioService) Summary(ctx context.Context, userID int64) (*models.Summary, error) {
	holdings, err := s.Holdings(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Summarize(holdings), nil
}

// Buy adds a lot to the position of userID in req.Symbol.
func (s *portfolioService) Buy(ctx context.Context, userID int64, req *models.AddStockRequest) (*models.Position, error) {
	symbol := market.NormalizeSymbol(req.Symbol)
	name := strings.TrimSpace(req.Name)

	ctx, span := tracer.Start(ctx, "PortfolioService.Buy", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.String("position.symbol", symbol),
	))
	defer span.End()

	var price float64
	if req.AvgPrice != nil {
		price = *req.AvgPrice
	}

	unlock := s.locks.Lock(position.Key(userID, symbol))
	defer unlock()

	pos, err := s.repo.Apply(ctx, userID, symbol, func(existing *models.Position) (*models.Position, error) {
		next, err := position.ApplyBuy(existing, userID, symbol, name, req.Shares, price)
		if err != nil {
			return nil, err
		}
		return &next, nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.trades.Add(ctx, 1, metric.WithAttributes(attribute.String("side", "buy")))
	slog.InfoContext(ctx, "position bought",
		"user_id", userID, "symbol", symbol, "shares", req.Shares, "price", price)
	return pos, nil
}

// Sell removes shares from the position of userID in req.Symbol. The
// returned position is nil when the whole position was sold.
func (s *portfolioService) Sell(ctx context.Context, userID int64, req *models.RemoveStockRequest) (*models.Position, error) {
	symbol := market.NormalizeSymbol(req.Symbol)

	ctx, span := tracer.Start(ctx, "PortfolioService.Sell", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.String("position.symbol", symbol),
	))
	defer span.End()

	unlock := s.locks.Lock(position.Key(userID, symbol))
	defer unlock()

	pos, err := s.repo.Apply(ctx, userID, symbol, func(existing *models.Position) (*models.Position, error) {
		outcome, err := position.ApplySell(existing, req.Shares)
		if err != nil {
			return nil, err
		}
		return outcome.Position, nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.trades.Add(ctx, 1, metric.WithAttributes(attribute.String("side", "sell")))
	slog.InfoContext(ctx, "position sold",
		"user_id", userID, "symbol", symbol, "shares", req.Shares, "removed", pos == nil)
	return pos, nil
}

var hundred = decimal.NewFromInt(100)

// Summarize computes portfolio totals from holdings. Amounts are summed in
// decimal and rounded to cents.
func Summarize(holdings []models.Holding) *models.Summary {
	value := decimal.Zero
	investment := decimal.Zero
	for _, h := range holdings {
		shares := decimal.NewFromFloat(h.Shares)
		value = value.Add(shares.Mul(decimal.NewFromFloat(h.CurrentPrice)))
		investment = investment.Add(shares.Mul(decimal.NewFromFloat(h.AvgPrice)))
	}

	gain := value.Sub(investment)
	percent := decimal.Zero
	if investment.IsPositive() {
		percent = gain.Div(investment).Mul(hundred)
	}

	return &models.Summary{
		TotalValue:       value.Round(2).InexactFloat64(),
		TotalInvestment:  investment.Round(2).InexactFloat64(),
		TotalGain:        gain.Round(2).InexactFloat64(),
		TotalGainPercent: percent.Round(2).InexactFloat64(),
		Positions:        len(holdings),
	}
}
