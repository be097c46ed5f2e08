package service

import (
	"context"
	"fmt"
	"log/slog"

	"ctchen222/portfolio-tracker/internal/api/models"
	"ctchen222/portfolio-tracker/internal/api/repository"
)

const (
	demoUsername = "admin"
	demoEmail    = "admin@example.com"
	demoPassword = "admin"
)

var demoPositions = []models.Position{
	{Symbol: "AAPL", Name: "Apple Inc.", Shares: 20, AvgPrice: 170.50},
	{Symbol: "NVDA", Name: "NVIDIA Corp.", Shares: 10, AvgPrice: 450.75},
	{Symbol: "TSLA", Name: "Tesla Inc.", Shares: 25, AvgPrice: 180.25},
	{Symbol: "META", Name: "Meta Platforms Inc.", Shares: 12, AvgPrice: 330.80},
	{Symbol: "AMZN", Name: "Amazon.com Inc.", Shares: 15, AvgPrice: 147.20},
}

// SeedDemoData creates the demo account and its portfolio unless a user
// named admin already exists.
func SeedDemoData(ctx context.Context, users repository.UserRepository, portfolio repository.PortfolioRepository) error {
	existing, err := users.GetUserByUsername(ctx, demoUsername)
	if err != nil {
		return fmt.Errorf("failed to look up demo user: %w", err)
	}
	if existing != nil {
		slog.DebugContext(ctx, "demo data already present", "user_id", existing.ID)
		return nil
	}

	id, err := users.CreateUser(ctx, &models.User{Username: demoUsername, Email: demoEmail}, demoPassword)
	if err != nil {
		return fmt.Errorf("failed to create demo user: %w", err)
	}

	for _, p := range demoPositions {
		p.UserID = id
		if err := portfolio.Upsert(ctx, p); err != nil {
			return fmt.Errorf("failed to seed %s: %w", p.Symbol, err)
		}
	}

	slog.InfoContext(ctx, "demo data seeded", "user_id", id, "positions", len(demoPositions))
	return nil
}
