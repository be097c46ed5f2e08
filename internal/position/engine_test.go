package position

import (
	"math"
	"testing"

	"ctchen222/portfolio-tracker/internal/api/models"
	"ctchen222/portfolio-tracker/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyBuy(t *testing.T) {
	tests := []struct {
		name       string
		existing   *models.Position
		shares     float64
		price      float64
		wantShares float64
		wantAvg    float64
		wantName   string
	}{
		{
			name:       "opens a new position",
			shares:     10,
			price:      100,
			wantShares: 10,
			wantAvg:    100,
			wantName:   "Apple Inc.",
		},
		{
			name:       "averages with an existing position",
			existing:   &models.Position{UserID: 1, Symbol: "AAPL", Name: "Apple", Shares: 10, AvgPrice: 100},
			shares:     10,
			price:      200,
			wantShares: 20,
			wantAvg:    150,
			wantName:   "Apple",
		},
		{
			name:       "weights by share count",
			existing:   &models.Position{UserID: 1, Symbol: "AAPL", Name: "Apple", Shares: 30, AvgPrice: 10},
			shares:     10,
			price:      50,
			wantShares: 40,
			wantAvg:    20,
			wantName:   "Apple",
		},
		{
			name:       "free shares lower the basis",
			existing:   &models.Position{UserID: 1, Symbol: "AAPL", Name: "Apple", Shares: 5, AvgPrice: 100},
			shares:     5,
			price:      0,
			wantShares: 10,
			wantAvg:    50,
			wantName:   "Apple",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyBuy(tt.existing, 1, "AAPL", "Apple Inc.", tt.shares, tt.price)
			require.NoError(t, err)
			assert.Equal(t, int64(1), got.UserID)
			assert.Equal(t, "AAPL", got.Symbol)
			assert.Equal(t, tt.wantName, got.Name)
			assert.Equal(t, tt.wantShares, got.Shares)
			assert.InDelta(t, tt.wantAvg, got.AvgPrice, 1e-9)
		})
	}
}

func TestApplyBuyDoesNotMutateExisting(t *testing.T) {
	existing := &models.Position{UserID: 1, Symbol: "AAPL", Shares: 10, AvgPrice: 100}
	_, err := ApplyBuy(existing, 1, "AAPL", "Apple Inc.", 10, 200)
	require.NoError(t, err)
	assert.Equal(t, 10.0, existing.Shares)
	assert.Equal(t, 100.0, existing.AvgPrice)
}

func TestApplyBuyRepeatedMatchesTotalCost(t *testing.T) {
	lots := []struct{ shares, price float64 }{
		{3, 101.17}, {0.5, 99.99}, {12, 250.03}, {7.25, 13.37}, {1, 0}, {100, 182.63}, {0.01, 475.38},
	}

	var pos *models.Position
	var totalShares, totalCost float64
	for _, lot := range lots {
		next, err := ApplyBuy(pos, 1, "NVDA", "NVIDIA Corp.", lot.shares, lot.price)
		require.NoError(t, err)
		pos = &next
		totalShares += lot.shares
		totalCost += lot.shares * lot.price
	}

	assert.InDelta(t, totalShares, pos.Shares, 1e-9)
	assert.InDelta(t, totalCost/totalShares, pos.AvgPrice, 1e-9)
}

func TestApplyBuyRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		shares float64
		price  float64
		want   error
	}{
		{"zero shares", 0, 10, ErrInvalidShares},
		{"negative shares", -1, 10, ErrInvalidShares},
		{"NaN shares", math.NaN(), 10, ErrInvalidShares},
		{"infinite shares", math.Inf(1), 10, ErrInvalidShares},
		{"negative price", 1, -0.01, ErrInvalidPrice},
		{"NaN price", 1, math.NaN(), ErrInvalidPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ApplyBuy(nil, 1, "AAPL", "Apple Inc.", tt.shares, tt.price)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
}

func TestApplyBuyRejectsOverflow(t *testing.T) {
	tests := []struct {
		name     string
		existing *models.Position
		shares   float64
		price    float64
	}{
		{"cost overflows", &models.Position{Shares: 1, AvgPrice: 1e308}, 10, 1e308},
		{"shares overflow", &models.Position{Shares: 1.5e308, AvgPrice: 1}, 1.5e308, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyBuy(tt.existing, 1, "AAPL", "Apple Inc.", tt.shares, tt.price)
			assert.ErrorIs(t, err, ErrOutOfRange)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.Equal(t, models.Position{}, got)
		})
	}
}

func TestApplySell(t *testing.T) {
	held := func() *models.Position {
		return &models.Position{UserID: 1, Symbol: "TSLA", Name: "Tesla Inc.", Shares: 25, AvgPrice: 180.25}
	}

	t.Run("partial sell keeps average cost", func(t *testing.T) {
		out, err := ApplySell(held(), 10)
		require.NoError(t, err)
		require.False(t, out.Removed)
		require.NotNil(t, out.Position)
		assert.Equal(t, 15.0, out.Position.Shares)
		assert.Equal(t, 180.25, out.Position.AvgPrice)
		assert.Equal(t, "Tesla Inc.", out.Position.Name)
	})

	t.Run("selling everything removes the position", func(t *testing.T) {
		out, err := ApplySell(held(), 25)
		require.NoError(t, err)
		assert.True(t, out.Removed)
		assert.Nil(t, out.Position)
	})

	t.Run("overselling removes the position", func(t *testing.T) {
		out, err := ApplySell(held(), 1000)
		require.NoError(t, err)
		assert.True(t, out.Removed)
		assert.Nil(t, out.Position)
	})

	t.Run("nothing held", func(t *testing.T) {
		_, err := ApplySell(nil, 1)
		assert.ErrorIs(t, err, ErrNotHeld)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	t.Run("non-positive shares", func(t *testing.T) {
		_, err := ApplySell(held(), 0)
		assert.ErrorIs(t, err, ErrInvalidShares)
	})
}
