// Package position applies buy and sell events to a single position.
// The functions are pure: callers load the current state and persist the
// result.
package position

import (
	"math"

	"ctchen222/portfolio-tracker/internal/api/models"
	"ctchen222/portfolio-tracker/internal/apperr"
)

var (
	ErrInvalidShares = apperr.Validation("shares must be a positive number")
	ErrInvalidPrice  = apperr.Validation("price must be a non-negative number")
	ErrNotHeld       = apperr.NotFound("stock not found in portfolio")
	ErrOutOfRange    = apperr.Validation("position size or cost is out of range")
)

// Outcome is the result of a sell. Position is nil when Removed is set.
type Outcome struct {
	Position *models.Position
	Removed  bool
}

// ApplyBuy adds shares bought at price to existing, which may be nil.
// The average cost is the shares-weighted mean of the old basis and the
// new lot, computed from totals on every call. A held position keeps its
// display name.
func ApplyBuy(existing *models.Position, userID int64, symbol, name string, shares, price float64) (models.Position, error) {
	if !positive(shares) {
		return models.Position{}, ErrInvalidShares
	}
	if !finite(price) || price < 0 {
		return models.Position{}, ErrInvalidPrice
	}

	if existing == nil {
		return models.Position{
			UserID:   userID,
			Symbol:   symbol,
			Name:     name,
			Shares:   shares,
			AvgPrice: price,
		}, nil
	}

	newShares := existing.Shares + shares
	newAvg := (existing.Shares*existing.AvgPrice + shares*price) / newShares
	if !finite(newShares) || !finite(newAvg) {
		return models.Position{}, ErrOutOfRange
	}

	next := *existing
	next.Shares = newShares
	next.AvgPrice = newAvg
	return next, nil
}

// ApplySell removes shares from existing. Selling at least the held amount
// removes the position; otherwise the average cost is left unchanged.
func ApplySell(existing *models.Position, shares float64) (Outcome, error) {
	if existing == nil {
		return Outcome{}, ErrNotHeld
	}
	if !positive(shares) {
		return Outcome{}, ErrInvalidShares
	}

	if shares >= existing.Shares {
		return Outcome{Removed: true}, nil
	}

	next := *existing
	next.Shares = existing.Shares - shares
	return Outcome{Position: &next}, nil
}

func positive(v float64) bool {
	return finite(v) && v > 0
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
