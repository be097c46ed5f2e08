package controller

import (
	"ctchen222/portfolio-tracker/internal/api/response"
	"ctchen222/portfolio-tracker/internal/market"

	"github.com/gin-gonic/gin"
)

// MarketController serves the market data snapshot.
type MarketController struct {
	feed market.Feed
}

// NewMarketController creates a new MarketController.
func NewMarketController(feed market.Feed) *MarketController {
	return &MarketController{feed: feed}
}

// Data returns the current quotes.
func (mc *MarketController) Data(c *gin.Context) {
	quotes, err := mc.feed.Snapshot(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessResponse(c, quotes)
}
