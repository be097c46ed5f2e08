package controller

import (
	"net/http"
	"strconv"

	"ctchen222/portfolio-tracker/internal/api/models"
	"ctchen222/portfolio-tracker/internal/api/response"
	"ctchen222/portfolio-tracker/internal/api/service"
	"ctchen222/portfolio-tracker/internal/apperr"
	"ctchen222/portfolio-tracker/internal/auth"

	"github.com/gin-gonic/gin"
)

var errInvalidUserID = apperr.Validation("invalid user id")

// PortfolioController handles the per-user portfolio endpoints.
type PortfolioController struct {
	portfolioService service.PortfolioService
	gate             *auth.Gate
}

// NewPortfolioController creates a new PortfolioController.
func NewPortfolioController(portfolioService service.PortfolioService, gate *auth.Gate) *PortfolioController {
	return &PortfolioController{
		portfolioService: portfolioService,
		gate:             gate,
	}
}

// authorize checks that the bearer token belongs to the owner named by the
// userId path parameter. A bad token wins over a malformed id.
func (pc *PortfolioController) authorize(c *gin.Context) (int64, bool) {
	token := auth.BearerToken(c.GetHeader("Authorization"))

	ownerID, parseErr := strconv.ParseInt(c.Param("userId"), 10, 64)
	if parseErr != nil {
		if _, err := pc.gate.Authenticate(token); err != nil {
			response.Error(c, err)
			return 0, false
		}
		response.Error(c, errInvalidUserID)
		return 0, false
	}

	if _, err := pc.gate.Authorize(token, ownerID); err != nil {
		response.Error(c, err)
		return 0, false
	}
	return ownerID, true
}

// List returns the priced holdings of the user.
func (pc *PortfolioController) List(c *gin.Context) {
	userID, ok := pc.authorize(c)
	if !ok {
		return
	}

	holdings, err := pc.portfolioService.Holdings(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessResponse(c, holdings)
}

// Summary returns the portfolio totals of the user.
func (pc *PortfolioController) Summary(c *gin.Context) {
	userID, ok := pc.authorize(c)
	if !ok {
		return
	}

	summary, err := pc.portfolioService.Summary(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessResponse(c, summary)
}

// Add buys shares into the user's portfolio.
func (pc *PortfolioController) Add(c *gin.Context) {
	userID, ok := pc.authorize(c)
	if !ok {
		return
	}

	var req models.AddStockRequest
	if !bindJSON(c, &req) {
		return
	}

	if _, err := pc.portfolioService.Buy(c.Request.Context(), userID, &req); err != nil {
		response.Error(c, err)
		return
	}
	response.MessageResponse(c, http.StatusCreated, "Stock added successfully")
}

// Remove sells shares from the user's portfolio.
func (pc *PortfolioController) Remove(c *gin.Context) {
	userID, ok := pc.authorize(c)
	if !ok {
		return
	}

	var req models.RemoveStockRequest
	if !bindJSON(c, &req) {
		return
	}

	if _, err := pc.portfolioService.Sell(c.Request.Context(), userID, &req); err != nil {
		response.Error(c, err)
		return
	}
	response.MessageResponse(c, http.StatusOK, "Stock updated successfully")
}
