package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"ctchen222/portfolio-tracker/internal/api/controller"
	"ctchen222/portfolio-tracker/internal/api/response"
	"ctchen222/portfolio-tracker/internal/validator"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("server")

const limiterSweepInterval = 10 * time.Minute

// Options tunes the HTTP surface.
type Options struct {
	AuthRateLimit float64
	AuthRateBurst int
}

// Server owns the gin engine and the routes of the API.
type Server struct {
	engine      *gin.Engine
	authLimiter *IPRateLimiter
}

// NewServer builds the router over the given controllers.
func NewServer(
	userController *controller.UserController,
	portfolioController *controller.PortfolioController,
	marketController *controller.MarketController,
	opts Options,
) (*Server, error) {
	if err := validator.RegisterBinding(); err != nil {
		return nil, fmt.Errorf("failed to register binding rules: %w", err)
	}

	s := &Server{
		engine:      gin.New(),
		authLimiter: NewIPRateLimiter(opts.AuthRateLimit, opts.AuthRateBurst),
	}

	s.engine.Use(RequestContext(), Recovery(), CORS())
	s.engine.NoRoute(func(c *gin.Context) {
		response.ErrorResponse(c, http.StatusNotFound, "not found")
	})

	api := s.engine.Group("/api")

	authGroup := api.Group("/auth", RateLimit(s.authLimiter))
	authGroup.POST("/register", userController.Register)
	authGroup.POST("/login", userController.Login)

	portfolioGroup := api.Group("/portfolio/:userId")
	portfolioGroup.GET("", portfolioController.List)
	portfolioGroup.GET("/summary", portfolioController.Summary)
	portfolioGroup.POST("/add", portfolioController.Add)
	portfolioGroup.POST("/remove", portfolioController.Remove)

	api.GET("/market/data", marketController.Data)

	return s, nil
}

// Engine returns the gin engine to mount on an http.Server.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run performs background upkeep until ctx is done.
func (s *Server) Run(ctx context.Context) {
	s.authLimiter.Run(ctx, limiterSweepInterval)
}
