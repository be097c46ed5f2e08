package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"ctchen222/portfolio-tracker/internal/api/controller"
	apirepository "ctchen222/portfolio-tracker/internal/api/repository"
	"ctchen222/portfolio-tracker/internal/api/service"
	"ctchen222/portfolio-tracker/internal/auth"
	"ctchen222/portfolio-tracker/internal/config"
	"ctchen222/portfolio-tracker/internal/db"
	"ctchen222/portfolio-tracker/internal/logger"
	"ctchen222/portfolio-tracker/internal/market"
	"ctchen222/portfolio-tracker/internal/repository"
	"ctchen222/portfolio-tracker/internal/server"
	"ctchen222/portfolio-tracker/internal/telemetry"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize telemetry
	shutdown, err := telemetry.InitOtel(ctx, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}()

	logger.Init(cfg.SlogLevel())
	if cfg.SlogLevel() > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(ctx, cfg); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	// Initialize SQLite DB
	DB, err := db.Connect(ctx, cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer DB.Close()

	// Market data, cached in Redis when configured
	var feed market.Feed = market.NewStaticFeed(market.DefaultQuotes()...)
	if cfg.RedisAddr != "" {
		rdb, err := db.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			slog.Warn("quote cache disabled", "error", err)
		} else {
			defer rdb.Close()
			feed = market.NewCachedFeed(feed, repository.NewQuoteRepository(rdb), cfg.QuoteCacheTTL)
			slog.Info("quote cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.QuoteCacheTTL)
		}
	}

	// Create repositories
	userRepo := apirepository.NewUserRepository(DB, cfg.BcryptCost)
	portfolioRepo := apirepository.NewPortfolioRepository(DB)

	if cfg.SeedDemoData {
		if err := service.SeedDemoData(ctx, userRepo, portfolioRepo); err != nil {
			return err
		}
	}

	// Create services
	tokens := auth.NewTokenService([]byte(cfg.JWTSecret), auth.WithTTL(cfg.TokenTTL))
	userService := service.NewUserService(userRepo, tokens)
	portfolioService := service.NewPortfolioService(portfolioRepo, feed)

	// Create controllers
	userController := controller.NewUserController(userService)
	portfolioController := controller.NewPortfolioController(portfolioService, auth.NewGate(tokens))
	marketController := controller.NewMarketController(feed)

	// Create the Gin-based server
	srv, err := server.NewServer(userController, portfolioController, marketController, server.Options{
		AuthRateLimit: cfg.AuthRateLimit,
		AuthRateBurst: cfg.AuthRateBurst,
	})
	if err != nil {
		return err
	}
	go srv.Run(ctx)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Engine(),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server started", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server", "timeout", cfg.ShutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}

	slog.Info("server exiting")
	return nil
}
