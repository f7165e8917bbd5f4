package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/octobees/leads-scraper/internal/auth"
	"github.com/octobees/leads-scraper/internal/cache"
	"github.com/octobees/leads-scraper/internal/config"
	"github.com/octobees/leads-scraper/internal/database"
	"github.com/octobees/leads-scraper/internal/handler"
	"github.com/octobees/leads-scraper/internal/llm"
	"github.com/octobees/leads-scraper/internal/logging"
	middlewarepkg "github.com/octobees/leads-scraper/internal/middleware"
	"github.com/octobees/leads-scraper/internal/repository"
	"github.com/octobees/leads-scraper/internal/router"
	"github.com/octobees/leads-scraper/internal/scraper"
	"github.com/octobees/leads-scraper/internal/scraper/fetch"
	"github.com/octobees/leads-scraper/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("api stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL, database.PoolOptionsFor(cfg.BulkConcurrency), logger)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	fetcher, err := fetch.New(cfg.Fetch.Backend, fetch.Options{
		UserAgent:  cfg.Fetch.UserAgent,
		Timeout:    cfg.Fetch.Timeout,
		IdleWindow: cfg.Fetch.IdleWindow,
		Headless:   true,
		BrowserBin: cfg.Fetch.BrowserBin,
		NoSandbox:  cfg.Fetch.NoSandbox,
	}, cfg.Fetch.WorkerURL)
	if err != nil {
		return fmt.Errorf("build fetcher: %w", err)
	}

	store, err := scrapeCache(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	var companies scraper.CompanyScraper = scraper.NewScraper(fetcher, cfg.Fetch.Timeout, logger)
	if store != nil {
		companies = scraper.NewCachingScraper(companies, store, cfg.Cache.TTL, "scrape", logger)
		logger.Info("scrape cache enabled", zap.String("mode", cfg.Cache.Mode), zap.Duration("ttl", cfg.Cache.TTL))
	}
	bulk := scraper.NewBulkRunner(companies,
		scraper.WithConcurrency(cfg.BulkConcurrency),
		scraper.WithLogger(logger),
	)
	profiles := scraper.NewProfileScraper(fetcher, cfg.Fetch.Timeout)
	searcher := scraper.NewSearcher(fetcher, scraper.DefaultSampleCompanies(), logger)

	provider, err := llm.New(ctx, cfg.LLM)
	if err != nil {
		if !errors.Is(err, llm.ErrNotConfigured) {
			return fmt.Errorf("build llm provider: %w", err)
		}
		logger.Warn("ai outreach disabled", zap.String("provider", cfg.LLM.Provider), zap.Error(err))
		provider = nil
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	usersRepo := repository.NewPGXUsersRepository(pool)
	leadsRepo := repository.NewPGXLeadsRepository(pool)

	credits := service.NewCreditService(usersRepo)
	authService := service.NewAuthService(usersRepo, jwtManager, logger)
	userService := service.NewUserService(usersRepo)
	leadsService := service.NewLeadsService(leadsRepo, credits, service.NewLeadNormalizer(cfg.PhoneRegion), logger)
	outreach := service.NewOutreachService(provider, credits, logger, service.WithPageFetcher(fetcher))

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging(logger))
	e.Use(echoMiddleware.Recover())

	router.Register(e, cfg, jwtManager, router.Handlers{
		Auth:   handler.NewAuthHandler(authService),
		Users:  handler.NewUserAdminHandler(userService, logger),
		Scrape: handler.NewScrapeHandler(companies, bulk, profiles, searcher, credits, logger),
		Leads:  handler.NewLeadsHandler(leadsService),
		Export: handler.NewExportHandler(leadsService, logger),
		AI:     handler.NewAIHandler(outreach, logger),
	})

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("api listening", zap.String("port", cfg.Port), zap.String("fetch_backend", cfg.Fetch.Backend))
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
	return nil
}

// scrapeCache returns the configured store, or nil when caching is off.
func scrapeCache(ctx context.Context, cfg config.CacheConfig) (cache.Store, error) {
	switch cfg.Mode {
	case config.CacheRedis:
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return cache.NewRedisStore(rdb), nil
	case config.CacheMemory:
		return cache.NewMemoryStore(cfg.TTL, 10*time.Minute), nil
	default:
		return nil, nil
	}
}
