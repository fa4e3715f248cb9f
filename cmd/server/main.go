package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/dealhound/dealhound/internal/api"
	"github.com/dealhound/dealhound/internal/app"
	"github.com/dealhound/dealhound/internal/app/jobs"
	"github.com/dealhound/dealhound/internal/cache"
	"github.com/dealhound/dealhound/internal/classify"
	"github.com/dealhound/dealhound/internal/durable"
	"github.com/dealhound/dealhound/internal/models"
	"github.com/dealhound/dealhound/internal/scrape"
	"github.com/dealhound/dealhound/internal/services"
	"github.com/dealhound/dealhound/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) (err error) {
	fs := flag.NewFlagSet("dealhound-server", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	var configPath string
	fs.StringVar(&configPath, "config", "", "Path to configuration directory or file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadApplicationConfig(configPath)
	if err != nil {
		return err
	}

	if err := logger.Init(cfg.Server.LogLevel); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer logger.Sync() // best effort

	log := logger.WithModule("bootstrap")

	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	ephemeral := cache.Open(cache.Config{
		Enabled: cfg.Cache.Enabled,
		Path:    cfg.Cache.Path,
	})
	if closer, ok := ephemeral.(*cache.SQLiteStore); ok {
		defer multierr.AppendInvoke(&err, multierr.Close(closer))
	}

	store, err := durable.NewClient(cfg.Supabase.URL, cfg.Supabase.ServiceKey)
	if err != nil {
		return fmt.Errorf("initialise durable store: %w", err)
	}
	if !store.Configured() {
		log.Warn("durable store credentials absent; API lookups will report service unavailable")
	}

	fetcher, err := buildFetcher(cfg, log)
	if err != nil {
		return err
	}

	categorizer := services.NewCategorizer(store, buildStrategy(cfg))

	dealCache := services.NewDealCache(ephemeral, store, services.DealCacheConfig{
		MaxLimit:     cfg.Deals.MaxLimit,
		DefaultDays:  cfg.Deals.LookbackDays,
		DefaultLimit: cfg.Deals.DefaultLimit,
		TTL:          cfg.Cache.TTL,
	})

	refreshJob := jobs.NewRefreshJob(fetcher, categorizer, jobs.RefreshConfig{
		Schedule:       cfg.Refresh.Schedule,
		MaxPages:       cfg.Refresh.MaxPages,
		BatchSize:      cfg.Refresh.BatchSize,
		InterBatchWait: cfg.Refresh.InterBatchWait,
		UseClassifier:  cfg.Classifier.Enabled,
	})
	if err := refreshJob.Start(); err != nil {
		return fmt.Errorf("start refresh job: %w", err)
	}
	defer refreshJob.Stop()

	cleanupJob := jobs.NewCleanupJob(ephemeral, jobs.CleanupConfig{
		Schedule:   cfg.Cleanup.Schedule,
		Expiration: cfg.Cleanup.Expiration,
	})
	if err := cleanupJob.Start(); err != nil {
		return fmt.Errorf("start cleanup job: %w", err)
	}
	defer cleanupJob.Stop()

	router, err := api.NewRouter(dealCache, refreshJob)
	if err != nil {
		return fmt.Errorf("build api router: %w", err)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var shutdownErr error
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		shutdownErr = multierr.Append(shutdownErr, fmt.Errorf("graceful shutdown: %w", err))
	}
	if err, ok := <-serverErr; ok && err != nil {
		shutdownErr = multierr.Append(shutdownErr, fmt.Errorf("server error: %w", err))
	}
	if shutdownErr != nil {
		return shutdownErr
	}

	log.Info("server stopped gracefully")
	return nil
}

func loadApplicationConfig(path string) (*app.Config, error) {
	switch {
	case strings.TrimSpace(path) == "":
		return app.LoadConfig()
	default:
		info, err := os.Stat(path)
		if err == nil {
			if info.IsDir() {
				return app.LoadConfig(path)
			}
			return app.LoadConfig(filepath.Dir(path))
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config path %q does not exist", path)
		}
		return nil, fmt.Errorf("stat config path: %w", err)
	}
}

// buildStrategy composes the classification chain: keyword matching always
// works; the hosted classifier is layered on top when enabled and configured.
func buildStrategy(cfg *app.Config) classify.Strategy {
	keywords := classify.NewKeywordStrategy()
	if !cfg.Classifier.Enabled {
		return keywords
	}

	ai := classify.NewAIStrategy(classify.AIConfig{
		Endpoint: cfg.Classifier.Endpoint,
		APIKey:   cfg.Classifier.APIKey,
		Model:    cfg.Classifier.Model,
		Timeout:  cfg.Classifier.Timeout,
	})
	if ai == nil {
		return keywords
	}
	return classify.NewFallback(ai, keywords)
}

// buildFetcher constructs the listing scraper. An unset page URL yields a
// fetcher that fails every page, which the refresh job tolerates per page.
func buildFetcher(cfg *app.Config, log *zap.Logger) (scrape.Fetcher, error) {
	if strings.TrimSpace(cfg.Source.PageURL) == "" {
		log.Warn("source page url not configured; refresh runs will fetch nothing")
		return unconfiguredFetcher{}, nil
	}

	return scrape.NewSiteFetcher(scrape.Config{
		PageURL:   cfg.Source.PageURL,
		UserAgent: cfg.Source.UserAgent,
		Timeout:   cfg.Source.Timeout,
	})
}

type unconfiguredFetcher struct{}

func (unconfiguredFetcher) FetchPage(context.Context, int) ([]models.RawItem, error) {
	return nil, errors.New("source page url not configured")
}
