package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"deal-search/api"
	"deal-search/config"
	"deal-search/metrics"
	"deal-search/models"
	"deal-search/services"
	"deal-search/sources"
	"deal-search/storage"
	"deal-search/utils"
)

func main() {
	cfg := config.Load()
	logger := utils.NewLogger(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	logger.Info("=== Deal Search starting ===")
	logger.Info("Config: deals=%s | feed=%s | fetch mode=%s | timeout=%v",
		cfg.DealsURL, cfg.FeedURL, cfg.FetchMode, cfg.FetchTimeout)

	var base sources.Fetcher
	switch cfg.FetchMode {
	case config.FetchModeBrowser:
		browser := sources.NewBrowserFetcher(cfg.ChromeBin, cfg.FetchTimeout, logger)
		defer browser.Close()
		base = browser
	case config.FetchModeHTTP:
		base = sources.NewHTTPFetcher(cfg.FetchTimeout)
	default:
		logger.Error("Unknown FETCH_MODE %q (want %q or %q)", cfg.FetchMode, config.FetchModeHTTP, config.FetchModeBrowser)
		os.Exit(1)
	}

	breaker := sources.BreakerSettings{MaxFailures: cfg.BreakerMaxFailures, Cooldown: cfg.BreakerCooldown}
	dealsFetcher := sources.NewBreakerFetcher(base, models.SourceDeal, breaker, logger)
	feedFetcher := sources.NewBreakerFetcher(base, models.SourceFeed, breaker, logger)

	reg := metrics.NewRegistry()
	search := services.NewSearchService(
		sources.NewDealsAdapter(cfg.DealsURL, cfg.ListingURLTemplate, dealsFetcher, logger),
		sources.NewFeedAdapter(cfg.FeedURL, feedFetcher, logger),
		reg, logger,
	)

	archive, err := openLeadArchive(cfg)
	if err != nil {
		logger.Error("Failed to open lead archive: %v", err)
		os.Exit(1)
	}
	if archive != nil {
		defer archive.Close()
		logger.Info("Lead archive: %s", cfg.LeadStore)
	}

	if cfg.SMTPHost == "" || cfg.LeadsToEmail == "" {
		logger.Warn("SMTP_HOST or LEADS_TO_EMAIL not set; lead capture will fail")
	}
	mailer := services.NewSMTPMailer(cfg.SMTPAddr(), cfg.SMTPHost, cfg.SMTPUser, cfg.SMTPPassword)
	leads := services.NewLeadService(mailer, archive, cfg.LeadsToEmail, cfg.MaxRetries, reg, logger)

	handler := &api.Handler{
		Search:  search,
		Leads:   leads,
		Health:  []api.HealthReporter{dealsFetcher, feedFetcher},
		Metrics: reg.Handler(),
		Logger:  logger,
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown failed: %v", err)
	}
}

func openLeadArchive(cfg *config.Config) (storage.LeadWriter, error) {
	switch cfg.LeadStore {
	case config.LeadStoreCSV:
		return storage.NewCSVWriter(cfg.LeadsCSVPath)
	case config.LeadStorePostgres:
		return storage.NewPostgresWriter(cfg.DSN())
	case config.LeadStoreNone, "":
		return nil, nil
	default:
		return nil, errors.New("unknown LEADS_STORE " + cfg.LeadStore)
	}
}
