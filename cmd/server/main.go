// Package main is the entry point for the stockdash backend.
//
// It loads configuration, opens the cache and insights databases, wires the
// market data providers behind the SQLite cache, selects the scoring strategy
// and serves the HTTP API until SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/stockdash/backend/internal/clientdata"
	"github.com/stockdash/backend/internal/clients/llm"
	"github.com/stockdash/backend/internal/clients/news"
	"github.com/stockdash/backend/internal/clients/yahoo"
	"github.com/stockdash/backend/internal/config"
	"github.com/stockdash/backend/internal/database"
	"github.com/stockdash/backend/internal/events"
	"github.com/stockdash/backend/internal/modules/analysis"
	analysishandlers "github.com/stockdash/backend/internal/modules/analysis/handlers"
	"github.com/stockdash/backend/internal/modules/insights"
	insightshandlers "github.com/stockdash/backend/internal/modules/insights/handlers"
	"github.com/stockdash/backend/internal/modules/optimization"
	"github.com/stockdash/backend/internal/modules/portfolio"
	portfoliohandlers "github.com/stockdash/backend/internal/modules/portfolio/handlers"
	"github.com/stockdash/backend/internal/modules/scoring"
	scoringhandlers "github.com/stockdash/backend/internal/modules/scoring/api/handlers"
	"github.com/stockdash/backend/internal/scheduler"
	"github.com/stockdash/backend/internal/server"
	"github.com/stockdash/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logger level is not known yet
		fallback := logger.New(logger.Config{Level: "info", Pretty: true})
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Str("data_dir", cfg.DataDir).
		Str("strategy", cfg.Strategy).
		Msg("Starting stockdash backend")

	cacheDB, err := openDatabase(cfg.DataDir, database.NameCache, database.ProfileCache)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache database")
	}
	defer cacheDB.Close()

	insightsDB, err := openDatabase(cfg.DataDir, database.NameInsights, database.ProfileStandard)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open insights database")
	}
	defer insightsDB.Close()

	eventManager := events.NewManager(log)

	// Upstream providers sit behind the SQLite cache so repeated lookups
	// and upstream outages are served from disk
	cacheRepo := clientdata.NewRepository(cacheDB.Conn())
	ttls := clientdata.TTLs{
		Quote:        cfg.Cache.QuoteTTL,
		PriceBars:    cfg.Cache.PriceBarsTTL,
		Fundamentals: cfg.Cache.FundamentalsTTL,
		Sentiment:    cfg.Cache.SentimentTTL,
		Indicators:   cfg.Cache.IndicatorsTTL,
	}

	yahooClient := yahoo.NewClient(cfg.Providers.YahooBaseURL, log)
	newsClient := news.NewClient(cfg.Providers.NewsFeedURL, log)

	market := clientdata.NewCachedMarketData(yahooClient, cacheRepo, ttls, log)
	// Indicators read the cached bar history Analyze fetches, not a second chart
	chartIndicators := yahoo.NewChartIndicators(market, analysis.DefaultHistoryPeriod)
	providers := analysis.Providers{
		Market:       market,
		Fundamentals: clientdata.NewCachedFundamentals(yahooClient, cacheRepo, ttls, log),
		Sentiment:    clientdata.NewCachedSentiment(newsClient, cacheRepo, ttls, log),
		Indicators:   clientdata.NewCachedIndicators(chartIndicators, cacheRepo, ttls, log),
	}

	strategy := newStrategy(cfg, log)

	insightRepo := insights.NewRepository(insightsDB.Conn(), log)

	analysisService := analysis.NewService(providers, strategy, insightRepo, eventManager, log)
	riskService := portfolio.NewRiskService(market, insightRepo, eventManager, log)
	optimizationService := optimization.NewService(insightRepo, eventManager, log)

	// Background jobs
	sched := scheduler.New(log)
	sched.OnError(func(job string, err error) {
		eventManager.EmitError("scheduler", err, map[string]interface{}{"job": job})
	})

	jobs := []struct {
		schedule string
		job      scheduler.Job
	}{
		{cfg.Schedule.CacheCleanup, clientdata.NewCleanupJob(cacheRepo, cacheDB, eventManager, log)},
		{cfg.Schedule.DatabaseMaintenance, scheduler.NewDatabaseMaintenanceJob(log, cacheDB, insightsDB)},
		{cfg.Schedule.InsightRetention, insights.NewRetentionJob(insightRepo, cfg.InsightRetention(), log)},
	}
	for _, j := range jobs {
		if err := sched.AddJob(j.schedule, j.job); err != nil {
			log.Fatal().Err(err).Msg("Failed to register job")
		}
	}
	sched.Start()

	srv := server.New(server.Config{
		Log:         log,
		Port:        cfg.Port,
		DevMode:     cfg.DevMode,
		CORSOrigins: cfg.CORSOrigins,
		Strategy:    strategy.Name(),
		Databases:   []*database.DB{cacheDB, insightsDB},
		Events:      eventManager,
		Scheduler:   sched,
		Cache:       cacheRepo,
		Handlers: []server.RouteRegistrar{
			analysishandlers.NewHandler(analysisService, log),
			portfoliohandlers.NewHandler(riskService, optimizationService, log),
			scoringhandlers.NewHandlers(strategy, log),
			insightshandlers.NewHandler(insightRepo, log),
		},
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Let a running cleanup finish before the databases close
	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

// openDatabase opens <dataDir>/<name>.db and applies its schema
func openDatabase(dataDir, name string, profile database.DatabaseProfile) (*database.DB, error) {
	db, err := database.New(database.Config{
		Path:    filepath.Join(dataDir, name+".db"),
		Profile: profile,
		Name:    name,
	})
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// newStrategy builds the configured scoring strategy. Config validation
// guarantees an API key when the LLM strategy is selected.
func newStrategy(cfg *config.Config, log zerolog.Logger) scoring.Strategy {
	if cfg.Strategy != config.StrategyLLM {
		return scoring.NewRuleBasedStrategy()
	}

	client := llm.NewClient(llm.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout,
	}, log)

	return scoring.NewLLMStrategy(client, log)
}
