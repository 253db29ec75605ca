package main

import (
	"context"
	"net/http"
	"time"

	"moneta/internal/aggregator"
	"moneta/internal/config"
	"moneta/internal/database"
	"moneta/internal/handlers"
	"moneta/internal/logger"
	"moneta/internal/services"
	"moneta/internal/validator"
)

// staleLinkSweepInterval is how often the background sweep looks for links
// that have not synced recently.
const staleLinkSweepInterval = time.Hour

// staleLinkMaxAge is how old a link's last sync may be before the sweep
// refreshes it.
const staleLinkMaxAge = 6 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger.Init(cfg.Env)
	defer logger.Sync()
	log := logger.Get()

	validator.Register()

	dbConfig, err := database.NewConfig()
	if err != nil {
		log.Fatalw("failed to load database config", "error", err)
	}
	manager, err := database.NewManager(dbConfig)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	if err := manager.Migrate(); err != nil {
		log.Fatalw("failed to run migrations", "error", err)
	}
	db := manager.DB()

	client := aggregator.NewHTTPClient(
		cfg.AggregatorBaseURL,
		cfg.AggregatorClientID,
		cfg.AggregatorSecret,
		&http.Client{Timeout: cfg.AggregatorTimeout},
	)

	syncService := services.NewSyncService(db, client)
	linkService := services.NewLinkService(db, client, syncService)
	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db)
	netWorthService := services.NewNetWorthService(db)
	cashFlowService := services.NewCashFlowService(db)
	portfolioService := services.NewPortfolioService(db)
	transactionService := services.NewTransactionService(db)

	go sweepStaleLinks(linkService)

	router := handlers.NewRouter(handlers.Handlers{
		Auth:         handlers.NewAuthHandler(userService, auditService),
		Links:        handlers.NewLinkHandler(linkService, syncService, auditService),
		Accounts:     handlers.NewAccountHandler(services.NewAccountService(db), auditService),
		Transactions: handlers.NewTransactionHandler(transactionService),
		Analytics:    handlers.NewAnalyticsHandler(netWorthService, cashFlowService),
		Portfolio:    handlers.NewPortfolioHandler(portfolioService),
	})

	log.Infow("starting server", "port", cfg.Port, "env", cfg.Env)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalw("server exited", "error", err)
	}
}

func sweepStaleLinks(links services.LinkServicer) {
	ticker := time.NewTicker(staleLinkSweepInterval)
	defer ticker.Stop()
	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		links.RefreshStaleLinks(ctx, staleLinkMaxAge)
		cancel()
	}
}
