package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisClient "github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"auction-house/internal/api/handlers"
	"auction-house/internal/config"
	"auction-house/internal/domain"
	"auction-house/internal/infrastructure/access"
	"auction-house/internal/infrastructure/bank"
	"auction-house/internal/infrastructure/mysql"
	redisInfra "auction-house/internal/infrastructure/redis"
	"auction-house/internal/infrastructure/registry"
	ws "auction-house/internal/infrastructure/websocket"
	"auction-house/internal/services"
	"auction-house/pkg/logger"
)

func main() {
	log := logger.New()
	log.Info("Starting Auction House Service")

	cfg, err := config.Load()
	if err != nil {
		log.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize Redis
	rdb := redisClient.NewClient(&redisClient.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("Connected to Redis", "address", cfg.Redis.Address)

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		log.Error("Failed to connect to MySQL", "error", err)
		os.Exit(1)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			log.Error("Failed to close MySQL connection", "error", err)
		}
	}(db)

	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		log.Error("Failed to ping MySQL", "error", err)
		os.Exit(1)
	}
	log.Info("Connected to MySQL")

	// Money rails
	ledger := bank.NewLedger(log)
	wrapped := bank.NewWrappedCoin(ledger, "wrapped-coin-custody")
	for account, balance := range cfg.Auction.SeedBalances {
		if err := ledger.Credit(domain.Address(account), balance); err != nil {
			log.Error("Failed to seed account balance", "account", account, "error", err)
			os.Exit(1)
		}
		log.Info("Seeded account balance", "account", account, "balance", balance)
	}

	// Collaborators
	tokens := registry.NewTokenRegistry(cfg.Auction.MaxSupply, log)
	deployer := domain.Address(cfg.Auction.Deployer)
	authority := access.NewUpgradeManager(deployer)
	roles := access.NewOwnable(deployer)

	// Event sinks
	history := mysql.NewHistoryRecorder(db, log)
	eventPublisher := redisInfra.NewEventPublisher(rdb)
	connManager := ws.NewConnectionManager(log)
	notifier := ws.NewNotifier(connManager)
	fanout := services.NewEventFanout(log, eventPublisher, notifier, history)

	// The house itself
	house := services.NewAuctionHouse(
		"auction-house-escrow",
		ledger,
		wrapped,
		authority,
		cfg.Auction.PayoutBudget,
		fanout,
		log,
	)

	settings := domain.AuctionSettings{
		Duration:        cfg.Auction.Duration,
		ReservePrice:    cfg.Auction.ReservePrice,
		Treasury:        domain.Address(cfg.Auction.Treasury),
		TimeBuffer:      cfg.Auction.TimeBuffer,
		MinBidIncrement: uint8(cfg.Auction.MinBidIncrement),
	}
	if err := house.Initialize(deployer, tokens, roles, settings); err != nil {
		log.Error("Failed to initialize auction house", "error", err)
		os.Exit(1)
	}
	if err := house.Unpause(context.Background(), deployer); err != nil {
		log.Error("Failed to open the first round", "error", err)
		os.Exit(1)
	}

	// Crier advances rounds once their window elapses
	crier := services.NewCrier(house, cfg.Crier.Interval, log)

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			echo.GET, echo.HEAD, echo.PUT, echo.PATCH,
			echo.POST, echo.DELETE, echo.OPTIONS,
		},
	}))

	houseHandler := handlers.NewHouseHandler(house, history, log)
	bankHandler := handlers.NewBankHandler(ledger, log)
	wsHandler := ws.NewHandler(connManager, log)

	api := e.Group("/api/v1")
	api.POST("/bids", houseHandler.PlaceBid)
	api.GET("/auction", houseHandler.GetAuction)
	api.GET("/auction/bids", houseHandler.RecentBids)
	api.GET("/rounds", houseHandler.Rounds)
	api.POST("/auction/advance", houseHandler.Advance)
	api.POST("/auction/settle", houseHandler.Settle)
	api.POST("/auction/pause", houseHandler.Pause)
	api.POST("/auction/unpause", houseHandler.Unpause)
	api.GET("/settings", houseHandler.GetSettings)
	api.PATCH("/settings", houseHandler.UpdateSettings)
	api.POST("/bank/credit", bankHandler.Credit)
	api.GET("/bank/balance/:account", bankHandler.Balance)

	e.GET("/ws", func(c echo.Context) error {
		wsHandler.HandleConnection(c.Response(), c.Request())
		return nil
	})

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":    "ok",
			"service":   "auction-house",
			"timestamp": time.Now().Format(time.RFC3339),
			"paused":    house.Paused(),
			"version":   house.Version(),
		})
	})

	if cfg.Crier.Enabled {
		go func() {
			if err := crier.Start(context.Background()); err != nil {
				log.Error("Failed to start crier", "error", err)
			}
		}()
	}

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("Starting auction house server", "address", serverAddr)

	go func() {
		if err := e.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down auction house service...")

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cfg.Crier.Enabled {
		if err := crier.Stop(); err != nil {
			log.Error("Failed to stop crier", "error", err)
		}
	}
	if err := e.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Auction house service stopped")
}
