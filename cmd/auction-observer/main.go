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

	redisClient "github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"

	"auction-house/internal/config"
	"auction-house/internal/domain"
	redisInfra "auction-house/internal/infrastructure/redis"
	ws "auction-house/internal/infrastructure/websocket"
	"auction-house/pkg/logger"
)

// The observer relays the auction event channel to websocket clients. It lets
// the house service run headless while any number of these fan events out
// closer to the viewers.
func main() {
	log := logger.New()
	log.Info("Starting Auction Observer Service")

	cfg, err := config.Load()
	if err != nil {
		log.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	rdb := redisClient.NewClient(&redisClient.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("Connected to Redis", "address", cfg.Redis.Address)

	connManager := ws.NewConnectionManager(log)
	notifier := ws.NewNotifier(connManager)
	wsHandler := ws.NewHandler(connManager, log)
	subscriber := redisInfra.NewEventSubscriber(rdb, log)

	subCtx, stopSub := context.WithCancel(context.Background())
	go func() {
		err := subscriber.Subscribe(subCtx, func(event *domain.AuctionEvent) error {
			return notifier.Publish(subCtx, event)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error("Event subscription ended", "error", err)
		}
	}()

	// Setup routes
	router := mux.NewRouter()
	router.HandleFunc("/ws", wsHandler.HandleConnection)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok","service":"auction-observer","timestamp":%q}`,
			time.Now().Format(time.RFC3339))
	}).Methods(http.MethodGet)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Observer.Port)
	server := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	log.Info("Starting observer server", "address", serverAddr)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down observer service...")
	stopSub()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Observer service stopped")
}
