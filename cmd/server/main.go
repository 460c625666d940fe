package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace-service/config"
	"marketplace-service/internal/api"
	"marketplace-service/internal/broker"
	"marketplace-service/internal/kv"
	"marketplace-service/internal/redisclient"
	"marketplace-service/internal/service"
	"marketplace-service/internal/store"
	"marketplace-service/internal/util"
	"marketplace-service/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting marketplace service")

	tp, err := util.InitTracer("marketplace-service", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	kvStore, closeStore, err := openStorage(cfg.Storage.Backend, cfg)
	if err != nil {
		log.Fatalf("Failed to open %s storage: %v", cfg.Storage.Backend, err)
	}
	defer closeStore()
	logger.Info("Storage ready", zap.String("backend", cfg.Storage.Backend))

	var publisher broker.Publisher = broker.NopPublisher{}
	if cfg.Kafka.Enabled() {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents)
		defer producer.Close()
		publisher = broker.NewEventPublisher(producer)
		log.Println("Kafka producer initialized")
	}

	catalog := service.NewCatalog(kvStore, publisher)
	cart := service.NewCart(kvStore)
	history := service.NewHistory(kvStore)
	gateway := service.NewMockGateway(cfg.Business.PaymentDelay)
	checkout := service.NewCheckout(cart, history, gateway, publisher, cfg.Business.DeliveryFee)

	ctx := context.Background()
	if err := catalog.Load(ctx); err != nil {
		logger.Error("Catalog starts empty", zap.Error(err))
	}
	if err := cart.Load(ctx); err != nil {
		logger.Error("Cart starts empty", zap.Error(err))
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var stockWorker *worker.StockWorker
	if cfg.Kafka.Enabled() {
		consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents, cfg.Kafka.ConsumerGroup)
		stockWorker = worker.NewStockWorker(consumer, service.NewStockLedger(catalog))
		go func() {
			if err := stockWorker.Start(workerCtx); err != nil && err != context.Canceled {
				log.Printf("Stock worker error: %v", err)
			}
		}()
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(api.Services{
		Catalog:     catalog,
		Cart:        cart,
		Checkout:    checkout,
		History:     history,
		Accounts:    service.NewAccounts(kvStore),
		Preferences: service.NewPreferences(kvStore),
		Complaints:  service.NewComplaints(kvStore),
		Tokens:      service.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
	}, cfg.Auth.Required)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// leave room for an in-flight payment
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second+cfg.Business.PaymentDelay)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	if stockWorker != nil {
		stockWorker.Stop()
	}

	log.Println("Server exited")
}

// openStorage returns the configured backend and its close function
func openStorage(backend string, cfg *config.Config) (kv.Store, func() error, error) {
	switch backend {
	case "memory":
		return kv.NewMemory(), func() error { return nil }, nil
	case "sqlite":
		s, err := kv.OpenSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "redis":
		c, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Prefix)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	case "postgres":
		s, err := store.NewStore(cfg.Database.URL)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", backend)
}
