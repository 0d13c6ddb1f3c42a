package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"hedera-order-bot-go/internal/config"
	"hedera-order-bot-go/internal/database"
	"hedera-order-bot-go/internal/engine"
	"hedera-order-bot-go/internal/hedera"
	"hedera-order-bot-go/internal/logger"
	"hedera-order-bot-go/internal/metrics"
	"hedera-order-bot-go/internal/router"
)

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		panic(fmt.Sprintf("could not load config: %v", err))
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection successful and schema migrated.")

	// Wrapped-HBAR token set for direction resolution
	native, err := hedera.NewNativeSet(cfg.Hedera.WhbarTokens)
	if err != nil {
		log.Fatal("Invalid wrapped-HBAR configuration", zap.Error(err))
	}

	// Hedera clients
	mirrorClient := hedera.NewMirrorClient(&cfg.Hedera, log.Named("mirror"))
	relayClient, err := hedera.NewRelayClient(&cfg.Hedera, log.Named("relay"))
	if err != nil {
		log.Fatal("Failed to connect to JSON-RPC relay", zap.Error(err))
	}
	if _, err := mirrorClient.GetToken(context.Background(), native.Canonical()); err != nil {
		log.Fatal("Failed to reach mirror node", zap.Error(err))
	}
	log.Info("Successfully connected to Hedera mirror node and relay.")

	// Pipeline components
	dispatcher, err := router.NewDispatcher(cfg.Hedera.RouterAddress, native.Canonical(), cfg.Trading.GasLimit)
	if err != nil {
		log.Fatal("Failed to create swap dispatcher", zap.Error(err))
	}

	rpcTimeout := time.Duration(cfg.Hedera.RPCTimeout) * time.Second
	executor := engine.NewTradeExecutor(relayClient, mirrorClient, log.Named("executor"), rpcTimeout, cfg.Trading.DryRun)
	recorder := engine.NewRecorder(db, log.Named("recorder"))
	guard := engine.NewGuard(db, recorder, log.Named("guard"))

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	orderEngine := engine.NewEngine(log.Named("engine"), &cfg, guard, dispatcher, executor, native, m)

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	// Background sweep for thresholds stuck in executing after a crash
	reconciler := engine.NewReconciler(db, log,
		time.Duration(cfg.Trading.ReconcileInterval)*time.Second,
		time.Duration(cfg.Trading.StuckTimeout)*time.Second,
	)
	go reconciler.Run(ctx)

	apiServer := engine.NewAPIServer(orderEngine, cfg.Server.Port, cfg.Server.APIKey, registry, log)
	apiServer.Start()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := apiServer.Stop(shutdownCtx); err != nil {
		log.Error("API server shutdown failed", zap.Error(err))
	}

	log.Info("Engine has been shut down.")
}
