package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/mjaworski/window-offers/internal/config"
	"github.com/mjaworski/window-offers/internal/db"
	"github.com/mjaworski/window-offers/internal/logging"
	"github.com/mjaworski/window-offers/internal/server"
)

var migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")

func main() {
	flag.Parse()
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	dbConn, err := db.ConnectAndMigrate(cfg.DatabaseDSN, logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	if *migrateOnlyFlag {
		logger.Info("migrations completed; exiting as requested")
		return
	}

	logger.Info("starting server", zap.String("env", cfg.Env), zap.String("port", cfg.Port))
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: server.New(dbConn, logger)}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("error during shutdown", zap.Error(err))
	}
	logger.Info("server gracefully stopped")
}
