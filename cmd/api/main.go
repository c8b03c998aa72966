package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/billio/invoicing-api/internal/api"
	mongodb "github.com/billio/invoicing-api/internal/infrastructure/db/mongo"
	redisdb "github.com/billio/invoicing-api/internal/infrastructure/db/redis"
	"github.com/billio/invoicing-api/internal/pkg/config"
	"github.com/billio/invoicing-api/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	if err := ensureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	e, dispatcher := api.NewRouter(api.Dependencies{
		Config: cfg,
		Log:    log,
		Mongo:  db,
		Redis:  rdb,
	})
	dispatcher.Start(ctx)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
		os.Exit(1)
	}
	log.Info().Msg("server stopped cleanly")
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	indexCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := mongodb.NewCustomerRepository(db).EnsureIndexes(indexCtx); err != nil {
		return err
	}
	if err := mongodb.NewInvoiceRepository(db).EnsureIndexes(indexCtx); err != nil {
		return err
	}
	if err := mongodb.NewCompanyRepository(db).EnsureIndexes(indexCtx); err != nil {
		return err
	}
	return mongodb.NewTemplateRepository(db).EnsureIndexes(indexCtx)
}
