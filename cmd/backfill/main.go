package main

import (
	"context"
	"flag"
	"time"

	"github.com/fekuna/omnipos-inventory-service/config"
	"github.com/fekuna/omnipos-inventory-service/pkg/database/postgres"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"

	prodRepoPkg "github.com/fekuna/omnipos-inventory-service/internal/product/repository"
	prodUCPkg "github.com/fekuna/omnipos-inventory-service/internal/product/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// backfill stamps an explicit inventory method on tracked products that predate the
// column, so the legacy "has a recipe" fallback stops being consulted for them.
func main() {
	venueID := flag.String("venue", "", "restrict the backfill to one venue (default: all venues)")
	timeout := flag.Duration("timeout", time.Minute, "abort if the update runs longer than this")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.LoadEnv()

	appLogger := logger.NewZapLogger(&logger.ZapLoggerConfig{
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	})
	defer appLogger.Sync()

	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	uc := prodUCPkg.NewProductUseCase(prodRepoPkg.NewPGRepository(db), appLogger)
	n, err := uc.BackfillInventoryMethods(ctx, *venueID)
	if err != nil {
		appLogger.Fatal("Backfill failed", zap.String("venue_id", *venueID), zap.Error(err))
	}
	appLogger.Info("Backfill finished", zap.Int64("products_updated", n))
}
