package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairyfarm/internal/auth"
	"github.com/mamadbah2/dairyfarm/internal/config"
	"github.com/mamadbah2/dairyfarm/internal/domain/models"
	"github.com/mamadbah2/dairyfarm/internal/lock"
	"github.com/mamadbah2/dairyfarm/internal/repository/memory"
	"github.com/mamadbah2/dairyfarm/internal/repository/mongodb"
	"github.com/mamadbah2/dairyfarm/internal/repository/postgres"
	"github.com/mamadbah2/dairyfarm/internal/repository/seed"
	"github.com/mamadbah2/dairyfarm/internal/repository/sheets"
	"github.com/mamadbah2/dairyfarm/internal/scheduler"
	"github.com/mamadbah2/dairyfarm/internal/server/handlers"
	"github.com/mamadbah2/dairyfarm/internal/server/router"
	closingsvc "github.com/mamadbah2/dairyfarm/internal/service/closing"
	ledgersvc "github.com/mamadbah2/dairyfarm/internal/service/ledger"
	productionsvc "github.com/mamadbah2/dairyfarm/internal/service/production"
	reportingsvc "github.com/mamadbah2/dairyfarm/internal/service/reporting"
	salessvc "github.com/mamadbah2/dairyfarm/internal/service/sales"
	whatsappsvc "github.com/mamadbah2/dairyfarm/internal/service/whatsapp"
	whatsappclient "github.com/mamadbah2/dairyfarm/pkg/clients/whatsapp"
	"github.com/mamadbah2/dairyfarm/pkg/logger"
)

// store is the full persistence surface every backend provides.
type store interface {
	productionsvc.Store
	productionsvc.AnimalDirectory
	ledgersvc.Store
	salessvc.Store
	closingsvc.Store
	seed.AnimalWriter
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

func main() {
	envFile := flag.String("env", "", "optional .env file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	loc, err := cfg.Closing.Location()
	if err != nil {
		baseLogger.Fatal("invalid farm timezone", zap.Error(err))
	}
	cal := models.Calendar{Location: loc}

	startCtx, cancelStart := context.WithTimeout(context.Background(), time.Minute)
	defer cancelStart()

	repo, err := openStore(startCtx, cfg, baseLogger)
	if err != nil {
		baseLogger.Fatal("failed to init store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer func() {
		if err := repo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close store", zap.Error(err))
		}
	}()

	if path := cfg.Store.AnimalsSeedFile; path != "" {
		if _, err := seed.AnimalsFromFile(startCtx, path, repo, logger.Named(baseLogger, "seed")); err != nil {
			baseLogger.Fatal("failed to seed animal directory", zap.String("path", path), zap.Error(err))
		}
	}

	locker, closeLocker, err := openLocker(startCtx, cfg.Redis, logger.Named(baseLogger, "lock"))
	if err != nil {
		baseLogger.Fatal("failed to init day lock", zap.Error(err))
	}
	defer closeLocker()

	sinks := openSinks(startCtx, cfg, baseLogger)

	ledgerSvc := ledgersvc.NewService(repo, logger.Named(baseLogger, "svc.ledger"))
	productionSvc := productionsvc.NewService(repo, repo, ledgerSvc, locker, cal, logger.Named(baseLogger, "svc.production"))
	salesSvc := salessvc.NewService(repo, ledgerSvc, locker, cal, logger.Named(baseLogger, "svc.sales"))
	closer := closingsvc.NewService(repo, ledgerSvc, locker, cal, closingsvc.Config{
		AutoHour:      cfg.Closing.AutoHour,
		ManualMinHour: cfg.Closing.ManualMinHour,
	}, logger.Named(baseLogger, "svc.closing"), sinks...)
	reportingSvc := reportingsvc.NewService(repo, logger.Named(baseLogger, "svc.reporting"))

	dates := handlers.Dates{Calendar: cal, Now: time.Now}
	engine := router.New(router.Dependencies{
		Identity:       auth.NewAuthenticator(cfg.Auth.JWTSecret),
		Production:     handlers.NewProductionHandler(productionSvc, dates, logger.Named(baseLogger, "handlers.production")),
		Balance:        handlers.NewBalanceHandler(ledgerSvc, closer, dates, logger.Named(baseLogger, "handlers.balance")),
		Sales:          handlers.NewSalesHandler(salesSvc, dates, logger.Named(baseLogger, "handlers.sales")),
		Summary:        handlers.NewSummaryHandler(closer, reportingSvc, dates, logger.Named(baseLogger, "handlers.summary")),
		Health:         repo,
		RequestTimeout: cfg.Server.RequestTimeout,
	}, logger.Named(baseLogger, "router"))

	sched := scheduler.NewScheduler(cfg.Closing, cal, closer, logger.Named(baseLogger, "scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("store", cfg.Store.Driver), zap.String("timezone", loc.String()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg *config.Config, baseLogger *zap.Logger) (store, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return postgres.NewRepository(pool, logger.Named(baseLogger, "repo.postgres")), nil
	case config.DriverMemory:
		baseLogger.Warn("using in-memory store, data is lost on restart")
		return memory.New(), nil
	default:
		repo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName, logger.Named(baseLogger, "repo.mongodb"))
		if err != nil {
			return nil, err
		}
		return repo, nil
	}
}

func openLocker(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) (lock.Locker, func(), error) {
	if !cfg.Enabled() {
		log.Info("redis not configured, using in-process day lock")
		return lock.NewLocalLocker(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	log.Info("redis day lock enabled", zap.String("addr", cfg.Addr), zap.Duration("ttl", cfg.LockTTL))
	return lock.NewRedisLocker(client, cfg.LockTTL, log), func() { _ = client.Close() }, nil
}

func openSinks(ctx context.Context, cfg *config.Config, baseLogger *zap.Logger) []closingsvc.Sink {
	var sinks []closingsvc.Sink

	if cfg.WhatsApp.Enabled() {
		client := whatsappclient.NewClient(cfg.WhatsApp)
		sinks = append(sinks, whatsappsvc.NewSummaryNotifier(client, cfg.WhatsApp.ManagerID, logger.Named(baseLogger, "svc.whatsapp")))
	} else {
		baseLogger.Warn("whatsapp not configured, day summaries will not be sent")
	}

	if cfg.Sheets.Enabled() {
		repo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, logger.Named(baseLogger, "repo.sheets"))
		if err != nil {
			baseLogger.Error("failed to init sheets repository, export disabled", zap.Error(err))
		} else {
			sinks = append(sinks, sheets.NewSummaryExporter(repo))
		}
	}

	return sinks
}
