package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/marketplace-backend/internal/data/db"
	"github.com/yungbote/marketplace-backend/internal/events"
	"github.com/yungbote/marketplace-backend/internal/events/bus"
	apihttp "github.com/yungbote/marketplace-backend/internal/http"
	"github.com/yungbote/marketplace-backend/internal/observability"
	"github.com/yungbote/marketplace-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    Repos
	Services Services
	Metrics  *observability.Metrics
	Bus      bus.Bus
	Relay    *events.Relay
	Server   *apihttp.Server

	dbService    *db.Service
	otelShutdown func(context.Context) error
}

// New loads config from the environment and wires the whole process.
func New(ctx context.Context) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	logger.ConfigureRedaction(cfg.LogRedaction, cfg.LogRedactionSalt)
	a, err := NewWithConfig(ctx, log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}
	return a, nil
}

func NewWithConfig(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	otelShutdown := observability.InitOTel(ctx, log, cfg.Otel())

	dbService, err := openDB(log, cfg)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrateAll(dbService.DB()); err != nil {
		_ = dbService.Close()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	theDB := dbService.DB()

	eventBus, err := openBus(log, cfg)
	if err != nil {
		_ = dbService.Close()
		return nil, err
	}

	metrics := observability.NewMetrics(cfg.MetricsScrapeInterval)
	reposet := wireRepos(theDB, log)
	serviceset, err := wireServices(theDB, log, cfg, reposet, metrics)
	if err != nil {
		_ = eventBus.Close()
		_ = dbService.Close()
		return nil, err
	}

	relay := events.NewRelay(log, reposet.Outbox, eventBus, metrics, events.RelayConfig{
		PollInterval: cfg.OutboxPollInterval,
		BatchSize:    cfg.OutboxBatchSize,
		Retention:    cfg.OutboxRetention,
	})
	server := wireServer(log, cfg, metrics, wireHandlers(log, theDB, serviceset), wireMiddleware(log, cfg))

	return &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Metrics:      metrics,
		Bus:          eventBus,
		Relay:        relay,
		Server:       server,
		dbService:    dbService,
		otelShutdown: otelShutdown,
	}, nil
}

func openDB(log *logger.Logger, cfg Config) (*db.Service, error) {
	switch cfg.DBDriver {
	case db.DriverSQLite:
		s, err := db.NewSQLiteService(log, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("init sqlite: %w", err)
		}
		return s, nil
	default:
		s, err := db.NewPostgresService(log, cfg.Postgres())
		if err != nil {
			return nil, fmt.Errorf("init postgres: %w", err)
		}
		return s, nil
	}
}

func openBus(log *logger.Logger, cfg Config) (bus.Bus, error) {
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		log.Info("REDIS_ADDR not set; outbox events stay in process")
		return bus.NewMemoryBus(), nil
	}
	b, err := bus.NewRedisBus(log, bus.RedisConfig{Addr: cfg.RedisAddr, Channel: cfg.RedisChannel})
	if err != nil {
		return nil, fmt.Errorf("init redis event bus: %w", err)
	}
	return b, nil
}

// Run serves HTTP and relays the outbox until ctx is cancelled or either fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)

	a.Metrics.StartDBCollector(gctx, a.Log, a.DB)
	if rdb := bus.Client(a.Bus); rdb != nil {
		a.Metrics.StartRedisCollector(gctx, a.Log, rdb)
	}

	g.Go(func() error { return a.Server.Run(gctx, a.Cfg.Addr()) })
	g.Go(func() error { return a.Relay.Run(gctx) })
	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Bus != nil {
		_ = a.Bus.Close()
	}
	if a.dbService != nil {
		_ = a.dbService.Close()
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil && a.Log != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
