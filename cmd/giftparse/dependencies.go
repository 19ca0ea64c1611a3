package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/FACorreiaa/gift-ledger/internal/domain/assistant"
	"github.com/FACorreiaa/gift-ledger/internal/domain/export"
	"github.com/FACorreiaa/gift-ledger/internal/domain/intent"
	"github.com/FACorreiaa/gift-ledger/internal/domain/ledger/repository"
	"github.com/FACorreiaa/gift-ledger/internal/domain/ledger/service"
	"github.com/FACorreiaa/gift-ledger/pkg/config"
	"github.com/FACorreiaa/gift-ledger/pkg/db"
	"github.com/FACorreiaa/gift-ledger/pkg/storage"
	"github.com/FACorreiaa/gift-ledger/pkg/tracing"
)

const tracerName = "github.com/FACorreiaa/gift-ledger/internal/domain/assistant"

// Dependencies holds everything a giftparse run needs
type Dependencies struct {
	Config   *config.Config
	Logger   *slog.Logger
	Location *time.Location
	Clock    intent.Clock
	OwnerID  uuid.UUID
	Pool     *pgxpool.Pool
	Redis    *redis.Client

	// Registry collects the assistant metrics served on -metrics-addr.
	Registry       *prometheus.Registry
	TracerProvider *sdktrace.TracerProvider

	RecordRepo repository.RecordRepository

	Parser   *intent.Parser
	Ledger   *service.Service
	Analyzer *assistant.Analyzer
	Archiver *export.Archiver
}

// InitDependencies initializes the dependencies opts asks for. The database
// is only opened when records are saved, totalled or archived on a schedule.
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts options) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initParser(opts.ref); err != nil {
		return nil, fmt.Errorf("failed to init parser: %w", err)
	}

	if opts.needsDatabase() {
		if err := deps.initDatabase(ctx); err != nil {
			deps.Cleanup()
			return nil, fmt.Errorf("failed to init database: %w", err)
		}
	}

	tp, err := tracing.Install(cfg.Tracing, os.Stderr)
	if err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to init tracing: %w", err)
	}
	deps.TracerProvider = tp

	if err := deps.initServices(ctx); err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	logger.Debug("all dependencies initialized successfully")
	return deps, nil
}

// initParser builds the offline parser, pinned to ref when given.
func (d *Dependencies) initParser(ref string) error {
	loc, err := d.Config.Parser.Location()
	if err != nil {
		return err
	}
	d.Location = loc

	clock := intent.SystemClock(loc)
	if ref != "" {
		day, err := time.ParseInLocation("2006-01-02", ref, loc)
		if err != nil {
			return fmt.Errorf("invalid -ref %q, want YYYY-MM-DD: %w", ref, err)
		}
		clock = intent.FixedClock(day)
	}
	d.Clock = clock

	d.Parser = intent.NewParser(intent.WithClock(clock), intent.WithLogger(d.Logger))
	return nil
}

// initDatabase opens the pool, runs migrations and builds the repository
func (d *Dependencies) initDatabase(ctx context.Context) error {
	pool, err := db.Connect(ctx, d.Config.Database.DSN())
	if err != nil {
		return err
	}
	d.Pool = pool

	if err := db.Migrate(ctx, pool, d.Logger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.RecordRepo = repository.NewPostgresRecordRepository(pool)
	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

// initServices wires the ledger, assistant and archive
func (d *Dependencies) initServices(ctx context.Context) error {
	ownerID, err := uuid.Parse(d.Config.Export.OwnerID)
	if err != nil {
		return fmt.Errorf("invalid GIFTLEDGER_OWNER_ID %q: %w", d.Config.Export.OwnerID, err)
	}
	d.OwnerID = ownerID

	if d.RecordRepo != nil {
		d.Ledger = service.NewService(d.RecordRepo, d.Logger)
	}

	d.Registry = prometheus.NewRegistry()
	d.Registry.MustRegister(collectors.NewGoCollector())

	analyzerOpts := []assistant.Option{
		assistant.WithLogger(d.Logger),
		assistant.WithMetrics(assistant.NewMetrics(d.Registry)),
		assistant.WithTracer(d.TracerProvider.Tracer(tracerName)),
	}
	if d.Config.Assistant.Endpoint != "" {
		var remote assistant.RemoteAnalyzer = assistant.NewHTTPRemote(d.Config.Assistant, d.Logger)
		if d.Config.Redis.Address != "" {
			rdb, err := db.ConnectRedis(ctx, d.Config.Redis)
			if err != nil {
				return fmt.Errorf("failed to init analysis cache: %w", err)
			}
			d.Redis = rdb
			remote = assistant.NewCachedRemote(remote, rdb, d.Config.Redis.CacheTTL, d.Logger)
		}
		analyzerOpts = append(analyzerOpts, assistant.WithRemote(remote))
	}
	d.Analyzer = assistant.NewAnalyzer(d.Parser, analyzerOpts...)

	if dir := d.Config.Export.ArchiveDir; dir != "" {
		store, err := storage.NewLocalStorage(dir)
		if err != nil {
			return fmt.Errorf("failed to init archive storage: %w", err)
		}
		d.Archiver = export.NewArchiver(store, d.OwnerID, d.Logger)
	}

	return nil
}

// Hints returns the known contacts for the assistant, empty without a
// database.
func (d *Dependencies) Hints(ctx context.Context) assistant.Hints {
	hints := assistant.Hints{Categories: intent.EventCategories()}
	if d.Ledger == nil {
		return hints
	}
	names, err := d.Ledger.ContactNames(ctx, d.OwnerID)
	if err != nil {
		d.Logger.Warn("failed to load contact hints", slog.Any("error", err))
		return hints
	}
	hints.Contacts = names
	return hints
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.Pool != nil {
		d.Pool.Close()
	}
	if d.Redis != nil {
		_ = d.Redis.Close()
	}
	if d.TracerProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(ctx, d.TracerProvider); err != nil {
			d.Logger.Warn("failed to flush spans", slog.Any("error", err))
		}
	}
	d.Logger.Debug("cleanup completed")
}
