package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/Jomes01/Kioku/internal/calendar"
	corecfg "github.com/Jomes01/Kioku/internal/core/config"
	"github.com/Jomes01/Kioku/internal/core/storage"
	"github.com/Jomes01/Kioku/internal/core/storage/filesystem"
	"github.com/Jomes01/Kioku/internal/core/storage/memory"
	"github.com/Jomes01/Kioku/internal/core/storage/postgres"
	"github.com/Jomes01/Kioku/internal/eventstore"
	"github.com/Jomes01/Kioku/internal/migrations"
	"github.com/Jomes01/Kioku/internal/reconcile"
	"github.com/Jomes01/Kioku/internal/reminder"
	"github.com/Jomes01/Kioku/internal/reminder/notifier"
	"github.com/Jomes01/Kioku/internal/server"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	seedPath := flag.String("seed", "", "YAML file of events to import into an empty store")
	flag.Parse()

	// 0. Initialize Logger (level is raised once config is loaded)
	logLevel := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logLevel.Set(cfg.Log.SlogLevel())
	slog.Info("Loaded config",
		"backend", cfg.Storage.Backend,
		"addr", cfg.Server.Addr(),
		"fire_hour", cfg.Reminders.FireHour,
		"reconcile_cron", cfg.Reminders.ReconcileCron,
	)

	location, err := cfg.Reminders.Location()
	if err != nil {
		slog.Error("Invalid reminder timezone", "value", cfg.Reminders.Timezone, "error", err)
		os.Exit(1)
	}

	// 2. Initialize Storage
	blobs, health, closeStorage, err := openStorage(cfg.Storage)
	if err != nil {
		slog.Error("Failed to initialize storage", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}
	defer closeStorage()

	store := eventstore.NewStore(blobs, cfg.Storage.Timeout)

	// 3. Initialize Reminders
	// Due reminders are delivered to the log.
	dispatcher := notifier.NewDispatcher(cfg.Notifier.TickInterval, nil)

	var reminderSink reminder.Notifier = dispatcher
	if cfg.Notifier.RateLimit > 0 {
		reminderSink = notifier.NewRateLimited(dispatcher, cfg.Notifier.RateLimit, cfg.Notifier.Burst)
	}

	scheduler := reminder.NewScheduler(reminderSink, reminder.TriggerConfig{
		FireHour: cfg.Reminders.FireHour,
		Location: location,
	}, cfg.Notifier.CallTimeout)
	coordinator := reminder.NewCoordinator(scheduler, store)

	// 4. Initialize Calendar Service
	calendarSvc := calendar.NewService(store, scheduler, coordinator)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *seedPath != "" {
		entries, err := eventstore.LoadSeedFile(*seedPath)
		if err != nil {
			slog.Error("Failed to read seed file", "path", *seedPath, "error", err)
			os.Exit(1)
		}
		imported, err := calendarSvc.Import(ctx, entries)
		if err != nil {
			slog.Error("Failed to import seed events", "path", *seedPath, "error", err)
			os.Exit(1)
		}
		slog.Info("Seed import finished", "path", *seedPath, "imported", imported)
	}

	// 5. Initialize Reconcile Job
	job, err := reconcile.NewJob(calendarSvc, cfg.Reminders.ReconcileCron, cfg.Reminders.ReconcileOnStart, location)
	if err != nil {
		slog.Error("Invalid reconcile schedule", "value", cfg.Reminders.ReconcileCron, "error", err)
		os.Exit(1)
	}

	// Reminders are rebuilt before any request can change the store.
	if err := job.Startup(ctx); err != nil {
		slog.Warn("Startup reconcile failed, retrying on schedule", "error", err)
	}

	// 6. Initialize Server
	srv := server.New(cfg.Server.Addr(), health, cfg.Server.Mode)
	calendarSvc.RegisterRoutes(srv.Engine)

	// 7. Start Services
	go func() {
		if err := dispatcher.Run(ctx); err != nil {
			slog.Error("Dispatcher stopped with error", "error", err)
		}
	}()

	go func() {
		if err := job.Start(ctx); err != nil {
			slog.Error("Reconcile job stopped with error", "error", err)
		}
	}()

	// Signal handler triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

// openStorage builds the configured blob store. The returned health checker is
// nil for the memory backend.
func openStorage(cfg corecfg.StorageConfig) (storage.BlobStore, server.HealthChecker, func(), error) {
	noop := func() {}

	switch cfg.Backend {
	case corecfg.BackendMemory:
		slog.Warn("Using in-memory storage; events are lost on restart")
		return memory.NewStore(), nil, noop, nil

	case corecfg.BackendFilesystem:
		fs, err := filesystem.NewStore(cfg.Path)
		if err != nil {
			return nil, nil, noop, err
		}
		return fs, fs, noop, nil

	case corecfg.BackendPostgres:
		db, err := postgres.Open(cfg.DSN, cfg.MaxOpenConns, cfg.MaxIdleConns)
		if err != nil {
			return nil, nil, noop, err
		}
		if err := migrations.RunMigrations(db, cfg.AutoMigrate); err != nil {
			db.Close()
			return nil, nil, noop, err
		}
		adapter, err := postgres.NewAdapter(db)
		if err != nil {
			db.Close()
			return nil, nil, noop, err
		}
		return adapter, adapter, func() {
			if err := adapter.Close(); err != nil {
				slog.Error("Failed to close database", "error", err)
			}
		}, nil
	}

	return nil, nil, noop, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
}
