package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wasim/internal/config"
	"wasim/internal/constants"
	"wasim/internal/database"
	"wasim/internal/models"
	"wasim/internal/retry"
	"wasim/internal/service"
	"wasim/internal/state"
	"wasim/internal/store"
	"wasim/internal/tools"
	"wasim/internal/tracing"

	"github.com/sirupsen/logrus"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	verbose    = flag.Bool("verbose", false, "Enable verbose logging (includes phone numbers, JIDs and message text)")
	configPath = flag.String("config", "", "Path to a JSON or TOML configuration file")
	version    = flag.Bool("version", false, "Show version information")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("wasim %s\nBuild Time: %s\nGit Commit: %s\n", Version, BuildTime, GitCommit)
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logrus.Fatalf("Application error: %v", err)
	}
}

func run(ctx context.Context) error {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	logger.WithFields(logrus.Fields{
		"version": Version,
		"build":   BuildTime,
		"commit":  GitCommit,
	}).Info("Starting wasim")

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.LoadConfig(*configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		logger.WithField("path", *configPath).Info("Loaded file configuration")
	} else {
		logger.Info("Using default configuration")
	}
	applyLogLevel(logger, cfg.LogLevel)

	if *configPath != "" {
		watcher := config.NewConfigWatcher(*configPath, logger)
		watcher.OnConfigChange(func(c *models.Config) { applyLogLevel(logger, c.LogLevel) })
		go func() {
			if err := watcher.Start(ctx); err != nil {
				logger.WithError(err).Warn("Configuration watcher stopped")
			}
		}()
	}

	tracingManager := tracing.NewTracingManager(cfg.Tracing, logger)
	if err := tracingManager.Initialize(ctx); err != nil {
		logger.Warnf("Failed to initialize tracing: %v", err)
	}
	defer func() {
		if err := tracingManager.Shutdown(context.Background()); err != nil {
			logger.Warnf("Failed to shutdown tracing: %v", err)
		}
	}()

	var db *database.Database
	if cfg.Database.Path != "" {
		err := retry.NewBackoff(retry.DefaultBackoffConfig()).Retry(ctx, func() error {
			var openErr error
			db, openErr = database.New(cfg.Database.Path)
			if openErr != nil {
				logger.Warnf("Failed to open snapshot database: %v", openErr)
			}
			return openErr
		})
		if err != nil {
			return fmt.Errorf("failed to open snapshot database after retries: %w", err)
		}
		defer db.Close()
	}

	mem := store.NewMemory()
	if err := loadState(ctx, cfg, db, mem, logger); err != nil {
		return err
	}

	sim := service.NewSimulator(mem,
		service.WithLogger(logger),
		service.WithMaxContextMessages(cfg.Simulation.MaxContextMessages),
	)
	registry := tools.NewRegistry(logger)
	if err := tools.RegisterSimulator(registry, sim); err != nil {
		return fmt.Errorf("failed to register tools: %w", err)
	}

	server := NewServer(cfg.Server, registry, mem, logger, *verbose)
	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			serverErrCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	case err := <-serverErrCh:
		logger.Error(err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(constants.DefaultGracefulShutdownSec)*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server gracefully: %w", err)
	}

	if db != nil && cfg.Database.PersistOnShutdown {
		if err := persistState(shutdownCtx, db, mem, logger); err != nil {
			return err
		}
	}

	logger.Info("Server shutdown completed")
	return nil
}

// applyLogLevel sets the configured level; -verbose always wins with debug
func applyLogLevel(logger *logrus.Logger, level string) {
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
		return
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		logger.Warnf("Invalid log level %q, defaulting to info", level)
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)
}

// loadState fills mem from the snapshot database when it holds a saved snapshot, otherwise
// from the seed file. A configured current user JID overrides the loaded one.
func loadState(ctx context.Context, cfg *models.Config, db *database.Database, mem *store.Memory, logger *logrus.Logger) error {
	var snap *state.Snapshot
	source := "empty"

	if db != nil {
		loaded, err := db.LoadSnapshot(ctx)
		if err != nil {
			return fmt.Errorf("failed to load snapshot: %w", err)
		}
		if loaded != nil {
			snap, source = loaded, "database"
		}
	}
	if snap == nil && cfg.Simulation.SeedPath != "" {
		loaded, err := state.LoadFile(cfg.Simulation.SeedPath)
		if err != nil {
			return fmt.Errorf("failed to load seed file: %w", err)
		}
		snap, source = loaded, "seed"
	}
	if snap == nil {
		snap = &state.Snapshot{}
	}
	if cfg.Simulation.CurrentUserJID != "" {
		snap.CurrentUserJID = cfg.Simulation.CurrentUserJID
	}

	if err := state.Apply(snap, mem); err != nil {
		return fmt.Errorf("failed to apply %s state: %w", source, err)
	}

	logger.WithFields(logrus.Fields{
		"source":   source,
		"contacts": len(snap.Contacts),
		"chats":    len(snap.Chats),
	}).Info("Simulation state loaded")
	return nil
}

func persistState(ctx context.Context, db *database.Database, mem *store.Memory, logger *logrus.Logger) error {
	snap := state.Capture(mem)
	if err := db.SaveSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("failed to persist snapshot: %w", err)
	}
	logger.WithField("chats", len(snap.Chats)).Info("Simulation state saved")
	return nil
}
