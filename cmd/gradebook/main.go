// Package main is the entrypoint of the interactive student gradebook.
//
// The gradebook lives in memory for the lifetime of the process. Layers:
// - Domain: students, grades and the gradebook aggregate
// - Application: commands, queries and event handlers
// - Infrastructure: event bus and roster import
// - Interface: the console menu
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alem-hub/gradebook/config"

	// Application layer
	"github.com/alem-hub/gradebook/internal/application/command"
	"github.com/alem-hub/gradebook/internal/application/eventhandler"
	"github.com/alem-hub/gradebook/internal/application/query"

	// Domain layer
	"github.com/alem-hub/gradebook/internal/domain/gradebook"
	"github.com/alem-hub/gradebook/internal/domain/student"

	// Infrastructure layer
	"github.com/alem-hub/gradebook/internal/infrastructure/messaging"
	"github.com/alem-hub/gradebook/internal/infrastructure/roster"

	// Interface layer
	"github.com/alem-hub/gradebook/internal/interface/console"

	// Packages
	"github.com/alem-hub/gradebook/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	if err := config.LoadDotEnv(); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting gradebook",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
		"subjects", cfg.Gradebook.Subjects,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	eventBus := messaging.NewInMemoryEventBus(messaging.InMemoryEventBusConfig{
		AsyncMode:      cfg.Events.Async,
		WorkerPoolSize: cfg.Events.Workers,
		Logger:         log,
		EnableMetrics:  true,
	})
	defer func() {
		if err := eventBus.Close(); err != nil {
			log.Warn("failed to close event bus", logger.Err(err))
		}
	}()

	journal := eventhandler.NewActivityJournal(cfg.Events.JournalSize, log)
	if err := journal.Register(eventBus); err != nil {
		return fmt.Errorf("failed to register activity journal: %w", err)
	}

	if cfg.Events.RedisURL != "" {
		forwarder, err := setupForwarder(ctx, cfg, eventBus, log)
		if err != nil {
			log.Warn("event forwarding disabled", logger.Err(err))
		} else {
			defer forwarder.Close()
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. GRADEBOOK & HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	book := gradebook.New(cfg.Gradebook.Subjects...)
	classifier := student.Classifier{
		PassMark:        cfg.Gradebook.PassMark,
		DistinctionMark: cfg.Gradebook.DistinctionMark,
	}

	enrollHandler := command.NewEnrollStudentsHandler(book, eventBus, log)
	updateHandler := command.NewUpdateGradesHandler(book, eventBus, log)
	removeHandler := command.NewRemoveStudentHandler(book, eventBus, log)

	reportHandler := query.NewClassReportHandler(book, classifier)
	rankingHandler := query.NewGetRankingHandler(book)

	importer := roster.NewImporter(book.Subjects(), log)

	// ─────────────────────────────────────────────────────────────────────────
	// 5. STARTUP ROSTER (optional)
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Roster.Path != "" {
		if err := importStartupRoster(ctx, cfg.Roster.Path, importer, enrollHandler, log); err != nil {
			log.Error("startup roster import failed", logger.Source(cfg.Roster.Path), logger.Err(err))
			fmt.Fprintf(os.Stderr, "Could not import %s: %v\n", cfg.Roster.Path, err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. CONSOLE
	// ─────────────────────────────────────────────────────────────────────────
	var rosterImporter console.RosterImporter
	if cfg.Features.IsEnabled(config.FeatureShellRosterImport) {
		rosterImporter = importer
	}

	shell := console.New(console.Dependencies{
		Book:       book,
		Enroll:     enrollHandler,
		Update:     updateHandler,
		Remove:     removeHandler,
		Report:     reportHandler,
		Ranking:    rankingHandler,
		RankingTop: cfg.Gradebook.RankingTop,
		Roster:     rosterImporter,
		Journal:    journal,
		Metrics:    eventBus.Metrics(),
		Features:   cfg.Features,
		Logger:     log,
	}, os.Stdin, os.Stdout)

	errCh := make(chan error, 1)
	go func() {
		errCh <- shell.Run(ctx)
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 7. SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
		fmt.Fprintln(os.Stdout, "\nExiting program. Goodbye!")
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("console error: %w", err)
		}
	}

	log.Info("gradebook stopped", "students", book.Len())
	return nil
}

// importStartupRoster enrolls the students of the configured roster before
// the menu is shown.
func importStartupRoster(
	ctx context.Context,
	path string,
	importer *roster.Importer,
	enroll *command.EnrollStudentsHandler,
	log *slog.Logger,
) error {
	entries, err := importer.ImportFile(ctx, path)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		log.Warn("startup roster is empty", logger.Source(path))
		return nil
	}

	result, err := enroll.Handle(ctx, command.EnrollStudentsCommand{
		Entries: entries,
		Source:  path,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Imported %d student(s) from %s", len(result.Added), path)
	if n := len(result.Skipped) + len(result.Failed); n > 0 {
		fmt.Fprintf(os.Stdout, " (%d skipped or rejected)", n)
	}
	fmt.Fprintln(os.Stdout)
	return nil
}

// setupForwarder connects the Redis forwarder and subscribes it to the bus.
func setupForwarder(
	ctx context.Context,
	cfg *config.Config,
	bus *messaging.InMemoryEventBus,
	log *slog.Logger,
) (*messaging.RedisForwarder, error) {
	forwarder, err := messaging.NewRedisForwarder(messaging.RedisForwarderConfig{
		URL:     cfg.Events.RedisURL,
		Channel: cfg.Events.RedisChannel,
		Logger:  log,
	})
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := forwarder.Ping(pingCtx); err != nil {
		_ = forwarder.Close()
		return nil, err
	}

	if err := forwarder.Register(bus); err != nil {
		_ = forwarder.Close()
		return nil, err
	}

	log.Info("forwarding events to redis", "channel", forwarder.Channel())
	return forwarder, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// setupLogger configures structured logging. Records go to stderr so the
// menu on stdout stays readable.
func setupLogger(cfg *config.Config) *slog.Logger {
	log := logger.New(logger.Options{
		Output:    os.Stderr,
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		Format:    logger.ParseFormat(cfg.Observability.LogFormat),
		AddSource: cfg.App.Debug,
	})
	slog.SetDefault(log)

	return log
}
