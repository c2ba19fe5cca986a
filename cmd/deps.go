// Package cmd provides the CLI commands for the zmig migration engine.
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zoea-platform/zmig/config"
	"github.com/zoea-platform/zmig/pkg/db"
	"github.com/zoea-platform/zmig/pkg/events"
	"github.com/zoea-platform/zmig/pkg/legacy"
	"github.com/zoea-platform/zmig/pkg/logging"
	"github.com/zoea-platform/zmig/pkg/runner"
)

// Deps holds the shared dependencies for all commands, injectable for
// tests.
type Deps struct {
	ConfigFile string
	Debug      bool
	LogJSON    bool

	LoadConfig    func(path string) (*config.Config, error)
	OpenLegacy    func(ctx context.Context, cfg config.LegacyStore) (*legacy.Reader, error)
	ConnectTarget func(ctx context.Context, cfg config.TargetStore) (*pgxpool.Pool, error)
	NewPublisher  func(addr string, logger logging.Logger) (*events.Publisher, error)
}

// DefaultDeps returns the production dependencies.
func DefaultDeps() *Deps {
	return &Deps{
		LoadConfig:    config.LoadFrom,
		OpenLegacy:    legacy.Open,
		ConnectTarget: db.Connect,
		NewPublisher:  events.NewPublisherFromAddr,
	}
}

// env is everything a command needs once setup succeeded.
type env struct {
	cfg       *config.Config
	logger    logging.Logger
	publisher *events.Publisher
	metrics   *db.RunMetrics
	runner    *runner.Runner
}

// setup loads configuration and builds the shared run machinery. It does
// not open either store; commands connect to what they actually use.
func (d *Deps) setup(procedure string) (*env, error) {
	cfg, err := d.LoadConfig(d.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level := logging.Level(cfg.LogLevel)
	if d.Debug {
		level = logging.LevelDebug
	}
	logger := logging.NewLogger(&logging.Config{
		Level:      level,
		Procedure:  procedure,
		JSONFormat: d.LogJSON || cfg.LogJSON,
	})

	publisher, err := d.NewPublisher(cfg.RedisAddr, logger)
	if err != nil {
		// Eventing is best-effort; a dead Redis must not block a migration.
		logger.Warn("event publishing disabled", logging.Err(err))
		publisher = nil
	}

	metrics := db.NewRunMetrics("zmig")

	return &env{
		cfg:       cfg,
		logger:    logger,
		publisher: publisher,
		metrics:   metrics,
		runner:    runner.New(logger, metrics, publisher),
	}, nil
}

// printSummary writes the human-readable run report to stdout.
func printSummary(result runner.Result) {
	fmt.Printf("\nRun %s (%s)\n", result.RunID, result.Procedure)
	for _, stage := range result.Stages {
		fmt.Printf("  %-14s migrated=%-5d skipped=%-5d failed=%d\n",
			stage.Name, stage.Migrated, stage.Skipped, stage.Failed)
	}
	migrated, skipped, failed := result.Totals()
	fmt.Printf("  %-14s migrated=%-5d skipped=%-5d failed=%d  in %s\n",
		"total", migrated, skipped, failed, result.Elapsed.Round(time.Millisecond))

	if failed > 0 {
		fmt.Println("\nFailures:")
		for _, stage := range result.Stages {
			for _, e := range stage.Errors {
				fmt.Printf("  [%s] %s %s: %v\n", stage.Name, e.Entity, e.Key, e.Err)
			}
		}
	}
}
