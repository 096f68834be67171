package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/mvailla/ytradar/internal/shared"
	"github.com/mvailla/ytradar/internal/store"
	"github.com/mvailla/ytradar/internal/tasks"
	"github.com/mvailla/ytradar/internal/youtube"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// tokenEnv names the environment variable carrying the OAuth access token.
const tokenEnv = "YTRADAR_TOKEN"

// Runner holds all dependencies for CLI commands and provides methods for
// each command action. The API client and engine are built lazily so
// commands that never touch the API (setup) work without a token.
type Runner struct {
	config *shared.Config
	api    tasks.API
	logger *log.Logger
	output io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	API    tasks.API
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config: opts.Config,
		api:    opts.API,
		logger: opts.Logger,
		output: opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		runCommand, retryCommand, balanceCommand, cleanupCommand, statsCommand, sortCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// client returns the API client, building one from the environment token on
// first use.
func (r *Runner) client() (tasks.API, error) {
	if r.api != nil {
		return r.api, nil
	}

	token := os.Getenv(tokenEnv)
	if token == "" {
		return nil, fmt.Errorf("%w: set %s", shared.ErrMissingToken, tokenEnv)
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	r.api = youtube.NewClient(ts,
		youtube.WithPageSize(r.config.API.BatchSize),
		youtube.WithRateLimit(r.config.API.RequestsPerSecond),
		youtube.WithProbeTimeout(r.config.ProbeTimeout()),
		youtube.WithLogger(r.logger),
	)
	return r.api, nil
}

// engine assembles the task engine and its storage. The returned cleanup
// function closes the history database.
func (r *Runner) engine() (*tasks.Engine, func(), error) {
	api, err := r.client()
	if err != nil {
		return nil, nil, err
	}

	db, err := shared.NewDatabase(r.config.Data.HistoryPath)
	if err != nil {
		return nil, nil, err
	}
	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	st := store.New(r.config.Data.Dir, r.logger)
	history := store.NewHistory(db, r.logger)
	return tasks.NewEngine(api, st, history, r.config, r.logger), func() { db.Close() }, nil
}

func (r *Runner) withEngine(ctx context.Context, op func(context.Context, *tasks.Engine) error) error {
	engine, closeDB, err := r.engine()
	if err != nil {
		return err
	}
	defer closeDB()
	return op(ctx, engine)
}

// RunDaily executes the full reconciliation pass.
func (r *Runner) RunDaily(ctx context.Context, cmd *cli.Command) error {
	return r.withEngine(ctx, func(ctx context.Context, e *tasks.Engine) error {
		return e.Run(ctx, cmd.Int("days"))
	})
}

// RetryFailures replays the persisted failure queue.
func (r *Runner) RetryFailures(ctx context.Context, cmd *cli.Command) error {
	return r.withEngine(ctx, func(ctx context.Context, e *tasks.Engine) error {
		return e.Retry(ctx)
	})
}

// BalancePlaylists refills the release radar.
func (r *Runner) BalancePlaylists(ctx context.Context, cmd *cli.Command) error {
	return r.withEngine(ctx, func(ctx context.Context, e *tasks.Engine) error {
		return e.Balance(ctx)
	})
}

// CleanupPlaylists runs the retention and ended-streams sweeps.
func (r *Runner) CleanupPlaylists(ctx context.Context, cmd *cli.Command) error {
	return r.withEngine(ctx, func(ctx context.Context, e *tasks.Engine) error {
		return e.Cleanup(ctx)
	})
}

// UpdateStats samples overdue weekly statistics.
func (r *Runner) UpdateStats(ctx context.Context, cmd *cli.Command) error {
	return r.withEngine(ctx, func(ctx context.Context, e *tasks.Engine) error {
		return e.UpdateStats(ctx)
	})
}

// SortDatabase reorders the subscription database by channel title.
func (r *Runner) SortDatabase(ctx context.Context, cmd *cli.Command) error {
	return r.withEngine(ctx, func(ctx context.Context, e *tasks.Engine) error {
		return e.SortDatabase(ctx)
	})
}

// SetupDatabase prepares the local environment: the config file, the data
// directory, and the history database with migrations applied.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			return err
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return err
		}
		if config, err = shared.LoadConfig(configPath); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(config.Data.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if dir := filepath.Dir(config.Data.HistoryPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	r.logger.Info("initializing history database", "path", config.Data.HistoryPath)
	db, err := shared.NewDatabase(config.Data.HistoryPath)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.logger.Info("setup complete", "data_dir", config.Data.Dir)
	return nil
}
