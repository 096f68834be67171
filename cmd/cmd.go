// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// runCommand executes the full daily pass.
func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Discover new uploads and route them into playlists",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "days",
				Aliases: []string{"d"},
				Usage:   "Discover uploads from the last N days instead of since the previous run",
			},
		},
		Action: r.RunDaily,
	}
}

// retryCommand replays the failure queue on its own.
func retryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "retry",
		Usage:  "Replay playlist additions deferred to the failure queue",
		Action: r.RetryFailures,
	}
}

// balanceCommand refills the release radar without running discovery.
func balanceCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "balance",
		Usage:  "Refill the release radar from the re-listening and legacy archives",
		Action: r.BalancePlaylists,
	}
}

// cleanupCommand runs the retention and ended-streams sweeps.
func cleanupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "cleanup",
		Usage:  "Remove expired playlist entries and finished live streams",
		Action: r.CleanupPlaylists,
	}
}

// statsCommand samples overdue weekly statistics.
func statsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "stats",
		Usage:  "Sample weekly statistics for videos that came due",
		Action: r.UpdateStats,
	}
}

// sortCommand reorders the subscription database by channel title.
func sortCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "sort-db",
		Usage:  "Sort the subscription database by channel title",
		Action: r.SortDatabase,
	}
}

// setupCommand prepares the local environment.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the config file, data directory, and history database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.SetupDatabase,
	}
}
