package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/telhawk-systems/telhawk-copilot/common/output"
	"github.com/telhawk-systems/telhawk-copilot/internal/alertstore"
	"github.com/telhawk-systems/telhawk-copilot/internal/seeder"
)

type seedOptions struct {
	count   int
	noise   int
	spread  time.Duration
	seed    int64
	append  bool
	noColor bool
}

func newSeedCmd(root *rootOptions) *cobra.Command {
	opts := &seedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write synthetic alerts and logs for local development",
		Long: `Generate Wazuh-style alerts and matching log lines.

Alerts go to the configured store (alert file or Redis list). Log lines are
always written to logs.path.

Examples:
  # Replace alerts.txt and logs.txt with 100 alerts
  copilot seed --count 100

  # Add a few more alerts to the existing files
  copilot seed --count 5 --append`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, root, opts)
		},
	}

	cmd.Flags().IntVar(&opts.count, "count", 50, "number of alerts to generate")
	cmd.Flags().IntVar(&opts.noise, "noise", 20, "number of unrelated log lines")
	cmd.Flags().DurationVar(&opts.spread, "spread", 24*time.Hour, "time range covered by alert timestamps")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "random seed (0 uses the clock)")
	cmd.Flags().BoolVar(&opts.append, "append", false, "append instead of replacing existing data")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	return cmd
}

func runSeed(cmd *cobra.Command, root *rootOptions, opts *seedOptions) error {
	cfg := root.cfg
	p := output.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts.noColor)

	ds := seeder.Generate(seeder.Options{
		Count:      opts.count,
		NoiseLines: opts.noise,
		Spread:     opts.spread,
		Seed:       opts.seed,
	})

	switch cfg.Store.Backend {
	case "redis":
		store, err := alertstore.NewRedisStore(cfg.Store.Redis.URL, cfg.Store.Redis.Key)
		if err != nil {
			p.Error("Redis unavailable: %v", err)
			return err
		}
		defer store.Close()

		ctx := cmd.Context()
		if !opts.append {
			if err := store.Reset(ctx); err != nil {
				return err
			}
		}
		if err := store.Append(ctx, ds.Alerts...); err != nil {
			p.Error("Failed to push alerts: %v", err)
			return err
		}
		p.Success("Pushed %d alerts to redis list %s", len(ds.Alerts), cfg.Store.Redis.Key)
	default:
		if err := seeder.WriteLines(cfg.Store.AlertsPath, ds.Alerts, opts.append); err != nil {
			p.Error("Failed to write alerts: %v", err)
			return err
		}
		p.Success("Wrote %d alerts to %s", len(ds.Alerts), cfg.Store.AlertsPath)
	}

	if err := seeder.WriteLines(cfg.Logs.Path, ds.Logs, opts.append); err != nil {
		p.Error("Failed to write logs: %v", err)
		return err
	}
	p.Success("Wrote %d log lines to %s", len(ds.Logs), cfg.Logs.Path)

	if cfg.Logs.Backend == "opensearch" {
		p.Warn("logs.backend is opensearch; seeded log lines were only written to %s", cfg.Logs.Path)
	}
	return nil
}
