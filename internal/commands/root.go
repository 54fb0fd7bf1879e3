// Package commands implements the copilot command line.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/telhawk-systems/telhawk-copilot/internal/config"
)

// Version is overridden at build time with -ldflags.
var Version = "0.1.0"

type rootOptions struct {
	cfgFile string
	cfg     *config.Config
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "copilot",
		Short: "TelHawk Security Copilot",
		Long: `copilot serves the SOC analyst dashboard: it polls the alert feed,
correlates alerts with related log lines and IP reputation, and asks a
language model for an analysis, a response playbook, and chat answers.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.cfgFile)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default: ./config.yaml or /etc/telhawk/copilot/config.yaml)")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newSeedCmd(opts))
	root.AddCommand(newSummaryCmd(opts))

	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
