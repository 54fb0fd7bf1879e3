package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/telhawk-systems/telhawk-copilot/common/output"
	"github.com/telhawk-systems/telhawk-copilot/internal/aggregate"
	"github.com/telhawk-systems/telhawk-copilot/internal/models"
)

type summaryOptions struct {
	output  string
	noColor bool
}

type summaryJSON struct {
	Total      int                     `json:"total"`
	Categories map[models.Category]int `json:"categories"`
	models.AlertsResponse
}

func newSummaryCmd(root *rootOptions) *cobra.Command {
	opts := &summaryOptions{}

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the alert dashboard summary",
		Long: `Read the configured alert store and print the same aggregates the
dashboard shows: severity counts, the five most frequent rule descriptions
and alerts per hour.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "table", "output format (table|json)")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	return cmd
}

func runSummary(cmd *cobra.Command, root *rootOptions, opts *summaryOptions) error {
	if opts.output != "table" && opts.output != "json" {
		return fmt.Errorf("unsupported output format %q", opts.output)
	}

	p := output.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts.noColor)

	store, _, cleanup, err := buildStore(root.cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	alerts, err := store.ReadAlerts(cmd.Context())
	if err != nil {
		p.Error("Failed to read alerts from %s: %v", store.Name(), err)
		return err
	}

	summary := aggregate.Summarize(alerts)
	counts := aggregate.CategoryCounts(alerts)

	if opts.output == "json" {
		return p.JSON(summaryJSON{
			Total:          len(alerts),
			Categories:     counts,
			AlertsResponse: summary,
		})
	}

	p.Info("%d alerts in %s", len(alerts), store.Name())
	fmt.Fprintf(cmd.OutOrStdout(), "  %s %d  %s %d  %s %d\n\n",
		p.Colorize(string(models.CategoryHigh), output.FgRed, output.Bold), counts[models.CategoryHigh],
		p.Colorize(string(models.CategoryMedium), output.FgYellow), counts[models.CategoryMedium],
		p.Colorize(string(models.CategoryLow), output.FgGreen), counts[models.CategoryLow],
	)

	top := output.NewTable("COUNT", "DESCRIPTION")
	for _, entry := range summary.Top5Alerts {
		top.AddRow(strconv.Itoa(entry.Count), entry.Description)
	}
	top.Render(p)
	fmt.Fprintln(cmd.OutOrStdout())

	series := output.NewTable("HOUR", "ALERTS")
	for i, label := range summary.TimeSeries.Labels {
		series.AddRow(label, strconv.Itoa(summary.TimeSeries.Data[i]))
	}
	series.Render(p)

	return nil
}
