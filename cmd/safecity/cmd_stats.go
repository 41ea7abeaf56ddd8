package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/safecity/incident-dashboard/internal/dashboard/analytics"
	"github.com/safecity/incident-dashboard/internal/dashboard/i18n"
	"github.com/safecity/incident-dashboard/internal/dashboard/ui"
)

func newStatsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print the dashboard summary",
		Long: `Print the dashboard summary computed from the visible incidents and the
categories: totals, resolution times, reports per day, per category, the most
active reporter and the most frequent locations.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.restore(cmd)
			if err != nil {
				return err
			}
			defer s.close()
			if err := s.authenticated(); err != nil {
				return err
			}
			if err := errors.Join(s.app.Categories.Err(), s.app.Incidents.Err()); err != nil {
				return err
			}

			sum, err := s.app.Summary()
			if errors.Is(err, analytics.ErrNoData) {
				s.term.Notify(ui.LevelInfo, s.t.T(i18n.NoData))
				return nil
			}
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "Total\t%d\n", sum.Total)
			fmt.Fprintf(tw, "Resolved\t%d\n", sum.Resolved)
			fmt.Fprintf(tw, "Open\t%d\n", sum.Open)
			fmt.Fprintf(tw, "Avg resolution (h)\t%.1f\n", sum.AvgResolutionHours)
			fmt.Fprintf(tw, "Avg assignment (min)\t%.1f\n", sum.AvgAssignMinutes)
			fmt.Fprintf(tw, "Top reporter\t%s (%d)\n", sum.TopReporter, sum.TopReporterCount)
			fmt.Fprintln(tw)
			fmt.Fprintln(tw, "DAY\tCOUNT")
			for _, d := range sum.PerDay {
				fmt.Fprintf(tw, "%s\t%d\n", d.Date, d.Count)
			}
			fmt.Fprintln(tw)
			fmt.Fprintln(tw, "CATEGORY\tCOUNT")
			for _, c := range sum.ByCategory {
				fmt.Fprintf(tw, "%s\t%d\n", c.Name, c.Value)
			}
			fmt.Fprintln(tw)
			fmt.Fprintln(tw, "LOCATION\tCOUNT")
			for _, l := range sum.TopLocations {
				fmt.Fprintf(tw, "%s\t%d\n", l.Name, l.Value)
			}
			return tw.Flush()
		},
	}
}
