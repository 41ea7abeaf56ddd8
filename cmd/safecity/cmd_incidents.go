package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/safecity/incident-dashboard/internal/dashboard/apiclient"
)

// incidentFlags is the payload shared by create and update.
type incidentFlags struct {
	category    int64
	description string
	lng, lat    float64
	status      string
}

func (f *incidentFlags) bind(cmd *cobra.Command, withStatus bool) {
	fs := cmd.Flags()
	fs.Int64VarP(&f.category, "category", "c", 0, "Category id")
	fs.StringVarP(&f.description, "description", "d", "", "What happened")
	fs.Float64Var(&f.lng, "lng", 0, "Longitude")
	fs.Float64Var(&f.lat, "lat", 0, "Latitude")
	if withStatus {
		fs.StringVar(&f.status, "status", "", "reported, in_progress or resolved (admin)")
	}
}

func (f *incidentFlags) payload() apiclient.IncidentPayload {
	return apiclient.IncidentPayload{
		CategoryID:  f.category,
		Description: f.description,
		Location:    apiclient.PointAt(f.lng, f.lat),
		Status:      f.status,
	}
}

func newIncidentsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "incidents",
		Aliases: []string{"incident", "inc"},
		Short:   "List and manage incidents",
		Long: `List and manage incidents. Administrators see every incident; other
users see the incidents they reported.

Available subcommands:
  list   - Print the visible incidents ordered by id
  get    - Show one incident
  create - Report an incident
  update - Change an incident
  delete - Remove an incident after confirmation`,
	}

	var created, updated incidentFlags
	create := &cobra.Command{
		Use:   "create",
		Short: "Report an incident",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.restore(cmd)
			if err != nil {
				return err
			}
			defer s.close()
			if err := s.authenticated(); err != nil {
				return err
			}
			return s.app.Incidents.Create(cmd.Context(), created.payload())
		},
	}
	created.bind(create, false)

	update := &cobra.Command{
		Use:   "update ID",
		Short: "Change an incident",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := opts.restore(cmd)
			if err != nil {
				return err
			}
			defer s.close()
			if err := s.authenticated(); err != nil {
				return err
			}
			return s.app.Incidents.Update(cmd.Context(), id, updated.payload())
		},
	}
	updated.bind(update, true)

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Print the visible incidents ordered by id",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				s, err := opts.restore(cmd)
				if err != nil {
					return err
				}
				defer s.close()
				if err := s.authenticated(); err != nil {
					return err
				}
				if err := s.app.Incidents.Err(); err != nil {
					return err
				}

				tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tSTATUS\tCATEGORY\tREPORTER\tLOCATION\tREPORTED\tDESCRIPTION")
				for _, inc := range s.app.Incidents.Items() {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
						inc.ID, inc.Status, categoryName(inc), reporterName(inc),
						inc.Location, formatTime(inc.ReportedAt), inc.Description)
				}
				return tw.Flush()
			},
		},
		&cobra.Command{
			Use:   "get ID",
			Short: "Show one incident",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				s, err := opts.restore(cmd)
				if err != nil {
					return err
				}
				defer s.close()
				if err := s.signedIn(); err != nil {
					return err
				}
				inc, err := s.app.Incidents.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				printIncident(s.out, inc)
				return nil
			},
		},
		create,
		update,
		&cobra.Command{
			Use:   "delete ID",
			Short: "Remove an incident after confirmation",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				s, err := opts.restore(cmd)
				if err != nil {
					return err
				}
				defer s.close()
				if err := s.authenticated(); err != nil {
					return err
				}
				return declined(s.app.Incidents.Delete(cmd.Context(), id))
			},
		},
	)
	return cmd
}

func printIncident(w io.Writer, inc *apiclient.Incident) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%d\n", inc.ID)
	fmt.Fprintf(tw, "Status\t%s\n", inc.Status)
	fmt.Fprintf(tw, "Category\t%s\n", categoryName(*inc))
	fmt.Fprintf(tw, "Reporter\t%s\n", reporterName(*inc))
	fmt.Fprintf(tw, "Location\t%s\n", inc.Location)
	fmt.Fprintf(tw, "Reported\t%s\n", formatTime(inc.ReportedAt))
	if inc.AssignedAt != nil {
		fmt.Fprintf(tw, "Assigned\t%s\n", formatTime(*inc.AssignedAt))
	}
	if inc.ResolvedAt != nil {
		fmt.Fprintf(tw, "Resolved\t%s\n", formatTime(*inc.ResolvedAt))
	}
	fmt.Fprintf(tw, "Description\t%s\n", inc.Description)
	_ = tw.Flush()
}

func categoryName(inc apiclient.Incident) string {
	if inc.Category == nil {
		return "-"
	}
	return inc.Category.Name
}

func reporterName(inc apiclient.Incident) string {
	if inc.Reporter == nil {
		return "-"
	}
	if inc.Reporter.Email != "" {
		return inc.Reporter.Email
	}
	return inc.Reporter.Name
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
