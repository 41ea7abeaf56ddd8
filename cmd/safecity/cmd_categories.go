package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newCategoriesCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category", "cat"},
		Short:   "List and manage incident categories",
		Long: `List and manage incident categories.

Available subcommands:
  list   - Print every category ordered by id
  create - Add a category (admin)
  update - Rename a category (admin)
  delete - Remove a category after confirmation (admin)`,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Print every category ordered by id",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				s, err := opts.restore(cmd)
				if err != nil {
					return err
				}
				defer s.close()
				if err := s.signedIn(); err != nil {
					return err
				}
				if err := s.app.Categories.Err(); err != nil {
					return err
				}

				tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION\tUPDATED")
				for _, c := range s.app.Categories.Items() {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", c.ID, c.Name, c.Description, formatTime(c.UpdatedAt))
				}
				return tw.Flush()
			},
		},
		&cobra.Command{
			Use:   "create NAME",
			Short: "Add a category",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := opts.restore(cmd)
				if err != nil {
					return err
				}
				defer s.close()
				if err := s.signedIn(); err != nil {
					return err
				}
				return s.app.Categories.Create(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "update ID NAME",
			Short: "Rename a category",
			Args:  cobra.ExactArgs(2),
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
				return s.app.Categories.Update(cmd.Context(), id, args[1])
			},
		},
		&cobra.Command{
			Use:   "delete ID",
			Short: "Remove a category after confirmation",
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
				return declined(s.app.Categories.Delete(cmd.Context(), id))
			},
		},
	)
	return cmd
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}
