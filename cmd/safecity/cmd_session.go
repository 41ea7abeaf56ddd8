package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/safecity/incident-dashboard/internal/dashboard/apiclient"
)

func newLoginCmd(opts *options) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the access token",
		Long: `Sign in with an email and password. The access token is stored in the
credential file and reused by every other command until logout.

The password is read from standard input when --password is not given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" {
				return errors.New("login: --email is required")
			}
			if password == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Password: ")
				line, err := readLine(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("login: read password: %w", err)
				}
				password = line
			}

			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			if _, err := s.app.Session.Login(cmd.Context(), email, password); err != nil {
				return err
			}
			if id := s.app.Session.Snapshot().Identity; id != nil {
				printIdentity(s.out, id)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password")
	return cmd
}

func newLogoutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the stored token and forget it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.restore(cmd)
			if err != nil {
				return err
			}
			defer s.close()
			return declined(s.app.Session.Logout(cmd.Context()))
		},
	}
}

func newWhoamiCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
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
			printIdentity(s.out, s.app.Session.Snapshot().Identity)
			return nil
		},
	}
}

func printIdentity(w io.Writer, id *apiclient.Identity) {
	name := strings.TrimSpace(id.Name + " " + id.LastName)
	fmt.Fprintf(w, "%s <%s> [%s]\n", name, id.Email, strings.Join(id.Roles, ", "))
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
