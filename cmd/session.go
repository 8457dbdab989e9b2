package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/bnema/teamfocus-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newLogoutCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.auth.Logout(cmd.Context()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

type whoamiOutput struct {
	User           *domain.User `json:"user"`
	Team           *domain.Team `json:"team"`
	TrialActive    bool         `json:"trialActive"`
	TokenExpiresAt *time.Time   `json:"tokenExpiresAt,omitempty"`
}

func newWhoamiCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in member and team",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snapshot, err := app.auth.RestoreSession(cmd.Context())
			if err != nil {
				if errors.Is(err, domain.ErrNotLoggedIn) {
					return fmt.Errorf("%w: run `tf login`", err)
				}
				return err
			}

			out := whoamiOutput{
				User:        snapshot.User,
				Team:        snapshot.Team,
				TrialActive: app.session.IsTrialActive(),
			}
			if claims, err := app.auth.TokenClaims(cmd.Context()); err == nil {
				out.TokenExpiresAt = claims.ExpiresAt
			}

			if asJSON {
				return writeJSON(cmd, out)
			}

			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "user: %s\n", sanitizeForTerminal(out.User.DisplayName()))
			_, _ = fmt.Fprintf(w, "email: %s\n", sanitizeForTerminal(out.User.Email))
			if out.Team != nil {
				_, _ = fmt.Fprintf(w, "team: %s\n", sanitizeForTerminal(out.Team.Name))
			}
			_, _ = fmt.Fprintf(w, "trial active: %t\n", out.TrialActive)
			if out.TokenExpiresAt != nil {
				_, _ = fmt.Fprintf(w, "token expires: %s\n", out.TokenExpiresAt.Local().Format(time.RFC3339))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
