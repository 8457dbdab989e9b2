package cmd

import (
	"context"
	"fmt"

	statusadapter "github.com/bnema/teamfocus-cli/internal/adapters/render/status"
	"github.com/bnema/teamfocus-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newEventsCmd(app *app) *cobra.Command {
	var query domain.WorkEventQuery
	var eventType string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List recorded work events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if eventType != "" {
				parsed, err := domain.ParseWorkEventType(eventType)
				if err != nil {
					return err
				}
				query.EventType = parsed
			}

			var page domain.WorkEventPage
			err := runFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), eventsFetchLabel(query), func(ctx context.Context) error {
				var err error
				page, err = app.work.Events(ctx, query)
				return err
			})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, page)
			}
			rendered, err := app.render.events(page, statusadapter.RenderOptions{Now: app.clock.Now()})
			return writeRendered(cmd, rendered, err)
		},
	}

	cmd.Flags().IntVar(&query.Page, "page", 1, "Page number")
	cmd.Flags().IntVar(&query.Limit, "limit", 20, "Events per page")
	cmd.Flags().StringVar(&eventType, "type", "", "Filter by event type (start, pause, resume, stop)")
	cmd.Flags().StringVar(&query.DateFrom, "from", "", "First day, YYYY-MM-DD")
	cmd.Flags().StringVar(&query.DateTo, "to", "", "Last day, YYYY-MM-DD")
	cmd.Flags().StringVar(&query.Sort, "sort", "timestamp", "Sort field")
	cmd.Flags().StringVar(&query.Order, "order", "desc", "Sort order (asc or desc)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newSummaryCmd(app *app) *cobra.Command {
	var query domain.SummaryQuery
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show worked and paused minutes per day (default: today)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var summary domain.WorkSummary
			err := runFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), summaryFetchLabel(query), func(ctx context.Context) error {
				var err error
				summary, err = app.work.Summary(ctx, query)
				return err
			})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, summary)
			}
			rendered, err := app.render.summary(summary, statusadapter.RenderOptions{Now: app.clock.Now()})
			return writeRendered(cmd, rendered, err)
		},
	}

	cmd.Flags().StringVar(&query.DateFrom, "from", "", "First day, YYYY-MM-DD")
	cmd.Flags().StringVar(&query.DateTo, "to", "", "Last day, YYYY-MM-DD")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newProfileCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or edit the member profile",
	}

	cmd.AddCommand(newProfileShowCmd(app), newProfileSetNameCmd(app))

	return cmd
}

func newProfileShowCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the member profile and team",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profile, err := app.profiles.Show(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, profile)
			}
			rendered, err := app.render.profile(profile, statusadapter.RenderOptions{Now: app.clock.Now()})
			return writeRendered(cmd, rendered, err)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newProfileSetNameCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set-name <name>",
		Short: "Change the display name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := app.profiles.UpdateName(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Name updated to %s\n", sanitizeForTerminal(user.Name))
			return nil
		},
	}
}

func newDisplaysCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "displays",
		Short: "List the displays screenshots are taken from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if app.desktop.displays == nil {
				return fmt.Errorf("list displays on %s: %w", app.desktop.env.GOOS, domain.ErrCaptureUnavailable)
			}

			displays, err := app.desktop.displays.ListDisplays(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, displays)
			}
			rendered, err := app.render.displays(displays)
			return writeRendered(cmd, rendered, err)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
