package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tf",
		Short:         "TeamFocus CLI (tf): track work time from the terminal",
		Long:          "tf (TeamFocus CLI) signs a team member in, records start/pause/resume/stop work events, uploads periodic screenshots with the active window while working, and shows work summaries.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp(os.Stderr)
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newLoginCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newRunCmd(app),
		newEventsCmd(app),
		newSummaryCmd(app),
		newProfileCmd(app),
		newDisplaysCmd(app),
	)

	return rootCmd
}
