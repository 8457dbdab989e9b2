package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var errPasswordRequired = errors.New("password required: pass --password-stdin when stdin is not a terminal")

func newLoginCmd(app *app) *cobra.Command {
	var email string
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in as a team member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reader := bufio.NewReader(cmd.InOrStdin())

			resolvedEmail, err := resolveLoginEmail(cmd, app, reader, email)
			if err != nil {
				return err
			}
			password, err := readPassword(cmd, reader, passwordStdin)
			if err != nil {
				return err
			}

			snapshot, err := app.auth.Login(cmd.Context(), resolvedEmail, password)
			if err != nil {
				return err
			}

			teamName := ""
			if snapshot.Team != nil {
				teamName = snapshot.Team.Name
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n",
				sanitizeForTerminal(snapshot.User.DisplayName()),
				sanitizeForTerminal(teamName),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email (default: last used email)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")

	return cmd
}

func resolveLoginEmail(cmd *cobra.Command, app *app, reader *bufio.Reader, email string) (string, error) {
	if trimmed := strings.TrimSpace(email); trimmed != "" {
		return trimmed, nil
	}

	remembered := app.auth.RememberedEmail(cmd.Context())
	if remembered != "" {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Email [%s]: ", remembered)
	} else {
		_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Email: ")
	}

	input, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read email: %w", err)
	}
	if trimmed := strings.TrimSpace(input); trimmed != "" {
		return trimmed, nil
	}
	return remembered, nil
}

func readPassword(cmd *cobra.Command, reader *bufio.Reader, fromStdin bool) (string, error) {
	if fromStdin {
		input, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimRight(input, "\r\n"), nil
	}

	file, ok := cmd.InOrStdin().(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return "", errPasswordRequired
	}

	_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	password, err := term.ReadPassword(int(file.Fd()))
	_, _ = fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(password), nil
}
