package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dj8891/sonaric-desktop/internal/action"
	"github.com/dj8891/sonaric-desktop/internal/errors"
	"github.com/dj8891/sonaric-desktop/internal/session"
)

var flagAction string

func newOpenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "open",
		Short: "Open the Sonaric GUI in a browser",
		Long: `Open the Sonaric GUI in a browser. With --action stop or --action uninstall
the GUI opens with that action pre-selected.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := session.New(appConfig.GUI.URL)
			if err != nil {
				return err
			}

			url := s.BaseURL()
			if flagAction != "" {
				a, err := action.ParseAction(flagAction)
				if err != nil {
					return err
				}
				if !a.Destructive() {
					return errors.ErrInvalidInput.WithCause(fmt.Errorf("--action must be stop or uninstall, got %q", flagAction))
				}
				url = s.ActionURL(a.String())
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Opening %s\n", url)
			return openBrowser(url)
		},
	}
	cmd.Flags().StringVar(&flagAction, "action", "", "pre-select an action in the GUI (stop|uninstall)")
	return cmd
}

func newDocsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "docs",
		Short: "Open the Sonaric documentation",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Opening %s\n", appConfig.Endpoints.Docs)
			return openBrowser(appConfig.Endpoints.Docs)
		},
	}
}
