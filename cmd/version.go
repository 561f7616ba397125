package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dj8891/sonaric-desktop/internal/platform"
	"github.com/dj8891/sonaric-desktop/ui"
)

func newVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show launcher, node and GUI versions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd.Context(), appConfig.Timeouts.ProbeTimeout())
			defer cancel()

			c, err := buildComponents(appConfig)
			if err != nil {
				return err
			}
			payload := newResolver(appConfig).Show(ctx, platform.DaemonVersion(c.adapter))

			if flagJSON {
				return writeJSON(cmd.OutOrStdout(), payload)
			}
			return ui.RenderVersionTable(cmd.OutOrStdout(), payload)
		},
	}
	cmd.Flags().BoolVar(&flagJSON, "json", false, "print the versions as JSON")
	return cmd
}
