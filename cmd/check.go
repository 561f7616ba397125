package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/dj8891/sonaric-desktop/internal/lifecycle"
	"github.com/dj8891/sonaric-desktop/internal/probe"
	"github.com/dj8891/sonaric-desktop/internal/session"
	"github.com/dj8891/sonaric-desktop/ui"
)

const (
	guiWaitRetries  = 10
	guiWaitInitial  = 500 * time.Millisecond
	guiWaitCeiling  = 5 * time.Second
	guiCheckMessage = "Checking GUI..."
)

var (
	flagJSON bool
	flagWait bool
	flagOpen bool
)

func newCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Detect whether Sonaric needs install, start or update",
		Long: `Detect the state of the local Sonaric node and print one of:
  install  the node is not installed
  start    the node is installed but not running
  update   a newer node release is available
  ok       the node and its GUI are running`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd.Context(), appConfig.Timeouts.ProbeTimeout())
			defer cancel()

			res, err := detect(ctx, cmd.ErrOrStderr(), !flagJSON)
			if err != nil {
				return err
			}
			if flagJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), ui.RenderState(res))
			return nil
		},
	}
	cmd.Flags().BoolVar(&flagJSON, "json", false, "print the result as JSON")
	return cmd
}

// detect 运行一次完整的状态检测
func detect(ctx context.Context, statusOut io.Writer, showStatus bool) (lifecycle.Result, error) {
	c, err := buildComponents(appConfig)
	if err != nil {
		return lifecycle.Result{}, err
	}
	var status lifecycle.StatusFunc
	if showStatus {
		muted := ui.DefaultStyles().Muted
		status = func(s string) {
			_, _ = fmt.Fprintln(statusOut, muted.Render(s))
		}
	}
	return newMachine(appConfig, c, status).Check(ctx)
}

func newGUICommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gui",
		Short: "Check that the local Sonaric GUI is serving",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd.Context(), appConfig.Timeouts.ProbeTimeout())
			defer cancel()

			s, err := session.New(appConfig.GUI.URL)
			if err != nil {
				return err
			}

			opts := []probe.ProberOption{
				probe.WithMarker(appConfig.GUI.Marker),
				probe.WithTimeout(appConfig.Timeouts.HTTPTimeout()),
				probe.WithLogger(appLogger),
			}
			if flagWait {
				opts = append(opts, probe.WithMaxRetries(guiWaitRetries), probe.WithBackoff(guiWaitInitial, guiWaitCeiling))
			}

			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), ui.DefaultStyles().Muted.Render(guiCheckMessage))
			if err := probe.NewGUIProber(opts...).Probe(ctx, s.BaseURL()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), ui.RenderStatusLine("✓", "GUI is available at "+s.BaseURL(), ui.DefaultStyles().Success))

			if flagOpen {
				return openBrowser(s.BaseURL())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&flagWait, "wait", false, "retry with backoff until the GUI answers")
	cmd.Flags().BoolVar(&flagOpen, "open", false, "open the GUI in a browser once it answers")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
