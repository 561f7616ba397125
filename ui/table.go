package ui

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/dj8891/sonaric-desktop/internal/version"
)

// RenderVersionTable writes the component/version/latest table.
func RenderVersionTable(w io.Writer, p version.Payload) error {
	headers := []string{"Component", "Version", "Latest", "Status"}
	table := tablewriter.NewWriter(w)
	table.Options(
		tablewriter.WithHeader(headers),
		tablewriter.WithAlignment(tw.MakeAlign(len(headers), tw.AlignLeft)),
	)

	rows := []struct {
		name string
		info version.Info
	}{
		{"sonaric-desktop", p.App},
		{"sonaric daemon", p.Daemon},
		{"sonaric GUI", p.GUI},
	}
	for _, r := range rows {
		if err := table.Append([]string{r.name, r.info.Current, r.info.Latest, statusOf(r.info)}); err != nil {
			return fmt.Errorf("failed to append row: %w", err)
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	return nil
}

func statusOf(i version.Info) string {
	switch {
	case i.Current == "" || i.Current == version.NA:
		return version.NA
	case i.UpToDate:
		return "up to date"
	default:
		return "update available"
	}
}
