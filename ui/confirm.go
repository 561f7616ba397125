package ui

import (
	"context"
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// IsInteractive reports whether stdin and stdout are both terminals.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// runFormFunc 便于测试替换
var runFormFunc = func(ctx context.Context, form *huh.Form) error { return form.RunWithContext(ctx) }

// HuhConfirmer asks yes/no questions in the terminal. AssumeYes skips the
// prompt; without a terminal it answers no so destructive steps never run
// unattended.
type HuhConfirmer struct {
	AssumeYes   bool
	Interactive bool
}

// NewConfirmer 根据 --yes 与终端状态创建确认器
func NewConfirmer(assumeYes bool) *HuhConfirmer {
	return &HuhConfirmer{AssumeYes: assumeYes, Interactive: IsInteractive()}
}

func (c *HuhConfirmer) Confirm(ctx context.Context, title, prompt string) (bool, error) {
	if c.AssumeYes {
		return true, nil
	}
	if !c.Interactive {
		return false, nil
	}

	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(prompt).
				Affirmative("Yes").
				Negative("No").
				Value(&confirmed),
		),
	).WithProgramOptions(tea.WithOutput(os.Stderr))

	err := runFormFunc(ctx, form)
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return confirmed, nil
}
