package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dj8891/sonaric-desktop/internal/lifecycle"
)

// ---------------- Message Types ------------------
// CheckStartMsg 表示新一轮检测开始
type CheckStartMsg struct{}

// CheckResultMsg 携带检测结果
type CheckResultMsg struct {
	Result lifecycle.Result
	At     time.Time
}

// CheckErrorMsg 表示检测失败
type CheckErrorMsg struct {
	Err error
}

// StatusMsg is a progress message emitted during a check.
type StatusMsg string

// ---------------- Model --------------------------
// WatchModel 展示 watch 命令的最新检测状态，由外部通过 Program.Send 推送消息
type WatchModel struct {
	spinner  spinner.Model
	checking bool
	status   string
	result   *lifecycle.Result
	at       time.Time
	err      error
}

// NewWatchModel 返回初始模型，处于检测中状态
func NewWatchModel() WatchModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return WatchModel{spinner: sp, checking: true, status: lifecycle.StatusCheckingComponents}
}

func (m WatchModel) Init() tea.Cmd { return m.spinner.Tick }

// Update 根据不同 Msg 更新模型
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}
	case CheckStartMsg:
		m.checking = true
		m.status = lifecycle.StatusCheckingComponents
	case StatusMsg:
		m.status = string(msg)
	case CheckResultMsg:
		m.checking = false
		m.result = &msg.Result
		m.at = msg.At
		m.err = nil
	case CheckErrorMsg:
		m.checking = false
		m.err = msg.Err
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View 返回当前视图字符串
func (m WatchModel) View() string {
	styles := DefaultStyles()
	var view string
	switch {
	case m.err != nil:
		view = RenderStatusLine("✗", "Error: "+m.err.Error(), styles.Error)
	case m.result != nil:
		view = RenderState(*m.result)
		if !m.at.IsZero() {
			view += "\n" + styles.Muted.Render("last checked "+m.at.Format(time.TimeOnly))
		}
	}
	if m.checking {
		if view != "" {
			view += "\n"
		}
		view += m.spinner.View() + " " + styles.Progress.Render(m.status)
	}
	return view + "\n" + styles.Muted.Render("press q to quit") + "\n"
}
