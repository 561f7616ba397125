package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dj8891/sonaric-desktop/internal/runner"
)

// Job is a long-running step whose output lines stream into sink.
type Job func(ctx context.Context, sink runner.LineSink) (string, error)

// ProgressModel 在执行动作脚本时展示 Spinner 和最近的输出行
// 完成后通过 tea.Quit 退出，结果写回自身字段
type ProgressModel struct {
	spinner spinner.Model
	styles  UIStyles
	status  string
	lines   []string

	ctx    context.Context
	cancel context.CancelFunc
	job    Job
	lineCh chan string

	result string
	err    error
	done   bool
}

// NewProgressModel creates a model that runs job when the program starts.
func NewProgressModel(ctx context.Context, status string, job Job) *ProgressModel {
	sp := spinner.New()
	sp.Spinner = spinner.Line
	ctx, cancel := context.WithCancel(ctx)
	return &ProgressModel{
		spinner: sp,
		styles:  DefaultStyles(),
		status:  status,
		ctx:     ctx,
		cancel:  cancel,
		job:     job,
		lineCh:  make(chan string, 64),
	}
}

// Init 启动 spinner、任务和输出监听
func (m *ProgressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.runJob(), m.waitForLine())
}

// Update 处理消息
func (m *ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancel()
			m.err = context.Canceled
			m.done = true
			return m, tea.Quit
		}
	case outputLineMsg:
		m.lines = tailLines(append(m.lines, string(msg)), runner.TailLines)
		return m, m.waitForLine()
	case jobDoneMsg:
		m.drainLines()
		m.cancel()
		m.done = true
		m.result = msg.output
		if m.err == nil {
			m.err = msg.err
		}
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

// View shows the status and the last few output lines.
func (m *ProgressModel) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.spinner.View() + " " + m.styles.Progress.Render(m.status))
	for _, line := range m.lines {
		b.WriteString("\n")
		b.WriteString(m.styles.Output.Render(line))
	}
	return b.String() + "\n"
}

// Result 返回任务结果
func (m *ProgressModel) Result() (string, error) {
	return m.result, m.err
}

// drainLines 收取任务结束前已写入 channel 但尚未展示的行
func (m *ProgressModel) drainLines() {
	for {
		select {
		case line := <-m.lineCh:
			m.lines = tailLines(append(m.lines, line), runner.TailLines)
		default:
			return
		}
	}
}

// sink 把输出行送入 channel；上下文结束后直接丢弃
func (m *ProgressModel) sink(line string) {
	select {
	case m.lineCh <- line:
	case <-m.ctx.Done():
	}
}

// ---------------- tea.Msg 定义 ----------------

type outputLineMsg string

type jobDoneMsg struct {
	output string
	err    error
}

// ---------------- Cmd 实现 --------------------

func (m *ProgressModel) runJob() tea.Cmd {
	return func() tea.Msg {
		out, err := m.job(m.ctx, m.sink)
		return jobDoneMsg{output: out, err: err}
	}
}

func (m *ProgressModel) waitForLine() tea.Cmd {
	return func() tea.Msg {
		select {
		case line := <-m.lineCh:
			return outputLineMsg(line)
		case <-m.ctx.Done():
			return nil
		}
	}
}

// RunProgress runs job behind a spinner when interactive, otherwise it
// prints the status and every output line to w.
func RunProgress(ctx context.Context, w io.Writer, interactive bool, status string, job Job) (string, error) {
	if !interactive {
		_, _ = fmt.Fprintln(w, status)
		return job(ctx, func(line string) {
			_, _ = fmt.Fprintln(w, line)
		})
	}

	model := NewProgressModel(ctx, status, job)
	final, err := tea.NewProgram(model, tea.WithOutput(w), tea.WithContext(ctx)).Run()
	if err != nil {
		return "", err
	}
	pm, ok := final.(*ProgressModel)
	if !ok {
		return "", fmt.Errorf("internal error: unexpected model type, got %T", final)
	}
	return pm.Result()
}
