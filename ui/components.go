package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dj8891/sonaric-desktop/internal/lifecycle"
)

// UIColors 定义统一的颜色主题
type UIColors struct {
	Gray   lipgloss.Color
	Blue   lipgloss.Color
	Green  lipgloss.Color
	Yellow lipgloss.Color
	Red    lipgloss.Color
	White  lipgloss.Color
	Orange lipgloss.Color
}

// DefaultColors 返回默认的颜色主题
func DefaultColors() UIColors {
	return UIColors{
		Gray:   lipgloss.Color("245"),
		Blue:   lipgloss.Color("39"),
		Green:  lipgloss.Color("42"),
		Yellow: lipgloss.Color("220"),
		Red:    lipgloss.Color("196"),
		White:  lipgloss.Color("255"),
		Orange: lipgloss.Color("208"),
	}
}

// UIStyles 定义统一的样式
type UIStyles struct {
	Colors   UIColors
	Title    lipgloss.Style
	Muted    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Progress lipgloss.Style
	Output   lipgloss.Style
}

// DefaultStyles 返回默认的样式集
func DefaultStyles() UIStyles {
	colors := DefaultColors()
	return UIStyles{
		Colors:   colors,
		Title:    lipgloss.NewStyle().Foreground(colors.White).Bold(true),
		Muted:    lipgloss.NewStyle().Foreground(colors.Gray),
		Success:  lipgloss.NewStyle().Foreground(colors.Green),
		Warning:  lipgloss.NewStyle().Foreground(colors.Yellow),
		Error:    lipgloss.NewStyle().Foreground(colors.Red),
		Progress: lipgloss.NewStyle().Foreground(colors.Blue),
		Output:   lipgloss.NewStyle().Foreground(colors.Gray).PaddingLeft(2),
	}
}

// RenderStatusLine 渲染状态行
func RenderStatusLine(icon, text string, style lipgloss.Style) string {
	return icon + " " + style.Render(text)
}

// RenderStatusBar 渲染带背景的进度/完成提示
func RenderStatusBar(message string, isSuccess bool) string {
	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color("39")).
		Background(lipgloss.Color("19")).
		Bold(true).
		Padding(0, 1)
	indicator := "▶"
	if isSuccess {
		style = style.Foreground(lipgloss.Color("42")).Background(lipgloss.Color("22"))
		indicator = "✓"
	}
	return style.Render(indicator + " " + message)
}

// stateLabels 面向用户的状态描述
var stateLabels = map[lifecycle.State]string{
	lifecycle.NeedsInstall:    "Sonaric is not installed",
	lifecycle.NeedsStart:      "Sonaric is not running",
	lifecycle.UpdateAvailable: "An update is available",
	lifecycle.Ready:           "Sonaric is running",
}

// RenderState renders a detection result as one or two status lines.
func RenderState(res lifecycle.Result) string {
	styles := DefaultStyles()

	var line string
	switch res.State {
	case lifecycle.Ready:
		line = RenderStatusLine("✓", stateLabels[res.State], styles.Success)
	case lifecycle.UpdateAvailable:
		line = RenderStatusLine("↑", stateLabels[res.State], styles.Warning)
	case lifecycle.NeedsStart:
		line = RenderStatusLine("■", stateLabels[res.State], styles.Warning)
	default:
		line = RenderStatusLine("✗", stateLabels[res.State], styles.Error)
	}

	var b strings.Builder
	b.WriteString(line)
	b.WriteString(styles.Muted.Render(" [" + string(res.State) + "]"))
	if res.Reason != "" {
		b.WriteString("\n  ")
		b.WriteString(styles.Muted.Render(res.Reason))
	}
	return b.String()
}

// tailLines keeps at most n trailing lines.
func tailLines(lines []string, n int) []string {
	if len(lines) <= n {
		return lines
	}
	return lines[len(lines)-n:]
}
