package main

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	maxLogLines      = 400
	logsColumnHeight = 10
)

// logsColumn renders the model's log viewport with a one-cell scroll bar
// on the left.
type logsColumn struct {
	model  *model
	title  string
	width  int
	height int
}

func newLogsColumn(m *model) *logsColumn {
	return &logsColumn{model: m, title: "Logs"}
}

func (c *logsColumn) SetSize(width, height int) {
	c.width = maxInt(width, 0)
	c.height = maxInt(height, 4)
	if c.model == nil {
		return
	}
	vp := &c.model.logs
	// Border and title take two columns and three rows; the bar one column.
	vp.Width = maxInt(c.width-3, 1)
	vp.Height = maxInt(c.height-3, 1)
	if limit := maxInt(len(c.model.logLines)-vp.Height, 0); vp.YOffset > limit {
		vp.SetYOffset(limit)
	}
}

func (c *logsColumn) Update(msg tea.Msg) (column, tea.Cmd) {
	if c.model == nil {
		return c, nil
	}
	var cmd tea.Cmd
	c.model.logs, cmd = c.model.logs.Update(msg)
	return c, cmd
}

func (c *logsColumn) View(s styles, focused bool) string {
	if c.model == nil {
		return renderColumnPanel(s, c.title, "", c.width, focused)
	}
	vp := c.model.logs
	rows := strings.Split(vp.View(), "\n")
	for len(rows) < vp.Height {
		rows = append(rows, "")
	}
	rows = rows[:vp.Height]

	from, to := scrollThumb(vp.TotalLineCount(), vp.Height, vp.YOffset)
	for i := range rows {
		mark := s.scrollTrack.Render("│")
		if i >= from && i < to {
			mark = s.scrollThumb.Render("│")
		}
		rows[i] = mark + rows[i]
	}
	return renderColumnPanel(s, c.title, strings.Join(rows, "\n"), c.width, focused)
}

// scrollThumb returns the [from, to) rows of a bar of height visible that
// represent the window at offset into total lines. Content that fits gives
// an empty thumb.
func scrollThumb(total, visible, offset int) (int, int) {
	if visible <= 0 || total <= visible {
		return 0, 0
	}
	size := maxInt(int(math.Round(float64(visible*visible)/float64(total))), 1)
	offset = minInt(maxInt(offset, 0), total-visible)
	from := int(math.Round(float64(offset) / float64(total-visible) * float64(visible-size)))
	return from, minInt(from+size, visible)
}

func (c *logsColumn) Title() string {
	return c.title
}

func (c *logsColumn) FocusValue() string {
	if c.model == nil {
		return ""
	}
	total := len(c.model.logLines)
	if total == 0 {
		return "Idle"
	}
	start := c.model.logs.YOffset + 1
	end := minInt(start+c.model.logs.Height-1, total)
	return fmt.Sprintf("Showing %d-%d/%d", start, end, total)
}

func (m *model) appendLog(level, line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	stamp := m.clock().Format("15:04:05")
	m.logLines = append(m.logLines, fmt.Sprintf("%s [%s] %s", stamp, level, line))
	if len(m.logLines) > maxLogLines {
		m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
	}
	m.refreshLogs()
}

func (m *model) logInfo(format string, args ...any) {
	m.appendLog("INFO", fmt.Sprintf(format, args...))
}

func (m *model) logWarn(format string, args ...any) {
	m.appendLog("WARN", fmt.Sprintf(format, args...))
}

func (m *model) logError(format string, args ...any) {
	m.appendLog("ERROR", fmt.Sprintf(format, args...))
}

func (m *model) refreshLogs() {
	atBottom := m.logs.AtBottom()
	m.logs.SetContent(strings.Join(m.logLines, "\n"))
	if atBottom {
		m.logs.GotoBottom()
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
