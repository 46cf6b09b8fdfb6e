package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/bekirdag/sheetadmin/internal/viewmodel"
)

type column interface {
	SetSize(width, height int)
	Update(msg tea.Msg) (column, tea.Cmd)
	View(styles styles, focused bool) string
	Title() string
	FocusValue() string
}

func newTableModel(columns []table.Column) table.Model {
	model := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	tStyles := table.DefaultStyles()
	tStyles.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(palette.textMuted).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(palette.border).
		BorderBottom(true).
		Padding(0, 1)
	tStyles.Cell = lipgloss.NewStyle().
		Padding(0, 1)
	tStyles.Selected = lipgloss.NewStyle().
		Foreground(palette.text).
		Background(palette.selection).
		Bold(true)
	model.SetStyles(tStyles)
	return model
}

func renderColumnPanel(s styles, title, body string, width int, focused bool) string {
	content := lipgloss.JoinVertical(lipgloss.Left, s.columnTitle.Render(title), body)
	if focused {
		return s.panelFocused.Width(width).Render(content)
	}
	return s.panel.Width(width).Render(content)
}

// columnsTableColumn lists the sheet's columns with their kind and the
// operations allowed on each.
type columnsTableColumn struct {
	title  string
	table  table.Model
	width  int
	height int
	rows   []viewmodel.ColumnRow
}

func newColumnsTableColumn(title string) *columnsTableColumn {
	return &columnsTableColumn{
		title: title,
		table: newTableModel(columnsTableLayout(60)),
	}
}

func columnsTableLayout(width int) []table.Column {
	// Each cell carries two columns of padding.
	name, kind, ops := 20, 14, 8
	details := width - name - kind - ops - 8 - 2
	if details < 12 {
		details = 12
	}
	return []table.Column{
		{Title: "Name", Width: name},
		{Title: "Kind", Width: kind},
		{Title: "Details", Width: details},
		{Title: "Ops", Width: ops},
	}
}

func (c *columnsTableColumn) SetRows(rows []viewmodel.ColumnRow) {
	prev := c.table.Cursor()
	c.rows = rows
	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row{row.Name, row.Kind.String(), row.Details, row.Ops()}
	}
	c.table.SetRows(tableRows)
	switch {
	case len(tableRows) == 0:
		c.table.SetCursor(0)
	case prev >= len(tableRows):
		c.table.SetCursor(len(tableRows) - 1)
	case prev < 0:
		c.table.SetCursor(0)
	}
}

func (c *columnsTableColumn) SelectedRow() (viewmodel.ColumnRow, bool) {
	if len(c.rows) == 0 {
		return viewmodel.ColumnRow{}, false
	}
	idx := c.table.Cursor()
	if idx < 0 || idx >= len(c.rows) {
		return viewmodel.ColumnRow{}, false
	}
	return c.rows[idx], true
}

func (c *columnsTableColumn) SetSize(width, height int) {
	if width < 40 {
		width = 40
	}
	if height < 6 {
		height = 6
	}
	c.width = width
	c.height = height
	c.table.SetColumns(columnsTableLayout(width - 2))
	c.table.SetHeight(height - 4)
}

func (c *columnsTableColumn) Update(msg tea.Msg) (column, tea.Cmd) {
	var cmd tea.Cmd
	c.table, cmd = c.table.Update(msg)
	return c, cmd
}

func (c *columnsTableColumn) View(s styles, focused bool) string {
	body := c.table.View()
	if len(c.rows) == 0 {
		body = s.muted.Padding(0, 1).Render("No columns loaded.")
	}
	return renderColumnPanel(s, c.title, body, c.width, focused)
}

func (c *columnsTableColumn) Title() string {
	return c.title
}

func (c *columnsTableColumn) FocusValue() string {
	if row, ok := c.SelectedRow(); ok {
		return row.Name
	}
	return ""
}

// historyTableColumn shows the filtered rebase log, newest first.
type historyTableColumn struct {
	title  string
	table  table.Model
	width  int
	height int
	rows   []viewmodel.HistoryRow
}

func newHistoryTableColumn(title string) *historyTableColumn {
	return &historyTableColumn{
		title: title,
		table: newTableModel(historyTableLayout(80)),
	}
}

func historyTableLayout(width int) []table.Column {
	version, ago := 9, 18
	comment := width - version - ago - 6 - 2
	if comment < 16 {
		comment = 16
	}
	return []table.Column{
		{Title: "Version", Width: version},
		{Title: "When", Width: ago},
		{Title: "Comment", Width: comment},
	}
}

func (c *historyTableColumn) SetRows(rows []viewmodel.HistoryRow) {
	c.rows = rows
	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row{strconv.Itoa(row.Version), row.TimeAgo, row.Comment}
	}
	c.table.SetRows(tableRows)
	c.table.SetCursor(0)
}

func (c *historyTableColumn) SetSize(width, height int) {
	if width < 40 {
		width = 40
	}
	if height < 5 {
		height = 5
	}
	c.width = width
	c.height = height
	c.table.SetColumns(historyTableLayout(width - 2))
	c.table.SetHeight(height - 4)
}

func (c *historyTableColumn) Update(msg tea.Msg) (column, tea.Cmd) {
	var cmd tea.Cmd
	c.table, cmd = c.table.Update(msg)
	return c, cmd
}

func (c *historyTableColumn) View(s styles, focused bool) string {
	body := c.table.View()
	if len(c.rows) == 0 {
		body = s.muted.Padding(0, 1).Render("No history.")
	}
	return renderColumnPanel(s, c.title, body, c.width, focused)
}

func (c *historyTableColumn) Title() string {
	return c.title
}

func (c *historyTableColumn) FocusValue() string {
	if len(c.rows) == 0 {
		return ""
	}
	idx := c.table.Cursor()
	if idx < 0 || idx >= len(c.rows) {
		return ""
	}
	return fmt.Sprintf("v%d", c.rows[idx].Version)
}

// aboutColumn renders the help prose in a scrollable viewport.
type aboutColumn struct {
	title  string
	width  int
	height int
	source string
	md     *markdownView
	view   viewport.Model
}

func newAboutColumn(source string, t theme) *aboutColumn {
	p := &aboutColumn{
		title:  "About",
		source: source,
		md:     newMarkdownView(t),
		view:   viewport.New(60, 10),
	}
	p.view.SetContent(p.md.Render(source))
	return p
}

func (p *aboutColumn) SetSize(width, height int) {
	if height < 3 {
		height = 3
	}
	p.width = width
	p.height = height
	p.view.Width = width - 2
	p.view.Height = height - 3
	if p.md.Configure(p.md.theme, width-4) {
		p.view.SetContent(p.md.Render(p.source))
	}
}

func (p *aboutColumn) SetTheme(t theme) {
	if p.md.Configure(t, p.md.wrap) {
		p.view.SetContent(p.md.Render(p.source))
	}
}

func (p *aboutColumn) Update(msg tea.Msg) (column, tea.Cmd) {
	var cmd tea.Cmd
	p.view, cmd = p.view.Update(msg)
	return p, cmd
}

func (p *aboutColumn) View(s styles, focused bool) string {
	return renderColumnPanel(s, p.title, p.view.View(), p.width, focused)
}

func (p *aboutColumn) Title() string {
	return p.title
}

func (p *aboutColumn) FocusValue() string {
	return fmt.Sprintf("%3.f%%", p.view.ScrollPercent()*100)
}

func renderKeyValues(s styles, pairs [][2]string, labelWidth int) string {
	lines := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		label := s.label.Width(labelWidth).Render(pair[0])
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, label, s.value.Render(pair[1])))
	}
	return strings.Join(lines, "\n")
}

func renderSummaryPanel(s styles, state *viewmodel.State, width int) string {
	if state == nil {
		return renderColumnPanel(s, "Summary", s.muted.Padding(0, 1).Render("Loading…"), width, false)
	}
	pairs := [][2]string{
		{"Name", state.Name},
		{"Parent", state.ParentName},
		{"Version", strconv.Itoa(state.LatestVersion)},
		{"Total Rows", humanize.Comma(int64(state.CountRecords))},
		{"Last refreshed", state.LoadedAt.Local().Format("Jan 2 15:04:05")},
	}
	return renderColumnPanel(s, "Summary", renderKeyValues(s, pairs, 16), width, false)
}

func renderSyncPanel(s styles, summary viewmodel.SyncSummary, width int) string {
	if !summary.Connected() {
		return ""
	}
	status := s.okText.Render(summary.Message)
	switch summary.State {
	case viewmodel.SyncError:
		status = s.errorText.Render(summary.Message)
	case viewmodel.SyncBehind:
		status = s.warning.Copy().Padding(0).Render(summary.Message)
	}
	pairs := [][2]string{
		{"Kind", summary.Kind},
		{"Description", summary.Description},
		{"Sync version", strconv.Itoa(summary.LastSyncVersion)},
		{"Last update", summary.LastUpdate},
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		renderKeyValues(s, pairs, 16),
		lipgloss.JoinHorizontal(lipgloss.Top, s.label.Width(16).Render("Status"), status),
	)
	return renderColumnPanel(s, "External Data Connection", body, width, false)
}
