package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bekirdag/sheetadmin/internal/store"
	"github.com/bekirdag/sheetadmin/internal/trc"
	"github.com/bekirdag/sheetadmin/internal/viewmodel"
)

const (
	summaryPanelWidth = 46
	toastDuration     = 5 * time.Second
)

// adminBackend is the admin surface the UI drives.
type adminBackend interface {
	viewmodel.AdminGateway
	WaitIdle(ctx context.Context, interval time.Duration) error
}

type modelOptions struct {
	ctx          context.Context
	host         string
	sheetID      string
	gotoURL      string
	source       viewmodel.SheetSource
	admin        adminBackend
	store        *store.Store
	telemetry    *telemetryLogger
	pollInterval time.Duration
	ui           *uiConfig
	uiPath       string
	clock        func() time.Time
	copyText     func(string) error
}

type idleMsg struct {
	Err error
}

type sheetLoadedMsg struct {
	State viewmodel.State
	Err   error
}

type keyMap struct {
	quit        key.Binding
	nextFocus   key.Binding
	prevFocus   key.Binding
	refresh     key.Binding
	deleteCol   key.Binding
	copyLink    key.Binding
	copyAudit   key.Binding
	toggleAbout key.Binding
	cycleTheme  key.Binding
	toggleLogs  key.Binding
	toggleHelp  key.Binding
	confirmYes  key.Binding
	confirmNo   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		nextFocus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next panel"),
		),
		prevFocus: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev panel"),
		),
		refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh sheet"),
		),
		deleteCol: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete column"),
		),
		copyLink: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy plugin link"),
		),
		copyAudit: key.NewBinding(
			key.WithKeys("Y"),
			key.WithHelp("Y", "copy audit link"),
		),
		toggleAbout: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "about"),
		),
		cycleTheme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "theme"),
		),
		toggleLogs: key.NewBinding(
			key.WithKeys("f6"),
			key.WithHelp("F6", "toggle logs"),
		),
		toggleHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		confirmYes: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "yes"),
		),
		confirmNo: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n/esc", "no"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.nextFocus,
		k.refresh,
		k.deleteCol,
		k.copyLink,
		k.toggleAbout,
		k.toggleHelp,
		k.quit,
	}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.nextFocus, k.prevFocus},
		{k.refresh, k.deleteCol},
		{k.copyLink, k.copyAudit},
		{k.toggleAbout, k.cycleTheme, k.toggleLogs},
		{k.toggleHelp, k.quit},
	}
}

type model struct {
	opts   modelOptions
	keys   keyMap
	help   help.Model
	styles styles

	spinner     spinner.Model
	paused      bool
	pauseReason string

	width  int
	height int

	tf      viewmodel.TimeFormatter
	state   *viewmodel.State
	loadErr error

	actions *actionManager

	confirmActive bool
	confirmRow    viewmodel.ColumnRow

	columnsCol *columnsTableColumn
	historyCol *historyTableColumn
	aboutCol   *aboutColumn
	logsCol    *logsColumn
	focus      int

	showAbout bool
	showLogs  bool
	theme     theme

	logs     viewport.Model
	logLines []string

	toastMessage string
	toastExpires time.Time
}

func newModel(opts modelOptions) *model {
	if opts.ctx == nil {
		opts.ctx = context.Background()
	}
	if opts.clock == nil {
		opts.clock = time.Now
	}
	if opts.copyText == nil {
		opts.copyText = clipboard.WriteAll
	}
	if opts.ui == nil {
		opts.ui = &uiConfig{}
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	uiTheme := parseTheme(opts.ui.Theme)

	m := &model{
		opts:        opts,
		keys:        newKeyMap(),
		help:        help.New(),
		styles:      newStyles(),
		spinner:     sp,
		paused:      true,
		pauseReason: "Waiting for pending operations",
		tf:          viewmodel.TimeFormatter{Now: opts.clock, Pretty: viewmodel.PrettyDuration()},
		actions:     newActionManager(opts.ctx),
		columnsCol:  newColumnsTableColumn("Columns"),
		historyCol:  newHistoryTableColumn("History"),
		aboutCol:    newAboutColumn(aboutMarkdown(opts.gotoURL, opts.sheetID), uiTheme),
		showLogs:    opts.ui.ShowLogs,
		theme:       uiTheme,
		logs:        viewport.New(80, logsColumnHeight),
	}
	m.logsCol = newLogsColumn(m)
	return m
}

func (m *model) clock() time.Time {
	return m.opts.clock()
}

func (m *model) Init() tea.Cmd {
	m.logInfo("Opening sheet %s on %s", m.opts.sheetID, m.opts.host)
	return tea.Batch(m.spinner.Tick, m.waitIdleCmd())
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch message := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(message)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width, m.height = message.Width, message.Height
		m.applyLayout()
		return m, nil

	case tea.KeyMsg:
		if handled, cmd := m.handleKey(message); handled {
			return m, cmd
		}

	case idleMsg:
		return m, m.handleIdle(message)

	case sheetLoadedMsg:
		cmd := m.handleSheetLoaded(message)
		m.applyLayout()
		return m, cmd

	case actionMsg:
		return m, m.handleActionMsg(message)
	}

	if col := m.focusedColumn(); col != nil {
		if _, cmd := col.Update(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, tea.Batch(cmds...)
}

func (m *model) waitIdleCmd() tea.Cmd {
	admin := m.opts.admin
	ctx := m.opts.ctx
	interval := m.opts.pollInterval
	return func() tea.Msg {
		if admin == nil {
			return idleMsg{}
		}
		return idleMsg{Err: admin.WaitIdle(ctx, interval)}
	}
}

func (m *model) loadCmd() tea.Cmd {
	src := m.opts.source
	ctx := m.opts.ctx
	tf := m.tf
	return func() tea.Msg {
		if src == nil {
			return sheetLoadedMsg{Err: errors.New("no sheet source configured")}
		}
		state, err := viewmodel.Load(ctx, src, tf)
		return sheetLoadedMsg{State: state, Err: err}
	}
}

func (m *model) handleIdle(msg idleMsg) tea.Cmd {
	if msg.Err != nil {
		m.logWarn("Waiting for pending operations failed: %v", msg.Err)
	}
	m.pause("Loading sheet")
	return m.loadCmd()
}

func (m *model) handleSheetLoaded(msg sheetLoadedMsg) tea.Cmd {
	if !m.actions.Busy() {
		m.resume()
	}
	if msg.Err != nil {
		m.loadErr = msg.Err
		m.logError("%v", msg.Err)
		m.setToast("Load failed: "+msg.Err.Error(), toastDuration)
		m.emit(telemetryEvent{Event: eventLoadFailed, Error: msg.Err.Error()})
		return nil
	}

	state := msg.State
	m.state = &state
	m.loadErr = nil
	m.columnsCol.SetRows(state.Columns)
	m.historyCol.SetRows(state.History)
	m.logInfo("Loaded %q version %d: %d columns, %d history entries", state.Name, state.LatestVersion, len(state.Columns), len(state.History))
	if state.Warning != "" {
		m.logWarn("%s", state.Warning)
	}
	if state.Sync.State == viewmodel.SyncError {
		m.logWarn("Sync %s", state.Sync.Message)
	}
	if err := m.opts.store.TouchSheet(store.RecentSheet{
		Host:     m.opts.host,
		SheetID:  m.opts.sheetID,
		Name:     state.Name,
		Version:  state.LatestVersion,
		OpenedAt: m.clock(),
	}); err != nil {
		m.logWarn("Recording recent sheet failed: %v", err)
	}
	m.emit(telemetryEvent{Event: eventSheetLoaded, ExtraJSON: map[string]string{
		"version": fmt.Sprint(state.LatestVersion),
		"columns": fmt.Sprint(len(state.Columns)),
	}})
	return nil
}

func (m *model) handleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	if m.confirmActive {
		switch {
		case key.Matches(msg, m.keys.confirmYes):
			m.confirmActive = false
			return true, m.enqueueDelete(m.confirmRow)
		case key.Matches(msg, m.keys.confirmNo):
			m.confirmActive = false
			m.logInfo("Delete of %s cancelled: %v", m.confirmRow.Name, viewmodel.ErrDeclined)
			return true, nil
		case msg.String() == "ctrl+c":
			return true, tea.Quit
		}
		return true, nil
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return true, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		m.applyLayout()
		return true, nil
	case key.Matches(msg, m.keys.nextFocus):
		m.moveFocus(1)
		return true, nil
	case key.Matches(msg, m.keys.prevFocus):
		m.moveFocus(-1)
		return true, nil
	case key.Matches(msg, m.keys.toggleLogs):
		m.showLogs = !m.showLogs
		m.opts.ui.ShowLogs = m.showLogs
		m.saveUI()
		m.clampFocus()
		m.applyLayout()
		return true, nil
	case key.Matches(msg, m.keys.toggleAbout):
		m.showAbout = !m.showAbout
		m.applyLayout()
		return true, nil
	case key.Matches(msg, m.keys.cycleTheme):
		m.theme = m.theme.next()
		m.aboutCol.SetTheme(m.theme)
		m.opts.ui.Theme = m.theme.String()
		m.saveUI()
		m.setToast("Theme: "+m.theme.String(), 2*time.Second)
		return true, nil
	case key.Matches(msg, m.keys.copyAudit):
		m.copyLink(trc.PluginAudit)
		return true, nil
	case key.Matches(msg, m.keys.copyLink):
		plugin := trc.PluginAudit
		if row, ok := m.columnsCol.SelectedRow(); ok {
			plugin = trc.PluginFor(row.Kind)
		}
		m.copyLink(plugin)
		return true, nil
	case key.Matches(msg, m.keys.refresh):
		if m.rejectWhilePaused() {
			return true, nil
		}
		return true, m.enqueueRefresh()
	case key.Matches(msg, m.keys.deleteCol):
		if m.rejectWhilePaused() {
			return true, nil
		}
		m.requestDelete()
		return true, nil
	}
	return false, nil
}

func (m *model) rejectWhilePaused() bool {
	if !m.paused {
		return false
	}
	m.setToast("Busy: "+m.pauseReason, 2*time.Second)
	return true
}

func (m *model) requestDelete() {
	row, ok := m.columnsCol.SelectedRow()
	if !ok {
		return
	}
	if !row.Deletable {
		msg := fmt.Sprintf("%s: %v", row.Name, viewmodel.ErrNotDeletable)
		m.logWarn("%s", msg)
		m.setToast(msg, toastDuration)
		return
	}
	m.confirmRow = row
	m.confirmActive = true
}

func (m *model) enqueueRefresh() tea.Cmd {
	admin := m.opts.admin
	m.emit(telemetryEvent{Event: eventActionRequested, Action: string(actionRefresh)})
	return m.enqueueAction(actionRequest{
		kind: actionRefresh,
		run: func(ctx context.Context) error {
			return viewmodel.Refresh(ctx, admin)
		},
	})
}

func (m *model) enqueueDelete(row viewmodel.ColumnRow) tea.Cmd {
	admin := m.opts.admin
	m.emit(telemetryEvent{Event: eventActionRequested, Action: string(actionDeleteColumn), Column: row.Name})
	return m.enqueueAction(actionRequest{
		kind:   actionDeleteColumn,
		column: row.Name,
		run: func(ctx context.Context) error {
			return viewmodel.DeleteColumn(ctx, admin, viewmodel.Confirmed, row)
		},
	})
}

func (m *model) enqueueAction(req actionRequest) tea.Cmd {
	if m.opts.admin == nil {
		m.setToast("No admin connection configured", toastDuration)
		return nil
	}
	m.pause(req.kind.label(req.column))
	_, cmd := m.actions.Enqueue(req)
	return cmd
}

func (m *model) handleActionMsg(msg actionMsg) tea.Cmd {
	next := m.actions.Handle(msg)

	switch message := msg.(type) {
	case actionStartedMsg:
		m.logInfo("%s started", message.Kind.label(message.Column))
		return next

	case actionFinishedMsg:
		label := message.Kind.label(message.Column)
		if err := m.opts.store.RecordAction(m.opts.sheetID, string(message.Kind), message.Column, message.Err); err != nil {
			m.logWarn("Recording action failed: %v", err)
		}
		if message.Err != nil {
			m.logError("%s failed: %v", label, message.Err)
			m.setToast(label+" failed: "+message.Err.Error(), toastDuration)
			m.emit(telemetryEvent{Event: eventActionFailed, Action: string(message.Kind), Column: message.Column, Error: message.Err.Error()})
			if !m.actions.Busy() {
				m.resume()
			}
			return next
		}

		m.logInfo("%s succeeded, reloading", label)
		m.setToast(label+" succeeded", toastDuration)
		m.emit(telemetryEvent{Event: eventActionSucceeded, Action: string(message.Kind), Column: message.Column})
		m.discardState()
		m.pause("Waiting for pending operations")
		return tea.Batch(next, m.waitIdleCmd())
	}
	return next
}

// discardState drops the snapshot so nothing stale renders during reload.
func (m *model) discardState() {
	m.state = nil
	m.loadErr = nil
	m.columnsCol.SetRows(nil)
	m.historyCol.SetRows(nil)
}

func (m *model) copyLink(plugin string) {
	link := trc.GotoLink(m.opts.gotoURL, m.opts.sheetID, plugin)
	if err := m.opts.copyText(link); err != nil {
		m.logError("Copy link failed: %v", err)
		m.setToast("Clipboard unavailable: "+err.Error(), toastDuration)
		return
	}
	m.logInfo("Copied %s link %s", plugin, link)
	m.setToast("Copied "+plugin+" link", 3*time.Second)
	m.emit(telemetryEvent{Event: eventLinkCopied, ExtraJSON: map[string]string{"plugin": plugin}})
}

func (m *model) pause(reason string) {
	m.paused = true
	m.pauseReason = strings.TrimSpace(reason)
}

func (m *model) resume() {
	m.paused = false
	m.pauseReason = ""
}

func (m *model) saveUI() {
	if m.opts.uiPath == "" {
		return
	}
	if err := saveUIConfig(m.opts.ui, m.opts.uiPath); err != nil {
		m.logWarn("Saving UI preferences failed: %v", err)
	}
}

func (m *model) emit(event telemetryEvent) {
	if m.opts.telemetry == nil {
		return
	}
	if event.Sheet == "" {
		event.Sheet = m.opts.sheetID
	}
	m.opts.telemetry.Emit(event)
}

func (m *model) setToast(msg string, duration time.Duration) {
	trimmed := strings.TrimSpace(msg)
	if trimmed == "" {
		m.toastMessage = ""
		m.toastExpires = time.Time{}
		return
	}
	if duration <= 0 {
		duration = toastDuration
	}
	m.toastMessage = trimmed
	m.toastExpires = m.clock().Add(duration)
}

func (m *model) focusables() []column {
	cols := []column{m.columnsCol}
	if m.showAbout {
		cols = append(cols, m.aboutCol)
	} else {
		cols = append(cols, m.historyCol)
	}
	if m.showLogs {
		cols = append(cols, m.logsCol)
	}
	return cols
}

func (m *model) focusedColumn() column {
	cols := m.focusables()
	if m.focus < 0 || m.focus >= len(cols) {
		return nil
	}
	return cols[m.focus]
}

func (m *model) moveFocus(delta int) {
	cols := m.focusables()
	m.focus = (m.focus + delta + len(cols)) % len(cols)
}

func (m *model) clampFocus() {
	if cols := m.focusables(); m.focus >= len(cols) {
		m.focus = len(cols) - 1
	}
}

func (m *model) warningView() string {
	if m.state == nil || m.state.Warning == "" {
		return ""
	}
	return m.styles.warning.Width(m.width).Render(m.state.Warning)
}

func (m *model) applyLayout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	m.help.Width = maxInt(m.width-4, 0)

	chrome := 2 + lipgloss.Height(m.help.View(m.keys))
	if warning := m.warningView(); warning != "" {
		chrome += lipgloss.Height(warning)
	}
	body := maxInt(m.height-chrome, 12)
	if m.showLogs {
		m.logsCol.SetSize(m.width, logsColumnHeight)
		body = maxInt(body-logsColumnHeight, 12)
	}

	upper := maxInt(body*3/5, 8)
	lower := maxInt(body-upper, 5)
	m.columnsCol.SetSize(maxInt(m.width-summaryPanelWidth, 40), upper)
	m.historyCol.SetSize(m.width, lower)
	m.aboutCol.SetSize(m.width, lower)
}

func (m *model) View() string {
	var builder strings.Builder

	title := "sheetadmin • " + m.opts.sheetID
	if m.state != nil && m.state.Name != "" {
		title += " • " + m.state.Name
	}
	builder.WriteString(m.styles.topBar.Width(m.width).Render(title))
	builder.WriteRune('\n')
	if warning := m.warningView(); warning != "" {
		builder.WriteString(warning)
		builder.WriteRune('\n')
	}

	focused := m.focusedColumn()
	left := renderSummaryPanel(m.styles, m.state, summaryPanelWidth-2)
	if m.state == nil && m.loadErr != nil {
		left = renderColumnPanel(m.styles, "Summary", m.styles.errorText.Padding(0, 1).Width(summaryPanelWidth-4).Render(m.loadErr.Error()), summaryPanelWidth-2, false)
	}
	if m.state != nil {
		if sync := renderSyncPanel(m.styles, m.state.Sync, summaryPanelWidth-2); sync != "" {
			left = lipgloss.JoinVertical(lipgloss.Left, left, sync)
		}
	}
	upper := lipgloss.JoinHorizontal(lipgloss.Top, left, m.columnsCol.View(m.styles, focused == column(m.columnsCol)))
	builder.WriteString(upper)
	builder.WriteRune('\n')

	if m.showAbout {
		builder.WriteString(m.aboutCol.View(m.styles, focused == column(m.aboutCol)))
	} else {
		builder.WriteString(m.historyCol.View(m.styles, focused == column(m.historyCol)))
	}
	builder.WriteRune('\n')

	if m.showLogs {
		builder.WriteString(m.logsCol.View(m.styles, focused == column(m.logsCol)))
		builder.WriteRune('\n')
	}

	if helpView := m.help.View(m.keys); helpView != "" {
		builder.WriteString(helpView)
		builder.WriteRune('\n')
	}
	builder.WriteString(m.renderStatus())

	if m.confirmActive {
		overlayWidth := minInt(64, maxInt(m.width-4, 24))
		content := lipgloss.JoinVertical(lipgloss.Left,
			m.styles.cmdPrompt.Render(viewmodel.DeletePrompt(m.confirmRow.Name)),
			"",
			m.styles.cmdHint.Render("y delete • n/esc cancel"),
		)
		overlay := m.styles.cmdOverlay.Width(overlayWidth).Render(content)
		builder.WriteString("\n")
		builder.WriteString(lipgloss.Place(m.width, m.height/2, lipgloss.Center, lipgloss.Center, overlay))
	}

	return m.styles.app.Render(builder.String())
}

func (m *model) renderStatus() string {
	var segments []string
	if col := m.focusedColumn(); col != nil {
		value := strings.TrimSpace(col.FocusValue())
		if value == "" {
			value = "-"
		}
		segments = append(segments, m.styles.statusSeg.Render(fmt.Sprintf("%s: %s", col.Title(), value)))
	}
	if m.paused {
		spin := m.spinner.View()
		if m.pauseReason != "" {
			spin += " " + m.pauseReason
		}
		segments = append(segments, m.styles.statusSeg.Render(spin))
	}
	if pending := m.actions.Pending(); pending > 0 {
		segments = append(segments, m.styles.statusSeg.Render(fmt.Sprintf("Queued: %d", pending)))
	}
	if m.state != nil && m.state.Sync.Connected() {
		segments = append(segments, m.styles.statusSeg.Render("Sync: "+m.state.Sync.State.String()))
	}
	segments = append(segments, m.styles.statusSeg.Render(fmt.Sprintf("Logs: %s", onOff(m.showLogs))))
	segments = append(segments, m.styles.statusSeg.Render("Theme: "+m.theme.String()))
	if m.toastMessage != "" {
		if m.clock().After(m.toastExpires) {
			m.toastMessage = ""
		} else {
			segments = append(segments, m.styles.statusSeg.Render(m.toastMessage))
		}
	}
	content := strings.Join(segments, "│")
	return m.styles.statusBar.Width(m.width).Render(content)
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
