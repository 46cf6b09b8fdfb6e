package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

type actionKind string

const (
	actionRefresh      actionKind = "refresh"
	actionDeleteColumn actionKind = "delete-column"
)

func (k actionKind) label(column string) string {
	switch k {
	case actionRefresh:
		return "Refresh"
	case actionDeleteColumn:
		return "Delete column " + column
	default:
		return string(k)
	}
}

type actionRequest struct {
	id     int
	kind   actionKind
	column string
	run    func(ctx context.Context) error
}

type actionMsg interface {
	isAction()
	actionID() int
}

type actionStartedMsg struct {
	ID     int
	Kind   actionKind
	Column string
}

func (actionStartedMsg) isAction()         {}
func (msg actionStartedMsg) actionID() int { return msg.ID }

type actionFinishedMsg struct {
	ID     int
	Kind   actionKind
	Column string
	Err    error
}

func (actionFinishedMsg) isAction()         {}
func (msg actionFinishedMsg) actionID() int { return msg.ID }

type actionChannelClosedMsg struct {
	ID int
}

func (actionChannelClosedMsg) isAction()         {}
func (msg actionChannelClosedMsg) actionID() int { return msg.ID }

// actionManager runs admin actions one at a time in submission order.
type actionManager struct {
	ctx     context.Context
	queue   []actionRequest
	current *actionRequest
	ch      chan actionMsg
	running bool
	nextID  int
}

func newActionManager(ctx context.Context) *actionManager {
	if ctx == nil {
		ctx = context.Background()
	}
	return &actionManager{ctx: ctx}
}

func (am *actionManager) Enqueue(req actionRequest) (int, tea.Cmd) {
	am.nextID++
	req.id = am.nextID
	am.queue = append(am.queue, req)
	return req.id, am.nextCmd()
}

// Busy reports whether an action is running or queued.
func (am *actionManager) Busy() bool {
	return am.running || len(am.queue) > 0
}

func (am *actionManager) Pending() int {
	return len(am.queue)
}

func (am *actionManager) Handle(msg actionMsg) tea.Cmd {
	if am.current == nil || msg.actionID() != am.current.id {
		return nil
	}
	switch msg.(type) {
	case actionStartedMsg:
		return waitForActionMsg(am.ch, msg.actionID())
	case actionFinishedMsg, actionChannelClosedMsg:
		am.running = false
		am.current = nil
		am.ch = nil
		return am.nextCmd()
	}
	return nil
}

func (am *actionManager) nextCmd() tea.Cmd {
	if am.running || len(am.queue) == 0 {
		return nil
	}
	req := am.queue[0]
	am.queue = am.queue[1:]
	am.current = &req
	am.running = true

	ch := make(chan actionMsg)
	am.ch = ch
	go runAction(am.ctx, req, ch)
	return waitForActionMsg(ch, req.id)
}

func runAction(ctx context.Context, req actionRequest, ch chan<- actionMsg) {
	defer close(ch)

	ch <- actionStartedMsg{ID: req.id, Kind: req.kind, Column: req.column}
	var err error
	if req.run != nil {
		err = req.run(ctx)
	}
	ch <- actionFinishedMsg{ID: req.id, Kind: req.kind, Column: req.column, Err: err}
}

func waitForActionMsg(ch <-chan actionMsg, id int) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return actionChannelClosedMsg{ID: id}
		}
		return msg
	}
}
