package controller

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/adamkadaban/hotfix-tui/internal/catalog"
	"github.com/adamkadaban/hotfix-tui/internal/inventory"
	"github.com/adamkadaban/hotfix-tui/internal/notify"
	"github.com/adamkadaban/hotfix-tui/internal/projection"
	"github.com/adamkadaban/hotfix-tui/internal/session"
)

// CatalogMsg carries the result of the catalog fetch.
type CatalogMsg struct {
	Manifest catalog.Manifest
	Err      error
}

// RosterMsg carries the result of the roster fetch.
type RosterMsg struct {
	Nodes []inventory.Node
	Err   error
}

// NodeDataMsg carries the result of one node-data fetch.
type NodeDataMsg struct {
	Request session.FetchRequest
	Data    inventory.NodeData
	Err     error
}

// TimerMsg is delivered when a scheduler timer elapses.
type TimerMsg struct {
	Timer notify.Timer
}

// Options configure a Dispatcher.
type Options struct {
	// Timeout bounds every fetch. Zero disables the bound.
	Timeout time.Duration
	// After schedules msg after d. It defaults to tea.Tick.
	After  func(d time.Duration, msg tea.Msg) tea.Cmd
	Logger *zap.Logger
}

// Dispatcher turns UI actions into session calls and fetch commands. Fetches
// run inside tea commands; their results come back as messages and are
// applied on the UI loop by Update.
type Dispatcher struct {
	ctx     context.Context
	session *session.Session
	source  inventory.Source
	timeout time.Duration
	after   func(time.Duration, tea.Msg) tea.Cmd
	logger  *zap.Logger
}

var (
	_ HotfixView   = (*Dispatcher)(nil)
	_ NodeSelector = (*Dispatcher)(nil)
	_ AlertManager = (*Dispatcher)(nil)
	_ Loader       = (*Dispatcher)(nil)
	_ Controller   = (*Dispatcher)(nil)
)

// New returns a dispatcher bound to ctx. Cancelling ctx aborts in-flight fetches.
func New(ctx context.Context, sess *session.Session, src inventory.Source, opts Options) *Dispatcher {
	if opts.After == nil {
		opts.After = func(d time.Duration, msg tea.Msg) tea.Cmd {
			return tea.Tick(d, func(time.Time) tea.Msg { return msg })
		}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Dispatcher{
		ctx:     ctx,
		session: sess,
		source:  src,
		timeout: opts.Timeout,
		after:   opts.After,
		logger:  opts.Logger.Named("controller"),
	}
}

// Session returns the underlying session.
func (d *Dispatcher) Session() *session.Session { return d.session }

// Load issues the catalog and roster fetches.
func (d *Dispatcher) Load() tea.Cmd {
	return tea.Batch(d.fetchCatalog(), d.fetchRoster())
}

// Reload clears the session and fetches everything again.
func (d *Dispatcher) Reload() tea.Cmd {
	d.logger.Info("reloading session")
	d.session.Reload()
	return d.Load()
}

// Update applies fetch results and timers. handled is false for messages
// the dispatcher does not own.
func (d *Dispatcher) Update(msg tea.Msg) (cmd tea.Cmd, handled bool) {
	switch msg := msg.(type) {
	case CatalogMsg:
		return d.schedule(d.session.ApplyCatalog(msg.Manifest, msg.Err)), true
	case RosterMsg:
		req, ok := d.session.ApplyRoster(msg.Nodes, msg.Err)
		if !ok {
			return nil, true
		}
		return d.fetchNodeData(req), true
	case NodeDataMsg:
		return d.schedule(d.session.ApplyNodeData(msg.Request, msg.Data, msg.Err)), true
	case TimerMsg:
		return d.schedule(d.session.FireTimer(msg.Timer)), true
	}
	return nil, false
}

// SelectNode switches the inspected node and fetches its data.
func (d *Dispatcher) SelectNode(id string) tea.Cmd {
	req, ok := d.session.SelectNode(id)
	if !ok {
		return nil
	}
	return d.fetchNodeData(req)
}

// Search narrows the hotfix table to rows matching term.
func (d *Dispatcher) Search(term string) { d.session.OnSearch(term) }

// ToggleFilter selects or clears a filter candidate and reports whether the
// filter changed.
func (d *Dispatcher) ToggleFilter(col projection.Column, value string, selected bool) bool {
	return d.session.OnFilterChange(col, value, selected)
}

// Sort advances the sort cycle of col.
func (d *Dispatcher) Sort(col projection.Column) { d.session.OnSort(col) }

// ClearAll resets the table view to its defaults.
func (d *Dispatcher) ClearAll() { d.session.ClearAll() }

// ToggleExpand flips the expanded flag of the record at ordinal.
func (d *Dispatcher) ToggleExpand(ordinal int) bool { return d.session.ToggleExpand(ordinal) }

// OpenDetail opens the detail pane for the row at ordinal.
func (d *Dispatcher) OpenDetail(ordinal int) bool { return d.session.OpenDetail(ordinal) }

// CloseDetail closes the detail pane.
func (d *Dispatcher) CloseDetail() { d.session.CloseDetail() }

// DismissAlert removes an alert from the screen.
func (d *Dispatcher) DismissAlert(id int) { d.session.DismissAlert(id) }

// PauseAlert holds an alert on screen while it has focus.
func (d *Dispatcher) PauseAlert(id int) { d.session.PauseAlert(id) }

// ResumeAlert restarts the exit timer of a paused alert.
func (d *Dispatcher) ResumeAlert(id int) tea.Cmd {
	return d.schedule(d.session.ResumeAlert(id))
}

// ActivateAlert opens the detail view an alert points at.
func (d *Dispatcher) ActivateAlert(id int) bool { return d.session.ActivateAlert(id) }

// OpenPanel shows the notification history panel.
func (d *Dispatcher) OpenPanel() { d.session.OpenPanel() }

// ClosePanel hides the notification history panel.
func (d *Dispatcher) ClosePanel() { d.session.ClosePanel() }

// ClearHistory empties the notification history.
func (d *Dispatcher) ClearHistory() { d.session.ClearHistory() }

func (d *Dispatcher) schedule(timers []notify.Timer) tea.Cmd {
	if len(timers) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(timers))
	for _, t := range timers {
		cmds = append(cmds, d.after(t.After, TimerMsg{Timer: t}))
	}
	return tea.Batch(cmds...)
}

func (d *Dispatcher) fetchCatalog() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := d.fetchContext()
		defer cancel()
		m, err := d.source.Catalog(ctx)
		return CatalogMsg{Manifest: m, Err: err}
	}
}

func (d *Dispatcher) fetchRoster() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := d.fetchContext()
		defer cancel()
		nodes, err := d.source.Nodes(ctx)
		return RosterMsg{Nodes: nodes, Err: err}
	}
}

func (d *Dispatcher) fetchNodeData(req session.FetchRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := d.fetchContext()
		defer cancel()
		data, err := d.source.NodeData(ctx, req.NodeID)
		return NodeDataMsg{Request: req, Data: data, Err: err}
	}
}

func (d *Dispatcher) fetchContext() (context.Context, context.CancelFunc) {
	if d.timeout <= 0 {
		return context.WithCancel(d.ctx)
	}
	return context.WithTimeout(d.ctx, d.timeout)
}
