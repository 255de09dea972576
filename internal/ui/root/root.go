package root

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/adamkadaban/hotfix-tui/internal/controller"
	"github.com/adamkadaban/hotfix-tui/internal/keymap"
	"github.com/adamkadaban/hotfix-tui/internal/state"
	"github.com/adamkadaban/hotfix-tui/internal/theme"
	"github.com/adamkadaban/hotfix-tui/internal/ui/alertplane"
	"github.com/adamkadaban/hotfix-tui/internal/ui/detail"
	"github.com/adamkadaban/hotfix-tui/internal/ui/view"
	"github.com/adamkadaban/hotfix-tui/internal/ui/views/dashboard"
	"github.com/adamkadaban/hotfix-tui/internal/ui/views/hotfixes"
	"github.com/adamkadaban/hotfix-tui/internal/ui/views/nodes"
	"github.com/adamkadaban/hotfix-tui/internal/ui/views/notifications"
	"github.com/adamkadaban/hotfix-tui/internal/util"
)

// Options controls how the root model is assembled.
type Options struct {
	Theme      theme.Theme
	KeyMap     *keymap.Global
	Controller controller.Controller
	Settings   controller.SettingsManager
}

// Model orchestrates routed Bubble Tea views and global UI chrome.
type Model struct {
	store    *state.Store
	sub      *state.Subscription
	keymap   keymap.Global
	theme    theme.Theme
	ctrl     controller.Controller
	settings controller.SettingsManager
	detail   *detail.Model
	plane    *alertplane.Model

	views  map[state.ViewKind]view.Model
	order  []state.ViewKind
	active state.ViewKind

	width  int
	height int
}

// New builds the root Bubble Tea model.
func New(store *state.Store, opts Options) *Model {
	keyMap := keymap.DefaultGlobal()
	if opts.KeyMap != nil {
		keyMap = *opts.KeyMap
	}
	ctrl := opts.Controller

	views := map[state.ViewKind]view.Model{
		state.ViewDashboard:     dashboard.New(store, opts.Theme),
		state.ViewHotfixes:      hotfixes.New(store, opts.Theme, ctrl),
		state.ViewNodes:         nodes.New(store, opts.Theme, ctrl),
		state.ViewNotifications: notifications.New(store, opts.Theme, ctrl),
	}

	model := &Model{
		store:    store,
		keymap:   keyMap,
		theme:    opts.Theme,
		ctrl:     ctrl,
		settings: opts.Settings,
		detail:   detail.New(store, opts.Theme, ctrl),
		plane:    alertplane.New(store, opts.Theme, ctrl),
		views:    views,
		order:    append([]state.ViewKind{}, state.DefaultViewOrder...),
		active:   state.ViewDashboard,
	}
	if store != nil {
		model.sub = store.Subscribe()
	}
	return model
}

type storeChangeMsg struct{}

func (m *Model) Init() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(m.views)+2)
	for _, v := range m.views {
		cmds = append(cmds, v.Init())
	}
	if m.ctrl != nil {
		cmds = append(cmds, m.ctrl.Load())
	}
	cmds = append(cmds, waitForStoreChanges(m.sub))
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.ctrl != nil {
		if cmd, handled := m.ctrl.Update(msg); handled {
			return m, cmd
		}
	}

	switch msg := msg.(type) {
	case storeChangeMsg:
		return m, waitForStoreChanges(m.sub)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for _, v := range m.views {
			v.SetSize(msg.Width, m.bodyHeight())
		}
		m.detail.SetSize(msg.Width, m.bodyHeight())

	case tea.KeyMsg:
		if key.Matches(msg, m.keymap.Quit) {
			return m, tea.Quit
		}
		if cmd, handled := m.detail.Update(msg); handled {
			return m, cmd
		}
		if cmd, handled := m.plane.Update(msg); handled {
			return m, cmd
		}
		if c, ok := m.activeView().(view.Capturer); !ok || !c.Capturing() {
			switch {
			case key.Matches(msg, m.keymap.NextView):
				return m, m.cycle(1)
			case key.Matches(msg, m.keymap.PrevView):
				return m, m.cycle(-1)
			case key.Matches(msg, m.keymap.Reload):
				if m.ctrl != nil {
					return m, m.ctrl.Reload()
				}
				return m, nil
			case key.Matches(msg, m.keymap.Theme):
				m.toggleTheme()
				return m, nil
			case key.Matches(msg, m.keymap.FocusAlert):
				return m, m.plane.Cycle()
			}
		}

	case tea.QuitMsg:
		m.closeSubscription()
	}

	activeView := m.activeView()
	updated, cmd := activeView.Update(msg)
	if nextView, ok := updated.(view.Model); ok {
		m.views[m.active] = nextView
	}

	return m, cmd
}

func (m *Model) View() string {
	activeView := m.activeView()
	if activeView == nil {
		return ""
	}
	snapshot := m.store.Snapshot()

	headline := lipgloss.JoinHorizontal(lipgloss.Top,
		m.theme.Title.Render("Hotfix Dashboard"),
		lipgloss.NewStyle().Padding(0, 1).Render(m.renderTabs()),
	)
	parts := []string{headline}
	if snapshot.AuthRequired {
		parts = append(parts, m.theme.Banner.Width(max(1, m.width)).Render("Login required: the backend rejected the session. Press ctrl+r to reload."))
	}

	body := activeView.View()
	if overlay := m.detail.View(); overlay != "" {
		body = overlay
	}
	parts = append(parts, body)
	if toasts := m.plane.View(); toasts != "" {
		parts = append(parts, lipgloss.PlaceHorizontal(max(1, m.width), lipgloss.Right, toasts))
	}
	parts = append(parts, m.theme.Footer.Render(m.footerLine(snapshot)))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) activeView() view.Model {
	return m.views[m.active]
}

func (m *Model) bodyHeight() int {
	return max(1, m.height-3)
}

func (m *Model) cycle(delta int) tea.Cmd {
	if len(m.order) == 0 {
		return nil
	}
	if f, ok := m.activeView().(view.Focuser); ok {
		f.Blur()
	}
	idx := util.WrapIndex(indexOf(m.order, m.active), delta, len(m.order))
	m.active = m.order[idx]
	m.store.SetActiveView(m.active)
	if f, ok := m.activeView().(view.Focuser); ok {
		return f.Focus()
	}
	return nil
}

func (m *Model) toggleTheme() {
	next := string(theme.Toggle(m.theme.Mode))
	if m.settings != nil {
		saved, err := m.settings.SetTheme(next)
		if err != nil {
			m.store.SetError(fmt.Sprintf("save theme: %v", err))
		} else {
			next = saved
		}
	}
	m.applyTheme(theme.New(theme.Options{Override: next}))
}

func (m *Model) applyTheme(th theme.Theme) {
	m.theme = th
	for _, v := range m.views {
		v.SetTheme(th)
	}
	m.detail.SetTheme(th)
	m.plane.SetTheme(th)
}

func (m *Model) closeSubscription() {
	if m.sub != nil {
		m.sub.Close()
		m.sub = nil
	}
}

func (m *Model) renderTabs() string {
	labels := make([]string, 0, len(m.order))
	for _, kind := range m.order {
		v := m.views[kind]
		if v == nil {
			continue
		}
		labels = append(labels, m.theme.RenderTab(v.Title(), kind == m.active))
	}
	return strings.Join(labels, " ")
}

func (m *Model) footerLine(snapshot state.Snapshot) string {
	node := util.Fallback(util.DisplayName(snapshot.Selected), "none")
	line := fmt.Sprintf("View %s · Node %s · %s", titleCase(string(snapshot.ActiveView)), node, m.keymap.ShortHelp())
	if snapshot.LastError != "" {
		line = fmt.Sprintf("%s · %s", line, m.theme.Danger.Render(snapshot.LastError))
	}
	alerts := len(snapshot.Notifications.Alerts) + snapshot.Notifications.Pending
	if alerts > 0 && snapshot.ActiveView != state.ViewNotifications {
		indicator := m.theme.Danger.Render(fmt.Sprintf("● %d alerts", alerts))
		line = fmt.Sprintf("%s · %s", line, indicator)
	}
	return line
}

func indexOf(values []state.ViewKind, target state.ViewKind) int {
	for idx, value := range values {
		if value == target {
			return idx
		}
	}
	return 0
}

func titleCase(value string) string {
	if value == "" {
		return value
	}
	return strings.ToUpper(value[:1]) + value[1:]
}

func waitForStoreChanges(sub *state.Subscription) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-sub.Events(); !ok {
			return nil
		}
		return storeChangeMsg{}
	}
}
