package notify

import (
	"time"

	"go.uber.org/zap"

	"github.com/adamkadaban/hotfix-tui/internal/hotfix"
)

// Default timings.
const (
	DefaultStdDelay  = 200 * time.Millisecond
	DefaultExitDelay = 10 * time.Second
)

// Plane identifies the list an alert lives in.
type Plane string

const (
	PlaneAlert   Plane = "ALERT_PLANE"
	PlaneHistory Plane = "HISTORY_PLANE"
)

// Phase is the lifecycle state of an alert.
type Phase int

const (
	PhaseQueued Phase = iota
	PhaseVisible
	PhaseDismissed
)

func (p Phase) String() string {
	switch p {
	case PhaseQueued:
		return "queued"
	case PhaseVisible:
		return "visible"
	default:
		return "dismissed"
	}
}

// Alert is one rendered notification.
type Alert struct {
	ID    int
	Event Event
	Plane Plane
	Phase Phase
	// Delay is the stagger applied before the alert became visible.
	Delay time.Duration
	// Exit is the auto-dismiss timeout; zero means the alert never expires.
	Exit   time.Duration
	Paused bool
	Raised time.Time

	gen uint64
}

// TimerKind says what a timer does when it fires.
type TimerKind int

const (
	TimerShow TimerKind = iota
	TimerDismiss
)

// Timer is a deferred callback requested by the scheduler. The caller waits
// After and hands the timer back to Fire on the same loop that drives the
// scheduler. A timer whose alert has since changed is ignored.
type Timer struct {
	AlertID int
	Kind    TimerKind
	After   time.Duration
	gen     uint64
}

// Outcome reports what handling an event produced.
type Outcome struct {
	Timers []Timer
	// Reset is true when the tag change cleared both planes.
	Reset bool
	// Detail is set when a child SHOW event asks for the detail view.
	Detail *hotfix.Record
}

// Options configures a Scheduler.
type Options struct {
	StdDelay  time.Duration
	ExitDelay time.Duration
	Now       func() time.Time
	Logger    *zap.Logger
}

// Scheduler staggers alert appearance and tracks the alert and history
// planes. It is not safe for concurrent use.
type Scheduler struct {
	stdDelay  time.Duration
	exitDelay time.Duration
	now       func() time.Time
	logger    *zap.Logger

	lastTag   string
	lastEvent time.Time
	burst     int

	nextID  int
	alerts  []*Alert
	history []*Alert
	open    bool
}

// NewScheduler returns a scheduler, filling unset options with defaults.
func NewScheduler(opts Options) *Scheduler {
	if opts.StdDelay <= 0 {
		opts.StdDelay = DefaultStdDelay
	}
	if opts.ExitDelay <= 0 {
		opts.ExitDelay = DefaultExitDelay
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Scheduler{
		stdDelay:  opts.StdDelay,
		exitDelay: opts.ExitDelay,
		now:       opts.Now,
		logger:    opts.Logger,
	}
}

// Submit handles a notification event.
func (s *Scheduler) Submit(ev Event) Outcome {
	var out Outcome
	if ev.Source == SourceHotfix && ev.Tag != s.lastTag {
		s.logger.Debug("hotfix alert tag changed", zap.String("from", s.lastTag), zap.String("to", ev.Tag))
		s.lastTag = ev.Tag
		s.alerts = nil
		s.history = nil
		out.Reset = true
	}

	switch ev.Source {
	case SourceHotfix:
		delay := s.nextDelay()
		raised := s.lastEvent
		s.nextID++
		alert := &Alert{ID: s.nextID, Event: ev, Plane: PlaneAlert, Phase: PhaseQueued, Delay: delay, Raised: raised}
		s.alerts = append(s.alerts, alert)
		s.nextID++
		s.history = append(s.history, &Alert{ID: s.nextID, Event: ev, Plane: PlaneHistory, Phase: PhaseVisible, Raised: raised})
		out.Timers = append(out.Timers, Timer{AlertID: alert.ID, Kind: TimerShow, After: delay, gen: alert.gen})
	case SourceChild:
		if ev.Type == TypeTask && ev.Action == ActionShow && ev.Payload != nil {
			detail := *ev.Payload
			out.Detail = &detail
		}
	}
	return out
}

// nextDelay computes the stagger for an alert submitted now. Alerts arriving
// within StdDelay of the previous one are spaced StdDelay apart; a longer
// gap starts a new burst. The result is never negative.
func (s *Scheduler) nextDelay() time.Duration {
	now := s.now()
	gap := now.Sub(s.lastEvent)
	s.lastEvent = now

	var timeout time.Duration
	if gap < s.stdDelay {
		timeout = s.stdDelay - gap
		s.burst++
	} else {
		s.burst = 0
	}
	delay := time.Duration(s.burst-1)*s.stdDelay + timeout
	if delay < 0 {
		delay = 0
	}
	return delay
}

// Fire runs a timer previously returned by the scheduler and returns any
// follow-up timers.
func (s *Scheduler) Fire(t Timer) []Timer {
	alert := s.find(s.alerts, t.AlertID)
	if alert == nil || alert.gen != t.gen {
		return nil
	}
	switch t.Kind {
	case TimerShow:
		if alert.Phase != PhaseQueued {
			return nil
		}
		alert.Phase = PhaseVisible
		alert.Exit = s.exitDelay + alert.Delay
		alert.gen++
		return []Timer{{AlertID: alert.ID, Kind: TimerDismiss, After: alert.Exit, gen: alert.gen}}
	case TimerDismiss:
		s.Dismiss(alert.ID)
	}
	return nil
}

// Dismiss removes an alert from whichever plane holds it. Pending timers for
// the alert become no-ops.
func (s *Scheduler) Dismiss(id int) bool {
	if alert := s.find(s.alerts, id); alert != nil {
		alert.Phase = PhaseDismissed
		alert.gen++
		s.alerts = remove(s.alerts, id)
		return true
	}
	if alert := s.find(s.history, id); alert != nil {
		alert.Phase = PhaseDismissed
		s.history = remove(s.history, id)
		return true
	}
	return false
}

// Pause stops the auto-dismiss countdown of a visible alert.
func (s *Scheduler) Pause(id int) bool {
	alert := s.find(s.alerts, id)
	if alert == nil || alert.Phase != PhaseVisible || alert.Paused {
		return false
	}
	alert.Paused = true
	alert.gen++
	return true
}

// Resume restarts a paused alert's countdown with half of its exit timeout.
func (s *Scheduler) Resume(id int) []Timer {
	alert := s.find(s.alerts, id)
	if alert == nil || !alert.Paused {
		return nil
	}
	alert.Paused = false
	alert.gen++
	if alert.Exit <= 0 {
		return nil
	}
	return []Timer{{AlertID: alert.ID, Kind: TimerDismiss, After: alert.Exit / 2, gen: alert.gen}}
}

// Activate turns a click on an alert into the child event that opens the
// detail view.
func (s *Scheduler) Activate(id int) (Event, bool) {
	if alert := s.find(s.alerts, id); alert != nil && alert.Event.Source == SourceHotfix {
		return ShowDetail(alert.Event, alert.Plane), true
	}
	if alert := s.find(s.history, id); alert != nil && alert.Event.Source == SourceHotfix {
		return ShowDetail(alert.Event, alert.Plane), true
	}
	return Event{}, false
}

// OpenPanel shows the history panel and clears the alert plane.
func (s *Scheduler) OpenPanel() {
	s.open = true
	for _, alert := range s.alerts {
		alert.gen++
	}
	s.alerts = nil
}

// ClosePanel hides the history panel.
func (s *Scheduler) ClosePanel() { s.open = false }

// PanelOpen reports whether the history panel is shown.
func (s *Scheduler) PanelOpen() bool { return s.open }

// ClearHistory empties the history plane.
func (s *Scheduler) ClearHistory() { s.history = nil }

// SwitchTag clears both planes when tag differs from the tag of the current
// alerts. It reports whether anything was reset.
func (s *Scheduler) SwitchTag(tag string) bool {
	if tag == s.lastTag {
		return false
	}
	s.logger.Debug("alert tag switched", zap.String("from", s.lastTag), zap.String("to", tag))
	for _, alert := range s.alerts {
		alert.gen++
	}
	s.lastTag = tag
	s.alerts = nil
	s.history = nil
	return true
}

// Reset forgets every alert and the last tag, as on session end.
func (s *Scheduler) Reset() {
	for _, alert := range s.alerts {
		alert.gen++
	}
	s.alerts = nil
	s.history = nil
	s.lastTag = ""
	s.open = false
}

// Visible returns the alerts currently shown on the alert plane.
func (s *Scheduler) Visible() []Alert {
	var out []Alert
	for _, alert := range s.alerts {
		if alert.Phase == PhaseVisible {
			out = append(out, *alert)
		}
	}
	return out
}

// Pending reports how many alerts are waiting for their stagger delay.
func (s *Scheduler) Pending() int {
	n := 0
	for _, alert := range s.alerts {
		if alert.Phase == PhaseQueued {
			n++
		}
	}
	return n
}

// History returns the history plane, oldest first.
func (s *Scheduler) History() []Alert {
	out := make([]Alert, len(s.history))
	for i, alert := range s.history {
		out[i] = *alert
	}
	return out
}

func (s *Scheduler) find(list []*Alert, id int) *Alert {
	for _, alert := range list {
		if alert.ID == id {
			return alert
		}
	}
	return nil
}

func remove(list []*Alert, id int) []*Alert {
	out := list[:0]
	for _, alert := range list {
		if alert.ID != id {
			out = append(out, alert)
		}
	}
	return out
}
