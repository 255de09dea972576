// Package notify schedules hotfix alerts so bursts appear staggered, and
// keeps a history of every alert raised for the current node.
package notify

import (
	"github.com/adamkadaban/hotfix-tui/internal/catalog"
	"github.com/adamkadaban/hotfix-tui/internal/hotfix"
)

// Sources of notification events.
const (
	SourceHotfix = "HOTFIX"
	SourceChild  = "CHILD_NOTIFICATION"
)

// Event types and actions.
const (
	TypeTask      = "TASK"
	ActionDefault = "DEFAULT"
	ActionShow    = "SHOW"
)

// AlertTitle is the title of hotfix alerts.
const AlertTitle = "Hotfix-Alert"

// Event is a notification published by the dashboard.
type Event struct {
	Source string
	// Type carries the severity for hotfix alerts and TASK for child events.
	Type    string
	Tag     string
	Title   string
	Body    string
	Action  string
	Payload *hotfix.Record
}

// HotfixAlert builds the alert raised for a record that is not installed on
// the node with the given hostname.
func HotfixAlert(rec hotfix.Record, hostname string) Event {
	payload := rec
	return Event{
		Source:  SourceHotfix,
		Type:    string(rec.Severity),
		Tag:     hostname,
		Title:   AlertTitle,
		Body:    alertBody(rec.Severity),
		Action:  ActionDefault,
		Payload: &payload,
	}
}

// ShowDetail builds the child event emitted when an alert is activated.
func ShowDetail(parent Event, plane Plane) Event {
	return Event{
		Source:  SourceChild,
		Type:    TypeTask,
		Tag:     string(plane),
		Action:  ActionShow,
		Payload: parent.Payload,
	}
}

func alertBody(sev catalog.Severity) string {
	switch sev {
	case catalog.SeverityRecommended:
		return "A recommended hotfix is available, please apply the hotfix to improve system stablity."
	case catalog.SeverityImportant:
		return "A important hotfix is available, it is recommended to apply the hotfix as soon as possible."
	default:
		return "A hotfix is available, please apply the hotfix to improve system stablity."
	}
}
