// Package ui defines what the stores need from the presentation layer:
// transient notifications, confirmations and navigation.
package ui

import "context"

// Level is the severity of a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	}
	return "info"
}

// Notifier shows transient messages (toasts).
type Notifier interface {
	Notify(level Level, msg string)
}

// Intent describes a confirmation prompt. Danger renders the confirm action
// in red.
type Intent struct {
	Title        string
	Prompt       string
	ConfirmLabel string
	CancelLabel  string
	Danger       bool
}

// Confirmer asks the user to approve an intent.
type Confirmer interface {
	Confirm(ctx context.Context, in Intent) (bool, error)
}

type Route string

const (
	RouteLogin     Route = "/login"
	RouteDashboard Route = "/dashboard"
)

type Navigator interface {
	Navigate(to Route)
}
