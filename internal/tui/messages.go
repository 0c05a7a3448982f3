package tui

import "evodash/internal/api"

// Settlement messages: one per asynchronous store operation. The store has
// already reconciled its snapshot by the time these arrive; the err field
// is for user feedback (toasts), not for state.

type sessionSettledMsg struct {
	err error
}

type verifySettledMsg struct {
	err error
}

type runsSettledMsg struct {
	err error
}

type runStartedMsg struct {
	err error
}

type runTransitionMsg struct {
	verb string
	id   string
	err  error
}

type programsSettledMsg struct {
	runID string
	err   error
}

type programDetailsMsg struct {
	err error
}

type configsLoadedMsg struct {
	presets []api.ConfigPreset
	err     error
}

type configSavedMsg struct {
	err error
}

type configDeletedMsg struct {
	id  string
	err error
}

// ToastsChangedMsg is sent from the notification queue listener (possibly
// a timer goroutine) to trigger a repaint.
type ToastsChangedMsg struct{}

// SessionExpiredMsg is sent when the server rejected the stored credential
// and the session was torn down.
type SessionExpiredMsg struct{}
