package types

import "time"

// HideSource says which path hid a window
type HideSource string

const (
	// SourceEvent is a hide triggered by a "window appeared" notification
	SourceEvent HideSource = "event"
	// SourceInitialCheck is a hide found by the lookup at start-up or on resume
	SourceInitialCheck HideSource = "initial_check"
)

// Valid reports whether s is a known source
func (s HideSource) Valid() bool {
	return s == SourceEvent || s == SourceInitialCheck
}

// HideEvent records one successful hide
type HideEvent struct {
	ID        int64      `json:"id,omitempty" yaml:"id,omitempty"`
	SessionID string     `json:"sessionId" yaml:"session_id"`
	Title     string     `json:"title" yaml:"title"`
	Handle    uint64     `json:"handle" yaml:"handle"`
	Source    HideSource `json:"source" yaml:"source"`
	HiddenAt  time.Time  `json:"hiddenAt" yaml:"hidden_at"`
}

// JournalStats summarises the hide journal
type JournalStats struct {
	SessionID    string     `json:"sessionId" yaml:"session_id"`
	SessionHides int64      `json:"sessionHides" yaml:"session_hides"`
	TotalHides   int64      `json:"totalHides" yaml:"total_hides"`
	LastHide     *HideEvent `json:"lastHide,omitempty" yaml:"last_hide,omitempty"`
}

// SplashInfo is the payload shown by the info splash
type SplashInfo struct {
	AppName     string `json:"appName"`
	Version     string `json:"version"`
	ActionCount uint64 `json:"actionCount"`
	TotalHidden int64  `json:"totalHidden"`
	Paused      bool   `json:"paused"`
}
