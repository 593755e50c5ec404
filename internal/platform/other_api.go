//go:build !windows

package platform

import (
	"context"

	"icloudmonkey/internal/infrastructure/logging"
)

// StubAPI implements WindowAPI on systems without a backend: no window is ever found
type StubAPI struct{}

// NewWindowAPI creates the WindowAPI for this OS
func NewWindowAPI() WindowAPI {
	return &StubAPI{}
}

func (StubAPI) FindWindow(string) Handle { return 0 }
func (StubAPI) IsVisible(Handle) bool    { return false }
func (StubAPI) IsMinimized(Handle) bool  { return false }
func (StubAPI) Hide(Handle) error        { return ErrUnsupported }

type stubEventSource struct {
	logger logging.Logger
}

// NewEventSource creates the EventSource for this OS
func NewEventSource(logger logging.Logger) EventSource {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &stubEventSource{logger: logger}
}

func (s *stubEventSource) Start(context.Context, WindowListener) error {
	s.logger.Warn("Window events are not available on this OS")
	return ErrUnsupported
}

func (s *stubEventSource) Stop() error { return nil }
