//go:build windows

package platform

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"icloudmonkey/internal/infrastructure/logging"
)

const (
	eventObjectShow        = 0x8002
	wineventOutOfContext   = 0x0000
	wineventSkipOwnProcess = 0x0002
	objidWindow            = 0
	childidSelf            = 0
	gaRoot                 = 2
	wmQuit                 = 0x0012
)

var (
	procSetWinEventHook    = user32.NewProc("SetWinEventHook")
	procUnhookWinEvent     = user32.NewProc("UnhookWinEvent")
	procGetMessageW        = user32.NewProc("GetMessageW")
	procTranslateMessage   = user32.NewProc("TranslateMessage")
	procDispatchMessageW   = user32.NewProc("DispatchMessageW")
	procPostThreadMessageW = user32.NewProc("PostThreadMessageW")
)

type point struct {
	x, y int32
}

type msg struct {
	hwnd     uintptr
	message  uint32
	wParam   uintptr
	lParam   uintptr
	time     uint32
	pt       point
	lPrivate uint32
}

// WINEVENTPROC carries no user data, so hooks are routed to their listener by
// hook handle. One callback is shared by all hooks; NewCallback slots are never freed.
var (
	callbackOnce sync.Once
	callbackPtr  uintptr

	hooksMu sync.RWMutex
	hooks   = make(map[uintptr]WindowListener)
)

func winEventCallback() uintptr {
	callbackOnce.Do(func() {
		callbackPtr = windows.NewCallback(winEventProc)
	})
	return callbackPtr
}

func winEventProc(hook, event, hwnd, idObject, idChild, _, _ uintptr) uintptr {
	if hwnd == 0 || int32(idObject) != objidWindow || int32(idChild) != childidSelf {
		return 0
	}
	if root, _, _ := procGetAncestor.Call(hwnd, gaRoot); root != hwnd {
		return 0
	}

	hooksMu.RLock()
	listener := hooks[hook]
	hooksMu.RUnlock()
	if listener == nil {
		return 0
	}

	listener.OnWindowOpened(windowText(hwnd), Handle(hwnd))
	return 0
}

// WinEventSource reports EVENT_OBJECT_SHOW for top-level windows of other processes
type WinEventSource struct {
	logger logging.Logger

	mu       sync.Mutex
	running  bool
	threadID uint32
	done     chan struct{}
}

// NewEventSource creates the EventSource for this OS
func NewEventSource(logger logging.Logger) EventSource {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &WinEventSource{logger: logger}
}

func (s *WinEventSource) Start(ctx context.Context, listener WindowListener) error {
	if listener == nil {
		return errors.New("start window events: nil listener")
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("start window events: already running")
	}

	ready := make(chan error, 1)
	done := make(chan struct{})
	go s.pump(listener, ready, done)

	if err := <-ready; err != nil {
		s.mu.Unlock()
		<-done
		return err
	}
	s.running = true
	s.done = done
	s.mu.Unlock()

	s.logger.Info("Window event hook installed", "event", "EVENT_OBJECT_SHOW")

	go func() {
		select {
		case <-ctx.Done():
			if err := s.Stop(); err != nil {
				s.logger.Warn("Failed to stop window event hook", "error", err)
			}
		case <-done:
		}
	}()
	return nil
}

// pump owns the hook: it must install it, pump messages and remove it on the same OS thread.
func (s *WinEventSource) pump(listener WindowListener, ready chan<- error, done chan<- struct{}) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(done)

	s.threadID = windows.GetCurrentThreadId()

	hook, _, callErr := procSetWinEventHook.Call(
		eventObjectShow,
		eventObjectShow,
		0,
		winEventCallback(),
		0,
		0,
		wineventOutOfContext|wineventSkipOwnProcess,
	)
	if hook == 0 {
		ready <- fmt.Errorf("SetWinEventHook: %w", callErr)
		return
	}

	hooksMu.Lock()
	hooks[hook] = listener
	hooksMu.Unlock()

	defer func() {
		hooksMu.Lock()
		delete(hooks, hook)
		hooksMu.Unlock()
		if ok, _, err := procUnhookWinEvent.Call(hook); ok == 0 {
			s.logger.Warn("UnhookWinEvent failed", "error", err)
		}
	}()

	ready <- nil

	var m msg
	for {
		ret, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		// 0 is WM_QUIT, -1 is an error
		if int32(ret) <= 0 {
			return
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&m)))
	}
}

// Stop posts WM_QUIT to the hook thread and waits for the hook to be removed
func (s *WinEventSource) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	done := s.done
	threadID := s.threadID
	s.mu.Unlock()

	if ok, _, err := procPostThreadMessageW.Call(uintptr(threadID), wmQuit, 0, 0); ok == 0 {
		return fmt.Errorf("PostThreadMessageW: %w", err)
	}
	<-done

	s.logger.Info("Window event hook removed")
	return nil
}
