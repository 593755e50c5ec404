package monitor

import (
	"errors"
	"sync"
	"testing"
	"time"

	"icloudmonkey/internal/platform"
	"icloudmonkey/internal/testutils"
	"icloudmonkey/internal/types"
)

// fakeWindows is an in-memory desktop keyed by title
type fakeWindows struct {
	mu        sync.Mutex
	windows   map[string]platform.Handle
	visible   map[platform.Handle]bool
	minimized map[platform.Handle]bool
	hideErr   error
	hidden    []platform.Handle
}

func newFakeWindows() *fakeWindows {
	return &fakeWindows{
		windows:   make(map[string]platform.Handle),
		visible:   make(map[platform.Handle]bool),
		minimized: make(map[platform.Handle]bool),
	}
}

func (f *fakeWindows) open(title string, h platform.Handle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.windows[title] = h
	f.visible[h] = true
}

func (f *fakeWindows) FindWindow(title string) platform.Handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.windows[title]
}

func (f *fakeWindows) IsVisible(h platform.Handle) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visible[h]
}

func (f *fakeWindows) IsMinimized(h platform.Handle) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.minimized[h]
}

func (f *fakeWindows) Hide(h platform.Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hideErr != nil {
		return f.hideErr
	}
	f.hidden = append(f.hidden, h)
	f.visible[h] = false
	return nil
}

func (f *fakeWindows) hides() []platform.Handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]platform.Handle(nil), f.hidden...)
}

type recordedHide struct {
	title  string
	handle platform.Handle
	source types.HideSource
}

type fakeRecorder struct {
	mu    sync.Mutex
	hides []recordedHide
}

func (r *fakeRecorder) RecordHide(title string, h platform.Handle, source types.HideSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hides = append(r.hides, recordedHide{title, h, source})
}

func newTestMonitor(windows platform.WindowAPI, opts ...Option) *Monitor {
	opts = append([]Option{WithLogger(&testutils.RecordingLogger{})}, opts...)
	return New("iCloud", windows, opts...)
}

func TestNew(t *testing.T) {
	m := newTestMonitor(newFakeWindows())

	if !m.Running() {
		t.Error("Monitor should start running")
	}
	if m.ActionCount() != 0 {
		t.Errorf("ActionCount() = %d, want 0", m.ActionCount())
	}
	if m.TargetTitle() != "iCloud" {
		t.Errorf("TargetTitle() = %q", m.TargetTitle())
	}
}

func TestOnWindowOpened(t *testing.T) {
	tests := []struct {
		name      string
		paused    bool
		title     string
		handle    platform.Handle
		wantHides []platform.Handle
	}{
		{"matching title hides once", false, "iCloud", 0x1234, []platform.Handle{0x1234}},
		{"other title ignored", false, "Finder", 0x5678, nil},
		{"match is case sensitive", false, "icloud", 0x1234, nil},
		{"match is exact", false, "iCloud Photos", 0x1234, nil},
		{"null handle ignored", false, "iCloud", 0, nil},
		{"paused ignores match", true, "iCloud", 0x1234, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			windows := newFakeWindows()
			m := newTestMonitor(windows)
			if tt.paused {
				m.Pause()
			}

			m.OnWindowOpened(tt.title, tt.handle)

			got := windows.hides()
			if len(got) != len(tt.wantHides) {
				t.Fatalf("hides = %v, want %v", got, tt.wantHides)
			}
			for i := range got {
				if got[i] != tt.wantHides[i] {
					t.Errorf("hide[%d] = %#x, want %#x", i, got[i], tt.wantHides[i])
				}
			}
			if m.ActionCount() != uint64(len(tt.wantHides)) {
				t.Errorf("ActionCount() = %d, want %d", m.ActionCount(), len(tt.wantHides))
			}
		})
	}
}

func TestOnWindowOpened_HideFailureLeavesCounter(t *testing.T) {
	windows := newFakeWindows()
	windows.hideErr = errors.New("not a window")
	logger := &testutils.RecordingLogger{}
	recorder := &fakeRecorder{}
	m := New("iCloud", windows, WithLogger(logger), WithRecorder(recorder))

	m.OnWindowOpened("iCloud", 0x1234)

	if m.ActionCount() != 0 {
		t.Errorf("ActionCount() = %d, want 0", m.ActionCount())
	}
	if len(recorder.hides) != 0 {
		t.Error("Failed hides must not be recorded")
	}
	if !logger.Contains("WARN", "Failed to hide window") {
		t.Error("Expected hide failure to be logged")
	}
}

func TestOnWindowOpened_Records(t *testing.T) {
	recorder := &fakeRecorder{}
	m := newTestMonitor(newFakeWindows(), WithRecorder(recorder))

	m.OnWindowOpened("iCloud", 0x1234)
	m.OnWindowOpened("Finder", 0x5678)

	if len(recorder.hides) != 1 {
		t.Fatalf("Expected 1 recorded hide, got %d", len(recorder.hides))
	}
	want := recordedHide{"iCloud", 0x1234, types.SourceEvent}
	if recorder.hides[0] != want {
		t.Errorf("recorded %+v, want %+v", recorder.hides[0], want)
	}
}

func TestInitialCheck(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(*fakeWindows)
		wantHide  bool
		wantCount uint64
	}{
		{
			name:  "no window",
			setup: func(*fakeWindows) {},
		},
		{
			name:      "visible window",
			setup:     func(f *fakeWindows) { f.open("iCloud", 0x42) },
			wantHide:  true,
			wantCount: 1,
		},
		{
			name: "hidden window",
			setup: func(f *fakeWindows) {
				f.open("iCloud", 0x42)
				f.visible[0x42] = false
			},
		},
		{
			name: "minimized window",
			setup: func(f *fakeWindows) {
				f.open("iCloud", 0x42)
				f.minimized[0x42] = true
			},
		},
		{
			name:  "different title",
			setup: func(f *fakeWindows) { f.open("iCloud Drive", 0x42) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			windows := newFakeWindows()
			tt.setup(windows)
			recorder := &fakeRecorder{}
			m := newTestMonitor(windows, WithRecorder(recorder))

			if got := m.InitialCheck(); got != tt.wantHide {
				t.Errorf("InitialCheck() = %v, want %v", got, tt.wantHide)
			}
			if m.ActionCount() != tt.wantCount {
				t.Errorf("ActionCount() = %d, want %d", m.ActionCount(), tt.wantCount)
			}
			if tt.wantHide && (len(recorder.hides) != 1 || recorder.hides[0].source != types.SourceInitialCheck) {
				t.Errorf("Expected one initial_check record, got %+v", recorder.hides)
			}
		})
	}
}

func TestPauseResume(t *testing.T) {
	windows := newFakeWindows()
	windows.open("iCloud", 0x99)
	windows.visible[0x99] = false
	m := newTestMonitor(windows)

	m.Pause()
	if m.Running() {
		t.Fatal("Expected paused")
	}

	// the window became visible while paused
	windows.visible[0x99] = true
	m.OnWindowOpened("iCloud", 0x99)
	if m.ActionCount() != 0 {
		t.Fatalf("Paused monitor hid a window")
	}

	m.Resume()
	if !m.Running() {
		t.Fatal("Expected running after Resume")
	}
	if got := windows.hides(); len(got) != 1 || got[0] != 0x99 {
		t.Errorf("Resume should hide the visible target exactly once, got %v", got)
	}
	if m.ActionCount() != 1 {
		t.Errorf("ActionCount() = %d, want 1", m.ActionCount())
	}

	// already running: no second lookup
	windows.visible[0x99] = true
	m.Resume()
	if len(windows.hides()) != 1 {
		t.Error("Resume while running must not run the initial check")
	}
}

func TestToggle(t *testing.T) {
	windows := newFakeWindows()
	m := newTestMonitor(windows)

	if running := m.Toggle(); running {
		t.Error("First toggle should pause")
	}
	windows.open("iCloud", 0x7)
	if running := m.Toggle(); !running {
		t.Error("Second toggle should resume")
	}
	if m.ActionCount() != 1 {
		t.Errorf("Resuming via Toggle should run the initial check, ActionCount() = %d", m.ActionCount())
	}
}

func TestActionCount_Monotonic(t *testing.T) {
	windows := newFakeWindows()
	m := newTestMonitor(windows)

	var last uint64
	for i, name := range []string{"iCloud", "Finder", "iCloud", "iCloud", "Mail"} {
		m.OnWindowOpened(name, platform.Handle(i+1))
		if m.ActionCount() < last {
			t.Fatalf("ActionCount decreased from %d to %d", last, m.ActionCount())
		}
		last = m.ActionCount()
	}
	if last != 3 {
		t.Errorf("ActionCount() = %d, want 3", last)
	}
}

func TestConcurrentEventsAndToggles(t *testing.T) {
	windows := newFakeWindows()
	m := newTestMonitor(windows)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.OnWindowOpened("iCloud", platform.Handle(i*1000+j+1))
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				m.Toggle()
			}
		}()
	}
	wg.Wait()

	if got := uint64(len(windows.hides())); got != m.ActionCount() {
		t.Errorf("hides (%d) and ActionCount (%d) diverged", got, m.ActionCount())
	}
}

// stallingWindows blocks Hide until release is closed
type stallingWindows struct {
	*fakeWindows
	entered chan struct{}
	release chan struct{}
}

func (s *stallingWindows) Hide(h platform.Handle) error {
	close(s.entered)
	<-s.release
	return s.fakeWindows.Hide(h)
}

func TestPauseDoesNotWaitForHide(t *testing.T) {
	windows := &stallingWindows{
		fakeWindows: newFakeWindows(),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	m := newTestMonitor(windows)

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.OnWindowOpened("iCloud", 0x42)
	}()
	<-windows.entered

	paused := make(chan struct{})
	go func() {
		m.Pause()
		_ = m.Running()
		_ = m.ActionCount()
		close(paused)
	}()

	select {
	case <-paused:
	case <-time.After(2 * time.Second):
		close(windows.release)
		t.Fatal("Pause blocked behind an in-flight hide")
	}

	close(windows.release)
	<-done

	if m.Running() {
		t.Error("Expected paused")
	}
	if m.ActionCount() != 1 {
		t.Errorf("In-flight hide should still be counted, ActionCount() = %d", m.ActionCount())
	}
	m.OnWindowOpened("iCloud", 0x43)
	if m.ActionCount() != 1 {
		t.Error("Paused monitor hid a window")
	}
}

var _ platform.WindowListener = (*Monitor)(nil)
