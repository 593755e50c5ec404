//go:build windows

package platform

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

const swHide = 0

var (
	user32               = windows.NewLazySystemDLL("user32.dll")
	procFindWindowW      = user32.NewProc("FindWindowW")
	procShowWindow       = user32.NewProc("ShowWindow")
	procIsWindow         = user32.NewProc("IsWindow")
	procIsWindowVisible  = user32.NewProc("IsWindowVisible")
	procIsIconic         = user32.NewProc("IsIconic")
	procGetWindowTextW   = user32.NewProc("GetWindowTextW")
	procGetWindowTextLen = user32.NewProc("GetWindowTextLengthW")
	procGetAncestor      = user32.NewProc("GetAncestor")
)

// WindowsAPI implements WindowAPI with user32
type WindowsAPI struct{}

// NewWindowsAPI creates a new Windows API instance
func NewWindowsAPI() *WindowsAPI {
	return &WindowsAPI{}
}

// NewWindowAPI creates the WindowAPI for this OS
func NewWindowAPI() WindowAPI {
	return NewWindowsAPI()
}

func (w *WindowsAPI) FindWindow(title string) Handle {
	titlePtr, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return 0
	}
	hwnd, _, _ := procFindWindowW.Call(0, uintptr(unsafe.Pointer(titlePtr)))
	return Handle(hwnd)
}

func (w *WindowsAPI) IsVisible(h Handle) bool {
	ret, _, _ := procIsWindowVisible.Call(uintptr(h))
	return ret != 0
}

func (w *WindowsAPI) IsMinimized(h Handle) bool {
	ret, _, _ := procIsIconic.Call(uintptr(h))
	return ret != 0
}

// Hide calls ShowWindow(h, SW_HIDE). ShowWindow reports the previous
// visibility rather than success, so liveness is checked with IsWindow first.
func (w *WindowsAPI) Hide(h Handle) error {
	if h == 0 {
		return fmt.Errorf("hide window: null handle")
	}
	if ok, _, _ := procIsWindow.Call(uintptr(h)); ok == 0 {
		return fmt.Errorf("hide window %#x: not a window", uintptr(h))
	}
	procShowWindow.Call(uintptr(h), swHide)
	return nil
}

// windowText reads the title of hwnd
func windowText(hwnd uintptr) string {
	n, _, _ := procGetWindowTextLen.Call(hwnd)
	if n == 0 {
		return ""
	}
	buf := make([]uint16, n+1)
	copied, _, _ := procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return windows.UTF16ToString(buf[:copied])
}
