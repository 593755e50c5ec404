package app

import (
	"context"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// WindowRuntime is the subset of the Wails runtime the app drives
type WindowRuntime interface {
	EventsEmit(ctx context.Context, eventName string, data ...interface{})
	WindowShow(ctx context.Context)
	WindowHide(ctx context.Context)
	WindowCenter(ctx context.Context)
	Quit(ctx context.Context)
}

type wailsRuntime struct{}

func (wailsRuntime) EventsEmit(ctx context.Context, eventName string, data ...interface{}) {
	runtime.EventsEmit(ctx, eventName, data...)
}

func (wailsRuntime) WindowShow(ctx context.Context)   { runtime.WindowShow(ctx) }
func (wailsRuntime) WindowHide(ctx context.Context)   { runtime.WindowHide(ctx) }
func (wailsRuntime) WindowCenter(ctx context.Context) { runtime.WindowCenter(ctx) }
func (wailsRuntime) Quit(ctx context.Context)         { runtime.Quit(ctx) }
