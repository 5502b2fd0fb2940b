// Package emu wires the emulation core and the input manager into the
// two-goroutine, channel-based runtime mandated by the project: one
// goroutine owns CPU/MMU/PPU state and runs the cooperative frame loop, the
// other drives a Backend (terminal/headless/SDL2) and only ever talks to the
// loop through channels.
package emu

import (
	"context"
	"log/slog"

	"github.com/shenawy29/oxyboy/oxyboy"
	"github.com/shenawy29/oxyboy/oxyboy/input"
	"github.com/shenawy29/oxyboy/oxyboy/input/action"
	"github.com/shenawy29/oxyboy/oxyboy/input/event"
	"github.com/shenawy29/oxyboy/oxyboy/video"
)

// keyEvent is a single input event posted to the loop from the UI goroutine.
type keyEvent struct {
	action action.Action
	typ    event.Type
}

// Loop owns the Emulator and exposes it to a UI goroutine only via channels:
// frames is capacity 1, so the emulator goroutine naturally paces itself to
// the backend's consumption rate; keys (256 entries) and roms (8 entries) are
// buffered and drained completely on every iteration. They are bounded: a
// producer blocks while its buffer is full.
type Loop struct {
	emu   *oxyboy.Emulator
	input *input.Manager

	frames chan *video.FrameBuffer
	keys   chan keyEvent
	roms   chan string
	done   chan struct{}
}

// NewLoop builds a Loop around an already-constructed Emulator. mgr routes
// dispatched key events to the joypad and to any registered callbacks.
func NewLoop(e *oxyboy.Emulator, mgr *input.Manager) *Loop {
	return &Loop{
		emu:    e,
		input:  mgr,
		frames: make(chan *video.FrameBuffer, 1),
		keys:   make(chan keyEvent, 256),
		roms:   make(chan string, 8),
		done:   make(chan struct{}),
	}
}

// Frames returns the channel the UI goroutine reads completed frames from.
func (l *Loop) Frames() <-chan *video.FrameBuffer { return l.frames }

// PostKey enqueues an input event for the loop goroutine to dispatch on its
// next iteration. Safe to call from the UI goroutine.
func (l *Loop) PostKey(act action.Action, typ event.Type) {
	l.keys <- keyEvent{action: act, typ: typ}
}

// PostROM enqueues a ROM path to load on the loop's next iteration.
func (l *Loop) PostROM(path string) {
	l.roms <- path
}

// Stop signals the loop to exit after its current frame. It is safe to call
// once; calling it twice panics, matching close()'s semantics.
func (l *Loop) Stop() {
	close(l.done)
}

// Run drives the emulator until ctx is cancelled or Stop is called. It must
// run in its own goroutine; Frames() is closed when Run returns.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.frames)

	for {
		select {
		case <-ctx.Done():
			return
		case <-l.done:
			return
		default:
		}

		l.drainROMs()
		l.drainKeys()

		l.emu.RunUntilFrame()

		select {
		case l.frames <- l.emu.GetCurrentFrame().Copy():
		case <-ctx.Done():
			return
		case <-l.done:
			return
		}
	}
}

func (l *Loop) drainKeys() {
	for {
		select {
		case k := <-l.keys:
			l.input.Trigger(k.action, k.typ)
		default:
			return
		}
	}
}

func (l *Loop) drainROMs() {
	for {
		select {
		case path := <-l.roms:
			if err := l.emu.LoadROM(path); err != nil {
				slog.Error("failed to load ROM", "path", path, "error", err)
			}
		default:
			return
		}
	}
}
