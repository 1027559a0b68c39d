// Package tracker holds the attendance status tracker: a wall clock, a
// session timer and a controller that round-trips every state change to
// the time-tracking API.
package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/balkashynov/punch/internal/models"
)

// Frame is an immutable snapshot of everything the UI renders
type Frame struct {
	Now           time.Time
	Session       *models.Session
	State         State
	Work          Elapsed
	Break         Elapsed
	History       []models.ActivityRecord
	Busy          bool
	CanClockIn    bool
	CanClockOut   bool
	CanStartBreak bool
	CanEndBreak   bool
}

// Widget ties the clock, the session timer and the controller to one
// lifetime: Mount starts the tickers, Unmount cancels them.
type Widget struct {
	ctrl   *Controller
	clock  *Clock
	timer  *SessionTimer
	logger *log.Logger

	mu          sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	frames      chan Frame
	unsubscribe func()
	mounted     bool
	closed      bool
}

func NewWidget(ctrl *Controller, now func() time.Time, logger *log.Logger) *Widget {
	if logger == nil {
		logger = log.Default()
	}
	return &Widget{
		ctrl:   ctrl,
		clock:  NewClock(now),
		timer:  NewSessionTimer(now),
		logger: logger,
		frames: make(chan Frame, 1),
	}
}

// Frames streams a new frame whenever a ticker fires or state changes.
// Slow readers only ever see the latest frame. Closed by Unmount; the next
// Mount starts a new stream.
func (w *Widget) Frames() <-chan Frame {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.frames
}

// Mount fetches the authoritative state and starts both tickers. Fetch
// failures are logged and leave the widget in its empty state.
func (w *Widget) Mount(ctx context.Context) {
	w.mu.Lock()
	if w.mounted {
		w.mu.Unlock()
		return
	}
	if w.closed {
		w.frames = make(chan Frame, 1)
		w.closed = false
	}
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.mounted = true
	w.unsubscribe = w.ctrl.Bus().Subscribe(w.onChange)
	mctx := w.ctx
	w.mu.Unlock()

	w.Refresh(ctx)
	w.clock.Start(mctx, w.emit)
}

// Refresh re-reads the current session and history from the API
func (w *Widget) Refresh(ctx context.Context) {
	if err := w.ctrl.FetchCurrentSession(ctx); err != nil {
		w.logger.Warn("could not load current session", "err", err)
	}
	if err := w.ctrl.FetchRecentActivity(ctx); err != nil {
		w.logger.Warn("could not load recent activity", "err", err)
	}
	w.sync()
}

// Unmount stops all periodic work and closes Frames
func (w *Widget) Unmount() {
	w.mu.Lock()
	if !w.mounted {
		w.mu.Unlock()
		return
	}
	w.mounted = false
	w.cancel()
	if w.unsubscribe != nil {
		w.unsubscribe()
	}
	// emit checks mounted under mu, so no send can follow the close
	close(w.frames)
	w.closed = true
	w.mu.Unlock()

	w.clock.Stop()
	w.timer.Stop()
}

func (w *Widget) ClockIn(ctx context.Context) error {
	return w.act(ctx, w.ctrl.ClockIn)
}

func (w *Widget) ClockOut(ctx context.Context) error {
	return w.act(ctx, w.ctrl.ClockOut)
}

func (w *Widget) StartBreak(ctx context.Context) error {
	return w.act(ctx, w.ctrl.StartBreak)
}

func (w *Widget) EndBreak(ctx context.Context) error {
	return w.act(ctx, w.ctrl.EndBreak)
}

func (w *Widget) act(ctx context.Context, fn func(context.Context) error) error {
	err := fn(ctx)
	// Busy flips back either way
	w.emit()
	return err
}

// onChange runs after every successful mutation, ours or another
// publisher's on the same bus
func (w *Widget) onChange(Event) {
	w.mu.Lock()
	ctx := w.ctx
	w.mu.Unlock()

	if err := w.ctrl.FetchRecentActivity(ctx); err != nil {
		w.logger.Warn("could not refresh recent activity", "err", err)
	}
	w.sync()
}

// sync points the session timer at the controller's session
func (w *Widget) sync() {
	w.mu.Lock()
	ctx, mounted := w.ctx, w.mounted
	w.mu.Unlock()

	if mounted {
		w.timer.Reset(ctx, w.ctrl.Current(), w.emit)
	} else {
		w.timer.Load(w.ctrl.Current())
	}
	w.emit()
}

// Snapshot builds the current frame
func (w *Widget) Snapshot() Frame {
	return Frame{
		Now:           w.clock.Now(),
		Session:       w.ctrl.Current(),
		State:         w.ctrl.Status(),
		Work:          w.timer.Work(),
		Break:         w.timer.Break(),
		History:       w.ctrl.History(),
		Busy:          w.ctrl.Busy(),
		CanClockIn:    w.ctrl.CanClockIn(),
		CanClockOut:   w.ctrl.CanClockOut(),
		CanStartBreak: w.ctrl.CanStartBreak(),
		CanEndBreak:   w.ctrl.CanEndBreak(),
	}
}

// Ticking reports whether the session timer is refreshing every second
func (w *Widget) Ticking() bool {
	return w.timer.Ticking()
}

func (w *Widget) emit() {
	f := w.Snapshot()

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.mounted {
		return
	}
	// Drop the stale frame so the newest one always fits
	select {
	case <-w.frames:
	default:
	}
	w.frames <- f
}
