package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/balkashynov/punch/internal/models"
)

const (
	ZeroElapsed        = "00:00:00"
	ElapsedPlaceholder = "--:--:--"
)

// FormatElapsed renders d as HH:MM:SS. Hours are not capped at 24.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total/60)%60, total%60)
}

// Elapsed is one timer reading; OK is false when the reference timestamp
// could not be parsed
type Elapsed struct {
	Duration time.Duration
	OK       bool
}

func (e Elapsed) String() string {
	if !e.OK {
		return ElapsedPlaceholder
	}
	return FormatElapsed(e.Duration)
}

// Readings computes the work and break timers for sess at now. Work time
// freezes at break start while on break; break time reads zero while
// active. No session reads zero on both.
func Readings(sess *models.Session, now time.Time) (work, brk Elapsed) {
	work, brk = Elapsed{OK: true}, Elapsed{OK: true}
	if sess == nil {
		return work, brk
	}

	clockIn, inOK := sess.ClockInTime()
	switch sess.Status {
	case models.StatusActive:
		work = since(clockIn, now, inOK)
	case models.StatusBreak:
		breakStart, bOK := sess.BreakStartTime()
		brk = since(breakStart, now, bOK)
		if inOK && bOK {
			work = since(clockIn, breakStart, true)
		} else {
			work = Elapsed{}
		}
	}
	return work, brk
}

func since(from, to time.Time, ok bool) Elapsed {
	if !ok {
		return Elapsed{}
	}
	d := to.Sub(from)
	if d < 0 {
		d = 0
	}
	return Elapsed{Duration: d, OK: true}
}

// SessionTimer ticks once per second while the session is active or on
// break and keeps the latest readings
type SessionTimer struct {
	now    func() time.Time
	ticker *Ticker

	mu      sync.RWMutex
	session *models.Session
	work    Elapsed
	brk     Elapsed
}

func NewSessionTimer(now func() time.Time) *SessionTimer {
	if now == nil {
		now = time.Now
	}
	t := &SessionTimer{now: now, ticker: NewTicker(time.Second)}
	t.work, t.brk = Readings(nil, now())
	return t
}

// Reset points the timer at sess, recomputes immediately and starts or
// stops ticking depending on its status
func (t *SessionTimer) Reset(ctx context.Context, sess *models.Session, onTick func()) {
	t.Load(sess)
	if sess == nil || !sess.Status.Open() {
		return
	}
	t.ticker.Start(ctx, func(time.Time) {
		t.refresh()
		if onTick != nil {
			onTick()
		}
	})
}

// Load points the timer at sess and recomputes without ticking
func (t *SessionTimer) Load(sess *models.Session) {
	t.ticker.Stop()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.session = sess
	t.work, t.brk = Readings(sess, t.now())
}

func (t *SessionTimer) refresh() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.work, t.brk = Readings(t.session, t.now())
}

func (t *SessionTimer) Stop() {
	t.ticker.Stop()
}

// Ticking reports whether the per-second refresh is running
func (t *SessionTimer) Ticking() bool {
	return t.ticker.Running()
}

// Work returns the latest work-time reading
func (t *SessionTimer) Work() Elapsed {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.work
}

// Break returns the latest break-time reading
func (t *SessionTimer) Break() Elapsed {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.brk
}
