package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/balkashynov/punch/internal/models"
)

var t0 = time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)

func ts(t time.Time) string {
	return t.Format(time.RFC3339)
}

func strp(s string) *string {
	return &s
}

func TestFormatElapsed(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{time.Second, "00:00:01"},
		{1500 * time.Millisecond, "00:00:01"},
		{59*time.Minute + 59*time.Second, "00:59:59"},
		{26*time.Hour + 3*time.Minute + 7*time.Second, "26:03:07"},
		{-5 * time.Second, "00:00:00"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatElapsed(tc.d), tc.d.String())
	}
}

func TestReadings_NoSession(t *testing.T) {
	work, brk := Readings(nil, t0)
	assert.Equal(t, ZeroElapsed, work.String())
	assert.Equal(t, ZeroElapsed, brk.String())
}

func TestReadings_ActiveGrowsWithNow(t *testing.T) {
	sess := &models.Session{ID: "s1", ClockIn: ts(t0), Status: models.StatusActive}

	var prev time.Duration
	for i := 0; i <= 5; i++ {
		now := t0.Add(time.Duration(i) * time.Second)
		work, brk := Readings(sess, now)
		assert.Equal(t, now.Sub(t0), work.Duration)
		assert.GreaterOrEqual(t, work.Duration, prev)
		assert.Equal(t, ZeroElapsed, brk.String())
		prev = work.Duration
	}

	work, _ := Readings(sess, t0)
	assert.Equal(t, "00:00:00", work.String())
	work, _ = Readings(sess, t0.Add(3*time.Second))
	assert.Equal(t, "00:00:03", work.String())
}

func TestReadings_BreakFreezesWork(t *testing.T) {
	breakAt := t0.Add(5 * time.Second)
	sess := &models.Session{ID: "s1", ClockIn: ts(t0), BreakStart: strp(ts(breakAt)), Status: models.StatusBreak}

	work, brk := Readings(sess, breakAt)
	assert.Equal(t, "00:00:05", work.String())
	assert.Equal(t, "00:00:00", brk.String())

	work, brk = Readings(sess, breakAt.Add(90*time.Second))
	assert.Equal(t, "00:00:05", work.String())
	assert.Equal(t, "00:01:30", brk.String())
	assert.Equal(t, 90*time.Second, brk.Duration)
}

func TestReadings_UnparsableTimestamp(t *testing.T) {
	sess := &models.Session{ID: "s1", ClockIn: "yesterday-ish", Status: models.StatusActive}
	work, _ := Readings(sess, t0)
	assert.False(t, work.OK)
	assert.Equal(t, ElapsedPlaceholder, work.String())

	sess = &models.Session{ID: "s1", ClockIn: ts(t0), BreakStart: strp("??"), Status: models.StatusBreak}
	work, brk := Readings(sess, t0)
	assert.Equal(t, ElapsedPlaceholder, brk.String())
	assert.Equal(t, ElapsedPlaceholder, work.String())

	sess = &models.Session{ID: "s1", ClockIn: ts(t0), Status: models.StatusBreak}
	_, brk = Readings(sess, t0)
	assert.Equal(t, ElapsedPlaceholder, brk.String())
}

func TestReadings_CompletedReadsZero(t *testing.T) {
	sess := &models.Session{ID: "s1", ClockIn: ts(t0), Status: models.StatusCompleted}
	work, brk := Readings(sess, t0.Add(time.Hour))
	assert.Equal(t, ZeroElapsed, work.String())
	assert.Equal(t, ZeroElapsed, brk.String())
}

func TestSessionTimer_TicksOnlyWhileOpen(t *testing.T) {
	timer := NewSessionTimer(func() time.Time { return t0.Add(time.Minute) })
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	timer.Reset(ctx, &models.Session{ID: "s1", ClockIn: ts(t0), Status: models.StatusActive}, nil)
	assert.True(t, timer.Ticking())
	assert.Equal(t, "00:01:00", timer.Work().String())

	timer.Reset(ctx, nil, nil)
	assert.False(t, timer.Ticking())
	assert.Equal(t, ZeroElapsed, timer.Work().String())
	assert.Equal(t, ZeroElapsed, timer.Break().String())

	timer.Reset(ctx, &models.Session{ID: "s1", ClockIn: ts(t0), Status: models.StatusCompleted}, nil)
	assert.False(t, timer.Ticking())
}

func TestSessionTimer_RefreshesEverySecond(t *testing.T) {
	now := t0
	clock := make(chan time.Time, 10)
	timer := NewSessionTimer(func() time.Time {
		select {
		case n := <-clock:
			now = n
		default:
		}
		return now
	})

	ticks := make(chan struct{}, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	timer.Reset(ctx, &models.Session{ID: "s1", ClockIn: ts(t0), Status: models.StatusActive}, func() { ticks <- struct{}{} })
	clock <- t0.Add(2 * time.Second)

	select {
	case <-ticks:
	case <-time.After(3 * time.Second):
		t.Fatal("timer never ticked")
	}
	assert.Equal(t, "00:00:02", timer.Work().String())

	timer.Stop()
	assert.False(t, timer.Ticking())
}

func TestReadings_ZonelessClockInIsLocal(t *testing.T) {
	orig := time.Local
	time.Local = time.FixedZone("UTC+3", 3*60*60)
	t.Cleanup(func() { time.Local = orig })

	clockIn := time.Date(2026, 10, 17, 20, 37, 35, 0, time.Local)
	sess := &models.Session{
		ID:      "s1",
		ClockIn: clockIn.Format("2006-01-02T15:04:05"),
		Status:  models.StatusActive,
	}

	work, _ := Readings(sess, clockIn.Add(time.Hour))
	assert.Equal(t, "01:00:00", work.String())
}
