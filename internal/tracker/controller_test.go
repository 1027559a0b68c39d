package tracker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/punch/internal/api"
	"github.com/balkashynov/punch/internal/auth"
	"github.com/balkashynov/punch/internal/models"
)

// mockAPI is a mock implementation of API
type mockAPI struct {
	postFunc   func(context.Context, string, api.Request) (*models.Session, error)
	recentFunc func(context.Context, string) ([]models.ActivityRecord, error)

	mu    sync.Mutex
	posts []api.Request
}

func (m *mockAPI) Post(ctx context.Context, token string, req api.Request) (*models.Session, error) {
	m.mu.Lock()
	m.posts = append(m.posts, req)
	m.mu.Unlock()
	if m.postFunc != nil {
		return m.postFunc(ctx, token, req)
	}
	return nil, nil
}

func (m *mockAPI) Recent(ctx context.Context, token string) ([]models.ActivityRecord, error) {
	if m.recentFunc != nil {
		return m.recentFunc(ctx, token)
	}
	return nil, nil
}

func (m *mockAPI) postCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.posts)
}

// mockAuth returns a fixed user
type mockAuth struct {
	user *auth.User
	err  error
}

func (m mockAuth) CurrentUser(context.Context) (*auth.User, error) {
	return m.user, m.err
}

var signedIn = mockAuth{user: &auth.User{ID: "u-1", Token: "tok"}}

func activeSession() *models.Session {
	return &models.Session{ID: "s1", ClockIn: ts(t0), Status: models.StatusActive}
}

func respondWith(sessions map[api.Action]*models.Session) func(context.Context, string, api.Request) (*models.Session, error) {
	return func(_ context.Context, _ string, req api.Request) (*models.Session, error) {
		s, ok := sessions[req.Action]
		if !ok {
			return nil, &api.Error{Status: http.StatusNotFound}
		}
		return s, nil
	}
}

func TestFetchCurrentSession_NoUser(t *testing.T) {
	m := &mockAPI{}
	c := NewController(m, mockAuth{}, nil)

	require.NoError(t, c.FetchCurrentSession(context.Background()))
	assert.Nil(t, c.Current())
	assert.Equal(t, 0, m.postCount())
	assert.True(t, c.CanClockIn())
}

func TestFetchCurrentSession_UnauthorizedAndNotFound(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusNotFound} {
		t.Run(fmt.Sprint(status), func(t *testing.T) {
			m := &mockAPI{postFunc: func(context.Context, string, api.Request) (*models.Session, error) {
				return nil, fmt.Errorf("get_current: %w", &api.Error{Status: status})
			}}
			c := NewController(m, signedIn, nil)

			require.NoError(t, c.FetchCurrentSession(context.Background()))
			assert.Equal(t, StateNone, c.Status())
			assert.Equal(t, "ready to clock in", c.Status().String())
		})
	}
}

func TestFetchCurrentSession_OtherErrorKeepsState(t *testing.T) {
	calls := 0
	m := &mockAPI{postFunc: func(context.Context, string, api.Request) (*models.Session, error) {
		calls++
		if calls == 1 {
			return activeSession(), nil
		}
		return nil, errors.New("connection reset")
	}}
	c := NewController(m, signedIn, nil)

	require.NoError(t, c.FetchCurrentSession(context.Background()))
	require.Error(t, c.FetchCurrentSession(context.Background()))
	assert.Equal(t, StateActive, c.Status())
}

func TestFetchCurrentSession_IgnoresCompleted(t *testing.T) {
	done := activeSession()
	done.Status = models.StatusCompleted
	c := NewController(&mockAPI{postFunc: respondWith(map[api.Action]*models.Session{api.ActionGetCurrent: done})}, signedIn, nil)

	require.NoError(t, c.FetchCurrentSession(context.Background()))
	assert.Nil(t, c.Current())
}

func TestFetchRecentActivity_KeepsFirstThree(t *testing.T) {
	m := &mockAPI{recentFunc: func(context.Context, string) ([]models.ActivityRecord, error) {
		out := make([]models.ActivityRecord, 7)
		for i := range out {
			out[i] = models.ActivityRecord{ID: fmt.Sprintf("r%d", i)}
		}
		return out, nil
	}}
	c := NewController(m, signedIn, nil)

	require.NoError(t, c.FetchRecentActivity(context.Background()))
	history := c.History()
	require.Len(t, history, models.MaxRecentActivity)
	assert.Equal(t, "r0", history[0].ID)
	assert.Equal(t, "r2", history[2].ID)
}

func TestFetchRecentActivity_NotFoundIsEmpty(t *testing.T) {
	m := &mockAPI{recentFunc: func(context.Context, string) ([]models.ActivityRecord, error) {
		return nil, &api.Error{Status: http.StatusNotFound}
	}}
	c := NewController(m, signedIn, nil)

	require.NoError(t, c.FetchRecentActivity(context.Background()))
	assert.Empty(t, c.History())
}

func TestClockIn_Success(t *testing.T) {
	m := &mockAPI{postFunc: respondWith(map[api.Action]*models.Session{api.ActionClockIn: activeSession()})}
	bus := NewBus()
	var events []Event
	bus.Subscribe(func(e Event) { events = append(events, e) })

	c := NewController(m, signedIn, bus, WithLocation("office"))
	require.NoError(t, c.ClockIn(context.Background()))

	assert.Equal(t, StateActive, c.Status())
	assert.False(t, c.CanClockIn())
	assert.True(t, c.CanClockOut())
	assert.True(t, c.CanStartBreak())
	assert.False(t, c.CanEndBreak())

	require.Len(t, events, 1)
	assert.Equal(t, api.ActionClockIn, events[0].Action)
	assert.Equal(t, "office", m.posts[0].Location)
}

func TestClockIn_FailureLeavesState(t *testing.T) {
	m := &mockAPI{postFunc: func(context.Context, string, api.Request) (*models.Session, error) {
		return nil, &api.Error{Status: http.StatusConflict, Message: "Already clocked in"}
	}}
	bus := NewBus()
	published := false
	bus.Subscribe(func(Event) { published = true })
	c := NewController(m, signedIn, bus)

	err := c.ClockIn(context.Background())
	require.Error(t, err)
	msg, ok := Notice(err)
	assert.True(t, ok)
	assert.Equal(t, "Already clocked in", msg)
	assert.Equal(t, StateNone, c.Status())
	assert.False(t, published)
	assert.False(t, c.Busy())
}

func TestClockIn_SignedOut(t *testing.T) {
	m := &mockAPI{}
	c := NewController(m, mockAuth{}, nil)

	err := c.ClockIn(context.Background())
	assert.ErrorIs(t, err, ErrSignedOut)
	assert.Equal(t, 0, m.postCount())
}

func TestFullLifecycle(t *testing.T) {
	breakAt := t0.Add(5 * time.Second)
	onBreak := &models.Session{ID: "s1", ClockIn: ts(t0), BreakStart: strp(ts(breakAt)), Status: models.StatusBreak}
	back := &models.Session{ID: "s1", ClockIn: ts(t0), BreakStart: strp(ts(breakAt)), BreakEnd: strp(ts(breakAt.Add(time.Minute))), Status: models.StatusActive, TotalBreakMinutes: 1}
	done := &models.Session{ID: "s1", ClockIn: ts(t0), ClockOut: strp(ts(t0.Add(time.Hour))), Status: models.StatusCompleted}

	m := &mockAPI{postFunc: respondWith(map[api.Action]*models.Session{
		api.ActionClockIn:    activeSession(),
		api.ActionStartBreak: onBreak,
		api.ActionEndBreak:   back,
		api.ActionClockOut:   done,
	})}
	c := NewController(m, signedIn, nil)
	ctx := context.Background()

	require.NoError(t, c.ClockIn(ctx))
	assert.Equal(t, StateActive, c.Status())

	require.NoError(t, c.StartBreak(ctx))
	assert.Equal(t, StateBreak, c.Status())
	assert.True(t, c.CanEndBreak())
	assert.False(t, c.CanStartBreak())
	assert.False(t, c.CanClockIn())

	require.NoError(t, c.EndBreak(ctx))
	assert.Equal(t, StateActive, c.Status())
	assert.Equal(t, 1.0, c.Current().TotalBreakMinutes)

	require.NoError(t, c.ClockOut(ctx))
	assert.Nil(t, c.Current())
	assert.Equal(t, StateNone, c.Status())

	work, brk := Readings(c.Current(), t0.Add(2*time.Hour))
	assert.Equal(t, ZeroElapsed, work.String())
	assert.Equal(t, ZeroElapsed, brk.String())
}

func TestClockOut_FailureKeepsSessionOpen(t *testing.T) {
	m := &mockAPI{postFunc: func(_ context.Context, _ string, req api.Request) (*models.Session, error) {
		if req.Action == api.ActionClockIn {
			return activeSession(), nil
		}
		return nil, errors.New("dial tcp: i/o timeout")
	}}
	c := NewController(m, signedIn, nil)
	require.NoError(t, c.ClockIn(context.Background()))

	err := c.ClockOut(context.Background())
	require.Error(t, err)
	msg, _ := Notice(err)
	assert.Equal(t, GenericFailure, msg)
	assert.Equal(t, StateActive, c.Status())
}

func TestMutate_BusyIgnoresSecondRequest(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	m := &mockAPI{postFunc: func(context.Context, string, api.Request) (*models.Session, error) {
		close(entered)
		<-release
		return activeSession(), nil
	}}
	c := NewController(m, signedIn, nil)

	errc := make(chan error, 1)
	go func() { errc <- c.ClockIn(context.Background()) }()
	<-entered

	assert.True(t, c.Busy())
	assert.False(t, c.CanClockIn())
	assert.ErrorIs(t, c.ClockIn(context.Background()), ErrBusy)
	assert.ErrorIs(t, c.StartBreak(context.Background()), ErrBusy)
	_, ok := Notice(ErrBusy)
	assert.False(t, ok)

	close(release)
	require.NoError(t, <-errc)
	assert.False(t, c.Busy())
	assert.Equal(t, 1, m.postCount())
}

func TestMutate_EmptyResponse(t *testing.T) {
	c := NewController(&mockAPI{}, signedIn, nil)

	err := c.ClockIn(context.Background())
	assert.ErrorContains(t, err, "no session")
	assert.Equal(t, StateNone, c.Status())
}
