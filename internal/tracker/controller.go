package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/balkashynov/punch/internal/api"
	"github.com/balkashynov/punch/internal/auth"
	"github.com/balkashynov/punch/internal/models"
)

// ErrBusy is returned when a mutating request is already in flight
var ErrBusy = errors.New("another request is in progress")

// ErrSignedOut is returned by mutations when no user is signed in
var ErrSignedOut = errors.New("not signed in")

// API is the part of api.Client the controller needs
type API interface {
	Post(ctx context.Context, token string, req api.Request) (*models.Session, error)
	Recent(ctx context.Context, token string) ([]models.ActivityRecord, error)
}

// Controller issues attendance actions and keeps the local copy of the
// server's state. It never advances state without a server answer.
type Controller struct {
	api      API
	auth     auth.Provider
	bus      *Bus
	logger   *log.Logger
	location string

	busy atomic.Bool

	mu      sync.RWMutex
	current *models.Session
	history []models.ActivityRecord
}

type ControllerOption func(*Controller)

// WithLocation tags clock-ins with a location
func WithLocation(location string) ControllerOption {
	return func(c *Controller) { c.location = location }
}

func WithLogger(logger *log.Logger) ControllerOption {
	return func(c *Controller) { c.logger = logger }
}

func NewController(client API, provider auth.Provider, bus *Bus, opts ...ControllerOption) *Controller {
	c := &Controller{
		api:    client,
		auth:   provider,
		bus:    bus,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.bus == nil {
		c.bus = NewBus()
	}
	return c
}

// Bus returns the bus change events are published on
func (c *Controller) Bus() *Bus {
	return c.bus
}

// Current returns a copy of the open session, or nil
func (c *Controller) Current() *models.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return nil
	}
	s := *c.current
	return &s
}

// History returns the retained activity records
func (c *Controller) History() []models.ActivityRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.ActivityRecord(nil), c.history...)
}

// Status is the client-observed state
func (c *Controller) Status() State {
	return StateOf(c.Current())
}

func (c *Controller) Busy() bool {
	return c.busy.Load()
}

func (c *Controller) CanClockIn() bool {
	return !c.Busy() && c.Status() == StateNone
}

func (c *Controller) CanClockOut() bool {
	return !c.Busy() && c.Status() != StateNone
}

func (c *Controller) CanStartBreak() bool {
	return !c.Busy() && c.Status() == StateActive
}

func (c *Controller) CanEndBreak() bool {
	return !c.Busy() && c.Status() == StateBreak
}

// FetchCurrentSession loads the open session. No user, 401 and 404 all
// mean there is none and are not errors. On other failures local state is
// kept.
func (c *Controller) FetchCurrentSession(ctx context.Context) error {
	user, err := c.auth.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if user == nil {
		c.setCurrent(nil)
		return nil
	}

	sess, err := c.api.Post(ctx, user.Token, api.Request{Action: api.ActionGetCurrent})
	if errors.Is(err, api.ErrUnauthorized) || errors.Is(err, api.ErrNotFound) {
		c.logger.Debug("no current session", "reason", err)
		c.setCurrent(nil)
		return nil
	}
	if err != nil {
		c.logger.Error("failed to fetch current session", "err", err)
		return err
	}

	if sess != nil && !sess.Status.Open() {
		sess = nil
	}
	c.setCurrent(sess)
	return nil
}

// FetchRecentActivity loads history and keeps the first MaxRecentActivity
// entries in server order
func (c *Controller) FetchRecentActivity(ctx context.Context) error {
	user, err := c.auth.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if user == nil {
		c.setHistory(nil)
		return nil
	}

	records, err := c.api.Recent(ctx, user.Token)
	if errors.Is(err, api.ErrUnauthorized) || errors.Is(err, api.ErrNotFound) {
		c.setHistory(nil)
		return nil
	}
	if err != nil {
		c.logger.Error("failed to fetch recent activity", "err", err)
		return err
	}

	if len(records) > models.MaxRecentActivity {
		records = records[:models.MaxRecentActivity]
	}
	c.setHistory(records)
	return nil
}

// ClockIn opens a new session
func (c *Controller) ClockIn(ctx context.Context) error {
	return c.mutate(ctx, api.Request{Action: api.ActionClockIn, Location: c.location})
}

// ClockOut closes the open session; on success there is no current session
func (c *Controller) ClockOut(ctx context.Context) error {
	return c.mutate(ctx, api.Request{Action: api.ActionClockOut})
}

func (c *Controller) StartBreak(ctx context.Context) error {
	return c.mutate(ctx, api.Request{Action: api.ActionStartBreak})
}

func (c *Controller) EndBreak(ctx context.Context) error {
	return c.mutate(ctx, api.Request{Action: api.ActionEndBreak})
}

func (c *Controller) mutate(ctx context.Context, req api.Request) error {
	if !c.busy.CompareAndSwap(false, true) {
		c.logger.Debug("ignoring action while busy", "action", req.Action)
		return ErrBusy
	}
	defer c.busy.Store(false)

	user, err := c.auth.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrSignedOut
	}

	sess, err := c.api.Post(ctx, user.Token, req)
	if err != nil {
		c.logger.Warn("attendance action failed", "action", req.Action, "err", err)
		return err
	}
	if sess == nil {
		return fmt.Errorf("%s: server returned no session", req.Action)
	}

	if req.Action == api.ActionClockOut || !sess.Status.Open() {
		c.setCurrent(nil)
	} else {
		c.setCurrent(sess)
	}
	c.logger.Info("attendance changed", "action", req.Action, "session", sess.ID, "status", sess.Status)

	c.bus.Publish(Event{Action: req.Action, Session: sess})
	return nil
}

func (c *Controller) setCurrent(sess *models.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = sess
}

func (c *Controller) setHistory(records []models.ActivityRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = records
}
