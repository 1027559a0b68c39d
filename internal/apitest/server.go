// Package apitest runs an in-memory time-tracking API for tests.
package apitest

import (
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/balkashynov/punch/internal/api"
	"github.com/balkashynov/punch/internal/models"
)

const Path = "/api/time-tracking"

// Failure makes the next matching action answer with Status and Message
type Failure struct {
	Status  int
	Message string
}

type Server struct {
	*httptest.Server

	Token string
	Now   func() time.Time

	mu       sync.Mutex
	seq      int
	current  *models.Session
	history  []models.ActivityRecord
	failures map[api.Action]Failure
	delay    time.Duration
	hits     map[api.Action]int
	lastReq  http.Header
}

func init() {
	gin.SetMode(gin.TestMode)
}

// NewServer starts a fake API that accepts token. Close it when done.
func NewServer(token string) *Server {
	s := &Server{
		Token:    token,
		Now:      func() time.Time { return time.Now().UTC() },
		failures: make(map[api.Action]Failure),
		hits:     make(map[api.Action]int),
	}

	r := gin.New()
	r.Use(gin.Recovery())
	g := r.Group(Path, s.requireToken)
	g.POST("", s.handlePost)
	g.GET("", s.handleGet)

	s.Server = httptest.NewServer(r)
	return s
}

// URL of the endpoint
func (s *Server) Endpoint() string {
	return s.Server.URL + Path
}

// FailNext makes the next request for action fail
func (s *Server) FailNext(action api.Action, f Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[action] = f
}

// SetDelay slows every response down
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// SetCurrent replaces the open session
func (s *Server) SetCurrent(sess *models.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = sess
}

// AddHistory prepends records, newest first
func (s *Server) AddHistory(records ...models.ActivityRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(append([]models.ActivityRecord{}, records...), s.history...)
}

// Hits counts requests per action; GETs count under "history"
func (s *Server) Hits(action api.Action) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[action]
}

// LastHeader returns the headers of the most recent request
func (s *Server) LastHeader() http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReq.Clone()
}

func (s *Server) requireToken(c *gin.Context) {
	s.mu.Lock()
	s.lastReq = c.Request.Header.Clone()
	delay := s.delay
	s.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}

	h := c.GetHeader("Authorization")
	tok := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	if h == "" || tok != s.Token {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized"})
		return
	}
	c.Next()
}

func (s *Server) handleGet(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hits["history"]++
	if f, ok := s.takeFailure("history"); ok {
		c.JSON(f.Status, gin.H{"success": false, "error": f.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": s.history})
}

func (s *Server) handlePost(c *gin.Context) {
	var req api.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.hits[req.Action]++
	if f, ok := s.takeFailure(req.Action); ok {
		c.JSON(f.Status, gin.H{"success": false, "error": f.Message})
		return
	}

	sess, status, msg := s.apply(req)
	if status != http.StatusOK {
		c.JSON(status, gin.H{"success": false, "error": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": sess})
}

func (s *Server) takeFailure(action api.Action) (Failure, bool) {
	f, ok := s.failures[action]
	if ok {
		delete(s.failures, action)
	}
	return f, ok
}

// apply runs the server-side state machine; caller holds mu
func (s *Server) apply(req api.Request) (*models.Session, int, string) {
	now := s.Now().Format(time.RFC3339)

	switch req.Action {
	case api.ActionGetCurrent:
		if s.current == nil {
			return nil, http.StatusNotFound, "no open session"
		}
		return s.current, http.StatusOK, ""

	case api.ActionClockIn:
		if s.current != nil {
			return nil, http.StatusConflict, "Already clocked in"
		}
		s.seq++
		sess := &models.Session{
			ID:      fmt.Sprintf("sess-%d", s.seq),
			ClockIn: now,
			Status:  models.StatusActive,
		}
		if req.Location != "" {
			loc := req.Location
			sess.Location = &loc
		}
		s.current = sess
		return sess, http.StatusOK, ""

	case api.ActionStartBreak:
		if s.current == nil || s.current.Status != models.StatusActive {
			return nil, http.StatusConflict, "No active session"
		}
		s.current.Status = models.StatusBreak
		s.current.BreakStart = &now
		s.current.BreakEnd = nil
		return s.current, http.StatusOK, ""

	case api.ActionEndBreak:
		if s.current == nil || s.current.Status != models.StatusBreak {
			return nil, http.StatusConflict, "Not on break"
		}
		if start, ok := s.current.BreakStartTime(); ok {
			s.current.TotalBreakMinutes += math.Floor(s.Now().Sub(start).Minutes())
		}
		s.current.Status = models.StatusActive
		s.current.BreakEnd = &now
		return s.current, http.StatusOK, ""

	case api.ActionClockOut:
		if s.current == nil {
			return nil, http.StatusConflict, "Not clocked in"
		}
		done := *s.current
		done.Status = models.StatusCompleted
		done.ClockOut = &now
		if in, ok := done.ClockInTime(); ok {
			hours := s.Now().Sub(in).Hours() - done.TotalBreakMinutes/60
			done.TotalHours = &hours
		}
		s.history = append([]models.ActivityRecord{{
			ID:                done.ID,
			ClockIn:           done.ClockIn,
			ClockOut:          done.ClockOut,
			Status:            done.Status,
			TotalBreakMinutes: done.TotalBreakMinutes,
			TotalHours:        done.TotalHours,
			Location:          done.Location,
		}}, s.history...)
		s.current = nil
		return &done, http.StatusOK, ""
	}

	return nil, http.StatusBadRequest, "unknown action"
}
