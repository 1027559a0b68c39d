// Package api talks to the remote time-tracking service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/balkashynov/punch/internal/models"
)

// Action is the verb carried in a POST body
type Action string

const (
	ActionGetCurrent Action = "get_current"
	ActionClockIn    Action = "clock_in"
	ActionClockOut   Action = "clock_out"
	ActionStartBreak Action = "start_break"
	ActionEndBreak   Action = "end_break"
)

const RequestIDHeader = "X-Request-ID"

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// Error is a request the server answered but refused
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return e.Message
}

// Is lets errors.Is match 401/404 against the sentinels
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// Request is the POST body
type Request struct {
	Action   Action `json:"action"`
	Location string `json:"location,omitempty"`
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error,omitempty"`
}

type Client struct {
	baseURL string
	http    *http.Client
	logger  *log.Logger
	valid   *validator.Validate
}

// NewClient builds a client for the endpoint at baseURL
func NewClient(baseURL string, timeout time.Duration, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
		valid:   validator.New(),
	}
}

// Post sends an action and returns the session the server answered with.
// A nil session with nil error means the server reported none.
func (c *Client) Post(ctx context.Context, token string, req Request) (*models.Session, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	var env envelope[*models.Session]
	if err := c.do(ctx, http.MethodPost, token, bytes.NewReader(body), &env); err != nil {
		return nil, fmt.Errorf("%s: %w", req.Action, err)
	}
	if env.Data != nil {
		if err := c.valid.Struct(env.Data); err != nil {
			return nil, fmt.Errorf("%s: malformed session in response: %w", req.Action, err)
		}
	}
	return env.Data, nil
}

// Recent fetches attendance history in server order
func (c *Client) Recent(ctx context.Context, token string) ([]models.ActivityRecord, error) {
	var env envelope[[]models.ActivityRecord]
	if err := c.do(ctx, http.MethodGet, token, nil, &env); err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return env.Data, nil
}

func (c *Client) do(ctx context.Context, method, token string, body io.Reader, out interface{ ok() (bool, string) }) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL, body)
	if err != nil {
		return err
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "method", method, "request_id", reqID, "err", err)
		return err
	}
	defer resp.Body.Close()
	c.logger.Debug("request done", "method", method, "status", resp.StatusCode, "request_id", reqID, "took", time.Since(start))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	decodeErr := json.Unmarshal(raw, out)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &Error{Status: resp.StatusCode}
		if decodeErr == nil {
			_, apiErr.Message = out.ok()
		}
		return apiErr
	}
	if decodeErr != nil {
		return fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	if success, msg := out.ok(); !success {
		return &Error{Status: resp.StatusCode, Message: msg}
	}
	return nil
}

func (e *envelope[T]) ok() (bool, string) {
	return e.Success, e.Error
}
