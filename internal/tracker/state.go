package tracker

import "github.com/balkashynov/punch/internal/models"

// State is the client-observed attendance state
type State int

const (
	StateNone State = iota
	StateActive
	StateBreak
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "working"
	case StateBreak:
		return "on break"
	default:
		return "ready to clock in"
	}
}

// StateOf maps a session to the client-observed state
func StateOf(sess *models.Session) State {
	if sess == nil {
		return StateNone
	}
	switch sess.Status {
	case models.StatusActive:
		return StateActive
	case models.StatusBreak:
		return StateBreak
	default:
		return StateNone
	}
}
