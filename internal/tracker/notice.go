package tracker

import (
	"context"
	"errors"

	"github.com/balkashynov/punch/internal/api"
)

const GenericFailure = "Something went wrong. Please try again."

// Notice turns an action error into the message shown to the user. Busy
// rejections and nil errors produce no message.
func Notice(err error) (string, bool) {
	if err == nil || errors.Is(err, ErrBusy) {
		return "", false
	}
	if errors.Is(err, ErrSignedOut) || errors.Is(err, api.ErrUnauthorized) {
		return "You are not signed in. Run 'punch login' first.", true
	}
	if errors.Is(err, context.Canceled) {
		return "", false
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message, true
	}
	return GenericFailure, true
}
