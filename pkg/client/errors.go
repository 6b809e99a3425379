package client

import (
	"errors"
	"fmt"
)

// Kind classifies a failed platform call
type Kind int

const (
	// KindNetwork means the request never produced an HTTP response
	KindNetwork Kind = iota
	// KindAPI means the platform answered with a non-2xx status or success:false
	KindAPI
)

func (k Kind) String() string {
	if k == KindAPI {
		return "api"
	}
	return "network"
}

const (
	networkMessage  = "Network error, please try again"
	fallbackMessage = "Something went wrong, please try again"
)

// ErrStale is returned by Sequencer.Apply when a newer request superseded the ticket
var ErrStale = errors.New("response superseded by a newer request")

// Error is returned by every Client method when the platform call fails
type Error struct {
	Kind    Kind
	Method  string
	Path    string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindAPI:
		if e.Message != "" {
			return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.Status, e.Message)
		}
		return fmt.Sprintf("%s %s: %d", e.Method, e.Path, e.Status)
	default:
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// UserMessage is the text shown to the user for this failure. Server messages
// are passed through verbatim.
func (e *Error) UserMessage() string {
	if e.Kind == KindNetwork {
		return networkMessage
	}
	if e.Message != "" {
		return e.Message
	}
	return fallbackMessage
}

// UserMessage returns the display text for any error returned by this package
func UserMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.UserMessage()
	}
	return fallbackMessage
}

// IsStatus reports whether err is an API error with the given HTTP status
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindAPI && apiErr.Status == status
}
