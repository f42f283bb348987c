package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors. Every *Error matches the ones that describe its Kind, so
// callers branch with errors.Is instead of inspecting the error value.
var (
	ErrUnavailable        = errors.New("server unavailable")
	ErrTimeout            = errors.New("request timed out")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidation         = errors.New("validation failed")
)

// Kind classifies a failed API call.
type Kind int

const (
	KindUnknown Kind = iota
	KindNetwork
	KindTimeout
	KindUnauthorized
	KindInvalidCredentials
	KindValidation
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindUnauthorized:
		return "unauthorized"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Error is the typed failure produced by the transport. Message is what the
// server said (if anything); Status is the HTTP status for server-side
// rejections and zero otherwise.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s error (%d): %s", e.Kind, e.Status, msg)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnavailable:
		return e.Kind == KindNetwork || e.Kind == KindTimeout
	case ErrTimeout:
		return e.Kind == KindTimeout
	case ErrUnauthorized:
		return e.Kind == KindUnauthorized || e.Kind == KindInvalidCredentials
	case ErrInvalidCredentials:
		return e.Kind == KindInvalidCredentials
	case ErrValidation:
		return e.Kind == KindValidation
	}
	return false
}

// Retryable reports whether repeating the call may succeed.
func (e *Error) Retryable() bool {
	return e.Kind == KindNetwork || e.Kind == KindTimeout
}

// NewValidationError builds a client-side validation failure.
func NewValidationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// AsError extracts the *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// KindOf returns the Kind of err, KindUnknown for foreign errors.
func KindOf(err error) Kind {
	if apiErr, ok := AsError(err); ok {
		return apiErr.Kind
	}
	return KindUnknown
}

// IsRetryable reports whether err is a network or timeout failure.
func IsRetryable(err error) bool {
	apiErr, ok := AsError(err)
	return ok && apiErr.Retryable()
}

// DisplayMessage returns a message suitable for showing to a user: the
// server's own message when it sent one, a generic per-kind text otherwise.
func DisplayMessage(err error) string {
	if err == nil {
		return ""
	}
	apiErr, ok := AsError(err)
	if !ok {
		return "Something went wrong. Please try again."
	}
	if apiErr.Message != "" {
		return apiErr.Message
	}

	switch apiErr.Kind {
	case KindNetwork:
		return "Cannot reach the server. Check your connection and try again."
	case KindTimeout:
		return "The server took too long to respond. Please try again."
	case KindUnauthorized:
		return "Your session has expired. Please log in again."
	case KindInvalidCredentials:
		return "Invalid username or password."
	case KindValidation:
		return "Please check the entered data."
	case KindServer:
		if apiErr.Status == http.StatusNotFound {
			return "Not found."
		}
		if apiErr.Status >= 500 {
			return "The server failed to process the request. Please try again later."
		}
		return "The request was rejected by the server."
	default:
		return "Something went wrong. Please try again."
	}
}
