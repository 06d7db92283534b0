package rest

import (
	"errors"
	"net/http"
)

// Kind classifies a failed call for presentation. Every failure surfaced by
// this package carries exactly one kind and a fixed user-facing message;
// raw backend error text never reaches the UI.
type Kind int

const (
	// KindAuth covers bad credentials and expired/invalid tokens.
	KindAuth Kind = iota + 1
	// KindValidation covers malformed user input, resolved before or by the backend.
	KindValidation
	// KindNetwork covers transport failures: no response at all.
	KindNetwork
	// KindServer covers 5xx responses.
	KindServer
	// KindNotFound covers 404: the addressed entity is missing.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	case KindNotFound:
		return "not_found"
	}
	return "unknown"
}

// Error is a classified call failure. Message is safe to show to the user.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// ErrorKind extracts the kind from err, or 0 when err is not a rest error.
func ErrorKind(err error) Kind {
	var restErr *Error
	if errors.As(err, &restErr) {
		return restErr.Kind
	}
	return 0
}

const (
	msgAuth       = "Your session has expired. Please sign in again."
	msgValidation = "Please check your input and try again."
	msgNetwork    = "No connection. Check your network and try again."
	msgServer     = "Something went wrong on our side. Please try again."
	msgNotFound   = "We couldn't find what you were looking for."
)

func authError(message string, cause error) *Error {
	return &Error{Kind: KindAuth, Message: message, cause: cause}
}

func validationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func networkError(cause error) *Error {
	return &Error{Kind: KindNetwork, Message: msgNetwork, cause: cause}
}

// statusError maps an HTTP status to the taxonomy with its default message.
func statusError(status int) *Error {
	switch {
	case status == http.StatusUnauthorized:
		return &Error{Kind: KindAuth, Message: msgAuth}
	case status == http.StatusNotFound:
		return &Error{Kind: KindNotFound, Message: msgNotFound}
	case status == http.StatusUnprocessableEntity || status == http.StatusBadRequest:
		return &Error{Kind: KindValidation, Message: msgValidation}
	case status >= 500:
		return &Error{Kind: KindServer, Message: msgServer}
	default:
		return &Error{Kind: KindServer, Message: msgServer}
	}
}
