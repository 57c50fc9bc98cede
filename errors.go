package goSession

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized is returned for every 401 response from the backend.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrSessionRevoked is joined with ErrUnauthorized when a 401 tore down an authenticated
	// session.
	ErrSessionRevoked = errors.New("session revoked")
	// ErrAuthEntryRejected is joined with ErrUnauthorized when a 401 arrived while the caller
	// was on an authentication page. The session is left untouched.
	ErrAuthEntryRejected = errors.New("rejected on auth entry page")
	// ErrHTTPStatus is wrapped by every non-2xx [HTTPError].
	ErrHTTPStatus = errors.New("unexpected http status")
	// ErrInvalidAuthResult is returned by SetSession when the auth result lacks a token or user.
	ErrInvalidAuthResult = errors.New("invalid auth result")
	// ErrClientClosed is returned by client operations after Close.
	ErrClientClosed = errors.New("client closed")
	// ErrMalformedResponse is returned when a response body cannot be decoded.
	ErrMalformedResponse = errors.New("malformed response body")
)

// HTTPError is a non-2xx backend response. The backend error body is parsed when present.
type HTTPError struct {
	StatusCode int    `json:"-"`
	Method     string `json:"-"`
	Path       string `json:"-"`
	Message    string `json:"message"`
	Code       string `json:"code"`
	RequestID  string `json:"request_id"`

	kinds []error
}

func (e *HTTPError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s %s: %d %s (%s)", e.Method, e.Path, e.StatusCode, msg, e.Code)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, msg)
}

// Unwrap exposes ErrHTTPStatus plus the 401 classification (ErrUnauthorized,
// ErrSessionRevoked, ErrAuthEntryRejected) so callers can use errors.Is.
func (e *HTTPError) Unwrap() []error {
	out := make([]error, 0, len(e.kinds)+1)
	out = append(out, ErrHTTPStatus)
	return append(out, e.kinds...)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode
	}
	return 0
}
