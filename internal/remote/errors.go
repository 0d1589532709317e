package remote

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNetwork wraps transport failures: refused connections, timeouts, cancelled contexts.
	ErrNetwork = errors.New("network error")
	// ErrValidation marks input rejected before any request is sent.
	ErrValidation = errors.New("validation error")
	// ErrRejected marks a 2xx reply whose body reports success=false.
	ErrRejected = errors.New("request rejected")
)

// HTTPError is a non-2xx reply. Message carries the backend's "error" field when present.
type HTTPError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, msg)
}

// IsStatus reports whether err is an HTTPError with the given status.
func IsStatus(err error, status int) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.Status == status
}
