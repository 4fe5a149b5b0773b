package studio

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrAuth is returned when credentials are missing or rejected.
	ErrAuth = errors.New("studio: missing or rejected credentials")

	// ErrNotFound is returned when no studio matches the requested name.
	ErrNotFound = errors.New("studio: not found")
)

// RemoteError is a non-2xx response or an unreadable body from the API.
type RemoteError struct {
	Code    int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Code == 0 {
		return fmt.Sprintf("studio: %s", e.Message)
	}
	return fmt.Sprintf("studio: HTTP %d: %s", e.Code, e.Message)
}

// Is makes 401 and 403 responses match ErrAuth.
func (e *RemoteError) Is(target error) bool {
	return target == ErrAuth && (e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden)
}

// IsAuth reports whether err is a credential failure.
func IsAuth(err error) bool {
	return errors.Is(err, ErrAuth)
}

// IsNotFound reports whether err means the studio name did not resolve.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.Code
	}
	return 0
}
