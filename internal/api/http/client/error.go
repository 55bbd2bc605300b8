package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a backend rejection: a non-2xx status or a failure envelope code.
type Error struct {
	Status  int
	Code    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api error: status=%d code=%d message=%s", e.Status, e.Code, e.Message)
}

// IsUnauthorized reports whether err is a 401 backend rejection.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}
