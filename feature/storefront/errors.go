package storefront

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// ErrCategoryNotFound is returned when no store category matches a name.
var ErrCategoryNotFound = errors.New("category not found")

// StatusError is returned for non-2xx responses from the store.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("storefront %s %s failed: %s", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("storefront %s %s failed: %s: %s", e.Method, e.Path, e.Status, e.Body)
}

func newStatusError(req *http.Request, resp *http.Response, body []byte) error {
	text := strings.TrimSpace(string(body))
	if len(text) > 512 {
		text = text[:512]
	}
	return &StatusError{
		Method:     req.Method,
		Path:       req.URL.Path,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       text,
	}
}

// IsRetryable reports whether a failed call may succeed when repeated:
// throttling, server errors, timeouts and transport failures.
// Client errors such as validation failures are permanent.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
