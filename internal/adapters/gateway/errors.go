package gateway

import (
	"errors"
	"fmt"
)

// Sentinel kinds for gateway errors. These allow errors.Is from callers.
var (
	ErrBaseURL          = errors.New("gateway base url must not be empty")
	ErrTransport        = errors.New("gateway unreachable")
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrMalformedBody    = errors.New("malformed response body")
)

// Operation names used in StatusError messages.
const (
	OpHealth    = "Health"
	OpRecommend = "Request"
)

// StatusError reports a non-2xx answer together with the best-effort body.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed (%d): %s", e.Op, e.StatusCode, e.Body)
}

// Is makes errors.Is(err, ErrUnexpectedStatus) hold for every StatusError.
func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}
