package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrRecommendDisabled = errors.New("recommendations are not served by this instance")
	ErrMethodNotAllowed  = errors.New("method not allowed")
	ErrRender            = errors.New("dashboard render failed")
)
