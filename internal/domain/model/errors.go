package model

import "errors"

// Validation errors. They are raised before any network call.
var (
	ErrMissingEndpoints = errors.New("Please provide both source and destination.") //nolint:stylecheck // shown verbatim to users
	ErrInvalidMode      = errors.New("invalid mode")
	ErrMissingUserID    = errors.New("user id is required")
)
