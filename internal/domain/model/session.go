package model

import "time"

// SessionState is a point-in-time copy of a dashboard session, the input of
// every view.
type SessionState struct {
	Name        string         `json:"name"`
	Running     bool           `json:"running"`
	Health      HealthSnapshot `json:"health"`
	HealthError string         `json:"health_error,omitempty"`
	LastPoll    time.Time      `json:"last_poll,omitempty"`
	Result      *Result        `json:"result,omitempty"`
	Error       string         `json:"error,omitempty"`
	Loading     bool           `json:"loading"`
}
