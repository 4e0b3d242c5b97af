// Package model contains the data passed between the gateway client, the
// session state container and the views.
package model

import (
	"sort"
	"strings"
)

// Status classes used by the views.
const (
	ClassHealthy   = "healthy"
	ClassUnhealthy = "unhealthy"
)

// HealthSnapshot maps a service name to its reported status, e.g. "healthy",
// "degraded", "unreachable" or "unhealthy (503)". A snapshot is replaced
// wholesale by every poll; it carries no history.
type HealthSnapshot map[string]string

// ServiceStatus is one rendered entry of a snapshot.
type ServiceStatus struct {
	Service string `json:"service"`
	Status  string `json:"status"`
	Class   string `json:"class"`
}

// IsHealthy reports whether status textually starts with "healthy".
func IsHealthy(status string) bool {
	return strings.HasPrefix(status, ClassHealthy)
}

// Classify maps a status to its display class.
func Classify(status string) string {
	if IsHealthy(status) {
		return ClassHealthy
	}
	return ClassUnhealthy
}

// Entries returns the snapshot sorted by service name.
func (s HealthSnapshot) Entries() []ServiceStatus {
	out := make([]ServiceStatus, 0, len(s))
	for name, status := range s {
		out = append(out, ServiceStatus{Service: name, Status: status, Class: Classify(status)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Service < out[j].Service })
	return out
}

// Counts returns the number of healthy and unhealthy services.
func (s HealthSnapshot) Counts() (healthy, unhealthy int) {
	for _, status := range s {
		if IsHealthy(status) {
			healthy++
		} else {
			unhealthy++
		}
	}
	return healthy, unhealthy
}

// Clone returns an independent copy; nil stays nil.
func (s HealthSnapshot) Clone() HealthSnapshot {
	if s == nil {
		return nil
	}
	out := make(HealthSnapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
