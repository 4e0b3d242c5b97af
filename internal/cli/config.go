// Package cli implements the routectl terminal client: one-shot health and
// recommendation calls plus a polling health watch.
package cli

import (
	"io"
	"time"
)

// Config holds the settings shared by every command.
type Config struct {
	GatewayURL string        // Base URL of the gateway
	Timeout    time.Duration // Per-request bound; zero means none
	Interval   time.Duration // Poll cadence of watch
	Count      int           // Snapshots watch prints before exiting; zero means until cancelled
	JSON       bool          // Print raw JSON instead of the rendered view
	Out        io.Writer     // Rendered output
}
