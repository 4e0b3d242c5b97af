package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/routedash/pkg/logger"
)

// SetupLogging sends log records to stderr so stdout carries only the
// rendered output.
func SetupLogging(level string) error {
	if err := logger.InitWithWriter(os.Stderr); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger.SetLevelString(level)
}

// ShowHelp prints usage information for routectl.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `routectl - route recommender gateway client
===========================================

Usage:
  routectl [global options] <command> [command options]

Commands:
  health       Fetch /service-health once and print the grid
  watch        Poll /service-health and print every snapshot
  recommend    Query /recommend-route and print the recommendations
  user         Query /recommend/{user_id} and print the JSON

Global options:
  -url string
        Gateway base URL (default from config, e.g. http://localhost:9000)
  -timeout duration
        Per-request timeout, 0 for none (default from config)
  -json
        Print raw JSON instead of the rendered view
  -log-level string
        Log level for stderr: debug, info, warn, error (default "warn")
  -help
        Show this help message

watch options:
  -interval duration   Poll cadence (default 5s)
  -count int           Exit after this many snapshots, 0 for until interrupted

recommend options:
  -mode string         auto, air or rail (default "auto")
  -source string       Source code, e.g. BOS or HBR
  -destination string  Destination code, e.g. DEN or IVY
  -user string         Optional user id
  -top int             Number of results, 1-50 (default 10)

user options:
  -id string           User id
  -mode string         air or rail
  -top int             Number of results, 1-50 (default 10)

Examples:
  routectl health
  routectl -url http://localhost:8150 watch -interval 2s
  routectl recommend -source BOS -destination DEN -mode air -top 5
  routectl user -id test-user -mode rail
`)
}
