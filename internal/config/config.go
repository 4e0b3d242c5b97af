// Package config defines client configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and environment variables.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/okian/routedash/internal/domain/model"
)

// Profile names. Each one is a separate client instance pointed at its own
// upstream, so their default ports stay distinct.
const (
	ProfileGateway = "gateway"
	ProfileAirline = "airline"
	ProfileRail    = "rail"
)

// Profile describes the defaults of one client instance.
type Profile struct {
	Name       string
	GatewayURL string
	// Recommend reports whether the upstream serves /recommend-route.
	Recommend bool
	Title     string
}

// Profiles lists the known client instances.
var Profiles = map[string]Profile{
	ProfileGateway: {Name: ProfileGateway, GatewayURL: "http://localhost:9000", Recommend: true, Title: "Recommender Client"},
	ProfileAirline: {Name: ProfileAirline, GatewayURL: "http://localhost:8150", Title: "Flight Recommender Microservice Health"},
	ProfileRail:    {Name: ProfileRail, GatewayURL: "http://localhost:8050", Title: "Microservice Health Dashboard"},
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the dashboard listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Profile selects the client instance defaults: gateway, airline or rail.
	Profile string `koanf:"profile"`

	// GatewayURL overrides the profile's base URL.
	GatewayURL string `koanf:"gateway_url"`

	// PollIntervalMS is the health poll cadence.
	PollIntervalMS int `koanf:"poll_interval_ms"`

	// RequestTimeoutMS bounds each upstream request; 0 disables the bound.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// DefaultTopN pre-fills the result count of the recommendation form.
	DefaultTopN int `koanf:"default_top_n"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":9080",
		Profile:          ProfileGateway,
		PollIntervalMS:   5000,
		RequestTimeoutMS: 0,
		DefaultTopN:      model.DefaultTopN,
	}
}

// PollInterval returns the poll cadence as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// RequestTimeout returns the per-request bound; zero means none.
func (c *Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutMS <= 0 {
		return 0
	}
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// ActiveProfile returns the selected profile.
func (c *Config) ActiveProfile() Profile {
	return Profiles[strings.ToLower(strings.TrimSpace(c.Profile))]
}

// Normalize fills the gateway URL from the profile and strips one trailing slash.
func (c *Config) Normalize() {
	c.Profile = strings.ToLower(strings.TrimSpace(c.Profile))
	c.GatewayURL = strings.TrimSpace(c.GatewayURL)
	if c.GatewayURL == "" {
		c.GatewayURL = Profiles[c.Profile].GatewayURL
	}
	c.GatewayURL = strings.TrimSuffix(c.GatewayURL, "/")
}

// Validate checks a normalized Config.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if _, ok := Profiles[c.Profile]; !ok {
		return fmt.Errorf("%w: unknown profile %q (want one of %s)", ErrInvalidConfig, c.Profile, strings.Join(profileNames(), ", "))
	}
	if c.GatewayURL == "" {
		return fmt.Errorf("%w: gateway_url must not be empty", ErrInvalidConfig)
	}
	u, err := url.Parse(c.GatewayURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: gateway_url must be an absolute http(s) URL, got %q", ErrInvalidConfig, c.GatewayURL)
	}
	if c.PollIntervalMS <= 0 {
		return fmt.Errorf("%w: poll_interval_ms must be > 0", ErrInvalidConfig)
	}
	if c.RequestTimeoutMS < 0 {
		return fmt.Errorf("%w: request_timeout_ms must be >= 0", ErrInvalidConfig)
	}
	if c.DefaultTopN < model.MinTopN || c.DefaultTopN > model.MaxTopN {
		return fmt.Errorf("%w: default_top_n must be within [%d, %d]", ErrInvalidConfig, model.MinTopN, model.MaxTopN)
	}
	return nil
}

func profileNames() []string {
	names := make([]string, 0, len(Profiles))
	for n := range Profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
