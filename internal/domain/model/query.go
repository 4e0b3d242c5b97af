package model

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Mode selects the upstream recommender. ModeAuto lets the gateway decide.
type Mode string

// Known modes.
const (
	ModeAuto Mode = "auto"
	ModeAir  Mode = "air"
	ModeRail Mode = "rail"
)

// Result count bounds.
const (
	MinTopN     = 1
	MaxTopN     = 50
	DefaultTopN = 10
)

// ParseMode accepts auto, air and rail case-insensitively; blank means auto.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModeAir:
		return ModeAir, nil
	case ModeRail:
		return ModeRail, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// Query is a recommendation request as entered by the user.
type Query struct {
	Mode        Mode   `json:"mode"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	UserID      string `json:"user_id,omitempty"`
	TopN        int    `json:"top_n"`
}

// Normalize returns a copy with trimmed fields, a resolved mode and TopN
// defaulted to 10 when unset and clamped to [1, 50] otherwise.
func (q Query) Normalize() Query {
	q.Source = strings.TrimSpace(q.Source)
	q.Destination = strings.TrimSpace(q.Destination)
	q.UserID = strings.TrimSpace(q.UserID)
	if q.Mode == "" {
		q.Mode = ModeAuto
	}
	switch {
	case q.TopN == 0:
		q.TopN = DefaultTopN
	case q.TopN < MinTopN:
		q.TopN = MinTopN
	case q.TopN > MaxTopN:
		q.TopN = MaxTopN
	}
	return q
}

// Validate checks a query before any network call is made.
func (q Query) Validate() error {
	n := q.Normalize()
	if n.Source == "" || n.Destination == "" {
		return ErrMissingEndpoints
	}
	if _, err := ParseMode(string(n.Mode)); err != nil {
		return err
	}
	return nil
}

// Param is one query-string parameter.
type Param struct {
	Key   string
	Value string
}

// Params returns the /recommend-route parameters in wire order: source,
// destination, top_n, then user_id when set and mode when not auto.
func (q Query) Params() []Param {
	n := q.Normalize()
	params := []Param{
		{Key: "source", Value: n.Source},
		{Key: "destination", Value: n.Destination},
		{Key: "top_n", Value: strconv.Itoa(n.TopN)},
	}
	if n.UserID != "" {
		params = append(params, Param{Key: "user_id", Value: n.UserID})
	}
	if mode, err := ParseMode(string(n.Mode)); err == nil && mode != ModeAuto {
		params = append(params, Param{Key: "mode", Value: string(mode)})
	}
	return params
}

// EncodeParams encodes params in the given order. url.Values sorts keys,
// which would reorder the query string.
func EncodeParams(params []Param) string {
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// Encode returns the encoded query string for /recommend-route.
func (q Query) Encode() string {
	return EncodeParams(q.Params())
}
