package model

import "encoding/json"

// Recommendation is one route returned by an upstream recommender.
type Recommendation struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Mode        string         `json:"mode,omitempty"`
	Source      string         `json:"source"`
	Destination string         `json:"destination"`
	Departure   string         `json:"departure,omitempty"`
	Arrival     string         `json:"arrival,omitempty"`
	Meta        map[string]any `json:"meta,omitempty"`
}

// Result is the gateway's answer to a recommendation query.
type Result struct {
	// Mode is the mode the gateway resolved, which may differ from the
	// requested one when the query used auto.
	Mode            string           `json:"mode"`
	Upstream        string           `json:"upstream"`
	Source          string           `json:"source"`
	Destination     string           `json:"destination"`
	Recommendations []Recommendation `json:"recommendations"`

	// Raw is the response body as received.
	Raw json.RawMessage `json:"-"`
}

// MetaJSON renders the recommendation meta as indented JSON, "{}" when empty.
func (r Recommendation) MetaJSON() string {
	if len(r.Meta) == 0 {
		return "{}"
	}
	b, err := json.MarshalIndent(r.Meta, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

// RawJSON renders the raw response indented, falling back to the bytes as-is.
func (r Result) RawJSON() string {
	if len(r.Raw) == 0 {
		b, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return ""
		}
		return string(b)
	}
	var v any
	if err := json.Unmarshal(r.Raw, &v); err != nil {
		return string(r.Raw)
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return string(r.Raw)
	}
	return string(b)
}

// Clone returns a deep copy of r. Nested meta maps and slices are copied too.
func (r Result) Clone() Result {
	out := r
	if r.Recommendations != nil {
		out.Recommendations = make([]Recommendation, len(r.Recommendations))
		for i, rec := range r.Recommendations {
			if rec.Meta != nil {
				rec.Meta = cloneMap(rec.Meta)
			}
			out.Recommendations[i] = rec
		}
	}
	if r.Raw != nil {
		out.Raw = append(json.RawMessage(nil), r.Raw...)
	}
	return out
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

// cloneValue copies the reference types encoding/json decodes into.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// OrDash returns s, or "-" when s is empty.
func OrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
