package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/okian/routedash/internal/domain/model"
)

// RenderHealth writes the health grid, or the poll error when there is one.
func RenderHealth(w io.Writer, snap model.HealthSnapshot, pollErr string) error {
	if pollErr != "" {
		_, err := fmt.Fprintf(w, "error: %s\n", pollErr)
		return err
	}
	if snap == nil {
		_, err := fmt.Fprintln(w, "no health data")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "SERVICE\tSTATUS\tCLASS")
	for _, e := range snap.Entries() {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Service, e.Status, e.Class)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	healthy, unhealthy := snap.Counts()
	_, err := fmt.Fprintf(w, "%d services: %d healthy, %d unhealthy\n", len(snap), healthy, unhealthy)
	return err
}

// RenderResult writes the resolved route followed by one block per
// recommendation.
func RenderResult(w io.Writer, res model.Result) error {
	if _, err := fmt.Fprintf(w, "Resolved mode: %s\nUpstream: %s\nRoute: %s → %s\n",
		res.Mode, res.Upstream, res.Source, res.Destination); err != nil {
		return err
	}
	if len(res.Recommendations) == 0 {
		_, err := fmt.Fprintln(w, "\nno recommendations")
		return err
	}
	for i, rec := range res.Recommendations {
		meta := "{}"
		if len(rec.Meta) > 0 {
			if b, err := json.Marshal(rec.Meta); err == nil {
				meta = string(b)
			}
		}
		if _, err := fmt.Fprintf(w, "\n#%d %s (%s)\n   %s → %s\n   Dep: %s | Arr: %s\n   meta: %s\n",
			i+1, rec.Name, rec.ID, rec.Source, rec.Destination,
			model.OrDash(rec.Departure), model.OrDash(rec.Arrival), meta); err != nil {
			return err
		}
	}
	return nil
}
