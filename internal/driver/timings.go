package driver

import (
	"encoding/json"
	"fmt"
	"io"

	"shady/internal/observ"
)

type timingPayload struct {
	Kind    string               `json:"kind"`
	Name    string               `json:"name,omitempty"`
	Cached  bool                 `json:"cached,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

// WriteTimings reports the phase timings of results, as aligned tables or
// as one JSON object per line.
func WriteTimings(w io.Writer, results []*Result, asJSON bool) error {
	for _, res := range results {
		if res == nil {
			continue
		}
		if asJSON {
			data, err := json.Marshal(timingPayload{
				Kind:    "pipeline",
				Name:    res.Name,
				Cached:  res.Cached,
				TotalMS: res.Timing.TotalMS,
				Phases:  res.Timing.Phases,
			})
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "%s: %s", res.Name, res.Timing.Summary()); err != nil {
			return err
		}
	}
	return nil
}
