// Package analysis computes the window-analysis metadata record (spec
// §4.4): warmup/observation/buffer statistics over the full, unfiltered
// input table surrounding an observation window.
package analysis

import (
	"time"

	"github.com/xcawolfe-amzn/digestctl/internal/driver"
)

// Section is one of the three metadata sections (warmup, observation,
// buffer): a duration, an event count, and a distinct-user count.
type Section struct {
	DurationSeconds float64
	Events          int
	DistinctUsers   int
}

// Metadata is the full window-analysis record.
type Metadata struct {
	Warmup      Section
	Observation Section
	Buffer      Section
}

// Compute derives Metadata from the full unfiltered row set and the
// observation window boundaries. Durations are measured against the
// global min/max event time in rows, not the window itself — an empty
// warmup or buffer still yields a well-defined (possibly negative, if
// ow_start/ow_end fall outside the data) duration.
//
// Boundary convention (spec §4.4, matching the source's exclusive
// comparisons): warmup is time < owStart, buffer is time > owEnd,
// observation is everything else — i.e. owStart <= time <= owEnd.
func Compute(rows []driver.Row, owStart, owEnd time.Time) Metadata {
	if len(rows) == 0 {
		return Metadata{}
	}

	minTime, maxTime := rows[0].Time, rows[0].Time
	for _, r := range rows[1:] {
		if r.Time.Before(minTime) {
			minTime = r.Time
		}
		if r.Time.After(maxTime) {
			maxTime = r.Time
		}
	}

	warmupUsers := make(map[string]struct{})
	bufferUsers := make(map[string]struct{})
	observationUsers := make(map[string]struct{})
	var warmupEvents, bufferEvents, observationEvents int

	for _, r := range rows {
		switch {
		case r.Time.Before(owStart):
			warmupEvents++
			warmupUsers[r.User] = struct{}{}
		case r.Time.After(owEnd):
			bufferEvents++
			bufferUsers[r.User] = struct{}{}
		default:
			observationEvents++
			observationUsers[r.User] = struct{}{}
		}
	}

	return Metadata{
		Warmup: Section{
			DurationSeconds: owStart.Sub(minTime).Seconds(),
			Events:          warmupEvents,
			DistinctUsers:   len(warmupUsers),
		},
		Observation: Section{
			DurationSeconds: owEnd.Sub(owStart).Seconds(),
			Events:          observationEvents,
			DistinctUsers:   len(observationUsers),
		},
		Buffer: Section{
			DurationSeconds: maxTime.Sub(owEnd).Seconds(),
			Events:          bufferEvents,
			DistinctUsers:   len(bufferUsers),
		},
	}
}
