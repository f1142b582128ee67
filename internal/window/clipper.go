// Package window implements the observation-window clipper (spec §4.2):
// given a target interval [owStart, owEnd], it reduces a user's sorted
// event series to the smallest sub-slice sufficient to reproduce every
// digest whose start time falls inside the window.
package window

import (
	"time"

	"github.com/xcawolfe-amzn/digestctl/internal/digest"
)

// Clip returns the smallest sub-slice of events (assumed sorted
// ascending by Time) such that running the digest state machine over
// it reproduces, byte for byte, every digest the unclipped run would
// have produced with StartTime in [owStart, owEnd].
//
// It relies on the state machine's Markov property at renewal gaps: a
// consecutive pair of events more than longDt apart severs any
// dependency between what came before and what comes after (see
// spec §4.2 and §9). Trimming at the nearest renewal gap around the
// window is therefore always safe and, used together, minimal.
func Clip(events []digest.Event, owStart, owEnd time.Time, longDt time.Duration) []digest.Event {
	if len(events) == 0 {
		return events
	}

	start := warmupStart(events, owStart, longDt)
	end := bufferEnd(events, owEnd, longDt)
	if start > end {
		return nil
	}
	return events[start : end+1]
}

// warmupStart locates the index immediately after the last renewal gap
// among events strictly before owStart. If no such gap exists, it
// returns 0 (start at the first event).
func warmupStart(events []digest.Event, owStart time.Time, longDt time.Duration) int {
	warmupEnd := 0
	for warmupEnd < len(events) && events[warmupEnd].Time.Before(owStart) {
		warmupEnd++
	}
	// warmupEnd is the first index at or after owStart (possibly len(events)).
	for i := warmupEnd - 1; i > 0; i-- {
		gap := events[i].Time.Sub(events[i-1].Time)
		if gap > longDt {
			return i
		}
	}
	return 0
}

// bufferEnd locates the index immediately before the first renewal gap
// among events strictly after owEnd. If no such gap exists, it returns
// the index of the last event.
func bufferEnd(events []digest.Event, owEnd time.Time, longDt time.Duration) int {
	bufferStart := len(events)
	for bufferStart > 0 && events[bufferStart-1].Time.After(owEnd) {
		bufferStart--
	}
	// bufferStart is the first index strictly after owEnd (possibly len(events)).
	for i := bufferStart; i < len(events)-1; i++ {
		gap := events[i+1].Time.Sub(events[i].Time)
		if gap > longDt {
			return i
		}
	}
	return len(events) - 1
}

// Run clips events to [owStart, owEnd], runs the digest state machine
// over the clipped slice, and retains only digests whose StartTime
// falls within the window.
func Run(events []digest.Event, owStart, owEnd time.Time, p digest.Params) ([]digest.Digest, error) {
	clipped := Clip(events, owStart, owEnd, p.LongDt)
	digests, err := digest.Run(clipped, p)
	if err != nil {
		return nil, err
	}
	out := digests[:0]
	for _, d := range digests {
		if !d.StartTime.Before(owStart) && !d.StartTime.After(owEnd) {
			out = append(out, d)
		}
	}
	return out, nil
}
