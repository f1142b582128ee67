package ioformat

import (
	"fmt"
	"strconv"
	"time"
)

// timeLayouts are tried in order when a CSV time column arrives as
// text (spec §6: "Time column may arrive as text and must be parsed as
// instants"). Unix epoch seconds are tried last, as a fallback for
// purely numeric values.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseTime parses a single time cell using the accepted layouts, then
// falls back to Unix epoch seconds.
func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("no recognized time layout matched %q", s)
}
