package ioformat

import (
	"encoding/json"
	"fmt"
	"time"
)

// eventParquetRow and digestParquetRow are the concrete, fixed-shape
// Go structs handed to parquet-go's reflection-based generic
// reader/writer. The dynamic user_props column list (spec §6: "any
// number of user_props label columns") doesn't fit a compile-time
// struct tag schema, so it is flattened into a single JSON-array
// column instead of N dynamically-named columns; csv.go keeps the
// props as real, independently-named CSV columns since encoding/csv is
// header-driven rather than tag-driven.
type eventParquetRow struct {
	User      string    `parquet:"user"`
	UserProps string    `parquet:"user_props"`
	Time      time.Time `parquet:"time,timestamp"`
	Cell      string    `parquet:"cell"`
}

type digestParquetRow struct {
	User         string    `parquet:"user"`
	UserProps    string    `parquet:"user_props"`
	DigestID     int       `parquet:"digest_id"`
	StartTime    time.Time `parquet:"start_time,timestamp"`
	EndTime      time.Time `parquet:"end_time,timestamp"`
	StartCell    string    `parquet:"start_cell"`
	EndCell      string    `parquet:"end_cell"`
	EventsInCell string    `parquet:"events_in_cell"`
	NumCells     int       `parquet:"num_cells"`
	NumEvents    int       `parquet:"num_events"`
	Type         string    `parquet:"type"`
}

func encodeUserProps(props []string) string {
	if len(props) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(props)
	return string(b)
}

func decodeUserProps(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	var props []string
	if err := json.Unmarshal([]byte(s), &props); err != nil {
		return nil, fmt.Errorf("decoding user_props column: %w", err)
	}
	return props, nil
}

func encodeEventsInCell(m map[string]int) string {
	b, _ := json.Marshal(m)
	return string(b)
}

func decodeEventsInCell(s string) (map[string]int, error) {
	m := make(map[string]int)
	if s == "" {
		return m, nil
	}
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, fmt.Errorf("decoding events_in_cell column: %w", err)
	}
	return m, nil
}
