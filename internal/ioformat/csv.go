package ioformat

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xcawolfe-amzn/digestctl/internal/driver"
)

// readEventsCSV parses the input event table. userProps names the
// optional label columns to carry through untouched; any of them
// absent from the header is a SchemaError, exactly like a missing
// required column.
func readEventsCSV(r io.Reader, userProps []string, skipUnparseable bool) ([]driver.Row, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	idx, err := columnIndex(header, append([]string{"user", "time", "cell"}, userProps...))
	if err != nil {
		return nil, err
	}

	var rows []driver.Row
	rowNum := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv row %d: %w", rowNum, err)
		}
		rowNum++

		t, perr := parseTime(rec[idx["time"]])
		if perr != nil {
			if skipUnparseable {
				continue
			}
			return nil, &ParseError{Row: rowNum, Value: rec[idx["time"]], Err: perr}
		}

		props := make([]string, len(userProps))
		for i, p := range userProps {
			props[i] = rec[idx[p]]
		}

		rows = append(rows, driver.Row{
			User:      rec[idx["user"]],
			UserProps: props,
			Time:      t,
			Cell:      rec[idx["cell"]],
		})
	}
	return rows, nil
}

// writeDigestsCSV writes the digest output table (spec §6's output
// schema), with one dynamically-named column per configured user prop.
func writeDigestsCSV(w io.Writer, userProps []string, rows []driver.DigestRow) error {
	cw := csv.NewWriter(w)
	header := append([]string{"user"}, userProps...)
	header = append(header, "digest_id", "start_time", "end_time", "start_cell", "end_cell",
		"events_in_cell", "num_cells", "num_events", "type")
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, row := range rows {
		rec := append([]string{row.User}, row.UserProps...)
		rec = append(rec,
			strconv.Itoa(row.DigestID),
			row.StartTime.Format(timeLayouts[0]),
			row.EndTime.Format(timeLayouts[0]),
			row.StartCell,
			row.EndCell,
			encodeEventsInCell(row.EventsInCell),
			strconv.Itoa(row.NumCells),
			strconv.Itoa(row.NumEvents),
			row.Type.String(),
		)
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// columnIndex validates that every name in required is present in
// header and returns a name→index map covering at least those columns.
func columnIndex(header []string, required []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			return nil, &SchemaError{Column: name, Reason: "required column missing from header"}
		}
	}
	return idx, nil
}
