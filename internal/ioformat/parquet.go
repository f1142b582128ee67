package ioformat

import (
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/xcawolfe-amzn/digestctl/internal/driver"
)

// readEventsParquet reads an event table encoded as rows of
// eventParquetRow, using parquet-go's generic reader. user_props is
// flattened to a JSON-array column (rows.go) rather than carried as
// dynamically-named columns, since the reader's row type is fixed at
// compile time.
func readEventsParquet(r io.ReaderAt) ([]driver.Row, error) {
	pr := parquet.NewGenericReader[eventParquetRow](r)
	defer pr.Close()

	buf := make([]eventParquetRow, 512)
	var rows []driver.Row
	for {
		n, err := pr.Read(buf)
		for i := 0; i < n; i++ {
			props, perr := decodeUserProps(buf[i].UserProps)
			if perr != nil {
				return nil, fmt.Errorf("row %d: %w", len(rows), perr)
			}
			rows = append(rows, driver.Row{
				User:      buf[i].User,
				UserProps: props,
				Time:      buf[i].Time,
				Cell:      buf[i].Cell,
			})
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading parquet rows: %w", err)
		}
	}
	return rows, nil
}

// writeDigestsParquet writes the digest output table with parquet-go's
// generic writer against the digestParquetRow schema.
func writeDigestsParquet(w io.Writer, rows []driver.DigestRow) error {
	pw := parquet.NewGenericWriter[digestParquetRow](w)

	out := make([]digestParquetRow, len(rows))
	for i, row := range rows {
		out[i] = digestParquetRow{
			User:         row.User,
			UserProps:    encodeUserProps(row.UserProps),
			DigestID:     row.DigestID,
			StartTime:    row.StartTime,
			EndTime:      row.EndTime,
			StartCell:    row.StartCell,
			EndCell:      row.EndCell,
			EventsInCell: encodeEventsInCell(row.EventsInCell),
			NumCells:     row.NumCells,
			NumEvents:    row.NumEvents,
			Type:         row.Type.String(),
		}
	}

	if _, err := pw.Write(out); err != nil {
		pw.Close()
		return fmt.Errorf("writing parquet rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("closing parquet writer: %w", err)
	}
	return nil
}
