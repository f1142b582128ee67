// Package ioformat reads and writes the event/digest tables described in
// spec §6, across the CLI's {csv, parquet} × {none, zip, gzip} matrix.
// It is the one layer in this repository allowed to know about file
// formats and compression; internal/driver and internal/digest never
// see a byte stream.
package ioformat

import "fmt"

// Format selects the on-disk table encoding.
type Format string

const (
	CSV     Format = "csv"
	Parquet Format = "parquet"
)

// ParseFormat validates a --in-format/--out-format flag value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case CSV, Parquet:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unsupported format %q (want csv or parquet)", s)
	}
}

// Compression selects an optional wrapper codec applied to the chosen
// format's byte stream.
type Compression string

const (
	None Compression = ""
	Gzip Compression = "gzip"
	Zip  Compression = "zip"
)

// ParseCompression validates a --compression flag value. An empty
// string means no compression.
func ParseCompression(s string) (Compression, error) {
	switch Compression(s) {
	case None, Gzip, Zip:
		return Compression(s), nil
	default:
		return "", fmt.Errorf("unsupported compression %q (want gzip or zip)", s)
	}
}
