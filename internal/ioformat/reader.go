package ioformat

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/xcawolfe-amzn/digestctl/internal/driver"
)

// ReadOptions configures table ingestion.
type ReadOptions struct {
	Format      Format
	Compression Compression
	UserProps   []string

	// SkipUnparseable drops rows whose time column fails to parse
	// instead of failing the whole run (spec §7).
	SkipUnparseable bool
}

// ReadEvents loads the event table at path per opts. Parquet's footer
// format requires random access, so a compressed parquet file is first
// decompressed into memory; CSV is streamed directly.
func ReadEvents(path string, opts ReadOptions) ([]driver.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	switch opts.Format {
	case CSV:
		return readEventsCSVCompressed(f, opts)
	case Parquet:
		return readEventsParquetCompressed(f, opts)
	default:
		return nil, fmt.Errorf("unsupported format %q", opts.Format)
	}
}

func readEventsCSVCompressed(f *os.File, opts ReadOptions) ([]driver.Row, error) {
	switch opts.Compression {
	case None, Gzip:
		r, closer, err := openReader(f, opts.Compression)
		if err != nil {
			return nil, err
		}
		defer closer.Close()
		return readEventsCSV(r, opts.UserProps, opts.SkipUnparseable)
	case Zip:
		rc, closeZip, err := openZipFile(f.Name())
		if err != nil {
			return nil, err
		}
		defer closeZip()
		defer rc.Close()
		return readEventsCSV(rc, opts.UserProps, opts.SkipUnparseable)
	default:
		return nil, fmt.Errorf("unsupported compression %q", opts.Compression)
	}
}

func readEventsParquetCompressed(f *os.File, opts ReadOptions) ([]driver.Row, error) {
	switch opts.Compression {
	case None:
		return readEventsParquet(f)
	case Gzip:
		r, closer, err := openReader(f, Gzip)
		if err != nil {
			return nil, err
		}
		defer closer.Close()
		buf, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("decompressing gzip parquet stream: %w", err)
		}
		return readEventsParquet(bytes.NewReader(buf))
	case Zip:
		rc, closeZip, err := openZipFile(f.Name())
		if err != nil {
			return nil, err
		}
		defer closeZip()
		defer rc.Close()
		buf, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("decompressing zip parquet entry: %w", err)
		}
		return readEventsParquet(bytes.NewReader(buf))
	default:
		return nil, fmt.Errorf("unsupported compression %q", opts.Compression)
	}
}
