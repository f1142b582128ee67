package ioformat

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xcawolfe-amzn/digestctl/internal/driver"
)

// WriteOptions configures digest table output.
type WriteOptions struct {
	Format      Format
	Compression Compression
	UserProps   []string
}

// WriteDigests writes rows to path per opts, creating or truncating the
// file. The zip entry name is derived from path's base name with its
// extension replaced to match the chosen format.
func WriteDigests(path string, opts WriteOptions, rows []driver.DigestRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	entryName := entryNameFor(path, opts.Format)
	w, flush, err := wrapWriter(f, opts.Compression, entryName)
	if err != nil {
		return err
	}

	switch opts.Format {
	case CSV:
		if err := writeDigestsCSV(w, opts.UserProps, rows); err != nil {
			return err
		}
	case Parquet:
		if err := writeDigestsParquet(w, rows); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q", opts.Format)
	}

	if err := flush(); err != nil {
		return fmt.Errorf("finalizing %s: %w", path, err)
	}
	return nil
}

func entryNameFor(path string, f Format) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := base[:len(base)-len(ext)]
	switch f {
	case Parquet:
		return stem + ".parquet"
	default:
		return stem + ".csv"
	}
}
