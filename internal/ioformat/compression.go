package ioformat

import (
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
)

// openReader wraps r according to c, returning a reader of the
// uncompressed table bytes plus a closer for any wrapper resources.
// Zip is rejected here; zip input goes through openZipFile.
func openReader(r io.Reader, c Compression) (io.Reader, io.Closer, error) {
	switch c {
	case None:
		return r, io.NopCloser(nil), nil
	case Gzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("opening gzip stream: %w", err)
		}
		return gz, gz, nil
	case Zip:
		return nil, nil, fmt.Errorf("zip decompression requires a seekable source; use openZipFile")
	default:
		return nil, nil, fmt.Errorf("unsupported compression %q", c)
	}
}

// openZipFile opens the single entry of a zip archive at path.
func openZipFile(path string) (io.ReadCloser, func() error, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening zip archive: %w", err)
	}
	if len(zr.File) == 0 {
		zr.Close()
		return nil, nil, fmt.Errorf("zip archive %s has no entries", path)
	}
	rc, err := zr.File[0].Open()
	if err != nil {
		zr.Close()
		return nil, nil, fmt.Errorf("opening zip entry %s: %w", zr.File[0].Name, err)
	}
	return rc, zr.Close, nil
}

// wrapWriter wraps w according to c. The returned flush function must
// be called (and its error checked) before the underlying file is
// closed; it finalizes any wrapper trailer (gzip footer, zip central
// directory).
func wrapWriter(w io.Writer, c Compression, entryName string) (io.Writer, func() error, error) {
	switch c {
	case None:
		return w, func() error { return nil }, nil
	case Gzip:
		gz := gzip.NewWriter(w)
		return gz, gz.Close, nil
	case Zip:
		zw := zip.NewWriter(w)
		entry, err := zw.Create(entryName)
		if err != nil {
			return nil, nil, fmt.Errorf("creating zip entry %s: %w", entryName, err)
		}
		return entry, zw.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported compression %q", c)
	}
}
