package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xcawolfe-amzn/digestctl/internal/ioformat"
)

func TestLoad_MissingFileReturnsZeroValue(t *testing.T) {
	d, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if d != (Defaults{}) {
		t.Fatalf("expected zero-value Defaults, got %+v", d)
	}
}

func TestLoad_ParsesFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	contents := `
short_dt = "10s"
long_dt = "4h"
cutoff = "12h"
in_format = "parquet"
out_format = "csv"
compression = "gzip"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	d, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	p, err := d.Params()
	if err != nil {
		t.Fatalf("Params: %v", err)
	}
	if p.ShortDt != 10*time.Second || p.LongDt != 4*time.Hour || p.Cutoff != 12*time.Hour {
		t.Fatalf("unexpected params: %+v", p)
	}

	inf, err := d.InFormat()
	if err != nil || inf != ioformat.Parquet {
		t.Fatalf("InFormat: got %v, err %v", inf, err)
	}
	outf, err := d.OutFormat()
	if err != nil || outf != ioformat.CSV {
		t.Fatalf("OutFormat: got %v, err %v", outf, err)
	}
	compress, err := d.Compress()
	if err != nil || compress != ioformat.Gzip {
		t.Fatalf("Compress: got %v, err %v", compress, err)
	}
}

func TestDefaults_ParamsFallsBackToBuiltins(t *testing.T) {
	p, err := Defaults{}.Params()
	if err != nil {
		t.Fatalf("Params: %v", err)
	}
	if p.ShortDt != 15*time.Second || p.LongDt != 8*time.Hour || p.Cutoff != 24*time.Hour {
		t.Fatalf("expected built-in defaults, got %+v", p)
	}
}

func TestDefaults_RejectsBadDuration(t *testing.T) {
	_, err := Defaults{ShortDt: "not-a-duration"}.Params()
	if err == nil {
		t.Fatal("expected error for malformed short_dt")
	}
}
