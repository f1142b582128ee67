// Package config loads digestctl's run-defaults file, the same
// BurntSushi/toml-backed shape the teacher uses for its own on-disk
// settings (see the registry.toml parsing in the teacher's hooks
// package): a flat TOML document unmarshaled straight into a struct,
// with CLI flags always taking precedence over whatever it contains.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/xcawolfe-amzn/digestctl/internal/digest"
	"github.com/xcawolfe-amzn/digestctl/internal/ioformat"
	"github.com/xcawolfe-amzn/digestctl/internal/util"
)

// Defaults holds the run defaults an invocation falls back to when a
// flag is left unset. Durations are stored as TOML strings (e.g. "15s")
// and parsed with time.ParseDuration.
type Defaults struct {
	ShortDt            string `toml:"short_dt"`
	LongDt             string `toml:"long_dt"`
	Cutoff             string `toml:"cutoff"`
	DefaultInFormat    string `toml:"in_format"`
	DefaultOutFormat   string `toml:"out_format"`
	DefaultCompression string `toml:"compression"`
}

// Path is the default config file location, resolved through
// util.ExpandHome the same way the teacher resolves town-relative paths.
const Path = "~/.config/digestctl/config.toml"

// Load reads and parses the config file at path. A missing file is not
// an error: it returns zero-value Defaults so the caller falls through
// to built-in defaults.
func Load(path string) (Defaults, error) {
	resolved := util.ExpandHome(path)
	data, err := os.ReadFile(resolved)
	if os.IsNotExist(err) {
		return Defaults{}, nil
	}
	if err != nil {
		return Defaults{}, fmt.Errorf("reading config %s: %w", resolved, err)
	}

	var d Defaults
	if err := toml.Unmarshal(data, &d); err != nil {
		return Defaults{}, fmt.Errorf("parsing config %s: %w", resolved, err)
	}
	return d, nil
}

// Params resolves digest.Params from d, falling back to
// digest.DefaultParams() for any duration left unset. A duration that
// does not parse is returned as an error.
func (d Defaults) Params() (digest.Params, error) {
	p := digest.DefaultParams()
	var err error
	if d.ShortDt != "" {
		if p.ShortDt, err = time.ParseDuration(d.ShortDt); err != nil {
			return digest.Params{}, fmt.Errorf("config short_dt: %w", err)
		}
	}
	if d.LongDt != "" {
		if p.LongDt, err = time.ParseDuration(d.LongDt); err != nil {
			return digest.Params{}, fmt.Errorf("config long_dt: %w", err)
		}
	}
	if d.Cutoff != "" {
		if p.Cutoff, err = time.ParseDuration(d.Cutoff); err != nil {
			return digest.Params{}, fmt.Errorf("config cutoff: %w", err)
		}
	}
	return p, nil
}

// formatOrDefault resolves s, falling back to CSV when unset.
func formatOrDefault(s string) (ioformat.Format, error) {
	if s == "" {
		return ioformat.CSV, nil
	}
	return ioformat.ParseFormat(s)
}

// InFormat resolves the configured default input format.
func (d Defaults) InFormat() (ioformat.Format, error) { return formatOrDefault(d.DefaultInFormat) }

// OutFormat resolves the configured default output format.
func (d Defaults) OutFormat() (ioformat.Format, error) { return formatOrDefault(d.DefaultOutFormat) }

// Compress resolves the configured default compression, falling back
// to no compression when unset.
func (d Defaults) Compress() (ioformat.Compression, error) {
	if d.DefaultCompression == "" {
		return ioformat.None, nil
	}
	return ioformat.ParseCompression(d.DefaultCompression)
}
