package cmd

import (
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/xcawolfe-amzn/digestctl/internal/config"
	"github.com/xcawolfe-amzn/digestctl/internal/digest"
)

// newLogger returns a slog.Logger that is silent unless --verbose was
// given, matching the CLI's "quiet on success" requirement.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if flagVerbose {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(h)
}

// newRunID stamps one run with a uuid, surfaced only in --verbose logs
// to correlate a digest table with its metadata sidecar.
func newRunID() string {
	return uuid.NewString()
}

// resolveConfigPath returns the --config flag value, or the default
// config location when unset.
func resolveConfigPath() string {
	if flagConfigPath != "" {
		return flagConfigPath
	}
	return config.Path
}

// resolveParams merges file defaults with the given flag overrides.
// A zero time.Duration in an override means "flag not set, use file
// default / built-in default".
func resolveParams(shortDt, longDt, cutoff time.Duration) (digest.Params, error) {
	defaults, err := config.Load(resolveConfigPath())
	if err != nil {
		return digest.Params{}, err
	}
	p, err := defaults.Params()
	if err != nil {
		return digest.Params{}, err
	}
	if shortDt > 0 {
		p.ShortDt = shortDt
	}
	if longDt > 0 {
		p.LongDt = longDt
	}
	if cutoff > 0 {
		p.Cutoff = cutoff
	}
	return p, nil
}
