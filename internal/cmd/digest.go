package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/xcawolfe-amzn/digestctl/internal/config"
	"github.com/xcawolfe-amzn/digestctl/internal/driver"
	"github.com/xcawolfe-amzn/digestctl/internal/ioformat"
	"github.com/xcawolfe-amzn/digestctl/internal/lock"
	"github.com/xcawolfe-amzn/digestctl/internal/style"
)

type digestFlags struct {
	in, out         string
	inFormat        string
	outFormat       string
	compression     string
	userProps       []string
	shortDt         time.Duration
	longDt          time.Duration
	cutoff          time.Duration
	owStart, owEnd  string
	skipUnparseable bool
	maxWorkers      int
}

func newDigestCmd() *cobra.Command {
	f := &digestFlags{}
	c := &cobra.Command{
		Use:   "digest",
		Short: "Condense an event table into a digest table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDigest(f)
		},
	}
	c.Flags().StringVar(&f.in, "in", "", "input event table path (required)")
	c.Flags().StringVar(&f.out, "out", "", "output digest table path (required)")
	c.Flags().StringVar(&f.inFormat, "in-format", "", "csv or parquet (default from config, else csv)")
	c.Flags().StringVar(&f.outFormat, "out-format", "", "csv or parquet (default from config, else csv)")
	c.Flags().StringVar(&f.compression, "compression", "", "gzip or zip (default from config, else none)")
	c.Flags().StringSliceVar(&f.userProps, "user-props", nil, "comma-separated list of user property column names")
	c.Flags().DurationVar(&f.shortDt, "short-dt", 0, "short gap threshold (default from config, else 15s)")
	c.Flags().DurationVar(&f.longDt, "long-dt", 0, "long/renewal gap threshold (default from config, else 8h)")
	c.Flags().DurationVar(&f.cutoff, "cutoff", 0, "maximum digest span (default from config, else 24h)")
	c.Flags().StringVar(&f.owStart, "ow-start", "", "observation window start (RFC3339); clips events before digesting")
	c.Flags().StringVar(&f.owEnd, "ow-end", "", "observation window end (RFC3339); clips events before digesting")
	c.Flags().BoolVar(&f.skipUnparseable, "skip-unparseable", false, "drop rows with an unparseable time column instead of failing")
	c.Flags().IntVar(&f.maxWorkers, "max-workers", 0, "bound concurrent user-group digesting (default GOMAXPROCS)")
	_ = c.MarkFlagRequired("in")
	_ = c.MarkFlagRequired("out")
	return c
}

func runDigest(f *digestFlags) error {
	log := newLogger()
	runID := newRunID()
	log.Debug("starting digest run", "run_id", runID, "in", f.in, "out", f.out)

	p, err := resolveParams(f.shortDt, f.longDt, f.cutoff)
	if err != nil {
		return fatal(err)
	}

	defaults, err := config.Load(resolveConfigPath())
	if err != nil {
		return fatal(err)
	}

	inFmt, err := resolveFormat(f.inFormat, defaults.InFormat)
	if err != nil {
		return fatal(err)
	}
	outFmt, err := resolveFormat(f.outFormat, defaults.OutFormat)
	if err != nil {
		return fatal(err)
	}
	compression, err := resolveCompression(f.compression, defaults.Compress)
	if err != nil {
		return fatal(err)
	}

	rows, err := ioformat.ReadEvents(f.in, ioformat.ReadOptions{
		Format:          inFmt,
		Compression:     compression,
		UserProps:       f.userProps,
		SkipUnparseable: f.skipUnparseable,
	})
	if err != nil {
		return fatal(err)
	}

	var window *driver.WindowOptions
	if f.owStart != "" || f.owEnd != "" {
		start, end, werr := parseWindowFlags(f.owStart, f.owEnd)
		if werr != nil {
			return fatal(werr)
		}
		window = &driver.WindowOptions{OWStart: start, OWEnd: end}
	}

	digests, err := driver.Run(rows, p, driver.RunOptions{Window: window, MaxWorkers: f.maxWorkers})
	var partial *driver.PartialError
	if err != nil {
		if pe, ok := err.(*driver.PartialError); ok {
			partial = pe
		} else {
			return fatal(err)
		}
	}

	release, err := lock.Acquire(f.out)
	if err != nil {
		return fatal(err)
	}
	defer release()

	if err := ioformat.WriteDigests(f.out, ioformat.WriteOptions{
		Format:      outFmt,
		Compression: compression,
		UserProps:   f.userProps,
	}, digests); err != nil {
		return fatal(err)
	}

	log.Debug("digest run complete", "run_id", runID, "digests", len(digests))
	if partial != nil {
		// The digest table was already written successfully; the run is
		// still reported as a failure (non-zero exit) because one or
		// more user streams were skipped.
		fmt.Fprintln(os.Stderr, style.Warn.Render(fmt.Sprintf("warning: %s", partial.Error())))
		return fatal(partial)
	}
	return nil
}

func resolveFormat(flagVal string, fromConfig func() (ioformat.Format, error)) (ioformat.Format, error) {
	if flagVal != "" {
		return ioformat.ParseFormat(flagVal)
	}
	return fromConfig()
}

func resolveCompression(flagVal string, fromConfig func() (ioformat.Compression, error)) (ioformat.Compression, error) {
	if flagVal != "" {
		return ioformat.ParseCompression(flagVal)
	}
	return fromConfig()
}

func parseWindowFlags(start, end string) (time.Time, time.Time, error) {
	var s, e time.Time
	var err error
	if start != "" {
		s, err = time.Parse(time.RFC3339, start)
		if err != nil {
			return s, e, fmt.Errorf("parsing --ow-start: %w", err)
		}
	}
	if end != "" {
		e, err = time.Parse(time.RFC3339, end)
		if err != nil {
			return s, e, fmt.Errorf("parsing --ow-end: %w", err)
		}
	}
	if start == "" || end == "" {
		return s, e, fmt.Errorf("both --ow-start and --ow-end are required when either is set")
	}
	return s, e, nil
}
