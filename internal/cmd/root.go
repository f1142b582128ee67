// Package cmd wires digestctl's cobra command tree: a rootCmd carrying
// global flags, two subcommands (digest, analyse), and RunE handlers
// that always return a wrapped error instead of calling os.Exit.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	flagConfigPath string
	flagVerbose    bool
)

// Execute builds the command tree and runs it against os.Args. Its
// return value is suitable for conversion to a process exit code by
// main; Execute itself never exits the process.
func Execute() error {
	root := newRootCmd()
	return root.Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "digestctl",
		Short:         "Condense per-user location event streams into digests",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagConfigPath, "config", "", "path to config.toml (default ~/.config/digestctl/config.toml)")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable structured diagnostic logging")

	root.AddCommand(newDigestCmd())
	root.AddCommand(newAnalyseCmd())
	return root
}

// fatal renders err as a single-line diagnostic, matching the CLI's
// "no stack trace on stdout" requirement.
func fatal(err error) error {
	return fmt.Errorf("error: %w", err)
}
