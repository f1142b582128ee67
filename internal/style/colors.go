package style

import "github.com/charmbracelet/lipgloss"

// Bold and Dim are the two styles used throughout the CLI's terminal
// output: Bold for headings and emphasized values, Dim for secondary
// or muted detail.
var (
	Bold = lipgloss.NewStyle().Bold(true)
	Dim  = lipgloss.NewStyle().Faint(true)
)

// Warn marks a diagnostic that is serious but not itself the thing that
// failed — e.g. a skipped user stream reported alongside a run that
// still exits non-zero.
var Warn = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "130", Dark: "214"})
