// Package pretty provides Lipgloss-based styled output utilities.
package pretty

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Styles contains all styled renderers for CLI output.
type Styles struct {
	// Change status styles
	Applied lipgloss.Style
	Planned lipgloss.Style
	Noop    lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style

	// Change components
	FilePath lipgloss.Style
	Address  lipgloss.Style
	Message  lipgloss.Style

	// Diff styles
	DiffHeader  lipgloss.Style
	DiffHunk    lipgloss.Style
	DiffAdd     lipgloss.Style
	DiffRemove  lipgloss.Style
	DiffContext lipgloss.Style

	// Section tree styles used by inspect
	TreeHeading  lipgloss.Style
	TreeBranch   lipgloss.Style
	TreeIndex    lipgloss.Style
	TreeKind     lipgloss.Style
	TreeRange    lipgloss.Style
	TreeLanguage lipgloss.Style

	// Summary styles
	SummaryTitle lipgloss.Style
	Success      lipgloss.Style
	Failure      lipgloss.Style

	// Help styles
	Command     lipgloss.Style
	Section     lipgloss.Style
	Subcommand  lipgloss.Style
	Flag        lipgloss.Style
	Description lipgloss.Style
	Example     lipgloss.Style

	// Misc
	Dim  lipgloss.Style
	Bold lipgloss.Style
}

// NewStyles creates a new Styles with the given color mode.
func NewStyles(colorEnabled bool) *Styles {
	if !colorEnabled {
		return newNoColorStyles()
	}
	return newColorStyles()
}

// newColorStyles creates styles with ANSI 256 colors.
func newColorStyles() *Styles {
	return &Styles{
		Applied: lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		Planned: lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		Noop:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),

		FilePath: lipgloss.NewStyle().Bold(true),
		Address:  lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Message:  lipgloss.NewStyle(),

		DiffHeader:  lipgloss.NewStyle().Bold(true),
		DiffHunk:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		DiffAdd:     lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		DiffRemove:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		DiffContext: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),

		TreeHeading:  lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		TreeBranch:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		TreeIndex:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		TreeKind:     lipgloss.NewStyle(),
		TreeRange:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		TreeLanguage: lipgloss.NewStyle().Foreground(lipgloss.Color("13")),

		SummaryTitle: lipgloss.NewStyle().Bold(true),
		Success:      lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		Failure:      lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),

		Command:     lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		Section:     lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		Subcommand:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Flag:        lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Description: lipgloss.NewStyle(),
		Example:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),

		Dim:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Bold: lipgloss.NewStyle().Bold(true),
	}
}

// newNoColorStyles creates styles with no color formatting.
func newNoColorStyles() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{
		Applied:      plain,
		Planned:      plain,
		Noop:         plain,
		Error:        plain,
		Warning:      plain,
		FilePath:     plain,
		Address:      plain,
		Message:      plain,
		DiffHeader:   plain,
		DiffHunk:     plain,
		DiffAdd:      plain,
		DiffRemove:   plain,
		DiffContext:  plain,
		TreeHeading:  plain,
		TreeBranch:   plain,
		TreeIndex:    plain,
		TreeKind:     plain,
		TreeRange:    plain,
		TreeLanguage: plain,
		SummaryTitle: plain,
		Success:      plain,
		Failure:      plain,
		Command:      plain,
		Section:      plain,
		Subcommand:   plain,
		Flag:         plain,
		Description:  plain,
		Example:      plain,
		Dim:          plain,
		Bold:         plain,
	}
}

// IsColorEnabled determines if color should be enabled based on mode and writer.
// Mode values: "auto" (default), "always", "never".
// In auto mode, color is enabled only if the writer is a TTY and NO_COLOR is not set.
func IsColorEnabled(mode string, writer io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		// https://no-color.org/
		if os.Getenv("NO_COLOR") != "" {
			return false
		}
		if f, ok := writer.(*os.File); ok {
			return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
		return false
	}
}
