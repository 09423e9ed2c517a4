package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/template"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yaklabco/mdpatch/internal/ui/pretty"
)

// annotationExitCodes marks commands whose help lists the exit codes.
const annotationExitCodes = "mdpatch/exit-codes"

//nolint:gochecknoglobals // Read-only lookup table.
var exitCodeHelp = []struct {
	code int
	desc string
}{
	{ExitSuccess, "every operation applied, planned, or already in place"},
	{ExitGeneral, "usage, configuration, I/O, or validation error"},
	{ExitNotFound, "heading path matched no section"},
	{ExitFingerprintMismatch, "target block does not match the fingerprint"},
	{ExitAmbiguous, "heading path matched more than one section"},
}

// HelpFormatter renders styled help for a command tree.
type HelpFormatter struct {
	styles *pretty.Styles
}

// NewHelpFormatter creates a formatter for the given color mode and writer.
func NewHelpFormatter(colorMode string, writer io.Writer) *HelpFormatter {
	return &HelpFormatter{styles: pretty.NewStyles(pretty.IsColorEnabled(colorMode, writer))}
}

const usageTemplate = `{{ heading "Usage:" }}
{{- if .Runnable}}
  {{ command .UseLine }}{{end}}
{{- if .HasAvailableSubCommands}}
  {{ command .CommandPath }} [command]{{end}}

{{- if gt (len .Aliases) 0}}

{{ heading "Aliases:" }}
  {{ dim (join .Aliases ", ") }}
{{- end}}

{{- if .HasExample}}

{{ heading "Examples:" }}
{{ examples .Example }}
{{- end}}

{{- if .HasAvailableSubCommands}}

{{ heading "Commands:" }}{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{ subcommand (rpad .Name .NamePadding) }} {{ description .Short }}{{end}}{{end}}
{{- end}}

{{- if .HasAvailableLocalFlags}}

{{ heading "Flags:" }}
{{ flags .LocalFlags }}
{{- end}}

{{- if .HasAvailableInheritedFlags}}

{{ heading "Global Flags:" }}
{{ flags .InheritedFlags }}
{{- end}}

{{- if exitCodes .}}

{{ heading "Exit Codes:" }}
{{ exitCodes . }}
{{- end}}

{{- if .HasAvailableSubCommands}}

Use "{{ command (print .CommandPath " [command] --help") }}" for more information about a command.
{{- end}}
`

const helpTemplate = `{{ command .CommandPath }}{{if .Version}} {{ dim .Version }}{{end}}

{{with (or .Long .Short)}}{{ trim . }}

{{end}}` + usageTemplate

func (h *HelpFormatter) funcs() template.FuncMap {
	return template.FuncMap{
		"heading":     h.styles.Section.Render,
		"command":     h.styles.Command.Render,
		"subcommand":  h.styles.Subcommand.Render,
		"description": h.styles.Description.Render,
		"dim":         h.styles.Dim.Render,
		"examples":    h.examples,
		"flags":       h.flags,
		"exitCodes":   h.exitCodes,
		"join":        strings.Join,
		"rpad":        rpad,
		"trim":        trimTrailingWhitespace,
	}
}

// examples styles the command lines of an example block. Lines starting
// with "#" are comments.
func (h *HelpFormatter) examples(text string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		indent := line[:len(line)-len(strings.TrimLeft(line, " "))]
		if strings.HasPrefix(trimmed, "#") {
			lines[i] = indent + h.styles.Dim.Render(trimmed)
			continue
		}
		lines[i] = indent + h.styles.Example.Render(trimmed)
	}
	return strings.Join(lines, "\n")
}

// flags renders a flag set one row per flag, aligned on the longest
// "-s, --name type" column.
func (h *HelpFormatter) flags(set *pflag.FlagSet) string {
	type row struct {
		names, kind, usage string
	}

	var rows []row
	width := 0
	set.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}

		kind, usage := pflag.UnquoteUsage(f)
		names := "    --" + f.Name
		if f.Shorthand != "" {
			names = "-" + f.Shorthand + ", --" + f.Name
		}
		if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "[]" && f.DefValue != "0" {
			usage += fmt.Sprintf(" (default %q)", f.DefValue)
		}

		if n := len(names) + len(kind) + 1; n > width {
			width = n
		}
		rows = append(rows, row{names: names, kind: kind, usage: usage})
	})

	var b strings.Builder
	for i, r := range rows {
		if i > 0 {
			b.WriteString("\n")
		}
		pad := width - len(r.names) - len(r.kind) - 1
		b.WriteString("  ")
		b.WriteString(h.styleNames(r.names))
		if r.kind != "" {
			b.WriteString(" ")
			b.WriteString(h.styles.Dim.Render(r.kind))
		} else {
			pad++
		}
		b.WriteString(strings.Repeat(" ", pad+3))
		b.WriteString(h.styles.Description.Render(r.usage))
	}
	return b.String()
}

func (h *HelpFormatter) styleNames(names string) string {
	parts := strings.Split(names, ", ")
	for i, part := range parts {
		trimmed := strings.TrimLeft(part, " ")
		parts[i] = part[:len(part)-len(trimmed)] + h.styles.Flag.Render(trimmed)
	}
	return strings.Join(parts, ", ")
}

// exitCodes renders the exit code table for annotated commands, or "".
func (h *HelpFormatter) exitCodes(cmd *cobra.Command) string {
	if _, ok := cmd.Annotations[annotationExitCodes]; !ok {
		return ""
	}

	var b strings.Builder
	for i, ec := range exitCodeHelp {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "  %s   %s", h.styles.Flag.Render(strconv.Itoa(ec.code)), h.styles.Description.Render(ec.desc))
	}
	return b.String()
}

// ApplyToCommand installs the styled templates on cmd; subcommands inherit them.
func (h *HelpFormatter) ApplyToCommand(cmd *cobra.Command) {
	funcs := h.funcs()

	usage := template.Must(template.New("usage").Funcs(funcs).Parse(usageTemplate))
	help := template.Must(template.New("help").Funcs(funcs).Parse(helpTemplate))

	cmd.SetUsageFunc(func(c *cobra.Command) error {
		if err := usage.Execute(c.OutOrStderr(), c); err != nil {
			return fmt.Errorf("render usage: %w", err)
		}
		return nil
	})
	cmd.SetHelpFunc(func(c *cobra.Command, _ []string) {
		if err := help.Execute(c.OutOrStdout(), c); err != nil {
			c.PrintErrln(err)
		}
	})
}

// withExitCodes marks cmd so that its help lists the exit codes.
func withExitCodes(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[annotationExitCodes] = "true"
	return cmd
}

func rpad(s string, padding int) string {
	if len(s) >= padding {
		return s
	}
	return s + strings.Repeat(" ", padding-len(s))
}

func trimTrailingWhitespace(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
