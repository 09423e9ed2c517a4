package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdpatch/internal/configloader"
	"github.com/yaklabco/mdpatch/internal/logging"
	"github.com/yaklabco/mdpatch/internal/ui/pretty"
	"github.com/yaklabco/mdpatch/pkg/config"
	"github.com/yaklabco/mdpatch/pkg/fsutil"
	goldmarkparser "github.com/yaklabco/mdpatch/pkg/parser/goldmark"
	"github.com/yaklabco/mdpatch/pkg/runner"
)

const (
	inspectFormatText = "text"
	inspectFormatJSON = "json"
)

type inspectFlags struct {
	format string
	follow bool
	ignore []string
}

func newInspectCommand(globals *globalFlags) *cobra.Command {
	flags := &inspectFlags{}

	cmd := &cobra.Command{
		Use:   "inspect [paths...]",
		Short: "Show the heading paths and block indices of Markdown files",
		Long: `Print the section tree of each Markdown file with the index, kind, line
range and byte range of every block, so operations can be addressed.

Directories are searched for .md and .markdown files, skipping the config
file's ignore patterns. Code blocks show their language and front matter
shows its keys.`,
		Example: `  mdpatch inspect README.md
  mdpatch inspect docs/ --format json`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, globals, flags, args)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "F", inspectFormatText, "output format: text, json")
	cmd.Flags().BoolVar(&flags.follow, "follow-symlinks", false, "descend into symlinked directories")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns to skip")

	return cmd
}

func runInspect(cmd *cobra.Command, globals *globalFlags, flags *inspectFlags, args []string) error {
	if flags.format != inspectFormatText && flags.format != inspectFormatJSON {
		return fmt.Errorf("invalid format %q: must be text or json", flags.format)
	}

	overrides := &configloader.Overrides{Ignore: flags.ignore}
	if cmd.Flags().Changed("color") {
		color := config.ColorMode(globals.color)
		overrides.Color = &color
	}

	cfg, err := loadConfig(cmd, globals, overrides)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	logger := logging.FromContext(ctx)

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	files, err := runner.Discover(ctx, runner.DiscoverOptions{
		Paths:          args,
		WorkingDir:     workDir,
		ExcludeGlobs:   cfg.Ignore,
		FollowSymlinks: flags.follow,
	})
	if err != nil {
		return fmt.Errorf("discover files: %w", err)
	}

	inspector := goldmarkparser.New(string(cfg.Flavor))
	outlines := make([]*outline, 0, len(files))

	for _, file := range files {
		content, _, err := fsutil.ReadFileFS(ctx, fsutil.OSFS{}, file)
		if err != nil {
			return err
		}

		o, err := buildOutline(ctx, relativePath(file, workDir), content, inspector)
		if err != nil {
			return err
		}
		outlines = append(outlines, o)
		logger.Debug("inspected", logging.FieldFile, file, "sections", len(o.Sections))
	}

	out := cmd.OutOrStdout()
	if flags.format == inspectFormatJSON {
		return writeOutlinesJSON(out, outlines)
	}

	styles := pretty.NewStyles(pretty.IsColorEnabled(string(cfg.Color), out))
	return writeOutlinesText(out, outlines, styles, pretty.TerminalWidth(out))
}

func relativePath(file, workDir string) string {
	rel, err := filepath.Rel(workDir, file)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(file)
	}
	return filepath.ToSlash(rel)
}

func writeOutlinesJSON(w io.Writer, outlines []*outline) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(outlines); err != nil {
		return fmt.Errorf("encode outline: %w", err)
	}
	return nil
}

func writeOutlinesText(w io.Writer, outlines []*outline, styles *pretty.Styles, width int) error {
	bw := bufio.NewWriter(w)

	for i, o := range outlines {
		if i > 0 {
			fmt.Fprintln(bw)
		}

		fmt.Fprintln(bw, styles.FilePath.Render(o.File))
		if len(o.FrontMatter) > 0 {
			fmt.Fprintf(bw, "  %s %s\n", styles.Dim.Render("front matter:"), strings.Join(o.FrontMatter, ", "))
		}

		for _, s := range o.Sections {
			writeSection(bw, s, styles, width)
		}

		for _, warning := range o.Warnings {
			fmt.Fprintf(bw, "%s %s\n", styles.Warning.Render("warning:"), warning)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write outline: %w", err)
	}
	return nil
}

func writeSection(w io.Writer, s outlineSection, styles *pretty.Styles, width int) {
	indent := strings.Repeat("  ", s.Depth)

	if len(s.Path) == 0 {
		fmt.Fprintf(w, "%s%s\n", indent, styles.Dim.Render("(before first heading)"))
	} else {
		heading := s.Path[len(s.Path)-1]
		fmt.Fprintf(w, "%s%s %s %s\n", indent, styles.TreeHeading.Render(heading),
			styles.TreeRange.Render(fmt.Sprintf("L%d", s.Line)), styles.Dim.Render("#"+s.Anchor))
	}

	for _, blk := range s.Blocks {
		prefix := fmt.Sprintf("%s%s %s %s ", indent,
			styles.TreeBranch.Render("├"),
			styles.TreeIndex.Render(fmt.Sprintf("[%d]", blk.Index)),
			styles.TreeKind.Render(blk.Kind))
		if blk.Language != "" {
			prefix += styles.TreeLanguage.Render(blk.Language) + " "
		}

		ranges := fmt.Sprintf("L%d-%d bytes %d:%d", blk.StartLine, blk.EndLine, blk.Start, blk.End)
		line := prefix + styles.TreeRange.Render(ranges)

		// Previews fill what is left of the terminal width.
		used := len(indent) + len(blk.Kind) + len(blk.Language) + len(ranges) + 12
		if preview := truncate(blk.Preview, width-used); preview != "" {
			line += "  " + styles.Dim.Render(preview)
		}
		fmt.Fprintln(w, line)
	}
}

// truncate shortens s to at most limit runes, marking the cut.
func truncate(s string, limit int) string {
	const minPreview = 8
	if limit < minPreview {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
