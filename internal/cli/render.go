package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/staffline/pkg/pipeline"
)

// renderCommand creates the render command for engraving score files.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags   pipeline.Options
		formats string
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "render [score]",
		Short: "Engrave a score as SVG, PNG, PDF or JSON",
		Long: `Engrave a TOML or YAML score file.

Several formats can be written at once; each lands next to the score (or at
--output) with its own extension. The "mid" format exports the playback
sequence as MIDI.`,
		Example: `  staffline render song.toml
  staffline render song.yaml -f svg,pdf -o out/song
  staffline render song.toml --width 1200 --lines treble+tab --interactive`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.mergeOptions(cmd, flags)
			opts.Path = args[0]
			if cmd.Flags().Changed("format") {
				opts.Formats = parseFormats(formats)
			}
			return c.runRender(cmd.Context(), opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&formats, "format", "f", "", "output formats, comma-separated: svg, png, pdf, json, mid (default svg)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file or base path (default: next to the score)")
	cmd.Flags().Float64Var(&flags.Width, "width", pipeline.DefaultWidth, "row width in pixels")
	cmd.Flags().Float64Var(&flags.Unit, "unit", pipeline.DefaultUnit, "staff space in pixels")
	cmd.Flags().StringVar(&flags.Lines, "lines", "", "notation lines preset overriding the file (treble, bass, grand, tab, treble+tab)")
	cmd.Flags().StringVar(&flags.Background, "background", "", "background color (default white for png and pdf)")
	cmd.Flags().BoolVar(&flags.Interactive, "interactive", false, "emit hit regions for selection (svg, json)")
	cmd.Flags().Float64Var(&flags.Scale, "scale", pipeline.DefaultScale, "pixel density for png")
	cmd.Flags().Uint8Var(&flags.MIDIChannel, "channel", 0, "MIDI channel 0-15 for mid output")
	cmd.Flags().Uint8Var(&flags.MIDIProgram, "program", 0, "General MIDI program 0-127 for mid output")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flags.Refresh, "refresh", false, "ignore cached outputs and render again")

	return cmd
}

// mergeOptions starts from the [render] table of the config and applies
// every flag the user set explicitly.
func (c *CLI) mergeOptions(cmd *cobra.Command, flags pipeline.Options) pipeline.Options {
	opts := c.Config.Render
	opts.Formats = append([]string(nil), opts.Formats...)
	f := cmd.Flags()
	if f.Changed("width") {
		opts.Width = flags.Width
	}
	if f.Changed("unit") {
		opts.Unit = flags.Unit
	}
	if f.Changed("lines") {
		opts.Lines = flags.Lines
	}
	if f.Changed("background") {
		opts.Background = flags.Background
	}
	if f.Changed("interactive") {
		opts.Interactive = flags.Interactive
	}
	if f.Changed("scale") {
		opts.Scale = flags.Scale
	}
	if f.Changed("channel") {
		opts.MIDIChannel = flags.MIDIChannel
	}
	if f.Changed("program") {
		opts.MIDIProgram = flags.MIDIProgram
	}
	if f.Changed("detailed") {
		opts.GraphDetailed = flags.GraphDetailed
	}
	opts.Refresh = flags.Refresh
	opts.Logger = c.Logger
	return opts
}

func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	sp := newSpinner(ctx, os.Stderr, "Rendering "+filepath.Base(opts.Path)+"...")
	sp.Start()
	result, err := runner.Execute(ctx, opts)
	sp.Stop()
	if err != nil {
		return err
	}

	paths, err := writeArtifacts(result.Artifacts, opts.Formats, output, opts.Path)
	if err != nil {
		return err
	}
	prog.done("render complete", "formats", len(paths))

	cached := result.CacheInfo.RenderHit || len(opts.LayoutFormats()) == 0
	if opts.WantsMIDI() {
		cached = cached && result.CacheInfo.MIDIHit
	}
	printSuccess("Rendered %s", StyleHighlight.Render(filepath.Base(opts.Path)))
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats, cached)
	if !cached {
		printNextStep("Listen", appName+" play "+opts.Path)
	}
	return nil
}

// writeArtifacts writes one file per format in the order requested and
// returns the paths.
func writeArtifacts(artifacts map[string][]byte, formats []string, output, input string) ([]string, error) {
	var paths []string
	for _, f := range formats {
		data, ok := artifacts[f]
		if !ok {
			continue
		}
		path := outputPath(output, input, f, len(formats) == 1)
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create output dir: %w", err)
			}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
