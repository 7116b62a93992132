package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/staffline/pkg/pipeline"
	"github.com/matzehuels/staffline/pkg/playback"
	"github.com/matzehuels/staffline/pkg/score"
	"github.com/matzehuels/staffline/pkg/theory"
)

// playCommand creates the play command.
func (c *CLI) playCommand() *cobra.Command {
	var (
		flags   pipeline.Options
		midiOut string
		plain   bool
	)

	cmd := &cobra.Command{
		Use:   "play [score]",
		Short: "Play a score in an interactive player",
		Long: `Play a score with repeats, endings, jumps, tempo changes and dynamics
resolved. The player shows the current measure, pass and sounding notes;
space pauses and resumes, s stops and rewinds.

Tones go to a MIDI output port with --midi-out when staffline was built
with -tags rtmidi.`,
		Example: `  staffline play song.toml
  staffline play song.toml --midi-out FluidSynth
  staffline play song.toml --plain`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.mergeOptions(cmd, flags)
			opts.Path = args[0]
			play := c.Config.Play
			if cmd.Flags().Changed("midi-out") {
				play.MIDIOut = midiOut
			}
			if cmd.Flags().Changed("plain") {
				play.Plain = plain
			}
			return c.runPlay(cmd.Context(), opts, play)
		},
	}

	cmd.Flags().StringVar(&midiOut, "midi-out", "", "MIDI output port to send tones to")
	cmd.Flags().Uint8Var(&flags.MIDIChannel, "channel", 0, "MIDI channel 0-15 for --midi-out")
	cmd.Flags().StringVar(&flags.Lines, "lines", "", "notation lines preset overriding the file")
	cmd.Flags().BoolVar(&plain, "plain", false, "print steps instead of the interactive player")

	return cmd
}

func (c *CLI) runPlay(ctx context.Context, opts pipeline.Options, cfg PlayConfig) error {
	runner := pipeline.NewRunner(nil, nil, c.Logger)
	src, err := runner.Load(ctx, opts)
	if err != nil {
		return err
	}
	perf, err := runner.Perform(ctx, src.Document)
	if err != nil {
		return err
	}
	if len(perf.Steps) == 0 {
		printWarning("Nothing to play in %s", opts.Path)
		return nil
	}

	var sinks []playback.Tone
	if cfg.MIDIOut != "" {
		out, err := openMIDIOut(cfg.MIDIOut, opts.MIDIChannel)
		if err != nil {
			return err
		}
		defer out.Close()
		sinks = append(sinks, out)
	}

	title := src.Document.Title
	if title == "" {
		title = filepath.Base(opts.Path)
	}
	if cfg.Plain {
		return c.playPlain(ctx, title, src.Document, perf, sinks)
	}
	return c.playInteractive(ctx, title, src, perf, sinks)
}

func (c *CLI) playInteractive(ctx context.Context, title string, src *pipeline.Source, perf *playback.Performance, sinks []playback.Tone) error {
	var prog *tea.Program
	tone := playback.ToneFunc(func(n theory.Note, sec, vol float64) {
		prog.Send(toneMsg{note: n.String()})
		for _, s := range sinks {
			s.Play(n, sec, vol)
		}
	})
	player := playback.NewPlayer(perf, tone,
		playback.WithLogger(c.Logger),
		playback.WithStepHook(func(i int) { prog.Send(stepMsg(i)) }))

	prog = tea.NewProgram(newPlayerModel(title, src.Document, perf, player), tea.WithContext(ctx))
	_, err := prog.Run()
	player.Stop()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// playPlain prints one line per step and returns when playback ends.
func (c *CLI) playPlain(ctx context.Context, title string, doc *score.Document, perf *playback.Performance, sinks []playback.Tone) error {
	done := make(chan struct{})
	var once sync.Once

	tone := playback.ToneFunc(func(n theory.Note, sec, vol float64) {
		for _, s := range sinks {
			s.Play(n, sec, vol)
		}
	})
	player := playback.NewPlayer(perf, tone,
		playback.WithLogger(c.Logger),
		playback.WithStepHook(func(i int) {
			if i < 0 {
				once.Do(func() { close(done) })
				return
			}
			writeLine(stepLine(doc, perf, i))
		}))

	printInfo("Playing %s (%s)", StyleHighlight.Render(title), formatClock(perf.Length))
	player.Play()
	select {
	case <-done:
	case <-ctx.Done():
		player.Stop()
		return ctx.Err()
	}
	printSuccess("Played %d steps", len(perf.Steps))
	return nil
}

func stepLine(doc *score.Document, perf *playback.Performance, i int) string {
	st := perf.Steps[i]
	var names []string
	for _, e := range perf.StepEvents(i) {
		names = append(names, e.Note.String())
	}
	measure := 0
	if m := doc.Measure(st.Measure); m != nil {
		measure = m.Index + 1
	}
	return fmt.Sprintf("  %s  %s  %s",
		StyleDim.Render(formatClock(st.Start)),
		StyleNumber.Render(fmt.Sprintf("m%d/%d", measure, st.Pass)),
		StyleValue.Render(strings.Join(names, " ")))
}
