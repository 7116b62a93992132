package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/staffline/pkg/pipeline"
)

// midiCommand creates the midi command, a shortcut for render -f mid.
func (c *CLI) midiCommand() *cobra.Command {
	var (
		flags   pipeline.Options
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "midi [score]",
		Short: "Export the playback of a score as a MIDI file",
		Long: `Export the playback of a score as a standard MIDI file.

Repeats, endings and jumps are unfolded, and tempo changes, dynamics,
fermatas and articulations are applied the same way the player applies them.`,
		Example: `  staffline midi song.toml
  staffline midi song.toml --program 24 -o song-guitar.mid`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.mergeOptions(cmd, flags)
			opts.Path = args[0]
			opts.Formats = []string{pipeline.FormatMIDI}
			return c.runRender(cmd.Context(), opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: next to the score)")
	cmd.Flags().Uint8Var(&flags.MIDIChannel, "channel", 0, "MIDI channel 0-15")
	cmd.Flags().Uint8Var(&flags.MIDIProgram, "program", 0, "General MIDI program 0-127")
	cmd.Flags().StringVar(&flags.Lines, "lines", "", "notation lines preset overriding the file")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flags.Refresh, "refresh", false, "ignore the cached file and export again")

	return cmd
}
