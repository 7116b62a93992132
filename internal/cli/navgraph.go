package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/staffline/pkg/pipeline"
)

// navgraphCommand creates the navgraph command, which draws how playback
// moves between measures.
func (c *CLI) navgraphCommand() *cobra.Command {
	var (
		flags   pipeline.Options
		format  string
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "navgraph [score]",
		Short: "Draw the repeat and jump structure of a score",
		Long: `Draw the navigation of a score as a graph: one node per measure and one
edge per transition the player takes, labelled with the pass it happens on.

DOT output needs nothing else; svg, png and pdf are laid out with Graphviz.`,
		Example: `  staffline navgraph song.toml
  staffline navgraph song.toml -f svg --detailed -o song-nav.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateGraphFormat(format); err != nil {
				return err
			}
			opts := c.mergeOptions(cmd, flags)
			opts.Path = args[0]

			runner, err := c.newRunner(noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			data, err := runner.NavGraph(cmd.Context(), opts, format)
			if err != nil {
				return err
			}
			path := outputPath(output, opts.Path, format, true)
			if output == "" {
				path = basePath("", opts.Path) + ".nav." + format
			}
			if dir := filepath.Dir(path); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return err
				}
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return err
			}
			printSuccess("Navigation graph for %s", StyleHighlight.Render(filepath.Base(opts.Path)))
			printFile(path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", pipeline.GraphDOT, "output format: dot, svg, png, pdf")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <score>.nav.<format>)")
	cmd.Flags().BoolVar(&flags.GraphDetailed, "detailed", false, "label nodes with navigation marks and visit counts")
	cmd.Flags().Float64Var(&flags.Scale, "scale", pipeline.DefaultScale, "pixel density for png")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flags.Refresh, "refresh", false, "ignore the cached graph and draw again")

	return cmd
}
