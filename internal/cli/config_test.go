package cli

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/staffline/pkg/errors"
	"github.com/matzehuels/staffline/pkg/pipeline"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, configName)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadConfig(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[render]
width = 1000.0
lines = "treble+tab"
formats = ["svg", "pdf"]
midi_program = 24

[play]
midi_out = "FluidSynth"
plain = true
`)

	cfg, err := readConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, cfg.Render.Width)
	assert.Equal(t, "treble+tab", cfg.Render.Lines)
	assert.Equal(t, []string{"svg", "pdf"}, cfg.Render.Formats)
	assert.Equal(t, uint8(24), cfg.Render.MIDIProgram)
	assert.Equal(t, "FluidSynth", cfg.Play.MIDIOut)
	assert.True(t, cfg.Play.Plain)
}

func TestReadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    errors.Code
	}{
		{"unknown key", "[render]\nwidht = 1000\n", errors.ErrCodeInvalidInput},
		{"path not configurable", "[render]\npath = \"song.toml\"\n", errors.ErrCodeInvalidInput},
		{"bad syntax", "[render\n", errors.ErrCodeInvalidInput},
		{"bad format", "[render]\nformats = [\"gif\"]\n", errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.content)
			_, err := readConfig(path)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("explicit path missing", func(t *testing.T) {
		c := New(io.Discard, LogInfo)
		c.configPath = filepath.Join(t.TempDir(), "missing.toml")
		err := c.loadConfig()
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
	})

	t.Run("user config dir", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", home)
		writeConfig(t, filepath.Join(home, appName), "[render]\nunit = 6.0\n")

		c := New(io.Discard, LogInfo)
		require.NoError(t, c.loadConfig())
		assert.Equal(t, 6.0, c.Config.Render.Unit)
	})

	t.Run("no config", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())

		c := New(io.Discard, LogInfo)
		require.NoError(t, c.loadConfig())
		assert.Equal(t, Config{}, c.Config)
	})
}

func TestMergeOptions(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.Config.Render = pipeline.Options{Width: 1000, Lines: "bass", Formats: []string{"pdf"}}

	var flags pipeline.Options
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().Float64Var(&flags.Width, "width", pipeline.DefaultWidth, "")
	cmd.Flags().StringVar(&flags.Lines, "lines", "", "")
	cmd.Flags().BoolVar(&flags.Refresh, "refresh", false, "")
	require.NoError(t, cmd.ParseFlags([]string{"--width", "1200", "--refresh"}))

	opts := c.mergeOptions(cmd, flags)
	assert.Equal(t, 1200.0, opts.Width, "flag set explicitly wins")
	assert.Equal(t, "bass", opts.Lines, "unset flag keeps the config value")
	assert.Equal(t, []string{"pdf"}, opts.Formats)
	assert.True(t, opts.Refresh)
	assert.Same(t, c.Logger, opts.Logger)

	opts.Formats[0] = "svg"
	assert.Equal(t, "pdf", c.Config.Render.Formats[0], "merged options do not alias the config")
}
