package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/staffline/pkg/errors"
	"github.com/matzehuels/staffline/pkg/pipeline"
)

// Config is the content of staffline.toml.
//
//	[render]
//	width   = 1000
//	formats = ["svg", "pdf"]
//	lines   = "treble+tab"
//
//	[play]
//	midi_out = "FluidSynth"
//
// Flags given on the command line take precedence over the file.
type Config struct {
	Render pipeline.Options `toml:"render"`
	Play   PlayConfig       `toml:"play"`
}

// PlayConfig holds defaults for the play command.
type PlayConfig struct {
	// MIDIOut names a MIDI output port that receives the performance.
	MIDIOut string `toml:"midi_out"`
	// Plain prints steps instead of starting the interactive player.
	Plain bool `toml:"plain"`
}

// loadConfig reads the configuration into c.Config. An explicit --config
// path must exist; otherwise ./staffline.toml and then the user config
// directory are tried, and a missing file is not an error.
func (c *CLI) loadConfig() error {
	path := c.configPath
	if path == "" {
		path = findConfig()
		if path == "" {
			return nil
		}
	}
	cfg, err := readConfig(path)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "path", path)
	return nil
}

// findConfig returns the first existing default config path, or "".
func findConfig() string {
	candidates := []string{configName}
	if dir, err := configDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, configName))
	}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// readConfig decodes the file at path. Unknown keys are rejected so typos
// do not silently fall back to defaults.
func readConfig(path string) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidInput,
			"config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	for _, f := range cfg.Render.Formats {
		if err := pipeline.ValidateFormat(f); err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "config %s", path)
		}
	}
	return cfg, nil
}
