package scorefile

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/staffline/pkg/errors"
)

// Format is a score file syntax.
type Format string

const (
	TOML Format = "toml"
	YAML Format = "yaml"
)

// FormatOf infers the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return TOML, nil
	case ".yaml", ".yml":
		return YAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported score file extension %q (want .toml, .yaml or .yml)", filepath.Ext(path))
}

// Decode reads a score description. Unknown keys are rejected.
func Decode(r io.Reader, format Format) (*File, error) {
	var f File
	switch format {
	case TOML:
		md, err := toml.NewDecoder(r).Decode(&f)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidScoreFile, err, "decode TOML")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidScoreFile, "unknown key %q", undecoded[0].String())
		}
	case YAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && err != io.EOF {
			return nil, errors.Wrap(errors.ErrCodeInvalidScoreFile, err, "decode YAML")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported score format %q", format)
	}
	return &f, nil
}

// Load reads and decodes the score file at path, inferring the format from
// its extension.
func Load(path string) (*File, error) {
	if err := errors.ValidateScorePath(path); err != nil {
		return nil, err
	}
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "score file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidScoreFile, err, "read %s", path)
	}
	return Decode(bytes.NewReader(data), format)
}
