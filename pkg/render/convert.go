package render

import (
	"bytes"
	"os"
	"os/exec"
	"strconv"

	"github.com/matzehuels/staffline/pkg/errors"
)

// ConverterEnv names the environment variable that overrides the
// rsvg-convert binary.
const ConverterEnv = "STAFFLINE_RSVG_CONVERT"

const installHint = "install librsvg (brew install librsvg, apt install librsvg2-bin) or set " + ConverterEnv

// converter returns the rsvg-convert binary to run.
func converter() (string, error) {
	name := os.Getenv(ConverterEnv)
	if name == "" {
		name = "rsvg-convert"
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeUnsupported, err, "%s not found: %s", name, installHint)
	}
	return path, nil
}

// CanConvert reports whether PNG and PDF conversion is available.
func CanConvert() bool {
	_, err := converter()
	return err == nil
}

// ToPDF converts an SVG document to a single page PDF of the same size.
func ToPDF(svg []byte) ([]byte, error) {
	return convert(svg, "pdf")
}

// ToPNG rasterizes an SVG document; scale 2 doubles both dimensions.
func ToPNG(svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "png scale %v must be positive", scale)
	}
	return convert(svg, "png", "--zoom", strconv.FormatFloat(scale, 'f', 2, 64), "--keep-aspect-ratio")
}

func convert(svg []byte, format string, args ...string) ([]byte, error) {
	bin, err := converter()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnsupported, err, "%s export", format)
	}

	cmd := exec.Command(bin, append([]string{"--format", format}, args...)...)
	cmd.Stdin = bytes.NewReader(svg)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "%s export: %s", format, bytes.TrimSpace(stderr.Bytes()))
	}
	if out.Len() == 0 {
		return nil, errors.New(errors.ErrCodeInternal, "%s export produced no output", format)
	}
	return out.Bytes(), nil
}
