package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// ValidateVoice reports an [ErrCodeInvalidVoice] error when voice is outside
// [0, limit).
func ValidateVoice(voice, limit int) error {
	if voice < 0 || voice >= limit {
		return New(ErrCodeInvalidVoice, "voice %d out of range [0,%d)", voice, limit)
	}
	return nil
}

// ValidateText validates free annotation text (labels, dynamics, tempo marks).
//
// The rules are conservative:
//   - No empty text
//   - No control characters
//   - Maximum length of 128 characters
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return New(ErrCodeInvalidInput, "text cannot be empty")
	}
	if len(text) > 128 {
		return New(ErrCodeInvalidInput, "text too long (max 128 characters)")
	}
	for _, r := range text {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "text contains invalid control characters")
		}
	}
	return nil
}

// scoreExtensions lists the file extensions accepted for score descriptions.
var scoreExtensions = map[string]bool{
	".toml": true,
	".yaml": true,
	".yml":  true,
}

// ValidateScorePath validates a score description path.
// It requires a known extension and rejects null bytes.
func ValidateScorePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "score path cannot be empty")
	}
	if strings.ContainsRune(path, '\x00') {
		return New(ErrCodeInvalidInput, "score path contains invalid characters")
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !scoreExtensions[ext] {
		return New(ErrCodeInvalidScoreFile, "unsupported score file extension %q (want .toml, .yaml or .yml)", ext)
	}
	return nil
}
