// Package config holds the run configuration: defaults, environment
// overrides, and validation. A Config is validated before any worker starts
// and treated as read-only for the rest of the run.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Encoder quality bounds accepted by image/jpeg.
const (
	MinQuality = 1
	MaxQuality = 100
)

// Config is the immutable description of one conversion run.
type Config struct {
	// Paths (set from positional args).
	InputDir  string
	OutputDir string

	// Output encoding.
	Quality int  // Default: 85.
	Resize  bool // Resize to exactly Width x Height before encoding.
	Width   int  // Default: 800.
	Height  int  // Default: 600.

	// Pool size.
	Workers int // Default: 4.

	// Preview bounding box. Default: 500x500.
	PreviewWidth  int
	PreviewHeight int

	// Source extensions, lowercase with leading dot. Default: [".nef"].
	Extensions []string
}

// Default returns a Config with the stock settings. Paths are left empty.
func Default() Config {
	return Config{
		Quality:       85,
		Width:         800,
		Height:        600,
		Workers:       4,
		PreviewWidth:  500,
		PreviewHeight: 500,
		Extensions:    []string{".nef"},
	}
}

// Error reports a configuration field that cannot be used for a run.
type Error struct {
	Field  string
	Value  string
	Reason string
}

func (e *Error) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// Validate checks every field. Width and Height are checked even when Resize
// is off so a bad value never waits for the next run to surface.
func (c Config) Validate() error {
	if strings.TrimSpace(c.InputDir) == "" {
		return &Error{Field: "input directory", Reason: "must not be empty"}
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return &Error{Field: "output directory", Reason: "must not be empty"}
	}
	if c.Quality < MinQuality || c.Quality > MaxQuality {
		return &Error{Field: "quality", Value: fmt.Sprint(c.Quality), Reason: fmt.Sprintf("must be between %d and %d", MinQuality, MaxQuality)}
	}
	for _, f := range []struct {
		name  string
		value int
	}{
		{"width", c.Width},
		{"height", c.Height},
		{"worker count", c.Workers},
		{"preview width", c.PreviewWidth},
		{"preview height", c.PreviewHeight},
	} {
		if f.value <= 0 {
			return &Error{Field: f.name, Value: fmt.Sprint(f.value), Reason: "must be positive"}
		}
	}
	if len(c.Extensions) == 0 {
		return &Error{Field: "extensions", Reason: "at least one extension is required"}
	}
	for _, ext := range c.Extensions {
		if NormalizeExt(ext) == "." {
			return &Error{Field: "extensions", Value: ext, Reason: "empty extension"}
		}
	}
	return nil
}

// ValidatePaths rejects an output directory equal to the input directory.
// Both arguments should be absolute.
func (c Config) ValidatePaths(inputAbs, outputAbs string) error {
	if filepath.Clean(inputAbs) == filepath.Clean(outputAbs) {
		return &Error{Field: "output directory", Value: outputAbs, Reason: "must differ from the input directory"}
	}
	return nil
}

// Clone returns a deep copy so callers can keep mutating their own value.
func (c Config) Clone() Config {
	out := c
	out.Extensions = append([]string(nil), c.Extensions...)
	return out
}

// SourceLabel names the source files in status messages: the upper-cased
// extension when exactly one is configured ("NEF"), "raw" otherwise.
func (c Config) SourceLabel() string {
	if len(c.Extensions) != 1 {
		return "raw"
	}
	return strings.ToUpper(strings.TrimPrefix(NormalizeExt(c.Extensions[0]), "."))
}

// NormalizeExt lowercases ext and ensures a leading dot.
func NormalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
