package config

import (
	"os"
	"strconv"
	"strings"
)

// Form is the text-valued input a front end collects. Empty fields keep the
// value of the base Config.
type Form struct {
	Quality string
	Width   string
	Height  string
	Workers string
}

// Environment variables read by FromEnv.
const (
	EnvQuality = "NEFCONV_QUALITY"
	EnvWidth   = "NEFCONV_WIDTH"
	EnvHeight  = "NEFCONV_HEIGHT"
	EnvWorkers = "NEFCONV_WORKERS"
)

// Apply parses the numeric fields of f over base. A non-numeric field yields
// an *Error naming it.
func (f Form) Apply(base Config) (Config, error) {
	out := base.Clone()
	fields := []struct {
		name string
		raw  string
		dst  *int
	}{
		{"quality", f.Quality, &out.Quality},
		{"width", f.Width, &out.Width},
		{"height", f.Height, &out.Height},
		{"worker count", f.Workers, &out.Workers},
	}
	for _, field := range fields {
		raw := strings.TrimSpace(field.raw)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return base, &Error{Field: field.name, Value: field.raw, Reason: "must be an integer"}
		}
		*field.dst = n
	}
	return out, nil
}

// FromEnv applies NEFCONV_* environment overrides to base.
func FromEnv(base Config) (Config, error) {
	return Form{
		Quality: os.Getenv(EnvQuality),
		Width:   os.Getenv(EnvWidth),
		Height:  os.Getenv(EnvHeight),
		Workers: os.Getenv(EnvWorkers),
	}.Apply(base)
}
