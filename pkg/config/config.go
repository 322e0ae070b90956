// Package config holds the handful of ambient toggles the compiler
// driver exposes, in the same feature-registry shape the teacher uses
// for its much larger B/Bx dialect matrix, scaled down to what a
// language this small actually needs to make configurable.
package config

import "strings"

// Feature is a small, named on/off toggle settable from the CLI with
// -f<name> / -fno-<name>, mirroring the teacher's -F flag convention.
type Feature int

const (
	// FeatTruncateParams reproduces the documented quirk of silently
	// dropping parameters beyond MaxRegisterParams instead of erroring.
	// Disabling it with -fno-truncate-params makes code generation fail
	// instead.
	FeatTruncateParams Feature = iota
	featCount
)

var featureNames = map[Feature]string{
	FeatTruncateParams: "truncate-params",
}

// ColorMode controls whether diagnostics printed by pkg/util use ANSI
// color.
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

// Config is the full set of ambient toggles threaded from the CLI driver
// down into the pipeline and into pkg/util's diagnostic printer.
type Config struct {
	features map[Feature]bool

	// TabWidth is how many columns a '\t' advances in the lexer's
	// indentation measurement. Default 4, per the lexer's "tab counts as
	// 4 spaces" rule.
	TabWidth int

	// MaxRegisterParams is how many leading parameters a function may
	// pass in registers before FeatTruncateParams decides what happens
	// to the rest. Default 6, the System V integer-argument register
	// count.
	MaxRegisterParams int

	ColorDiagnostics ColorMode

	Verbose bool
	DumpAST bool
	DumpIR  bool
}

// New returns a Config with every default the compiler ships with when
// the CLI passes no flags at all.
func New() *Config {
	return &Config{
		features:          map[Feature]bool{FeatTruncateParams: true},
		TabWidth:          4,
		MaxRegisterParams: 6,
		ColorDiagnostics:  ColorAuto,
	}
}

func (c *Config) SetFeature(f Feature, enabled bool) { c.features[f] = enabled }

func (c *Config) IsFeatureEnabled(f Feature) bool { return c.features[f] }

// ApplyFlag parses a single -f<name>/-fno-<name> argument, returning
// false if name doesn't match a known feature.
func (c *Config) ApplyFlag(flag string) bool {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(flag, "-"), "f")
	enable := true
	if strings.HasPrefix(trimmed, "no-") {
		enable = false
		trimmed = strings.TrimPrefix(trimmed, "no-")
	}
	for f, name := range featureNames {
		if name == trimmed {
			c.SetFeature(f, enable)
			return true
		}
	}
	return false
}
