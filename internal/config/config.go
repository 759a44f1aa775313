// Package config holds constants shared across the analyzer, parser, and
// CLI driver.
package config

// SourceFileExt is the canonical extension for analyzer source files.
const SourceFileExt = ".vl"

// SourceFileExtensions lists every extension the CLI driver and the
// functional test harness treat as an analyzer input file.
var SourceFileExtensions = []string{SourceFileExt}

// IsTestMode is a test-mode switch; it defaults to false and nothing
// in the repository sets or reads it.
var IsTestMode = false

// Built-in names always pre-bound in scope 0, regardless of what the
// builtins preload loads.
const (
	NoneName  = "None"
	TrueName  = "True"
	FalseName = "False"
)

// DefaultBuiltinsPath is where `velac` looks for the YAML builtins
// description file when none is given on the command line.
const DefaultBuiltinsPath = "builtins.yaml"
