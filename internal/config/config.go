// Package config holds the compiler options shared by every typing
// context. Options come from cinder.yaml and may be overridden by CLI
// flags.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Version is the current Cinder version.
// Set at build time via -ldflags or by writing to this file.
var Version = "0.3.1"

// MacroBackend is the backend macro contexts compile against.
const MacroBackend = "eval"

// Backends recognized by the typer. Backend choice affects nullable
// lifting, optional-argument trimming and accessor prefixing.
var Backends = []string{"js", "flash", "flash9", "as3", "cpp", MacroBackend}

// Options is the cinder.yaml shape.
type Options struct {
	// Backend selects the target platform.
	Backend string `yaml:"backend"`

	// Defines are the -D style conditional flags.
	Defines map[string]string `yaml:"defines,omitempty"`

	// NoInline disables inline expansion; inline methods degrade to
	// regular calls.
	NoInline bool `yaml:"no_inline,omitempty"`

	// NoTraces replaces trace(x) calls with null.
	NoTraces bool `yaml:"no_traces,omitempty"`

	// Main is the class whose static main drives reachability.
	Main string `yaml:"main,omitempty"`

	// Excludes lists type paths marked extern during generation.
	Excludes []string `yaml:"excludes,omitempty"`
}

// Default returns the options used when no cinder.yaml is present.
func Default() *Options {
	return &Options{Backend: "js", Defines: map[string]string{}}
}

// Load reads and validates a cinder.yaml.
func Load(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	o := Default()
	if err := yaml.Unmarshal(data, o); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if !validBackend(o.Backend) {
		return nil, fmt.Errorf("%s: unknown backend %q", path, o.Backend)
	}
	return o, nil
}

func validBackend(name string) bool {
	for _, b := range Backends {
		if b == name {
			return true
		}
	}
	return false
}

// Defined reports whether a conditional flag is set.
func (o *Options) Defined(name string) bool {
	_, ok := o.Defines[name]
	return ok
}

// ValueBackend reports whether the backend has value-typed basics, where
// Null(T) lifts to Nullable rather than T itself.
func (o *Options) ValueBackend() bool {
	return o.Backend == "flash9" || o.Backend == "cpp"
}

// TrimNullArgs reports whether trailing optional null arguments must be
// dropped from emitted calls.
func (o *Options) TrimNullArgs() bool {
	return o.Backend == "flash" || o.Backend == "flash9"
}

// AccessorPrefix is the backend prefix that disambiguates the raw slot of
// a property inside its own accessor.
func (o *Options) AccessorPrefix() string {
	if o.Backend == "flash9" {
		return "$"
	}
	return ""
}

// ForMacro derives the sibling options a macro context runs under:
// bytecode backend, platform defines cleared, macro flag set.
func (o *Options) ForMacro() *Options {
	return &Options{
		Backend:  MacroBackend,
		Defines:  map[string]string{"macro": "1"},
		NoInline: o.NoInline,
		NoTraces: o.NoTraces,
	}
}
