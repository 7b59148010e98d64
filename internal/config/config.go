// Package config holds the per-run options of the reader and writer.
//
// Options are constructed once (defaults, optionally overlaid by a YAML
// file) and passed by value into document.New and document.Read. Nothing
// in this module keeps mutable package-level settings.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/dxfio/internal/codepage"
	"github.com/roach88/dxfio/internal/dxfver"
)

// Options configures loading and saving.
type Options struct {
	// LegacyMode enables the repair filters for quirks of old R12
	// exporters: coordinate reordering and invalid point code removal.
	LegacyMode bool `yaml:"legacy_mode"`

	// FilterInvalidXDataGroupCodes drops orphaned y/z codes of extended
	// data points even outside legacy mode.
	FilterInvalidXDataGroupCodes bool `yaml:"filter_invalid_xdata_group_codes"`

	// TextStyleFont is the font file of the default "Standard" text style.
	TextStyleFont string `yaml:"text_style_font"`

	// DefaultVersion is the format generation of new documents, as a
	// release name ("R2013") or $ACADVER value.
	DefaultVersion string `yaml:"default_version"`

	// Encoding overrides the text encoding on save. Empty selects UTF-8
	// for R2007+ and the document code page otherwise.
	Encoding string `yaml:"encoding,omitempty"`
}

// Default returns the built-in options.
func Default() Options {
	return Options{
		TextStyleFont:  "txt",
		DefaultVersion: dxfver.Default.Release(),
	}
}

// Load reads options from a YAML file. Missing fields keep their
// defaults; unknown fields are rejected.
func Load(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML options over Default.
func Parse(data []byte) (Options, error) {
	opts := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		return Options{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, fmt.Errorf("invalid config: %w", err)
	}
	return opts, nil
}

// Validate checks field values.
func (o Options) Validate() error {
	if _, err := dxfver.Validate(o.DefaultVersion); err != nil {
		return fmt.Errorf("default_version: %w", err)
	}
	if o.TextStyleFont == "" {
		return fmt.Errorf("text_style_font is required")
	}
	if o.Encoding != "" {
		if _, err := codepage.Lookup(o.Encoding); err != nil {
			return fmt.Errorf("encoding: %w", err)
		}
	}
	return nil
}

// Version returns DefaultVersion resolved, falling back to
// dxfver.Default when it is invalid.
func (o Options) Version() dxfver.Version {
	v, err := dxfver.Validate(o.DefaultVersion)
	if err != nil {
		return dxfver.Default
	}
	return v
}
