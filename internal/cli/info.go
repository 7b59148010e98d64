package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/dxfio/internal/document"
)

// InfoResult summarizes a loaded document.
type InfoResult struct {
	Path           string   `json:"path"`
	Version        string   `json:"version"`
	Release        string   `json:"release"`
	LoadedVersion  string   `json:"loaded_version"`
	Encoding       string   `json:"encoding"`
	Entities       int      `json:"entities"`
	Layouts        []string `json:"layouts"`
	ActiveLayout   string   `json:"active_layout,omitempty"`
	Blocks         int      `json:"blocks"`
	Layers         []string `json:"layers"`
	StoredSections []string `json:"stored_sections,omitempty"`
	Compatible     bool     `json:"compatible"`
	Warnings       []string `json:"warnings,omitempty"`
}

// WriteText renders the summary for humans.
func (r InfoResult) WriteText(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "File:       %s\n", r.Path)
	fmt.Fprintf(&b, "Version:    %s (%s)", r.Release, r.Version)
	if r.LoadedVersion != r.Version {
		fmt.Fprintf(&b, ", upgraded from %s", r.LoadedVersion)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Encoding:   %s\n", r.Encoding)
	fmt.Fprintf(&b, "Entities:   %d\n", r.Entities)
	fmt.Fprintf(&b, "Layouts:    %s\n", strings.Join(r.Layouts, ", "))
	if r.ActiveLayout != "" {
		fmt.Fprintf(&b, "Active:     %s\n", r.ActiveLayout)
	}
	fmt.Fprintf(&b, "Blocks:     %d\n", r.Blocks)
	fmt.Fprintf(&b, "Layers:     %s\n", strings.Join(r.Layers, ", "))
	if len(r.StoredSections) > 0 {
		fmt.Fprintf(&b, "Sections:   %s\n", strings.Join(r.StoredSections, ", "))
	}
	if r.Compatible {
		b.WriteString("Compatible: yes\n")
	} else {
		fmt.Fprintf(&b, "Compatible: no (%d warnings)\n", len(r.Warnings))
		for _, warning := range r.Warnings {
			fmt.Fprintf(&b, "  - %s\n", warning)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// NewInfoCommand creates the info command.
func NewInfoCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <file>",
		Short: "Show version, encoding and contents of a drawing",
		Long: `Load a drawing and summarize it: format version (and the version
recorded in the file if it had to be upgraded), text encoding, layouts,
blocks, layers and the compatibility warnings recorded while loading.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runInfo(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	d, err := loadForCommand(opts, path)
	if err != nil {
		return commandError(formatter, err)
	}
	formatter.VerboseLog("Loaded %s", d)

	return formatter.Success(describe(path, d))
}

func describe(path string, d *document.Document) InfoResult {
	r := InfoResult{
		Path:           path,
		Version:        string(d.Version()),
		Release:        d.Version().Release(),
		LoadedVersion:  string(d.LoadedVersion()),
		Encoding:       d.Encoding(),
		Entities:       d.Len(),
		Layouts:        d.LayoutNamesInTabOrder(),
		Blocks:         d.Blocks().Len(),
		Layers:         d.Tables().Layers().Names(),
		StoredSections: d.StoredSections(),
		Compatible:     d.IsCompatible(),
		Warnings:       d.Warnings(),
	}
	if l := d.ActiveLayout(); l != nil {
		r.ActiveLayout = l.Name()
	}
	return r
}
