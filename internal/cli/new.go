package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/dxfio/internal/document"
	"github.com/roach88/dxfio/internal/dxfver"
)

// NewOptions holds flags for the new command.
type NewOptions struct {
	*RootOptions
	Version string
}

// NewResult describes a created drawing.
type NewResult struct {
	Output  string   `json:"output"`
	Version string   `json:"version"`
	Release string   `json:"release"`
	Layouts []string `json:"layouts"`
}

// WriteText prints a one-line summary.
func (r NewResult) WriteText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Created %s (%s)\n", r.Output, r.Release)
	return err
}

// NewNewCommand creates the new command.
func NewNewCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NewOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "new <output>",
		Short: "Write an empty drawing",
		Long: `Create a drawing with the mandatory table entries, the model space and
one paper space layout.

Example:
  dxfio new --version R2000 empty.dxf`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNew(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Version, "version", "", "format version (default: options file or R2013)")

	return cmd
}

func runNew(opts *NewOptions, output string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	docOpts, err := opts.options()
	if err != nil {
		return commandError(formatter, err)
	}
	if opts.Version != "" {
		if _, err := dxfver.Validate(opts.Version); err != nil {
			return commandError(formatter, &LoadError{Code: ErrCodeVersion, Path: output, Message: "invalid --version", Err: err})
		}
		docOpts.DefaultVersion = opts.Version
	}

	d := document.New(docOpts)
	if err := save(d, output, ""); err != nil {
		return commandError(formatter, err)
	}
	formatter.VerboseLog("Wrote %s", d)

	return formatter.Success(NewResult{
		Output:  output,
		Version: string(d.Version()),
		Release: d.Version().Release(),
		Layouts: d.LayoutNamesInTabOrder(),
	})
}
