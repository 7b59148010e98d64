package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/dxfio/internal/audit"
)

// AuditOptions holds flags for the audit command.
type AuditOptions struct {
	*RootOptions
	Fix          bool
	Output       string
	ZeroPointers bool
}

// AuditResult holds the issues of one audit run.
type AuditResult struct {
	Path   string        `json:"path"`
	Passed bool          `json:"passed"`
	Issues []audit.Issue `json:"issues"`
	Output string        `json:"output,omitempty"`
}

// WriteText prints the numbered issue report.
func (r AuditResult) WriteText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Audit of %s\n\n", r.Path); err != nil {
		return err
	}
	if err := audit.WriteReport(w, r.Issues); err != nil {
		return err
	}
	if r.Output != "" {
		if _, err := fmt.Fprintf(w, "Fixed drawing written to %s\n", r.Output); err != nil {
			return err
		}
	}
	return nil
}

// unfixed counts the issues that are still present.
func (r AuditResult) unfixed() int {
	n := 0
	for _, i := range r.Issues {
		if !i.Fixed {
			n++
		}
	}
	return n
}

// NewAuditCommand creates the audit command.
func NewAuditCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AuditOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "audit <file>",
		Short: "Report dangling references and structural defects",
		Long: `Walk the entity graph of a drawing and report dangling pointers,
missing owners, undefined linetypes and styles, invalid names and
colors.

With --fix the safe defects are repaired in memory; use --output to
write the repaired drawing.

Example:
  dxfio audit plan.dxf
  dxfio audit --fix --output fixed.dxf plan.dxf`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Fix, "fix", false, "repair safe defects")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the repaired drawing to this path (requires --fix)")
	cmd.Flags().BoolVar(&opts.ZeroPointers, "zero-pointers", false, `also report pointers set to "0"`)

	return cmd
}

func runAudit(opts *AuditOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if opts.Output != "" && !opts.Fix {
		_ = formatter.Error(ErrCodeInvalidArgs, "--output requires --fix", nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("%s: --output requires --fix", ErrCodeInvalidArgs))
	}

	d, err := loadForCommand(opts.RootOptions, path)
	if err != nil {
		return commandError(formatter, err)
	}

	issues := audit.New(d, audit.WithFix(opts.Fix)).Run()
	if !opts.ZeroPointers {
		issues = audit.FilterZeroPointers(issues)
	}
	formatter.VerboseLog("Audit found %d issue(s) in %s", len(issues), path)

	result := AuditResult{Path: path, Issues: issues}
	if result.Issues == nil {
		result.Issues = []audit.Issue{}
	}
	result.Passed = result.unfixed() == 0

	if opts.Output != "" {
		if err := d.SaveAs(opts.Output, ""); err != nil {
			return commandError(formatter, &LoadError{Code: ErrCodeWriteFailed, Path: opts.Output, Message: "failed to write", Err: err})
		}
		result.Output = opts.Output
	}

	if err := formatter.Success(result); err != nil {
		return err
	}
	if !result.Passed {
		return NewExitError(ExitFailure, fmt.Sprintf("%s: audit found %d issue(s)", ErrCodeAuditIssues, result.unfixed()))
	}
	return nil
}
