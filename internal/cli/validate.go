package cli

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/dxfio/internal/audit"
)

// ValidationResult holds the pass/fail outcome of validate.
type ValidationResult struct {
	Path       string   `json:"path"`
	Valid      bool     `json:"valid"`
	Compatible bool     `json:"compatible"`
	Warnings   []string `json:"warnings,omitempty"`
	Report     string   `json:"report"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a drawing and report pass/fail",
		Long: `Load a drawing and audit it without repairing anything.

Pointers set to "0" are not counted. The command exits with status 1 if
any issue is found.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	d, err := loadForCommand(opts, path)
	if err != nil {
		return commandError(formatter, err)
	}

	var report bytes.Buffer
	valid, err := audit.Validate(d, &report)
	if err != nil {
		return commandError(formatter, err)
	}

	result := ValidationResult{
		Path:       path,
		Valid:      valid,
		Compatible: d.IsCompatible(),
		Warnings:   d.Warnings(),
		Report:     report.String(),
	}
	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		outputValidationText(formatter, result)
	}

	if !valid {
		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("%s: validation of %s failed", ErrCodeAuditIssues, path))
	}
	return nil
}

func outputValidationText(formatter *OutputFormatter, result ValidationResult) {
	if result.Valid {
		fmt.Fprintf(formatter.Writer, "✓ %s is valid\n", result.Path)
	} else {
		fmt.Fprintf(formatter.Writer, "✗ %s failed validation\n\n", result.Path)
		fmt.Fprint(formatter.Writer, result.Report)
	}
	if !result.Compatible {
		fmt.Fprintf(formatter.Writer, "%d compatibility warning(s):\n", len(result.Warnings))
		for _, w := range result.Warnings {
			fmt.Fprintf(formatter.Writer, "  %s\n", w)
		}
	}
}
