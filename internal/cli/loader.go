package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/dxfio/internal/config"
	"github.com/roach88/dxfio/internal/document"
	"github.com/roach88/dxfio/internal/tags"
)

// Error codes for CLI responses.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeStructure   = "E002" // Malformed tag structure
	ErrCodeVersion     = "E003" // Unknown or unwritable format version
	ErrCodeLoadFailed  = "E004" // File could not be read or decoded
	ErrCodeNotFound    = "E005" // Path, layout or indexed document not found
	ErrCodeConfig      = "E006" // Invalid options file
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeIndexFailed = "E008" // Entity index error
	ErrCodeInvalidArgs = "E009" // Conflicting or invalid flags

	ErrCodeAuditIssues = "E101" // Audit found issues
)

// LoadError represents an error that occurred while loading a document
// or the options file.
type LoadError struct {
	Code    string
	Path    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Code, e.Path, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Path, e.Message)
}

func (e *LoadError) Unwrap() error { return e.Err }

// LoadDocument reads the document at path. Malformed files return a
// LoadError with ErrCodeStructure, missing files ErrCodeNotFound.
func LoadDocument(path string, opts config.Options) (*document.Document, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &LoadError{Code: ErrCodeNotFound, Path: path, Message: "file not found"}
		}
		return nil, &LoadError{Code: ErrCodeLoadFailed, Path: path, Message: "cannot access file", Err: err}
	}
	d, err := document.ReadFile(path, opts)
	if err != nil {
		code := ErrCodeLoadFailed
		if tags.IsStructureError(err) {
			code = ErrCodeStructure
		}
		return nil, &LoadError{Code: code, Path: path, Message: "failed to load", Err: err}
	}
	return d, nil
}

// loadForCommand resolves the options of the run and loads path.
func loadForCommand(rootOpts *RootOptions, path string) (*document.Document, error) {
	opts, err := rootOpts.options()
	if err != nil {
		return nil, err
	}
	return LoadDocument(path, opts)
}

// errorCode maps err to a CLI error code.
func errorCode(err error) string {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code
	}
	switch {
	case document.IsVersionError(err):
		return ErrCodeVersion
	case document.IsLayoutError(err):
		return ErrCodeNotFound
	}
	return ErrCodeGeneric
}

// commandError reports err through the formatter and returns it as a
// command-level exit error (exit code 2).
func commandError(formatter *OutputFormatter, err error) error {
	code := errorCode(err)
	_ = formatter.Error(code, err.Error(), nil)
	return WrapExitError(ExitCommandError, code, err)
}
