package tags

import (
	"errors"
	"fmt"
)

// StructureError reports malformed input that cannot be recovered: invalid
// group codes, missing coordinates, unterminated sections.
type StructureError struct {
	// Line is the 1-based line number of the offending tag, 0 if unknown.
	Line int

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *StructureError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("structure error near line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("structure error: %s", e.Message)
}

// NewStructureError creates a StructureError without line information.
func NewStructureError(format string, args ...any) *StructureError {
	return &StructureError{Message: fmt.Sprintf(format, args...)}
}

// IsStructureError returns true if err is or wraps a StructureError.
func IsStructureError(err error) bool {
	var se *StructureError
	return errors.As(err, &se)
}
