package document

import (
	"errors"
	"fmt"
)

// Error reports caller misuse of the document API and version errors on
// the save path. Each operation returns a distinct Code so callers can
// branch without parsing messages.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Name is the layout, block, table entry or version involved.
	Name string
}

// ErrorCode categorizes document errors.
type ErrorCode string

const (
	// ErrCodeVersion indicates an unknown or unwritable format version.
	ErrCodeVersion ErrorCode = "VERSION"

	// ErrCodeDuplicateLayout indicates a layout name that is already used.
	ErrCodeDuplicateLayout ErrorCode = "DUPLICATE_LAYOUT"

	// ErrCodeLayoutNotFound indicates a layout name that does not exist.
	ErrCodeLayoutNotFound ErrorCode = "LAYOUT_NOT_FOUND"

	// ErrCodeModelspaceLayout indicates an operation the model space
	// layout does not allow (delete, rename, activate).
	ErrCodeModelspaceLayout ErrorCode = "MODELSPACE_LAYOUT"

	// ErrCodeLastLayout indicates an attempt to delete the only paper
	// space layout.
	ErrCodeLastLayout ErrorCode = "LAST_LAYOUT"

	// ErrCodeLayoutBlock indicates a block that belongs to a layout and
	// can only be removed through the layout API.
	ErrCodeLayoutBlock ErrorCode = "LAYOUT_BLOCK"

	// ErrCodeUndefinedBlock indicates a reference to a block that does
	// not exist and cannot be created.
	ErrCodeUndefinedBlock ErrorCode = "UNDEFINED_BLOCK"

	// ErrCodeInvalidName indicates a name with characters the format
	// does not allow.
	ErrCodeInvalidName ErrorCode = "INVALID_NAME"

	// ErrCodeDuplicateEntry indicates a table entry, block or named
	// object that already exists.
	ErrCodeDuplicateEntry ErrorCode = "DUPLICATE_ENTRY"

	// ErrCodeEntryNotFound indicates a table entry, block or named object
	// that does not exist.
	ErrCodeEntryNotFound ErrorCode = "ENTRY_NOT_FOUND"

	// ErrCodeForeignEntity indicates an entity that does not belong to
	// this document or layout.
	ErrCodeForeignEntity ErrorCode = "FOREIGN_ENTITY"

	// ErrCodeStructureEntity indicates an entity that holds a table,
	// block or layout together and cannot be deleted by itself.
	ErrCodeStructureEntity ErrorCode = "STRUCTURE_ENTITY"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: %s (%q)", e.Code, e.Message, e.Name)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code ErrorCode, name, format string, args ...any) *Error {
	return &Error{Code: code, Name: name, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the ErrorCode of err, or "" if err is not an *Error.
func CodeOf(err error) ErrorCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsVersionError returns true if err is a version error.
// Uses errors.As to handle wrapped errors.
func IsVersionError(err error) bool {
	return CodeOf(err) == ErrCodeVersion
}

// IsLayoutError returns true for any layout management error.
func IsLayoutError(err error) bool {
	switch CodeOf(err) {
	case ErrCodeDuplicateLayout, ErrCodeLayoutNotFound, ErrCodeModelspaceLayout, ErrCodeLastLayout:
		return true
	}
	return false
}

// IsUndefinedBlockError returns true if err reports an undefined block.
func IsUndefinedBlockError(err error) bool {
	return CodeOf(err) == ErrCodeUndefinedBlock
}
