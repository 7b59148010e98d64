// Package audit walks an assembled document and reports dangling
// references and structural defects. Safe classes of defects can be
// fixed on the way.
package audit

import (
	"fmt"
	"io"
	"strings"

	"github.com/roach88/dxfio/internal/document"
	"github.com/roach88/dxfio/internal/dxfver"
	"github.com/roach88/dxfio/internal/entity"
	"github.com/roach88/dxfio/internal/handle"
	"github.com/roach88/dxfio/internal/schema"
	"github.com/roach88/dxfio/internal/tags"
)

// Issue codes (A100-A199)
const (
	// Document structure (A100-A109)
	ErrMissingRootDictEntry  = "A101" // root dictionary lacks a required entry
	ErrInvalidTableEntryName = "A102" // table entry name has invalid characters
	ErrInvalidOwner          = "A103" // owner handle does not exist

	// References (A110-A119)
	ErrPointerTargetMissing = "A110" // pointer to a handle that does not exist
	ErrUndefinedLinetype    = "A111" // linetype not in LTYPE table
	ErrUndefinedTextStyle   = "A112" // text style not in STYLE table
	ErrUndefinedDimStyle    = "A113" // dimension style not in DIMSTYLE table

	// Entity attributes (A120-A129)
	ErrInvalidLayerName  = "A120" // layer name has invalid characters
	ErrInvalidColorIndex = "A121" // color index outside 0..257
)

// requiredRootDictEntries must exist in the root dictionary of every
// R2000 and later document.
var requiredRootDictEntries = []string{"ACAD_GROUP", "ACAD_PLOTSTYLENAME"}

// Types referencing a text style by name (code 7) and a dimension style
// by name (code 3).
var (
	textStyleTypes = map[string]bool{"TEXT": true, "MTEXT": true, "ATTRIB": true, "ATTDEF": true}
	dimStyleTypes  = map[string]bool{"DIMENSION": true, "LEADER": true, "TOLERANCE": true, "ARC_DIMENSION": true}
)

const (
	codeTextStyle = 7
	codeDimStyle  = 3

	colorByLayer = 256
	maxColor     = 257
)

// Issue is one defect found by the auditor.
type Issue struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Type    string        `json:"type,omitempty"`
	Handle  handle.Handle `json:"handle,omitempty"`
	Target  handle.Handle `json:"target,omitempty"`
	Fixed   bool          `json:"fixed,omitempty"`
}

// Error implements the error interface.
func (i Issue) Error() string {
	if i.Type == "" {
		return fmt.Sprintf("[%s] %s", i.Code, i.Message)
	}
	return fmt.Sprintf("[%s] %s #%s: %s", i.Code, i.Type, i.Handle, i.Message)
}

// Option configures an Auditor.
type Option func(*Auditor)

// WithFix enables the safe auto-fixes: undefined linetypes fall back to
// ByLayer, undefined styles to "Standard", invalid colors to ByLayer,
// missing root dictionary entries are recreated and pointers to missing
// targets are removed.
func WithFix(fix bool) Option {
	return func(a *Auditor) { a.fix = fix }
}

// Auditor checks one document. Run may be called repeatedly; every run
// starts with an empty issue list.
type Auditor struct {
	doc       *document.Document
	fix       bool
	issues    []Issue
	undefined map[handle.Handle]bool
}

// New creates an auditor for d.
func New(d *document.Document, opts ...Option) *Auditor {
	a := &Auditor{doc: d}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run checks the whole document and returns all issues found. It does
// not stop at the first issue.
func (a *Auditor) Run() []Issue {
	a.issues = nil
	a.undefined = make(map[handle.Handle]bool)
	if a.doc.Version().After(dxfver.R12) {
		a.checkRootDict()
	}
	a.checkTableEntries()
	for _, e := range a.doc.Entities() {
		a.checkOwner(e)
		a.checkPointers(e)
		if schema.IsGraphical(e.Type) || e.Type == "LAYER" {
			a.checkLinetype(e)
		}
		if schema.IsGraphical(e.Type) {
			a.checkLayerName(e)
			a.checkColor(e)
			a.checkStyles(e)
		}
	}
	return a.Issues()
}

// Issues returns the issues of the last run.
func (a *Auditor) Issues() []Issue {
	out := make([]Issue, len(a.issues))
	copy(out, a.issues)
	return out
}

// HasIssues reports whether the last run found anything.
func (a *Auditor) HasIssues() bool { return len(a.issues) > 0 }

func (a *Auditor) add(i Issue) {
	a.issues = append(a.issues, i)
}

func entityIssue(code string, e *entity.Entity, format string, args ...any) Issue {
	return Issue{Code: code, Type: e.Type, Handle: e.Handle, Message: fmt.Sprintf(format, args...)}
}

func (a *Auditor) checkRootDict() {
	root := a.doc.Objects().RootDict()
	var missing []string
	for _, name := range requiredRootDictEntries {
		if root == nil {
			missing = append(missing, name)
			continue
		}
		if h, ok := root.DictGet(name); !ok || !a.exists(h) {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return
	}
	if a.fix {
		a.doc.Objects().RestoreNamedDicts()
	}
	for _, name := range missing {
		a.add(Issue{
			Code:    ErrMissingRootDictEntry,
			Message: fmt.Sprintf("missing root dictionary entry %s", name),
			Fixed:   a.fix,
		})
	}
}

func (a *Auditor) checkTableEntries() {
	for _, t := range a.doc.Tables().All() {
		for _, e := range t.Entries() {
			// "*Model_Space", "*Active" and friends are reserved names
			name := strings.TrimPrefix(e.Name(), "*")
			if !entity.IsValidName(name) {
				a.add(entityIssue(ErrInvalidTableEntryName, e, "invalid %s name %q", t.Name(), e.Name()))
			}
		}
	}
}

func (a *Auditor) exists(h handle.Handle) bool {
	_, ok := a.doc.Lookup(h)
	return ok
}

func (a *Auditor) checkOwner(e *entity.Entity) {
	if e.Owner.IsNull() || a.exists(e.Owner) {
		return
	}
	a.add(entityIssue(ErrInvalidOwner, e, "owner %s does not exist", e.Owner))
}

// checkPointers reports each missing target once, at the first entity
// pointing to it. A null pointer is reported with a null target.
func (a *Auditor) checkPointers(e *entity.Entity) {
	for _, t := range e.Pointers() {
		h, err := handle.Parse(t.Str())
		if err != nil {
			a.add(entityIssue(ErrPointerTargetMissing, e, "invalid handle %q in group code %d", t.Str(), t.Code))
			continue
		}
		if !h.IsNull() && (a.exists(h) || a.undefined[h]) {
			continue
		}
		if h.IsNull() {
			issue := entityIssue(ErrPointerTargetMissing, e, "null pointer in group code %d", t.Code)
			a.add(issue)
			continue
		}
		a.undefined[h] = true
		issue := entityIssue(ErrPointerTargetMissing, e, "pointer target %s does not exist", h)
		issue.Target = h
		if a.fix {
			a.doc.ReplaceRef(h, handle.Null)
			issue.Fixed = true
		}
		a.add(issue)
	}
}

func isByLayerOrBlock(name string) bool {
	return strings.EqualFold(name, "ByLayer") || strings.EqualFold(name, "ByBlock")
}

func (a *Auditor) checkLinetype(e *entity.Entity) {
	lt := e.Str(tags.CodeLinetype, "")
	if lt == "" || isByLayerOrBlock(lt) || a.doc.Tables().Linetypes().Has(lt) {
		return
	}
	issue := entityIssue(ErrUndefinedLinetype, e, "linetype %q is not defined", lt)
	if a.fix {
		fallback := "ByLayer"
		if e.Type == "LAYER" {
			fallback = "Continuous"
		}
		issue.Fixed = e.Set(tags.CodeLinetype, fallback) == nil
	}
	a.add(issue)
}

func (a *Auditor) checkStyles(e *entity.Entity) {
	if textStyleTypes[e.Type] {
		if st := e.Str(codeTextStyle, ""); st != "" && !a.doc.Tables().Styles().Has(st) {
			issue := entityIssue(ErrUndefinedTextStyle, e, "text style %q is not defined", st)
			if a.fix {
				issue.Fixed = e.Set(codeTextStyle, "Standard") == nil
			}
			a.add(issue)
		}
	}
	if dimStyleTypes[e.Type] {
		if st := e.Str(codeDimStyle, ""); st != "" && !a.doc.Tables().DimStyles().Has(st) {
			issue := entityIssue(ErrUndefinedDimStyle, e, "dimension style %q is not defined", st)
			if a.fix {
				issue.Fixed = e.Set(codeDimStyle, "Standard") == nil
			}
			a.add(issue)
		}
	}
}

// checkLayerName accepts the reserved "*ADSK_" system layers of modern
// documents.
func (a *Auditor) checkLayerName(e *entity.Entity) {
	name := e.Layer()
	if a.doc.Version().After(dxfver.R12) && strings.HasPrefix(strings.ToUpper(name), "*ADSK_") {
		return
	}
	if !entity.IsValidName(name) {
		a.add(entityIssue(ErrInvalidLayerName, e, "invalid layer name %q", name))
	}
}

func (a *Auditor) checkColor(e *entity.Entity) {
	t, ok := e.Get(tags.CodeColor)
	if !ok {
		return
	}
	if c := t.Int(); c >= 0 && c <= maxColor {
		return
	}
	issue := entityIssue(ErrInvalidColorIndex, e, "invalid color index %d", t.Int())
	if a.fix {
		issue.Fixed = e.Set(tags.CodeColor, colorByLayer) == nil
	}
	a.add(issue)
}

// FilterZeroPointers drops pointer issues with a null target. Many
// applications write "0" for unset pointers.
func FilterZeroPointers(issues []Issue) []Issue {
	var out []Issue
	for _, i := range issues {
		if i.Code == ErrPointerTargetMissing && i.Target.IsNull() {
			continue
		}
		out = append(out, i)
	}
	return out
}

// WriteReport prints issues as a numbered list.
func WriteReport(w io.Writer, issues []Issue) error {
	if len(issues) == 0 {
		_, err := fmt.Fprint(w, "No issues found.\n\n")
		return err
	}
	if _, err := fmt.Fprintf(w, "%d issues found.\n\n", len(issues)); err != nil {
		return err
	}
	for n, i := range issues {
		where := "document"
		if i.Type != "" {
			where = fmt.Sprintf("%s #%s", i.Type, i.Handle)
		}
		if _, err := fmt.Fprintf(w, "%4d. Issue [%s] in %s\n   %s\n", n+1, i.Code, where, i.Message); err != nil {
			return err
		}
		if i.Fixed {
			if _, err := fmt.Fprint(w, "   fixed\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

// Validate audits d without fixing and writes the report to w when w is
// not nil. Null pointers are not counted. Returns true if the document
// passed.
func Validate(d *document.Document, w io.Writer) (bool, error) {
	issues := FilterZeroPointers(New(d).Run())
	if w != nil {
		if err := WriteReport(w, issues); err != nil {
			return false, err
		}
	}
	return len(issues) == 0, nil
}
