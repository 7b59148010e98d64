// Package entity implements the type-agnostic entity record.
//
// An Entity keeps its attributes as the ordered tag sequence read from
// the file, minus the structural tags the document manages itself: the
// type marker, the handle, the owner pointer and application data groups
// that precede the first subclass marker. Everything else, including
// subclass markers and extended data, stays in Body in file order so
// unknown attributes survive a round trip.
//
// References to other entities are plain handle values resolved through
// the entity database. Entities never point at each other directly.
package entity

import (
	"fmt"
	"strings"

	"github.com/roach88/dxfio/internal/handle"
	"github.com/roach88/dxfio/internal/tags"
)

// Entity is one record of the entity graph.
type Entity struct {
	Type   string
	Handle handle.Handle
	Owner  handle.Handle

	// AppData holds "{NAME" ... "}" groups (code 102) found before the
	// first subclass marker, delimiters included.
	AppData []tags.Tags

	// Body holds all remaining tags in file order.
	Body tags.Tags

	// Symbols maps pointer codes to names for references that are kept
	// symbolically while the document is in memory (DIMSTYLE text style
	// and arrow blocks). Export converts them back to handles.
	Symbols map[int]string
}

// New creates an entity of type typ with body as its attributes. The
// handle is assigned when the entity is added to a database.
func New(typ string, body tags.Tags) *Entity {
	return &Entity{Type: typ, Body: body}
}

// HandleCode returns the group code used for the handle of typ.
func HandleCode(typ string) int {
	if typ == "DIMSTYLE" {
		return tags.CodeDimHandle
	}
	return tags.CodeHandle
}

// FromTags builds an entity from one record as produced by the structure
// loader. The first tag must be the type marker.
func FromTags(record tags.Tags) (*Entity, error) {
	if len(record) == 0 || record[0].Code != tags.CodeStructure {
		return nil, fmt.Errorf("entity record must start with a type marker")
	}
	e := &Entity{Type: record[0].Str()}
	handleCode := HandleCode(e.Type)
	haveHandle, haveOwner := false, false
	inSubclass := false

	for i := 1; i < len(record); i++ {
		t := record[i]
		switch {
		case !haveHandle && (t.Code == handleCode || (e.Type == "DIMSTYLE" && t.Code == tags.CodeHandle)):
			h, err := handle.Parse(t.Str())
			if err != nil {
				return nil, fmt.Errorf("%s: %w", e.Type, err)
			}
			e.Handle = h
			haveHandle = true
		case !inSubclass && t.Code == tags.CodeAppData && strings.HasPrefix(t.Str(), "{"):
			group := tags.Tags{t}
			for i+1 < len(record) {
				i++
				group = append(group, record[i])
				if record[i].Code == tags.CodeAppData && record[i].Str() == "}" {
					break
				}
			}
			e.AppData = append(e.AppData, group)
		case !inSubclass && !haveOwner && t.Code == tags.CodeOwner:
			h, err := handle.Parse(t.Str())
			if err != nil {
				return nil, fmt.Errorf("%s: owner: %w", e.Type, err)
			}
			e.Owner = h
			haveOwner = true
		default:
			if t.Code == tags.CodeSubclass {
				inSubclass = true
			}
			e.Body = append(e.Body, t)
		}
	}
	return e, nil
}

// Clone returns a deep copy without handle and owner.
func (e *Entity) Clone() *Entity {
	c := &Entity{Type: e.Type, Body: e.Body.Clone()}
	for _, g := range e.AppData {
		c.AppData = append(c.AppData, g.Clone())
	}
	if e.Symbols != nil {
		c.Symbols = make(map[int]string, len(e.Symbols))
		for k, v := range e.Symbols {
			c.Symbols[k] = v
		}
	}
	return c
}

// String returns "TYPE(#HANDLE)" for diagnostics.
func (e *Entity) String() string {
	return fmt.Sprintf("%s(#%s)", e.Type, e.Handle)
}
