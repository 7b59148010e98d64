package document

import (
	"fmt"
	"slices"

	"github.com/roach88/dxfio/internal/entity"
	"github.com/roach88/dxfio/internal/handle"
	"github.com/roach88/dxfio/internal/tags"
)

// Collection is a set of named objects of one type stored in a named
// dictionary of the root dictionary, e.g. materials in ACAD_MATERIAL.
// Names are the dictionary keys and match exactly.
type Collection struct {
	doc      *Document
	dictName string
	objType  string
	nameCode int // attribute repeating the name, -1 for none
}

func newCollection(d *Document, dictName, objType string, nameCode int) *Collection {
	return &Collection{doc: d, dictName: dictName, objType: objType, nameCode: nameCode}
}

func (c *Collection) dict() *entity.Entity {
	d, ok := c.doc.objects.NamedDict(c.dictName)
	if !ok {
		panic(fmt.Sprintf("document: missing %s dictionary", c.dictName))
	}
	return d
}

// Names returns the object names in dictionary order.
func (c *Collection) Names() []string {
	var names []string
	for _, de := range c.dict().DictEntries() {
		names = append(names, de.Key)
	}
	return names
}

// Len returns the number of objects.
func (c *Collection) Len() int { return len(c.dict().DictEntries()) }

// Has reports whether name exists.
func (c *Collection) Has(name string) bool {
	_, ok := c.Get(name)
	return ok
}

// Get returns the object called name.
func (c *Collection) Get(name string) (*entity.Entity, bool) {
	h, ok := c.dict().DictGet(name)
	if !ok {
		return nil, false
	}
	return c.doc.db.Get(h)
}

// New creates an object called name. Existing names return
// DUPLICATE_ENTRY.
func (c *Collection) New(name string, values map[int]any) (*entity.Entity, error) {
	if c.Has(name) {
		return nil, newError(ErrCodeDuplicateEntry, name, "%s already exists", c.objType)
	}
	v := merge(values, nil)
	if c.nameCode >= 0 {
		v[c.nameCode] = name
	}
	if c.objType == "MLEADERSTYLE" {
		if _, ok := v[342]; !ok {
			if st, ok := c.doc.tables.Styles().Get("Standard"); ok {
				v[342] = st.Handle.String()
			}
		}
	}
	dict := c.dict()
	obj, err := c.doc.objects.NewObject(c.objType, dict.Handle, v)
	if err != nil {
		return nil, err
	}
	dict.DictSet(name, obj.Handle, false)
	return obj, nil
}

// Delete removes the object called name. Unknown names return
// ENTRY_NOT_FOUND.
func (c *Collection) Delete(name string) error {
	obj, ok := c.Get(name)
	if !ok {
		return newError(ErrCodeEntryNotFound, name, "%s not found", c.objType)
	}
	c.dict().DictRemove(name)
	return c.doc.DeleteEntity(obj.Handle)
}

// ensure creates the named objects if missing.
func (c *Collection) ensure(names ...string) {
	for _, name := range names {
		if c.Has(name) {
			continue
		}
		if _, err := c.New(name, nil); err != nil {
			panic(err)
		}
	}
}

// Groups is the ACAD_GROUP collection. A group is a GROUP object listing
// member entities under code 340.
type Groups struct {
	*Collection
}

func newGroups(d *Document) *Groups {
	return &Groups{Collection: newCollection(d, "ACAD_GROUP", "GROUP", -1)}
}

// ensure only checks the dictionary exists; there are no default groups.
func (g *Groups) ensure() { g.dict() }

const codeGroupMember = 340

// New creates a group of the given graphical entities. An empty name
// creates an unnamed group "*A<n>". Existing names return
// DUPLICATE_ENTRY, entities of no layout FOREIGN_ENTITY.
func (g *Groups) New(name, description string, members ...handle.Handle) (*entity.Entity, error) {
	unnamed := name == ""
	if unnamed {
		name = g.uniqueName()
	}
	if err := g.checkMembers(members); err != nil {
		return nil, err
	}
	flag := 0
	if unnamed {
		flag = 1
	}
	grp, err := g.Collection.New(name, map[int]any{300: description, 70: flag})
	if err != nil {
		return nil, err
	}
	for _, h := range members {
		_ = grp.Append(codeGroupMember, h.String())
	}
	return grp, nil
}

func (g *Groups) uniqueName() string {
	for i := 1; ; i++ {
		name := fmt.Sprintf("*A%d", i)
		if !g.Has(name) {
			return name
		}
	}
}

func (g *Groups) checkMembers(members []handle.Handle) error {
	for _, h := range members {
		if _, ok := g.doc.blocks.blockOf(h); !ok {
			return newError(ErrCodeForeignEntity, h.String(), "group members must be entities of a layout or block")
		}
	}
	return nil
}

// Members returns the member handles of the group called name.
func (g *Groups) Members(name string) ([]handle.Handle, error) {
	grp, ok := g.Get(name)
	if !ok {
		return nil, newError(ErrCodeEntryNotFound, name, "group not found")
	}
	return groupMembers(grp), nil
}

// AddMembers appends entities to a group.
func (g *Groups) AddMembers(name string, members ...handle.Handle) error {
	grp, ok := g.Get(name)
	if !ok {
		return newError(ErrCodeEntryNotFound, name, "group not found")
	}
	if err := g.checkMembers(members); err != nil {
		return err
	}
	have := groupMembers(grp)
	for _, h := range members {
		if slices.Contains(have, h) {
			continue
		}
		_ = grp.Append(codeGroupMember, h.String())
		have = append(have, h)
	}
	return nil
}

func groupMembers(grp *entity.Entity) []handle.Handle {
	var out []handle.Handle
	for _, t := range grp.Body {
		if t.Code != codeGroupMember {
			continue
		}
		if h, err := handle.Parse(t.Str()); err == nil && !h.IsNull() {
			out = append(out, h)
		}
	}
	return out
}

// removeMember drops h from every group.
func (g *Groups) removeMember(h handle.Handle) {
	dict, ok := g.doc.objects.NamedDict(g.dictName)
	if !ok {
		return
	}
	for _, de := range dict.DictEntries() {
		if grp, ok := g.doc.db.Get(de.Handle); ok {
			dropMember(grp, h)
		}
	}
}

func dropMember(grp *entity.Entity, h handle.Handle) {
	grp.Body = slices.DeleteFunc(grp.Body, func(t tags.Tag) bool {
		if t.Code != codeGroupMember {
			return false
		}
		m, err := handle.Parse(t.Str())
		return err == nil && m == h
	})
}

// Cleanup removes members that no longer exist and deletes unnamed
// groups left empty.
func (g *Groups) Cleanup() {
	for _, name := range g.Names() {
		grp, ok := g.Get(name)
		if !ok {
			g.dict().DictRemove(name)
			continue
		}
		for _, h := range groupMembers(grp) {
			if !g.doc.db.Has(h) {
				dropMember(grp, h)
			}
		}
		if grp.Int(70, 0) == 1 && len(groupMembers(grp)) == 0 {
			_ = g.Delete(name)
		}
	}
}
