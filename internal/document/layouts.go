package document

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/dxfio/internal/entity"
	"github.com/roach88/dxfio/internal/handle"
	"github.com/roach88/dxfio/internal/tags"
)

// ModelLayoutName is the name of the model space layout.
const ModelLayoutName = "Model"

const layoutSubclass = "AcDbLayout"

// Layout is a named drawing space: a block layout plus the LAYOUT object
// carrying its name, tab order and plot settings.
type Layout struct {
	*BlockLayout
	object handle.Handle
}

// Name returns the layout name shown on the tab.
func (l *Layout) Name() string {
	t, _ := l.Object().GetIn(layoutSubclass, 1)
	return t.Str()
}

// BlockName returns the name of the block holding the layout entities.
func (l *Layout) BlockName() string { return l.BlockLayout.Name() }

// Object returns the LAYOUT object.
func (l *Layout) Object() *entity.Entity {
	e, _ := l.doc.db.Get(l.object)
	return e
}

// TabOrder returns the tab position, 0 for model space.
func (l *Layout) TabOrder() int {
	t, _ := l.Object().GetIn(layoutSubclass, 71)
	return int(t.Int())
}

// IsActive reports whether l is the active paper space layout.
func (l *Layout) IsActive() bool { return l.IsActivePaperSpace() }

// Layouts maps layout names to layouts. Names are case-sensitive.
type Layouts struct {
	doc    *Document
	byName map[string]*Layout
}

func newLayouts(d *Document) *Layouts {
	return &Layouts{doc: d, byName: make(map[string]*Layout)}
}

func (ls *Layouts) dict() *entity.Entity {
	d, _ := ls.doc.objects.NamedDict("ACAD_LAYOUT")
	return d
}

// load builds layouts from the ACAD_LAYOUT dictionary. LAYOUT objects
// whose block record does not exist are skipped.
func (ls *Layouts) load() {
	dict := ls.dict()
	for _, de := range dict.DictEntries() {
		obj, ok := ls.doc.db.Get(de.Handle)
		if !ok || obj.Type != "LAYOUT" {
			slog.Debug("skipping layout dictionary entry", "name", de.Key, "handle", de.Handle)
			continue
		}
		rec := obj.RefIn(layoutSubclass, tags.CodeOwner)
		b, ok := ls.doc.blocks.byRecord[rec]
		if !ok {
			slog.Debug("orphaned layout", "name", de.Key, "block_record", rec)
			continue
		}
		l := &Layout{BlockLayout: b, object: obj.Handle}
		if _, dup := ls.byName[l.Name()]; dup {
			slog.Debug("duplicate layout name", "name", l.Name())
			continue
		}
		ls.byName[l.Name()] = l
		b.Record().SetRef(340, obj.Handle)
	}
}

// ensureDefaults restores the model space layout and the layout of the
// active paper space block.
func (ls *Layouts) ensureDefaults() {
	if ls.modelspace() == nil {
		ls.create(ModelLayoutName, ls.doc.blocks.modelspace(), 0)
	}
	active := ls.doc.blocks.activePaperspace()
	taborder := 0
	for _, l := range ls.byName {
		if l.BlockLayout == active {
			return
		}
		taborder = max(taborder, l.TabOrder())
	}
	name := "Layout1"
	if _, taken := ls.byName[name]; taken {
		name = ls.uniqueName()
	}
	ls.create(name, active, taborder+1)
}

// create builds a LAYOUT object for block b.
func (ls *Layouts) create(name string, b *BlockLayout, taborder int) *Layout {
	dict := ls.dict()
	obj, err := ls.doc.objects.NewObject("LAYOUT", dict.Handle, map[int]any{
		1:   name,
		71:  taborder,
		330: b.record.String(),
	})
	if err != nil {
		panic(err)
	}
	dict.DictSet(name, obj.Handle, false)
	b.Record().SetRef(340, obj.Handle)
	l := &Layout{BlockLayout: b, object: obj.Handle}
	ls.byName[name] = l
	return l
}

func (ls *Layouts) uniqueName() string {
	for i := len(ls.byName); ; i++ {
		name := fmt.Sprintf("Layout%d", i)
		if _, taken := ls.byName[name]; !taken {
			return name
		}
	}
}

func (ls *Layouts) modelspace() *Layout {
	for _, l := range ls.byName {
		if l.IsModelSpace() {
			return l
		}
	}
	return nil
}

// inTabOrder returns all layouts sorted by tab order, model space first.
func (ls *Layouts) inTabOrder() []*Layout {
	out := make([]*Layout, 0, len(ls.byName))
	for _, l := range ls.byName {
		out = append(out, l)
	}
	slices.SortFunc(out, func(a, b *Layout) int {
		switch {
		case a.IsModelSpace() != b.IsModelSpace():
			if a.IsModelSpace() {
				return -1
			}
			return 1
		case a.TabOrder() != b.TabOrder():
			return a.TabOrder() - b.TabOrder()
		}
		return cmp.Compare(a.Name(), b.Name())
	})
	return out
}

func (ls *Layouts) paperLayouts() []*Layout {
	var out []*Layout
	for _, l := range ls.inTabOrder() {
		if !l.IsModelSpace() {
			out = append(out, l)
		}
	}
	return out
}

// Modelspace returns the model space layout.
func (d *Document) Modelspace() *Layout {
	return d.layouts.modelspace()
}

// Layout returns the layout called name. An empty name selects the first
// paper space layout in tab order.
func (d *Document) Layout(name string) (*Layout, error) {
	if name == "" {
		paper := d.layouts.paperLayouts()
		if len(paper) == 0 {
			return nil, newError(ErrCodeLayoutNotFound, name, "no paper space layout")
		}
		return paper[0], nil
	}
	l, ok := d.layouts.byName[name]
	if !ok {
		return nil, newError(ErrCodeLayoutNotFound, name, "layout not found")
	}
	return l, nil
}

// Layouts returns all layouts in tab order, model space first.
func (d *Document) Layouts() []*Layout {
	return d.layouts.inTabOrder()
}

// ActiveLayout returns the active paper space layout.
func (d *Document) ActiveLayout() *Layout {
	for _, l := range d.layouts.byName {
		if l.IsActivePaperSpace() {
			return l
		}
	}
	return nil
}

// LayoutNames returns the layout names in no particular order.
func (d *Document) LayoutNames() []string {
	names := make([]string, 0, len(d.layouts.byName))
	for name := range d.layouts.byName {
		names = append(names, name)
	}
	return names
}

// LayoutNamesInTabOrder returns the layout names in tab order, model
// space first.
func (d *Document) LayoutNamesInTabOrder() []string {
	var names []string
	for _, l := range d.layouts.inTabOrder() {
		names = append(names, l.Name())
	}
	return names
}

// NewLayout creates a paper space layout after the last tab. Existing
// names return DUPLICATE_LAYOUT, names a table entry could not carry
// INVALID_NAME.
func (d *Document) NewLayout(name string) (*Layout, error) {
	if _, ok := d.layouts.byName[name]; ok {
		return nil, newError(ErrCodeDuplicateLayout, name, "layout already exists")
	}
	if !entity.IsValidName(name) {
		return nil, newError(ErrCodeInvalidName, name, "invalid layout name")
	}
	taborder := 0
	for _, l := range d.layouts.byName {
		taborder = max(taborder, l.TabOrder())
	}
	b := d.blocks.create(d.blocks.unique(PaperSpaceBlock), nil)
	return d.layouts.create(name, b, taborder+1), nil
}

// DeleteLayout removes a paper space layout with all its entities. The
// model space returns MODELSPACE_LAYOUT, unknown names LAYOUT_NOT_FOUND
// and the last paper space layout LAST_LAYOUT. Deleting the active
// layout activates the next one first.
func (d *Document) DeleteLayout(name string) error {
	l, ok := d.layouts.byName[name]
	if !ok {
		return newError(ErrCodeLayoutNotFound, name, "layout not found")
	}
	if l.IsModelSpace() {
		return newError(ErrCodeModelspaceLayout, name, "model space layout cannot be deleted")
	}
	paper := d.layouts.paperLayouts()
	if len(paper) < 2 {
		return newError(ErrCodeLastLayout, name, "cannot delete the only paper space layout")
	}
	if l.IsActive() {
		next := paper[0]
		if next == l {
			next = paper[1]
		}
		if err := d.activate(next); err != nil {
			return err
		}
	}
	d.layouts.dict().DictRemove(name)
	d.objects.unlink(l.object)
	d.db.Delete(l.object)
	d.blocks.remove(l.BlockLayout)
	delete(d.layouts.byName, name)
	return nil
}

// RenameLayout changes a layout name. The model space cannot be renamed.
func (d *Document) RenameLayout(old, name string) error {
	l, ok := d.layouts.byName[old]
	if !ok {
		return newError(ErrCodeLayoutNotFound, old, "layout not found")
	}
	if l.IsModelSpace() {
		return newError(ErrCodeModelspaceLayout, old, "model space layout cannot be renamed")
	}
	if old == name {
		return nil
	}
	if !entity.IsValidName(name) {
		return newError(ErrCodeInvalidName, name, "invalid layout name")
	}
	if _, ok := d.layouts.byName[name]; ok {
		return newError(ErrCodeDuplicateLayout, name, "layout already exists")
	}
	if err := l.Object().SetIn(layoutSubclass, 1, name); err != nil {
		return err
	}
	dict := d.layouts.dict()
	dict.DictRemove(old)
	dict.DictSet(name, l.object, false)
	delete(d.layouts.byName, old)
	d.layouts.byName[name] = l
	return nil
}

// SetActiveLayout makes name the active paper space layout.
func (d *Document) SetActiveLayout(name string) error {
	l, ok := d.layouts.byName[name]
	if !ok {
		return newError(ErrCodeLayoutNotFound, name, "layout not found")
	}
	if l.IsModelSpace() {
		return newError(ErrCodeModelspaceLayout, name, "model space cannot be the active paper space")
	}
	return d.activate(l)
}

// activate swaps the block names of the active layout and l, the
// active paper space is always "*Paper_Space".
func (d *Document) activate(l *Layout) error {
	if l.IsActive() {
		return nil
	}
	cur := d.ActiveLayout()
	if cur == nil {
		return d.blocks.rename(l.BlockLayout, PaperSpaceBlock)
	}
	return d.blocks.swapNames(cur.BlockLayout, l.BlockLayout)
}
