package document

import (
	"slices"
	"strings"

	"github.com/roach88/dxfio/internal/entity"
	"github.com/roach88/dxfio/internal/handle"
	"github.com/roach88/dxfio/internal/schema"
	"github.com/roach88/dxfio/internal/tags"
)

// Table names in export order.
const (
	TableVPort       = "VPORT"
	TableLinetype    = "LTYPE"
	TableLayer       = "LAYER"
	TableStyle       = "STYLE"
	TableView        = "VIEW"
	TableUCS         = "UCS"
	TableAppID       = "APPID"
	TableDimStyle    = "DIMSTYLE"
	TableBlockRecord = "BLOCK_RECORD"
)

var tableNames = []string{
	TableVPort, TableLinetype, TableLayer, TableStyle, TableView,
	TableUCS, TableAppID, TableDimStyle, TableBlockRecord,
}

// Table is one symbol table: a head record plus named entries. Entry
// names are matched case-insensitively.
type Table struct {
	doc     *Document
	name    string
	head    handle.Handle
	entries []handle.Handle
	index   map[string]handle.Handle
}

func newTable(d *Document, name string) *Table {
	return &Table{doc: d, name: name, index: make(map[string]handle.Handle)}
}

// Name returns the table name, e.g. "LAYER".
func (t *Table) Name() string { return t.name }

// Head returns the TABLE head record.
func (t *Table) Head() *entity.Entity {
	e, _ := t.doc.db.Get(t.head)
	return e
}

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.entries) }

// Has reports whether an entry called name exists.
func (t *Table) Has(name string) bool {
	_, ok := t.index[entity.Key(name)]
	return ok
}

// Get returns the entry called name.
func (t *Table) Get(name string) (*entity.Entity, bool) {
	h, ok := t.index[entity.Key(name)]
	if !ok {
		return nil, false
	}
	return t.doc.db.Get(h)
}

// Entries returns the entries in table order.
func (t *Table) Entries() []*entity.Entity {
	out := make([]*entity.Entity, 0, len(t.entries))
	for _, h := range t.entries {
		if e, ok := t.doc.db.Get(h); ok {
			out = append(out, e)
		}
	}
	return out
}

// Names returns the entry names in table order.
func (t *Table) Names() []string {
	var out []string
	for _, e := range t.Entries() {
		out = append(out, e.Name())
	}
	return out
}

// New creates an entry. values override schema defaults by group code.
// Names with forbidden characters return INVALID_NAME; a leading "*" is
// allowed for reserved names. Existing names return DUPLICATE_ENTRY.
func (t *Table) New(name string, values map[int]any) (*entity.Entity, error) {
	if !entity.IsValidName(strings.TrimPrefix(name, "*")) {
		return nil, newError(ErrCodeInvalidName, name, "invalid %s name", t.name)
	}
	if t.Has(name) {
		return nil, newError(ErrCodeDuplicateEntry, name, "%s entry already exists", t.name)
	}
	if t.name == TableBlockRecord {
		bl, err := t.doc.blocks.New(name, tags.Vec3(0, 0, 0))
		if err != nil {
			return nil, err
		}
		return bl.Record(), nil
	}
	return t.newEntry(name, values)
}

// newEntry builds and links an entry without name checks.
func (t *Table) newEntry(name string, values map[int]any) (*entity.Entity, error) {
	v := make(map[int]any, len(values)+1)
	for code, val := range values {
		v[code] = val
	}
	v[tags.CodeName] = name
	body, err := schema.MustLookup(t.name).Build(v)
	if err != nil {
		return nil, err
	}
	e := t.doc.add(entity.New(t.name, body))
	e.Owner = t.head
	t.link(e)
	return e, nil
}

// link appends a loaded entry. A second entry with an existing name is
// refused.
func (t *Table) link(e *entity.Entity) bool {
	key := entity.Key(e.Name())
	if _, ok := t.index[key]; ok {
		return false
	}
	t.index[key] = e.Handle
	t.entries = append(t.entries, e.Handle)
	t.doc.tables.entryTable[e.Handle] = t
	return true
}

func (t *Table) unlinkHandle(h handle.Handle) {
	t.entries = slices.DeleteFunc(t.entries, func(x handle.Handle) bool { return x == h })
	for k, v := range t.index {
		if v == h {
			delete(t.index, k)
		}
	}
	delete(t.doc.tables.entryTable, h)
}

// Remove deletes the entry called name. Block records are removed with
// their block definition.
func (t *Table) Remove(name string) error {
	e, ok := t.Get(name)
	if !ok {
		return newError(ErrCodeEntryNotFound, name, "%s entry not found", t.name)
	}
	if t.name == TableBlockRecord {
		return t.doc.blocks.Delete(name)
	}
	t.unlinkHandle(e.Handle)
	t.doc.groups.removeMember(e.Handle)
	t.doc.db.Delete(e.Handle)
	return nil
}

// rename re-keys an entry.
func (t *Table) rename(old, name string) error {
	e, ok := t.Get(old)
	if !ok {
		return newError(ErrCodeEntryNotFound, old, "%s entry not found", t.name)
	}
	if entity.Key(old) != entity.Key(name) && t.Has(name) {
		return newError(ErrCodeDuplicateEntry, name, "%s entry already exists", t.name)
	}
	delete(t.index, entity.Key(old))
	if err := e.Set(tags.CodeName, name); err != nil {
		return err
	}
	t.index[entity.Key(name)] = e.Handle
	return nil
}

func (t *Table) export(w tags.Writer, opts entity.ExportOptions) {
	head := t.Head()
	_ = head.Set(70, len(t.entries))
	head.Export(w, opts)
	for _, e := range t.Entries() {
		e.Export(w, opts)
	}
	w.WriteTag(tags.Tag{Code: tags.CodeStructure, Value: "ENDTAB"})
}

// Tables is the TABLES section.
type Tables struct {
	doc        *Document
	byName     map[string]*Table
	entryTable map[handle.Handle]*Table
}

func newTables(d *Document) *Tables {
	ts := &Tables{
		doc:        d,
		byName:     make(map[string]*Table, len(tableNames)),
		entryTable: make(map[handle.Handle]*Table),
	}
	for _, name := range tableNames {
		ts.byName[name] = newTable(d, name)
	}
	return ts
}

// Get returns the table called name, or nil for unknown names.
func (ts *Tables) Get(name string) *Table { return ts.byName[name] }

// All returns the tables in export order.
func (ts *Tables) All() []*Table {
	out := make([]*Table, len(tableNames))
	for i, name := range tableNames {
		out[i] = ts.byName[name]
	}
	return out
}

func (ts *Tables) Layers() *Table       { return ts.byName[TableLayer] }
func (ts *Tables) Linetypes() *Table    { return ts.byName[TableLinetype] }
func (ts *Tables) Styles() *Table       { return ts.byName[TableStyle] }
func (ts *Tables) DimStyles() *Table    { return ts.byName[TableDimStyle] }
func (ts *Tables) AppIDs() *Table       { return ts.byName[TableAppID] }
func (ts *Tables) BlockRecords() *Table { return ts.byName[TableBlockRecord] }
func (ts *Tables) ViewPorts() *Table    { return ts.byName[TableVPort] }
func (ts *Tables) Views() *Table        { return ts.byName[TableView] }
func (ts *Tables) UCS() *Table          { return ts.byName[TableUCS] }

// owns reports whether e is a table head or entry.
func (ts *Tables) owns(e *entity.Entity) bool {
	if e.Type == "TABLE" {
		return true
	}
	_, ok := ts.entryTable[e.Handle]
	return ok
}

func (ts *Tables) unlink(e *entity.Entity) {
	if t, ok := ts.entryTable[e.Handle]; ok {
		t.unlinkHandle(e.Handle)
	}
}

// ensureHeads creates missing TABLE heads.
func (ts *Tables) ensureHeads() {
	for _, t := range ts.All() {
		if !t.head.IsNull() {
			continue
		}
		body, _ := schema.MustLookup("TABLE").Build(nil)
		body = append(tags.Tags{{Code: tags.CodeName, Value: t.name}}, body...)
		if t.name == TableDimStyle {
			body = append(body,
				tags.Tag{Code: tags.CodeSubclass, Value: "AcDbDimStyleTable"},
				tags.New(71, 0))
		}
		t.head = ts.doc.add(entity.New("TABLE", body)).Handle
		for _, h := range t.entries {
			if e, ok := ts.doc.db.Get(h); ok && e.Owner.IsNull() {
				e.Owner = t.head
			}
		}
	}
}

// linkOwners points every entry at its table head. Old files carry no
// owner tags at all.
func (ts *Tables) linkOwners() {
	for _, t := range ts.All() {
		for _, e := range t.Entries() {
			e.Owner = t.head
		}
	}
}

// ensureDefaults creates the entries every document must have.
func (ts *Tables) ensureDefaults() {
	required := []struct {
		table  string
		name   string
		values map[int]any
	}{
		{TableVPort, "*Active", nil},
		{TableLinetype, "ByBlock", nil},
		{TableLinetype, "ByLayer", nil},
		{TableLinetype, "Continuous", map[int]any{3: "Solid line"}},
		{TableLayer, "0", nil},
		{TableLayer, "Defpoints", map[int]any{290: 0}},
		{TableStyle, "Standard", map[int]any{3: ts.doc.opts.TextStyleFont}},
		{TableAppID, "ACAD", nil},
		{TableDimStyle, "Standard", nil},
	}
	for _, r := range required {
		t := ts.byName[r.table]
		if t.Has(r.name) {
			continue
		}
		if _, err := t.newEntry(r.name, r.values); err != nil {
			panic(err)
		}
	}
}

// stampLayers sets the plot style and material pointers every layer
// needs.
func (ts *Tables) stampLayers() {
	plotStyle := ts.doc.objects.plotStyleNormal()
	material := handle.Null
	if m, ok := ts.doc.materials.Get("Global"); ok {
		material = m.Handle
	}
	for _, layer := range ts.Layers().Entries() {
		if !plotStyle.IsNull() && layer.Ref(tags.CodePlotStyle).IsNull() {
			layer.SetRef(tags.CodePlotStyle, plotStyle)
		}
		if !material.IsNull() && !layer.Has(tags.CodeMaterial) {
			layer.SetRef(tags.CodeMaterial, material)
		}
	}
}

// ensureAppID creates an APPID entry if missing.
func (ts *Tables) ensureAppID(name string) {
	if ts.AppIDs().Has(name) {
		return
	}
	if _, err := ts.AppIDs().newEntry(name, nil); err != nil {
		panic(err)
	}
}

// resolveDimStyleSymbols replaces the text style and arrow block
// pointers of dimension styles by names.
func (ts *Tables) resolveDimStyleSymbols() {
	for _, ds := range ts.DimStyles().Entries() {
		for code := 340; code <= 344; code++ {
			h := ds.Ref(code)
			if h.IsNull() {
				continue
			}
			target, ok := ts.doc.db.Get(h)
			if !ok {
				continue
			}
			if ds.Symbols == nil {
				ds.Symbols = make(map[int]string)
			}
			ds.Symbols[code] = target.Name()
		}
	}
}

// resolveSymbol maps a symbolic reference back to a handle on export.
func (ts *Tables) resolveSymbol(code int, name string) handle.Handle {
	var t *Table
	switch {
	case code == 340:
		t = ts.Styles()
	case code >= 341 && code <= 344:
		t = ts.BlockRecords()
	default:
		return handle.Null
	}
	if e, ok := t.Get(name); ok {
		return e.Handle
	}
	return handle.Null
}

func (ts *Tables) export(w tags.Writer, opts entity.ExportOptions, modern bool) {
	for _, t := range ts.All() {
		if t.name == TableBlockRecord && !modern {
			continue
		}
		t.export(w, opts)
	}
}
