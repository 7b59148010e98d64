package document

import (
	"fmt"
	"slices"

	"github.com/roach88/dxfio/internal/entity"
	"github.com/roach88/dxfio/internal/handle"
	"github.com/roach88/dxfio/internal/schema"
)

// Named dictionaries every document carries under the root dictionary.
var managementDicts = []string{
	"ACAD_COLOR", "ACAD_GROUP", "ACAD_LAYOUT", "ACAD_MATERIAL",
	"ACAD_MLEADERSTYLE", "ACAD_MLINESTYLE", "ACAD_PLOTSETTINGS",
	"ACAD_PLOTSTYLENAME", "ACAD_SCALELIST", "ACAD_TABLESTYLE",
	"ACAD_VISUALSTYLE",
}

// Objects is the OBJECTS section: non-graphical objects in file order,
// the root dictionary first.
type Objects struct {
	doc      *Document
	order    []handle.Handle
	rootdict handle.Handle
}

func newObjects(d *Document) *Objects {
	return &Objects{doc: d}
}

// RootDict returns the root dictionary.
func (o *Objects) RootDict() *entity.Entity {
	e, _ := o.doc.db.Get(o.rootdict)
	return e
}

// Len returns the number of objects.
func (o *Objects) Len() int { return len(o.order) }

// Entities returns the objects in order.
func (o *Objects) Entities() []*entity.Entity {
	out := make([]*entity.Entity, 0, len(o.order))
	for _, h := range o.order {
		if e, ok := o.doc.db.Get(h); ok {
			out = append(out, e)
		}
	}
	return out
}

// NamedDict returns the dictionary stored under name in the root
// dictionary.
func (o *Objects) NamedDict(name string) (*entity.Entity, bool) {
	root := o.RootDict()
	if root == nil {
		return nil, false
	}
	h, ok := root.DictGet(name)
	if !ok {
		return nil, false
	}
	return o.doc.db.Get(h)
}

// NewObject builds an object of a declared type and appends it.
func (o *Objects) NewObject(typ string, owner handle.Handle, values map[int]any) (*entity.Entity, error) {
	def, ok := schema.Lookup(typ)
	if !ok || def.Graphical {
		return nil, fmt.Errorf("cannot create object of type %s", typ)
	}
	body, err := def.Build(values)
	if err != nil {
		return nil, err
	}
	e := o.doc.add(entity.New(typ, body))
	e.Owner = owner
	o.link(e.Handle)
	return e, nil
}

// NewDictionary creates a dictionary owned by owner. A hard owner
// dictionary deletes its entries with itself.
func (o *Objects) NewDictionary(owner handle.Handle, hardOwned bool) *entity.Entity {
	values := map[int]any{}
	if hardOwned {
		values[280] = 1
	}
	d, err := o.NewObject("DICTIONARY", owner, values)
	if err != nil {
		panic(err)
	}
	return d
}

func (o *Objects) link(h handle.Handle) {
	o.order = append(o.order, h)
}

func (o *Objects) unlink(h handle.Handle) {
	o.order = slices.DeleteFunc(o.order, func(x handle.Handle) bool { return x == h })
	if h == o.rootdict {
		o.rootdict = handle.Null
	}
}

// ensureRootDict creates the root dictionary as first object if there is
// none.
func (o *Objects) ensureRootDict() {
	if o.RootDict() != nil {
		return
	}
	root := o.NewDictionary(handle.Null, false)
	o.order = append([]handle.Handle{root.Handle}, o.order[:len(o.order)-1]...)
	o.rootdict = root.Handle
}

// ensureManagementDicts creates missing named dictionaries. Entries that
// point nowhere are replaced.
func (o *Objects) ensureManagementDicts() {
	root := o.RootDict()
	for _, name := range managementDicts {
		if h, ok := root.DictGet(name); ok {
			if o.doc.db.Has(h) {
				continue
			}
			o.doc.warn(fmt.Sprintf("root dictionary entry %s points to missing object %s", name, h))
		}
		var dict *entity.Entity
		if name == "ACAD_PLOTSTYLENAME" {
			dict = o.newPlotStyleDict()
		} else {
			dict = o.NewDictionary(root.Handle, false)
		}
		root.DictSet(name, dict.Handle, false)
	}
}

// RestoreNamedDicts recreates a missing root dictionary and the
// management dictionaries every modern document needs.
func (o *Objects) RestoreNamedDicts() {
	o.ensureRootDict()
	o.ensureManagementDicts()
}

// newPlotStyleDict creates ACAD_PLOTSTYLENAME with its "Normal" default.
func (o *Objects) newPlotStyleDict() *entity.Entity {
	dict, err := o.NewObject("ACDBDICTIONARYWDFLT", o.rootdict, nil)
	if err != nil {
		panic(err)
	}
	normal, err := o.NewObject("ACDBPLACEHOLDER", dict.Handle, nil)
	if err != nil {
		panic(err)
	}
	dict.DictSet("Normal", normal.Handle, false)
	_ = dict.SetIn("AcDbDictionaryWithDefault", 340, normal.Handle.String())
	return dict
}

// plotStyleNormal returns the handle of the default plot style
// placeholder, or Null.
func (o *Objects) plotStyleNormal() handle.Handle {
	dict, ok := o.NamedDict("ACAD_PLOTSTYLENAME")
	if !ok {
		return handle.Null
	}
	if h := dict.RefIn("AcDbDictionaryWithDefault", 340); !h.IsNull() {
		return h
	}
	h, _ := dict.DictGet("Normal")
	return h
}

func (o *Objects) export(x *exporter) {
	for _, e := range o.Entities() {
		x.entity(e)
	}
}
