package document

import (
	"fmt"
	"log/slog"

	"github.com/roach88/dxfio/internal/codepage"
	"github.com/roach88/dxfio/internal/dxfver"
	"github.com/roach88/dxfio/internal/entity"
	"github.com/roach88/dxfio/internal/handle"
	"github.com/roach88/dxfio/internal/schema"
	"github.com/roach88/dxfio/internal/structure"
	"github.com/roach88/dxfio/internal/tags"
)

// Export writes the whole document as tags: HEADER, CLASSES, TABLES,
// BLOCKS, ENTITIES, OBJECTS, ACDSDATA, the stored sections and EOF.
// CLASSES and OBJECTS are omitted for R12, ACDSDATA before R2013.
//
// Export refreshes the save-time header variables, so two exports of
// the same document differ in $TDUPDATE and $VERSIONGUID.
func (d *Document) Export(w tags.Writer) error {
	v, err := dxfver.Validate(string(d.version))
	if err != nil {
		return newError(ErrCodeVersion, string(d.version), "%v", err)
	}
	if err := d.renderDimensions(); err != nil {
		return fmt.Errorf("render dimensions: %w", err)
	}
	modern := v.After(dxfver.R12)
	if modern {
		d.updateClasses(v)
	}
	if d.usesType("HATCH") {
		d.tables.ensureAppID("HATCHBACKGROUNDCOLOR")
	}
	d.updateHeader(v)

	x := &exporter{
		doc:    d,
		w:      w,
		modern: modern,
		opts: entity.ExportOptions{
			Version:      v,
			WriteHandles: modern || d.header.Int("$HANDLING", 1) != 0,
			Filter:       schema.Filter,
			Resolve:      d.tables.resolveSymbol,
		},
		skipped: make(map[string]bool),
	}

	structure.Export(w, structure.Header, d.header.content(v))
	if modern {
		structure.Export(w, structure.Classes, d.classes.content(v))
	}
	x.section(structure.Tables, func() { d.tables.export(w, x.opts, modern) })
	x.section(structure.Blocks, func() { d.blocks.export(x) })
	x.section(structure.Entities, func() { x.layoutEntities() })
	if modern {
		x.section(structure.Objects, func() { d.objects.export(x) })
	}
	if d.acdsdata != nil && len(d.acdsdata.Records) > 0 && v.AtLeast(dxfver.R2013) {
		structure.Export(w, structure.AcDsData, d.acdsdata.Tags())
	}
	for _, sec := range d.stored {
		structure.Export(w, sec.Name, sec.Tags())
	}
	w.WriteTag(tags.Tag{Code: tags.CodeStructure, Value: "EOF"})
	return nil
}

// updateClasses adds the required classes and those of used types.
func (d *Document) updateClasses(v dxfver.Version) {
	d.classes.AddRequired(v)
	seen := make(map[string]bool)
	for _, e := range d.db.All() {
		if seen[e.Type] {
			continue
		}
		seen[e.Type] = true
		d.classes.AddClass(e.Type)
	}
}

func (d *Document) usesType(typ string) bool {
	for _, e := range d.db.All() {
		if e.Type == typ {
			return true
		}
	}
	return false
}

// updateHeader refreshes the variables that describe the saved state.
func (d *Document) updateHeader(v dxfver.Version) {
	h := d.header
	_ = h.Set("$ACADVER", string(v))
	_ = h.Set("$ACADMAINTVER", v.MaintVersion())
	_ = h.Set("$DWGCODEPAGE", codepage.ToCodepage(d.encoding))
	_ = h.Set("$HANDSEED", d.db.Seed().String())
	_ = h.Set("$CMATERIAL", d.currentMaterial().String())
	d.setUpdated()
}

// currentMaterial validates $CMATERIAL, falling back to ByLayer.
func (d *Document) currentMaterial() handle.Handle {
	if t, ok := d.header.Get("$CMATERIAL"); ok {
		if h, err := handle.Parse(t.Str()); err == nil {
			if e, ok := d.db.Get(h); ok && e.Type == "MATERIAL" {
				return h
			}
		}
	}
	if m, ok := d.materials.Get("ByLayer"); ok {
		return m.Handle
	}
	return handle.MustParse("45")
}

// exporter writes entities with the version gating of one export.
type exporter struct {
	doc     *Document
	w       tags.Writer
	opts    entity.ExportOptions
	modern  bool
	skipped map[string]bool
}

func (x *exporter) section(name string, body func()) {
	x.w.WriteTag(tags.Tag{Code: tags.CodeStructure, Value: "SECTION"})
	x.w.WriteTag(tags.Tag{Code: tags.CodeName, Value: name})
	body()
	x.w.WriteTag(tags.Tag{Code: tags.CodeStructure, Value: "ENDSEC"})
}

// entity writes e unless its type is newer than the target version.
func (x *exporter) entity(e *entity.Entity) {
	if oldest := schema.MinVersion(e.Type); x.opts.Version.Before(oldest) && schema.IsGraphical(e.Type) {
		if !x.skipped[e.Type] {
			x.skipped[e.Type] = true
			slog.Warn("entity type not supported by target version, skipped",
				"type", e.Type, "version", x.opts.Version.Release())
		}
		return
	}
	e.Export(x.w, x.opts)
}

// block writes a BLOCK marker, with the R12 spelling of layout block
// names.
func (x *exporter) block(e *entity.Entity) {
	if x.modern {
		x.entity(e)
		return
	}
	r12, ok := blockNameToR12[entity.Key(e.Name())]
	if !ok {
		x.entity(e)
		return
	}
	c := *e
	c.Body = e.Body.Clone()
	_ = c.Set(2, r12)
	_ = c.Set(3, r12)
	x.entity(&c)
}

// layoutEntities writes the model space and the active paper space.
func (x *exporter) layoutEntities() {
	for _, b := range []*BlockLayout{x.doc.blocks.modelspace(), x.doc.blocks.activePaperspace()} {
		for _, h := range b.entities {
			if e, ok := x.doc.db.Get(h); ok {
				x.entity(e)
			}
		}
	}
}
