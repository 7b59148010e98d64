package document

import (
	"iter"
	"log/slog"
	"slices"

	"github.com/roach88/dxfio/internal/codepage"
	"github.com/roach88/dxfio/internal/config"
	"github.com/roach88/dxfio/internal/dxfver"
	"github.com/roach88/dxfio/internal/entity"
	"github.com/roach88/dxfio/internal/entitydb"
	"github.com/roach88/dxfio/internal/handle"
	"github.com/roach88/dxfio/internal/structure"
)

// Document is one drawing held completely in memory.
//
// All entities live in a single entitydb.DB. Tables, blocks, layouts,
// objects and collections only keep handles into it and resolve them on
// access.
//
// Thread-safety: a Document is not safe for concurrent use. Callers that
// share one across goroutines must serialize access, including export.
type Document struct {
	opts          config.Options
	version       dxfver.Version
	loadedVersion dxfver.Version
	encoding      string
	filename      string

	db       *entitydb.DB
	header   *Header
	classes  *Classes
	tables   *Tables
	blocks   *Blocks
	objects  *Objects
	layouts  *Layouts
	acdsdata *structure.Section
	stored   []*structure.Section

	groups        *Groups
	materials     *Collection
	mlineStyles   *Collection
	mleaderStyles *Collection

	warnings []string
	warned   map[string]bool

	guids       GUIDGenerator
	clock       Clock
	dimRenderer DimensionRenderer
}

// Option configures a Document.
type Option func(*Document)

// WithGUIDGenerator replaces the GUID source of the metadata header
// variables.
func WithGUIDGenerator(g GUIDGenerator) Option {
	return func(d *Document) {
		d.guids = g
	}
}

// WithClock replaces the time source of the metadata header variables.
func WithClock(c Clock) Option {
	return func(d *Document) {
		d.clock = c
	}
}

// WithDimensionRenderer registers the renderer used on export for
// dimensions without a geometry block.
func WithDimensionRenderer(r DimensionRenderer) Option {
	return func(d *Document) {
		d.dimRenderer = r
	}
}

func newDocument(opts config.Options, options ...Option) *Document {
	d := &Document{
		opts:        opts,
		encoding:    codepage.Default,
		db:          entitydb.New(),
		classes:     newClasses(),
		warned:      make(map[string]bool),
		guids:       UUIDGenerator{},
		clock:       SystemClock{},
		dimRenderer: noopRenderer{},
	}
	d.tables = newTables(d)
	d.blocks = newBlocks(d)
	d.objects = newObjects(d)
	d.layouts = newLayouts(d)
	d.groups = newGroups(d)
	d.materials = newCollection(d, "ACAD_MATERIAL", "MATERIAL", 1)
	d.mlineStyles = newCollection(d, "ACAD_MLINESTYLE", "MLINESTYLE", 2)
	d.mleaderStyles = newCollection(d, "ACAD_MLEADERSTYLE", "MLEADERSTYLE", -1)
	for _, opt := range options {
		opt(d)
	}
	return d
}

// New creates an empty document of opts.DefaultVersion with every
// mandatory table entry, the model space and one paper space layout.
func New(opts config.Options, options ...Option) *Document {
	d := newDocument(opts, options...)
	d.version = opts.Version()
	d.loadedVersion = d.version
	d.header = defaultHeader(d.version)
	_ = d.header.Set("$DWGCODEPAGE", codepage.ToCodepage(d.encoding))

	d.tables.ensureHeads()
	d.blocks.ensureLayoutBlocks()
	d.objects.ensureRootDict()
	d.objects.ensureManagementDicts()
	d.layouts.ensureDefaults()
	d.finalize()
	d.setCreated(false)
	slog.Debug("new document", "version", d.version, "release", d.version.Release())
	return d
}

// finalize builds the collections in dependency order and enforces the
// mandatory table content. Shared by New and Load.
func (d *Document) finalize() {
	d.groups.ensure()
	d.materials.ensure("ByBlock", "ByLayer", "Global")
	d.mlineStyles.ensure("Standard")
	d.tables.ensureDefaults()
	// references the Standard text style, created just above
	d.mleaderStyles.ensure("Standard")
	d.tables.stampLayers()
}

// Version returns the format generation used on export.
func (d *Document) Version() dxfver.Version { return d.version }

// LoadedVersion returns the version recorded in the loaded file, before
// the repair ladder was applied. Equals Version for new documents.
func (d *Document) LoadedVersion() dxfver.Version { return d.loadedVersion }

// SetVersion changes the export version. Unknown or unwritable versions
// are rejected with a VERSION error.
func (d *Document) SetVersion(s string) error {
	v, err := dxfver.Validate(s)
	if err != nil {
		return newError(ErrCodeVersion, s, "%v", err)
	}
	switch {
	case v == dxfver.R12 && d.version.After(dxfver.R12):
		slog.Warn("downgrading to R12 drops objects, classes and newer entity types",
			"from", d.version.Release())
	case v.Before(d.version):
		slog.Info("downgrading document", "from", d.version.Release(), "to", v.Release())
	}
	d.version = v
	_ = d.header.Set("$ACADVER", string(v))
	return nil
}

// Encoding returns the legacy text encoding recorded in $DWGCODEPAGE.
func (d *Document) Encoding() string { return d.encoding }

// SetEncoding changes the legacy text encoding.
func (d *Document) SetEncoding(enc string) error {
	if _, err := codepage.Lookup(enc); err != nil {
		return err
	}
	d.encoding = enc
	_ = d.header.Set("$DWGCODEPAGE", codepage.ToCodepage(enc))
	return nil
}

// Filename returns the path the document was read from or last saved
// to.
func (d *Document) Filename() string { return d.filename }

// Options returns the options the document was created with.
func (d *Document) Options() config.Options { return d.opts }

// Header returns the HEADER section.
func (d *Document) Header() *Header { return d.header }

// Classes returns the CLASSES section.
func (d *Document) Classes() *Classes { return d.classes }

// Tables returns the TABLES section.
func (d *Document) Tables() *Tables { return d.tables }

// Blocks returns the BLOCKS section.
func (d *Document) Blocks() *Blocks { return d.blocks }

// Objects returns the OBJECTS section.
func (d *Document) Objects() *Objects { return d.objects }

// Groups returns the ACAD_GROUP collection.
func (d *Document) Groups() *Groups { return d.groups }

// Materials returns the ACAD_MATERIAL collection.
func (d *Document) Materials() *Collection { return d.materials }

// MLineStyles returns the ACAD_MLINESTYLE collection.
func (d *Document) MLineStyles() *Collection { return d.mlineStyles }

// MLeaderStyles returns the ACAD_MLEADERSTYLE collection.
func (d *Document) MLeaderStyles() *Collection { return d.mleaderStyles }

// StoredSections returns the names of the sections kept verbatim.
func (d *Document) StoredSections() []string {
	names := make([]string, len(d.stored))
	for i, s := range d.stored {
		names[i] = s.Name
	}
	return names
}

// SetDimensionRenderer registers the renderer for dimension geometry.
// nil restores the no-op renderer.
func (d *Document) SetDimensionRenderer(r DimensionRenderer) {
	if r == nil {
		r = noopRenderer{}
	}
	d.dimRenderer = r
}

// AllocateHandle returns a handle unused by any entity of the document.
func (d *Document) AllocateHandle() handle.Handle {
	return d.db.Allocate()
}

// Lookup returns the entity stored under h.
func (d *Document) Lookup(h handle.Handle) (*entity.Entity, bool) {
	return d.db.Get(h)
}

// Len returns the number of entities in the document.
func (d *Document) Len() int { return d.db.Len() }

// Entities iterates every entity in ascending handle order, objects and
// table entries included.
func (d *Document) Entities() iter.Seq2[handle.Handle, *entity.Entity] {
	return d.db.All()
}

// add stores a new entity and returns it.
func (d *Document) add(e *entity.Entity) *entity.Entity {
	if err := d.db.Add(e); err != nil {
		// only new entities with null handles get here
		panic(err)
	}
	return e
}

// DeleteEntity unlinks h from whatever container holds it, removes it
// from every group and deletes it from the database. References held by
// other entities are left dangling; use ReplaceRef or the auditor to
// clean them up. Deleting an unknown handle is a no-op.
//
// A BLOCK_RECORD deletes its whole block as Blocks.Delete does. TABLE
// heads, block markers and LAYOUT objects return STRUCTURE_ENTITY; they
// go away only with the table, block or layout that holds them.
func (d *Document) DeleteEntity(h handle.Handle) error {
	e, ok := d.db.Get(h)
	if !ok {
		return nil
	}
	switch e.Type {
	case "TABLE", "BLOCK", "ENDBLK", "LAYOUT":
		return newError(ErrCodeStructureEntity, h.String(), "%s cannot be deleted on its own", e.Type)
	case "BLOCK_RECORD":
		if b, ok := d.blocks.byRecord[h]; ok {
			return d.blocks.Delete(b.Name())
		}
	}
	switch {
	case d.blocks.owns(e):
		d.blocks.unlinkAny(e)
	case d.tables.owns(e):
		d.tables.unlink(e)
	default:
		d.objects.unlink(h)
	}
	for _, child := range d.children(e) {
		d.groups.removeMember(child)
		d.db.Delete(child)
	}
	d.groups.removeMember(h)
	d.db.Delete(h)
	return nil
}

// children returns handles of sub-entities owned by e that are stored
// next to it (polyline vertices, attributes, SEQEND).
func (d *Document) children(e *entity.Entity) []handle.Handle {
	var out []handle.Handle
	for h, c := range d.db.All() {
		if c.Owner == e.Handle && isSubEntity(c.Type) {
			out = append(out, h)
		}
	}
	return out
}

// ReplaceRef re-points every pointer to from at to across the document.
// A null to removes the pointers. Returns the number of rewritten tags.
func (d *Document) ReplaceRef(from, to handle.Handle) int {
	n := 0
	for _, e := range d.db.All() {
		n += e.ReplaceRef(from, to)
	}
	return n
}

// warn records a compatibility warning once per distinct message.
func (d *Document) warn(msg string) {
	if d.warned[msg] {
		return
	}
	d.warned[msg] = true
	d.warnings = append(d.warnings, msg)
	slog.Warn("compatibility", "warning", msg)
}

// Warnings returns the recorded compatibility warnings in order.
func (d *Document) Warnings() []string {
	return slices.Clone(d.warnings)
}

// IsCompatible reports whether loading recorded no compatibility
// warnings.
func (d *Document) IsCompatible() bool {
	return len(d.warnings) == 0
}

// Cleanup removes stale references from the collections: dead group
// members and empty unnamed groups.
func (d *Document) Cleanup() {
	d.groups.Cleanup()
}
