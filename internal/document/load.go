package document

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/dxfio/internal/codepage"
	"github.com/roach88/dxfio/internal/config"
	"github.com/roach88/dxfio/internal/dxfver"
	"github.com/roach88/dxfio/internal/entity"
	"github.com/roach88/dxfio/internal/handle"
	"github.com/roach88/dxfio/internal/schema"
	"github.com/roach88/dxfio/internal/structure"
	"github.com/roach88/dxfio/internal/tags"
)

// loadState is a stage of the load pipeline. Stages run strictly in
// order; an error in any stage aborts the load.
type loadState int

const (
	stateRawTags loadState = iota
	stateStructuredSections
	stateHeaderReady
	stateEntitiesRegistered
	stateTablesWired
	stateBlocksWired
	stateLayoutsWired
	stateFinalized
)

var loadStateNames = [...]string{
	"RAW_TAGS", "STRUCTURED_SECTIONS", "HEADER_READY", "ENTITIES_REGISTERED",
	"TABLES_WIRED", "BLOCKS_WIRED", "LAYOUTS_WIRED", "FINALIZED",
}

func (s loadState) String() string {
	if int(s) < len(loadStateNames) {
		return loadStateNames[s]
	}
	return fmt.Sprintf("loadState(%d)", int(s))
}

// Read loads a document from decoded text. Use ReadFile to have the text
// encoding detected.
func Read(r io.Reader, opts config.Options, options ...Option) (*Document, error) {
	return Load(compile(tags.Tokenize(r), opts), opts, options...)
}

// compile applies the configured repair filters to raw tags and
// compiles points and typed values.
func compile(src tags.Stream, opts config.Options) tags.Stream {
	var filters []tags.Filter
	switch {
	case opts.LegacyMode:
		filters = append(filters, tags.ReorderCoordinates, tags.FilterInvalidPointCodes)
	case opts.FilterInvalidXDataGroupCodes:
		filters = append(filters, tags.FilterInvalidPointCodes)
	}
	return tags.Compile(tags.Chain(src, filters...))
}

// Load assembles a document from a compiled tag stream.
//
// Structural defects abort the load with a *tags.StructureError.
// Reference defects are repaired where a safe default exists and are
// otherwise recorded as compatibility warnings (see Warnings).
func Load(src tags.Stream, opts config.Options, options ...Option) (*Document, error) {
	l := &loader{
		doc:      newDocument(opts, options...),
		sections: make(map[string][]*entity.Entity),
	}
	st, err := structure.Load(src)
	if err != nil {
		return nil, err
	}
	l.st = st
	l.advance(stateStructuredSections)

	l.loadHeader()
	l.advance(stateHeaderReady)

	if err := l.fill(); err != nil {
		return nil, err
	}
	l.advance(stateEntitiesRegistered)

	l.wireTables()
	l.advance(stateTablesWired)

	l.wireBlocks()
	l.advance(stateBlocksWired)

	l.wireEntities()
	l.wireObjects()
	d := l.doc
	d.tables.resolveDimStyleSymbols()
	d.objects.ensureManagementDicts()
	d.layouts.load()
	d.layouts.ensureDefaults()
	l.advance(stateLayoutsWired)

	d.finalize()
	d.setCreated(true)
	l.checkReferences()
	l.advance(stateFinalized)
	return d, nil
}

type loader struct {
	doc      *Document
	state    loadState
	st       *structure.Structure
	sections map[string][]*entity.Entity
	lastMain *entity.Entity
}

func (l *loader) advance(next loadState) {
	if next != l.state+1 {
		panic(fmt.Sprintf("document: load state %s cannot follow %s", next, l.state))
	}
	slog.Debug("load state", "from", l.state, "to", next)
	l.state = next
}

// loadHeader reads the header, resolves the version through the repair
// ladder, the text encoding and the handle seed. A file without header
// is treated as R12.
func (l *loader) loadHeader() {
	d := l.doc
	if sec := l.st.Get(structure.Header); sec != nil {
		d.header = loadHeader(sec.Tags())
	} else {
		d.header = defaultHeader(dxfver.Legacy)
	}

	recorded := d.header.Str("$ACADVER", string(dxfver.Legacy))
	v, step := dxfver.Coerce(recorded)
	if step != dxfver.StepNone {
		slog.Info("upgrading document version", "recorded", recorded, "version", v, "release", v.Release(), "step", step)
	}
	d.loadedVersion = dxfver.Version(recorded)
	d.version = v
	_ = d.header.Set("$ACADVER", string(v))

	d.encoding = codepage.ToEncoding(d.header.Str("$DWGCODEPAGE", codepage.ToCodepage(codepage.Default)))

	if seed := d.header.Str("$HANDSEED", ""); seed != "" {
		h, err := handle.Parse(seed)
		if err == nil {
			err = d.db.Reset(h)
		}
		if err != nil {
			d.warn(fmt.Sprintf("invalid $HANDSEED %q", seed))
		}
	}

	if sec := l.st.Get(structure.Classes); sec != nil {
		d.classes = loadClasses(sec.Records)
	}
	d.acdsdata = l.st.Get(structure.AcDsData)
	for _, sec := range l.st.Sections {
		if !structure.IsManaged(sec.Name) {
			d.stored = append(d.stored, sec)
		}
	}
}

// fill registers every record of the entity sections. Records with a
// unique handle go first, so fresh handles for the remaining records
// are allocated above every handle of the file.
func (l *loader) fill() error {
	d := l.doc
	var pending []*entity.Entity
	for _, name := range []string{structure.Tables, structure.Blocks, structure.Entities, structure.Objects} {
		sec := l.st.Get(name)
		if sec == nil {
			continue
		}
		for _, rec := range sec.Records {
			if rec.Type() == "ENDTAB" {
				continue
			}
			e, err := entity.FromTags(rec)
			if err != nil {
				return fmt.Errorf("%s section: %w", name, err)
			}
			l.sections[name] = append(l.sections[name], e)
			if !e.Handle.IsNull() && !d.db.Has(e.Handle) {
				if err := d.db.Add(e); err != nil {
					if errors.Is(err, handle.ErrOutOfRange) {
						return fmt.Errorf("%w: %w", tags.NewStructureError("%s section: handle out of range", name), err)
					}
					return err
				}
				continue
			}
			if !e.Handle.IsNull() {
				d.warn(fmt.Sprintf("duplicate handle %s", e.Handle))
				e.Handle = handle.Null
			}
			pending = append(pending, e)
		}
	}
	for _, e := range pending {
		if err := d.db.Add(e); err != nil {
			return err
		}
	}
	return nil
}

// drop removes a record that cannot be placed anywhere.
func (l *loader) drop(e *entity.Entity) {
	l.doc.db.Delete(e.Handle)
}

func (l *loader) wireTables() {
	d := l.doc
	var cur *Table
	for _, e := range l.sections[structure.Tables] {
		if e.Type == "TABLE" {
			cur = d.tables.Get(e.Name())
			switch {
			case cur == nil:
				d.warn(fmt.Sprintf("unknown table %s", e.Name()))
				l.drop(e)
			case !cur.head.IsNull():
				// a repeated table continues the first one
				l.drop(e)
			default:
				cur.head = e.Handle
			}
			continue
		}
		if cur == nil || e.Type != cur.name {
			d.warn(fmt.Sprintf("%s entry outside of its table", e.Type))
			l.drop(e)
			continue
		}
		if !cur.link(e) {
			d.warn(fmt.Sprintf("duplicate %s entry %q", cur.name, e.Name()))
			l.drop(e)
		}
	}
	d.tables.ensureHeads()
	if dxfver.NeedsTableHandles(d.version) {
		d.tables.linkOwners()
		slog.Info("linked table entries to table heads", "version", d.loadedVersion)
	}
}

func (l *loader) wireBlocks() {
	d := l.doc
	records := d.tables.BlockRecords()
	var (
		block    *entity.Entity
		rec      *entity.Entity
		buffered []*entity.Entity
	)
	flush := func(endblk *entity.Entity) {
		b := d.blocks.attach(rec, block, endblk)
		l.lastMain = nil
		for _, e := range buffered {
			l.linkEntity(b, e)
		}
		block, rec, buffered = nil, nil, nil
	}

	for _, e := range l.sections[structure.Blocks] {
		switch e.Type {
		case "BLOCK":
			if block != nil {
				d.warn(fmt.Sprintf("block %s without ENDBLK", block.Name()))
				flush(nil)
			}
			name := e.Name()
			if mapped, ok := r12ToBlockName[strings.ToUpper(name)]; ok {
				name = mapped
				_ = e.Set(2, name)
				_ = e.Set(3, name)
			}
			r, ok := records.Get(name)
			if !ok {
				var err error
				if r, err = records.newEntry(name, nil); err != nil {
					panic(err)
				}
			}
			if _, taken := d.blocks.byRecord[r.Handle]; taken {
				d.warn(fmt.Sprintf("duplicate block definition %s", name))
				l.drop(e)
				continue
			}
			block, rec = e, r
		case "ENDBLK":
			if block == nil {
				l.drop(e)
				continue
			}
			flush(e)
		default:
			if block == nil {
				l.drop(e)
				continue
			}
			buffered = append(buffered, e)
		}
	}
	if block != nil {
		d.warn(fmt.Sprintf("block %s without ENDBLK", block.Name()))
		flush(nil)
	}
	d.blocks.ensureLayoutBlocks()
}

// linkEntity places e in b. Sub-entities stay with the main entity in
// front of them.
func (l *loader) linkEntity(b *BlockLayout, e *entity.Entity) {
	if isSubEntity(e.Type) && l.lastMain != nil {
		if !l.doc.db.Has(e.Owner) {
			e.Owner = l.lastMain.Handle
		}
	} else {
		l.lastMain = e
		e.Owner = b.record
	}
	b.link(e)
}

// wireEntities routes ENTITIES records by owner, falling back to the
// paper space flag for files without owners.
func (l *loader) wireEntities() {
	d := l.doc
	ms := d.blocks.modelspace()
	ps := d.blocks.activePaperspace()
	var last *BlockLayout
	l.lastMain = nil
	for _, e := range l.sections[structure.Entities] {
		target := ms
		if b, ok := d.blocks.byRecord[e.Owner]; ok {
			target = b
		} else if isSubEntity(e.Type) && last != nil {
			target = last
		} else if e.Int(tags.CodePaperSpace, 0) == 1 {
			target = ps
		}
		if target != last {
			l.lastMain = nil
		}
		last = target
		l.linkEntity(target, e)
	}
}

func (l *loader) wireObjects() {
	d := l.doc
	for i, e := range l.sections[structure.Objects] {
		d.objects.link(e.Handle)
		if i == 0 && isDictionary(e) {
			d.objects.rootdict = e.Handle
		}
	}
	d.objects.ensureRootDict()
}

func isDictionary(e *entity.Entity) bool {
	return e.Type == "DICTIONARY" || e.Type == "ACDBDICTIONARYWDFLT"
}

// checkReferences records warnings for references no repair could fix.
func (l *loader) checkReferences() {
	d := l.doc
	linetypes := d.tables.Linetypes()
	for _, e := range d.db.All() {
		if !e.Owner.IsNull() && !d.db.Has(e.Owner) {
			d.warn(fmt.Sprintf("owner handle %s does not exist", e.Owner))
		}
		if h := e.Ref(tags.CodeMaterial); !h.IsNull() {
			if m, ok := d.db.Get(h); !ok || m.Type != "MATERIAL" {
				d.warn(fmt.Sprintf("material handle %s does not exist", h))
			}
		}
		if e.Type == "LAYER" || schema.IsGraphical(e.Type) {
			if lt := e.Str(tags.CodeLinetype, ""); lt != "" && !linetypes.Has(lt) {
				d.warn(fmt.Sprintf("linetype %q is not defined", lt))
			}
		}
	}
}
