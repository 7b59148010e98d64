package document

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/dxfio/internal/entity"
	"github.com/roach88/dxfio/internal/handle"
	"github.com/roach88/dxfio/internal/schema"
	"github.com/roach88/dxfio/internal/tags"
)

// Names of the layout blocks.
const (
	ModelSpaceBlock = "*Model_Space"
	PaperSpaceBlock = "*Paper_Space"
)

// Block flags (BLOCK code 70).
const (
	BlockAnonymous = 1
	BlockXRef      = 4
	BlockExternal  = 16
)

// R12 spells the layout block names differently.
var (
	r12ToBlockName = map[string]string{"$MODEL_SPACE": ModelSpaceBlock, "$PAPER_SPACE": PaperSpaceBlock}
	blockNameToR12 = map[string]string{entity.Key(ModelSpaceBlock): "$MODEL_SPACE", entity.Key(PaperSpaceBlock): "$PAPER_SPACE"}
)

// Sub-entities follow their main entity in the file and are owned by it.
var subEntityTypes = map[string]bool{"VERTEX": true, "ATTRIB": true, "SEQEND": true}

func isSubEntity(typ string) bool { return subEntityTypes[typ] }

// BlockLayout is a block definition: the BLOCK_RECORD entry, the BLOCK
// and ENDBLK markers and the entities in between. Model and paper space
// are block layouts too.
type BlockLayout struct {
	doc      *Document
	record   handle.Handle
	block    handle.Handle
	endblk   handle.Handle
	entities []handle.Handle
}

// Name returns the block name.
func (b *BlockLayout) Name() string { return b.Record().Name() }

// Handle returns the handle of the block record, the owner of every
// entity in the block.
func (b *BlockLayout) Handle() handle.Handle { return b.record }

// Record returns the BLOCK_RECORD entry.
func (b *BlockLayout) Record() *entity.Entity { return b.get(b.record) }

// Block returns the BLOCK marker.
func (b *BlockLayout) Block() *entity.Entity { return b.get(b.block) }

// EndBlk returns the ENDBLK marker.
func (b *BlockLayout) EndBlk() *entity.Entity { return b.get(b.endblk) }

func (b *BlockLayout) get(h handle.Handle) *entity.Entity {
	e, _ := b.doc.db.Get(h)
	return e
}

// IsModelSpace reports whether b is the model space block.
func (b *BlockLayout) IsModelSpace() bool {
	return entity.Key(b.Name()) == entity.Key(ModelSpaceBlock)
}

// IsPaperSpace reports whether b is the block of a paper space layout.
func (b *BlockLayout) IsPaperSpace() bool {
	return strings.HasPrefix(entity.Key(b.Name()), entity.Key(PaperSpaceBlock))
}

// IsActivePaperSpace reports whether b is the active paper space block.
func (b *BlockLayout) IsActivePaperSpace() bool {
	return entity.Key(b.Name()) == entity.Key(PaperSpaceBlock)
}

// IsLayoutBlock reports whether b belongs to a layout.
func (b *BlockLayout) IsLayoutBlock() bool {
	return b.IsModelSpace() || b.IsPaperSpace()
}

// IsXRef reports whether b references an external drawing.
func (b *BlockLayout) IsXRef() bool {
	return b.Block().Int(70, 0)&BlockXRef != 0
}

// Len returns the number of main entities.
func (b *BlockLayout) Len() int { return len(b.Entities()) }

// Entities returns the main entities in order. Sub-entities are reached
// through their owner.
func (b *BlockLayout) Entities() []*entity.Entity {
	var out []*entity.Entity
	for _, h := range b.entities {
		e, ok := b.doc.db.Get(h)
		if !ok || isSubEntity(e.Type) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// contains reports whether h is linked into b.
func (b *BlockLayout) contains(h handle.Handle) bool {
	return slices.Contains(b.entities, h)
}

// link appends an entity of the loaded file.
func (b *BlockLayout) link(e *entity.Entity) {
	b.entities = append(b.entities, e.Handle)
	b.doc.blocks.entityBlock[e.Handle] = b
}

// setSpace stamps the owner and the paper space flag of a main entity.
func (b *BlockLayout) setSpace(e *entity.Entity) {
	e.Owner = b.record
	switch {
	case b.IsPaperSpace():
		_ = e.SetIn("AcDbEntity", tags.CodePaperSpace, 1)
	case b.IsModelSpace():
		e.RemoveIn("AcDbEntity", tags.CodePaperSpace)
	}
}

// AddEntity adds e to the block. An entity without a handle is stored in
// the document first. An entity of another document, another block or
// a non-graphical entity returns FOREIGN_ENTITY.
func (b *BlockLayout) AddEntity(e *entity.Entity) error {
	if !schema.IsGraphical(e.Type) {
		return newError(ErrCodeForeignEntity, e.Type, "%s is not a graphical entity", e.Type)
	}
	if e.Handle.IsNull() {
		b.doc.add(e)
	} else if cur, ok := b.doc.db.Get(e.Handle); !ok || cur != e {
		return newError(ErrCodeForeignEntity, e.Handle.String(), "entity is not part of this document")
	} else if owner, ok := b.doc.blocks.entityBlock[e.Handle]; ok {
		if owner == b {
			return nil
		}
		return newError(ErrCodeForeignEntity, e.Handle.String(), "entity belongs to block %s", owner.Name())
	}
	b.setSpace(e)
	b.link(e)
	return nil
}

// NewEntity builds an entity of a declared type from schema defaults
// and values, and adds it to the block.
func (b *BlockLayout) NewEntity(typ string, values map[int]any) (*entity.Entity, error) {
	def, ok := schema.Lookup(typ)
	if !ok || !def.Graphical {
		return nil, fmt.Errorf("cannot create entity of type %s", typ)
	}
	body, err := def.Build(values)
	if err != nil {
		return nil, err
	}
	e := entity.New(typ, body)
	if err := b.AddEntity(e); err != nil {
		return nil, err
	}
	return e, nil
}

// AddLine adds a LINE from start to end.
func (b *BlockLayout) AddLine(start, end tags.Point, values map[int]any) (*entity.Entity, error) {
	v := merge(values, map[int]any{10: start, 11: end})
	return b.NewEntity("LINE", v)
}

// AddCircle adds a CIRCLE.
func (b *BlockLayout) AddCircle(center tags.Point, radius float64, values map[int]any) (*entity.Entity, error) {
	v := merge(values, map[int]any{10: center, 40: radius})
	return b.NewEntity("CIRCLE", v)
}

func merge(values, fixed map[int]any) map[int]any {
	out := make(map[int]any, len(values)+len(fixed))
	for k, v := range values {
		out[k] = v
	}
	for k, v := range fixed {
		out[k] = v
	}
	return out
}

// family returns e and its sub-entities in link order.
func (b *BlockLayout) family(e *entity.Entity) []handle.Handle {
	out := []handle.Handle{e.Handle}
	for _, h := range b.entities {
		if c, ok := b.doc.db.Get(h); ok && c.Owner == e.Handle && isSubEntity(c.Type) {
			out = append(out, h)
		}
	}
	return out
}

// UnlinkEntity removes e and its sub-entities from the block without
// deleting them. Entities of other blocks return FOREIGN_ENTITY.
func (b *BlockLayout) UnlinkEntity(e *entity.Entity) error {
	if !b.contains(e.Handle) {
		return newError(ErrCodeForeignEntity, e.Handle.String(), "entity is not in block %s", b.Name())
	}
	b.unlink(b.family(e))
	e.Owner = handle.Null
	return nil
}

func (b *BlockLayout) unlink(hs []handle.Handle) {
	b.entities = slices.DeleteFunc(b.entities, func(h handle.Handle) bool {
		return slices.Contains(hs, h)
	})
	for _, h := range hs {
		delete(b.doc.blocks.entityBlock, h)
	}
}

// DeleteEntity unlinks e and deletes it and its sub-entities from the
// document.
func (b *BlockLayout) DeleteEntity(e *entity.Entity) error {
	if !b.contains(e.Handle) {
		return newError(ErrCodeForeignEntity, e.Handle.String(), "entity is not in block %s", b.Name())
	}
	return b.doc.DeleteEntity(e.Handle)
}

// MoveToLayout moves e with its sub-entities to target.
func (b *BlockLayout) MoveToLayout(e *entity.Entity, target *BlockLayout) error {
	if !b.contains(e.Handle) {
		return newError(ErrCodeForeignEntity, e.Handle.String(), "entity is not in block %s", b.Name())
	}
	if target.doc != b.doc {
		return newError(ErrCodeForeignEntity, target.Name(), "target layout belongs to another document")
	}
	fam := b.family(e)
	b.unlink(fam)
	target.setSpace(e)
	for _, h := range fam {
		if c, ok := b.doc.db.Get(h); ok {
			target.link(c)
		}
	}
	return nil
}

// Blocks is the BLOCKS section.
type Blocks struct {
	doc         *Document
	order       []*BlockLayout
	byRecord    map[handle.Handle]*BlockLayout
	entityBlock map[handle.Handle]*BlockLayout
}

func newBlocks(d *Document) *Blocks {
	return &Blocks{
		doc:         d,
		byRecord:    make(map[handle.Handle]*BlockLayout),
		entityBlock: make(map[handle.Handle]*BlockLayout),
	}
}

// Get returns the block called name.
func (bs *Blocks) Get(name string) (*BlockLayout, bool) {
	rec, ok := bs.doc.tables.BlockRecords().Get(name)
	if !ok {
		return nil, false
	}
	b, ok := bs.byRecord[rec.Handle]
	return b, ok
}

// Has reports whether a block called name exists.
func (bs *Blocks) Has(name string) bool {
	_, ok := bs.Get(name)
	return ok
}

// Len returns the number of blocks, layout blocks included.
func (bs *Blocks) Len() int { return len(bs.order) }

// All returns the blocks in definition order.
func (bs *Blocks) All() []*BlockLayout { return slices.Clone(bs.order) }

// Block returns the block called name, or UNDEFINED_BLOCK.
func (d *Document) Block(name string) (*BlockLayout, error) {
	b, ok := d.blocks.Get(name)
	if !ok {
		return nil, newError(ErrCodeUndefinedBlock, name, "block not defined")
	}
	return b, nil
}

// NewBlock creates an empty block definition with base point base.
func (d *Document) NewBlock(name string, base tags.Point) (*BlockLayout, error) {
	return d.blocks.New(name, base)
}

// New creates a block definition. Invalid names return INVALID_NAME and
// existing names DUPLICATE_ENTRY.
func (bs *Blocks) New(name string, base tags.Point) (*BlockLayout, error) {
	if !entity.IsValidName(strings.TrimPrefix(name, "*")) {
		return nil, newError(ErrCodeInvalidName, name, "invalid block name")
	}
	if bs.doc.tables.BlockRecords().Has(name) {
		return nil, newError(ErrCodeDuplicateEntry, name, "block already exists")
	}
	return bs.create(name, map[int]any{10: base}), nil
}

// NewAnonymous creates a block named "*<kind><n>" with the anonymous
// flag set, e.g. "*U1".
func (bs *Blocks) NewAnonymous(kind string) *BlockLayout {
	name := bs.unique("*" + kind)
	return bs.create(name, map[int]any{70: BlockAnonymous})
}

// AddXRef creates a block that references the external drawing path.
func (d *Document) AddXRef(name, path string, base tags.Point) (*BlockLayout, error) {
	b, err := d.blocks.New(name, base)
	if err != nil {
		return nil, err
	}
	blk := b.Block()
	_ = blk.Set(70, BlockXRef|BlockExternal)
	_ = blk.Set(1, path)
	return b, nil
}

// unique returns prefix followed by the first number not yet used as a
// block name.
func (bs *Blocks) unique(prefix string) string {
	for i := 1; ; i++ {
		name := fmt.Sprintf("%s%d", prefix, i)
		if !bs.doc.tables.BlockRecords().Has(name) {
			return name
		}
	}
}

// create builds record, BLOCK and ENDBLK without name checks.
func (bs *Blocks) create(name string, values map[int]any) *BlockLayout {
	rec, err := bs.doc.tables.BlockRecords().newEntry(name, nil)
	if err != nil {
		panic(err)
	}
	return bs.attach(rec, bs.newBlockMarker(name, values), nil)
}

func (bs *Blocks) newBlockMarker(name string, values map[int]any) *entity.Entity {
	body, err := schema.MustLookup("BLOCK").Build(merge(values, map[int]any{2: name, 3: name}))
	if err != nil {
		panic(err)
	}
	return bs.doc.add(entity.New("BLOCK", body))
}

// attach wires a record to its markers, creating ENDBLK if endblk is nil.
func (bs *Blocks) attach(rec, block, endblk *entity.Entity) *BlockLayout {
	if endblk == nil {
		body, _ := schema.MustLookup("ENDBLK").Build(nil)
		endblk = bs.doc.add(entity.New("ENDBLK", body))
	}
	block.Owner = rec.Handle
	endblk.Owner = rec.Handle
	b := &BlockLayout{doc: bs.doc, record: rec.Handle, block: block.Handle, endblk: endblk.Handle}
	bs.order = append(bs.order, b)
	bs.byRecord[rec.Handle] = b
	return b
}

// ensureLayoutBlocks creates the model and paper space blocks if the
// document lacks them.
func (bs *Blocks) ensureLayoutBlocks() {
	for _, name := range []string{ModelSpaceBlock, PaperSpaceBlock} {
		if bs.Has(name) {
			continue
		}
		if rec, ok := bs.doc.tables.BlockRecords().Get(name); ok {
			bs.attach(rec, bs.newBlockMarker(name, nil), nil)
			continue
		}
		bs.create(name, nil)
	}
}

// modelspace returns the model space block.
func (bs *Blocks) modelspace() *BlockLayout {
	b, _ := bs.Get(ModelSpaceBlock)
	return b
}

// activePaperspace returns the active paper space block.
func (bs *Blocks) activePaperspace() *BlockLayout {
	b, _ := bs.Get(PaperSpaceBlock)
	return b
}

// Delete removes a block with all its entities. Layout blocks return
// LAYOUT_BLOCK; they go with their layout.
func (bs *Blocks) Delete(name string) error {
	b, ok := bs.Get(name)
	if !ok {
		return newError(ErrCodeEntryNotFound, name, "block not found")
	}
	if b.IsLayoutBlock() {
		return newError(ErrCodeLayoutBlock, name, "layout blocks are deleted with their layout")
	}
	bs.remove(b)
	return nil
}

// remove deletes b including its layout block status.
func (bs *Blocks) remove(b *BlockLayout) {
	for _, h := range slices.Clone(b.entities) {
		bs.doc.groups.removeMember(h)
		bs.doc.db.Delete(h)
		delete(bs.entityBlock, h)
	}
	b.entities = nil
	bs.doc.db.Delete(b.block)
	bs.doc.db.Delete(b.endblk)
	bs.order = slices.DeleteFunc(bs.order, func(x *BlockLayout) bool { return x == b })
	delete(bs.byRecord, b.record)
	bs.doc.tables.BlockRecords().unlinkHandle(b.record)
	bs.doc.db.Delete(b.record)
}

// rename changes the name of b in the record and the BLOCK marker.
func (bs *Blocks) rename(b *BlockLayout, name string) error {
	if err := bs.doc.tables.BlockRecords().rename(b.Name(), name); err != nil {
		return err
	}
	blk := b.Block()
	_ = blk.Set(2, name)
	_ = blk.Set(3, name)
	return nil
}

// swapNames exchanges the names of two blocks.
func (bs *Blocks) swapNames(a, b *BlockLayout) error {
	na, nb := a.Name(), b.Name()
	tmp := bs.unique("*TMP_SWAP")
	if err := bs.rename(a, tmp); err != nil {
		return err
	}
	if err := bs.rename(b, na); err != nil {
		return err
	}
	return bs.rename(a, nb)
}

// owns reports whether e is a block marker or an entity of a block.
func (bs *Blocks) owns(e *entity.Entity) bool {
	if e.Type == "BLOCK" || e.Type == "ENDBLK" {
		return true
	}
	_, ok := bs.entityBlock[e.Handle]
	return ok
}

// unlinkAny removes e from its block.
func (bs *Blocks) unlinkAny(e *entity.Entity) {
	b, ok := bs.entityBlock[e.Handle]
	if !ok {
		return
	}
	b.unlink(b.family(e))
}

// blockOf returns the block holding the entity h.
func (bs *Blocks) blockOf(h handle.Handle) (*BlockLayout, bool) {
	b, ok := bs.entityBlock[h]
	return b, ok
}

// Standard arrow names as used by dimension styles.
var standardArrows = []string{
	"CLOSEDBLANK", "CLOSED", "DOT", "ARCHTICK", "OBLIQUE", "OPEN",
	"ORIGIN", "ORIGIN2", "OPEN90", "OPEN30", "DOTSMALL", "DOTBLANK",
	"SMALL", "BOXBLANK", "BOXFILLED", "DATUMBLANK", "DATUMFILLED",
	"INTEGRAL", "NONE",
}

// IsStandardArrow reports whether name is a standard arrow, with or
// without the leading underscore of its block name.
func IsStandardArrow(name string) bool {
	return slices.Contains(standardArrows, strings.ToUpper(strings.TrimPrefix(name, "_")))
}

// AcquireArrow returns the block name for an arrow and creates the block
// of a standard arrow on first use. An empty name is the default closed
// filled arrow, which needs no block. Other names must be existing
// blocks, otherwise UNDEFINED_BLOCK is returned.
func (d *Document) AcquireArrow(name string) (string, error) {
	if name == "" {
		return "", nil
	}
	if IsStandardArrow(name) {
		block := "_" + strings.ToUpper(strings.TrimPrefix(name, "_"))
		if !d.blocks.Has(block) {
			b := d.blocks.create(block, nil)
			// unit-size marker, scaled by the dimension
			if _, err := b.AddLine(tags.Vec3(-1, 0, 0), tags.Vec3(0, 0, 0), nil); err != nil {
				return "", err
			}
		}
		return block, nil
	}
	if d.blocks.Has(name) {
		return name, nil
	}
	return "", newError(ErrCodeUndefinedBlock, name, "arrow block not defined")
}

// export writes the BLOCKS section content. Entities of the model space
// and the active paper space are written to ENTITIES instead.
func (bs *Blocks) export(x *exporter) {
	for _, b := range bs.order {
		x.block(b.Block())
		if !b.IsModelSpace() && !b.IsActivePaperSpace() {
			for _, h := range b.entities {
				if e, ok := bs.doc.db.Get(h); ok {
					x.entity(e)
				}
			}
		}
		if e := b.EndBlk(); e != nil {
			x.entity(e)
		}
	}
}
