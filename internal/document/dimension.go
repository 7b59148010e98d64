package document

import (
	"github.com/roach88/dxfio/internal/entity"
)

// DimensionRenderer creates the geometry block of a DIMENSION entity.
// The document calls it on export for every dimension whose geometry
// block (code 2) is missing. A renderer typically creates an anonymous
// block with NewAnonymousBlock and stores its name in the dimension.
type DimensionRenderer interface {
	Render(d *Document, dim *entity.Entity) error
}

// noopRenderer leaves dimensions without geometry.
type noopRenderer struct{}

func (noopRenderer) Render(*Document, *entity.Entity) error { return nil }

// NewAnonymousBlock creates an anonymous block for generated geometry,
// "*D<n>" for kind "D".
func (d *Document) NewAnonymousBlock(kind string) *BlockLayout {
	return d.blocks.NewAnonymous(kind)
}

func (d *Document) renderDimensions() error {
	for _, e := range d.db.All() {
		if e.Type != "DIMENSION" {
			continue
		}
		if name := e.Str(2, ""); name != "" && d.blocks.Has(name) {
			continue
		}
		if err := d.dimRenderer.Render(d, e); err != nil {
			return err
		}
	}
	return nil
}
