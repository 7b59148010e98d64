package document

import (
	"iter"

	"github.com/roach88/dxfio/internal/entity"
)

// ChainLayoutsAndBlocks yields the main entities of the model space, the
// paper space layouts in tab order and then every other block. OBJECTS
// and table entries are not included.
func (d *Document) ChainLayoutsAndBlocks() iter.Seq[*entity.Entity] {
	return func(yield func(*entity.Entity) bool) {
		seen := make(map[*BlockLayout]bool)
		var spaces []*BlockLayout
		for _, l := range d.layouts.inTabOrder() {
			spaces = append(spaces, l.BlockLayout)
		}
		spaces = append(spaces, d.blocks.order...)
		for _, b := range spaces {
			if seen[b] {
				continue
			}
			seen[b] = true
			for _, e := range b.Entities() {
				if !yield(e) {
					return
				}
			}
		}
	}
}

// GroupBy groups the entities of ChainLayoutsAndBlocks by key. Entities
// for which key reports false are left out.
func (d *Document) GroupBy(key func(*entity.Entity) (string, bool)) map[string][]*entity.Entity {
	groups := make(map[string][]*entity.Entity)
	for e := range d.ChainLayoutsAndBlocks() {
		k, ok := key(e)
		if !ok {
			continue
		}
		groups[k] = append(groups[k], e)
	}
	return groups
}

// GroupByCode groups entities by the value of a group code, e.g. 8 for
// layers. Entities without the code are left out.
func (d *Document) GroupByCode(code int) map[string][]*entity.Entity {
	return d.GroupBy(func(e *entity.Entity) (string, bool) {
		t, ok := e.Get(code)
		if !ok {
			return "", false
		}
		return t.Str(), true
	})
}
