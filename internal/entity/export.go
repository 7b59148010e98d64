package entity

import (
	"maps"
	"slices"

	"github.com/roach88/dxfio/internal/dxfver"
	"github.com/roach88/dxfio/internal/handle"
	"github.com/roach88/dxfio/internal/tags"
)

// ExportOptions controls version gating of the structural tags.
type ExportOptions struct {
	Version      dxfver.Version
	WriteHandles bool

	// Filter, when set, drops body tags not valid for Version.
	Filter func(typ string, body tags.Tags, v dxfver.Version) tags.Tags

	// Resolve maps symbolic references back to handles. Unresolved
	// symbols are omitted.
	Resolve func(code int, name string) handle.Handle
}

// Export writes the entity as one record.
func (e *Entity) Export(w tags.Writer, opts ExportOptions) {
	w.WriteTag(tags.Tag{Code: tags.CodeStructure, Value: e.Type})
	modern := opts.Version.After(dxfver.R12)
	body := e.Body
	isTable := e.Type == "TABLE"
	if isTable && len(body) > 0 && body[0].Code == tags.CodeName {
		// table heads carry their name before the handle
		w.WriteTag(body[0])
		body = body[1:]
	}
	if opts.WriteHandles && !e.Handle.IsNull() {
		w.WriteTag(tags.Tag{Code: HandleCode(e.Type), Value: e.Handle.String()})
	}
	if modern {
		for _, g := range e.AppData {
			tags.WriteAll(w, g)
		}
		if !e.Owner.IsNull() || isTable {
			w.WriteTag(tags.Tag{Code: tags.CodeOwner, Value: e.Owner.String()})
		}
	}

	if opts.Filter != nil {
		body = opts.Filter(e.Type, body, opts.Version)
	}
	written := make(map[int]bool, len(e.Symbols))
	for _, t := range body {
		if !modern && (t.Code == tags.CodeSubclass || t.Code == tags.CodeAppData ||
			(tags.IsPointerCode(t.Code) && t.Code != tags.CodeXDataHandle)) {
			continue
		}
		if name, ok := e.Symbols[t.Code]; ok {
			written[t.Code] = true
			if h := e.resolve(opts, t.Code, name); !h.IsNull() {
				w.WriteTag(tags.Tag{Code: t.Code, Value: h.String()})
			}
			continue
		}
		w.WriteTag(t)
	}
	if modern {
		// symbols set in memory without a tag in the body
		for _, code := range sortedCodes(e.Symbols) {
			if written[code] {
				continue
			}
			if h := e.resolve(opts, code, e.Symbols[code]); !h.IsNull() {
				w.WriteTag(tags.Tag{Code: code, Value: h.String()})
			}
		}
	}
}

func (e *Entity) resolve(opts ExportOptions, code int, name string) handle.Handle {
	if opts.Resolve == nil {
		return handle.Null
	}
	return opts.Resolve(code, name)
}

func sortedCodes(m map[int]string) []int {
	codes := slices.Collect(maps.Keys(m))
	slices.Sort(codes)
	return codes
}

// Tags returns the exported record in memory.
func (e *Entity) Tags(opts ExportOptions) tags.Tags {
	var c tags.Collector
	e.Export(&c, opts)
	return c.Tags
}
