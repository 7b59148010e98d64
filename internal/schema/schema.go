// Package schema declares the attribute layout of the entity types the
// document creates itself: table entries, block markers, the objects
// behind layouts and collections, and a few graphical entities.
//
// Loaded entities of any other type keep their tags verbatim; schema only
// matters when an entity is built from scratch or when attributes newer
// than the target version have to be dropped on export.
package schema

import (
	"maps"
	"slices"

	"github.com/roach88/dxfio/internal/dxfver"
	"github.com/roach88/dxfio/internal/tags"
)

// Attr is one attribute of a subclass.
type Attr struct {
	Code    int
	Default any            // nil: written only when a value is given
	Min     dxfver.Version // "" or R12: valid for every version
}

// Subclass groups attributes under a subclass marker. An empty Marker
// writes the attributes without a marker.
type Subclass struct {
	Marker string
	Attrs  []Attr
}

// Def declares one entity type.
type Def struct {
	Type       string
	Subclasses []Subclass
	Graphical  bool
	Min        dxfver.Version
}

// Build returns a body for a new entity. values override defaults by
// code. A code declared by several subclasses goes to the last of them,
// and within a subclass to its first attribute with that code. Values for
// codes the schema does not declare are appended in code order.
func (d *Def) Build(values map[int]any) (tags.Tags, error) {
	owner := make(map[int]int, len(values))
	for i, sc := range d.Subclasses {
		for _, a := range sc.Attrs {
			if _, ok := values[a.Code]; ok {
				owner[a.Code] = i
			}
		}
	}
	used := make(map[int]bool, len(values))
	var body tags.Tags
	for i, sc := range d.Subclasses {
		if sc.Marker != "" {
			body = append(body, tags.Tag{Code: tags.CodeSubclass, Value: sc.Marker})
		}
		for _, a := range sc.Attrs {
			v := a.Default
			if given, ok := values[a.Code]; ok && owner[a.Code] == i && !used[a.Code] {
				used[a.Code] = true
				v = given
			}
			if v == nil {
				continue
			}
			t, err := tags.Make(a.Code, v)
			if err != nil {
				return nil, err
			}
			body = append(body, t)
		}
	}
	for _, code := range slices.Sorted(maps.Keys(values)) {
		if used[code] {
			continue
		}
		t, err := tags.Make(code, values[code])
		if err != nil {
			return nil, err
		}
		body = append(body, t)
	}
	return body, nil
}

// minVersions returns the codes that require a newer version than R12.
func (d *Def) minVersions() map[int]dxfver.Version {
	out := make(map[int]dxfver.Version)
	for _, sc := range d.Subclasses {
		for _, a := range sc.Attrs {
			if a.Min.After(dxfver.R12) {
				out[a.Code] = a.Min
			}
		}
	}
	return out
}

// Lookup returns the declaration for typ.
func Lookup(typ string) (*Def, bool) {
	d, ok := registry[typ]
	return d, ok
}

// MustLookup is Lookup for types declared in this package.
func MustLookup(typ string) *Def {
	d, ok := registry[typ]
	if !ok {
		panic("schema: undeclared type " + typ)
	}
	return d
}

// Filter drops attributes of body that are not valid for v. Bodies of
// undeclared types are returned unchanged.
func Filter(typ string, body tags.Tags, v dxfver.Version) tags.Tags {
	d, ok := registry[typ]
	if !ok {
		return body
	}
	mins := d.minVersions()
	if len(mins) == 0 {
		return body
	}
	out := make(tags.Tags, 0, len(body))
	for _, t := range body {
		if t.Code >= tags.CodeXDataAppID {
			out = append(out, t)
			continue
		}
		if m, ok := mins[t.Code]; ok && v.Before(m) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// IsGraphical reports whether typ is a graphical entity, i.e. lives in a
// layout or block rather than in OBJECTS.
func IsGraphical(typ string) bool {
	if d, ok := registry[typ]; ok {
		return d.Graphical
	}
	return graphicalTypes[typ]
}

// MinVersion returns the oldest version that knows typ.
func MinVersion(typ string) dxfver.Version {
	if d, ok := registry[typ]; ok && d.Min != "" {
		return d.Min
	}
	if r2000Types[typ] {
		return dxfver.R2000
	}
	return dxfver.R12
}
