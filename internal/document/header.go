package document

import (
	"github.com/roach88/dxfio/internal/dxfver"
	"github.com/roach88/dxfio/internal/tags"
)

// headerVarDef describes a known header variable.
type headerVarDef struct {
	Name    string
	Code    int
	Default any
	Min     dxfver.Version // oldest version that knows the variable
	Max     dxfver.Version // newest version that knows it, "" for open
}

// headerVars is the default header of a new document, in output order.
var headerVars = []headerVarDef{
	{Name: "$ACADVER", Code: 1, Default: string(dxfver.Default)},
	{Name: "$ACADMAINTVER", Code: 70, Default: 0, Min: dxfver.R2000},
	{Name: "$DWGCODEPAGE", Code: 3, Default: "ANSI_1252"},
	{Name: "$INSBASE", Code: 10, Default: tags.Vec3(0, 0, 0)},
	{Name: "$EXTMIN", Code: 10, Default: tags.Vec3(1e20, 1e20, 1e20)},
	{Name: "$EXTMAX", Code: 10, Default: tags.Vec3(-1e20, -1e20, -1e20)},
	{Name: "$LIMMIN", Code: 10, Default: tags.Vec2(0, 0)},
	{Name: "$LIMMAX", Code: 10, Default: tags.Vec2(420, 297)},
	{Name: "$ORTHOMODE", Code: 70, Default: 0},
	{Name: "$LTSCALE", Code: 40, Default: 1.0},
	{Name: "$TEXTSTYLE", Code: 7, Default: "Standard"},
	{Name: "$CLAYER", Code: 8, Default: "0"},
	{Name: "$CELTYPE", Code: 6, Default: "ByLayer"},
	{Name: "$CECOLOR", Code: 62, Default: 256},
	{Name: "$DIMSTYLE", Code: 2, Default: "Standard"},
	{Name: "$HANDLING", Code: 70, Default: 1, Max: dxfver.R14},
	{Name: "$TDCREATE", Code: 40, Default: 0.0},
	{Name: "$TDUPDATE", Code: 40, Default: 0.0},
	{Name: "$HANDSEED", Code: 5, Default: "20"},
	{Name: "$MEASUREMENT", Code: 70, Default: 1, Min: dxfver.R2000},
	{Name: "$INSUNITS", Code: 70, Default: 6, Min: dxfver.R2000},
	{Name: "$LWDISPLAY", Code: 290, Default: 0, Min: dxfver.R2000},
	{Name: "$PSTYLEMODE", Code: 290, Default: 1, Min: dxfver.R2000},
	{Name: "$CMATERIAL", Code: 347, Default: "45", Min: dxfver.R2007},
	{Name: "$FINGERPRINTGUID", Code: 2, Default: "", Min: dxfver.R2000},
	{Name: "$VERSIONGUID", Code: 2, Default: "", Min: dxfver.R2000},
}

var headerVarIndex = func() map[string]*headerVarDef {
	m := make(map[string]*headerVarDef, len(headerVars))
	for i := range headerVars {
		m[headerVars[i].Name] = &headerVars[i]
	}
	return m
}()

// Header holds the header variables in file order. Each variable keeps
// the tags that follow its (9, $NAME) tag, usually exactly one.
type Header struct {
	order  []string
	values map[string]tags.Tags
}

func newHeader() *Header {
	return &Header{values: make(map[string]tags.Tags)}
}

// defaultHeader returns a header with every known variable at its
// default, $ACADVER set to v.
func defaultHeader(v dxfver.Version) *Header {
	h := newHeader()
	for _, def := range headerVars {
		h.setTag(def.Name, tags.New(def.Code, def.Default))
	}
	h.setTag("$ACADVER", tags.New(1, string(v)))
	return h
}

// loadHeader reads the tags of a HEADER section.
func loadHeader(ts tags.Tags) *Header {
	h := newHeader()
	name := ""
	for _, t := range ts {
		if t.Code == tags.CodeVariable {
			name = t.Str()
			if _, ok := h.values[name]; !ok {
				h.order = append(h.order, name)
			}
			h.values[name] = nil
			continue
		}
		if name == "" {
			// tags before the first variable carry no meaning
			continue
		}
		h.values[name] = append(h.values[name], t)
	}
	return h
}

// Has reports whether the variable exists.
func (h *Header) Has(name string) bool {
	_, ok := h.values[name]
	return ok
}

// Get returns the first tag of a variable.
func (h *Header) Get(name string) (tags.Tag, bool) {
	ts := h.values[name]
	if len(ts) == 0 {
		return tags.Tag{}, false
	}
	return ts[0], true
}

// Str returns a variable as string, or def if unset.
func (h *Header) Str(name, def string) string {
	if t, ok := h.Get(name); ok {
		return t.Str()
	}
	return def
}

// Set assigns value to a variable. Known variables use their declared
// group code; unknown variables keep the code they already have and
// default to a string (code 1) otherwise.
func (h *Header) Set(name string, value any) error {
	code := 1
	if def, ok := headerVarIndex[name]; ok {
		code = def.Code
	} else if t, ok := h.Get(name); ok {
		code = t.Code
	}
	t, err := tags.Make(code, value)
	if err != nil {
		return err
	}
	h.setTag(name, t)
	return nil
}

func (h *Header) setTag(name string, t tags.Tag) {
	if _, ok := h.values[name]; !ok {
		h.order = append(h.order, name)
	}
	h.values[name] = tags.Tags{t}
}

// Delete removes a variable.
func (h *Header) Delete(name string) {
	if _, ok := h.values[name]; !ok {
		return
	}
	delete(h.values, name)
	for i, n := range h.order {
		if n == name {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
}

// Names returns the variable names in output order.
func (h *Header) Names() []string {
	return append([]string(nil), h.order...)
}

// Len returns the number of variables.
func (h *Header) Len() int { return len(h.order) }

// validFor reports whether a variable can be written for v. Unknown
// variables are always written.
func validFor(name string, v dxfver.Version) bool {
	def, ok := headerVarIndex[name]
	if !ok {
		return true
	}
	if def.Min != "" && v.Before(def.Min) {
		return false
	}
	if def.Max != "" && v.After(def.Max) {
		return false
	}
	return true
}

// content returns the HEADER section body for v.
func (h *Header) content(v dxfver.Version) tags.Tags {
	var out tags.Tags
	for _, name := range h.order {
		if !validFor(name, v) {
			continue
		}
		out = append(out, tags.Tag{Code: tags.CodeVariable, Value: name})
		out = append(out, h.values[name]...)
	}
	return out
}

// Float returns a variable as float, or def if unset.
func (h *Header) Float(name string, def float64) float64 {
	if t, ok := h.Get(name); ok {
		return t.Float()
	}
	return def
}

// Int returns a variable as integer, or def if unset.
func (h *Header) Int(name string, def int64) int64 {
	if t, ok := h.Get(name); ok {
		return t.Int()
	}
	return def
}
