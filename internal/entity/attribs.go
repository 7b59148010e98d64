package entity

import (
	"github.com/roach88/dxfio/internal/handle"
	"github.com/roach88/dxfio/internal/tags"
)

// Get returns the first body tag with code, ignoring extended data.
func (e *Entity) Get(code int) (tags.Tag, bool) {
	for _, t := range e.attribs() {
		if t.Code == code {
			return t, true
		}
	}
	return tags.Tag{}, false
}

// Has reports whether the body carries code outside extended data.
func (e *Entity) Has(code int) bool {
	_, ok := e.Get(code)
	return ok
}

// Str returns the string value of code, or def.
func (e *Entity) Str(code int, def string) string {
	if t, ok := e.Get(code); ok {
		return t.Str()
	}
	return def
}

// Int returns the integer value of code, or def.
func (e *Entity) Int(code int, def int64) int64 {
	if t, ok := e.Get(code); ok {
		return t.Int()
	}
	return def
}

// Float returns the float value of code, or def.
func (e *Entity) Float(code int, def float64) float64 {
	if t, ok := e.Get(code); ok {
		return t.Float()
	}
	return def
}

// Ref returns the handle stored under a pointer code, or Null.
func (e *Entity) Ref(code int) handle.Handle {
	t, ok := e.Get(code)
	if !ok {
		return handle.Null
	}
	h, err := handle.Parse(t.Str())
	if err != nil {
		return handle.Null
	}
	return h
}

// Name returns the record name (code 2).
func (e *Entity) Name() string {
	return e.Str(tags.CodeName, "")
}

// Layer returns the layer name (code 8), "0" if unset.
func (e *Entity) Layer() string {
	return e.Str(tags.CodeLayer, "0")
}

// Set replaces the first tag with code, or inserts a new one before
// extended data. The value is cast like tags.New does.
func (e *Entity) Set(code int, value any) error {
	t, err := tags.Make(code, value)
	if err != nil {
		return err
	}
	n := e.xdataStart()
	for i := 0; i < n; i++ {
		if e.Body[i].Code == code {
			e.Body[i] = t
			return nil
		}
	}
	e.Body = insert(e.Body, n, t)
	return nil
}

// SetRef stores a handle under a pointer code; Null removes the tag.
func (e *Entity) SetRef(code int, h handle.Handle) {
	if h.IsNull() {
		e.Remove(code)
		return
	}
	_ = e.Set(code, h.String())
}

// Remove deletes every non-xdata tag with code.
func (e *Entity) Remove(code int) {
	n := e.xdataStart()
	out := e.Body[:0:0]
	for i, t := range e.Body {
		if i < n && t.Code == code {
			continue
		}
		out = append(out, t)
	}
	e.Body = out
}

// HasXData reports whether an extended data group for appid exists.
func (e *Entity) HasXData(appid string) bool {
	for _, t := range e.Body[e.xdataStart():] {
		if t.Code == tags.CodeXDataAppID && t.Str() == appid {
			return true
		}
	}
	return false
}

// Pointers yields every pointer-valued tag of the body and app data.
func (e *Entity) Pointers() []tags.Tag {
	var out []tags.Tag
	for _, g := range e.AppData {
		for _, t := range g {
			if tags.IsPointerCode(t.Code) {
				out = append(out, t)
			}
		}
	}
	for _, t := range e.Body {
		if tags.IsPointerCode(t.Code) {
			out = append(out, t)
		}
	}
	return out
}

// ReplaceRef re-points every pointer tag holding from to to. Null drops
// the tags. Returns the number of tags changed.
func (e *Entity) ReplaceRef(from, to handle.Handle) int {
	n := 0
	rewrite := func(ts tags.Tags) tags.Tags {
		out := ts[:0:0]
		for _, t := range ts {
			if tags.IsPointerCode(t.Code) {
				if h, err := handle.Parse(t.Str()); err == nil && h == from {
					n++
					if to.IsNull() {
						continue
					}
					t = tags.Tag{Code: t.Code, Value: to.String()}
				}
			}
			out = append(out, t)
		}
		return out
	}
	e.Body = rewrite(e.Body)
	for i, g := range e.AppData {
		e.AppData[i] = rewrite(g)
	}
	return n
}

// attribs returns the body without extended data.
func (e *Entity) attribs() tags.Tags {
	return e.Body[:e.xdataStart()]
}

func (e *Entity) xdataStart() int {
	for i, t := range e.Body {
		if t.Code >= tags.CodeXDataAppID {
			return i
		}
	}
	return len(e.Body)
}

func insert(ts tags.Tags, at int, t tags.Tag) tags.Tags {
	ts = append(ts, tags.Tag{})
	copy(ts[at+1:], ts[at:])
	ts[at] = t
	return ts
}

// subclassRange returns the body range [start, end) of the attributes
// following the subclass marker, extended data excluded.
func (e *Entity) subclassRange(marker string) (int, int, bool) {
	n := e.xdataStart()
	for i := 0; i < n; i++ {
		t := e.Body[i]
		if t.Code != tags.CodeSubclass || t.Str() != marker {
			continue
		}
		end := i + 1
		for end < n && e.Body[end].Code != tags.CodeSubclass {
			end++
		}
		return i + 1, end, true
	}
	return 0, 0, false
}

// GetIn returns the first tag with code inside the named subclass.
func (e *Entity) GetIn(marker string, code int) (tags.Tag, bool) {
	start, end, ok := e.subclassRange(marker)
	if !ok {
		return tags.Tag{}, false
	}
	for _, t := range e.Body[start:end] {
		if t.Code == code {
			return t, true
		}
	}
	return tags.Tag{}, false
}

// RefIn returns the handle under a pointer code inside the named
// subclass, or Null.
func (e *Entity) RefIn(marker string, code int) handle.Handle {
	t, ok := e.GetIn(marker, code)
	if !ok {
		return handle.Null
	}
	h, err := handle.Parse(t.Str())
	if err != nil {
		return handle.Null
	}
	return h
}

// SetIn replaces the first tag with code inside the named subclass or
// appends it to that subclass. Without the subclass (R12 records) it
// behaves like Set.
func (e *Entity) SetIn(marker string, code int, value any) error {
	start, end, ok := e.subclassRange(marker)
	if !ok {
		return e.Set(code, value)
	}
	t, err := tags.Make(code, value)
	if err != nil {
		return err
	}
	for i := start; i < end; i++ {
		if e.Body[i].Code == code {
			e.Body[i] = t
			return nil
		}
	}
	e.Body = insert(e.Body, end, t)
	return nil
}

// RemoveIn deletes every tag with code inside the named subclass.
// Without the subclass it behaves like Remove.
func (e *Entity) RemoveIn(marker string, code int) {
	start, end, ok := e.subclassRange(marker)
	if !ok {
		e.Remove(code)
		return
	}
	out := e.Body[:0:0]
	for i, t := range e.Body {
		if i >= start && i < end && t.Code == code {
			continue
		}
		out = append(out, t)
	}
	e.Body = out
}

// Append adds a tag before extended data, after any existing tags with
// the same code.
func (e *Entity) Append(code int, value any) error {
	t, err := tags.Make(code, value)
	if err != nil {
		return err
	}
	e.Body = insert(e.Body, e.xdataStart(), t)
	return nil
}
