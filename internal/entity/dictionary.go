package entity

import (
	"github.com/roach88/dxfio/internal/handle"
	"github.com/roach88/dxfio/internal/tags"
)

// Dictionary entry codes.
const (
	codeDictKey       = 3
	codeDictSoftEntry = 350
	codeDictHardEntry = 360
)

// DictEntry is one key/handle pair of a DICTIONARY object.
type DictEntry struct {
	Key    string
	Handle handle.Handle
}

// DictEntries returns the entries of a DICTIONARY-like object in order.
func (e *Entity) DictEntries() []DictEntry {
	var out []DictEntry
	body := e.attribs()
	for i := 0; i < len(body); i++ {
		if body[i].Code != codeDictKey || i+1 >= len(body) {
			continue
		}
		next := body[i+1]
		if next.Code != codeDictSoftEntry && next.Code != codeDictHardEntry {
			continue
		}
		h, err := handle.Parse(next.Str())
		if err != nil {
			continue
		}
		out = append(out, DictEntry{Key: body[i].Str(), Handle: h})
		i++
	}
	return out
}

// DictGet returns the handle stored under key (exact match).
func (e *Entity) DictGet(key string) (handle.Handle, bool) {
	for _, de := range e.DictEntries() {
		if de.Key == key {
			return de.Handle, true
		}
	}
	return handle.Null, false
}

// DictSet adds or replaces an entry. Hard-owned entries use code 360.
func (e *Entity) DictSet(key string, h handle.Handle, hardOwner bool) {
	code := codeDictSoftEntry
	if hardOwner {
		code = codeDictHardEntry
	}
	entry := tags.Tag{Code: code, Value: h.String()}
	n := e.xdataStart()
	for i := 0; i+1 < n; i++ {
		if e.Body[i].Code == codeDictKey && e.Body[i].Str() == key {
			e.Body[i+1] = entry
			return
		}
	}
	e.Body = insert(e.Body, n, tags.Tag{Code: codeDictKey, Value: key})
	e.Body = insert(e.Body, n+1, entry)
}

// DictRemove deletes the entry under key. Returns false if absent.
func (e *Entity) DictRemove(key string) bool {
	n := e.xdataStart()
	for i := 0; i+1 < n; i++ {
		if e.Body[i].Code == codeDictKey && e.Body[i].Str() == key {
			e.Body = append(e.Body[:i], e.Body[i+2:]...)
			return true
		}
	}
	return false
}
