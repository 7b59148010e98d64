package tags

// Tags is an ordered sequence of tags, typically one entity record.
type Tags []Tag

// Type returns the structure marker value of the first tag (code 0),
// or "" if the sequence does not start with one.
func (ts Tags) Type() string {
	if len(ts) == 0 || ts[0].Code != CodeStructure {
		return ""
	}
	return ts[0].Str()
}

// Index returns the position of the first tag with code, or -1.
func (ts Tags) Index(code int) int {
	for i, t := range ts {
		if t.Code == code {
			return i
		}
	}
	return -1
}

// First returns the first tag with code.
func (ts Tags) First(code int) (Tag, bool) {
	if i := ts.Index(code); i >= 0 {
		return ts[i], true
	}
	return Tag{}, false
}

// Has reports whether any tag has code.
func (ts Tags) Has(code int) bool {
	return ts.Index(code) >= 0
}

// Clone returns a shallow copy; tag values are immutable.
func (ts Tags) Clone() Tags {
	if ts == nil {
		return nil
	}
	out := make(Tags, len(ts))
	copy(out, ts)
	return out
}

// Equal reports whether both sequences hold equal tags in the same order.
func (ts Tags) Equal(o Tags) bool {
	if len(ts) != len(o) {
		return false
	}
	for i := range ts {
		if !ts[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// Split groups tags into runs each starting at a tag with splitCode.
// Tags before the first split tag form the first group.
func Split(ts Tags, splitCode int) []Tags {
	var groups []Tags
	var current Tags
	for _, t := range ts {
		if t.Code == splitCode && len(current) > 0 {
			groups = append(groups, current)
			current = nil
		}
		current = append(current, t)
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}
