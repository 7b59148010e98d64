package tags

// FilterInvalidPointCodes drops y and z coordinate tags that do not
// directly follow their x (or y) tag. Works on raw and compiled streams,
// but is meant to run before Compile.
func FilterInvalidPointCodes(src Stream) Stream {
	return func(yield func(Tag, error) bool) {
		prev := -1
		for t, err := range src {
			if err != nil {
				yield(t, err)
				return
			}
			if base, ok := coordinateBase(t.Code, 10); ok && prev != base {
				continue
			}
			if base, ok := coordinateBase(t.Code, 20); ok && prev != base+10 {
				continue
			}
			prev = t.Code
			if !yield(t, nil) {
				return
			}
		}
	}
}

// lineCoordinateCodes are the point codes of a LINE entity.
var lineCoordinateCodes = []int{10, 11}

// ReorderCoordinates restores x, y, z order for LINE coordinates written
// as x1, x2, y1, y2, z1, z2 by some legacy exporters. Must run before
// Compile.
func ReorderCoordinates(src Stream) Stream {
	return func(yield func(Tag, error) bool) {
		var record Tags
		flush := func() bool {
			if record.Type() == "LINE" {
				record = fixCoordinateOrder(record, lineCoordinateCodes)
			}
			for _, t := range record {
				if !yield(t, nil) {
					return false
				}
			}
			record = record[:0]
			return true
		}
		for t, err := range src {
			if err != nil {
				yield(t, err)
				return
			}
			if t.Code == CodeStructure && len(record) > 0 {
				if !flush() {
					return
				}
			}
			record = append(record, t)
		}
		flush()
	}
}

func fixCoordinateOrder(record Tags, codes []int) Tags {
	wanted := make(map[int]bool, len(codes)*3)
	for _, c := range codes {
		wanted[c], wanted[c+10], wanted[c+20] = true, true, true
	}
	coords := make(map[int]Tag)
	var remaining Tags
	insertAt := -1
	for _, t := range record {
		if wanted[t.Code] {
			coords[t.Code] = t
			if insertAt < 0 {
				insertAt = len(remaining)
			}
			continue
		}
		remaining = append(remaining, t)
	}
	if insertAt < 0 {
		return record
	}
	ordered := make(Tags, 0, len(record))
	ordered = append(ordered, remaining[:insertAt]...)
	for _, c := range codes {
		for _, code := range []int{c, c + 10, c + 20} {
			if t, ok := coords[code]; ok {
				ordered = append(ordered, t)
			}
		}
	}
	return append(ordered, remaining[insertAt:]...)
}
