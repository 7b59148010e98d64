package tags

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"
)

// Stream is a lazy, finite sequence of tags. A non-nil error ends the
// sequence; consumers must stop at the first error.
type Stream = iter.Seq2[Tag, error]

// Filter is one transformation stage over a Stream. Filters preserve
// tag order except where they exist to repair it.
type Filter func(Stream) Stream

// maxLineLength bounds a single value line (large binary chunks, MTEXT).
const maxLineLength = 16 * 1024 * 1024

// Tokenize yields raw (code, string) tags from already decoded text.
// Comment tags (999) are skipped. A trailing code line without a value
// line ends the stream.
func Tokenize(r io.Reader) Stream {
	return func(yield func(Tag, error) bool) {
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), maxLineLength)
		line := 0
		for {
			if !sc.Scan() {
				if err := sc.Err(); err != nil {
					yield(Tag{}, fmt.Errorf("tokenize: %w", err))
				}
				return
			}
			codeLine := sc.Text()
			line++
			if !sc.Scan() {
				if err := sc.Err(); err != nil {
					yield(Tag{}, fmt.Errorf("tokenize: %w", err))
				}
				return
			}
			value := sc.Text()
			line++

			code, err := strconv.Atoi(strings.TrimSpace(codeLine))
			if err != nil {
				yield(Tag{}, &StructureError{Line: line - 1, Message: fmt.Sprintf("invalid group code %q", codeLine)})
				return
			}
			if code == CodeComment {
				continue
			}
			if !yield(Tag{Code: code, Value: value}, nil) {
				return
			}
		}
	}
}

// Compile converts raw string tags into typed tags: x/y[/z] runs become
// a single Point tag, binary codes become bytes, numeric codes become
// int64/float64. Already typed values pass through unchanged.
func Compile(src Stream) Stream {
	return func(yield func(Tag, error) bool) {
		next, stop := iter.Pull2(src)
		defer stop()

		var pending *Tag
		line := 0
		read := func() (Tag, bool, error) {
			if pending != nil {
				t := *pending
				pending = nil
				return t, true, nil
			}
			t, err, ok := next()
			if !ok {
				return Tag{}, false, nil
			}
			if err != nil {
				return Tag{}, false, err
			}
			line += 2
			return t, true, nil
		}

		for {
			x, ok, err := read()
			if err != nil {
				yield(Tag{}, err)
				return
			}
			if !ok {
				return
			}
			raw, isRaw := x.Value.(string)
			if !isRaw {
				if !yield(x, nil) {
					return
				}
				continue
			}

			switch {
			case IsPointCode(x.Code):
				y, ok, err := read()
				if err != nil {
					yield(Tag{}, err)
					return
				}
				if !ok || y.Code != x.Code+10 {
					yield(Tag{}, &StructureError{Line: line, Message: "missing required y coordinate"})
					return
				}
				px, errX := toFloat(raw)
				py, errY := toFloat(y.Value)
				if errX != nil || errY != nil {
					yield(Tag{}, &StructureError{Line: line, Message: "invalid floating point values"})
					return
				}
				p := Vec2(px, py)
				z, ok, err := read()
				if err != nil {
					yield(Tag{}, err)
					return
				}
				if ok {
					if z.Code == x.Code+20 {
						pz, errZ := toFloat(z.Value)
						if errZ != nil {
							yield(Tag{}, &StructureError{Line: line, Message: "invalid floating point values"})
							return
						}
						p = Vec3(px, py, pz)
					} else {
						pending = &z
					}
				}
				if !yield(Tag{Code: x.Code, Value: p}, nil) {
					return
				}

			case IsBinaryCode(x.Code):
				b, err := hex.DecodeString(strings.TrimSpace(raw))
				if err != nil {
					yield(Tag{}, &StructureError{Line: line, Message: "invalid binary data"})
					return
				}
				if !yield(Tag{Code: x.Code, Value: b}, nil) {
					return
				}

			default:
				t, err := Make(x.Code, raw)
				if err != nil {
					yield(Tag{}, &StructureError{Line: line, Message: fmt.Sprintf("invalid tag (code=%d, value=%q)", x.Code, raw)})
					return
				}
				if !yield(t, nil) {
					return
				}
			}
		}
	}
}

// FromTags returns a Stream over an in-memory sequence.
func FromTags(ts Tags) Stream {
	return func(yield func(Tag, error) bool) {
		for _, t := range ts {
			if !yield(t, nil) {
				return
			}
		}
	}
}

// Collect drains a Stream into memory, stopping at the first error.
func Collect(s Stream) (Tags, error) {
	var out Tags
	for t, err := range s {
		if err != nil {
			return out, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Chain applies filters in order to src.
func Chain(src Stream, filters ...Filter) Stream {
	for _, f := range filters {
		src = f(src)
	}
	return src
}
