package tags

import (
	"bufio"
	"fmt"
	"io"
)

// Writer receives tags in output order.
type Writer interface {
	WriteTag(t Tag)
}

// WriteAll writes every tag of ts to w.
func WriteAll(w Writer, ts Tags) {
	for _, t := range ts {
		w.WriteTag(t)
	}
}

// TextWriter serializes tags as code/value line pairs. The first write
// error is kept and returned by Flush; later writes are no-ops.
type TextWriter struct {
	w   *bufio.Writer
	err error
}

// NewTextWriter creates a TextWriter. The destination is responsible for
// text encoding (see package codepage).
func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: bufio.NewWriter(w)}
}

// WriteTag writes one tag. Points expand to their x, y[, z] codes.
func (tw *TextWriter) WriteTag(t Tag) {
	if tw.err != nil {
		return
	}
	if p, ok := t.Value.(Point); ok {
		tw.writeLine(t.Code, FormatFloat(p.X))
		tw.writeLine(t.Code+10, FormatFloat(p.Y))
		if p.Dim != 2 {
			tw.writeLine(t.Code+20, FormatFloat(p.Z))
		}
		return
	}
	tw.writeLine(t.Code, t.Str())
}

func (tw *TextWriter) writeLine(code int, value string) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.w, "%3d\n%s\n", code, value)
}

// Flush writes buffered data and returns the first error encountered.
func (tw *TextWriter) Flush() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.w.Flush()
}

// Collector keeps written tags in memory.
type Collector struct {
	Tags Tags
}

// WriteTag appends t.
func (c *Collector) WriteTag(t Tag) {
	c.Tags = append(c.Tags, t)
}
