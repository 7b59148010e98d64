package document

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/roach88/dxfio/internal/codepage"
	"github.com/roach88/dxfio/internal/config"
	"github.com/roach88/dxfio/internal/dxfver"
	"github.com/roach88/dxfio/internal/tags"
)

// Info holds the header variables needed before a file can be decoded.
type Info struct {
	Version  string
	Release  string
	Encoding string
	HandSeed string
}

var utf8BOM = []byte("\xef\xbb\xbf")

// StreamInfo scans the HEADER section of raw file content for $ACADVER,
// $DWGCODEPAGE and $HANDSEED. R2007 and later files are always UTF-8.
// Header text is ASCII, so the scan works on undecoded bytes.
func StreamInfo(r io.Reader) (*Info, error) {
	info := &Info{Version: string(dxfver.Legacy), Encoding: codepage.Default}
	var (
		name     string
		inHeader bool
	)
	for t, err := range tags.Tokenize(r) {
		if err != nil {
			return nil, err
		}
		switch {
		case t.Code == tags.CodeStructure && t.Str() == "ENDSEC":
			if inHeader {
				return info.finish(), nil
			}
		case t.Code == tags.CodeName && !inHeader:
			inHeader = t.Str() == "HEADER"
			if !inHeader {
				return info.finish(), nil
			}
		case t.Code == tags.CodeVariable:
			name = t.Str()
		case name == "$ACADVER":
			info.Version = t.Str()
		case name == "$DWGCODEPAGE":
			info.Encoding = codepage.ToEncoding(t.Str())
		case name == "$HANDSEED":
			info.HandSeed = t.Str()
		}
	}
	return info.finish(), nil
}

func (info *Info) finish() *Info {
	v, _ := dxfver.Coerce(info.Version)
	info.Release = v.Release()
	if v.AtLeast(dxfver.R2007) {
		info.Encoding = codepage.UTF8
	}
	return info
}

// ReadFile loads a document from path, decoding it with the encoding
// recorded in its header.
func ReadFile(path string, opts config.Options, options ...Option) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	info, err := StreamInfo(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	if err != nil {
		return nil, fmt.Errorf("failed to scan header of %s: %w", path, err)
	}
	r, err := codepage.NewReader(bytes.NewReader(data), info.Encoding)
	if err != nil {
		return nil, err
	}
	d, err := Read(r, opts, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	d.filename = path
	return d, nil
}

// OutputEncoding selects the file encoding: UTF-8 for R2007 and later,
// otherwise the override, the configured encoding or the document code
// page.
func (d *Document) OutputEncoding(override string) string {
	if d.version.AtLeast(dxfver.R2007) {
		return codepage.UTF8
	}
	switch {
	case override != "":
		return override
	case d.opts.Encoding != "":
		return d.opts.Encoding
	}
	return d.encoding
}

// Save writes the document to w. encoding overrides the legacy text
// encoding for R2000 and older; characters it cannot represent are
// written as \U+nnnn.
func (d *Document) Save(w io.Writer, encoding string) error {
	enc := d.OutputEncoding(encoding)
	bw := bufio.NewWriter(w)
	cw, err := codepage.NewWriter(bw, enc)
	if err != nil {
		return err
	}
	tw := tags.NewTextWriter(cw)
	if err := d.Export(tw); err != nil {
		return err
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if err := cw.Close(); err != nil {
		return err
	}
	return bw.Flush()
}

// SaveAs writes the document to path and remembers it as Filename.
func (d *Document) SaveAs(path, encoding string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := d.Save(f, encoding); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	d.filename = path
	return nil
}

// String returns a short description for logs.
func (d *Document) String() string {
	name := d.filename
	if name == "" {
		name = "<new>"
	}
	return fmt.Sprintf("%s (%s, %d entities)", name, d.version.Release(), d.db.Len())
}
