// Package codepage maps $DWGCODEPAGE values to text encodings and wraps
// readers and writers with the matching x/text codecs.
//
// Encoding names follow the short codec names used in the format's
// ecosystem ("cp1252", "gbk", "utf-8"). Files of generation R2007 and
// later are always UTF-8; older files use the code page recorded in the
// header.
package codepage

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Default is the encoding assumed when a file records no code page.
const Default = "cp1252"

// UTF8 is the encoding of every R2007+ file.
const UTF8 = "utf-8"

var codepageToEncoding = []struct {
	codepage string
	encoding string
}{
	{"874", "cp874"},   // Thai
	{"932", "cp932"},   // Japanese
	{"936", "gbk"},     // Simplified Chinese
	{"949", "cp949"},   // Korean
	{"950", "cp950"},   // Traditional Chinese
	{"1250", "cp1250"}, // Central Europe
	{"1251", "cp1251"}, // Cyrillic
	{"1252", "cp1252"}, // Western Europe
	{"1253", "cp1253"}, // Greek
	{"1254", "cp1254"}, // Turkish
	{"1255", "cp1255"}, // Hebrew
	{"1256", "cp1256"}, // Arabic
	{"1257", "cp1257"}, // Baltic
	{"1258", "cp1258"}, // Vietnam
}

var codecs = map[string]encoding.Encoding{
	"cp874":  charmap.Windows874,
	"cp932":  japanese.ShiftJIS,
	"gbk":    simplifiedchinese.GBK,
	"cp949":  korean.EUCKR,
	"cp950":  traditionalchinese.Big5,
	"cp1250": charmap.Windows1250,
	"cp1251": charmap.Windows1251,
	"cp1252": charmap.Windows1252,
	"cp1253": charmap.Windows1253,
	"cp1254": charmap.Windows1254,
	"cp1255": charmap.Windows1255,
	"cp1256": charmap.Windows1256,
	"cp1257": charmap.Windows1257,
	"cp1258": charmap.Windows1258,
	"utf-8":  unicode.UTF8,
	"utf8":   unicode.UTF8,
}

// ToEncoding returns the encoding for a $DWGCODEPAGE value such as
// "ANSI_1252". Unknown code pages map to Default.
func ToEncoding(dwgCodepage string) string {
	cp := strings.TrimSpace(dwgCodepage)
	for _, e := range codepageToEncoding {
		if strings.HasSuffix(cp, e.codepage) {
			return e.encoding
		}
	}
	return Default
}

// ToCodepage returns the $DWGCODEPAGE value for an encoding. Encodings
// without a code page (including UTF-8) map to "ANSI_1252".
func ToCodepage(enc string) string {
	enc = normalize(enc)
	for _, e := range codepageToEncoding {
		if e.encoding == enc {
			return "ANSI_" + e.codepage
		}
	}
	return "ANSI_1252"
}

// IsSupported reports whether enc has a code page.
func IsSupported(enc string) bool {
	enc = normalize(enc)
	for _, e := range codepageToEncoding {
		if e.encoding == enc {
			return true
		}
	}
	return false
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Lookup returns the codec for an encoding name. Names outside the code
// page table are resolved through the WHATWG encoding index, so
// "windows-1252" or "shift_jis" work as well.
func Lookup(name string) (encoding.Encoding, error) {
	n := normalize(name)
	if n == "" {
		n = Default
	}
	if e, ok := codecs[n]; ok {
		return e, nil
	}
	e, err := htmlindex.Get(n)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	return e, nil
}

// NewReader decodes r from the named encoding into UTF-8.
func NewReader(r io.Reader, name string) (io.Reader, error) {
	e, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if e == unicode.UTF8 {
		// strips a leading BOM, invalid bytes become U+FFFD
		return transform.NewReader(r, unicode.UTF8BOM.NewDecoder()), nil
	}
	return transform.NewReader(r, e.NewDecoder()), nil
}

// Writer encodes UTF-8 text into a target encoding. Runes the encoding
// cannot represent are written as "\U+nnnn" escapes. Writes may split
// runes; incomplete trailing bytes are held until the next Write or Close.
type Writer struct {
	w       io.Writer
	enc     *encoding.Encoder
	pending []byte
}

// NewWriter returns a Writer for the named encoding. For UTF-8 the
// returned writer passes bytes through unchanged.
func NewWriter(w io.Writer, name string) (*Writer, error) {
	e, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	cw := &Writer{w: w}
	if e != unicode.UTF8 {
		cw.enc = e.NewEncoder()
	}
	return cw, nil
}

// Write implements io.Writer.
func (cw *Writer) Write(p []byte) (int, error) {
	if cw.enc == nil {
		return cw.w.Write(p)
	}
	data := append(cw.pending, p...)
	cut := completePrefix(data)
	if err := cw.encode(data[:cut]); err != nil {
		return 0, err
	}
	cw.pending = append([]byte(nil), data[cut:]...)
	return len(p), nil
}

// Close encodes any held bytes. It does not close the underlying writer.
func (cw *Writer) Close() error {
	if cw.enc == nil || len(cw.pending) == 0 {
		return nil
	}
	err := cw.encode(cw.pending)
	cw.pending = nil
	return err
}

func (cw *Writer) encode(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	out, err := cw.enc.Bytes(b)
	if err != nil {
		out = Escape(cw.enc, b)
	}
	_, err = cw.w.Write(out)
	return err
}

// Escape encodes b rune by rune, writing unencodable runes as "\U+nnnn".
func Escape(enc *encoding.Encoder, b []byte) []byte {
	var out []byte
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		chunk := b[:size]
		b = b[size:]
		encoded, err := enc.Bytes(chunk)
		if err != nil || (r == utf8.RuneError && size == 1) {
			out = fmt.Appendf(out, `\U+%04X`, r)
			continue
		}
		out = append(out, encoded...)
	}
	return out
}

// completePrefix returns the length of the longest prefix of b that does
// not end inside a multi-byte rune.
func completePrefix(b []byte) int {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if utf8.FullRune(b[i:]) {
				return len(b)
			}
			return i
		}
	}
	return len(b)
}

// EncodeString is a convenience for tests and tools: it encodes s the way
// Writer would.
func EncodeString(s, name string) ([]byte, error) {
	var buf strings.Builder
	w, err := NewWriter(&buf, name)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(w, s); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return []byte(buf.String()), nil
}
