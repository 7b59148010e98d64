package tags

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Point is a 2D or 3D coordinate. Dim records how many components the
// source carried so 2D points are written back as 2D.
type Point struct {
	X, Y, Z float64
	Dim     int
}

// Vec3 returns a 3D point.
func Vec3(x, y, z float64) Point { return Point{X: x, Y: y, Z: z, Dim: 3} }

// Vec2 returns a 2D point.
func Vec2(x, y float64) Point { return Point{X: x, Y: y, Dim: 2} }

// Tag is an immutable (group code, value) pair.
//
// Value holds string (KindString, KindHandle), int64 (KindInt),
// float64 (KindFloat), Point (KindPoint) or []byte (KindBinary).
// Raw tags produced by Tokenize always hold strings until compiled.
type Tag struct {
	Code  int
	Value any
}

// New creates a tag and casts value to the type selected by code.
// Panics if the value cannot be converted; use Make for untrusted input.
func New(code int, value any) Tag {
	t, err := Make(code, value)
	if err != nil {
		panic(err)
	}
	return t
}

// Make creates a tag and casts value to the type selected by code.
func Make(code int, value any) (Tag, error) {
	v, err := cast(KindOf(code), value)
	if err != nil {
		return Tag{}, fmt.Errorf("tag %d: %w", code, err)
	}
	return Tag{Code: code, Value: v}, nil
}

func cast(kind Kind, value any) (any, error) {
	switch kind {
	case KindInt:
		return toInt(value)
	case KindFloat:
		return toFloat(value)
	case KindPoint:
		switch p := value.(type) {
		case Point:
			return p, nil
		case [3]float64:
			return Vec3(p[0], p[1], p[2]), nil
		case [2]float64:
			return Vec2(p[0], p[1]), nil
		}
		return nil, fmt.Errorf("cannot use %T as point", value)
	case KindBinary:
		switch b := value.(type) {
		case []byte:
			return b, nil
		case string:
			return hex.DecodeString(b)
		}
		return nil, fmt.Errorf("cannot use %T as binary", value)
	default:
		switch s := value.(type) {
		case string:
			return s, nil
		case fmt.Stringer:
			return s.String(), nil
		}
		return fmt.Sprint(value), nil
	}
}

func toInt(value any) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint64:
		return int64(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case float64:
		return int64(v), nil
	case string:
		s := strings.TrimSpace(v)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, nil
		}
		// some exporters write integers as floats
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid integer %q", v)
		}
		return int64(f), nil
	}
	return 0, fmt.Errorf("cannot use %T as integer", value)
}

func toFloat(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid float %q", v)
		}
		return f, nil
	}
	return 0, fmt.Errorf("cannot use %T as float", value)
}

// Str returns the value formatted as it appears in the file.
func (t Tag) Str() string {
	return formatValue(t.Value)
}

// Int returns an integer value, 0 for other kinds.
func (t Tag) Int() int64 {
	i, err := toInt(t.Value)
	if err != nil {
		return 0
	}
	return i
}

// Float returns a float value, 0 for other kinds.
func (t Tag) Float() float64 {
	f, err := toFloat(t.Value)
	if err != nil {
		return 0
	}
	return f
}

// Point returns a point value, the zero point for other kinds.
func (t Tag) Point() Point {
	p, _ := t.Value.(Point)
	return p
}

// Bytes returns a binary value, nil for other kinds.
func (t Tag) Bytes() []byte {
	b, _ := t.Value.([]byte)
	return b
}

// Equal reports whether both tags have the same code and value.
func (t Tag) Equal(o Tag) bool {
	if t.Code != o.Code {
		return false
	}
	switch a := t.Value.(type) {
	case []byte:
		b, ok := o.Value.([]byte)
		return ok && string(a) == string(b)
	default:
		return t.Value == o.Value
	}
}

// String implements fmt.Stringer for debugging output.
func (t Tag) String() string {
	return fmt.Sprintf("(%d, %s)", t.Code, t.Str())
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return FormatFloat(val)
	case Point:
		if val.Dim == 2 {
			return fmt.Sprintf("(%s, %s)", FormatFloat(val.X), FormatFloat(val.Y))
		}
		return fmt.Sprintf("(%s, %s, %s)", FormatFloat(val.X), FormatFloat(val.Y), FormatFloat(val.Z))
	case []byte:
		return strings.ToUpper(hex.EncodeToString(val))
	case nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}

// FormatFloat formats a float the way the format expects: shortest
// representation, always with a decimal point.
func FormatFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "0.0"
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}
	return s
}
