package tags

// Kind is the semantic value type selected by a group code.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindPoint
	KindBinary
	KindHandle
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindPoint:
		return "point"
	case KindBinary:
		return "binary"
	case KindHandle:
		return "handle"
	default:
		return "string"
	}
}

// Well-known group codes.
const (
	CodeStructure   = 0   // entity type / section markers
	CodeName        = 2   // section, table and record names
	CodeHandle      = 5   // entity handle
	CodeLinetype    = 6   // linetype name
	CodeLayer       = 8   // layer name
	CodeVariable    = 9   // header variable name
	CodeColor       = 62  // ACI color
	CodePaperSpace  = 67  // 1 = entity lives in paper space
	CodeSubclass    = 100 // subclass marker
	CodeAppData     = 102 // application-defined group "{NAME" ... "}"
	CodeDimHandle   = 105 // DIMSTYLE handle
	CodeOwner       = 330 // soft-pointer to owner
	CodeHardOwner   = 360 // hard-owner handle
	CodeMaterial    = 347 // material handle
	CodePlotStyle   = 390 // plot style handle
	CodeXDataAppID  = 1001
	CodeComment     = 999
	CodeXDataHandle = 1005
)

// KindOf returns the value kind for a group code.
func KindOf(code int) Kind {
	if IsPointCode(code) {
		return KindPoint
	}
	switch {
	case code == 5 || code == 105:
		return KindHandle
	case code >= 0 && code <= 9:
		return KindString
	case code >= 10 && code <= 59:
		return KindFloat
	case code >= 60 && code <= 99:
		return KindInt
	case code >= 100 && code <= 102:
		return KindString
	case code >= 110 && code <= 149:
		return KindFloat
	case code >= 160 && code <= 179:
		return KindInt
	case code >= 210 && code <= 239:
		return KindFloat
	case code >= 270 && code <= 299:
		return KindInt
	case code >= 300 && code <= 309:
		return KindString
	case IsBinaryCode(code):
		return KindBinary
	case IsPointerCode(code):
		return KindHandle
	case code >= 370 && code <= 389:
		return KindInt
	case code >= 400 && code <= 409:
		return KindInt
	case code >= 410 && code <= 419:
		return KindString
	case code >= 420 && code <= 429:
		return KindInt
	case code >= 430 && code <= 439:
		return KindString
	case code >= 440 && code <= 459:
		return KindInt
	case code >= 460 && code <= 469:
		return KindFloat
	case code >= 470 && code <= 479:
		return KindString
	case code >= 1010 && code <= 1059:
		return KindFloat
	case code >= 1060 && code <= 1071:
		return KindInt
	default:
		return KindString
	}
}

// IsPointCode reports whether code is the x code of a compiled point.
func IsPointCode(code int) bool {
	switch {
	case code >= 10 && code <= 18:
		return true
	case code >= 110 && code <= 112:
		return true
	case code == 210:
		return true
	case code >= 1010 && code <= 1013:
		return true
	}
	return false
}

// IsBinaryCode reports whether code carries hex encoded binary data.
func IsBinaryCode(code int) bool {
	return (code >= 310 && code <= 319) || code == 1004
}

// IsPointerCode reports whether code holds a handle to another entity.
// The entity's own handle (5, 105) is not a pointer.
func IsPointerCode(code int) bool {
	switch {
	case code >= 320 && code <= 369:
		return true
	case code >= 390 && code <= 399:
		return true
	case code == 480 || code == 481:
		return true
	case code == CodeXDataHandle:
		return true
	}
	return false
}

// coordinateBase returns the x code for a y (offset 10) or z (offset 20)
// coordinate code, and false if code is not a y/z coordinate code.
// Code 38 (elevation) is deliberately not treated as a z code.
func coordinateBase(code int, offset int) (int, bool) {
	base := code - offset
	if !IsPointCode(base) {
		return 0, false
	}
	if offset == 20 && code == 38 {
		return 0, false
	}
	return base, true
}
