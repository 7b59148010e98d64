package dxfver

// Step names one rung of the load-time repair ladder.
type Step int

const (
	// StepNone means the loaded version is writable as is.
	StepNone Step = iota
	// StepUpgradeLegacy lifts pre-R12 files to R12. Table entries of such
	// files lack handles and owners.
	StepUpgradeLegacy
	// StepSnapForward moves an intermediate unsupported version (R13, R14)
	// to the next writable generation.
	StepSnapForward
	// StepClampLatest maps a version newer than Latest onto Latest.
	StepClampLatest
	// StepUnknown replaces an unparsable version with Legacy.
	StepUnknown
)

func (s Step) String() string {
	switch s {
	case StepUpgradeLegacy:
		return "upgrade-legacy"
	case StepSnapForward:
		return "snap-forward"
	case StepClampLatest:
		return "clamp-latest"
	case StepUnknown:
		return "unknown"
	default:
		return "none"
	}
}

// Coerce maps a recorded $ACADVER value onto a writable generation. The
// result is never older than the input, except for the StepUnknown case
// where no order exists.
func Coerce(recorded string) (Version, Step) {
	v, err := Parse(recorded)
	if err != nil {
		return Legacy, StepUnknown
	}
	switch {
	case v.Supported():
		return v, StepNone
	case v.Before(R12):
		return R12, StepUpgradeLegacy
	case v > Latest:
		return Latest, StepClampLatest
	}
	for _, s := range supported {
		if s > v {
			return s, StepSnapForward
		}
	}
	return Latest, StepClampLatest
}

// NeedsTableHandles reports whether table heads and entries of a file
// recorded as v must get synthesized handles and owner links before they
// can be written as R2000 or later.
func NeedsTableHandles(v Version) bool {
	return !v.After(R12)
}

// After reports whether v is a newer generation than o.
func (v Version) After(o Version) bool { return v > o }
