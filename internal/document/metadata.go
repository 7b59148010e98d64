package document

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// GUIDGenerator produces the $FINGERPRINTGUID and $VERSIONGUID values.
// Implemented by UUIDGenerator (production) and testutil.FixedGUIDGenerator
// (tests).
type GUIDGenerator interface {
	Generate() string
}

// UUIDGenerator issues random GUIDs in the "{XXXXXXXX-XXXX-...}" form the
// header variables use.
//
// Thread-safety: UUIDGenerator is stateless and safe for concurrent use.
type UUIDGenerator struct{}

// Generate returns a new braced, uppercase GUID.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDGenerator) Generate() string {
	return "{" + strings.ToUpper(uuid.Must(uuid.NewRandom()).String()) + "}"
}

// Clock supplies the wall time stamped into $TDCREATE and $TDUPDATE.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the system time.
type SystemClock struct{}

// Now returns time.Now.
func (SystemClock) Now() time.Time { return time.Now() }

// unixEpochJulian is the Julian date of 1970-01-01T00:00:00.
const unixEpochJulian = 2440587.5

// JulianDate converts t to the fractional Julian date format of the
// time stamp header variables. The wall clock reading is used, as the
// format stores local time.
func JulianDate(t time.Time) float64 {
	wall := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	return float64(wall.UnixNano())/float64(24*time.Hour) + unixEpochJulian
}

// setCreated stamps $TDCREATE and $FINGERPRINTGUID. With onlyMissing,
// values already present are kept.
func (d *Document) setCreated(onlyMissing bool) {
	if !onlyMissing || d.header.Float("$TDCREATE", 0) == 0 {
		_ = d.header.Set("$TDCREATE", JulianDate(d.clock.Now()))
	}
	if !onlyMissing || d.header.Str("$FINGERPRINTGUID", "") == "" {
		_ = d.header.Set("$FINGERPRINTGUID", d.guids.Generate())
	}
	if !onlyMissing || d.header.Str("$VERSIONGUID", "") == "" {
		_ = d.header.Set("$VERSIONGUID", d.guids.Generate())
	}
}

// setUpdated stamps the save time and a fresh $VERSIONGUID.
func (d *Document) setUpdated() {
	_ = d.header.Set("$TDUPDATE", JulianDate(d.clock.Now()))
	_ = d.header.Set("$VERSIONGUID", d.guids.Generate())
}
