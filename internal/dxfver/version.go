// Package dxfver models the ordered sequence of file format generations.
//
// A Version is the raw $ACADVER string ("AC1009", "AC1015", ...). Because
// every generation uses the same "AC" prefix and a four digit number,
// lexicographic order equals chronological order, so comparisons are
// plain string comparisons.
//
// Only a subset of generations can be written (see Supported). Loading is
// lenient: Coerce maps any recorded version onto a writable generation,
// while Validate rejects anything outside the writable set at save time.
package dxfver

import (
	"fmt"
	"slices"
	"strings"
)

// Version is a $ACADVER value.
type Version string

// Known format generations.
const (
	R12   Version = "AC1009"
	R13   Version = "AC1012"
	R14   Version = "AC1014"
	R2000 Version = "AC1015"
	R2004 Version = "AC1018"
	R2007 Version = "AC1021"
	R2010 Version = "AC1024"
	R2013 Version = "AC1027"
	R2018 Version = "AC1032"
)

// Latest is the newest generation this package can write.
const Latest = R2018

// Default is the generation used for new documents.
const Default = R2013

// Legacy is assumed for files without a header or without $ACADVER.
const Legacy = R12

var releases = map[Version]string{
	R12:   "R12",
	R13:   "R13",
	R14:   "R14",
	R2000: "R2000",
	R2004: "R2004",
	R2007: "R2007",
	R2010: "R2010",
	R2013: "R2013",
	R2018: "R2018",
}

// maintVersions are the $ACADMAINTVER values written on export.
var maintVersions = map[Version]int{
	R13:   0,
	R14:   0,
	R2000: 20,
	R2004: 104,
	R2007: 50,
	R2010: 6,
	R2013: 125,
	R2018: 228,
}

// supported lists the writable generations in chronological order.
var supported = []Version{R12, R2000, R2004, R2007, R2010, R2013, R2018}

// Parse accepts a $ACADVER string ("AC1015") or a release name ("R2000",
// case-insensitive) and returns the matching Version. It does not check
// whether the version is writable.
func Parse(s string) (Version, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for v, rel := range releases {
		if rel == s {
			return v, nil
		}
	}
	if len(s) == 6 && strings.HasPrefix(s, "AC") && isDigits(s[2:]) {
		return Version(s), nil
	}
	return "", fmt.Errorf("invalid format version %q", s)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Before reports whether v is an older generation than o.
func (v Version) Before(o Version) bool { return v < o }

// AtLeast reports whether v is o or newer.
func (v Version) AtLeast(o Version) bool { return v >= o }

// Release returns the product release name ("R2000"), or "unknown".
func (v Version) Release() string {
	if rel, ok := releases[v]; ok {
		return rel
	}
	return "unknown"
}

// Supported reports whether v can be written.
func (v Version) Supported() bool {
	return slices.Contains(supported, v)
}

// MaintVersion returns the $ACADMAINTVER value for v.
func (v Version) MaintVersion() int {
	return maintVersions[v]
}

// String returns the raw $ACADVER value.
func (v Version) String() string { return string(v) }

// SupportedVersions returns the writable generations, oldest first.
func SupportedVersions() []Version {
	return slices.Clone(supported)
}

// Validate resolves s (see Parse) and rejects versions that cannot be
// written. Used on the save path, which never coerces.
func Validate(s string) (Version, error) {
	v, err := Parse(s)
	if err != nil {
		return "", err
	}
	if !v.Supported() {
		return "", fmt.Errorf("unsupported format version %q (%s)", string(v), v.Release())
	}
	return v, nil
}
