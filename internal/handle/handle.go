// Package handle implements entity handles and the monotonic handle
// generator of a document.
package handle

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
)

// Handle identifies one entity within a document. It is written as
// uppercase hexadecimal without leading zeros. The zero Handle is the
// null handle and never identifies an entity.
type Handle uint64

// Null is the null handle ("0").
const Null Handle = 0

// Limit is the largest handle a document may hold. The upper half of the
// 64-bit range is kept free so allocation above any stored handle can
// never wrap around.
const Limit Handle = 1<<63 - 1

// ErrOutOfRange is returned for handles above Limit.
var ErrOutOfRange = errors.New("handle out of range")

// InRange reports whether h can be stored in a document.
func (h Handle) InRange() bool { return h <= Limit }

// Parse converts a hex string to a Handle. Empty strings parse as Null.
func Parse(s string) (Handle, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Null, nil
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return Null, fmt.Errorf("invalid handle %q", s)
	}
	return Handle(v), nil
}

// MustParse is Parse for constants; it panics on invalid input.
func MustParse(s string) Handle {
	h, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return h
}

// IsNull reports whether h is the null handle.
func (h Handle) IsNull() bool { return h == Null }

// String returns the uppercase hex form.
func (h Handle) String() string {
	return strings.ToUpper(strconv.FormatUint(uint64(h), 16))
}

// MarshalText encodes h as hex, so handles read naturally in JSON.
func (h Handle) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText parses a hex handle.
func (h *Handle) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*h = v
	return nil
}

// Generator issues handles in strictly increasing order.
//
// The generator remembers the largest handle it has issued or observed,
// so a reseed can never move the counter below a handle that is already
// in use. Safe for concurrent use, although a document only touches it
// from one goroutine.
type Generator struct {
	next atomic.Uint64
	max  atomic.Uint64
}

// NewGenerator creates a generator whose first handle is 1.
func NewGenerator() *Generator {
	g := &Generator{}
	g.next.Store(1)
	return g
}

// Next returns a fresh handle and advances the counter. It panics once
// more handles than fit below 2^64 have been issued, which Observe and
// Reset rule out for any document in range.
func (g *Generator) Next() Handle {
	for {
		h := g.next.Add(1) - 1
		m := g.max.Load()
		if h > m {
			g.observe(Handle(h))
			return Handle(h)
		}
		if m == ^uint64(0) {
			panic("handle: handle space exhausted")
		}
		// counter was reseeded below an observed handle
		g.next.CompareAndSwap(h+1, m+1)
	}
}

// Observe records h as in use so it is never issued. Handles above
// Limit are rejected with ErrOutOfRange and not recorded.
func (g *Generator) Observe(h Handle) error {
	if !h.InRange() {
		return fmt.Errorf("%w: %s", ErrOutOfRange, h)
	}
	g.observe(h)
	return nil
}

func (g *Generator) observe(h Handle) {
	for {
		cur := g.max.Load()
		if uint64(h) <= cur || g.max.CompareAndSwap(cur, uint64(h)) {
			return
		}
	}
}

// Reset reseeds the counter. The next issued handle is seed or one past
// the largest known handle, whichever is greater. A seed above Limit is
// rejected with ErrOutOfRange and leaves the counter unchanged.
func (g *Generator) Reset(seed Handle) error {
	if !seed.InRange() {
		return fmt.Errorf("%w: seed %s", ErrOutOfRange, seed)
	}
	if seed == Null {
		seed = 1
	}
	if m := Handle(g.max.Load()); seed <= m {
		seed = m + 1
	}
	g.next.Store(uint64(seed))
	return nil
}

// Peek returns the handle Next would issue, without consuming it. This is
// the value written as $HANDSEED.
func (g *Generator) Peek() Handle {
	n := Handle(g.next.Load())
	if m := Handle(g.max.Load()); n <= m {
		return m + 1
	}
	return n
}

// Max returns the largest handle issued or observed so far.
func (g *Generator) Max() Handle {
	return Handle(g.max.Load())
}
