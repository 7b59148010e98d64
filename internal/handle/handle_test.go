package handle

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Handle
	}{
		{"FF", 0xFF},
		{"ff", 0xFF},
		{"1A2B", 0x1A2B},
		{"", Null},
		{"0", Null},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			h, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, h)
		})
	}

	_, err := Parse("XYZ")
	assert.Error(t, err)
}

func TestHandle_String(t *testing.T) {
	assert.Equal(t, "FF", Handle(255).String())
	assert.Equal(t, "0", Null.String())
	assert.True(t, Null.IsNull())
}

func TestGenerator_StartsAtOne(t *testing.T) {
	g := NewGenerator()
	assert.Equal(t, Handle(1), g.Peek())
	assert.Equal(t, Handle(1), g.Next())
	assert.Equal(t, Handle(2), g.Next())
	assert.Equal(t, Handle(3), g.Peek())
}

func TestGenerator_ResetBelowObservedMax(t *testing.T) {
	g := NewGenerator()
	g.Observe(0xFF)
	g.Reset(0x10)

	h := g.Next()
	assert.Greater(t, uint64(h), uint64(0xFF))
	assert.Equal(t, Handle(0x100), h)
}

func TestGenerator_ObserveAfterReset(t *testing.T) {
	g := NewGenerator()
	g.Reset(0x10)
	g.Observe(0x20)

	assert.Equal(t, Handle(0x21), g.Peek())
	assert.Equal(t, Handle(0x21), g.Next())
}

func TestGenerator_ResetAboveMax(t *testing.T) {
	g := NewGenerator()
	g.Observe(5)
	g.Reset(0x40)
	assert.Equal(t, Handle(0x40), g.Next())
	assert.Equal(t, Handle(0x40), g.Max())
}

func TestGenerator_ConcurrentNextUnique(t *testing.T) {
	g := NewGenerator()
	const workers, per = 8, 200

	var mu sync.Mutex
	seen := make(map[Handle]bool)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range per {
				h := g.Next()
				mu.Lock()
				seen[h] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, workers*per)
}

func TestHandle_JSON(t *testing.T) {
	data, err := json.Marshal(struct {
		H Handle `json:"h"`
	}{H: 0x2F})
	require.NoError(t, err)
	assert.JSONEq(t, `{"h":"2F"}`, string(data))

	var back struct {
		H Handle `json:"h"`
	}
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, Handle(0x2F), back.H)

	assert.Error(t, json.Unmarshal([]byte(`{"h":"XYZ"}`), &back))
}

func TestGenerator_RejectsHandlesAboveLimit(t *testing.T) {
	g := NewGenerator()
	g.Observe(0x10)

	err := g.Observe(MustParse("FFFFFFFFFFFFFFFF"))
	require.ErrorIs(t, err, ErrOutOfRange)
	err = g.Reset(Limit + 1)
	require.ErrorIs(t, err, ErrOutOfRange)

	assert.Equal(t, Handle(0x10), g.Max())
	assert.Equal(t, Handle(0x11), g.Next())
}

func TestGenerator_AllocatesUpToLimit(t *testing.T) {
	g := NewGenerator()
	require.NoError(t, g.Observe(Limit-1))

	assert.Equal(t, Limit, g.Peek())
	assert.Equal(t, Limit, g.Next())
	assert.True(t, Limit.InRange())
	assert.False(t, (Limit + 1).InRange())
}
