package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dxfio/internal/dxfver"
	"github.com/roach88/dxfio/internal/handle"
	"github.com/roach88/dxfio/internal/tags"
)

func layerRecord() tags.Tags {
	return tags.Tags{
		tags.New(0, "LAYER"),
		tags.New(5, "10"),
		tags.New(102, "{ACAD_XDICTIONARY"),
		tags.New(360, "11"),
		tags.New(102, "}"),
		tags.New(330, "2"),
		tags.New(100, "AcDbSymbolTableRecord"),
		tags.New(100, "AcDbLayerTableRecord"),
		tags.New(2, "Walls"),
		tags.New(70, 0),
		tags.New(62, 7),
		tags.New(6, "Continuous"),
		tags.New(1001, "MYAPP"),
		tags.New(1000, "payload"),
	}
}

func TestFromTags_SplitsStructuralTags(t *testing.T) {
	e, err := FromTags(layerRecord())
	require.NoError(t, err)

	assert.Equal(t, "LAYER", e.Type)
	assert.Equal(t, handle.Handle(0x10), e.Handle)
	assert.Equal(t, handle.Handle(0x2), e.Owner)
	require.Len(t, e.AppData, 1)
	assert.Len(t, e.AppData[0], 3)
	assert.Equal(t, "AcDbSymbolTableRecord", e.Body[0].Str())
	assert.Equal(t, "Walls", e.Name())
	assert.True(t, e.HasXData("MYAPP"))
}

func TestFromTags_DimstyleHandle(t *testing.T) {
	e, err := FromTags(tags.Tags{
		tags.New(0, "DIMSTYLE"),
		tags.New(105, "27"),
		tags.New(330, "A"),
		tags.New(100, "AcDbSymbolTableRecord"),
		tags.New(2, "Standard"),
	})
	require.NoError(t, err)
	assert.Equal(t, handle.Handle(0x27), e.Handle)

	out := e.Tags(ExportOptions{Version: dxfver.R2000, WriteHandles: true})
	assert.Equal(t, 105, out[1].Code)
}

func TestFromTags_OwnerAfterSubclassStaysInBody(t *testing.T) {
	e, err := FromTags(tags.Tags{
		tags.New(0, "LAYOUT"),
		tags.New(5, "1E"),
		tags.New(330, "1A"),
		tags.New(100, "AcDbLayout"),
		tags.New(330, "1F"),
	})
	require.NoError(t, err)
	assert.Equal(t, handle.Handle(0x1A), e.Owner)
	assert.Equal(t, handle.Handle(0x1F), e.Ref(330))
}

func TestFromTags_RequiresTypeMarker(t *testing.T) {
	_, err := FromTags(tags.Tags{tags.New(8, "0")})
	assert.Error(t, err)
}

func TestExport_RoundTrip(t *testing.T) {
	in := layerRecord()
	e, err := FromTags(in)
	require.NoError(t, err)

	out := e.Tags(ExportOptions{Version: dxfver.R2013, WriteHandles: true})
	assert.True(t, in.Equal(out), "got %v", out)
}

func TestExport_R12StripsModernTags(t *testing.T) {
	e, err := FromTags(layerRecord())
	require.NoError(t, err)

	out := e.Tags(ExportOptions{Version: dxfver.R12, WriteHandles: false})
	for _, tg := range out {
		assert.NotEqual(t, 5, tg.Code)
		assert.NotEqual(t, 100, tg.Code)
		assert.NotEqual(t, 330, tg.Code)
		assert.NotEqual(t, 360, tg.Code)
	}
	assert.Equal(t, "LAYER", out.Type())
	assert.True(t, out.Has(2))
}

func TestExport_ResolvesSymbols(t *testing.T) {
	e := New("DIMSTYLE", tags.Tags{
		tags.New(100, "AcDbSymbolTableRecord"),
		tags.New(2, "Standard"),
		tags.New(340, "99"),
	})
	e.Handle = 0x30
	e.Symbols = map[int]string{340: "Standard", 342: "_DOT", 343: "missing"}

	resolve := func(code int, name string) handle.Handle {
		switch name {
		case "Standard":
			return 0x11
		case "_DOT":
			return 0x44
		}
		return handle.Null
	}
	out := e.Tags(ExportOptions{Version: dxfver.R2013, WriteHandles: true, Resolve: resolve})

	t340, ok := out.First(340)
	require.True(t, ok)
	assert.Equal(t, "11", t340.Str())
	t342, ok := out.First(342)
	require.True(t, ok)
	assert.Equal(t, "44", t342.Str())
	assert.False(t, out.Has(343))
}

func TestSetAndRemove(t *testing.T) {
	e, err := FromTags(layerRecord())
	require.NoError(t, err)

	require.NoError(t, e.Set(62, 3))
	assert.Equal(t, int64(3), e.Int(62, 0))

	require.NoError(t, e.Set(370, -3))
	idx := e.Body.Index(370)
	assert.Less(t, idx, e.Body.Index(1001), "new attributes go before extended data")

	e.SetRef(390, 0xF)
	assert.Equal(t, handle.Handle(0xF), e.Ref(390))
	e.SetRef(390, handle.Null)
	assert.False(t, e.Has(390))

	e.Remove(62)
	assert.Equal(t, int64(256), e.Int(62, 256))
}

func TestReplaceRef(t *testing.T) {
	e, err := FromTags(layerRecord())
	require.NoError(t, err)
	require.NoError(t, e.Set(347, "11"))

	n := e.ReplaceRef(0x11, 0x20)
	assert.Equal(t, 2, n)
	assert.Equal(t, handle.Handle(0x20), e.Ref(347))
	assert.Equal(t, "20", e.AppData[0][1].Str())

	n = e.ReplaceRef(0x20, handle.Null)
	assert.Equal(t, 2, n)
	assert.False(t, e.Has(347))
}

func TestDictionary(t *testing.T) {
	d := New("DICTIONARY", tags.Tags{
		tags.New(100, "AcDbDictionary"),
		tags.New(281, 1),
		tags.New(3, "ACAD_GROUP"),
		tags.New(350, "D"),
	})
	h, ok := d.DictGet("ACAD_GROUP")
	require.True(t, ok)
	assert.Equal(t, handle.Handle(0xD), h)

	d.DictSet("ACAD_LAYOUT", 0x1A, false)
	d.DictSet("ACAD_GROUP", 0xE, true)
	entries := d.DictEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, DictEntry{Key: "ACAD_GROUP", Handle: 0xE}, entries[0])
	assert.Equal(t, DictEntry{Key: "ACAD_LAYOUT", Handle: 0x1A}, entries[1])

	assert.True(t, d.DictRemove("ACAD_GROUP"))
	assert.False(t, d.DictRemove("ACAD_GROUP"))
	assert.Len(t, d.DictEntries(), 1)
}

func TestClone(t *testing.T) {
	e, err := FromTags(layerRecord())
	require.NoError(t, err)
	c := e.Clone()
	assert.True(t, c.Handle.IsNull())
	require.NoError(t, c.Set(2, "Other"))
	assert.Equal(t, "Walls", e.Name())
}

func TestKey(t *testing.T) {
	assert.Equal(t, Key("Walls"), Key("WALLS"))
	assert.Equal(t, Key("\u00c4"), Key("A\u0308"))
	assert.NotEqual(t, Key("A"), Key("B"))
}

func TestIsValidName(t *testing.T) {
	assert.True(t, IsValidName("Layer 1"))
	assert.False(t, IsValidName(""))
	assert.False(t, IsValidName("a<b"))
	assert.False(t, IsValidName(" padded"))
}
