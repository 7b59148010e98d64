package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dxfio/internal/handle"
	"github.com/roach88/dxfio/internal/tags"
)

func header(version string, extra ...string) []string {
	lines := []string{"0", "SECTION", "2", "HEADER", "9", "$ACADVER", "1", version}
	lines = append(lines, extra...)
	return append(lines, "0", "ENDSEC")
}

func section(name string, body ...string) []string {
	lines := []string{"0", "SECTION", "2", name}
	lines = append(lines, body...)
	return append(lines, "0", "ENDSEC")
}

func file(parts ...[]string) string {
	var lines []string
	for _, p := range parts {
		lines = append(lines, p...)
	}
	lines = append(lines, "0", "EOF")
	return dxfText(lines...)
}

func line(extra ...string) []string {
	out := []string{"0", "LINE"}
	out = append(out, extra...)
	return append(out, "8", "0", "10", "0", "20", "0", "30", "0", "11", "1", "21", "1", "31", "0")
}

func join(parts ...[]string) []string {
	var out []string
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func warningsContaining(d *Document, substr string) []string {
	var out []string
	for _, w := range d.Warnings() {
		if strings.Contains(w, substr) {
			out = append(out, w)
		}
	}
	return out
}

func TestLoad_HandleSeedBelowMaximum(t *testing.T) {
	d := readText(t, file(
		header("AC1015", "9", "$HANDSEED", "5", "10"),
		section("ENTITIES", line("5", "FF")...),
	))

	_, ok := d.Lookup(handle.MustParse("FF"))
	require.True(t, ok)

	next := d.AllocateHandle()
	assert.Greater(t, uint64(next), uint64(0xFF))
	for h := range d.Entities() {
		assert.NotEqual(t, next, h)
	}
}

func TestLoad_HandleAboveLimit(t *testing.T) {
	text := file(
		header("AC1015"),
		section("ENTITIES", line("5", "FFFFFFFFFFFFFFFF")...),
	)
	_, err := Read(strings.NewReader(text), testOptions(""), deterministic()...)
	require.Error(t, err)
	assert.True(t, tags.IsStructureError(err))
	assert.ErrorIs(t, err, handle.ErrOutOfRange)
}

func TestLoad_HandleSeedAboveLimit(t *testing.T) {
	d := readText(t, file(
		header("AC1015", "9", "$HANDSEED", "5", "FFFFFFFFFFFFFFFF"),
		section("ENTITIES", line("5", "FF")...),
	))

	assert.Len(t, warningsContaining(d, "$HANDSEED"), 1)
	next := d.AllocateHandle()
	assert.Greater(t, uint64(next), uint64(0xFF))
	assert.True(t, next.InRange())
	assert.True(t, d.db.Seed().InRange())
}

func TestLoad_VersionLadder(t *testing.T) {
	tests := []struct {
		recorded string
		want     string
	}{
		{"AC1006", "AC1009"},
		{"AC1009", "AC1009"},
		{"AC1012", "AC1015"},
		{"AC1014", "AC1015"},
		{"AC1015", "AC1015"},
		{"AC1027", "AC1027"},
		{"AC1040", "AC1032"},
		{"garbage", "AC1009"},
	}
	for _, tt := range tests {
		t.Run(tt.recorded, func(t *testing.T) {
			d := readText(t, file(header(tt.recorded)))
			assert.Equal(t, tt.want, string(d.Version()))
			assert.Equal(t, tt.recorded, string(d.LoadedVersion()))
			assert.Equal(t, tt.want, d.Header().Str("$ACADVER", ""))
		})
	}
}

func TestLoad_LegacyTablesGetHandlesAndOwners(t *testing.T) {
	d := readText(t, file(
		header("AC1006"),
		section("TABLES",
			"0", "TABLE", "2", "LAYER", "70", "1",
			"0", "LAYER", "2", "Walls", "70", "0", "62", "7", "6", "CONTINUOUS",
			"0", "ENDTAB"),
		section("ENTITIES", line()...),
	))

	assert.Equal(t, "R12", d.Version().Release())
	layers := d.Tables().Layers()
	walls, ok := layers.Get("Walls")
	require.True(t, ok)
	assert.False(t, walls.Handle.IsNull())
	assert.Equal(t, layers.Head().Handle, walls.Owner)
	for _, e := range layers.Entries() {
		assert.Equal(t, layers.Head().Handle, e.Owner, "layer %s", e.Name())
	}

	msp := d.Modelspace()
	require.Equal(t, 1, msp.Len())
	assert.False(t, msp.Entities()[0].Handle.IsNull())
	assert.Empty(t, warningsContaining(d, "linetype"), "CONTINUOUS matches the Continuous entry")
}

func TestLoad_DeduplicatesWarnings(t *testing.T) {
	d := readText(t, file(
		header("AC1015"),
		section("ENTITIES", join(
			line("5", "A0", "347", "ABC"),
			line("5", "A1", "347", "ABC"),
		)...),
	))

	assert.Len(t, warningsContaining(d, "material handle ABC"), 1)
	assert.False(t, d.IsCompatible())
	assert.Equal(t, 2, d.Modelspace().Len())
}

func TestLoad_DuplicateHandles(t *testing.T) {
	d := readText(t, file(
		header("AC1015", "9", "$HANDSEED", "5", "B0"),
		section("ENTITIES", join(
			line("5", "A0"),
			line("5", "A0"),
		)...),
	))

	assert.Len(t, warningsContaining(d, "duplicate handle A0"), 1)
	ents := d.Modelspace().Entities()
	require.Len(t, ents, 2)
	assert.Equal(t, handle.MustParse("A0"), ents[0].Handle)
	assert.Greater(t, uint64(ents[1].Handle), uint64(0xA0))
}

func TestLoad_InvalidHandSeed(t *testing.T) {
	d := readText(t, file(header("AC1015", "9", "$HANDSEED", "5", "XYZ")))
	assert.Len(t, warningsContaining(d, "$HANDSEED"), 1)
}

func TestLoad_StructureErrorAborts(t *testing.T) {
	_, err := Read(strings.NewReader(dxfText("0", "SECTION", "2", "HEADER", "0", "EOF")), testOptions(""))
	require.Error(t, err)
	assert.True(t, tags.IsStructureError(err))
}

func TestLoad_PaperSpaceFlag(t *testing.T) {
	d := readText(t, file(
		header("AC1009"),
		section("ENTITIES", join(
			line("67", "1"),
			line(),
		)...),
	))

	assert.Equal(t, 1, d.Modelspace().Len())
	assert.Equal(t, 1, d.ActiveLayout().Len())
}

func TestLoad_R12BlockNames(t *testing.T) {
	d := readText(t, file(
		header("AC1009"),
		section("BLOCKS",
			"0", "BLOCK", "8", "0", "2", "$MODEL_SPACE", "70", "0", "10", "0", "20", "0", "30", "0", "3", "$MODEL_SPACE",
			"0", "ENDBLK", "8", "0",
			"0", "BLOCK", "8", "0", "2", "Door", "70", "0", "10", "0", "20", "0", "30", "0", "3", "Door",
			"0", "LINE", "8", "0", "10", "0", "20", "0", "30", "0", "11", "0", "21", "2", "31", "0",
			"0", "ENDBLK", "8", "0"),
	))

	assert.Equal(t, 3, d.Blocks().Len(), "model space, paper space and Door")
	assert.True(t, d.Blocks().Has(ModelSpaceBlock))
	door, err := d.Block("Door")
	require.NoError(t, err)
	assert.Equal(t, 1, door.Len())
	assert.Equal(t, door.Handle(), door.Entities()[0].Owner)
}

func TestLoad_BlockWithoutEndBlk(t *testing.T) {
	d := readText(t, file(
		header("AC1009"),
		section("BLOCKS",
			"0", "BLOCK", "8", "0", "2", "Door", "70", "0", "10", "0", "20", "0", "30", "0", "3", "Door",
			"0", "LINE", "8", "0", "10", "0", "20", "0", "30", "0", "11", "0", "21", "2", "31", "0"),
	))

	assert.Len(t, warningsContaining(d, "without ENDBLK"), 1)
	door, err := d.Block("Door")
	require.NoError(t, err)
	assert.NotNil(t, door.EndBlk())
	assert.Equal(t, 1, door.Len())
}

func TestLoad_UnknownTableDropped(t *testing.T) {
	d := readText(t, file(
		header("AC1009"),
		section("TABLES",
			"0", "TABLE", "2", "NOSUCH", "70", "1",
			"0", "NOSUCH", "2", "x",
			"0", "ENDTAB"),
	))

	assert.Len(t, warningsContaining(d, "unknown table NOSUCH"), 1)
	assert.Len(t, warningsContaining(d, "outside of its table"), 1)
}

func TestLoad_DuplicateTableEntry(t *testing.T) {
	d := readText(t, file(
		header("AC1009"),
		section("TABLES",
			"0", "TABLE", "2", "LAYER", "70", "2",
			"0", "LAYER", "2", "Walls", "70", "0", "62", "1", "6", "Continuous",
			"0", "LAYER", "2", "WALLS", "70", "0", "62", "2", "6", "Continuous",
			"0", "ENDTAB"),
	))

	walls, ok := d.Tables().Layers().Get("walls")
	require.True(t, ok)
	assert.Equal(t, int64(1), walls.Int(62, 0), "first entry wins")
	assert.Len(t, warningsContaining(d, "duplicate LAYER entry"), 1)
}

func TestLoad_UndefinedLinetype(t *testing.T) {
	d := readText(t, file(
		header("AC1009"),
		section("ENTITIES", line("6", "DASHED")...),
	))
	assert.Len(t, warningsContaining(d, `linetype "DASHED"`), 1)
}

func TestLoad_MetadataOnlyWhenMissing(t *testing.T) {
	d := readText(t, file(header("AC1015",
		"9", "$TDCREATE", "40", "2450000.5",
		"9", "$FINGERPRINTGUID", "2", "{KEEP}",
	)))

	assert.InDelta(t, 2450000.5, d.Header().Float("$TDCREATE", 0), 1e-9)
	assert.Equal(t, "{KEEP}", d.Header().Str("$FINGERPRINTGUID", ""))
	assert.Equal(t, "{00000000-0000-0000-0000-000000000001}", d.Header().Str("$VERSIONGUID", ""))
}

func TestLoad_NoHeader(t *testing.T) {
	d := readText(t, file(section("ENTITIES", line()...)))
	assert.Equal(t, "R12", d.Version().Release())
	assert.Equal(t, 1, d.Modelspace().Len())
}

func TestLoad_EncodingFromCodepage(t *testing.T) {
	d := readText(t, file(header("AC1015", "9", "$DWGCODEPAGE", "3", "ANSI_1251")))
	assert.Equal(t, "cp1251", d.Encoding())
}

func TestLoadState_Order(t *testing.T) {
	assert.Equal(t, "RAW_TAGS", stateRawTags.String())
	assert.Equal(t, "FINALIZED", stateFinalized.String())
	assert.Equal(t, "loadState(42)", loadState(42).String())

	l := &loader{}
	assert.Panics(t, func() { l.advance(stateHeaderReady) })
	assert.NotPanics(t, func() { l.advance(stateStructuredSections) })
}
