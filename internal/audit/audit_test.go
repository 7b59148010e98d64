package audit

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dxfio/internal/config"
	"github.com/roach88/dxfio/internal/document"
	"github.com/roach88/dxfio/internal/entity"
	"github.com/roach88/dxfio/internal/handle"
	"github.com/roach88/dxfio/internal/tags"
	"github.com/roach88/dxfio/internal/testutil"
)

var origin = tags.Vec3(0, 0, 0)

func newDoc(t *testing.T, version string) *document.Document {
	t.Helper()
	opts := config.Default()
	if version != "" {
		opts.DefaultVersion = version
	}
	return document.New(opts,
		document.WithGUIDGenerator(testutil.NewFixedGUIDGenerator()),
	)
}

func addLine(t *testing.T, d *document.Document, values map[int]any) *entity.Entity {
	t.Helper()
	e, err := d.Modelspace().AddLine(origin, tags.Vec3(1, 1, 0), values)
	require.NoError(t, err)
	return e
}

// addVerbatim adds a graphical entity of a type without attribute
// schema.
func addVerbatim(t *testing.T, d *document.Document, typ string, body ...tags.Tag) *entity.Entity {
	t.Helper()
	e := entity.New(typ, append(tags.Tags{
		tags.New(tags.CodeSubclass, "AcDbEntity"),
		tags.New(tags.CodeLayer, "0"),
	}, body...))
	require.NoError(t, d.Modelspace().AddEntity(e))
	return e
}

func codes(issues []Issue) []string {
	var out []string
	for _, i := range issues {
		out = append(out, i.Code)
	}
	return out
}

func TestRun_CleanDocument(t *testing.T) {
	for _, version := range []string{"R12", "R2000", "R2013", "R2018"} {
		t.Run(version, func(t *testing.T) {
			d := newDoc(t, version)
			issues := FilterZeroPointers(New(d).Run())
			assert.Empty(t, issues)
		})
	}
}

func TestRun_Checks(t *testing.T) {
	tests := []struct {
		name    string
		version string
		corrupt func(t *testing.T, d *document.Document)
		want    []string
	}{
		{
			name: "undefined linetype",
			corrupt: func(t *testing.T, d *document.Document) {
				addLine(t, d, map[int]any{6: "DASHED"})
			},
			want: []string{ErrUndefinedLinetype},
		},
		{
			name: "ByLayer and ByBlock need no table entry",
			corrupt: func(t *testing.T, d *document.Document) {
				addLine(t, d, map[int]any{6: "BYLAYER"})
				addLine(t, d, map[int]any{6: "byblock"})
			},
		},
		{
			name: "layer with undefined linetype",
			corrupt: func(t *testing.T, d *document.Document) {
				_, err := d.Tables().Layers().New("Walls", map[int]any{6: "DASHED"})
				require.NoError(t, err)
			},
			want: []string{ErrUndefinedLinetype},
		},
		{
			name: "linetype lookup ignores case",
			corrupt: func(t *testing.T, d *document.Document) {
				addLine(t, d, map[int]any{6: "CONTINUOUS"})
			},
		},
		{
			name: "undefined text style",
			corrupt: func(t *testing.T, d *document.Document) {
				addVerbatim(t, d, "TEXT", tags.New(tags.CodeSubclass, "AcDbText"), tags.New(7, "Fancy"))
			},
			want: []string{ErrUndefinedTextStyle},
		},
		{
			name: "undefined dimension style",
			corrupt: func(t *testing.T, d *document.Document) {
				addVerbatim(t, d, "DIMENSION", tags.New(tags.CodeSubclass, "AcDbDimension"), tags.New(3, "ISO-25"))
			},
			want: []string{ErrUndefinedDimStyle},
		},
		{
			name: "invalid layer name",
			corrupt: func(t *testing.T, d *document.Document) {
				addLine(t, d, map[int]any{8: "bad<name"})
			},
			want: []string{ErrInvalidLayerName},
		},
		{
			name: "system layer accepted in modern documents",
			corrupt: func(t *testing.T, d *document.Document) {
				addLine(t, d, map[int]any{8: "*ADSK_SYSTEM_LIGHTS"})
			},
		},
		{
			name:    "system layer rejected in R12",
			version: "R12",
			corrupt: func(t *testing.T, d *document.Document) {
				addLine(t, d, map[int]any{8: "*ADSK_SYSTEM_LIGHTS"})
			},
			want: []string{ErrInvalidLayerName},
		},
		{
			name: "color out of range",
			corrupt: func(t *testing.T, d *document.Document) {
				addLine(t, d, map[int]any{62: 300})
				addLine(t, d, map[int]any{62: -1})
				addLine(t, d, map[int]any{62: 257})
			},
			want: []string{ErrInvalidColorIndex, ErrInvalidColorIndex},
		},
		{
			name: "negative layer color means off",
			corrupt: func(t *testing.T, d *document.Document) {
				_, err := d.Tables().Layers().New("Hidden", map[int]any{62: -7})
				require.NoError(t, err)
			},
		},
		{
			name: "invalid table entry name",
			corrupt: func(t *testing.T, d *document.Document) {
				layer, err := d.Tables().Layers().New("Walls", nil)
				require.NoError(t, err)
				require.NoError(t, layer.Set(tags.CodeName, "Wa|lls"))
			},
			want: []string{ErrInvalidTableEntryName},
		},
		{
			name: "missing owner",
			corrupt: func(t *testing.T, d *document.Document) {
				e := addLine(t, d, nil)
				e.Owner = handle.MustParse("FFFF0")
			},
			want: []string{ErrInvalidOwner},
		},
		{
			name: "missing root dictionary entry",
			corrupt: func(t *testing.T, d *document.Document) {
				d.Objects().RootDict().DictRemove("ACAD_PLOTSTYLENAME")
			},
			want: []string{ErrMissingRootDictEntry},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDoc(t, tt.version)
			tt.corrupt(t, d)
			issues := FilterZeroPointers(New(d).Run())
			assert.Equal(t, tt.want, codes(issues))
		})
	}
}

func TestRun_PointerTargetReportedOnce(t *testing.T) {
	d := newDoc(t, "")
	first := addLine(t, d, map[int]any{347: "ABC"})
	second := addLine(t, d, map[int]any{347: "ABC"})

	issues := New(d).Run()
	require.Len(t, issues, 1)
	assert.Equal(t, ErrPointerTargetMissing, issues[0].Code)
	assert.Equal(t, first.Handle, issues[0].Handle)
	assert.Equal(t, handle.MustParse("ABC"), issues[0].Target)
	assert.False(t, issues[0].Fixed)

	// report only: both pointers stay
	assert.True(t, first.Has(347))
	assert.True(t, second.Has(347))
}

func TestRun_ZeroPointers(t *testing.T) {
	d := newDoc(t, "")
	addLine(t, d, map[int]any{340: "0"})

	issues := New(d).Run()
	require.Len(t, issues, 1)
	assert.Equal(t, ErrPointerTargetMissing, issues[0].Code)
	assert.True(t, issues[0].Target.IsNull())
	assert.Empty(t, FilterZeroPointers(issues))
}

func TestRun_ReportsDanglingGroupMember(t *testing.T) {
	d := newDoc(t, "")
	line := addLine(t, d, nil)
	_, err := d.Groups().New("doors", "", line.Handle)
	require.NoError(t, err)

	grp, ok := d.Groups().Get("doors")
	require.True(t, ok)
	require.NoError(t, grp.Set(340, "DEAD"))

	issues := New(d).Run()
	assert.Contains(t, codes(issues), ErrPointerTargetMissing)
}

func TestRun_Fix(t *testing.T) {
	d := newDoc(t, "")
	dashed := addLine(t, d, map[int]any{6: "DASHED", 347: "ABC"})
	other := addLine(t, d, map[int]any{347: "ABC"})
	colored := addLine(t, d, map[int]any{62: 999})
	text := addVerbatim(t, d, "TEXT", tags.New(tags.CodeSubclass, "AcDbText"), tags.New(7, "Fancy"))
	dim := addVerbatim(t, d, "DIMENSION", tags.New(tags.CodeSubclass, "AcDbDimension"), tags.New(3, "ISO-25"))
	layer, err := d.Tables().Layers().New("Walls", map[int]any{6: "DASHED"})
	require.NoError(t, err)
	d.Objects().RootDict().DictRemove("ACAD_GROUP")

	issues := New(d, WithFix(true)).Run()
	require.NotEmpty(t, issues)
	for _, i := range issues {
		assert.True(t, i.Fixed, "%s not fixed", i)
	}

	assert.Equal(t, "ByLayer", dashed.Str(tags.CodeLinetype, ""))
	assert.Equal(t, "Continuous", layer.Str(tags.CodeLinetype, ""))
	assert.False(t, dashed.Has(347))
	assert.False(t, other.Has(347))
	assert.EqualValues(t, 256, colored.Int(tags.CodeColor, 0))
	assert.Equal(t, "Standard", text.Str(7, ""))
	assert.Equal(t, "Standard", dim.Str(3, ""))
	_, ok := d.Objects().NamedDict("ACAD_GROUP")
	assert.True(t, ok)

	assert.Empty(t, FilterZeroPointers(New(d).Run()), "second run finds nothing")
}

func TestRun_ResetsBetweenRuns(t *testing.T) {
	d := newDoc(t, "")
	addLine(t, d, map[int]any{62: 999})
	a := New(d)
	assert.Len(t, a.Run(), 1)
	assert.Len(t, a.Run(), 1)
	assert.True(t, a.HasIssues())
	assert.Len(t, a.Issues(), 1)
}

func TestIssue_Error(t *testing.T) {
	i := Issue{Code: ErrInvalidColorIndex, Type: "LINE", Handle: 0x2A, Message: "invalid color index 999"}
	assert.Equal(t, "[A121] LINE #2A: invalid color index 999", i.Error())

	doc := Issue{Code: ErrMissingRootDictEntry, Message: "missing root dictionary entry ACAD_GROUP"}
	assert.Equal(t, "[A101] missing root dictionary entry ACAD_GROUP", doc.Error())
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, nil))
	assert.Equal(t, "No issues found.\n\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteReport(&buf, []Issue{
		{Code: ErrUndefinedLinetype, Type: "LINE", Handle: 0x30, Message: `linetype "DASHED" is not defined`, Fixed: true},
		{Code: ErrMissingRootDictEntry, Message: "missing root dictionary entry ACAD_GROUP"},
	}))
	want := "2 issues found.\n\n" +
		"   1. Issue [A111] in LINE #30\n" +
		"   linetype \"DASHED\" is not defined\n" +
		"   fixed\n\n" +
		"   2. Issue [A101] in document\n" +
		"   missing root dictionary entry ACAD_GROUP\n\n"
	assert.Equal(t, want, buf.String())
}

func TestValidate(t *testing.T) {
	d := newDoc(t, "")
	var buf bytes.Buffer
	ok, err := Validate(d, &buf)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "No issues found.\n\n", buf.String())

	addLine(t, d, map[int]any{6: "DASHED"})
	buf.Reset()
	ok, err = Validate(d, &buf)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, buf.String(), "1 issues found.")
	assert.Equal(t, "DASHED", d.Modelspace().Entities()[0].Str(tags.CodeLinetype, ""), "validate never fixes")

	ok, err = Validate(d, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}
