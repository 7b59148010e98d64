package structure

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dxfio/internal/tags"
)

func load(t *testing.T, lines ...string) (*Structure, error) {
	t.Helper()
	text := strings.Join(lines, "\n") + "\n"
	return Load(tags.Compile(tags.Tokenize(strings.NewReader(text))))
}

func TestLoad_SectionsAndRecords(t *testing.T) {
	st, err := load(t,
		"0", "SECTION", "2", "HEADER",
		"9", "$ACADVER", "1", "AC1015",
		"9", "$HANDSEED", "5", "20",
		"0", "ENDSEC",
		"0", "SECTION", "2", "ENTITIES",
		"0", "LINE", "8", "0", "10", "0", "20", "0", "11", "1", "21", "1",
		"0", "CIRCLE", "100", "AcDbEntity", "100", "AcDbCircle", "40", "2.5",
		"0", "ENDSEC",
		"0", "EOF",
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"HEADER", "ENTITIES"}, st.Names())

	header := st.Get(Header)
	require.NotNil(t, header)
	require.Len(t, header.Records, 1)
	assert.Len(t, header.Records[0], 4)

	ents := st.Get(Entities)
	require.Len(t, ents.Records, 2)
	assert.Equal(t, "LINE", ents.Records[0].Type())
	assert.Equal(t, "CIRCLE", ents.Records[1].Type())
	assert.Len(t, ents.Records[1], 4, "subclass markers stay in the record")
}

func TestLoad_DropsThumbnail(t *testing.T) {
	st, err := load(t,
		"0", "SECTION", "2", "THUMBNAILIMAGE", "90", "3", "310", "AABBCC", "0", "ENDSEC",
		"0", "EOF",
	)
	require.NoError(t, err)
	assert.Nil(t, st.Get(Thumbnail))
	assert.Empty(t, st.Sections)
}

func TestLoad_UnknownSectionKept(t *testing.T) {
	st, err := load(t,
		"0", "SECTION", "2", "CUSTOMDATA", "0", "MYREC", "1", "hello", "0", "ENDSEC",
		"0", "EOF",
	)
	require.NoError(t, err)
	s := st.Get("CUSTOMDATA")
	require.NotNil(t, s)
	assert.False(t, IsManaged(s.Name))
	assert.Len(t, s.Tags(), 2)
}

func TestLoad_MissingEOFTolerated(t *testing.T) {
	st, err := load(t, "0", "SECTION", "2", "ENTITIES", "0", "ENDSEC")
	require.NoError(t, err)
	assert.NotNil(t, st.Get(Entities))
}

func TestLoad_RepeatedSectionMerged(t *testing.T) {
	st, err := load(t,
		"0", "SECTION", "2", "ENTITIES", "0", "LINE", "0", "ENDSEC",
		"0", "SECTION", "2", "ENTITIES", "0", "CIRCLE", "0", "ENDSEC",
		"0", "EOF",
	)
	require.NoError(t, err)
	require.Len(t, st.Sections, 1)
	assert.Len(t, st.Get(Entities).Records, 2)
}

func TestLoad_StructureErrors(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
	}{
		{"unterminated at end", []string{"0", "SECTION", "2", "ENTITIES", "0", "LINE"}},
		{"unterminated before EOF", []string{"0", "SECTION", "2", "ENTITIES", "0", "EOF"}},
		{"nested section", []string{"0", "SECTION", "2", "A", "0", "SECTION", "2", "B"}},
		{"missing name", []string{"0", "SECTION", "8", "A", "0", "ENDSEC"}},
		{"tag outside section", []string{"0", "LINE", "0", "EOF"}},
		{"endsec outside section", []string{"0", "ENDSEC", "0", "EOF"}},
		{"section without name at end", []string{"0", "SECTION"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(t, tt.lines...)
			require.Error(t, err)
			assert.True(t, tags.IsStructureError(err), "got %v", err)
		})
	}
}

func TestExport(t *testing.T) {
	var c tags.Collector
	Export(&c, "CUSTOMDATA", tags.Tags{tags.New(0, "MYREC")})
	require.Len(t, c.Tags, 5)
	assert.Equal(t, "SECTION", c.Tags[0].Str())
	assert.Equal(t, "CUSTOMDATA", c.Tags[1].Str())
	assert.Equal(t, "ENDSEC", c.Tags[4].Str())
}
