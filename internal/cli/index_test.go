package cli

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dxfio/internal/store"
	"github.com/roach88/dxfio/internal/testutil"
)

func fixNow(t *testing.T) {
	t.Helper()
	prev := Now
	Now = func() time.Time { return testutil.Epoch }
	t.Cleanup(func() { Now = prev })
}

func TestIndexAndQuery(t *testing.T) {
	fixNow(t)
	db := filepath.Join(t.TempDir(), "index.db")
	path := writeDrawing(t, "plan.dxf", nil)

	output, err := execute(NewIndexCommand(&RootOptions{Format: "json"}), "--db", db, path)
	require.NoError(t, err)

	var indexed IndexResult
	decodeResponse(t, output, &indexed)
	require.Len(t, indexed.Files, 1)
	assert.Equal(t, 4, indexed.Files[0].Entities)
	assert.True(t, filepath.IsAbs(indexed.Files[0].Path))

	query := func(t *testing.T, args ...string) QueryResult {
		t.Helper()
		output, err := execute(NewQueryCommand(&RootOptions{Format: "json"}), append([]string{"--db", db}, append(args, path)...)...)
		require.NoError(t, err)
		var result QueryResult
		decodeResponse(t, output, &result)
		return result
	}

	t.Run("filter by layer", func(t *testing.T) {
		result := query(t, "--layer", "Walls")
		require.Len(t, result.Entities, 2)
		for _, e := range result.Entities {
			assert.Equal(t, "LINE", e.Type)
			assert.Equal(t, "*Model_Space", e.Container)
		}
	})

	t.Run("filter by container", func(t *testing.T) {
		result := query(t, "--container", "Door")
		require.Len(t, result.Entities, 1)
		assert.Equal(t, "LINE", result.Entities[0].Type)
	})

	t.Run("group by type", func(t *testing.T) {
		result := query(t, "--group-by", "type")
		assert.Equal(t, []store.Group{{Key: "LINE", Count: 3}, {Key: "CIRCLE", Count: 1}}, result.Groups)
	})

	t.Run("group by code", func(t *testing.T) {
		result := query(t, "--group-by-code", "8")
		assert.Equal(t, []store.Group{{Key: "0", Count: 2}, {Key: "Walls", Count: 2}}, result.Groups)
	})

	t.Run("invalid group column", func(t *testing.T) {
		_, err := execute(NewQueryCommand(&RootOptions{Format: "text"}), "--db", db, "--group-by", "color", path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrCodeInvalidArgs)
	})

	t.Run("text output", func(t *testing.T) {
		output, err := execute(NewQueryCommand(&RootOptions{Format: "text"}), "--db", db, "--group-by", "layer", path)
		require.NoError(t, err)
		assert.Equal(t, "     2  0\n     2  Walls\n", output)
	})
}

func TestIndex_Reindex(t *testing.T) {
	fixNow(t)
	db := filepath.Join(t.TempDir(), "index.db")
	path := writeDrawing(t, "plan.dxf", nil)

	for range 2 {
		_, err := execute(NewIndexCommand(&RootOptions{Format: "text"}), "--db", db, path)
		require.NoError(t, err)
	}

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()

	docs, err := st.Documents(t.Context())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, 4, docs[0].Entities)
	assert.True(t, docs[0].IndexedAt.Equal(testutil.Epoch))
}

func TestIndex_Remove(t *testing.T) {
	db := filepath.Join(t.TempDir(), "index.db")
	path := writeDrawing(t, "plan.dxf", nil)

	_, err := execute(NewIndexCommand(&RootOptions{Format: "text"}), "--db", db, path)
	require.NoError(t, err)

	output, err := execute(NewIndexCommand(&RootOptions{Format: "text"}), "--db", db, "--remove", path)
	require.NoError(t, err)
	assert.Contains(t, output, "Removed")

	_, err = execute(NewQueryCommand(&RootOptions{Format: "text"}), "--db", db, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeNotFound)

	_, err = execute(NewIndexCommand(&RootOptions{Format: "text"}), "--db", db, "--remove", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeNotFound)
}

func TestIndex_MissingFile(t *testing.T) {
	db := filepath.Join(t.TempDir(), "index.db")

	_, err := execute(NewIndexCommand(&RootOptions{Format: "text"}), "--db", db, "/nonexistent/plan.dxf")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNotFound)
}
