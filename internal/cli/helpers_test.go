package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dxfio/internal/config"
	"github.com/roach88/dxfio/internal/document"
	"github.com/roach88/dxfio/internal/tags"
	"github.com/roach88/dxfio/internal/testutil"
)

// writeDrawing saves a new drawing to a temp dir after edit (if any) has
// modified it.
//
//	model space: LINE on "Walls", LINE on "Walls", CIRCLE on "0"
//	block Door:  LINE on "0"
func writeDrawing(t *testing.T, name string, edit func(d *document.Document)) string {
	t.Helper()
	d := document.New(config.Default(),
		document.WithGUIDGenerator(testutil.NewFixedGUIDGenerator()),
		document.WithClock(testutil.NewFixedClock(testutil.Epoch)),
	)
	o, p := tags.Vec3(0, 0, 0), tags.Vec3(10, 0, 0)

	ms := d.Modelspace()
	_, err := ms.AddLine(o, p, map[int]any{8: "Walls"})
	require.NoError(t, err)
	_, err = ms.AddLine(p, o, map[int]any{8: "Walls"})
	require.NoError(t, err)
	_, err = ms.AddCircle(o, 2, nil)
	require.NoError(t, err)

	door, err := d.NewBlock("Door", o)
	require.NoError(t, err)
	_, err = door.AddLine(o, p, nil)
	require.NoError(t, err)

	if edit != nil {
		edit(d)
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, d.SaveAs(path, ""))
	return path
}

// execute runs cmd with args and returns its output.
func execute(cmd *cobra.Command, args ...string) (string, error) {
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// decodeResponse parses a JSON CLI response and re-decodes its data into
// out, if out is non-nil.
func decodeResponse(t *testing.T, output string, out any) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	if out != nil && resp.Data != nil {
		data, err := json.Marshal(resp.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, out))
	}
	return resp
}
