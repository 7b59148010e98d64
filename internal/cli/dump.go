package cli

import (
	"fmt"
	"io"
	"iter"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/dxfio/internal/document"
	"github.com/roach88/dxfio/internal/entity"
)

// DumpOptions holds flags for the dump command.
type DumpOptions struct {
	*RootOptions
	Layout string
	Block  string
	Type   string
}

// DumpEntry is one listed entity.
type DumpEntry struct {
	Handle    string `json:"handle"`
	Type      string `json:"type"`
	Layer     string `json:"layer"`
	Container string `json:"container"`
}

// DumpResult lists entities in layout and block order.
type DumpResult struct {
	Path     string      `json:"path"`
	Entities []DumpEntry `json:"entities"`
}

// WriteText prints one row per entity.
func (r DumpResult) WriteText(w io.Writer) error {
	for _, e := range r.Entities {
		if _, err := fmt.Fprintf(w, "%-8s %-12s %-16s %s\n", e.Handle, e.Type, e.Layer, e.Container); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d entities\n", len(r.Entities))
	return err
}

// NewDumpCommand creates the dump command.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DumpOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "List the entities of a drawing",
		Long: `List handle, type, layer and container of every graphical entity,
layouts in tab order first, then the block definitions.

Example:
  dxfio dump plan.dxf
  dxfio dump --layout Model --type LINE plan.dxf
  dxfio dump --block Door plan.dxf`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Layout, "layout", "", "only list entities of this layout")
	cmd.Flags().StringVar(&opts.Block, "block", "", "only list entities of this block definition")
	cmd.Flags().StringVar(&opts.Type, "type", "", "only list entities of this type")
	cmd.MarkFlagsMutuallyExclusive("layout", "block")

	return cmd
}

func runDump(opts *DumpOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	d, err := loadForCommand(opts.RootOptions, path)
	if err != nil {
		return commandError(formatter, err)
	}

	var seq iter.Seq[*entity.Entity]
	switch {
	case opts.Layout != "":
		l, err := d.Layout(opts.Layout)
		if err != nil {
			return commandError(formatter, err)
		}
		seq = slices.Values(l.Entities())
	case opts.Block != "":
		b, err := d.Block(opts.Block)
		if err != nil {
			return commandError(formatter, &LoadError{Code: ErrCodeNotFound, Path: path, Message: "block not found", Err: err})
		}
		seq = slices.Values(b.Entities())
	default:
		seq = d.ChainLayoutsAndBlocks()
	}

	result := DumpResult{Path: path, Entities: []DumpEntry{}}
	for e := range seq {
		if opts.Type != "" && e.Type != opts.Type {
			continue
		}
		result.Entities = append(result.Entities, DumpEntry{
			Handle:    e.Handle.String(),
			Type:      e.Type,
			Layer:     e.Layer(),
			Container: ownerName(d, e),
		})
	}
	formatter.VerboseLog("Listed %d of %d entities", len(result.Entities), d.Len())

	return formatter.Success(result)
}

// ownerName returns the block name of the BLOCK_RECORD owning e.
func ownerName(d *document.Document, e *entity.Entity) string {
	if owner, ok := d.Lookup(e.Owner); ok {
		return owner.Name()
	}
	return ""
}
