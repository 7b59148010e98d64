package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/dxfio/internal/store"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	DBPath      string
	Type        string
	Layer       string
	Container   string
	GroupBy     string
	GroupByCode int
}

// QueryResult holds either entity rows or grouped counts.
type QueryResult struct {
	Path     string         `json:"path"`
	Entities []store.Record `json:"entities,omitempty"`
	Groups   []store.Group  `json:"groups,omitempty"`
}

// WriteText prints rows or counts.
func (r QueryResult) WriteText(w io.Writer) error {
	if r.Groups != nil {
		for _, g := range r.Groups {
			if _, err := fmt.Fprintf(w, "%6d  %s\n", g.Count, g.Key); err != nil {
				return err
			}
		}
		return nil
	}
	for _, e := range r.Entities {
		if _, err := fmt.Fprintf(w, "%-8s %-12s %-16s %s\n", e.Handle, e.Type, e.Layer, e.Container); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d entities\n", len(r.Entities))
	return err
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <file>",
		Short: "Query the indexed entities of a drawing",
		Long: `List or count the entities of a drawing recorded by "dxfio index".

--group-by counts entities per type, layer, container or owner.
--group-by-code counts entities per value of a group code, for example
62 for the color index.

Example:
  dxfio query --db drawings.db --layer Walls plan.dxf
  dxfio query --db drawings.db --group-by type plan.dxf
  dxfio query --db drawings.db --group-by-code 62 plan.dxf`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "path to SQLite index (required)")
	cmd.Flags().StringVar(&opts.Type, "type", "", "only entities of this type")
	cmd.Flags().StringVar(&opts.Layer, "layer", "", "only entities on this layer")
	cmd.Flags().StringVar(&opts.Container, "container", "", "only entities of this block or layout block")
	cmd.Flags().StringVar(&opts.GroupBy, "group-by", "", "count per column (type|layer|container|owner)")
	cmd.Flags().IntVar(&opts.GroupByCode, "group-by-code", -1, "count per value of a group code")
	_ = cmd.MarkFlagRequired("db")
	cmd.MarkFlagsMutuallyExclusive("group-by", "group-by-code")

	return cmd
}

func runQuery(ctx context.Context, opts *QueryOptions, path string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.formatter(cmd)

	key, err := indexKey(path)
	if err != nil {
		return commandError(formatter, err)
	}

	st, err := store.Open(opts.DBPath)
	if err != nil {
		return commandError(formatter, &LoadError{Code: ErrCodeIndexFailed, Path: opts.DBPath, Message: "failed to open index", Err: err})
	}
	defer st.Close()

	info, err := st.Document(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return commandError(formatter, &LoadError{Code: ErrCodeNotFound, Path: path, Message: "not indexed"})
	}
	if err != nil {
		return commandError(formatter, &LoadError{Code: ErrCodeIndexFailed, Path: path, Message: "failed to look up", Err: err})
	}

	result := QueryResult{Path: info.Path}
	switch {
	case opts.GroupBy != "":
		result.Groups, err = st.CountBy(ctx, info.ID, opts.GroupBy)
		if err != nil {
			return commandError(formatter, &LoadError{Code: ErrCodeInvalidArgs, Path: path, Message: "invalid --group-by", Err: err})
		}
	case opts.GroupByCode >= 0:
		result.Groups, err = st.CountByCode(ctx, info.ID, opts.GroupByCode)
		if err != nil {
			return commandError(formatter, &LoadError{Code: ErrCodeIndexFailed, Path: path, Message: "query failed", Err: err})
		}
	default:
		result.Entities, err = st.Entities(ctx, info.ID, store.Filter{
			Type:      opts.Type,
			Layer:     opts.Layer,
			Container: opts.Container,
		})
		if err != nil {
			return commandError(formatter, &LoadError{Code: ErrCodeIndexFailed, Path: path, Message: "query failed", Err: err})
		}
	}
	formatter.VerboseLog("Queried %s (indexed %s)", info.Path, info.IndexedAt.Format("2006-01-02 15:04:05"))

	return formatter.Success(result)
}
