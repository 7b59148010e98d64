package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/dxfio/internal/store"
)

// Now returns the indexing timestamp. Tests replace it.
var Now = time.Now

// IndexOptions holds flags for the index command.
type IndexOptions struct {
	*RootOptions
	DBPath string
	Remove bool
}

// IndexedFile is one row of the index summary.
type IndexedFile struct {
	Path     string `json:"path"`
	ID       int64  `json:"id,omitempty"`
	Entities int    `json:"entities"`
	Removed  bool   `json:"removed,omitempty"`
}

// IndexResult summarizes an index run.
type IndexResult struct {
	DB    string        `json:"db"`
	Files []IndexedFile `json:"files"`
}

// WriteText prints one line per file.
func (r IndexResult) WriteText(w io.Writer) error {
	for _, f := range r.Files {
		var err error
		if f.Removed {
			_, err = fmt.Fprintf(w, "Removed %s\n", f.Path)
		} else {
			_, err = fmt.Fprintf(w, "Indexed %s: %d entities\n", f.Path, f.Entities)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// NewIndexCommand creates the index command.
func NewIndexCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IndexOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "index <file>...",
		Short: "Record the entities of drawings in an SQLite index",
		Long: `Load each drawing and store its entities (handle, type, layer,
container) and their group code values in an SQLite database. Indexing
a file again replaces its previous rows.

Example:
  dxfio index --db drawings.db plan.dxf site.dxf
  dxfio index --db drawings.db --remove plan.dxf`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd.Context(), opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "path to SQLite index (required)")
	cmd.Flags().BoolVar(&opts.Remove, "remove", false, "remove the files from the index instead")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runIndex(ctx context.Context, opts *IndexOptions, paths []string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.formatter(cmd)

	st, err := store.Open(opts.DBPath)
	if err != nil {
		return commandError(formatter, &LoadError{Code: ErrCodeIndexFailed, Path: opts.DBPath, Message: "failed to open index", Err: err})
	}
	defer st.Close()

	result := IndexResult{DB: opts.DBPath, Files: []IndexedFile{}}
	for _, path := range paths {
		key, err := indexKey(path)
		if err != nil {
			return commandError(formatter, err)
		}

		if opts.Remove {
			removed, err := st.DeleteDocument(ctx, key)
			if err != nil {
				return commandError(formatter, &LoadError{Code: ErrCodeIndexFailed, Path: path, Message: "failed to remove", Err: err})
			}
			if !removed {
				return commandError(formatter, &LoadError{Code: ErrCodeNotFound, Path: path, Message: "not indexed"})
			}
			result.Files = append(result.Files, IndexedFile{Path: key, Removed: true})
			continue
		}

		d, err := loadForCommand(opts.RootOptions, path)
		if err != nil {
			return commandError(formatter, err)
		}
		id, err := st.IndexDocument(ctx, key, d, Now())
		if err != nil {
			return commandError(formatter, &LoadError{Code: ErrCodeIndexFailed, Path: path, Message: "failed to index", Err: err})
		}
		info, err := st.Document(ctx, key)
		if err != nil {
			return commandError(formatter, &LoadError{Code: ErrCodeIndexFailed, Path: path, Message: "failed to read back", Err: err})
		}
		formatter.VerboseLog("Indexed %s as document %d", d, id)
		result.Files = append(result.Files, IndexedFile{Path: key, ID: id, Entities: info.Entities})
	}

	return formatter.Success(result)
}

// indexKey returns the absolute path a file is indexed under.
func indexKey(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", &LoadError{Code: ErrCodeInvalidArgs, Path: path, Message: "cannot resolve path", Err: err}
	}
	return abs, nil
}
