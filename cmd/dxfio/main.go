// dxfio inspects, audits, converts and indexes DXF drawings.
//
// Usage:
//
//	dxfio info <file>                  Show version, encoding and contents
//	dxfio audit [--fix] <file>         Report and repair structural defects
//	dxfio validate <file>              Pass/fail check, exit status 1 on issues
//	dxfio convert <in> <out>           Rewrite in another version or encoding
//	dxfio new <out>                    Write an empty drawing
//	dxfio dump <file>                  List entities
//	dxfio index --db <db> <file>...    Record entities in an SQLite index
//	dxfio query --db <db> <file>       Query the index
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/dxfio/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		code := cli.GetExitCode(err)
		// Commands report their own errors; flag and argument errors from
		// cobra are printed here.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
			code = cli.ExitCommandError
		}
		os.Exit(code)
	}
}
