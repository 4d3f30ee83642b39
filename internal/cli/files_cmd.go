// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// files_cmd.go - rm and rm-family commands.

package cli

import (
	"errors"
	"fmt"

	"github.com/jeranaias/diagutil/internal/util"
)

// RemoveData is the JSON payload of rm.
type RemoveData struct {
	Path    string `json:"path"`
	Deleted bool   `json:"deleted"`
}

// FamilyData is the JSON payload of rm-family.
type FamilyData struct {
	Path   string   `json:"path"`
	DryRun bool     `json:"dry_run"`
	Files  []string `json:"files"`
	Failed []string `json:"failed,omitempty"`
}

// HandleRemove handles "diagutil rm PATH".
func (a *App) HandleRemove(args Args) error {
	p := NewArgParser(args.Raw)
	path := p.Positional(0)
	if path == "" {
		return ErrMissingArgument("path", "diagutil rm old-report.pdf")
	}

	deleted, err := util.DeleteIfExists(path)
	if err != nil {
		return err
	}

	if args.JSON {
		return NewJSONResponse("rm", RemoveData{Path: path, Deleted: deleted}).Print(a.Out)
	}
	if args.Quiet {
		return nil
	}
	if deleted {
		fmt.Fprintf(a.Out, "%s deleted %s\n", RenderStatus("ok"), path)
	} else {
		fmt.Fprintf(a.Out, "%s %s does not exist\n", RenderStatus("skip"), path)
	}
	return nil
}

// HandleRemoveFamily handles "diagutil rm-family PATH [--dry-run]".
func (a *App) HandleRemoveFamily(args Args) error {
	p := NewArgParser(args.Raw, "dry-run", "n")
	path := p.Positional(0)
	if path == "" {
		return ErrMissingArgument("path", "diagutil rm-family out/diagram.pdf --dry-run")
	}
	dryRun := p.AnyBool("dry-run", "n")

	var files []string
	var err error
	if dryRun {
		files, err = util.FamilyMembers(path)
	} else {
		files, err = util.DeleteFamily(path)
	}

	failed := failedPaths(err)
	if err != nil && files == nil && len(failed) == 0 {
		// The sweep never started (bad path, unreadable directory).
		return err
	}

	if args.JSON {
		if files == nil {
			files = []string{}
		}
		data := FamilyData{Path: path, DryRun: dryRun, Files: files, Failed: failed}
		if err != nil {
			resp := NewJSONErrorResponse("rm-family", err)
			resp.Data = data
			_ = resp.Print(a.Out)
			return &reportedError{err}
		}
		return NewJSONResponse("rm-family", data).Print(a.Out)
	}

	if !args.Quiet {
		width := GetTerminalWidth() - 10
		status := "ok"
		if dryRun {
			status = "dry"
		}
		for _, f := range files {
			fmt.Fprintf(a.Out, "%s %s\n", RenderStatus(status), PadPath(f, width))
		}
		for _, f := range failed {
			fmt.Fprintf(a.Out, "%s %s\n", RenderStatus("fail"), PadPath(f, width))
		}
		if len(files) == 0 && len(failed) == 0 {
			fmt.Fprintf(a.Out, "%s no files match %s.*\n", RenderStatus("skip"), util.FileStem(path))
		}
	}
	return err
}

// failedPaths lists the paths of the FileErrors joined into err.
func failedPaths(err error) []string {
	if err == nil {
		return nil
	}
	var out []string
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for _, e := range joined.Unwrap() {
			var fe *util.FileError
			if errors.As(e, &fe) && fe.Op == "delete" {
				out = append(out, fe.Path)
			}
		}
		return out
	}
	var fe *util.FileError
	if errors.As(err, &fe) && fe.Op == "delete" {
		out = append(out, fe.Path)
	}
	return out
}

// reportedError wraps an error whose JSON document has already been
// printed, so Execute only maps it to an exit code.
type reportedError struct{ error }

func (e *reportedError) Unwrap() error { return e.error }
