// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// framework_cmd.go - .NET Framework version gate command.

package cli

import (
	"fmt"

	"github.com/jeranaias/diagutil/internal/detect"
)

// FrameworkData is the JSON payload of framework.
type FrameworkData struct {
	Required         string `json:"required"`
	RequiredRelease  uint32 `json:"required_release"`
	Known            bool   `json:"known"`
	InstalledRelease uint32 `json:"installed_release"`
	InstalledVersion string `json:"installed_version"`
	Satisfied        bool   `json:"satisfied"`
}

// FrameworkRelease is one row of "framework --list".
type FrameworkRelease struct {
	Version string `json:"version"`
	Release uint32 `json:"release"`
}

// HandleFramework handles "diagutil framework [VERSION] [--list]".
func (a *App) HandleFramework(args Args) error {
	p := NewArgParser(args.Raw, "list")
	if p.BoolFlag("list") {
		return a.listFrameworks(args)
	}

	label := p.Positional(0)
	if label == "" {
		label = a.Config.Framework.MinVersion
	}
	if label == "" {
		return ErrMissingArgument("version", "diagutil framework 4.8")
	}

	required, known := detect.RequiredRelease(label)
	installed := a.Checker.Installed()
	data := FrameworkData{
		Required:         label,
		RequiredRelease:  required,
		Known:            known,
		InstalledRelease: installed,
		InstalledVersion: detect.VersionForRelease(installed),
		Satisfied:        detect.Satisfies(installed, label),
	}

	if args.JSON {
		if err := NewJSONResponse("framework", data).Print(a.Out); err != nil {
			return err
		}
		if !data.Satisfied {
			return &reportedError{&CheckFailedError{What: "framework too old"}}
		}
		return nil
	}

	if !args.Quiet {
		installedLabel := data.InstalledVersion
		if installedLabel == "" {
			installedLabel = "none"
		}
		fmt.Fprintln(a.Out, RenderKV("Required", fmt.Sprintf("%s (release %d)", label, required)))
		fmt.Fprintln(a.Out, RenderKV("Installed", fmt.Sprintf("%s (release %d)", installedLabel, installed)))
		if !known {
			fmt.Fprintf(a.Out, "%s unknown version %q requires nothing\n", RenderStatus("warn"), label)
		}
	}
	if !data.Satisfied {
		return &CheckFailedError{What: fmt.Sprintf(".NET Framework %s or later is not installed", label)}
	}
	if !args.Quiet {
		fmt.Fprintf(a.Out, "%s .NET Framework %s or later is installed\n", RenderStatus("ok"), label)
	}
	return nil
}

func (a *App) listFrameworks(args Args) error {
	labels := detect.Labels()
	rows := make([]FrameworkRelease, 0, len(labels))
	for _, l := range labels {
		release, _ := detect.RequiredRelease(l)
		rows = append(rows, FrameworkRelease{Version: l, Release: release})
	}

	if args.JSON {
		return NewJSONResponse("framework", rows).Print(a.Out)
	}
	fmt.Fprintln(a.Out, TitleStyle.Render(".NET Framework releases"))
	for _, r := range rows {
		fmt.Fprintln(a.Out, RenderKV(r.Version, fmt.Sprint(r.Release)))
	}
	return nil
}
