// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Config command: show, path and reset.
//
// Command: config [subcommand]
//
// Subcommands:
//   show (default)      Print the effective configuration as TOML
//   path                Print the configuration file location
//   reset               Write the default configuration to the file
//
// Examples:
//   diagutil config
//   diagutil config path --json
//   diagutil --config ./diag.toml config reset
package cli

import (
	"fmt"
	"strings"

	"github.com/jeranaias/diagutil/internal/config"
)

// ConfigData is the JSON payload of the config command.
type ConfigData struct {
	Path   string         `json:"path"`
	Config *config.Config `json:"config,omitempty"`
}

// HandleConfig handles "diagutil config [show|path|reset]".
func (a *App) HandleConfig(args Args) error {
	p := NewArgParser(args.Raw)
	sub := strings.ToLower(p.Positional(0))

	path, err := configFilePath(args)
	if err != nil {
		return NewCommandError("config", "locating config file", err)
	}

	switch sub {
	case "", "show":
		if args.JSON {
			return NewJSONResponse("config", ConfigData{Path: path, Config: a.Config}).Print(a.Out)
		}
		return config.EncodeTOML(a.Out, a.Config)

	case "path":
		if args.JSON {
			return NewJSONResponse("config", ConfigData{Path: path}).Print(a.Out)
		}
		fmt.Fprintln(a.Out, path)
		return nil

	case "reset":
		cfg := config.Default()
		if args.ConfigPath != "" {
			err = config.SaveTOML(cfg, path)
		} else {
			err = config.Save(cfg)
		}
		if err != nil {
			return NewCommandError("config", "writing defaults", err)
		}
		a.Config = cfg
		config.SetGlobal(cfg)
		if args.JSON {
			return NewJSONResponse("config", ConfigData{Path: path, Config: cfg}).Print(a.Out)
		}
		if !args.Quiet {
			fmt.Fprintf(a.Out, "%s wrote default configuration to %s\n", RenderStatus("ok"), path)
		}
		return nil

	default:
		return &UsageError{
			Field:   "subcommand",
			Value:   sub,
			Reason:  "expected show, path or reset",
			Example: "diagutil config show",
		}
	}
}

// configFilePath returns the --config override or the default location.
func configFilePath(args Args) (string, error) {
	if args.ConfigPath != "" {
		return args.ConfigPath, nil
	}
	return config.ConfigPath()
}
