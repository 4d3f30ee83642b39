// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strings"
	"testing"
)

// =============================================================================
// ARG PARSER TESTS (args.go)
// =============================================================================

func TestArgParser_BasicParsing(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		bools    []string
		validate func(*testing.T, *ArgParser)
	}{
		{
			name: "flag with value",
			args: []string{"out.txt", "--code-page", "cp850"},
			validate: func(t *testing.T, p *ArgParser) {
				if p.Flag("code-page") != "cp850" {
					t.Errorf("Flag(code-page) = %q, want %q", p.Flag("code-page"), "cp850")
				}
				if p.Positional(0) != "out.txt" {
					t.Errorf("Positional(0) = %q, want %q", p.Positional(0), "out.txt")
				}
			},
		},
		{
			name: "flag with equals",
			args: []string{"--sep=:", "a:b"},
			validate: func(t *testing.T, p *ArgParser) {
				if p.Flag("sep") != ":" {
					t.Errorf("Flag(sep) = %q, want %q", p.Flag("sep"), ":")
				}
				if p.Positional(0) != "a:b" {
					t.Errorf("Positional(0) = %q, want %q", p.Positional(0), "a:b")
				}
			},
		},
		{
			name:  "known boolean does not consume positional",
			args:  []string{"--dry-run", "base.txt"},
			bools: []string{"dry-run"},
			validate: func(t *testing.T, p *ArgParser) {
				if !p.BoolFlag("dry-run") {
					t.Error("BoolFlag(dry-run) should be true")
				}
				if p.Positional(0) != "base.txt" {
					t.Errorf("Positional(0) = %q, want %q", p.Positional(0), "base.txt")
				}
			},
		},
		{
			name:  "explicit boolean value",
			args:  []string{"--stdin=false", "x"},
			bools: []string{"stdin"},
			validate: func(t *testing.T, p *ArgParser) {
				if p.BoolFlag("stdin") {
					t.Error("BoolFlag(stdin) should be false")
				}
				if !p.HasFlag("stdin") {
					t.Error("HasFlag(stdin) should be true")
				}
			},
		},
		{
			name: "trailing unknown flag is boolean",
			args: []string{"file.xls", "--json"},
			validate: func(t *testing.T, p *ArgParser) {
				if !p.BoolFlag("json") {
					t.Error("BoolFlag(json) should be true")
				}
			},
		},
		{
			name: "double dash ends flags",
			args: []string{"--", "-v", "--sep"},
			validate: func(t *testing.T, p *ArgParser) {
				if p.PositionalCount() != 2 {
					t.Errorf("PositionalCount() = %d, want 2", p.PositionalCount())
				}
				if p.HasFlag("sep") {
					t.Error("HasFlag(sep) should be false after --")
				}
			},
		},
		{
			name: "lone dash is positional",
			args: []string{"-"},
			validate: func(t *testing.T, p *ArgParser) {
				if p.Positional(0) != "-" {
					t.Errorf("Positional(0) = %q, want %q", p.Positional(0), "-")
				}
			},
		},
		{
			name: "multiple positional args",
			args: []string{"Canción", "de", "cuna"},
			validate: func(t *testing.T, p *ArgParser) {
				joined := JoinPositionalArgs(p, 0)
				if joined != "Canción de cuna" {
					t.Errorf("JoinPositionalArgs = %q, want %q", joined, "Canción de cuna")
				}
				if len(p.PositionalFrom(5)) != 0 {
					t.Error("PositionalFrom out of range should be empty")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewArgParser(tt.args, tt.bools...)
			if tt.validate != nil {
				tt.validate(t, parser)
			}
		})
	}
}

func TestArgParser_FlagIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		flagName   string
		defaultVal int
		want       int
	}{
		{
			name:       "flag present",
			args:       []string{"dir", "--rate", "10"},
			flagName:   "rate",
			defaultVal: 5,
			want:       10,
		},
		{
			name:       "flag missing uses default",
			args:       []string{"dir"},
			flagName:   "rate",
			defaultVal: 5,
			want:       5,
		},
		{
			name:       "invalid int uses default",
			args:       []string{"dir", "--rate", "abc"},
			flagName:   "rate",
			defaultVal: 5,
			want:       5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewArgParser(tt.args)
			got := parser.FlagIntOrDefault(tt.flagName, tt.defaultVal)
			if got != tt.want {
				t.Errorf("FlagIntOrDefault(%q, %d) = %d, want %d", tt.flagName, tt.defaultVal, got, tt.want)
			}
		})
	}
}

func TestArgParser_AnyBool(t *testing.T) {
	parser := NewArgParser([]string{"-n", "a.txt"}, "n", "dry-run")

	if !parser.AnyBool("dry-run", "n") {
		t.Error("AnyBool(dry-run, n) should be true")
	}
	if parser.Positional(0) != "a.txt" {
		t.Errorf("Positional(0) = %q, want %q", parser.Positional(0), "a.txt")
	}
}

// =============================================================================
// COMMAND PARSING TESTS (cli.go)
// =============================================================================

func TestParse(t *testing.T) {
	tests := []struct {
		argv    []string
		want    Command
		wantRaw string
	}{
		{nil, CmdHelp, ""},
		{[]string{"strip", "Año"}, CmdStrip, "Año"},
		{[]string{"STRIP-ACCENTS", "x"}, CmdStrip, "x"},
		{[]string{"fold"}, CmdFold, ""},
		{[]string{"split", "a=b"}, CmdSplit, "a=b"},
		{[]string{"rm", "x.txt"}, CmdRemove, "x.txt"},
		{[]string{"rm-family", "x.txt", "-n"}, CmdRemoveFamily, "x.txt -n"},
		{[]string{"write", "o.txt", "hi"}, CmdWrite, "o.txt hi"},
		{[]string{"dotnet", "4.8"}, CmdFramework, "4.8"},
		{[]string{"is-excel", "a.xls"}, CmdIsExcel, "a.xls"},
		{[]string{"sniff", "a"}, CmdSniff, "a"},
		{[]string{"convert", "a.xls"}, CmdConvert, "a.xls"},
		{[]string{"watch", "inbox"}, CmdWatch, "inbox"},
		{[]string{"--version"}, CmdVersion, ""},
		{[]string{"-h"}, CmdHelp, ""},
		{[]string{"frobnicate"}, CmdUnknown, ""},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.argv, " "), func(t *testing.T) {
			cmd, args := Parse(tt.argv)
			if cmd != tt.want {
				t.Errorf("Parse(%v) command = %v, want %v", tt.argv, cmd, tt.want)
			}
			if got := strings.Join(args.Raw, " "); got != tt.wantRaw {
				t.Errorf("Parse(%v) raw = %q, want %q", tt.argv, got, tt.wantRaw)
			}
		})
	}
}

func TestParse_GlobalFlags(t *testing.T) {
	cmd, args := Parse([]string{"--json", "-q", "convert", "a.xls", "--config=/etc/d.toml", "--no-color", "-v"})

	if cmd != CmdConvert {
		t.Fatalf("command = %v, want convert", cmd)
	}
	if !args.JSON || !args.Quiet || !args.Verbose || !args.NoColor {
		t.Errorf("global flags not parsed: %+v", args)
	}
	if args.ConfigPath != "/etc/d.toml" {
		t.Errorf("ConfigPath = %q", args.ConfigPath)
	}
	if len(args.Raw) != 1 || args.Raw[0] != "a.xls" {
		t.Errorf("Raw = %v, want [a.xls]", args.Raw)
	}
}

func TestParse_DoubleDashProtectsGlobals(t *testing.T) {
	_, args := Parse([]string{"strip", "--", "--json"})
	if args.JSON {
		t.Error("--json after -- must stay positional")
	}
	if strings.Join(args.Raw, " ") != "-- --json" {
		t.Errorf("Raw = %v", args.Raw)
	}
}

func TestCommand_String(t *testing.T) {
	if CmdRemoveFamily.String() != "rm-family" {
		t.Errorf("String() = %q", CmdRemoveFamily.String())
	}
	if CmdUnknown.String() != "unknown" {
		t.Errorf("String() = %q", CmdUnknown.String())
	}
}

// =============================================================================
// STYLE HELPER TESTS (styles.go)
// =============================================================================

func TestTruncatePath(t *testing.T) {
	tests := []struct {
		path  string
		width int
		want  string
	}{
		{"short.txt", 20, "short.txt"},
		{"/very/long/directory/name/file.txt", 15, "...ame/file.txt"},
		{"/data/日本語.xls", 10, "...語.xls"},
		{"abcdef", 2, "ab"},
		{"abc", 0, "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := TruncatePath(tt.path, tt.width)
			if got != tt.want {
				t.Errorf("TruncatePath(%q, %d) = %q, want %q", tt.path, tt.width, got, tt.want)
			}
		})
	}
}

func TestPadPath(t *testing.T) {
	got := PadPath("a.txt", 8)
	if got != "a.txt   " {
		t.Errorf("PadPath = %q, want %q", got, "a.txt   ")
	}
}

// =============================================================================
// SUGGESTION TESTS (suggest.go)
// =============================================================================

func TestSuggestCommand(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"conver", "convert"},
		{"stirp", "strip"},
		{"framwork", "framework"},
		{"rm-famly", "rm-family"},
		{"strip", ""},
		{"x", ""},
		{"kubernetes", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SuggestCommand(tt.input); got != tt.want {
				t.Errorf("SuggestCommand(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLevenshteinDistance(t *testing.T) {
	if d := levenshteinDistance("kitten", "sitting"); d != 3 {
		t.Errorf("levenshteinDistance = %d, want 3", d)
	}
	if d := levenshteinDistance("", "abc"); d != 3 {
		t.Errorf("levenshteinDistance = %d, want 3", d)
	}
}
