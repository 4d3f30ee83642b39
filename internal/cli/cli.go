// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and dispatch for diagutil.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/diagutil/internal/config"
	"github.com/jeranaias/diagutil/internal/detect"
	"github.com/jeranaias/diagutil/internal/logging"
	"github.com/jeranaias/diagutil/internal/spreadsheet"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdHelp Command = iota
	CmdStrip
	CmdFold
	CmdSplit
	CmdRemove
	CmdRemoveFamily
	CmdWrite
	CmdFramework
	CmdIsExcel
	CmdSniff
	CmdConvert
	CmdWatch
	CmdDoctor
	CmdConfig
	CmdVersion
	CmdUnknown
)

var commandNames = map[Command]string{
	CmdHelp:         "help",
	CmdStrip:        "strip",
	CmdFold:         "fold",
	CmdSplit:        "split",
	CmdRemove:       "rm",
	CmdRemoveFamily: "rm-family",
	CmdWrite:        "write",
	CmdFramework:    "framework",
	CmdIsExcel:      "is-excel",
	CmdSniff:        "sniff",
	CmdConvert:      "convert",
	CmdWatch:        "watch",
	CmdDoctor:       "doctor",
	CmdConfig:       "config",
	CmdVersion:      "version",
}

// String returns the command's name as typed on the command line.
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	JSON       bool   // Output in JSON format
	Quiet      bool   // Errors only
	Verbose    bool   // Debug logging
	NoColor    bool   // Disable ANSI colors
	ConfigPath string // --config override

	// Name is the command word as typed (kept for unknown-command errors).
	Name string

	// Raw args (remaining after the command word and global flags)
	Raw []string
}

const usageText = `diagutil - helper toolkit for the Diagram applications

Usage:
  diagutil <command> [arguments] [flags]

Text Commands:
  diagutil strip [TEXT...]          Replace Spanish accented vowels (and the
                                    legacy ¥ ¤ ´ glyphs) with plain forms
  diagutil fold [TEXT...]           Remove every combining diacritic
  diagutil split TEXT [--sep C]     Split "attribute=value" at the first C
                                    (default "=")
  diagutil write PATH [TEXT...]     Write TEXT in a legacy code page
    --code-page NAME                Code page (windows-1252, cp850, 1250, ...)
    --stdin                         Read the text from stdin

  TEXT defaults to stdin when omitted or "-".

File Commands:
  diagutil rm PATH                  Delete PATH if it is an existing file
  diagutil rm-family PATH           Delete every STEM.* next to PATH
    -n, --dry-run                   List the files without deleting them

Spreadsheet Commands:
  diagutil is-excel PATH...         Check for a .xls/.xlsx extension
  diagutil sniff PATH...            Identify workbooks by content
  diagutil convert SRC [DST]        Convert .xls to .xlsx (DST defaults to
                                    SRC with .xlsx)
    --backend native|excel          Conversion backend
    --timeout SECS                  Per-attempt timeout
    --retries N                     Extra attempts after a failure
  diagutil watch DIR                Convert .xls files dropped into DIR
    --rate N                        Max conversions per minute
    --debounce MS                   Quiet period before converting

Runtime Commands:
  diagutil framework [VERSION]      Check the installed .NET Framework
                                    (default: framework.min_version)
    --list                          List known versions and releases
  diagutil doctor                   Check config, code page, framework,
                                    conversion backend and temp dir
  diagutil config [show|path|reset] Show, locate or reset the config file

Global Flags:
  --config PATH     Use PATH instead of ~/.diagutil/config.toml
  --json            Output in JSON format
  -q, --quiet       Errors only
  -v, --verbose     Debug output
  --no-color        Disable colors (also NO_COLOR)

Exit Codes:
  0 success   2 usage   3 config   5 external   7 not found
  8 timeout   10 check answered "no"

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// VersionData is the JSON payload of the version command.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// PrintVersion prints version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "diagutil version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
}

// Parse parses command-line arguments (without the program name) and
// returns the command and args.
func Parse(argv []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdHelp, parsedArgs
	}

	name := strings.ToLower(remaining[0])
	parsedArgs.Name = remaining[0]
	parsedArgs.Raw = remaining[1:]

	switch name {
	case "strip", "strip-accents":
		return CmdStrip, parsedArgs
	case "fold":
		return CmdFold, parsedArgs
	case "split":
		return CmdSplit, parsedArgs
	case "rm", "delete":
		return CmdRemove, parsedArgs
	case "rm-family", "delete-family":
		return CmdRemoveFamily, parsedArgs
	case "write":
		return CmdWrite, parsedArgs
	case "framework", "dotnet":
		return CmdFramework, parsedArgs
	case "is-excel":
		return CmdIsExcel, parsedArgs
	case "sniff":
		return CmdSniff, parsedArgs
	case "convert":
		return CmdConvert, parsedArgs
	case "watch":
		return CmdWatch, parsedArgs
	case "doctor", "diag":
		return CmdDoctor, parsedArgs
	case "config":
		return CmdConfig, parsedArgs
	case "version", "--version":
		return CmdVersion, parsedArgs
	case "help", "-h", "--help":
		return CmdHelp, parsedArgs
	default:
		return CmdUnknown, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining
// args. Flags after "--" are left alone.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	i := 0
	for i < len(args) {
		arg := args[i]

		if arg == "--" {
			remaining = append(remaining, args[i:]...)
			break
		}

		switch arg {
		case "--json":
			parsedArgs.JSON = true
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "-v", "--verbose":
			parsedArgs.Verbose = true
		case "--no-color":
			parsedArgs.NoColor = true
		case "--config":
			if i+1 < len(args) {
				i++
				parsedArgs.ConfigPath = args[i]
			}
		default:
			if strings.HasPrefix(arg, "--config=") {
				parsedArgs.ConfigPath = strings.TrimPrefix(arg, "--config=")
			} else {
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsedArgs
}

// =============================================================================
// APP - COMMAND EXECUTION
// =============================================================================

// App executes parsed commands against a configuration.
type App struct {
	Out io.Writer
	Err io.Writer
	In  io.Reader

	Config  *config.Config
	Checker *detect.Checker

	// NewConverter builds the converter for convert and watch.
	NewConverter func(spreadsheet.Options) (spreadsheet.Converter, error)
}

// NewApp creates an App wired to the process's standard streams, the
// registry-backed framework checker and the real converters.
func NewApp(cfg *config.Config) *App {
	if cfg == nil {
		cfg = config.Default()
	}
	return &App{
		Out:          os.Stdout,
		Err:          os.Stderr,
		In:           os.Stdin,
		Config:       cfg,
		Checker:      detect.NewChecker(nil),
		NewConverter: spreadsheet.New,
	}
}

// Run executes cmd.
func (a *App) Run(ctx context.Context, cmd Command, args Args) error {
	log.Debug().Str("command", cmd.String()).Strs("args", args.Raw).Msg("running command")

	switch cmd {
	case CmdStrip:
		return a.HandleStrip(args)
	case CmdFold:
		return a.HandleFold(args)
	case CmdSplit:
		return a.HandleSplit(args)
	case CmdRemove:
		return a.HandleRemove(args)
	case CmdRemoveFamily:
		return a.HandleRemoveFamily(args)
	case CmdWrite:
		return a.HandleWrite(args)
	case CmdFramework:
		return a.HandleFramework(args)
	case CmdIsExcel:
		return a.HandleIsExcel(args)
	case CmdSniff:
		return a.HandleSniff(args)
	case CmdConvert:
		return a.HandleConvert(ctx, args)
	case CmdWatch:
		return a.HandleWatch(ctx, args)
	case CmdDoctor:
		return a.HandleDoctor(args)
	case CmdConfig:
		return a.HandleConfig(args)
	case CmdVersion:
		return a.HandleVersion(args)
	case CmdHelp:
		PrintUsage(a.Out)
		return nil
	default:
		example := "diagutil help"
		if s := SuggestCommand(args.Name); s != "" {
			example = "did you mean \"diagutil " + s + "\"?"
		}
		return &UsageError{
			Field:   "command",
			Value:   args.Name,
			Reason:  "unknown command",
			Example: example,
		}
	}
}

// HandleVersion handles the "version" command with JSON output support.
func (a *App) HandleVersion(args Args) error {
	if args.JSON {
		return NewJSONResponse("version", VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}).Print(a.Out)
	}
	PrintVersion(a.Out)
	return nil
}

// =============================================================================
// ENTRY POINT
// =============================================================================

// Execute parses argv, loads configuration, configures logging and runs the
// command. It returns the process exit code.
func Execute(ctx context.Context, argv []string, stdout, stderr io.Writer, stdin io.Reader) int {
	cmd, args := Parse(argv)

	if args.NoColor {
		ForceColorsEnabled(false)
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	cfg, err := loadConfig(args.ConfigPath)
	if err != nil {
		// help, version and config reset must work with a broken config file.
		if cmd != CmdHelp && cmd != CmdVersion && !isConfigReset(cmd, args) {
			DisplayError(errStream(args, stdout, stderr), cmd.String(), err, args.JSON)
			return ExitConfigError
		}
		cfg = config.Default()
	}
	config.SetGlobal(cfg)

	logOpts := cfg.LogOptions()
	logOpts.Out = stderr
	logOpts.App = "diagutil"
	logOpts.NoColor = logOpts.NoColor || args.NoColor
	switch {
	case args.Verbose:
		logOpts.Level = "debug"
	case args.Quiet:
		logOpts.Level = "error"
	}
	logging.Configure(logOpts)

	app := NewApp(cfg)
	app.Out, app.Err, app.In = stdout, stderr, stdin

	if err := app.Run(ctx, cmd, args); err != nil {
		DisplayError(errStream(args, stdout, stderr), cmd.String(), err, args.JSON)
		return GetExitCode(err)
	}
	return ExitSuccess
}

func isConfigReset(cmd Command, args Args) bool {
	return cmd == CmdConfig && strings.EqualFold(NewArgParser(args.Raw).Positional(0), "reset")
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

// errStream returns where errors go: stdout in JSON mode so scripts get a
// single document, stderr otherwise.
func errStream(args Args, stdout, stderr io.Writer) io.Writer {
	if args.JSON {
		return stdout
	}
	return stderr
}
