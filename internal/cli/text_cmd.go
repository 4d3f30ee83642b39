// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// text_cmd.go - strip, fold, split and write commands.

package cli

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jeranaias/diagutil/internal/util"
)

// TextData is the JSON payload of strip and fold.
type TextData struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// SplitData is the JSON payload of split.
type SplitData struct {
	Attribute string `json:"attribute"`
	Value     string `json:"value"`
}

// WriteData is the JSON payload of write.
type WriteData struct {
	Path     string `json:"path"`
	CodePage string `json:"code_page"`
	Bytes    int    `json:"bytes"`
}

// HandleStrip handles "diagutil strip [TEXT...]".
func (a *App) HandleStrip(args Args) error {
	return a.transformText(CmdStrip, args, util.StripAccents)
}

// HandleFold handles "diagutil fold [TEXT...]".
func (a *App) HandleFold(args Args) error {
	return a.transformText(CmdFold, args, util.FoldDiacritics)
}

func (a *App) transformText(cmd Command, args Args, fn func(string) string) error {
	p := NewArgParser(args.Raw)
	text, err := a.textFrom(p, 0, false)
	if err != nil {
		return NewCommandError(cmd.String(), "reading input", err)
	}
	out := fn(text)

	if args.JSON {
		return NewJSONResponse(cmd.String(), TextData{Input: text, Output: out}).Print(a.Out)
	}
	_, err = io.WriteString(a.Out, out)
	if err == nil && !strings.HasSuffix(out, "\n") {
		_, err = io.WriteString(a.Out, "\n")
	}
	return err
}

// HandleSplit handles "diagutil split TEXT [--sep C]".
func (a *App) HandleSplit(args Args) error {
	p := NewArgParser(args.Raw)
	if p.PositionalCount() == 0 {
		return ErrMissingArgument("text", `diagutil split "color = red"`)
	}

	sepArg := p.FlagOrDefault("sep", "=")
	if utf8.RuneCountInString(sepArg) != 1 {
		return ErrInvalidValue("sep", sepArg, "must be exactly one character")
	}
	sep, _ := utf8.DecodeRuneInString(sepArg)

	attribute, value := util.SplitPair(JoinPositionalArgs(p, 0), sep)

	if args.JSON {
		return NewJSONResponse("split", SplitData{Attribute: attribute, Value: value}).Print(a.Out)
	}
	fmt.Fprintln(a.Out, RenderKV("attribute", attribute))
	fmt.Fprintln(a.Out, RenderKV("value", value))
	return nil
}

// HandleWrite handles "diagutil write PATH [TEXT...] [--code-page NAME] [--stdin]".
func (a *App) HandleWrite(args Args) error {
	p := NewArgParser(args.Raw, "stdin")
	path := p.Positional(0)
	if path == "" {
		return ErrMissingArgument("path", `diagutil write out.txt "Año 2024" --code-page cp850`)
	}

	name := p.FlagOrDefault("code-page", a.Config.Encoding.CodePage)
	enc, err := util.CodePageByName(name)
	if err != nil {
		return ErrInvalidValue("code-page", name, err.Error())
	}

	text, err := a.textFrom(p, 1, p.BoolFlag("stdin"))
	if err != nil {
		return NewCommandError("write", "reading input", err)
	}

	n, err := util.WriteLegacyFile(path, text, enc)
	if err != nil {
		return err
	}

	label := name
	if label == "" {
		label = "system"
	}
	if args.JSON {
		return NewJSONResponse("write", WriteData{Path: path, CodePage: label, Bytes: n}).Print(a.Out)
	}
	if !args.Quiet {
		fmt.Fprintf(a.Out, "%s wrote %d bytes to %s (%s)\n", RenderStatus("ok"), n, path, label)
	}
	return nil
}

// textFrom returns the positional arguments from index on joined by spaces,
// or stdin when there are none, the only one is "-", or forceStdin is set.
func (a *App) textFrom(p *ArgParser, index int, forceStdin bool) (string, error) {
	parts := p.PositionalFrom(index)
	if !forceStdin && len(parts) > 0 && !(len(parts) == 1 && parts[0] == "-") {
		return strings.Join(parts, " "), nil
	}
	if a.In == nil {
		return "", nil
	}
	data, err := io.ReadAll(a.In)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
