// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// excel_cmd.go - is-excel, sniff, convert and watch commands.

package cli

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jeranaias/diagutil/internal/spreadsheet"
)

// ExcelCheck is one row of the is-excel JSON payload.
type ExcelCheck struct {
	Path    string `json:"path"`
	IsExcel bool   `json:"is_excel"`
}

// SniffResult is one row of the sniff JSON payload.
type SniffResult struct {
	Path   string `json:"path"`
	Format string `json:"format"`
	Error  string `json:"error,omitempty"`
}

// ConvertData is the JSON payload of convert.
type ConvertData struct {
	Source     string `json:"source"`
	Output     string `json:"output"`
	Backend    string `json:"backend"`
	DurationMs int64  `json:"duration_ms"`
}

// HandleIsExcel handles "diagutil is-excel PATH...".
func (a *App) HandleIsExcel(args Args) error {
	p := NewArgParser(args.Raw)
	if p.PositionalCount() == 0 {
		return ErrMissingArgument("path", "diagutil is-excel data.xls")
	}

	results := make([]ExcelCheck, 0, p.PositionalCount())
	allExcel := true
	for _, path := range p.PositionalFrom(0) {
		ok := spreadsheet.IsExcelFile(path)
		allExcel = allExcel && ok
		results = append(results, ExcelCheck{Path: path, IsExcel: ok})
	}

	if args.JSON {
		if err := NewJSONResponse("is-excel", results).Print(a.Out); err != nil {
			return err
		}
	} else if !args.Quiet {
		width := GetTerminalWidth() - 10
		for _, r := range results {
			status := "yes"
			if !r.IsExcel {
				status = "no"
			}
			fmt.Fprintf(a.Out, "%s %s\n", RenderStatus(status), PadPath(r.Path, width))
		}
	}

	if !allExcel {
		failed := &CheckFailedError{What: "not every path has an Excel extension"}
		if args.JSON {
			return &reportedError{failed}
		}
		return failed
	}
	return nil
}

// HandleSniff handles "diagutil sniff PATH...".
func (a *App) HandleSniff(args Args) error {
	p := NewArgParser(args.Raw)
	if p.PositionalCount() == 0 {
		return ErrMissingArgument("path", "diagutil sniff upload.bin")
	}

	var errs []error
	results := make([]SniffResult, 0, p.PositionalCount())
	for _, path := range p.PositionalFrom(0) {
		format, err := spreadsheet.SniffFormat(path)
		r := SniffResult{Path: path, Format: format.String()}
		if err != nil {
			r.Error = err.Error()
			errs = append(errs, err)
		}
		results = append(results, r)
	}
	joined := errors.Join(errs...)

	if args.JSON {
		if err := NewJSONResponse("sniff", results).Print(a.Out); err != nil {
			return err
		}
		if joined != nil {
			return &reportedError{joined}
		}
		return nil
	}

	width := GetTerminalWidth() - 12
	for _, r := range results {
		if r.Error != "" {
			continue
		}
		fmt.Fprintf(a.Out, "%s %s\n", ValueStyle.Render(fmt.Sprintf("%-8s", r.Format)), PadPath(r.Path, width))
	}
	return joined
}

// converterOptions merges --backend, --timeout and --retries over the
// configured convert section.
func (a *App) converterOptions(p *ArgParser) (spreadsheet.Options, error) {
	opts, err := a.Config.ConverterOptions()
	if err != nil {
		return opts, err
	}
	if name := p.Flag("backend"); name != "" {
		backend, err := spreadsheet.ParseBackend(name)
		if err != nil {
			return opts, ErrInvalidValue("backend", name, `must be "native" or "excel"`)
		}
		opts.Backend = backend
	}
	if p.HasFlag("timeout") {
		secs, err := p.FlagInt("timeout")
		if err != nil || secs <= 0 {
			return opts, ErrInvalidValue("timeout", p.Flag("timeout"), "must be a positive number of seconds")
		}
		opts.Timeout = time.Duration(secs) * time.Second
	}
	if p.HasFlag("retries") {
		n, err := p.FlagInt("retries")
		if err != nil || n < 0 {
			return opts, ErrInvalidValue("retries", p.Flag("retries"), "must be zero or more")
		}
		opts.Retries = n
	}
	return opts, nil
}

// HandleConvert handles "diagutil convert SRC [DST]".
func (a *App) HandleConvert(ctx context.Context, args Args) error {
	p := NewArgParser(args.Raw)
	src := p.Positional(0)
	if src == "" {
		return ErrMissingArgument("source", "diagutil convert legacy.xls [out.xlsx] --backend excel")
	}

	opts, err := a.converterOptions(p)
	if err != nil {
		return err
	}
	conv, err := a.NewConverter(opts)
	if err != nil {
		return err
	}

	start := time.Now()
	dst, err := spreadsheet.ConvertFile(ctx, conv, src, p.Positional(1))
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	log.Info().
		Str("source", src).
		Str("output", dst).
		Str("backend", string(opts.Backend)).
		Dur("elapsed", elapsed).
		Msg("converted workbook")

	if args.JSON {
		return NewJSONResponse("convert", ConvertData{
			Source:     src,
			Output:     dst,
			Backend:    string(opts.Backend),
			DurationMs: elapsed.Milliseconds(),
		}).Print(a.Out)
	}
	if !args.Quiet {
		fmt.Fprintf(a.Out, "%s %s -> %s %s\n", RenderStatus("ok"), src, dst,
			DimStyle.Render(fmt.Sprintf("(%s, %s)", opts.Backend, elapsed.Round(time.Millisecond))))
	}
	return nil
}

// HandleWatch handles "diagutil watch DIR". It blocks until ctx is done.
func (a *App) HandleWatch(ctx context.Context, args Args) error {
	p := NewArgParser(args.Raw)
	dir := p.Positional(0)
	if dir == "" {
		return ErrMissingArgument("dir", "diagutil watch ./inbox --rate 10")
	}

	opts, err := a.converterOptions(p)
	if err != nil {
		return err
	}
	conv, err := a.NewConverter(opts)
	if err != nil {
		return err
	}

	rate := p.FlagIntOrDefault("rate", a.Config.Watch.RatePerMinute)
	debounce := a.Config.Watch.Debounce()
	if p.HasFlag("debounce") {
		ms, err := p.FlagInt("debounce")
		if err != nil || ms < 0 {
			return ErrInvalidValue("debounce", p.Flag("debounce"), "must be milliseconds")
		}
		debounce = time.Duration(ms) * time.Millisecond
	}

	var mu sync.Mutex
	watcher, err := spreadsheet.NewWatcher(dir, conv, spreadsheet.WatchOptions{
		RatePerMinute: rate,
		Debounce:      debounce,
		OnConverted: func(src, dst string, err error) {
			mu.Lock()
			defer mu.Unlock()
			switch {
			case args.JSON:
				var resp *JSONResponse
				if err != nil {
					resp = NewJSONErrorResponse("watch", err)
				} else {
					resp = NewJSONResponse("watch", ConvertData{Source: src, Output: dst, Backend: string(opts.Backend)})
				}
				_ = resp.Print(a.Out)
			case err != nil:
				fmt.Fprintf(a.Out, "%s %s: %v\n", RenderStatus("fail"), src, err)
			case !args.Quiet:
				fmt.Fprintf(a.Out, "%s %s -> %s\n", RenderStatus("ok"), src, dst)
			}
		},
	})
	if err != nil {
		return NewCommandError("watch", "cannot watch "+dir, err)
	}

	if !args.JSON && !args.Quiet {
		fmt.Fprintf(a.Out, "%s watching %s (Ctrl+C to stop)\n", TitleStyle.Render("diagutil"), dir)
	}
	return watcher.Run(ctx)
}
