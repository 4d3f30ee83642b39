// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package spreadsheet

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// WatchOptions tunes a Watcher.
type WatchOptions struct {
	// RatePerMinute caps conversions; 0 or less means unlimited.
	RatePerMinute int
	// Debounce is how long a file must stay quiet before it is converted.
	Debounce time.Duration
	// OnConverted, if set, is called after each attempt.
	OnConverted func(src, dst string, err error)
}

// Watcher converts legacy workbooks dropped into a folder into sibling
// .xlsx files. A source is skipped while its .xlsx is at least as new.
type Watcher struct {
	dir      string
	conv     Converter
	limiter  *rate.Limiter
	debounce time.Duration
	notify   func(src, dst string, err error)

	mu      sync.Mutex
	pending map[string]time.Time // source path -> last change
}

// NewWatcher creates a Watcher for dir.
func NewWatcher(dir string, conv Converter, opts WatchOptions) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	limit := rate.Inf
	if opts.RatePerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(opts.RatePerMinute))
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	return &Watcher{
		dir:      dir,
		conv:     conv,
		limiter:  rate.NewLimiter(limit, 1),
		debounce: debounce,
		notify:   opts.OnConverted,
		pending:  make(map[string]time.Time),
	}, nil
}

// Run converts the stale workbooks already in the folder, then watches it
// until ctx is cancelled. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	if err := w.Scan(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 && IsLegacyExcel(event.Name) {
				w.mu.Lock()
				w.pending[event.Name] = time.Now()
				w.mu.Unlock()
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Str("dir", w.dir).Msg("watch error")

		case <-ticker.C:
			for _, src := range w.due() {
				w.convert(ctx, src)
			}
		}
	}
}

// Scan converts every legacy workbook in the folder whose .xlsx is missing
// or older than the source.
func (w *Watcher) Scan(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.Type().IsRegular() && IsLegacyExcel(entry.Name()) {
			w.convert(ctx, filepath.Join(w.dir, entry.Name()))
		}
	}
	return nil
}

// due removes and returns the pending sources that have been quiet for the
// debounce interval.
func (w *Watcher) due() []string {
	now := time.Now()
	w.mu.Lock()
	defer w.mu.Unlock()

	var ready []string
	for path, changed := range w.pending {
		if now.Sub(changed) >= w.debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	sort.Strings(ready)
	return ready
}

func (w *Watcher) convert(ctx context.Context, src string) {
	dst := XLSXPath(src)
	if upToDate(src, dst) {
		return
	}
	if err := w.limiter.Wait(ctx); err != nil {
		return
	}

	_, err := ConvertFile(ctx, w.conv, src, dst)
	if err != nil {
		log.Error().Err(err).Str("src", src).Msg("conversion failed")
	} else {
		log.Info().Str("src", src).Str("dst", dst).Msg("converted")
	}
	if w.notify != nil {
		w.notify(src, dst, err)
	}
}

// upToDate reports whether dst exists and is not older than src.
func upToDate(src, dst string) bool {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return true // gone; nothing to do
	}
	dstInfo, err := os.Stat(dst)
	if err != nil {
		return false
	}
	return !dstInfo.ModTime().Before(srcInfo.ModTime())
}
