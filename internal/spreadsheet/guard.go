// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package spreadsheet

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jeranaias/diagutil/internal/util"
)

// Guarded bounds every attempt of the wrapped Converter with Timeout and
// retries failed attempts up to Retries more times.
//
// The wrapped call runs on its own goroutine so that a converter which
// ignores its context still cannot block the caller past the deadline; such
// a goroutine finishes in the background.
type Guarded struct {
	Converter Converter
	Timeout   time.Duration
	Retries   int
	Backoff   time.Duration // wait between attempts; 0 means 500ms
}

type convertResult struct {
	data []byte
	err  error
}

// Convert implements Converter.
func (g *Guarded) Convert(ctx context.Context, path string) ([]byte, error) {
	backoff := g.Backoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}

	var lastErr error
	for attempt := 0; attempt <= g.Retries; attempt++ {
		if attempt > 0 {
			log.Warn().Err(lastErr).Str("path", path).Int("attempt", attempt+1).Msg("retrying conversion")
			select {
			case <-ctx.Done():
				return nil, util.NewFileError("convert", path, util.KindTimeout, ctx.Err())
			case <-time.After(backoff):
			}
		}

		data, err := g.attempt(ctx, path)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retryable(err) || ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

func (g *Guarded) attempt(ctx context.Context, path string) ([]byte, error) {
	attemptCtx := ctx
	if g.Timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	done := make(chan convertResult, 1)
	go func() {
		data, err := g.Converter.Convert(attemptCtx, path)
		done <- convertResult{data: data, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil && attemptCtx.Err() != nil && util.KindOf(res.err) == util.KindUnknown {
			return nil, util.NewFileError("convert", path, util.KindTimeout, res.err)
		}
		return res.data, res.err
	case <-attemptCtx.Done():
		return nil, util.NewFileError("convert", path, util.KindTimeout, attemptCtx.Err())
	}
}

// retryable reports whether another attempt could succeed. Bad input and
// missing files never improve.
func retryable(err error) bool {
	if errors.Is(err, ErrNotLegacy) || errors.Is(err, ErrAutomationUnavailable) {
		return false
	}
	switch util.KindOf(err) {
	case util.KindInvalid, util.KindNotFound:
		return false
	}
	return true
}
