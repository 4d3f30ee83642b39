// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package spreadsheet

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/diagutil/internal/util"
)

func TestGuarded_RetriesTransientFailure(t *testing.T) {
	var calls atomic.Int32
	g := &Guarded{
		Converter: ConverterFunc(func(ctx context.Context, path string) ([]byte, error) {
			if calls.Add(1) == 1 {
				return nil, util.NewFileError("convert", path, util.KindExternal, errors.New("rpc server unavailable"))
			}
			return []byte("ok"), nil
		}),
		Timeout: time.Second,
		Retries: 2,
		Backoff: time.Millisecond,
	}

	data, err := g.Convert(context.Background(), "a.xls")
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), data)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGuarded_DoesNotRetryBadInput(t *testing.T) {
	var calls atomic.Int32
	g := &Guarded{
		Converter: ConverterFunc(func(ctx context.Context, path string) ([]byte, error) {
			calls.Add(1)
			return nil, util.NewFileError("convert", path, util.KindInvalid, ErrNotLegacy)
		}),
		Retries: 3,
		Backoff: time.Millisecond,
	}

	_, err := g.Convert(context.Background(), "a.xls")
	require.ErrorIs(t, err, ErrNotLegacy)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGuarded_TimesOutStuckConverter(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	var calls atomic.Int32
	g := &Guarded{
		Converter: ConverterFunc(func(ctx context.Context, path string) ([]byte, error) {
			calls.Add(1)
			<-release // ignores ctx on purpose
			return nil, nil
		}),
		Timeout: 20 * time.Millisecond,
		Retries: 1,
		Backoff: time.Millisecond,
	}

	start := time.Now()
	_, err := g.Convert(context.Background(), "a.xls")
	require.Error(t, err)
	assert.Equal(t, util.KindTimeout, util.KindOf(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(2), calls.Load())
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestGuarded_StopsWhenParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	g := &Guarded{
		Converter: ConverterFunc(func(ctx context.Context, path string) ([]byte, error) {
			calls.Add(1)
			cancel()
			return nil, errors.New("excel crashed")
		}),
		Retries: 5,
		Backoff: time.Millisecond,
	}

	_, err := g.Convert(ctx, "a.xls")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
