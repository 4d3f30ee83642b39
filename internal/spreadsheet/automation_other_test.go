// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !windows

package spreadsheet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jeranaias/diagutil/internal/util"
)

func TestAutomationConverter_Unavailable(t *testing.T) {
	conv, err := New(Options{Backend: BackendExcel, Retries: 3})
	assert.NoError(t, err)

	_, err = conv.Convert(context.Background(), "book.xls")
	assert.ErrorIs(t, err, ErrAutomationUnavailable)
	assert.Equal(t, util.KindExternal, util.KindOf(err))
}
