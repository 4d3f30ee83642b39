// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !windows
// +build !windows

package spreadsheet

import (
	"context"

	"github.com/jeranaias/diagutil/internal/util"
)

// AutomationConverter drives Microsoft Excel through COM on Windows. On
// other systems every call fails with ErrAutomationUnavailable.
type AutomationConverter struct {
	TempDir string
}

// Convert implements Converter.
func (a *AutomationConverter) Convert(ctx context.Context, path string) ([]byte, error) {
	return nil, util.NewFileError("convert", path, util.KindExternal, ErrAutomationUnavailable)
}
