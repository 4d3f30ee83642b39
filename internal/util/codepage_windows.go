// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build windows

package util

import "golang.org/x/sys/windows"

// systemCodePageID returns the active ANSI code page (GetACP).
func systemCodePageID() uint32 {
	return windows.GetACP()
}
