// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !windows

package util

// systemCodePageID has no ANSI code page to ask for outside Windows; the
// Diagram tools expect Windows-1252 there.
func systemCodePageID() uint32 {
	return 1252
}
