// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package detect checks the installed .NET Framework 4.x runtime.
//
// The installed version is the Release DWORD under
// HKLM\SOFTWARE\Microsoft\NET Framework Setup\NDP\v4\Full, read through the
// 32-bit registry view. A missing key or value means "not installed" and
// reads as 0, so any check against a known version fails and a check
// against an unknown label (which requires nothing) passes.
//
// # Usage
//
//	if !detect.CheckFramework("4.8") {
//		return errors.New("install .NET Framework 4.8")
//	}
//
//	// With an injected reader (tests, non-Windows tools):
//	c := detect.NewChecker(detect.ReleaseReaderFunc(func() (uint32, error) {
//		return 528040, nil
//	}))
//	fmt.Println(c.InstalledVersion()) // "4.8"
package detect
