// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !windows

package detect

// registryReader stands in for the Windows registry. There is no .NET
// Framework outside Windows, so it always reports "not installed".
type registryReader struct{}

// NewRegistryReader returns a ReleaseReader that reports no framework.
func NewRegistryReader() ReleaseReader {
	return registryReader{}
}

func (registryReader) InstalledRelease() (uint32, error) {
	return 0, nil
}
