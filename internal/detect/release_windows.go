// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build windows

package detect

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

// registryReader reads the Release value from HKLM through the 32-bit
// registry view, where the framework setup always records it.
type registryReader struct{}

// NewRegistryReader returns the Windows registry ReleaseReader.
func NewRegistryReader() ReleaseReader {
	return registryReader{}
}

func (registryReader) InstalledRelease() (uint32, error) {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, NDPKeyPath, registry.QUERY_VALUE|registry.WOW64_32KEY)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("open %s: %w", NDPKeyPath, err)
	}
	defer key.Close()

	value, _, err := key.GetIntegerValue(NDPReleaseValue)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read %s: %w", NDPReleaseValue, err)
	}
	return uint32(value), nil
}
