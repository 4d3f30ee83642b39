// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package detect

import (
	"sort"

	"github.com/rs/zerolog/log"
)

// =============================================================================
// .NET FRAMEWORK RELEASE TABLE
// =============================================================================

// NDPKeyPath is the registry key (under HKLM, 32-bit view) holding the
// installed .NET Framework 4.x "Release" value.
const NDPKeyPath = `SOFTWARE\Microsoft\NET Framework Setup\NDP\v4\Full`

// NDPReleaseValue is the DWORD value name under NDPKeyPath.
const NDPReleaseValue = "Release"

// Release48_1 is the minimum Release value for .NET Framework 4.8.1.
//
// The table this replaces carried 53320 here, a dropped digit that made every
// 4.x install pass a "4.8.1" check. 533320 is the value Microsoft publishes.
const Release48_1 uint32 = 533320

// frameworkReleases maps a framework version label to the minimum Release
// value that indicates it is installed.
var frameworkReleases = map[string]uint32{
	"4.5":   378389,
	"4.5.1": 378675,
	"4.5.2": 379893,
	"4.6":   393295,
	"4.6.1": 394254,
	"4.6.2": 394802,
	"4.7":   460798,
	"4.7.1": 461308,
	"4.7.2": 461808,
	"4.8":   528040,
	"4.8.1": Release48_1,
}

// RequiredRelease returns the minimum Release value for a version label.
// Unknown labels report 0 and false.
func RequiredRelease(label string) (uint32, bool) {
	release, ok := frameworkReleases[label]
	return release, ok
}

// Labels returns the known version labels, oldest first.
func Labels() []string {
	labels := make([]string, 0, len(frameworkReleases))
	for label := range frameworkReleases {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		return frameworkReleases[labels[i]] < frameworkReleases[labels[j]]
	})
	return labels
}

// VersionForRelease returns the newest label whose minimum is satisfied by
// release, or "" when release predates every entry.
func VersionForRelease(release uint32) string {
	best := ""
	var bestRelease uint32
	for label, min := range frameworkReleases {
		if release >= min && min >= bestRelease {
			best, bestRelease = label, min
		}
	}
	return best
}

// =============================================================================
// CHECKER
// =============================================================================

// ReleaseReader reads the installed .NET Framework Release value.
// Implementations return 0 and a nil error when the framework is absent.
type ReleaseReader interface {
	InstalledRelease() (uint32, error)
}

// ReleaseReaderFunc adapts a function to ReleaseReader.
type ReleaseReaderFunc func() (uint32, error)

// InstalledRelease calls f.
func (f ReleaseReaderFunc) InstalledRelease() (uint32, error) {
	return f()
}

// Checker compares the installed framework against version labels.
type Checker struct {
	reader ReleaseReader
}

// NewChecker creates a Checker. A nil reader uses the system registry.
func NewChecker(reader ReleaseReader) *Checker {
	if reader == nil {
		reader = NewRegistryReader()
	}
	return &Checker{reader: reader}
}

// Installed returns the installed Release value. Read failures are logged
// and reported as 0, the same as "not installed".
func (c *Checker) Installed() uint32 {
	release, err := c.reader.InstalledRelease()
	if err != nil {
		log.Warn().Err(err).Str("key", NDPKeyPath).Msg("reading .NET Framework release failed")
		return 0
	}
	return release
}

// Satisfies reports whether an installed Release value meets the version
// named by label. Unknown labels require nothing and always pass.
func Satisfies(installed uint32, label string) bool {
	required, _ := RequiredRelease(label)
	return installed >= required
}

// Check reports whether the installed framework is at least the version
// named by label. Unknown labels require nothing and always pass.
func (c *Checker) Check(label string) bool {
	required, known := RequiredRelease(label)
	installed := c.Installed()
	ok := Satisfies(installed, label)
	log.Debug().
		Str("label", label).
		Bool("known", known).
		Uint32("required", required).
		Uint32("installed", installed).
		Bool("satisfied", ok).
		Msg("framework check")
	return ok
}

// InstalledVersion returns the label of the installed framework, or "" if
// no known 4.x release is present.
func (c *Checker) InstalledVersion() string {
	return VersionForRelease(c.Installed())
}

// CheckFramework reports whether the installed .NET Framework satisfies the
// version label, reading the system registry.
func CheckFramework(label string) bool {
	return NewChecker(nil).Check(label)
}
