// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// DefaultCodePage is used when the OS gives no usable ANSI code page.
var DefaultCodePage encoding.Encoding = charmap.Windows1252

// codePages maps Windows code page identifiers to encodings.
var codePages = map[uint32]encoding.Encoding{
	437:   charmap.CodePage437,
	850:   charmap.CodePage850,
	852:   charmap.CodePage852,
	866:   charmap.CodePage866,
	874:   charmap.Windows874,
	1250:  charmap.Windows1250,
	1251:  charmap.Windows1251,
	1252:  charmap.Windows1252,
	1253:  charmap.Windows1253,
	1254:  charmap.Windows1254,
	1255:  charmap.Windows1255,
	1256:  charmap.Windows1256,
	1257:  charmap.Windows1257,
	1258:  charmap.Windows1258,
	28591: charmap.ISO8859_1,
	28605: charmap.ISO8859_15,
	65001: unicode.UTF8,
}

// CodePageByNumber returns the encoding for a Windows code page identifier.
func CodePageByNumber(id uint32) (encoding.Encoding, bool) {
	enc, ok := codePages[id]
	return enc, ok
}

// CodePageByName resolves a code page name. It accepts IANA names and
// aliases ("windows-1252", "IBM850", "latin1"), bare Windows identifiers
// ("1252") and the "cpNNNN" shorthand. An empty name selects the system
// ANSI code page.
func CodePageByName(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return SystemCodePage(), nil
	}

	digits := strings.TrimPrefix(strings.ToLower(name), "cp")
	if id, err := strconv.ParseUint(digits, 10, 32); err == nil {
		if enc, ok := CodePageByNumber(uint32(id)); ok {
			return enc, nil
		}
		return nil, fmt.Errorf("unsupported code page %s", name)
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown code page %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("code page %q is registered but not supported", name)
	}
	return enc, nil
}

// SystemCodePage returns the legacy ANSI code page of the running system.
func SystemCodePage() encoding.Encoding {
	if enc, ok := CodePageByNumber(systemCodePageID()); ok {
		return enc
	}
	return DefaultCodePage
}
