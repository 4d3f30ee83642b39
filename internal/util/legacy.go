// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"

	"github.com/rs/zerolog/log"
)

// EncodeLegacy converts text to enc. Runes the code page cannot represent,
// and invalid UTF-8, are written as '?', matching what the Windows ANSI
// encoder does. The mapping runs before the encoder because
// encoding.ReplaceUnsupported alone writes 0x1A for single-byte code pages.
func EncodeLegacy(text string, enc encoding.Encoding) ([]byte, error) {
	if enc == nil {
		enc = SystemCodePage()
	}
	out, _, err := transform.Bytes(transform.Chain(
		runes.Map(questionMarkUnsupported(enc)),
		encoding.ReplaceUnsupported(enc.NewEncoder()),
	), []byte(text))
	return out, err
}

// questionMarkUnsupported returns a mapping that replaces every rune enc
// cannot encode with '?'.
func questionMarkUnsupported(enc encoding.Encoding) func(rune) rune {
	if cm, ok := enc.(*charmap.Charmap); ok {
		return func(r rune) rune {
			if _, ok := cm.EncodeRune(r); !ok {
				return '?'
			}
			return r
		}
	}
	check := enc.NewEncoder()
	return func(r rune) rune {
		if r == utf8.RuneError {
			return '?'
		}
		if _, err := check.String(string(r)); err != nil {
			return '?'
		}
		return r
	}
}

// DecodeLegacy converts bytes in enc back to a UTF-8 string.
func DecodeLegacy(data []byte, enc encoding.Encoding) (string, error) {
	if enc == nil {
		enc = SystemCodePage()
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// WriteLegacyFile writes text to path encoded with enc, replacing any
// existing file, and returns the number of bytes written. A nil enc selects
// the system ANSI code page, which is what the older Diagram tools read.
//
// The parent directory must already exist; a missing one is a KindIO error,
// never created.
func WriteLegacyFile(path, text string, enc encoding.Encoding) (int, error) {
	if path == "" {
		return 0, NewFileError("write", path, KindInvalid, ErrEmptyPath)
	}
	data, err := EncodeLegacy(text, enc)
	if err != nil {
		return 0, NewFileError("write", path, KindInvalid, err)
	}
	if err := AtomicReplaceFile(path, data, 0644); err != nil {
		return 0, NewFileError("write", path, KindIO, err)
	}
	return len(data), nil
}

// SaveText writes text to path in the system ANSI code page and reports
// whether it succeeded. The cause of a failure is logged, not returned; use
// WriteLegacyFile when the caller needs it.
func SaveText(path, text string) bool {
	if _, err := WriteLegacyFile(path, text, nil); err != nil {
		log.Error().Err(err).Str("path", path).Str("kind", KindOf(err).String()).Msg("save text failed")
		return false
	}
	return true
}
