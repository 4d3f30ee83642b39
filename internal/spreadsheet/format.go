// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package spreadsheet

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// validExtensions holds the recognized Excel extensions, lower-cased.
var validExtensions = map[string]struct{}{
	".xlsx": {},
	".xls":  {},
}

// IsExcelFile reports whether path has an Excel extension (.xlsx or .xls,
// any case). The file itself is not opened.
func IsExcelFile(path string) bool {
	if path == "" {
		return false
	}
	_, ok := validExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// IsLegacyExcel reports whether path has the .xls extension.
func IsLegacyExcel(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xls")
}

// Format identifies a workbook container.
type Format int

const (
	// FormatUnknown is anything that is not a workbook container.
	FormatUnknown Format = iota
	// FormatXLS is the Excel 97-2003 binary format (OLE2 compound file).
	FormatXLS
	// FormatXLSX is the Office Open XML format (ZIP package).
	FormatXLSX
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatXLS:
		return "xls"
	case FormatXLSX:
		return "xlsx"
	default:
		return "unknown"
	}
}

var (
	oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	zipSignature = []byte{'P', 'K', 0x03, 0x04}
)

// SniffFormat identifies a workbook by its leading bytes rather than its
// extension. Any OLE2 compound file reports FormatXLS and any ZIP archive
// FormatXLSX; the package contents are not inspected.
func SniffFormat(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown, err
	}
	defer f.Close()

	header := make([]byte, len(oleSignature))
	n, err := io.ReadFull(f, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return FormatUnknown, err
	}
	return sniffHeader(header[:n]), nil
}

func sniffHeader(header []byte) Format {
	switch {
	case bytes.HasPrefix(header, oleSignature):
		return FormatXLS
	case bytes.HasPrefix(header, zipSignature):
		return FormatXLSX
	default:
		return FormatUnknown
	}
}
