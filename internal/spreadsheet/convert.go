// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package spreadsheet

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/diagutil/internal/util"
)

// xlOpenXMLWorkbook is Excel's XlFileFormat value for .xlsx.
const xlOpenXMLWorkbook = 51

// DefaultTimeout bounds a single conversion when none is configured.
const DefaultTimeout = 2 * time.Minute

// Sentinel errors for easy checking.
var (
	ErrNotLegacy             = errors.New("not a legacy .xls workbook")
	ErrAutomationUnavailable = errors.New("excel automation is only available on windows")
	ErrUnknownBackend        = errors.New("unknown conversion backend")
)

// Converter produces .xlsx bytes from a legacy workbook on disk.
type Converter interface {
	Convert(ctx context.Context, path string) ([]byte, error)
}

// ConverterFunc adapts a function to Converter.
type ConverterFunc func(ctx context.Context, path string) ([]byte, error)

// Convert calls f.
func (f ConverterFunc) Convert(ctx context.Context, path string) ([]byte, error) {
	return f(ctx, path)
}

// Backend names a Converter implementation.
type Backend string

const (
	BackendNative Backend = "native"
	BackendExcel  Backend = "excel"
)

// ParseBackend converts a configuration string to a Backend.
func ParseBackend(s string) (Backend, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(s))) {
	case "", BackendNative:
		return BackendNative, nil
	case BackendExcel:
		return BackendExcel, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBackend, s)
	}
}

// Options selects and tunes a Converter.
type Options struct {
	Backend Backend
	Timeout time.Duration // per attempt; 0 uses DefaultTimeout
	Retries int           // extra attempts after a failure
	TempDir string        // for the automation backend; "" uses os.TempDir
}

// New builds the Converter described by opts, wrapped in Guarded.
func New(opts Options) (Converter, error) {
	var inner Converter
	switch opts.Backend {
	case "", BackendNative:
		inner = NativeConverter{}
	case BackendExcel:
		inner = &AutomationConverter{TempDir: opts.TempDir}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Guarded{Converter: inner, Timeout: timeout, Retries: opts.Retries}, nil
}

// ConvertToXLSX converts the legacy workbook at path with the native
// backend and the default timeout.
func ConvertToXLSX(ctx context.Context, path string) ([]byte, error) {
	conv, err := New(Options{Backend: BackendNative})
	if err != nil {
		return nil, err
	}
	return conv.Convert(ctx, path)
}

// ConvertFile converts src and writes the result atomically to dst. An
// empty dst places the .xlsx next to src.
func ConvertFile(ctx context.Context, conv Converter, src, dst string) (string, error) {
	if dst == "" {
		dst = XLSXPath(src)
	}
	data, err := conv.Convert(ctx, src)
	if err != nil {
		return "", err
	}
	if err := util.AtomicWriteFile(dst, data, 0644); err != nil {
		return "", util.NewFileError("write", dst, util.KindIO, err)
	}
	return dst, nil
}

// XLSXPath returns src with its extension replaced by .xlsx.
func XLSXPath(src string) string {
	return strings.TrimSuffix(src, filepath.Ext(src)) + ".xlsx"
}

// checkSource validates that path names an existing file.
func checkSource(op, path string) error {
	if path == "" {
		return util.NewFileError(op, path, util.KindInvalid, util.ErrEmptyPath)
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return util.NewFileError(op, path, util.KindNotFound, err)
		}
		return util.NewFileError(op, path, util.KindIO, err)
	}
	if info.IsDir() {
		return util.NewFileError(op, path, util.KindInvalid, errors.New("is a directory"))
	}
	return nil
}

// tempXLSXPath returns a unique, not yet existing .xlsx path in dir.
func tempXLSXPath(dir string) string {
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "diagutil-"+uuid.NewString()+".xlsx")
}
