// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes file operation failures for handling.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindNotFound means the target did not exist.
	KindNotFound
	// KindIO covers write, delete and listing failures.
	KindIO
	// KindExternal means an external process (e.g. Excel) failed.
	KindExternal
	// KindTimeout means an operation exceeded its deadline.
	KindTimeout
	// KindInvalid means the input itself was unusable.
	KindInvalid
)

// String returns the string representation of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindIO:
		return "i/o"
	case KindExternal:
		return "external"
	case KindTimeout:
		return "timeout"
	case KindInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

var (
	// ErrEmptyPath is returned when an operation receives an empty path.
	ErrEmptyPath = errors.New("empty path")

	// ErrEmptyStem is returned when a file family has no base name.
	ErrEmptyStem = errors.New("file name has no stem")
)

// FileError describes a failed operation on a path.
type FileError struct {
	Op   string // operation, e.g. "delete", "write", "convert"
	Path string
	Kind ErrorKind
	Err  error
}

func (e *FileError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Kind)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// NewFileError creates a FileError.
func NewFileError(op, path string, kind ErrorKind, err error) error {
	return &FileError{Op: op, Path: path, Kind: kind, Err: err}
}

// KindOf returns the kind of the first FileError in err's chain, or
// KindUnknown when there is none.
func KindOf(err error) ErrorKind {
	var fe *FileError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}
