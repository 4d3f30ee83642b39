// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DeleteIfExists removes the regular file at path if there is one.
//
// It returns false with a nil error when nothing exists at path, or when the
// path names a directory. A failed removal returns false and a *FileError of
// kind KindIO.
func DeleteIfExists(path string) (bool, error) {
	if path == "" {
		return false, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, NewFileError("delete", path, KindIO, err)
	}
	if info.IsDir() {
		return false, nil
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Removed by someone else between Stat and Remove.
			return false, nil
		}
		return false, NewFileError("delete", path, KindIO, err)
	}
	return true, nil
}

// DeleteFamily deletes every file that shares path's base name, whatever its
// extension, the way "del name.*" would. Useful for processes that emit the
// same report as html, pdf, txt and so on.
//
// The directory is path's directory component, or the current working
// directory when path has none. A file belongs to the family when stripping
// its final extension leaves exactly the stem of path and that extension is
// not empty, so "a.txt" and "a.csv" match "a.pdf" but "a.tar.gz" and "a" do
// not.
//
// Deleted paths are returned in lexical file name order. A failure on one
// file does not stop the sweep: the returned slice lists what was removed and
// the error joins every individual failure.
func DeleteFamily(path string) ([]string, error) {
	members, err := FamilyMembers(path)
	if err != nil {
		return nil, err
	}

	var deleted []string
	var errs []error
	for _, target := range members {
		if err := os.Remove(target); err != nil {
			errs = append(errs, NewFileError("delete", target, KindIO, err))
			continue
		}
		deleted = append(deleted, target)
	}
	return deleted, errors.Join(errs...)
}

// FamilyMembers lists the files DeleteFamily would remove for path, in the
// same order, without touching them.
//
// A path whose stem is empty, such as ".env", is rejected with ErrEmptyStem:
// its family would be every dot-file in the directory.
func FamilyMembers(path string) ([]string, error) {
	if path == "" {
		return nil, NewFileError("delete family", path, KindInvalid, ErrEmptyPath)
	}
	stem := FileStem(path)
	if stem == "" {
		return nil, NewFileError("delete family", path, KindInvalid, ErrEmptyStem)
	}

	dir := filepath.Dir(path)
	if dir == "." {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, NewFileError("delete family", path, KindIO, err)
		}
		dir = cwd
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, NewFileError("delete family", dir, KindIO, err)
	}

	var members []string
	for _, entry := range entries {
		if entry.Type().IsRegular() && inFamily(entry.Name(), stem) {
			members = append(members, filepath.Join(dir, entry.Name()))
		}
	}
	return members, nil
}

// FileStem returns the base name of path without its final extension.
func FileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// inFamily reports whether name is stem followed by one extension.
// Windows file names are case-insensitive, so the stem comparison is too.
func inFamily(name, stem string) bool {
	ext := filepath.Ext(name)
	if ext == "" {
		return false
	}
	candidate := strings.TrimSuffix(name, ext)
	if runtime.GOOS == "windows" {
		return strings.EqualFold(candidate, stem)
	}
	return candidate == stem
}
