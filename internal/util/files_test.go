// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0644))
	}
}

// =============================================================================
// DELETE IF EXISTS TESTS
// =============================================================================

func TestDeleteIfExists_Missing(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "keep.txt")

	deleted, err := DeleteIfExists(filepath.Join(dir, "missing.txt"))
	require.NoError(t, err)
	assert.False(t, deleted)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDeleteIfExists_Existing(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "gone.txt")
	path := filepath.Join(dir, "gone.txt")

	deleted, err := DeleteIfExists(path)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.NoFileExists(t, path)
}

func TestDeleteIfExists_Directory(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0755))

	deleted, err := DeleteIfExists(sub)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.DirExists(t, sub)
}

func TestDeleteIfExists_EmptyPath(t *testing.T) {
	deleted, err := DeleteIfExists("")
	require.NoError(t, err)
	assert.False(t, deleted)
}

// =============================================================================
// DELETE FAMILY TESTS
// =============================================================================

func TestDeleteFamily_DeletesSiblings(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.txt", "a.csv", "a.tmp", "b.txt")

	deleted, err := DeleteFamily(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)

	// Lexical file name order.
	assert.Equal(t, []string{
		filepath.Join(dir, "a.csv"),
		filepath.Join(dir, "a.tmp"),
		filepath.Join(dir, "a.txt"),
	}, deleted)
	assert.NoFileExists(t, filepath.Join(dir, "a.txt"))
	assert.NoFileExists(t, filepath.Join(dir, "a.csv"))
	assert.NoFileExists(t, filepath.Join(dir, "a.tmp"))
	assert.FileExists(t, filepath.Join(dir, "b.txt"))
}

func TestDeleteFamily_SingleExtensionOnly(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.html", "a.tar.gz", "a", "ab.txt", "xa.txt")

	deleted, err := DeleteFamily(filepath.Join(dir, "a.pdf"))
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, "a.html")}, deleted)
	assert.FileExists(t, filepath.Join(dir, "a.tar.gz"))
	assert.FileExists(t, filepath.Join(dir, "a"))
	assert.FileExists(t, filepath.Join(dir, "ab.txt"))
	assert.FileExists(t, filepath.Join(dir, "xa.txt"))
}

func TestDeleteFamily_SkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.txt")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "a.d"), 0755))

	deleted, err := DeleteFamily(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.txt")}, deleted)
	assert.DirExists(t, filepath.Join(dir, "a.d"))
}

func TestDeleteFamily_UsesWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "report.html", "report.pdf", "other.pdf")
	t.Chdir(dir)

	cwd, err := os.Getwd()
	require.NoError(t, err)

	deleted, err := DeleteFamily("report.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(cwd, "report.html"),
		filepath.Join(cwd, "report.pdf"),
	}, deleted)
	assert.FileExists(t, filepath.Join(dir, "other.pdf"))
}

func TestDeleteFamily_NoMatches(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "b.txt")

	deleted, err := DeleteFamily(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Empty(t, deleted)
}

func TestDeleteFamily_Errors(t *testing.T) {
	_, err := DeleteFamily("")
	require.ErrorIs(t, err, ErrEmptyPath)
	assert.Equal(t, KindInvalid, KindOf(err))

	_, err = DeleteFamily(filepath.Join(t.TempDir(), "missing", "a.txt"))
	require.Error(t, err)
	assert.Equal(t, KindIO, KindOf(err))
}

func TestDeleteFamily_RejectsEmptyStem(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, ".env", ".bashrc", ".gitignore")

	for _, name := range []string{".env", ".gitignore"} {
		_, err := DeleteFamily(filepath.Join(dir, name))
		require.ErrorIs(t, err, ErrEmptyStem, name)
		assert.Equal(t, KindInvalid, KindOf(err))
	}

	_, err := FamilyMembers(filepath.Join(dir, ".env"))
	require.ErrorIs(t, err, ErrEmptyStem)

	assert.FileExists(t, filepath.Join(dir, ".env"))
	assert.FileExists(t, filepath.Join(dir, ".bashrc"))
	assert.FileExists(t, filepath.Join(dir, ".gitignore"))
}

func TestFamilyMembers_DoesNotDelete(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.txt")
	touch(t, dir, "a.csv")
	touch(t, dir, "b.txt")

	members, err := FamilyMembers(filepath.Join(dir, "a.pdf"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.csv"),
		filepath.Join(dir, "a.txt"),
	}, members)
	assert.FileExists(t, filepath.Join(dir, "a.txt"))
	assert.FileExists(t, filepath.Join(dir, "a.csv"))
}

func TestFileStem(t *testing.T) {
	assert.Equal(t, "a", FileStem("a.txt"))
	assert.Equal(t, "a.tar", FileStem("/tmp/a.tar.gz"))
	assert.Equal(t, "noext", FileStem("dir/noext"))
}
