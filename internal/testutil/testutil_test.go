package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProjectRoot(t *testing.T) {
	root, err := GetProjectRoot()
	require.NoError(t, err)
	assert.NotEmpty(t, root)
	assert.True(t, FileExists(filepath.Join(root, "go.mod")))
}

func TestEnsureDir(t *testing.T) {
	tempDir := CreateTempDir(t)
	testDir := filepath.Join(tempDir, "test", "nested", "dir")

	require.NoError(t, EnsureDir(testDir))
	assert.True(t, DirExists(testDir))
}

func TestFileExists(t *testing.T) {
	assert.False(t, FileExists("/non/existent/file"))

	root, err := GetProjectRoot()
	require.NoError(t, err)
	assert.True(t, FileExists(filepath.Join(root, "go.mod")))
}

func TestWriteCorpus(t *testing.T) {
	dir := WriteCorpus(t)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, len(CorpusFiles()))

	data, err := os.ReadFile(filepath.Join(dir, "de_sample.txt"))
	require.NoError(t, err)
	assert.Equal(t, GermanText, string(data))
}

func TestWriteFile_CreatesParents(t *testing.T) {
	dir := CreateTempDir(t)
	path := WriteFile(t, dir, filepath.Join("a", "b", "c.txt"), "x")
	assert.True(t, FileExists(path))
}
