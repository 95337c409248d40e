package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MeKo-Tech/langid/internal/ngram"
	"github.com/MeKo-Tech/langid/internal/testutil"
	"github.com/MeKo-Tech/langid/internal/tokenizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintProfile(t *testing.T) {
	p := ngram.NewProfile("xx")
	require.NoError(t, tokenizer.Default().BuildProfile(p, "a a b"))

	var full bytes.Buffer
	require.NoError(t, printProfile(&full, p, 0))
	assert.Equal(t, p.String()+"\n", full.String())

	var limited bytes.Buffer
	require.NoError(t, printProfile(&limited, p, 2))
	lines := strings.Split(strings.TrimSpace(limited.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "xx: 8 n-grams", lines[0])
	assert.Equal(t, `   0  "a"       2`, lines[1])

	var all bytes.Buffer
	require.NoError(t, printProfile(&all, p, 100))
	assert.Len(t, strings.Split(strings.TrimSpace(all.String()), "\n"), 9)
}

func TestProfilesBuildAndShow(t *testing.T) {
	corpusDir := testutil.WriteCorpus(t)
	storePath := filepath.Join(t.TempDir(), "profiles.yaml")

	output, err := executeCommandAndCaptureOutput(t, rootCmd, []string{
		"profiles", "build", "--corpus-dir", corpusDir, "--log-level", "error",
		"--store", "yaml", "--store-path", storePath,
	})
	require.NoError(t, err, output)
	assert.Contains(t, output, "Saved 3 profiles (de, en, es)")
	require.FileExists(t, storePath)

	output, err = executeCommandAndCaptureOutput(t, rootCmd, []string{
		"profiles", "show", "de", "--limit", "5", "--log-level", "error",
		"--store", "yaml", "--store-path", storePath,
	})
	require.NoError(t, err, output)
	assert.Contains(t, output, "de: ")
	assert.Len(t, strings.Split(output, "\n"), 6)

	output, err = executeCommandAndCaptureOutput(t, rootCmd, []string{
		"profiles", "show", "fr", "--log-level", "error",
		"--store", "yaml", "--store-path", storePath,
	})
	require.Error(t, err)
	assert.Contains(t, output, "unknown language: fr")
}

func TestProfilesBuild_RequiresStore(t *testing.T) {
	output, err := executeCommandAndCaptureOutput(t, rootCmd, []string{
		"profiles", "build", "--corpus-dir", testutil.WriteCorpus(t), "--log-level", "error",
	})
	require.Error(t, err)
	assert.Contains(t, output, "no store configured")
}
