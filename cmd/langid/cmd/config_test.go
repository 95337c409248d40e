package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "langid.yaml")

	output, err := executeCommandAndCaptureOutput(t, rootCmd, []string{"config", "init", path})
	require.NoError(t, err, output)
	assert.Contains(t, output, "Wrote default configuration to "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "top_k: 3")
	assert.Contains(t, string(data), "label_length: 2")
}

func TestConfigShow(t *testing.T) {
	output, err := executeCommandAndCaptureOutput(t, rootCmd, []string{"config", "show", "--log-level", "warn"})
	require.NoError(t, err, output)

	assert.Contains(t, output, "Environment prefix: LANGID")
	assert.Contains(t, output, "log_level: warn")
	assert.Contains(t, output, "min_len: 1")
	assert.Contains(t, output, "max_len: 5")
}
