package support

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TestContext holds the state for integration tests.
type TestContext struct {
	// Command execution state
	LastCommand   string
	LastOutput    string
	LastStderr    string
	LastError     error
	LastExitCode  int
	LastStartTime time.Time
	LastDuration  time.Duration

	// Test environment
	WorkingDir string
	TempDir    string
	CorpusDir  string
	EnvVars    []string

	// HTTP state
	HTTPTestServer     *HTTPTestServerWrapper
	LastHTTPStatusCode int
	LastHTTPResponse   string
	LastHTTPHeaders    map[string]string
}

// NewTestContext creates a new test context.
func NewTestContext() (*TestContext, error) {
	workingDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	// commands run from the project root
	currentDir := workingDir
	for {
		if _, err := os.Stat(filepath.Join(currentDir, "go.mod")); err == nil {
			workingDir = currentDir
			break
		}
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	tempDir, err := os.MkdirTemp("", "langid-test-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	return &TestContext{
		WorkingDir: workingDir,
		TempDir:    tempDir,
		// keep JSON logs out of the captured output
		EnvVars: []string{"LANGID_LOG_LEVEL=error"},
	}, nil
}

// Cleanup stops the test server and removes temporary files.
func (testCtx *TestContext) Cleanup() error {
	if testCtx.HTTPTestServer != nil {
		testCtx.HTTPTestServer.Close()
		testCtx.HTTPTestServer = nil
	}

	if err := os.RemoveAll(testCtx.TempDir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove temp directory %s: %w", testCtx.TempDir, err)
	}
	return nil
}

// AddEnvVar adds an environment variable for command execution.
func (testCtx *TestContext) AddEnvVar(name, value string) {
	testCtx.EnvVars = append(testCtx.EnvVars, fmt.Sprintf("%s=%s", name, value))
}

// substituteCommandVariables replaces placeholders in command strings.
func (testCtx *TestContext) substituteCommandVariables(command string) string {
	command = strings.ReplaceAll(command, "{temp_dir}", testCtx.TempDir)
	if testCtx.CorpusDir != "" {
		command = strings.ReplaceAll(command, "{corpus_dir}", testCtx.CorpusDir)
	}
	return command
}

// resolvePath makes a feature file path absolute, relative to the temp dir.
func (testCtx *TestContext) resolvePath(path string) string {
	path = testCtx.substituteCommandVariables(path)
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(testCtx.TempDir, path)
}
