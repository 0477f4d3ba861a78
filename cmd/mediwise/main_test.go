package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediwise/internal/shell"
)

func TestRootCommand_Subcommands(t *testing.T) {
	names := make([]string, 0)
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}
	assert.Contains(t, names, "shell")
	assert.Contains(t, names, "batch")
	assert.Contains(t, names, "version")
}

func TestRootCommand_PersistentFlags(t *testing.T) {
	for _, name := range []string{"log-level", "log-file", "test-mode", "api-base-url", "validate-session", "theme"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
}

func TestBatchCommand_RejectsWrongExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.txt")
	require.NoError(t, os.WriteFile(path, []byte("\\help\n"), 0600))

	err := runBatch(batchCmd, []string{path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), shell.ScriptExtension)
}
