package cmd

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestMain(m *testing.M) {
	keyring.MockInit()
	os.Exit(m.Run())
}

// execute runs the root command with args and returns its combined output
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	b := bytes.NewBufferString("")
	rootCmd.SetOut(b)
	rootCmd.SetErr(b)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return b.String(), err
}

func TestRootCommand(t *testing.T) {
	output, err := execute(t)
	require.NoError(t, err)

	assert.Contains(t, output, "sparkload")
	assert.Contains(t, output, "song play warehouse")
}

func TestRootCommandHelp(t *testing.T) {
	output, err := execute(t, "--help")
	require.NoError(t, err)

	assert.Contains(t, output, "Available Commands:")
	for _, name := range []string{"setup", "load", "plan", "check", "verify", "status", "simulate", "init", "version"} {
		assert.Contains(t, output, name)
	}
	assert.Contains(t, output, "--config")
	assert.Contains(t, output, "--verbose")
}

func TestInvalidCommand(t *testing.T) {
	_, err := execute(t, "invalid-command")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestVersionCommand(t *testing.T) {
	output, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, output, "sparkload version dev")
}
