package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/inicheck/internal/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func fixtures(t *testing.T, config string) (schemaPath, configPath string) {
	t.Helper()
	dir := t.TempDir()
	schemaPath = filepath.Join(dir, "master.yaml")
	configPath = filepath.Join(dir, "config.ini")
	require.NoError(t, os.WriteFile(schemaPath, []byte("basic:\n  num_users: int\n"), 0o644))
	require.NoError(t, os.WriteFile(configPath, []byte(config), 0o644))
	return schemaPath, configPath
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "inicheck version "))
}

func TestCheckCommand(t *testing.T) {
	schemaPath, configPath := fixtures(t, "[basic]\nnum_users = 2\n")
	out, err := execute(t, "check", "--schema", schemaPath, "--output", "json", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, `"valid": true`)

	schemaPath, configPath = fixtures(t, "[basic]\nnum_users = two\n")
	_, err = execute(t, "check", "--schema", schemaPath, "--output", "json", configPath)
	assert.ErrorIs(t, err, cli.ErrInvalid)
}

func TestCheckCommand_RequiresConfig(t *testing.T) {
	_, err := execute(t, "check")
	assert.Error(t, err)
}

func TestSchemaCommand(t *testing.T) {
	schemaPath, _ := fixtures(t, "")
	out, err := execute(t, "schema", "--schema", schemaPath, "--output", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"num_users"`)
}
