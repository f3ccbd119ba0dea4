package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/saylorsolutions/eventx/cli"
	"github.com/saylorsolutions/eventx/codegen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testManifest = `package: auth
events:
  - name: user.login
    params:
      - name: username
        type: string
  - name: user.logout
`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func runApp(t *testing.T, args ...string) (stdout, stderr *bytes.Buffer, err error) {
	t.Helper()
	stdout, stderr = new(bytes.Buffer), new(bytes.Buffer)
	err = newApp(stdout, stderr).Exec(args)
	return stdout, stderr, err
}

func TestGenerate_Stdout(t *testing.T) {
	manifest := writeManifest(t, testManifest)
	stdout, _, err := runApp(t, "generate", manifest)
	require.NoError(t, err)

	m, err := codegen.LoadManifest(manifest)
	require.NoError(t, err)
	expected, err := codegen.Generate(m)
	require.NoError(t, err)
	assert.Equal(t, string(expected), stdout.String())
}

func TestGenerate_OutputFile(t *testing.T) {
	manifest := writeManifest(t, testManifest)
	output := filepath.Join(filepath.Dir(manifest), "events_gen.go")
	t.Setenv(envLogLevel, "info")

	stdout, stderr, err := runApp(t, "gen", "-p", "accounts", "-o", output, manifest)
	require.NoError(t, err)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "Generated event keys")

	src, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(src), "package accounts")
	assert.Contains(t, string(src), `UserLoginUsername = eventbus.NewKey[string]("username")`)

	entries, err := os.ReadDir(filepath.Dir(output))
	require.NoError(t, err)
	assert.Len(t, entries, 2, "No temp files should be left behind")
}

func TestGenerate_PackageFromEnvironment(t *testing.T) {
	manifest := writeManifest(t, "events:\n  - name: app.started\n")
	t.Setenv(envPackage, "")
	_, _, err := runApp(t, "generate", manifest)
	assert.True(t, cli.IsUsageError(err), "A package name is required")

	t.Setenv(envPackage, "app")
	stdout, _, err := runApp(t, "generate", manifest)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "package app")
}

func TestGenerate_Verbose(t *testing.T) {
	manifest := writeManifest(t, testManifest)
	_, stderr, err := runApp(t, "generate", "-v", manifest)
	require.NoError(t, err)
	assert.Contains(t, stderr.String(), "Loading manifest")

	t.Setenv(envVerbose, "true")
	_, stderr, err = runApp(t, "list", manifest)
	require.NoError(t, err)
	assert.Contains(t, stderr.String(), "Loaded manifest")
}

func TestGenerate_Errors(t *testing.T) {
	_, stderr, err := runApp(t, "generate")
	assert.ErrorIs(t, err, cli.ErrArgMap)
	assert.Contains(t, stderr.String(), "USAGE:\neventgen generate [FLAGS] MANIFEST")

	_, _, err = runApp(t, "generate", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	manifest := writeManifest(t, "package: auth\nevents:\n  - name: ''\n")
	_, _, err = runApp(t, "generate", manifest)
	assert.ErrorIs(t, err, codegen.ErrInvalidManifest)
}

func TestList(t *testing.T) {
	manifest := writeManifest(t, testManifest)
	stdout, _, err := runApp(t, "ls", manifest)
	require.NoError(t, err)
	assert.Equal(t, "user.login\tUserLogin\n  username\tstring\nuser.logout\tUserLogout\n", stdout.String())
}

func TestUnknownCommand(t *testing.T) {
	_, stderr, err := runApp(t, "publish")
	assert.ErrorIs(t, err, cli.ErrUnknownCommand)
	assert.Contains(t, stderr.String(), "generate, gen")
}
