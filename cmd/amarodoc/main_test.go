package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGenerateAndValidate(t *testing.T) {
	dir := t.TempDir()
	for _, format := range []string{"json", "yaml"} {
		path := filepath.Join(dir, "openapi."+format)
		_, err := run(t, "generate", "--format", format, "--comments", "../../internal/petstore", "-o", path)
		require.NoError(t, err, format)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "listPets", format)

		out, err := run(t, "validate", path)
		require.NoError(t, err, out)
		assert.Contains(t, out, "is valid")
	}
}

func TestGenerateStdout(t *testing.T) {
	out, err := run(t, "generate")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "{"))

	_, err = run(t, "generate", "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestValidateInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("openapi: 3.0.3\ninfo:\n  version: 1.0.0\npaths: {}\n"), 0o644))

	out, err := run(t, "validate", path)
	assert.ErrorIs(t, err, errInvalidDocument)
	assert.Contains(t, out, "is invalid")

	_, err = run(t, "validate", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to open file")
}

func TestToken(t *testing.T) {
	out, err := run(t, "token", "--subject", "ops")
	require.NoError(t, err)

	token, err := jwt.Parse(strings.TrimSpace(out), func(*jwt.Token) (interface{}, error) {
		return []byte("change-me"), nil
	})
	require.NoError(t, err)
	sub, err := token.Claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "ops", sub)
	iss, err := token.Claims.GetIssuer()
	require.NoError(t, err)
	assert.Equal(t, "amarodoc", iss)
}
