package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/nixdoc/internal/report"
	"github.com/dshills/nixdoc/pkg/types"
)

const listsNix = `{
  # Applies f to every element.
  map = f: list: builtins.map f list;

  /* Concatenates the results of f.

     Example:
       concatMap (x: [ x x ]) [ 1 2 ]
  */
  concatMap = f: list: builtins.concatMap f list;

  id = x: x;
}
`

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func setupTree(t *testing.T) string {
	t.Helper()
	t.Chdir(t.TempDir())

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "lib"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "lib", "lists.nix"), []byte(listsNix), 0644))
	return root
}

func TestSearch_PrintsReport(t *testing.T) {
	root := setupTree(t)
	file := filepath.Join(root, "lib", "lists.nix")

	stdout, _, err := execute(t, "(?i)map", root)
	require.NoError(t, err)

	want := "   Applies f to every element.\n" +
		"map = f: list: ...\n" +
		"# " + file + ":3\n" +
		report.Separator + "\n" +
		"   Concatenates the results of f.\n" +
		"\n" +
		"   Example:\n" +
		"     concatMap (x: [ x x ]) [ 1 2 ]\n" +
		"concatMap = f: list: ...\n" +
		"# " + file + ":10\n"
	assert.Equal(t, want, stdout)
}

func TestSearch_NoMatchPrintsNothing(t *testing.T) {
	root := setupTree(t)

	stdout, _, err := execute(t, "^nothing$", root)
	require.NoError(t, err)
	assert.Empty(t, stdout)
}

func TestSearch_DefaultDirectory(t *testing.T) {
	root := setupTree(t)
	t.Chdir(root)

	stdout, _, err := execute(t, "concat")
	require.NoError(t, err)
	assert.Contains(t, stdout, "# lib/lists.nix:10\n")
}

func TestSearch_InvalidPattern(t *testing.T) {
	root := setupTree(t)

	stdout, _, err := execute(t, "(", root)
	var patErr *types.PatternError
	assert.True(t, errors.As(err, &patErr))
	assert.Empty(t, stdout)
}

func TestSearch_UnreadableRoot(t *testing.T) {
	root := setupTree(t)

	_, _, err := execute(t, "x", filepath.Join(root, "missing"))
	assert.True(t, errors.Is(err, types.ErrRootUnreadable))
}

func TestSearch_WarningsGoToStderr(t *testing.T) {
	root := setupTree(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "broken.nix"), []byte("\xff\xfe"), 0644))

	stdout, stderr, err := execute(t, "map", root)
	require.NoError(t, err)
	assert.NotContains(t, stdout, "broken.nix")
	assert.Contains(t, stderr, "broken.nix")
}

func TestSearch_ExtensionFlag(t *testing.T) {
	root := setupTree(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "extra.nixx"), []byte("# Extra.\nextra = x: x;\n"), 0644))

	stdout, _, err := execute(t, "extra", root, "--ext", ".nixx")
	require.NoError(t, err)
	assert.Contains(t, stdout, "extra = x: ...")
}

func TestSearch_Cache(t *testing.T) {
	root := setupTree(t)
	cachePath := filepath.Join(t.TempDir(), "cache.db")

	first, _, err := execute(t, "map", root, "--cache", "--cache-path", cachePath)
	require.NoError(t, err)
	_, err = os.Stat(cachePath)
	require.NoError(t, err)

	second, _, err := execute(t, "map", root, "--cache", "--cache-path", cachePath)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSearch_ColorAlways(t *testing.T) {
	root := setupTree(t)

	stdout, _, err := execute(t, "^map$", root, "--color", "always")
	require.NoError(t, err)
	assert.Contains(t, stdout, "\x1b[")
	assert.True(t, strings.HasPrefix(stdout, "   Applies f to every element.\n"))
}

func TestSearch_InvalidFlagValue(t *testing.T) {
	root := setupTree(t)

	_, _, err := execute(t, "map", root, "--color", "sometimes")
	assert.Error(t, err)
}

func TestDocCommand(t *testing.T) {
	root := setupTree(t)
	file := filepath.Join(root, "lib", "lists.nix")

	search, _, err := execute(t, "^concatMap$", root)
	require.NoError(t, err)

	stdout, _, err := execute(t, "doc", file, "10", "15")
	require.NoError(t, err)
	assert.Equal(t, search, stdout)

	// Column is optional
	stdout, _, err = execute(t, "doc", file, "10")
	require.NoError(t, err)
	assert.Equal(t, search, stdout)

	// Undocumented lambda
	stdout, _, err = execute(t, "doc", file, "12")
	require.NoError(t, err)
	assert.Empty(t, stdout)

	_, _, err = execute(t, "doc", file, "zero")
	assert.Error(t, err)
}

func TestPosCommand(t *testing.T) {
	root := setupTree(t)
	file := filepath.Join(root, "lib", "lists.nix")

	stdout, _, err := execute(t, "pos", file, "id")
	require.NoError(t, err)
	assert.Equal(t, file+":12:8\n", stdout)

	stdout, _, err = execute(t, "pos", file, "missing")
	require.NoError(t, err)
	assert.Empty(t, stdout)
}

func TestVersionCommand(t *testing.T) {
	t.Chdir(t.TempDir())

	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "nixdoc "+version+"\n"))
	assert.Contains(t, stdout, "SQLite Driver:")
}
