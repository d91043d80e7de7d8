package searcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/nixdoc/internal/indexer"
	"github.com/dshills/nixdoc/pkg/types"
)

func createTestFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestCompile_Invalid(t *testing.T) {
	_, err := Compile("(unclosed")
	require.Error(t, err)

	var patErr *types.PatternError
	require.True(t, errors.As(err, &patErr))
	assert.Equal(t, "(unclosed", patErr.Pattern)
}

func TestMatch(t *testing.T) {
	entries := []types.DocEntry{
		{Name: "add", Text: "Adds two numbers."},
		{Name: "concatMap", Text: "Maps then concatenates."},
		{Name: "id", Text: "Returns its argument."},
	}

	re, err := Compile("concat")
	require.NoError(t, err)
	got := Match(re, entries)
	require.Len(t, got, 1)
	assert.Equal(t, "concatMap", got[0].Name)

	// Text matches count too
	re, err = Compile("(?i)numbers|argument")
	require.NoError(t, err)
	got = Match(re, entries)
	require.Len(t, got, 2)
	assert.Equal(t, "add", got[0].Name)
	assert.Equal(t, "id", got[1].Name)

	re, err = Compile("nomatch")
	require.NoError(t, err)
	got = Match(re, entries)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSearcher_CompileCached(t *testing.T) {
	s := NewSearcher(nil)

	first, err := s.Compile("a+b")
	require.NoError(t, err)
	second, err := s.Compile("a+b")
	require.NoError(t, err)
	assert.Same(t, first, second)

	_, err = s.Compile("[")
	assert.Error(t, err)
	assert.Equal(t, 1, s.patterns.Len())
}

func TestSearchText_SingleEntry(t *testing.T) {
	root := t.TempDir()
	createTestFile(t, root, "trivial.nix", "# Adds two numbers.\nadd = a: b: a + b;\n")

	result, err := NewSearcher(nil).SearchText(context.Background(), "add", root)
	require.NoError(t, err)

	require.Equal(t, 1, result.Len())
	entry := result.Entries[0]
	assert.Equal(t, "Adds two numbers.", entry.Text)
	assert.Equal(t, "add = a: b: ...", entry.Signature)
	assert.Equal(t, filepath.Join(root, "trivial.nix"), entry.Position.File)
	assert.Equal(t, 2, entry.Position.Line)
}

func TestSearchText_FileOrder(t *testing.T) {
	root := t.TempDir()
	createTestFile(t, root, "pkgs/y.nix", "# Foo two.\nfoo = x: x;\n")
	createTestFile(t, root, "lib/x.nix", "\n\n\n# Foo one.\nfoo = x: x;\n")

	result, err := NewSearcher(indexer.New(&indexer.Config{Workers: 4})).SearchText(context.Background(), "foo", root)
	require.NoError(t, err)

	require.Equal(t, 2, result.Len())
	assert.Equal(t, filepath.Join(root, "lib", "x.nix"), result.Entries[0].Position.File)
	assert.Equal(t, 5, result.Entries[0].Position.Line)
	assert.Equal(t, filepath.Join(root, "pkgs", "y.nix"), result.Entries[1].Position.File)
}

func TestSearchText_NoMatch(t *testing.T) {
	root := t.TempDir()
	createTestFile(t, root, "a.nix", "# Identity.\nid = x: x;\n")

	result, err := NewSearcher(nil).SearchText(context.Background(), "zzz", root)
	require.NoError(t, err)
	assert.True(t, result.Empty())
}

func TestSearchText_PatternErrorBeforeScan(t *testing.T) {
	// The root does not exist; a pattern error must win
	_, err := NewSearcher(nil).SearchText(context.Background(), "(", filepath.Join(t.TempDir(), "missing"))

	var patErr *types.PatternError
	assert.True(t, errors.As(err, &patErr))
	assert.False(t, errors.Is(err, types.ErrRootUnreadable))
}

func TestSearchText_UnreadableRoot(t *testing.T) {
	_, err := NewSearcher(nil).SearchText(context.Background(), "x", filepath.Join(t.TempDir(), "missing"))
	assert.True(t, errors.Is(err, types.ErrRootUnreadable))
}

func TestSearch_ReportsWarnings(t *testing.T) {
	root := t.TempDir()
	createTestFile(t, root, "a.nix", "# A.\na = x: x;\n")
	createTestFile(t, root, "b.nix", "\xff\xfe")

	resp, err := NewSearcher(nil).Search(context.Background(), ".", root)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Result.Len())
	require.Len(t, resp.Result.Warnings, 1)
	assert.Equal(t, 1, resp.Statistics.FilesFailed)
}
