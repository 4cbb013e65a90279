package module

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestBuildSimpleInclude(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.kry", `@variables { v: "b" }`)
	root := writeFile(t, dir, "a.kry", `@include "b.kry"
App { }`)

	g, err := Build(root, nil)
	require.NoError(t, err)
	require.Len(t, g.Order, 2)
	require.Equal(t, filepath.Clean(filepath.Join(dir, "b.kry")), g.Order[0])
	require.Equal(t, root, g.Order[1])
	require.Less(t, g.Rank[g.Order[0]], g.Rank[g.Order[1]])
}

func TestBuildDetectsCycle(t *testing.T) {
	dir := t.TempDir()
	aPath := filepath.Join(dir, "a.kry")
	bPath := filepath.Join(dir, "b.kry")
	require.NoError(t, os.WriteFile(aPath, []byte(`@include "b.kry"`), 0o644))
	require.NoError(t, os.WriteFile(bPath, []byte(`@include "a.kry"`), 0o644))

	_, err := Build(aPath, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "cycle")
}

func TestBuildLaterImportRanksHigher(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.kry", `@variables { v: "b" }`)
	writeFile(t, dir, "c.kry", `@variables { v: "c" }`)
	root := writeFile(t, dir, "a.kry", `@include "b.kry"
@include "c.kry"
App { }`)

	g, err := Build(root, nil)
	require.NoError(t, err)
	bPath := filepath.Clean(filepath.Join(dir, "b.kry"))
	cPath := filepath.Clean(filepath.Join(dir, "c.kry"))
	require.Less(t, g.Rank[bPath], g.Rank[cPath])
}
