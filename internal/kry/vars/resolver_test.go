package vars

import (
	"testing"

	"github.com/kryonlabs/kryc/internal/kry/ast"
	"github.com/kryonlabs/kryc/internal/kry/module"
	"github.com/stretchr/testify/require"
)

func graphWith(order []string, deps map[string][]string) *module.Graph {
	g := &module.Graph{Order: order, Deps: deps, Rank: map[string]int{}}
	for i, p := range order {
		g.Rank[p] = i
	}
	return g
}

func TestResolveSimpleSubstitution(t *testing.T) {
	g := graphWith([]string{"a"}, map[string][]string{})
	files := map[string]*ast.File{
		"a": {Variables: []ast.VariableDecl{{Name: "c", RawText: `"#FF0000"`}}},
	}
	r := New(g, files, nil)
	res, err := r.ResolveAll()
	require.NoError(t, err)
	require.Equal(t, `#FF0000`, res["a"].Values["c"])
}

func TestResolveOverrideOrderLaterImportWins(t *testing.T) {
	g := graphWith([]string{"b", "c", "a"}, map[string][]string{"a": {"b", "c"}})
	files := map[string]*ast.File{
		"b": {Variables: []ast.VariableDecl{{Name: "v", RawText: `"b"`}}},
		"c": {Variables: []ast.VariableDecl{{Name: "v", RawText: `"c"`}}},
		"a": {Variables: nil},
	}
	r := New(g, files, nil)
	res, err := r.ResolveAll()
	require.NoError(t, err)
	require.Equal(t, `c`, r.FullScope("a", res)["v"])
}

func TestResolveLocalShadowsImport(t *testing.T) {
	g := graphWith([]string{"b", "a"}, map[string][]string{"a": {"b"}})
	files := map[string]*ast.File{
		"b": {Variables: []ast.VariableDecl{{Name: "v", RawText: `"b"`}}},
		"a": {Variables: []ast.VariableDecl{{Name: "v", RawText: `"a"`}}},
	}
	r := New(g, files, nil)
	res, err := r.ResolveAll()
	require.NoError(t, err)
	require.Equal(t, `a`, res["a"].Values["v"])
}

func TestResolvePrivateNotExported(t *testing.T) {
	g := graphWith([]string{"b", "a"}, map[string][]string{"a": {"b"}})
	files := map[string]*ast.File{
		"b": {Variables: []ast.VariableDecl{{Name: "_internal", RawText: `"x"`}}},
		"a": {},
	}
	r := New(g, files, nil)
	res, err := r.ResolveAll()
	require.NoError(t, err)
	_, ok := res["a"].Public["_internal"]
	require.False(t, ok)
	_, ok = res["b"].Public["_internal"]
	require.False(t, ok)
}

func TestResolveCycleDetected(t *testing.T) {
	g := graphWith([]string{"a"}, map[string][]string{})
	files := map[string]*ast.File{
		"a": {Variables: []ast.VariableDecl{
			{Name: "x", RawText: "$y"},
			{Name: "y", RawText: "$x"},
		}},
	}
	r := New(g, files, nil)
	_, err := r.ResolveAll()
	require.Error(t, err)
	require.Contains(t, err.Error(), "circular")
}

func TestResolveExpressionEvaluation(t *testing.T) {
	g := graphWith([]string{"a"}, map[string][]string{})
	files := map[string]*ast.File{
		"a": {Variables: []ast.VariableDecl{
			{Name: "base", RawText: "10"},
			{Name: "total", RawText: "($base + 5)"},
		}},
	}
	r := New(g, files, nil)
	res, err := r.ResolveAll()
	require.NoError(t, err)
	require.Equal(t, "15", res["a"].Values["total"])
}

func TestResolveTernary(t *testing.T) {
	g := graphWith([]string{"a"}, map[string][]string{})
	files := map[string]*ast.File{
		"a": {Variables: []ast.VariableDecl{
			{Name: "flag", RawText: "true"},
			{Name: "label", RawText: `($flag ? "on" : "off")`},
		}},
	}
	r := New(g, files, nil)
	res, err := r.ResolveAll()
	require.NoError(t, err)
	require.Equal(t, "on", res["a"].Values["label"])
}

func TestResolveUndefinedVariable(t *testing.T) {
	g := graphWith([]string{"a"}, map[string][]string{})
	files := map[string]*ast.File{
		"a": {Variables: []ast.VariableDecl{{Name: "x", RawText: "$missing"}}},
	}
	r := New(g, files, nil)
	_, err := r.ResolveAll()
	require.Error(t, err)
}

func TestResolveCustomVariableOverride(t *testing.T) {
	g := graphWith([]string{"a"}, map[string][]string{})
	files := map[string]*ast.File{
		"a": {Variables: []ast.VariableDecl{{Name: "x", RawText: "$theme"}}},
	}
	r := New(g, files, map[string]string{"theme": "dark"})
	res, err := r.ResolveAll()
	require.NoError(t, err)
	require.Equal(t, "dark", res["a"].Values["x"])
}
