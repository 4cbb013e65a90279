package semantic

import (
	"testing"

	"github.com/kryonlabs/kryc/internal/kry/ast"
	"github.com/kryonlabs/kryc/internal/kry/style"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeRequiresAppRoot(t *testing.T) {
	_, err := Analyze(&ast.Element{Type: "Container"}, nil, nil)
	require.Error(t, err)
}

func TestAnalyzeDuplicateID(t *testing.T) {
	root := &ast.Element{Type: "App", ID: "x", Children: []*ast.Element{{Type: "Text", ID: "x"}}}
	_, err := Analyze(root, map[string]*style.Resolved{}, nil)
	require.Error(t, err)
}

func TestAnalyzeUnknownStyleReference(t *testing.T) {
	root := &ast.Element{Type: "App", StyleNames: []string{"missing"}}
	_, err := Analyze(root, map[string]*style.Resolved{}, nil)
	require.Error(t, err)
}

func TestAnalyzeStateFlagPropagates(t *testing.T) {
	root := &ast.Element{Type: "App", StyleNames: []string{"btn"}}
	styles := map[string]*style.Resolved{"btn": {Name: "btn", HasState: true}}
	res, err := Analyze(root, styles, nil)
	require.NoError(t, err)
	require.True(t, res.HasStateProperties)
	require.True(t, root.HasStateProperties)
}

func TestAnalyzeUnknownEventHandlerReferenceIsFatal(t *testing.T) {
	root := &ast.Element{Type: "App", Properties: []ast.Property{
		{Name: "onClick", Value: ast.PropertyValue{Text: "missingHandler"}},
	}}
	_, err := Analyze(root, map[string]*style.Resolved{}, map[string]bool{})
	require.Error(t, err)
}

func TestAnalyzeKnownEventHandlerReferencePasses(t *testing.T) {
	root := &ast.Element{Type: "App", Properties: []ast.Property{
		{Name: "onClick", Value: ast.PropertyValue{Text: "handleClick"}},
	}}
	_, err := Analyze(root, map[string]*style.Resolved{}, map[string]bool{"handleClick": true})
	require.NoError(t, err)
}

func TestAnalyzeLayoutFlags(t *testing.T) {
	root := &ast.Element{Type: "App", Properties: []ast.Property{
		{Name: "layout", Value: ast.PropertyValue{Text: "column grow"}},
	}}
	_, err := Analyze(root, map[string]*style.Resolved{}, nil)
	require.NoError(t, err)
	require.NotZero(t, root.LayoutFlags)
}
