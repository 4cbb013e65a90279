package size

import (
	"testing"

	"github.com/kryonlabs/kryc/internal/kry/ast"
	"github.com/kryonlabs/kryc/internal/kry/style"
	"github.com/stretchr/testify/require"
)

func TestCalculateAssignsStringAndPropBlockIndices(t *testing.T) {
	root := &ast.Element{
		Type: "App",
		ID:   "root",
		Properties: []ast.Property{
			{Name: "background_color", Value: ast.PropertyValue{Kind: ast.ValColor, Text: "FF0000"}},
		},
		Children: []*ast.Element{
			{Type: "Text", ID: "a", Properties: []ast.Property{
				{Name: "text", Value: ast.PropertyValue{Kind: ast.ValString, Text: "hi"}},
			}},
			{Type: "Text", ID: "b", Properties: []ast.Property{
				{Name: "text", Value: ast.PropertyValue{Kind: ast.ValString, Text: "hi"}},
			}},
		},
	}

	p, err := Calculate(root, nil, nil, false)
	require.NoError(t, err)
	require.Equal(t, 3, 1+len(root.Children)) // sanity: two children
	require.NotZero(t, p.Root.IDIndex)

	// Both Text children encode an identical property set, so they must
	// share one deduplicated property block (testable property §8.D).
	require.Equal(t, p.Root.Children[0].PropBlockIndex, p.Root.Children[1].PropBlockIndex)
	require.NotZero(t, p.Root.Children[0].PropBlockIndex)
}

func TestCalculateComputesSequentialOffsets(t *testing.T) {
	root := &ast.Element{
		Type: "App",
		Children: []*ast.Element{
			{Type: "Text"},
			{Type: "Text"},
		},
	}
	p, err := Calculate(root, nil, nil, false)
	require.NoError(t, err)

	require.Zero(t, p.Root.Offset)
	require.Equal(t, uint32(ElementHeaderSize), p.Root.Children[0].Offset)
	require.Equal(t, uint32(ElementHeaderSize*2), p.Root.Children[1].Offset)
	require.Equal(t, uint32(ElementHeaderSize*3), p.ElementSectionSize)
}

func TestCalculateHeaderGeometryDoesNotConsumePropertyBlock(t *testing.T) {
	root := &ast.Element{
		Type: "App",
		Properties: []ast.Property{
			{Name: "width", Value: ast.PropertyValue{Kind: ast.ValNumber, Text: "800"}},
			{Name: "height", Value: ast.PropertyValue{Kind: ast.ValNumber, Text: "600"}},
		},
	}
	p, err := Calculate(root, nil, nil, false)
	require.NoError(t, err)
	require.Equal(t, uint16(800), p.Root.Width)
	require.Equal(t, uint16(600), p.Root.Height)
	require.Zero(t, p.Root.PropBlockIndex)
}

func TestCalculateStylesProduceBaseAndPseudoBlocks(t *testing.T) {
	root := &ast.Element{Type: "App", StyleNames: []string{"btn"}}
	styles := map[string]*style.Resolved{
		"btn": {
			Name:       "btn",
			Properties: map[string]ast.PropertyValue{"background_color": {Kind: ast.ValColor, Text: "112233"}},
			Pseudo: map[string]map[string]ast.PropertyValue{
				"hover": {"background_color": {Kind: ast.ValColor, Text: "445566"}},
			},
			HasState: true,
		},
	}
	p, err := Calculate(root, styles, nil, false)
	require.NoError(t, err)
	require.Len(t, p.Styles, 1)
	require.NotZero(t, p.Styles[0].BasePropBlock)
	require.NotZero(t, p.Styles[0].PseudoBlocks["hover"])
	require.NotEqual(t, p.Styles[0].BasePropBlock, p.Styles[0].PseudoBlocks["hover"])
	require.NotZero(t, p.Flags&0x1) // FlagHasStateProperties bit
}

func TestCalculateEventPropertyInternsCallbackName(t *testing.T) {
	root := &ast.Element{
		Type: "Button",
		Properties: []ast.Property{
			{Name: "onClick", Value: ast.PropertyValue{Kind: ast.ValIdentifier, Text: "handleClick"}},
		},
	}
	p, err := Calculate(root, nil, nil, false)
	require.NoError(t, err)
	require.Len(t, p.Root.Events, 1)
	require.Contains(t, p.Strings.Values(), "handleClick")
}

func TestCalculateInternsScriptEntryPointsAndExternalPath(t *testing.T) {
	root := &ast.Element{Type: "App"}
	scripts := []ast.ScriptRecord{
		{Lang: "lua", Name: "main", FromPath: "scripts/main.lua", Body: "function onReady() end", EntryPoints: []string{"onReady"}},
	}
	p, err := Calculate(root, nil, scripts, false)
	require.NoError(t, err)
	require.Contains(t, p.Strings.Values(), "onReady")
	require.Contains(t, p.Strings.Values(), "scripts/main.lua")
}

func TestCalculateEmbeddedScriptDoesNotInternFromPath(t *testing.T) {
	root := &ast.Element{Type: "App"}
	scripts := []ast.ScriptRecord{
		{Lang: "lua", Name: "main", FromPath: "scripts/main.lua", Body: "function onReady() end"},
	}
	p, err := Calculate(root, nil, scripts, true)
	require.NoError(t, err)
	require.NotContains(t, p.Strings.Values(), "scripts/main.lua")
}

func TestCalculateUnresolvedVariableIsError(t *testing.T) {
	root := &ast.Element{
		Type: "Text",
		Properties: []ast.Property{
			{Name: "text", Value: ast.PropertyValue{Kind: ast.ValVarRef, Text: "title"}},
		},
	}
	_, err := Calculate(root, nil, nil, false)
	require.Error(t, err)
}
