package parser

import (
	"testing"

	"github.com/kryonlabs/kryc/internal/kry/ast"
	"github.com/kryonlabs/kryc/internal/kry/token"
	"github.com/stretchr/testify/require"
)

func mustTokens(t *testing.T, src string) []token.Token {
	t.Helper()
	toks, err := token.New("t.kry", []byte(src)).Tokens()
	require.NoError(t, err)
	return toks
}

func TestParseMinimalApp(t *testing.T) {
	src := `App { window_title: "Hi" Text { text: "Hello" } }`
	f, err := Parse("t.kry", mustTokens(t, src))
	require.NoError(t, err)
	require.NotNil(t, f.Root)
	require.Equal(t, "App", f.Root.Type)
	require.Len(t, f.Root.Children, 1)
	require.Equal(t, "Text", f.Root.Children[0].Type)
}

func TestParseVariablesBlock(t *testing.T) {
	src := `@variables { c: "#FF0000" } App { background_color: $c }`
	f, err := Parse("t.kry", mustTokens(t, src))
	require.NoError(t, err)
	require.Len(t, f.Variables, 1)
	require.Equal(t, "c", f.Variables[0].Name)
	require.NotNil(t, f.Root)
	require.Equal(t, ast.ValVarRef, f.Root.Properties[0].Value.Kind)
}

func TestParseStyleWithExtendsAndPseudo(t *testing.T) {
	src := `style "a" { font_size: 12 }
style "b" { extends: "a" text_color: #000000 &:hover { text_color: #FFFFFF } }
App { }`
	f, err := Parse("t.kry", mustTokens(t, src))
	require.NoError(t, err)
	require.Len(t, f.Styles, 2)
	require.Equal(t, []string{"a"}, f.Styles[1].Extends)
	require.Len(t, f.Styles[1].Pseudo, 1)
	require.Equal(t, "hover", f.Styles[1].Pseudo[0].State)
}

func TestParseComponentDefWithDefault(t *testing.T) {
	src := `Define Card { Properties { title: String = "Untitled" } Container { Text { text: $title } } }
App { Card { } Card { title: "Named" } }`
	f, err := Parse("t.kry", mustTokens(t, src))
	require.NoError(t, err)
	require.Len(t, f.Components, 1)
	require.Equal(t, "Card", f.Components[0].Name)
	require.NotNil(t, f.Components[0].Properties[0].Default)
	require.NotNil(t, f.Root)
	require.Len(t, f.Root.Children, 2)
	require.True(t, f.Root.Children[0].IsComponentInstance)
}

func TestParseStyleCycleDoesNotFailAtParseTime(t *testing.T) {
	src := `style "a" { extends: "b" } style "b" { extends: "a" } App {}`
	_, err := Parse("t.kry", mustTokens(t, src))
	require.NoError(t, err) // cycle detection is a Style Resolver concern, not the Parser's
}

func TestParseScriptBlockExtractsEntryPoints(t *testing.T) {
	src := `@script lua { function onReady() end function onTick() end } App { }`
	f, err := Parse("t.kry", mustTokens(t, src))
	require.NoError(t, err)
	require.Len(t, f.Scripts, 1)
	require.Equal(t, []string{"onReady", "onTick"}, f.Scripts[0].EntryPoints)
}

func TestParseExternalScriptAllowsOmittedBody(t *testing.T) {
	src := `@script lua from "main.lua" App { }`
	f, err := Parse("t.kry", mustTokens(t, src))
	require.NoError(t, err)
	require.Len(t, f.Scripts, 1)
	require.Equal(t, "main.lua", f.Scripts[0].FromPath)
	require.Empty(t, f.Scripts[0].Body)
}

func TestParseScriptWithoutFromRequiresBody(t *testing.T) {
	src := `@script lua App { }`
	_, err := Parse("t.kry", mustTokens(t, src))
	require.Error(t, err)
}

func TestParseUnterminatedElement(t *testing.T) {
	_, err := Parse("t.kry", mustTokens(t, `App { Text { }`))
	require.Error(t, err)
}
