package parser

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractEntryPointsLua(t *testing.T) {
	body := "local x = 1\nfunction onReady()\n  print(x)\nend\nfunction onClick() end\n"
	require.Equal(t, []string{"onClick", "onReady"}, ExtractEntryPoints("lua", body))
}

func TestExtractEntryPointsJavaScript(t *testing.T) {
	body := "export function onReady() {}\nconst onTick = () => {}\n"
	require.ElementsMatch(t, []string{"onReady", "onTick"}, ExtractEntryPoints("javascript", body))
}

func TestExtractEntryPointsPython(t *testing.T) {
	body := "def on_ready():\n    pass\n"
	require.Equal(t, []string{"on_ready"}, ExtractEntryPoints("python", body))
}

func TestExtractEntryPointsUnknownLanguageReturnsNil(t *testing.T) {
	require.Nil(t, ExtractEntryPoints("cobol", "function onReady() end"))
}

func TestExtractEntryPointsDeduplicates(t *testing.T) {
	body := "function onReady() end\nfunction onReady() end\n"
	require.Equal(t, []string{"onReady"}, ExtractEntryPoints("lua", body))
}
