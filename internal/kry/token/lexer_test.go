package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLexerBasicTokens(t *testing.T) {
	src := `App { window_title: "Hi" }`
	toks, err := New("t.kry", []byte(src)).Tokens()
	require.NoError(t, err)
	require.Equal(t, Identifier, toks[0].Kind)
	require.Equal(t, "App", toks[0].Text)
	require.Equal(t, Punct, toks[1].Kind)
	require.Equal(t, "{", toks[1].Text)
	require.Equal(t, Identifier, toks[2].Kind)
	require.Equal(t, "window_title", toks[2].Text)
	require.Equal(t, Punct, toks[3].Kind)
	require.Equal(t, StringLiteral, toks[4].Kind)
	require.Equal(t, "Hi", toks[4].Text)
	require.Equal(t, EOF, toks[len(toks)-1].Kind)
}

func TestLexerVarRefAndTrailingComment(t *testing.T) {
	src := `background_color: $c # trailing comment`
	toks, err := New("t.kry", []byte(src)).Tokens()
	require.NoError(t, err)
	require.Equal(t, VarRef, toks[2].Kind)
	require.Equal(t, "c", toks[2].Text)
}

func TestLexerColorLiteral(t *testing.T) {
	toks, err := New("t.kry", []byte(`#FF0000`)).Tokens()
	require.NoError(t, err)
	require.Equal(t, ColorLiteral, toks[0].Kind)
	require.Equal(t, "FF0000", toks[0].Text)
}

func TestLexerUnterminatedString(t *testing.T) {
	_, err := New("t.kry", []byte(`"abc`)).Tokens()
	require.Error(t, err)
}

func TestLexerUnrecognizedChar(t *testing.T) {
	_, err := New("t.kry", []byte("`")).Tokens()
	require.Error(t, err)
}

func TestLexerUnitSuffixes(t *testing.T) {
	toks, err := New("t.kry", []byte(`width: 50% height: 10px`)).Tokens()
	require.NoError(t, err)
	require.Equal(t, Percentage, toks[2].Kind)
	require.Equal(t, PixelSize, toks[5].Kind)
}
