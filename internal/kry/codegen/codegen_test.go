package codegen

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/kryonlabs/kryc/internal/kry/ast"
	"github.com/kryonlabs/kryc/internal/kry/size"
	"github.com/kryonlabs/kryc/pkg/krb"
	"github.com/stretchr/testify/require"
)

func sectionDescriptor(b []byte, idx krb.SectionIndex) (offset, size uint32) {
	base := 8 + 8*int(idx)
	return binary.LittleEndian.Uint32(b[base : base+4]), binary.LittleEndian.Uint32(b[base+4 : base+8])
}

func TestGenerateWritesValidHeader(t *testing.T) {
	root := &ast.Element{Type: "App", ID: "root"}
	plan, err := size.Calculate(root, nil, nil, false)
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := Generate(&buf, Input{Plan: plan})
	require.NoError(t, err)
	require.Equal(t, int64(buf.Len()), n)

	b := buf.Bytes()
	require.GreaterOrEqual(t, len(b), krb.HeaderSize)
	require.Equal(t, krb.Magic[:], b[0:4])
	require.Equal(t, byte(krb.VersionMajor), b[4])
	require.Equal(t, byte(krb.VersionMinor), b[5])

	headerOffset, headerSize := sectionDescriptor(b, krb.SecHeader)
	require.Zero(t, headerOffset)
	require.Equal(t, uint32(krb.HeaderSize), headerSize)
}

func TestGenerateElementTreeMatchesPlanSize(t *testing.T) {
	root := &ast.Element{
		Type: "App",
		Children: []*ast.Element{
			{Type: "Text"},
			{Type: "Text"},
		},
	}
	plan, err := size.Calculate(root, nil, nil, false)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = Generate(&buf, Input{Plan: plan})
	require.NoError(t, err)

	b := buf.Bytes()
	elemOff, elemSize := sectionDescriptor(b, krb.SecElementTree)
	require.Equal(t, plan.ElementSectionSize, elemSize)
	require.True(t, int(elemOff)+int(elemSize) <= len(b))
}

func TestGenerateEmbedsInlineScriptBody(t *testing.T) {
	root := &ast.Element{Type: "App"}
	scripts := []ast.ScriptRecord{
		{Lang: "lua", Name: "main", Body: "print(1)", EntryPoints: []string{"onReady"}},
	}
	plan, err := size.Calculate(root, nil, scripts, true)
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := Generate(&buf, Input{Plan: plan, Scripts: scripts, EmbedScripts: true})
	require.NoError(t, err)
	require.NotZero(t, n)

	b := buf.Bytes()
	flags := binary.LittleEndian.Uint16(b[6:8])
	require.NotZero(t, flags&krb.FlagHasScripts)
}

func TestGenerateExternalScriptProducesResourceEntry(t *testing.T) {
	root := &ast.Element{Type: "App"}
	scripts := []ast.ScriptRecord{
		{Lang: "lua", Name: "main", FromPath: "scripts/main.lua", Body: "print(1)"},
	}
	plan, err := size.Calculate(root, nil, scripts, false)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = Generate(&buf, Input{Plan: plan, Scripts: scripts, EmbedScripts: false})
	require.NoError(t, err)

	b := buf.Bytes()
	flags := binary.LittleEndian.Uint16(b[6:8])
	require.NotZero(t, flags&krb.FlagHasResources)

	strOff, _ := sectionDescriptor(b, krb.SecStringTable)
	stringCount := binary.LittleEndian.Uint16(b[strOff : strOff+2])

	resOff, _ := sectionDescriptor(b, krb.SecResourceTable)
	resourceCount := binary.LittleEndian.Uint16(b[resOff : resOff+2])
	require.EqualValues(t, 1, resourceCount)

	// entry layout: type byte, name index (u16), format byte, format index (u16), md5[16]
	entry := resOff + 2
	nameIndex := binary.LittleEndian.Uint16(b[entry+1 : entry+3])
	require.Less(t, nameIndex, stringCount, "resource entry references a string index the emitted string table does not contain")
}

func TestGenerateRejectsUnknownScriptLanguage(t *testing.T) {
	root := &ast.Element{Type: "App"}
	scripts := []ast.ScriptRecord{{Lang: "cobol", Name: "main", Body: "x"}}
	plan, err := size.Calculate(root, nil, scripts, true)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = Generate(&buf, Input{Plan: plan, Scripts: scripts, EmbedScripts: true})
	require.Error(t, err)
}
