// Package codegen implements the Code Generator (spec §4.10): a pure
// serializer over the fully-determined Plan produced by
// internal/kry/size. No allocation or index assignment happens here
// (spec §9 design note) — only byte emission.
//
// Grounded on the teacher's writer.go two-pass discipline
// (calculateOffsetsAndSizes then writeKrbFile, verifying each
// section's byte count against its predetermined size) but targeting
// the spec's own KRB1 v1.0 layout (pkg/krb), not the teacher's v0.4
// format.
package codegen

import (
	"bytes"
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/kryonlabs/kryc/internal/kry/ast"
	"github.com/kryonlabs/kryc/internal/kry/kryerr"
	"github.com/kryonlabs/kryc/internal/kry/size"
	"github.com/kryonlabs/kryc/pkg/krb"
)

// Input bundles everything the generator needs beyond the Plan: the
// script records (spec §3 Script Record / §6.4) and whether to embed
// their bodies.
type Input struct {
	Plan         *size.Plan
	Scripts      []ast.ScriptRecord
	EmbedScripts bool
}

// Generate writes a complete KRB file to w, returning the total byte
// count written.
func Generate(w io.Writer, in Input) (int64, error) {
	p := in.Plan
	flags := p.Flags
	if len(in.Scripts) > 0 {
		flags |= krb.FlagHasScripts
	}

	stringsBuf, err := encodeStrings(p.Strings.Values())
	if err != nil {
		return 0, err
	}
	styleBuf := encodeStyles(p.Styles)
	elementBuf := encodeElements(p.Root)
	propBlockBuf := encodePropertyBlocks(p.PropBlocks)
	scriptBuf, resourceBuf, err := encodeScriptsAndResources(in.Scripts, in.EmbedScripts, p.Strings)
	if err != nil {
		return 0, err
	}
	if len(resourceBuf) > 2 {
		flags |= krb.FlagHasResources
	}

	sections := [krb.SectionCount][]byte{
		krb.SecHeader:            nil, // filled by header itself
		krb.SecStringTable:       stringsBuf,
		krb.SecStyleTable:        styleBuf,
		krb.SecComponentTable:    {0, 0}, // component table unused post-expansion; count=0
		krb.SecElementTree:       elementBuf,
		krb.SecPropertyBlockTable: propBlockBuf,
		krb.SecScriptTable:       scriptBuf,
		krb.SecResourceTable:     resourceBuf,
	}

	offsets := [krb.SectionCount]uint32{}
	offsets[krb.SecHeader] = 0
	cursor := uint32(krb.HeaderSize)
	for i := krb.SectionIndex(1); i < krb.SectionCount; i++ {
		offsets[i] = cursor
		cursor += uint32(len(sections[i]))
	}
	totalSize := cursor

	var out bytes.Buffer
	out.Write(krb.Magic[:])
	out.WriteByte(krb.VersionMajor)
	out.WriteByte(krb.VersionMinor)
	writeU16(&out, flags)
	for i := krb.SectionIndex(0); i < krb.SectionCount; i++ {
		var sz uint32
		if i == krb.SecHeader {
			sz = krb.HeaderSize
		} else {
			sz = uint32(len(sections[i]))
		}
		writeU32(&out, offsets[i])
		writeU32(&out, sz)
	}
	if out.Len() != krb.HeaderSize {
		return 0, &kryerr.Error{Kind: kryerr.Codegen, Stage: "codegen",
			Message: fmt.Sprintf("internal error: header size mismatch, wrote %d want %d", out.Len(), krb.HeaderSize)}
	}

	for i := krb.SectionIndex(1); i < krb.SectionCount; i++ {
		out.Write(sections[i])
	}
	if uint32(out.Len()) != totalSize {
		return 0, &kryerr.Error{Kind: kryerr.Codegen, Stage: "codegen",
			Message: fmt.Sprintf("internal error: total size mismatch, wrote %d want %d", out.Len(), totalSize)}
	}

	n, err := w.Write(out.Bytes())
	return int64(n), err
}

// GenerateToFile is the convenience entry point used by pkg/kryc.
func GenerateToFile(path string, in Input) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, &kryerr.Error{Kind: kryerr.IO, Message: err.Error(), Cause: err}
	}
	defer f.Close()
	n, err := Generate(f, in)
	if err != nil {
		return n, err
	}
	return n, f.Sync()
}

func writeU16(w *bytes.Buffer, v uint16) { var b [2]byte; binary.LittleEndian.PutUint16(b[:], v); w.Write(b[:]) }
func writeU32(w *bytes.Buffer, v uint32) { var b [4]byte; binary.LittleEndian.PutUint32(b[:], v); w.Write(b[:]) }

// encodeStrings writes count (u16) then, per entry, a length byte plus
// UTF-8 bytes; a string of 255 bytes or more gets the 0xFF sentinel
// followed by a u16 length instead (spec §4.10 step 2).
func encodeStrings(values []string) ([]byte, error) {
	var buf bytes.Buffer
	writeU16(&buf, uint16(len(values)))
	for _, s := range values {
		if len(s) > 0xFFFF {
			return nil, &kryerr.Error{Kind: kryerr.Codegen, Stage: "codegen", Message: "string exceeds 65535 bytes"}
		}
		if len(s) >= 0xFF {
			buf.WriteByte(0xFF) // sentinel: u16 length follows
			writeU16(&buf, uint16(len(s)))
		} else {
			buf.WriteByte(byte(len(s)))
		}
		buf.WriteString(s)
	}
	return buf.Bytes(), nil
}

// encodeStyles writes count then, per style: name index, base
// property-block index, and one property-block index per recognized
// pseudo-state in fixed order (0 = absent) (spec §4.10 step 3).
func encodeStyles(styles []size.StylePlan) []byte {
	var buf bytes.Buffer
	writeU16(&buf, uint16(len(styles)))
	for _, s := range styles {
		writeU16(&buf, s.NameIndex)
		writeU16(&buf, s.BasePropBlock)
		for _, state := range []string{"hover", "active", "focus", "disabled", "checked"} {
			writeU16(&buf, s.PseudoBlocks[state])
		}
	}
	return buf.Bytes()
}

// encodeElements writes the element tree depth-first pre-order (spec
// §4.10 step 5), matching the header layout size.ElementHeaderSize
// documents.
func encodeElements(root *size.ElementPlan) []byte {
	var buf bytes.Buffer
	var walk func(ep *size.ElementPlan)
	walk = func(ep *size.ElementPlan) {
		buf.WriteByte(byte(ep.Type))
		writeU16(&buf, ep.IDIndex)
		writeU16(&buf, ep.StyleIndex)
		buf.WriteByte(ep.El.LayoutFlags)
		writeU16(&buf, ep.PropBlockIndex)
		writeU16(&buf, ep.PosX)
		writeU16(&buf, ep.PosY)
		writeU16(&buf, ep.Width)
		writeU16(&buf, ep.Height)
		buf.WriteByte(byte(len(ep.Events)))
		buf.WriteByte(byte(len(ep.Children)))
		for _, ev := range ep.Events {
			buf.WriteByte(byte(ev.Type))
			writeU16(&buf, ev.CallbackIndex)
		}
		for _, c := range ep.Children {
			walk(c)
		}
	}
	walk(root)
	return buf.Bytes()
}

// encodePropertyBlocks writes count then, per block: entry count, then
// each entry (property-id byte, value-type byte, length byte, value
// bytes) (spec §4.10 step 6).
func encodePropertyBlocks(blocks [][]size.PropEntry) []byte {
	var buf bytes.Buffer
	writeU16(&buf, uint16(len(blocks)))
	for _, block := range blocks {
		buf.WriteByte(byte(len(block)))
		for _, e := range block {
			buf.WriteByte(byte(e.ID))
			buf.WriteByte(byte(e.Type))
			buf.WriteByte(byte(len(e.Bytes)))
			buf.Write(e.Bytes)
		}
	}
	return buf.Bytes()
}

// encodeScriptsAndResources writes the script table (spec §4.10 step
// 7) and resource table (step 8 / §6.4: external script files are
// recorded with an MD5 checksum).
func encodeScriptsAndResources(scripts []ast.ScriptRecord, embed bool, strs *size.StringTable) ([]byte, []byte, error) {
	var scriptBuf, resourceBuf bytes.Buffer
	writeU16(&scriptBuf, uint16(len(scripts)))

	var resources []ast.ScriptRecord
	for _, s := range scripts {
		lang, ok := krb.ParseScriptLang(s.Lang)
		if !ok {
			return nil, nil, &kryerr.Error{Kind: kryerr.Semantic, Line: s.Line, Message: "unknown script language " + s.Lang}
		}
		scriptBuf.WriteByte(byte(lang))
		writeU16(&scriptBuf, uint16(len(s.EntryPoints)))
		for _, ep := range s.EntryPoints {
			writeU16(&scriptBuf, strs.Intern(ep))
		}
		if embed || s.FromPath == "" {
			body := []byte(s.Body)
			writeU32(&scriptBuf, uint32(len(body)))
			scriptBuf.Write(body)
		} else {
			writeU32(&scriptBuf, 0)
			writeU16(&scriptBuf, uint16(len(resources)+1)) // 1-based resource index
			resources = append(resources, s)
		}
	}

	writeU16(&resourceBuf, uint16(len(resources)))
	for _, s := range resources {
		resourceBuf.WriteByte(byte(krb.ResScript))
		writeU16(&resourceBuf, strs.Intern(s.FromPath))
		resourceBuf.WriteByte(byte(krb.ResFormatExternal))
		writeU16(&resourceBuf, strs.Intern(s.FromPath))
		sum := md5.Sum([]byte(s.Body))
		resourceBuf.Write(sum[:])
	}
	return scriptBuf.Bytes(), resourceBuf.Bytes(), nil
}
