package kryc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestCompileMinimalApp(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "app.kry", `
App {
	width: 800
	height: 600
	Text greeting {
		text: "hello"
	}
}
`)
	out := filepath.Join(dir, "app.krb")
	stats, err := Compile(src, out, Options{})
	require.NoError(t, err)
	require.Equal(t, 2, stats.ElementCount)
	require.Positive(t, stats.OutputSize)

	info, err := Analyze(out)
	require.NoError(t, err)
	require.Equal(t, 2, info.ElementCount)
	require.Equal(t, 1, info.VersionMajor)
}

func TestCompileWithVariablesAndStyles(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "app.kry", `
@variables {
	base_size: 10
	title: "Hi"
}
style "card" {
	background_color: #112233
	&:hover {
		background_color: #445566
	}
}
App {
	width: ($base_size * 2)
	Text label {
		style: "card"
		text: $title
	}
}
`)
	out := filepath.Join(dir, "app.krb")
	stats, err := Compile(src, out, Options{})
	require.NoError(t, err)
	require.Equal(t, 1, stats.StyleCount)
	require.Equal(t, 2, stats.ElementCount)
}

func TestCompileWithInclude(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "shared.kry", `
@variables {
	brand_color: #FF0000
}
style "brand" {
	background_color: $brand_color
}
`)
	src := writeFile(t, dir, "app.kry", `
@include "shared.kry"
App {
	Container box {
		style: "brand"
	}
}
`)
	out := filepath.Join(dir, "app.krb")
	stats, err := Compile(src, out, Options{})
	require.NoError(t, err)
	require.Equal(t, 1, stats.IncludeCount)
	require.Equal(t, 1, stats.StyleCount)
}

func TestCompileUndefinedVariableFails(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "app.kry", `
App {
	Text t {
		text: $missing
	}
}
`)
	_, err := Compile(src, filepath.Join(dir, "app.krb"), Options{})
	require.Error(t, err)
}

func TestCheckDoesNotWriteOutput(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "app.kry", `
App {
	Text t {
		text: "hi"
	}
}
`)
	require.NoError(t, Check(src, Options{}))
	_, err := os.Stat(filepath.Join(dir, "app.krb"))
	require.True(t, os.IsNotExist(err))
}

func TestCompileWithComponentExpansion(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "app.kry", `
Define Card {
	Properties {
		title: String = "Untitled"
	}
	Container {
		Text {
			text: $title
		}
	}
}
App {
	Card {
		title: "Hello"
	}
}
`)
	stats, err := Compile(src, filepath.Join(dir, "app.krb"), Options{})
	require.NoError(t, err)
	require.Equal(t, 1, stats.ComponentCount)
	require.Equal(t, 3, stats.ElementCount)
}

func TestCompileWithExternalScript(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.lua", "function onReady() end")
	src := writeFile(t, dir, "app.kry", `
@script lua from "main.lua"
App {
}
`)
	stats, err := Compile(src, filepath.Join(dir, "app.krb"), Options{EmbedScripts: true})
	require.NoError(t, err)
	require.Equal(t, 1, stats.ScriptCount)
	require.Equal(t, 1, stats.ResourceCount)
}

func TestCompileWithEventHandlerRoundTripsElementCount(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "app.kry", `
@script lua {
	function handleSave() end
}
App {
	Button save {
		text: "Save"
		onClick: handleSave
	}
	Text status {
		text: "ready"
	}
}
`)
	out := filepath.Join(dir, "app.krb")
	stats, err := Compile(src, out, Options{})
	require.NoError(t, err)
	require.Equal(t, 3, stats.ElementCount)

	info, err := Analyze(out)
	require.NoError(t, err)
	require.Equal(t, 3, info.ElementCount)
}

func TestCheckReportsEveryUnreadableIncludeDirectory(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "app.kry", `
App {
	Text t {
		text: "hi"
	}
}
`)
	opts := Options{IncludeDirectories: []string{
		filepath.Join(dir, "missing-one"),
		filepath.Join(dir, "missing-two"),
	}}
	err := Check(src, opts)
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing-one")
	require.Contains(t, err.Error(), "missing-two")
}

func TestCompileOptimizationRemovesUnusedStyles(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "app.kry", `
style "unused" {
	background_color: #000000
}
App {
}
`)
	stats, err := Compile(src, filepath.Join(dir, "app.krb"), Options{OptimizationLevel: 2})
	require.NoError(t, err)
	found := false
	for _, w := range stats.Warnings {
		if w.Stage == "optimize" {
			found = true
		}
	}
	require.True(t, found)
}
