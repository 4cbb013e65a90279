// Package module implements the Preprocessor (spec §4.2): it expands
// @include directives into a Module Graph, detecting cycles with
// three-color DFS and producing a deterministic compilation order that
// doubles as each module's import rank.
//
// Unlike the teacher's preprocessor.go, which flattens every included
// file's text into one buffer (no cycle detection, no namespacing),
// this package keeps each module's text separate — the Parser runs
// once per module, and namespace isolation (spec §4.2, §8.H/§8.I) is
// enforced by the Graph rather than by textual concatenation.
package module

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/kryonlabs/kryc/internal/kry/kryerr"
)

type color int

const (
	white color = iota
	gray
	black
)

var includeRe = regexp.MustCompile(`^\s*@include\s+"([^"]+)"\s*$`)

// Graph is the result of preprocessing: one entry per reachable
// module, in leaves-first compilation order.
type Graph struct {
	Order []string            // canonical paths, post-order DFS (leaves first)
	Deps  map[string][]string // per-module dependency list, in @include appearance order
	Rank  map[string]int      // module path -> position in Order (import rank, spec §3)
	Text  map[string]string   // per-module text with @include lines replaced by sentinel comments
}

// Build walks the include graph rooted at rootPath. includeDirs are
// searched, in order, when a path does not resolve relative to the
// including file (spec §4.2 step 2).
func Build(rootPath string, includeDirs []string) (*Graph, error) {
	root, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, kryerr.Wrap(kryerr.IO, "preprocessor", err)
	}
	root = filepath.Clean(root)

	g := &Graph{
		Deps: make(map[string][]string),
		Rank: make(map[string]int),
		Text: make(map[string]string),
	}
	colors := make(map[string]color)

	var visit func(path string, stack []string) error
	visit = func(path string, stack []string) error {
		switch colors[path] {
		case black:
			return nil
		case gray:
			cyclePath := append(append([]string{}, stack...), path)
			return &kryerr.Error{Kind: kryerr.Preprocessor, Stage: "preprocessor",
				Reason: "cycle", Message: fmt.Sprintf("include cycle detected: %s", strings.Join(cyclePath, " -> "))}
		}
		colors[path] = gray
		stack = append(stack, path)

		raw, err := os.ReadFile(path)
		if err != nil {
			return &kryerr.Error{Kind: kryerr.Preprocessor, File: path, Message: "cannot read include: " + err.Error(), Cause: err}
		}

		text, deps, err := scanIncludes(path, raw, includeDirs)
		if err != nil {
			return err
		}
		g.Deps[path] = deps
		g.Text[path] = text

		for _, dep := range deps {
			if err := visit(dep, stack); err != nil {
				return err
			}
		}

		colors[path] = black
		g.Order = append(g.Order, path)
		g.Rank[path] = len(g.Order) - 1
		return nil
	}

	if err := visit(root, nil); err != nil {
		return nil, err
	}
	return g, nil
}

// scanIncludes reads filePath line by line (mirroring the teacher's
// bufio.Scanner approach in preprocessor.go), resolving each
// `@include "path"` directive to a canonical path and replacing the
// directive line with a sentinel comment, per spec §4.2 step 2.
func scanIncludes(filePath string, raw []byte, includeDirs []string) (string, []string, error) {
	var out strings.Builder
	var deps []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		m := includeRe.FindStringSubmatch(line)
		if m == nil {
			out.WriteString(line)
			out.WriteByte('\n')
			continue
		}
		resolved, err := resolveIncludePath(filePath, m[1], includeDirs)
		if err != nil {
			return "", nil, &kryerr.Error{Kind: kryerr.Preprocessor, File: filePath, Line: lineNum,
				Message: fmt.Sprintf("cannot resolve include %q: %v", m[1], err)}
		}
		out.WriteString(fmt.Sprintf("# @include processed:%s\n", resolved))
		if !seen[resolved] {
			seen[resolved] = true
			deps = append(deps, resolved)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", nil, &kryerr.Error{Kind: kryerr.IO, File: filePath, Message: err.Error(), Cause: err}
	}
	return out.String(), deps, nil
}

func resolveIncludePath(fromFile, includePath string, includeDirs []string) (string, error) {
	if filepath.IsAbs(includePath) {
		return filepath.Clean(includePath), nil
	}
	candidate := filepath.Clean(filepath.Join(filepath.Dir(fromFile), includePath))
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}
	for _, dir := range includeDirs {
		candidate = filepath.Clean(filepath.Join(dir, includePath))
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", os.ErrNotExist
}
