// Package kryc is the driver-facing interface (spec §6.3): Compile,
// Analyze, and Check wire every pipeline stage together behind three
// calls and one options record, the way a CLI or IDE plugin consumes
// this compiler without knowing about its internal packages.
//
// Grounded on the teacher's main.go, which plays the same role (a
// thin CompilerState orchestrator calling preprocess → parse →
// resolve → write in sequence), generalized to the full ten-stage
// pipeline and split from the CLI itself (cmd/kryc) so the same
// orchestration can be embedded by other Go programs.
package kryc

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
	"go.uber.org/multierr"

	"github.com/kryonlabs/kryc/internal/kry/ast"
	"github.com/kryonlabs/kryc/internal/kry/codegen"
	"github.com/kryonlabs/kryc/internal/kry/component"
	"github.com/kryonlabs/kryc/internal/kry/kryerr"
	"github.com/kryonlabs/kryc/internal/kry/module"
	"github.com/kryonlabs/kryc/internal/kry/optimize"
	"github.com/kryonlabs/kryc/internal/kry/parser"
	"github.com/kryonlabs/kryc/internal/kry/semantic"
	"github.com/kryonlabs/kryc/internal/kry/size"
	"github.com/kryonlabs/kryc/internal/kry/style"
	"github.com/kryonlabs/kryc/internal/kry/token"
	"github.com/kryonlabs/kryc/internal/kry/vars"
	"github.com/kryonlabs/kryc/pkg/krb"
)

// TargetPlatform is the closed set spec §6.3 names for Options.target_platform.
type TargetPlatform string

const (
	PlatformDesktop  TargetPlatform = "desktop"
	PlatformMobile   TargetPlatform = "mobile"
	PlatformWeb      TargetPlatform = "web"
	PlatformEmbedded TargetPlatform = "embedded"
	PlatformUniversal TargetPlatform = "universal"
)

// Options configures a single compile/check run (spec §6.3).
type Options struct {
	OptimizationLevel  int // 0 = none, 1 = basic, 2 = aggressive
	TargetPlatform     TargetPlatform
	EmbedScripts       bool
	CompressOutput     bool
	IncludeDirectories []string
	CustomVariables    map[string]string
	DebugMode          bool
	MaxFileSize        int64 // bytes, 0 = unlimited
	GenerateDebugInfo  bool
}

// Stats reports what a successful Compile produced (spec §6.3).
type Stats struct {
	CorrelationID    string
	ElementCount     int
	StyleCount       int
	ComponentCount   int
	VariableCount    int
	ScriptCount      int
	ResourceCount    int
	IncludeCount     int
	InputSize        int64
	OutputSize       int64
	CompileTimeMs    int64
	CompressionRatio float64
	Warnings         []kryerr.Warning
}

// KrbInfo is what Analyze reports about an already-compiled .krb file
// (spec §6.3).
type KrbInfo struct {
	VersionMajor int
	VersionMinor int
	Flags        uint16
	ElementCount int
	FileSize     int64
	Sections     [krb.SectionCount]krb.Section
}

// Analyze inspects an already-compiled KRB file without decoding its
// full element tree beyond a pre-order count (spec §6.3).
func Analyze(krbPath string) (KrbInfo, error) {
	info, err := krb.ReadInfo(krbPath)
	if err != nil {
		return KrbInfo{}, kryerr.Wrap(kryerr.IO, "analyze", err)
	}
	return KrbInfo{
		VersionMajor: int(info.VersionMajor),
		VersionMinor: int(info.VersionMinor),
		Flags:        info.Flags,
		ElementCount: info.ElementCount,
		FileSize:     info.FileSize,
		Sections:     info.Sections,
	}, nil
}

// Check runs the same pipeline as Compile through the Size Calculator —
// lex, preprocess, parse, resolve, expand, analyze, optimize, size —
// without emitting a KRB file (spec §6.3 "no emission").
func Check(inputPath string, opts Options) error {
	_, _, _, err := compilePipeline(inputPath, opts)
	return err
}

// Compile runs the full pipeline and writes outputPath (spec §6.3).
func Compile(inputPath, outputPath string, opts Options) (Stats, error) {
	start := time.Now()
	plan, scripts, diag, err := compilePipeline(inputPath, opts)
	if err != nil {
		return Stats{}, err
	}

	n, err := codegen.GenerateToFile(outputPath, codegen.Input{Plan: plan, Scripts: scripts, EmbedScripts: opts.EmbedScripts})
	if err != nil {
		return Stats{}, err
	}

	inStat, statErr := os.Stat(inputPath)
	var inputSize int64
	if statErr == nil {
		inputSize = inStat.Size()
	}

	ratio := 1.0
	if inputSize > 0 {
		ratio = float64(n) / float64(inputSize)
	}

	return Stats{
		CorrelationID:    diag.correlationID,
		ElementCount:     countElements(plan.Root),
		StyleCount:       len(plan.Styles),
		ComponentCount:   diag.componentCount,
		VariableCount:    diag.variableCount,
		ScriptCount:      len(scripts),
		ResourceCount:    diag.resourceCount,
		IncludeCount:     diag.includeCount,
		InputSize:        inputSize,
		OutputSize:       n,
		CompileTimeMs:    time.Since(start).Milliseconds(),
		CompressionRatio: ratio,
		Warnings:         diag.warnings,
	}, nil
}

type diagnostics struct {
	correlationID  string
	componentCount int
	variableCount  int
	resourceCount  int
	includeCount   int
	warnings       []kryerr.Warning
}

// compilePipeline runs every stage through the Size Calculator,
// returning the fully-determined Plan and loaded script records ready
// for codegen. Check calls this and discards the result; Compile hands
// the Plan to codegen.
func compilePipeline(inputPath string, opts Options) (*size.Plan, []ast.ScriptRecord, diagnostics, error) {
	diag := diagnostics{correlationID: uuid.NewString()}

	if err := validateIncludeDirs(opts.IncludeDirectories); err != nil {
		return nil, nil, diag, err
	}

	graph, err := module.Build(inputPath, opts.IncludeDirectories)
	if err != nil {
		return nil, nil, diag, err
	}
	diag.includeCount = len(graph.Order) - 1

	files := make(map[string]*ast.File, len(graph.Order))
	for _, path := range graph.Order {
		toks, err := token.New(path, []byte(graph.Text[path])).Tokens()
		if err != nil {
			return nil, nil, diag, err
		}
		f, err := parser.Parse(path, toks)
		if err != nil {
			return nil, nil, diag, err
		}
		stampModulePath(f, path)
		files[path] = f
	}

	resolver := vars.New(graph, files, opts.CustomVariables)
	resolvedVars, err := resolver.ResolveAll()
	if err != nil {
		return nil, nil, diag, err
	}
	for _, m := range resolvedVars {
		diag.variableCount += len(m.Values)
	}

	for _, path := range graph.Order {
		scope := resolver.FullScope(path, resolvedVars)
		if err := vars.Apply(files[path], scope); err != nil {
			return nil, nil, diag, err
		}
	}

	mergedStyles := mergeStyles(graph.Order, files)
	mergedComponents := mergeComponents(graph.Order, files)
	diag.componentCount = len(mergedComponents)

	resolvedStyles, styleWarnings, err := style.Resolve(mergedStyles)
	if err != nil {
		return nil, nil, diag, err
	}
	diag.warnings = append(diag.warnings, styleWarnings...)

	root := files[inputPathCanonical(graph, inputPath)].Root
	if root == nil {
		return nil, nil, diag, kryerr.Stage(kryerr.Parse, "check", "entry module has no root element")
	}

	componentDefs := make(map[string]*ast.ComponentDef, len(mergedComponents))
	for i := range mergedComponents {
		componentDefs[mergedComponents[i].Name] = &mergedComponents[i]
	}
	if err := component.Expand(root, componentDefs); err != nil {
		return nil, nil, diag, err
	}

	scripts, resourceCount, scriptWarnings, err := loadScripts(graph.Order, files, opts)
	if err != nil {
		return nil, nil, diag, err
	}
	diag.resourceCount = resourceCount
	diag.warnings = append(diag.warnings, scriptWarnings...)

	entryPoints := make(map[string]bool)
	for _, s := range scripts {
		for _, ep := range s.EntryPoints {
			entryPoints[ep] = true
		}
	}

	result, err := semantic.Analyze(root, resolvedStyles, entryPoints)
	if err != nil {
		return nil, nil, diag, err
	}
	diag.warnings = append(diag.warnings, result.Warnings...)

	if opts.OptimizationLevel > 0 {
		optStats := optimize.Run(root, resolvedStyles, opts.OptimizationLevel)
		if len(optStats.StylesRemoved) > 0 {
			diag.warnings = append(diag.warnings, kryerr.Warning{Stage: "optimize",
				Message: fmt.Sprintf("removed %d unused style(s): %v", len(optStats.StylesRemoved), optStats.StylesRemoved)})
		}
	}

	plan, err := size.Calculate(root, resolvedStyles, scripts, opts.EmbedScripts)
	if err != nil {
		return nil, nil, diag, err
	}
	diag.warnings = append(diag.warnings, plan.Warnings...)

	if opts.MaxFileSize > 0 && int64(plan.ElementSectionSize) > opts.MaxFileSize {
		return nil, nil, diag, kryerr.Stage(kryerr.Codegen, "size",
			fmt.Sprintf("element section size %d exceeds max_file_size %d", plan.ElementSectionSize, opts.MaxFileSize))
	}

	return plan, scripts, diag, nil
}

// validateIncludeDirs checks every configured include directory up
// front, combining every failure into one error via multierr instead
// of reporting only the first unreadable path — each directory is
// independent, so there is no reason to make the caller fix them one
// at a time across repeated Check runs.
func validateIncludeDirs(dirs []string) error {
	var errs error
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		switch {
		case err != nil:
			errs = multierr.Append(errs, &kryerr.Error{Kind: kryerr.IO, File: dir,
				Message: fmt.Sprintf("include directory %q: %v", dir, err), Cause: err})
		case !info.IsDir():
			errs = multierr.Append(errs, &kryerr.Error{Kind: kryerr.IO, File: dir,
				Message: fmt.Sprintf("include directory %q is not a directory", dir)})
		}
	}
	return errs
}

func inputPathCanonical(g *module.Graph, inputPath string) string {
	abs, err := filepath.Abs(inputPath)
	if err != nil {
		return inputPath
	}
	return filepath.Clean(abs)
}

func stampModulePath(f *ast.File, path string) {
	for i := range f.Styles {
		f.Styles[i].ModulePath = path
	}
	for i := range f.Components {
		f.Components[i].ModulePath = path
	}
	for i := range f.Scripts {
		f.Scripts[i].ModulePath = path
	}
	stampElement(f.Root, path)
}

func stampElement(el *ast.Element, path string) {
	if el == nil {
		return
	}
	el.ModulePath = path
	for _, c := range el.Children {
		stampElement(c, path)
	}
}

// mergeStyles combines every module's styles into one namespace, later
// modules in post-order (dependencies before dependents) overwriting
// earlier ones on name collision — local definitions shadow imports,
// and among imports the higher-ranked (later) one wins (spec §4.2,
// §4.4, testable property §8.I), since graph.Order already places
// each module strictly after everything it depends on.
func mergeStyles(order []string, files map[string]*ast.File) []ast.Style {
	byName := make(map[string]ast.Style)
	var names []string
	for _, path := range order {
		for _, s := range files[path].Styles {
			if _, exists := byName[s.Name]; !exists {
				names = append(names, s.Name)
			}
			byName[s.Name] = s
		}
	}
	sort.Strings(names)
	out := make([]ast.Style, len(names))
	for i, n := range names {
		out[i] = byName[n]
	}
	return out
}

func mergeComponents(order []string, files map[string]*ast.File) []ast.ComponentDef {
	byName := make(map[string]ast.ComponentDef)
	var names []string
	for _, path := range order {
		for _, c := range files[path].Components {
			if _, exists := byName[c.Name]; !exists {
				names = append(names, c.Name)
			}
			byName[c.Name] = c
		}
	}
	sort.Strings(names)
	out := make([]ast.ComponentDef, len(names))
	for i, n := range names {
		out[i] = byName[n]
	}
	return out
}

// loadScripts reads every external script's body (spec §6.4 "the
// compiler reads the file... records it as a resource with an MD5
// checksum"), resolving `from "<path>"` relative to the declaring
// module's own directory. filetype sniffs the loaded bytes purely as a
// sanity warning — a script resource that looks like a binary blob
// (image/audio magic bytes) is almost certainly a misconfigured path.
func loadScripts(order []string, files map[string]*ast.File, opts Options) ([]ast.ScriptRecord, int, []kryerr.Warning, error) {
	var out []ast.ScriptRecord
	var warnings []kryerr.Warning
	resourceCount := 0
	for _, path := range order {
		for _, s := range files[path].Scripts {
			if s.FromPath != "" {
				full := s.FromPath
				if !filepath.IsAbs(full) {
					full = filepath.Join(filepath.Dir(path), s.FromPath)
				}
				body, err := os.ReadFile(full)
				if err != nil {
					return nil, 0, nil, &kryerr.Error{Kind: kryerr.IO, File: path, Line: s.Line,
						Message: fmt.Sprintf("cannot read external script %q: %v", s.FromPath, err), Cause: err}
				}
				s.Body = string(body)
				s.EntryPoints = parser.ExtractEntryPoints(s.Lang, s.Body)
				if kind, err := filetype.Match(body); err == nil && kind != filetype.Unknown {
					warnings = append(warnings, kryerr.Warning{Stage: "script-load", File: path, Line: s.Line,
						Message: fmt.Sprintf("external script %q looks like %s content, not source text", s.FromPath, kind.MIME.Value)})
				}
				resourceCount++
			}
			out = append(out, s)
		}
	}
	return out, resourceCount, warnings, nil
}

func countElements(ep *size.ElementPlan) int {
	if ep == nil {
		return 0
	}
	n := 1
	for _, c := range ep.Children {
		n += countElements(c)
	}
	return n
}
