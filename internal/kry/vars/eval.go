package vars

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/cel-go/cel"
)

// operatorHint matches the punctuation the spec's tiny grammar
// supports (spec §9): arithmetic, comparison, boolean, ternary. A
// substituted value containing none of this is left as plain text —
// the evaluator only runs "when the surrounding grammar requires a
// number or boolean, or when an expression wrapper (...) is present"
// (spec §4.4).
var operatorHint = regexp.MustCompile(`\+|-|\*|/|%|==|!=|<=|>=|<|>|&&|\|\||\?|:|\(`)

// evaluateIfExpression evaluates substituted, already-$name-free text
// with CEL when it looks like an expression; otherwise it is returned
// untouched as a plain string value. CEL's subset used here —
// arithmetic, comparisons, &&/||, and the a ? b : c conditional — maps
// directly onto the grammar spec §9 calls for, so no hand-rolled
// shunting-yard parser is needed (see SPEC_FULL.md §9).
func evaluateIfExpression(substituted string) (string, error) {
	trimmed := strings.TrimSpace(substituted)
	if trimmed == "" {
		return trimmed, nil
	}
	if isPlainLiteral(trimmed) {
		if strings.HasPrefix(trimmed, "\"") && strings.HasSuffix(trimmed, "\"") && len(trimmed) >= 2 {
			return trimmed[1 : len(trimmed)-1], nil
		}
		return trimmed, nil
	}
	if !operatorHint.MatchString(trimmed) {
		return trimmed, nil
	}

	env, err := cel.NewEnv()
	if err != nil {
		return "", fmt.Errorf("cel env: %w", err)
	}
	ast, iss := env.Compile(trimmed)
	if iss != nil && iss.Err() != nil {
		// Not a valid expression after all (e.g. a bare hex color or a
		// path-like string containing '/'): fall back to plain text,
		// matching spec §4.4's "only invoked when the grammar requires".
		return trimmed, nil
	}
	prg, err := env.Program(ast)
	if err != nil {
		return "", fmt.Errorf("cel program: %w", err)
	}
	out, _, err := prg.Eval(cel.NoVars())
	if err != nil {
		return "", fmt.Errorf("cel eval: %w", err)
	}
	return formatCelValue(out.Value()), nil
}

// isPlainLiteral reports whether text is already a self-contained
// literal (a quoted string, a bare number, or a bare hex color) with
// no operators at all — the common case, kept fast and avoiding CEL
// entirely.
func isPlainLiteral(text string) bool {
	if strings.HasPrefix(text, "\"") && strings.HasSuffix(text, "\"") && len(text) >= 2 {
		return true
	}
	if strings.HasPrefix(text, "#") {
		return true
	}
	if _, err := strconv.ParseFloat(text, 64); err == nil {
		return true
	}
	return false
}

func formatCelValue(v any) string {
	switch val := v.(type) {
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}
