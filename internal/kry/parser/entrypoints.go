package parser

import (
	"regexp"
	"sort"
)

// entryPointPatterns maps a script language tag to the regular
// expressions that recognize a top-level, callable-by-name function
// declaration in that language's surface syntax. The compiler never
// executes or type-checks script bodies (non-goal); this is plain text
// scanning, not parsing, so it only needs to be right about the
// common declaration forms an event handler is written with. The
// keyword-led forms match after any whitespace, not only at a line
// start, because the Parser rebuilds an inline body as one line of
// space-joined tokens; the bare Wren form stays anchored to a line start.
var entryPointPatterns = map[string][]*regexp.Regexp{
	"lua": {
		regexp.MustCompile(`(?m)(?:^|\s)function\s+([a-zA-Z_][a-zA-Z0-9_]*)\s*\(`),
	},
	"javascript": {
		regexp.MustCompile(`(?m)(?:^|\s)(?:export\s+)?function\s+([a-zA-Z_$][a-zA-Z0-9_$]*)\s*\(`),
		regexp.MustCompile(`(?m)(?:^|\s)(?:export\s+)?const\s+([a-zA-Z_$][a-zA-Z0-9_$]*)\s*=\s*(?:async\s*)?\([^)]*\)\s*=>`),
	},
	"python": {
		regexp.MustCompile(`(?m)(?:^|\s)def\s+([a-zA-Z_][a-zA-Z0-9_]*)\s*\(`),
	},
	"wren": {
		regexp.MustCompile(`(?m)^\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*\([^)]*\)\s*\{`),
	},
}

// ExtractEntryPoints scans a script body for top-level function
// declarations in the language's own idiom, returning the names sorted
// alphabetically with duplicates removed. These are the
// "exported symbols callable as event handlers" a Script Record
// declares (spec §3), which the Semantic Analyzer cross-checks against
// every onClick/onChange/onSubmit reference.
func ExtractEntryPoints(lang, body string) []string {
	patterns := entryPointPatterns[lang]
	if len(patterns) == 0 {
		return nil
	}
	seen := make(map[string]bool)
	var names []string
	for _, re := range patterns {
		for _, m := range re.FindAllStringSubmatch(body, -1) {
			name := m[1]
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}
