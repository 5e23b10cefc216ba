package compiler

import (
	"strings"

	"github.com/gogpu/gfxrt/engine"
)

const pragmaPrefix = "#pragma"

// StripPragmas removes pragma lines from src and returns them in order.
// Removed lines are left blank so line numbers in compile errors still
// match the script text.
func StripPragmas(src string) (string, []engine.Pragma) {
	var pragmas []engine.Pragma
	lines := strings.Split(src, "\n")
	for i, line := range lines {
		rest, ok := strings.CutPrefix(strings.TrimSpace(line), pragmaPrefix)
		if !ok {
			continue
		}
		lines[i] = ""
		if p, ok := parsePragma(rest); ok {
			pragmas = append(pragmas, p)
		} else {
			slogger().Warn("malformed pragma", "line", i+1, "text", line)
		}
	}
	return strings.Join(lines, "\n"), pragmas
}

// parsePragma reads "key(value)" or a bare "key".
func parsePragma(s string) (engine.Pragma, bool) {
	s = strings.TrimSpace(s)
	key, rest, hasValue := strings.Cut(s, "(")
	key = strings.TrimSpace(key)
	if key == "" || strings.ContainsAny(key, " \t)") {
		return engine.Pragma{}, false
	}
	if !hasValue {
		return engine.Pragma{Key: key}, true
	}
	value, ok := strings.CutSuffix(strings.TrimSpace(rest), ")")
	if !ok {
		return engine.Pragma{}, false
	}
	return engine.Pragma{Key: key, Value: strings.TrimSpace(value)}, true
}
