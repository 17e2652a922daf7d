package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// scriptVarPattern matches `var name = value` assignments in inline script
// text. Quoted values are captured whole; anything else runs to ';' or EOL.
var scriptVarPattern = regexp.MustCompile(`\bvar\s+([A-Za-z_$][\w$]*)\s*=\s*("(?:[^"\\\n]|\\.)*"|'(?:[^'\\\n]|\\.)*'|[^;\n]+)`)

// ScriptVars holds the raw right-hand sides of the variable assignments
// found in a page's inline scripts. The first assignment of a name wins.
type ScriptVars map[string]string

// ParseScriptVars scans script text for variable assignments.
func ParseScriptVars(script string) ScriptVars {
	vars := ScriptVars{}
	for _, m := range scriptVarPattern.FindAllStringSubmatch(script, -1) {
		if _, seen := vars[m[1]]; seen {
			continue
		}
		vars[m[1]] = strings.TrimSpace(m[2])
	}
	return vars
}

// Raw returns the unprocessed value of name.
func (v ScriptVars) Raw(name string) (string, bool) {
	raw, ok := v[name]
	return raw, ok
}

// String returns name as a string, unquoting JS string literals.
func (v ScriptVars) String(name string) (string, bool) {
	raw, ok := v[name]
	if !ok {
		return "", false
	}
	if len(raw) >= 2 {
		switch {
		case raw[0] == '"' && raw[len(raw)-1] == '"':
			if s, err := strconv.Unquote(raw); err == nil {
				return s, true
			}
			return raw[1 : len(raw)-1], true
		case raw[0] == '\'' && raw[len(raw)-1] == '\'':
			inner := strings.ReplaceAll(raw[1:len(raw)-1], `\'`, `'`)
			return inner, true
		}
	}
	return raw, true
}

// Int returns name as an integer.
func (v ScriptVars) Int(name string) (int64, bool) {
	s, ok := v.String(name)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Float returns name as a float.
func (v ScriptVars) Float(name string) (float64, bool) {
	s, ok := v.String(name)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
