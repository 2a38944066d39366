package lineage

import "strings"

// ContainsToken reports whether name occurs in formula as a whole token:
// an occurrence not immediately preceded or followed by an ASCII letter,
// digit, or underscore.
//
// The match is case-sensitive and purely literal - name is never
// interpreted as a pattern, so aliases containing characters like '(' or
// '.' match exactly as written. A formula "a + 1" contains the token "a";
// "amax" and "a1" do not.
//
// An empty name never matches: a field with no alias cannot be referenced
// by any formula.
func ContainsToken(formula, name string) bool {
	if name == "" || len(formula) < len(name) {
		return false
	}
	for start := 0; ; start++ {
		i := strings.Index(formula[start:], name)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(name)
		if (i == 0 || !isWordByte(formula[i-1])) &&
			(end == len(formula) || !isWordByte(formula[end])) {
			return true
		}
		start = i
	}
}

// isWordByte reports whether b is an identifier character for the purpose
// of token boundaries. Only the ASCII identifier class counts; multi-byte
// runes adjacent to a match are boundaries.
func isWordByte(b byte) bool {
	return b == '_' ||
		('a' <= b && b <= 'z') ||
		('A' <= b && b <= 'Z') ||
		('0' <= b && b <= '9')
}
