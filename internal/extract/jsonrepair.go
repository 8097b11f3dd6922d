package extract

import (
	"encoding/json"
	"strings"
)

// Sanitize strips markdown code-fence wrappers the model sometimes adds
// despite being told not to.
func Sanitize(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			s = strings.TrimPrefix(s, "```json")
			s = strings.TrimPrefix(s, "```")
		}
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(s[:len(s)-3])
	}

	return s
}

// Parse parses model output into a generic value, repairing truncated or
// malformed JSON if a strict parse fails. Returns nil when the text is
// unrecoverable; it never returns an error. Repairing already-valid JSON
// yields the same value as a plain parse.
func Parse(raw string) interface{} {
	s := Sanitize(raw)

	var v interface{}
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	if err := json.Unmarshal([]byte(repair(s)), &v); err == nil {
		return v
	}
	return nil
}

// Decode is Parse for a typed target. Missing fields keep their zero
// values; the caller gets false only when even the repaired text will
// not unmarshal.
func Decode(raw string, v interface{}) bool {
	s := Sanitize(raw)

	if err := json.Unmarshal([]byte(s), v); err == nil {
		return true
	}
	return json.Unmarshal([]byte(repair(s)), v) == nil
}

// repair applies the recovery heuristics for responses truncated at a
// token limit: close an open string, drop a trailing comma, complete a
// truncated keyword, supply a missing value, close open brackets.
func repair(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}

	// Close an unterminated string.
	if countUnescapedQuotes(s)%2 == 1 {
		s += `"`
	}

	// Drop a single trailing comma.
	s = strings.TrimRight(s, " \t\r\n")
	if strings.HasSuffix(s, ",") {
		s = s[:len(s)-1]
	}

	// Complete a keyword cut off mid-token after a colon.
	s = completeTruncatedKeyword(s)

	// A key with no value at all gets null.
	if strings.HasSuffix(strings.TrimRight(s, " \t\r\n"), ":") {
		s = strings.TrimRight(s, " \t\r\n") + " null"
	}

	// Close whatever brackets are still open, innermost first.
	for _, closer := range pendingClosers(s) {
		s += string(closer)
	}

	return s
}

func countUnescapedQuotes(s string) int {
	count := 0
	escaped := false
	for i := 0; i < len(s); i++ {
		if escaped {
			escaped = false
			continue
		}
		switch s[i] {
		case '\\':
			escaped = true
		case '"':
			count++
		}
	}
	return count
}

// completeTruncatedKeyword finishes a trailing fragment of true/false/null
// when it directly follows a colon, e.g. `"active": tr`.
func completeTruncatedKeyword(s string) string {
	trimmed := strings.TrimRight(s, " \t\r\n")

	j := len(trimmed)
	for j > 0 && trimmed[j-1] >= 'a' && trimmed[j-1] <= 'z' {
		j--
	}
	frag := trimmed[j:]
	if frag == "" {
		return s
	}

	k := j
	for k > 0 && (trimmed[k-1] == ' ' || trimmed[k-1] == '\t') {
		k--
	}
	if k == 0 || trimmed[k-1] != ':' {
		return s
	}

	for _, kw := range []string{"true", "false", "null"} {
		if len(frag) < len(kw) && strings.HasPrefix(kw, frag) {
			return trimmed + kw[len(frag):]
		}
	}
	return s
}

// pendingClosers walks the text outside of strings, tracking the stack of
// expected closing brackets; whatever remains open is returned in
// last-in-first-out order.
func pendingClosers(s string) []byte {
	var stack []byte
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch c {
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) > 0 && stack[len(stack)-1] == c {
				stack = stack[:len(stack)-1]
			}
		}
	}

	// Reverse for LIFO closing order.
	for i, j := 0, len(stack)-1; i < j; i, j = i+1, j-1 {
		stack[i], stack[j] = stack[j], stack[i]
	}
	return stack
}
