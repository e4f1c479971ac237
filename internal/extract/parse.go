package extract

import (
	"encoding/json"
	"strings"

	"go.uber.org/zap"
)

// ParseReply returns the first complete top-level JSON object found in a
// model reply. Surrounding prose and code fences are ignored. A reply with no
// object, or whose first object is not valid JSON, yields an empty map.
func ParseReply(text string) map[string]any {
	obj, ok := FirstObject(text)
	if !ok {
		return map[string]any{}
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(obj), &out); err != nil {
		zap.L().Debug("extract: reply object is not valid JSON", zap.Error(err))
		return map[string]any{}
	}
	if out == nil {
		return map[string]any{}
	}
	return out
}

// FirstObject scans text for the first '{' and returns the substring up to
// its matching '}' by bracket depth. Braces inside JSON strings are ignored.
// When a candidate never closes, the scan restarts at the next '{' after it.
func FirstObject(text string) (string, bool) {
	for from := 0; from < len(text); {
		off := strings.IndexByte(text[from:], '{')
		if off < 0 {
			return "", false
		}
		start := from + off
		if end, ok := matchBrace(text, start); ok {
			return text[start : end+1], true
		}
		from = start + 1
	}
	return "", false
}

// matchBrace returns the index of the '}' closing the '{' at start.
func matchBrace(text string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
