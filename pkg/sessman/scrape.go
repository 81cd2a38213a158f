package sessman

import (
	"encoding/json"
	"strings"
)

// LoadValue returns the text following valueBegin up to the next occurrence
// of valueBegin's last character. With valueBegin `token: "` it extracts
// the quoted token value.
func LoadValue(text, valueBegin string) (string, bool) {
	if valueBegin == "" {
		return "", false
	}
	i := strings.Index(text, valueBegin)
	if i < 0 {
		return "", false
	}
	start := i + len(valueBegin)
	end := strings.IndexByte(text[start:], valueBegin[len(valueBegin)-1])
	if end < 0 {
		return "", false
	}
	return text[start : start+end], true
}

// LoadJSONObject decodes the JSON object or array that starts at the last
// character of objectBegin, e.g. `var config = {`.
func LoadJSONObject(text, objectBegin string) (any, bool) {
	if objectBegin == "" {
		return nil, false
	}
	lb := objectBegin[len(objectBegin)-1]
	var rb byte
	switch lb {
	case '{':
		rb = '}'
	case '[':
		rb = ']'
	default:
		return nil, false
	}
	i := strings.Index(text, objectBegin)
	if i < 0 {
		return nil, false
	}
	start := i + len(objectBegin) - 1
	end := matchBracket(text, start, lb, rb)
	if end < 0 {
		return nil, false
	}
	var v any
	if err := json.Unmarshal([]byte(text[start:end+1]), &v); err != nil {
		return nil, false
	}
	return v, true
}

// matchBracket returns the index of the bracket closing the one at start,
// ignoring brackets inside string literals.
func matchBracket(text string, start int, lb, rb byte) int {
	depth := 0
	inString := false
	var quote byte
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch c {
			case '\\':
				i++
			case quote:
				inString = false
			}
			continue
		}
		switch c {
		case '"', '\'':
			inString = true
			quote = c
		case lb:
			depth++
		case rb:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
