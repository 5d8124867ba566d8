package questiongen

import (
	"encoding/json"
	"strings"
)

// Extract finds the first '[' and the last ']' in text and parses the
// enclosed substring as JSON. It reports false when the pair is missing,
// inverted, or does not parse. Anything outside the brackets, such as
// code fences or commentary, is ignored.
func Extract(text string) (any, bool) {
	start := strings.IndexByte(text, '[')
	end := strings.LastIndexByte(text, ']')
	if start == -1 || end == -1 || end < start {
		return nil, false
	}

	var v any
	if err := json.Unmarshal([]byte(text[start:end+1]), &v); err != nil {
		return nil, false
	}
	return v, true
}
