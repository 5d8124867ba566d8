package quiz

import "strings"

// Check reports whether answer is correct for q.
//
// Multiple choice compares the trimmed, lower-cased letter. True/false accepts
// true/false, t/f and yes/no in any case. Identification compares trimmed,
// case-folded text.
func Check(q Question, answer string) bool {
	switch v := q.(type) {
	case *MultipleChoice:
		return strings.ToLower(strings.TrimSpace(answer)) == v.Answer
	case *TrueFalse:
		b, ok := ParseBool(answer)
		return ok && b == v.Answer
	case *Identification:
		return normalize(answer) == normalize(v.Answer)
	}
	return false
}

// ParseBool parses a user-entered true/false answer.
func ParseBool(s string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "y":
		return true, true
	case "false", "f", "no", "n":
		return false, true
	}
	return false, false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
