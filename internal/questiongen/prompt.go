package questiongen

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/studyquest/studyquest/internal/quiz"
)

const systemPrompt = `You are tasked to create questions based on a specific content/text for students that are trying to study.

Rules:
- Only ask about facts stated in or directly implied by the given text.
- Double check that every answer is correct according to the text.
- Reply with a JSON array only. No commentary before or after it.
- Multiple choice answers are a single lowercase letter: a, b, c or d.
- True or false answers are JSON booleans, not strings.`

// examples shows the model the exact item shape for each type.
var examples = map[quiz.Type]string{
	quiz.MultipleChoiceType: `{
    "type_of_test": "multiple_choice",
    "question": "<question>",
    "choices": {
        "a": "<choice a>",
        "b": "<choice b>",
        "c": "<choice c>",
        "d": "<choice d>"
    },
    "answer": "<letter only, lowercase>"
}`,
	quiz.IdentificationType: `{
    "type_of_test": "identification",
    "question": "<question>",
    "answer": "<answer>"
}`,
	quiz.TrueFalseType: `{
    "type_of_test": "true_false",
    "question": "<question>",
    "answer": <boolean>
}`,
}

// buildBatchPrompt asks for a chunk's whole quota slice as one mixed array.
func buildBatchPrompt(text string, need quiz.Quota, notes string) string {
	var b strings.Builder

	b.WriteString("Given the following academic text below, generate questions on different types of test.\n\n")
	writeText(&b, text)

	b.WriteString("Generate exactly this number of questions for each type of test:\n")
	var shapes []string
	for i, t := range quiz.Types {
		fmt.Fprintf(&b, "%d) %s: %d questions\n", i+1, t.Label(), need[t])
		if need[t] > 0 {
			shapes = append(shapes, indent(examples[t]))
		}
	}

	b.WriteString("\nReply with a JSON array using exactly these item formats:\n\n")
	b.WriteString("[\n")
	b.WriteString(strings.Join(shapes, ",\n"))
	b.WriteString("\n]\n\n")

	b.WriteString("Notes:\n")
	b.WriteString("- The questions may appear in any order as long as each type has the required count.\n")
	b.WriteString("- Double check the accuracy of the answers based on the academic text.\n")

	writeNotes(&b, notes)
	return b.String()
}

// buildSinglePrompt asks for one question of type t.
func buildSinglePrompt(text string, t quiz.Type, notes string) string {
	var b strings.Builder

	b.WriteString("Given the following text/content:\n\n")
	writeText(&b, text)

	fmt.Fprintf(&b, "Generate one %s question as a JSON array with a single item. Strictly follow this format:\n\n", strings.ToLower(t.Label()))
	b.WriteString("[\n")
	b.WriteString(indent(examples[t]))
	b.WriteString("\n]\n")

	writeNotes(&b, notes)
	return b.String()
}

func writeText(b *strings.Builder, text string) {
	b.WriteString("----------------------\n")
	b.WriteString(text)
	b.WriteString("\n----------------------\n\n")
}

func writeNotes(b *strings.Builder, notes string) {
	if strings.TrimSpace(notes) == "" {
		return
	}
	b.WriteString("\nAdditional Notes:\n")
	b.WriteString(notes)
	b.WriteString("\n")
}

func indent(s string) string {
	return "    " + strings.ReplaceAll(s, "\n", "\n    ")
}

// TruncateNotes cuts notes to at most max characters. A max of zero or
// less leaves notes unchanged.
func TruncateNotes(notes string, max int) string {
	if max <= 0 || utf8.RuneCountInString(notes) <= max {
		return notes
	}
	return string([]rune(notes)[:max])
}
