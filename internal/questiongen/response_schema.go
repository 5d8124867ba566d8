package questiongen

import (
	"github.com/studyquest/studyquest/internal/llm"
	"github.com/studyquest/studyquest/internal/quiz"
)

// Response schemas are hints for a provider's structured output mode. They
// are stricter than schemaSources (every property required, no extra keys)
// so OpenAI strict mode accepts them, and they wrap the array in an object
// because OpenAI and Anthropic want an object root. Extract still finds the
// array inside, and ValidateShape stays the check that decides.

func responseItem(t quiz.Type) map[string]any {
	str := map[string]any{"type": "string"}
	tag := map[string]any{"type": "string", "enum": []any{string(t)}}

	var props map[string]any
	switch t {
	case quiz.MultipleChoiceType:
		props = map[string]any{
			"type_of_test": tag,
			"question":     str,
			"choices": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"a": str, "b": str, "c": str, "d": str,
				},
				"required":             []any{"a", "b", "c", "d"},
				"additionalProperties": false,
			},
			"answer": map[string]any{"type": "string", "enum": []any{"a", "b", "c", "d"}},
		}
	case quiz.IdentificationType:
		props = map[string]any{"type_of_test": tag, "question": str, "answer": str}
	case quiz.TrueFalseType:
		props = map[string]any{"type_of_test": tag, "question": str, "answer": map[string]any{"type": "boolean"}}
	}

	required := []any{"type_of_test", "question"}
	if t == quiz.MultipleChoiceType {
		required = append(required, "choices")
	}
	required = append(required, "answer")

	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

func wrapQuestions(name, description string, item map[string]any) *llm.Schema {
	return &llm.Schema{
		Name:        name,
		Description: description,
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"questions": map[string]any{"type": "array", "items": item},
			},
			"required":             []any{"questions"},
			"additionalProperties": false,
		},
	}
}

// BatchResponseSchema describes a mixed batch: each item is one of the
// question variants, told apart by type_of_test.
func BatchResponseSchema() *llm.Schema {
	variants := make([]any, 0, len(quiz.Types))
	for _, t := range quiz.Types {
		variants = append(variants, responseItem(t))
	}
	return wrapQuestions("quiz-batch", "Quiz questions of mixed types.", map[string]any{"anyOf": variants})
}

// SingleResponseSchema describes a batch holding only questions of type t.
func SingleResponseSchema(t quiz.Type) *llm.Schema {
	return wrapQuestions("quiz-"+string(t), "Quiz questions of type "+string(t)+".", responseItem(t))
}
