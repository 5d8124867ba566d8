package questiongen

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/studyquest/studyquest/internal/quiz"
)

// schemaSources holds one JSON Schema per question type. type_of_test is
// optional, but must match when present.
var schemaSources = map[quiz.Type]string{
	quiz.MultipleChoiceType: `{
		"type": "object",
		"required": ["question", "choices", "answer"],
		"properties": {
			"type_of_test": {"const": "multiple_choice"},
			"question": {"type": "string", "minLength": 1},
			"choices": {
				"type": "object",
				"required": ["a", "b", "c", "d"],
				"properties": {
					"a": {"type": "string", "minLength": 1},
					"b": {"type": "string", "minLength": 1},
					"c": {"type": "string", "minLength": 1},
					"d": {"type": "string", "minLength": 1}
				}
			},
			"answer": {"type": "string", "enum": ["a", "b", "c", "d"]}
		}
	}`,
	quiz.IdentificationType: `{
		"type": "object",
		"required": ["question", "answer"],
		"properties": {
			"type_of_test": {"const": "identification"},
			"question": {"type": "string", "minLength": 1},
			"answer": {"type": ["string", "number"]}
		}
	}`,
	quiz.TrueFalseType: `{
		"type": "object",
		"required": ["question", "answer"],
		"properties": {
			"type_of_test": {"const": "true_false"},
			"question": {"type": "string", "minLength": 1},
			"answer": {"type": "boolean"}
		}
	}`,
}

// schemaCache caches compiled schemas by question type.
var schemaCache sync.Map // map[quiz.Type]*jsonschema.Schema

func compiledSchema(t quiz.Type) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(t); ok {
		return cached.(*jsonschema.Schema), nil
	}

	src, ok := schemaSources[t]
	if !ok {
		return nil, fmt.Errorf("no schema for question type %q", t)
	}
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", t, err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://studyquest/%s.json", t)
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(t, compiled)
	return compiled, nil
}

// ValidateShape checks a decoded JSON value against the schema for t and
// converts it to a Question. Malformed input yields false.
func ValidateShape(v any, t quiz.Type) (quiz.Question, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	schema, err := compiledSchema(t)
	if err != nil {
		return nil, false
	}
	if err := schema.Validate(obj); err != nil {
		return nil, false
	}

	prompt := strings.TrimSpace(obj["question"].(string))

	var q quiz.Question
	switch t {
	case quiz.MultipleChoiceType:
		choices := obj["choices"].(map[string]any)
		mc := &quiz.MultipleChoice{Question: prompt, Answer: obj["answer"].(string)}
		for _, l := range quiz.Letters {
			mc.Choices.Set(l, strings.TrimSpace(choices[l].(string)))
		}
		q = mc
	case quiz.IdentificationType:
		q = &quiz.Identification{Question: prompt, Answer: answerString(obj["answer"])}
	case quiz.TrueFalseType:
		q = &quiz.TrueFalse{Question: prompt, Answer: obj["answer"].(bool)}
	}

	if !quiz.Complete(q) {
		return nil, false
	}
	return q, true
}

// answerString renders an identification answer. Models sometimes answer
// years and quantities as bare numbers.
func answerString(v any) string {
	switch a := v.(type) {
	case string:
		return strings.TrimSpace(a)
	case float64:
		return strconv.FormatFloat(a, 'f', -1, 64)
	case fmt.Stringer:
		return a.String()
	}
	return fmt.Sprint(v)
}

// ValidateBatch keeps the items of items that are valid questions of type t.
func ValidateBatch(items []any, t quiz.Type) []quiz.Question {
	var out []quiz.Question
	for _, item := range items {
		if q, ok := ValidateShape(item, t); ok {
			out = append(out, q)
		}
	}
	return out
}

// ValidateMixed validates items that name their own type in type_of_test.
// Items with a missing or unknown type are dropped.
func ValidateMixed(items []any) []quiz.Question {
	var out []quiz.Question
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		tag, _ := obj["type_of_test"].(string)
		t := quiz.Type(tag)
		if !t.Valid() {
			continue
		}
		if q, ok := ValidateShape(obj, t); ok {
			out = append(out, q)
		}
	}
	return out
}
