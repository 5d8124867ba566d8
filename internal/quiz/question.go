package quiz

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Type is the question variant tag carried in the "type_of_test" field.
type Type string

const (
	MultipleChoiceType Type = "multiple_choice"
	IdentificationType Type = "identification"
	TrueFalseType      Type = "true_false"
)

// Types lists the question variants in canonical order. Generation and
// quota accounting iterate in this order.
var Types = []Type{MultipleChoiceType, IdentificationType, TrueFalseType}

// Valid reports whether t is a known question type.
func (t Type) Valid() bool {
	switch t {
	case MultipleChoiceType, IdentificationType, TrueFalseType:
		return true
	}
	return false
}

// Label returns a human-friendly name for the type.
func (t Type) Label() string {
	switch t {
	case MultipleChoiceType:
		return "Multiple Choice"
	case IdentificationType:
		return "Identification"
	case TrueFalseType:
		return "True or False"
	}
	return string(t)
}

// Question is one generated quiz item. The concrete type is one of
// *MultipleChoice, *Identification or *TrueFalse.
type Question interface {
	Type() Type
	Prompt() string
	SetPrompt(text string)
	Num() string
	SetNum(n string)

	// AnswerText renders the stored answer for display.
	AnswerText() string

	sealed()
}

// Choices holds the four options of a multiple-choice question.
type Choices struct {
	A string `json:"a"`
	B string `json:"b"`
	C string `json:"c"`
	D string `json:"d"`
}

// Get returns the choice text for a letter, or "" for an unknown letter.
func (c Choices) Get(letter string) string {
	switch letter {
	case "a":
		return c.A
	case "b":
		return c.B
	case "c":
		return c.C
	case "d":
		return c.D
	}
	return ""
}

// Set updates the choice for a letter. Unknown letters are ignored.
func (c *Choices) Set(letter, text string) {
	switch letter {
	case "a":
		c.A = text
	case "b":
		c.B = text
	case "c":
		c.C = text
	case "d":
		c.D = text
	}
}

// Letters are the valid multiple-choice answer keys in display order.
var Letters = []string{"a", "b", "c", "d"}

// MultipleChoice is a four-option question answered by letter.
type MultipleChoice struct {
	Number   string
	Question string
	Choices  Choices
	Answer   string // one of a, b, c, d
}

// Identification is answered with free text.
type Identification struct {
	Number   string
	Question string
	Answer   string
}

// TrueFalse is answered with a boolean.
type TrueFalse struct {
	Number   string
	Question string
	Answer   bool
}

func (q *MultipleChoice) Type() Type            { return MultipleChoiceType }
func (q *MultipleChoice) Prompt() string        { return q.Question }
func (q *MultipleChoice) SetPrompt(text string) { q.Question = text }
func (q *MultipleChoice) Num() string           { return q.Number }
func (q *MultipleChoice) SetNum(n string)       { q.Number = n }
func (q *MultipleChoice) sealed()               {}

func (q *MultipleChoice) AnswerText() string {
	return fmt.Sprintf("%s) %s", q.Answer, q.Choices.Get(q.Answer))
}

func (q *Identification) Type() Type            { return IdentificationType }
func (q *Identification) Prompt() string        { return q.Question }
func (q *Identification) SetPrompt(text string) { q.Question = text }
func (q *Identification) Num() string           { return q.Number }
func (q *Identification) SetNum(n string)       { q.Number = n }
func (q *Identification) AnswerText() string    { return q.Answer }
func (q *Identification) sealed()               {}

func (q *TrueFalse) Type() Type            { return TrueFalseType }
func (q *TrueFalse) Prompt() string        { return q.Question }
func (q *TrueFalse) SetPrompt(text string) { q.Question = text }
func (q *TrueFalse) Num() string           { return q.Number }
func (q *TrueFalse) SetNum(n string)       { q.Number = n }
func (q *TrueFalse) sealed()               {}

func (q *TrueFalse) AnswerText() string {
	if q.Answer {
		return "True"
	}
	return "False"
}

// Complete reports whether every required field of q is populated.
func Complete(q Question) bool {
	if q == nil || strings.TrimSpace(q.Prompt()) == "" {
		return false
	}
	switch v := q.(type) {
	case *MultipleChoice:
		for _, l := range Letters {
			if strings.TrimSpace(v.Choices.Get(l)) == "" {
				return false
			}
		}
		return v.Choices.Get(v.Answer) != ""
	case *Identification:
		return strings.TrimSpace(v.Answer) != ""
	case *TrueFalse:
		return true
	}
	return false
}

// Clone returns a deep copy of q.
func Clone(q Question) Question {
	switch v := q.(type) {
	case *MultipleChoice:
		c := *v
		return &c
	case *Identification:
		c := *v
		return &c
	case *TrueFalse:
		c := *v
		return &c
	}
	return nil
}

// wireQuestion is the JSON form shared by all variants.
type wireQuestion struct {
	Number   string          `json:"question_number,omitempty"`
	Type     Type            `json:"type_of_test"`
	Question string          `json:"question"`
	Choices  *Choices        `json:"choices,omitempty"`
	Answer   json.RawMessage `json:"answer"`
}

// Marshal encodes q in its tagged wire form.
func Marshal(q Question) ([]byte, error) {
	w := wireQuestion{Number: q.Num(), Type: q.Type(), Question: q.Prompt()}

	var answer any
	switch v := q.(type) {
	case *MultipleChoice:
		c := v.Choices
		w.Choices = &c
		answer = v.Answer
	case *Identification:
		answer = v.Answer
	case *TrueFalse:
		answer = v.Answer
	default:
		return nil, fmt.Errorf("unknown question variant %T", q)
	}

	raw, err := json.Marshal(answer)
	if err != nil {
		return nil, err
	}
	w.Answer = raw
	return json.Marshal(w)
}

// Unmarshal decodes a tagged question. The type_of_test field selects the
// variant; an unknown or missing tag is an error.
func Unmarshal(data []byte) (Question, error) {
	var w wireQuestion
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode question: %w", err)
	}

	switch w.Type {
	case MultipleChoiceType:
		q := &MultipleChoice{Number: w.Number, Question: w.Question}
		if w.Choices != nil {
			q.Choices = *w.Choices
		}
		if err := json.Unmarshal(w.Answer, &q.Answer); err != nil {
			return nil, fmt.Errorf("decode multiple choice answer: %w", err)
		}
		return q, nil
	case IdentificationType:
		q := &Identification{Number: w.Number, Question: w.Question}
		if err := json.Unmarshal(w.Answer, &q.Answer); err != nil {
			return nil, fmt.Errorf("decode identification answer: %w", err)
		}
		return q, nil
	case TrueFalseType:
		q := &TrueFalse{Number: w.Number, Question: w.Question}
		if err := json.Unmarshal(w.Answer, &q.Answer); err != nil {
			return nil, fmt.Errorf("decode true/false answer: %w", err)
		}
		return q, nil
	}
	return nil, fmt.Errorf("unknown type_of_test %q", w.Type)
}

// List is an ordered question sequence with tagged JSON encoding.
type List []Question

func (l List) MarshalJSON() ([]byte, error) {
	items := make([]json.RawMessage, 0, len(l))
	for i, q := range l {
		b, err := Marshal(q)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
		items = append(items, b)
	}
	return json.Marshal(items)
}

func (l *List) UnmarshalJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	out := make(List, 0, len(items))
	for i, raw := range items {
		q, err := Unmarshal(raw)
		if err != nil {
			return fmt.Errorf("question %d: %w", i, err)
		}
		out = append(out, q)
	}
	*l = out
	return nil
}
