// Package edit lets the user correct generated questions in place.
package edit

import (
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/studyquest/studyquest/internal/quiz"
	"github.com/studyquest/studyquest/internal/router"
	"github.com/studyquest/studyquest/internal/screen"
	"github.com/studyquest/studyquest/internal/session"
	"github.com/studyquest/studyquest/internal/ui/components"
	"github.com/studyquest/studyquest/internal/ui/layout"
	"github.com/studyquest/studyquest/internal/ui/theme"
)

// EditScreen edits one question at a time. Entering it turns the
// session's edit mode on; leaving turns it off.
type EditScreen struct {
	deps   *screen.Deps
	index  int
	qtype  quiz.Type
	fields []components.TextInput
	focus  int
	dirty  bool
	status string
	errMsg string
}

var _ screen.Screen = (*EditScreen)(nil)
var _ screen.KeyHintProvider = (*EditScreen)(nil)
var _ screen.EscapeHandler = (*EditScreen)(nil)

// New creates an EditScreen positioned on question index.
func New(deps *screen.Deps, index int) *EditScreen {
	s := &EditScreen{deps: deps}
	s.load(index)
	return s
}

func (s *EditScreen) load(i int) tea.Cmd {
	n := s.deps.Session.Len()
	if n == 0 {
		s.fields = nil
		return nil
	}
	s.index = min(max(i, 0), n-1)
	s.focus = 0
	s.dirty = false

	q, err := s.deps.Session.Question(s.index)
	if err != nil {
		s.errMsg = err.Error()
		return nil
	}
	s.qtype = q.Type()

	prompt := components.NewTextInput("Question", "", false, 0)
	prompt.SetValue(q.Prompt())
	s.fields = []components.TextInput{prompt}

	switch v := q.(type) {
	case *quiz.MultipleChoice:
		for _, l := range quiz.Letters {
			f := components.NewTextInput("Choice "+strings.ToUpper(l), "", false, 0)
			f.SetValue(v.Choices.Get(l))
			s.fields = append(s.fields, f)
		}
		s.fields = append(s.fields, answerField("Answer (a, b, c or d)", v.Answer, 1))
	case *quiz.Identification:
		s.fields = append(s.fields, answerField("Answer", v.Answer, 0))
	case *quiz.TrueFalse:
		s.fields = append(s.fields, answerField("Answer (true or false)", fmt.Sprint(v.Answer), 5))
	}
	return s.fields[0].Focus()
}

func answerField(label, value string, limit int) components.TextInput {
	f := components.NewTextInput(label, "", false, limit)
	f.SetValue(value)
	return f
}

// Question builds a question from the form. It is not validated beyond
// parsing the answer.
func (s *EditScreen) Question() (quiz.Question, error) {
	if len(s.fields) == 0 {
		return nil, errors.New("no question to edit")
	}
	prompt := strings.TrimSpace(s.fields[0].Value())
	answer := strings.TrimSpace(s.fields[len(s.fields)-1].Value())

	switch s.qtype {
	case quiz.MultipleChoiceType:
		q := &quiz.MultipleChoice{Question: prompt, Answer: strings.ToLower(answer)}
		for j, l := range quiz.Letters {
			q.Choices.Set(l, strings.TrimSpace(s.fields[1+j].Value()))
		}
		return q, nil
	case quiz.IdentificationType:
		return &quiz.Identification{Question: prompt, Answer: answer}, nil
	case quiz.TrueFalseType:
		b, ok := quiz.ParseBool(answer)
		if !ok {
			return nil, errors.New("answer must be true or false")
		}
		return &quiz.TrueFalse{Question: prompt, Answer: b}, nil
	}
	return nil, fmt.Errorf("unknown question type %q", s.qtype)
}

func (s *EditScreen) save() {
	q, err := s.Question()
	if err == nil {
		err = s.deps.Session.Replace(s.index, q)
	}
	switch {
	case errors.Is(err, session.ErrInvalidQuestion):
		s.errMsg = "Every field must be filled in and the answer must match the question type."
		s.status = ""
	case err != nil:
		s.errMsg = err.Error()
		s.status = ""
	default:
		s.errMsg = ""
		s.status = fmt.Sprintf("Question %d saved.", s.index+1)
		s.dirty = false
	}
}

func (s *EditScreen) Init() tea.Cmd {
	s.deps.Session.SetEditMode(true)
	if len(s.fields) == 0 {
		return nil
	}
	return s.fields[s.focus].Focus()
}

func (s *EditScreen) Title() string {
	return "Edit Questions"
}

func (s *EditScreen) HandlesEscape() bool {
	return true
}

func (s *EditScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "PgUp/PgDn", Description: "Prev/Next question"},
		{Key: "Ctrl+S", Description: "Save"},
		{Key: "Esc", Description: "Done"},
	}
}

func (s *EditScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || len(s.fields) == 0 {
		if ok && kmsg.String() == "esc" {
			return s, s.leave()
		}
		return s, nil
	}

	switch kmsg.String() {
	case "esc":
		return s, s.leave()
	case "tab", "down":
		return s, s.moveFocus(1)
	case "shift+tab", "up":
		return s, s.moveFocus(-1)
	case "ctrl+s", "enter":
		s.save()
		return s, nil
	case "pgdown":
		s.status = ""
		return s, s.load(s.index + 1)
	case "pgup":
		s.status = ""
		return s, s.load(s.index - 1)
	}

	before := s.fields[s.focus].Value()
	var cmd tea.Cmd
	s.fields[s.focus], cmd = s.fields[s.focus].Update(msg)
	if s.fields[s.focus].Value() != before {
		s.dirty = true
		s.status = ""
	}
	return s, cmd
}

func (s *EditScreen) leave() tea.Cmd {
	s.deps.Session.SetEditMode(false)
	return func() tea.Msg { return router.PopScreenMsg{} }
}

func (s *EditScreen) moveFocus(delta int) tea.Cmd {
	s.fields[s.focus].Blur()
	s.focus = (s.focus + delta + len(s.fields)) % len(s.fields)
	return s.fields[s.focus].Focus()
}

func (s *EditScreen) View(width, height int) string {
	if len(s.fields) == 0 {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Hint.Render("No questions to edit."))
	}

	cw := min(width-4, 80)

	var b strings.Builder
	head := fmt.Sprintf("Question %d of %d  ·  %s", s.index+1, s.deps.Session.Len(), s.qtype.Label())
	if s.dirty {
		head += "  ·  unsaved"
	}
	b.WriteString(theme.Label.Render(head))
	b.WriteString("\n\n")

	for _, f := range s.fields {
		b.WriteString(f.View())
		b.WriteString("\n")
	}

	switch {
	case s.errMsg != "":
		b.WriteString("\n" + theme.ErrorText.Width(cw-6).Render(s.errMsg))
	case s.status != "":
		b.WriteString("\n" + theme.Correct.Render(s.status))
	}

	card := theme.FocusedCard.Width(cw).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
