// Package quiz is the screen where questions are answered and submitted.
package quiz

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/studyquest/studyquest/internal/quiz"
	"github.com/studyquest/studyquest/internal/router"
	"github.com/studyquest/studyquest/internal/screen"
	"github.com/studyquest/studyquest/internal/screens/edit"
	"github.com/studyquest/studyquest/internal/screens/results"
	"github.com/studyquest/studyquest/internal/ui/components"
	"github.com/studyquest/studyquest/internal/ui/layout"
	"github.com/studyquest/studyquest/internal/ui/theme"
)

// QuizScreen shows one question at a time. Answers are written to the
// session as soon as they change.
type QuizScreen struct {
	deps     *screen.Deps
	index    int
	question quiz.Question
	choice   components.Choice
	input    components.TextInput
	errMsg   string
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)

// New creates a QuizScreen positioned on the first question.
func New(deps *screen.Deps) *QuizScreen {
	s := &QuizScreen{deps: deps}
	s.load(0)
	return s
}

// load positions the screen on question i, clamped to the session size.
func (s *QuizScreen) load(i int) tea.Cmd {
	n := s.deps.Session.Len()
	if n == 0 {
		s.question = nil
		return nil
	}
	s.index = min(max(i, 0), n-1)

	q, err := s.deps.Session.Question(s.index)
	if err != nil {
		s.errMsg = err.Error()
		return nil
	}
	s.question = q

	answer := ""
	if answers := s.deps.Session.Answers(); s.index < len(answers) {
		answer = answers[s.index]
	}

	switch v := q.(type) {
	case *quiz.MultipleChoice:
		options := make([]string, len(quiz.Letters))
		for j, l := range quiz.Letters {
			options[j] = v.Choices.Get(l)
		}
		s.choice = components.NewChoice(quiz.Letters, options)
		s.choice.Select(answer)
	case *quiz.TrueFalse:
		s.choice = components.NewChoice([]string{"true", "false"}, []string{"True", "False"})
		if b, ok := quiz.ParseBool(answer); ok {
			s.choice.Select(fmt.Sprint(b))
		}
	case *quiz.Identification:
		s.input = components.NewTextInput("", "Type your answer...", false, 200)
		s.input.SetValue(answer)
		return s.input.Focus()
	}
	return nil
}

func (s *QuizScreen) Init() tea.Cmd {
	if s.question != nil && s.question.Type() == quiz.IdentificationType {
		return s.input.Focus()
	}
	return nil
}

func (s *QuizScreen) Title() string {
	return "Quiz"
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab/Shift+Tab", Description: "Next/Prev"},
		{Key: "Ctrl+S", Description: "Submit"},
		{Key: "Ctrl+E", Description: "Edit"},
		{Key: "Esc", Description: "Menu"},
	}
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if _, ok := msg.(router.ResumeMsg); ok {
		return s, s.load(s.index)
	}
	if s.question == nil {
		return s, nil
	}

	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "tab", "pgdown":
			return s, s.load(s.index + 1)
		case "shift+tab", "pgup":
			return s, s.load(s.index - 1)
		case "ctrl+s":
			return s, s.submit()
		case "ctrl+e":
			target := edit.New(s.deps, s.index)
			return s, func() tea.Msg { return router.PushScreenMsg{Screen: target} }
		}

		if s.question.Type() != quiz.IdentificationType {
			switch kmsg.String() {
			case "right", "l":
				return s, s.load(s.index + 1)
			case "left", "h":
				return s, s.load(s.index - 1)
			}
		}
	}

	if s.question.Type() == quiz.IdentificationType {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		s.record(s.input.Value())
		return s, cmd
	}

	var chosen bool
	s.choice, chosen = s.choice.Update(msg)
	if chosen {
		s.record(s.choice.Value())
	}
	return s, nil
}

func (s *QuizScreen) record(answer string) {
	if err := s.deps.Session.SetAnswer(s.index, answer); err != nil {
		s.errMsg = err.Error()
	}
}

func (s *QuizScreen) submit() tea.Cmd {
	outcomes, err := s.deps.Session.Submit()
	if err != nil {
		s.errMsg = err.Error()
		return nil
	}
	next := results.New(s.deps, outcomes)
	return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
}

func (s *QuizScreen) answered() int {
	n := 0
	for _, a := range s.deps.Session.Answers() {
		if strings.TrimSpace(a) != "" {
			n++
		}
	}
	return n
}

func (s *QuizScreen) View(width, height int) string {
	if s.question == nil {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Hint.Render("No questions loaded. Generate or import a set first."))
	}

	cw := min(width-4, 80)
	total := s.deps.Session.Len()

	var b strings.Builder
	info := fmt.Sprintf("Question %d of %d  ·  %s", s.index+1, total, s.question.Type().Label())
	b.WriteString(theme.Label.Render(info))
	b.WriteString("\n")
	b.WriteString(components.NewProgressBar("", components.Fraction(s.answered(), total), false, cw-6).View())
	b.WriteString("\n\n")

	b.WriteString(theme.Question.Width(cw - 6).Render(fmt.Sprintf("%s. %s", s.question.Num(), s.question.Prompt())))
	b.WriteString("\n\n")

	if s.question.Type() == quiz.IdentificationType {
		b.WriteString(s.input.View())
		b.WriteString("\n")
	} else {
		b.WriteString(s.choice.View())
	}

	b.WriteString("\n")
	b.WriteString(theme.Hint.Render(fmt.Sprintf("%d of %d answered", s.answered(), total)))

	if s.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(theme.ErrorText.Render(s.errMsg))
	}

	card := theme.Card.Width(cw).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
