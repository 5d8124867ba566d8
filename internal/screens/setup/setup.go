// Package setup is the form that collects documents, the question quota
// and notes before a generation run.
package setup

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/studyquest/studyquest/internal/quiz"
	"github.com/studyquest/studyquest/internal/router"
	"github.com/studyquest/studyquest/internal/screen"
	"github.com/studyquest/studyquest/internal/screens/generating"
	"github.com/studyquest/studyquest/internal/ui/components"
	"github.com/studyquest/studyquest/internal/ui/layout"
	"github.com/studyquest/studyquest/internal/ui/theme"
)

const (
	fieldFiles = iota
	fieldMultipleChoice
	fieldIdentification
	fieldTrueFalse
	fieldNotes
	fieldCount
)

// DefaultNotesMaxLength applies when the configuration leaves it unset.
const DefaultNotesMaxLength = 200

// SetupScreen is the generation form.
type SetupScreen struct {
	deps   *screen.Deps
	fields []components.TextInput
	focus  int
	errMsg string
}

var _ screen.Screen = (*SetupScreen)(nil)
var _ screen.KeyHintProvider = (*SetupScreen)(nil)

// New creates the form with each count defaulting to 1.
func New(deps *screen.Deps) *SetupScreen {
	notesMax := deps.NotesMaxLength
	if notesMax <= 0 {
		notesMax = DefaultNotesMaxLength
	}

	fields := make([]components.TextInput, fieldCount)
	fields[fieldFiles] = components.NewTextInput("Documents (comma separated: .pdf .docx .txt .md)", "notes.pdf, chapter2.docx", false, 0)
	fields[fieldMultipleChoice] = components.NewTextInput(quiz.MultipleChoiceType.Label(), "1", true, 3)
	fields[fieldIdentification] = components.NewTextInput(quiz.IdentificationType.Label(), "1", true, 3)
	fields[fieldTrueFalse] = components.NewTextInput(quiz.TrueFalseType.Label(), "1", true, 3)
	fields[fieldNotes] = components.NewTextInput(fmt.Sprintf("Notes for the generator (max %d characters)", notesMax), "focus on chapter 2 definitions", false, notesMax)

	for _, i := range []int{fieldMultipleChoice, fieldIdentification, fieldTrueFalse} {
		fields[i].SetValue("1")
	}

	s := &SetupScreen{deps: deps, fields: fields}
	if deps.Generator == nil {
		s.errMsg = credentialMessage(deps.GeneratorErr)
	}
	return s
}

func credentialMessage(err error) string {
	if err == nil {
		return "No model provider is configured."
	}
	return err.Error()
}

func (s *SetupScreen) Init() tea.Cmd {
	return s.fields[s.focus].Focus()
}

func (s *SetupScreen) Title() string {
	return "Generate Questions"
}

func (s *SetupScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab/↑↓", Description: "Move"},
		{Key: "Ctrl+S", Description: "Generate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SetupScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "tab", "down":
			return s, s.moveFocus(1)
		case "shift+tab", "up":
			return s, s.moveFocus(-1)
		case "enter":
			if s.focus < fieldNotes {
				return s, s.moveFocus(1)
			}
			return s, s.submit()
		case "ctrl+s":
			return s, s.submit()
		}
	}

	var cmd tea.Cmd
	s.fields[s.focus], cmd = s.fields[s.focus].Update(msg)
	return s, cmd
}

func (s *SetupScreen) moveFocus(delta int) tea.Cmd {
	s.fields[s.focus].Blur()
	s.focus = (s.focus + delta + fieldCount) % fieldCount
	return s.fields[s.focus].Focus()
}

// Request returns the validated form contents.
func (s *SetupScreen) Request() (generating.Request, error) {
	var req generating.Request

	for _, p := range strings.Split(s.fields[fieldFiles].Value(), ",") {
		if p = strings.TrimSpace(p); p != "" {
			req.Paths = append(req.Paths, p)
		}
	}
	if len(req.Paths) == 0 {
		return req, errors.New("add at least one document")
	}

	req.Quota = quiz.Quota{}
	counts := map[int]quiz.Type{
		fieldMultipleChoice: quiz.MultipleChoiceType,
		fieldIdentification: quiz.IdentificationType,
		fieldTrueFalse:      quiz.TrueFalseType,
	}
	for field, t := range counts {
		raw := strings.TrimSpace(s.fields[field].Value())
		if raw == "" {
			raw = "0"
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return req, fmt.Errorf("%s count must be a whole number of at least 0", t.Label())
		}
		req.Quota[t] = n
	}
	if req.Quota.Total() == 0 {
		return req, errors.New("ask for at least one question")
	}

	req.Notes = s.fields[fieldNotes].Value()
	return req, nil
}

func (s *SetupScreen) submit() tea.Cmd {
	if s.deps.Generator == nil {
		s.errMsg = credentialMessage(s.deps.GeneratorErr)
		return nil
	}

	req, err := s.Request()
	if err != nil {
		s.errMsg = err.Error()
		return nil
	}
	s.errMsg = ""

	next := generating.New(s.deps, req)
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

func (s *SetupScreen) View(width, height int) string {
	cw := min(width-4, 72)

	var b strings.Builder
	b.WriteString(theme.Title.Width(cw).Render("New question set"))
	b.WriteString("\n\n")

	b.WriteString(s.fields[fieldFiles].View())
	b.WriteString("\n\n")

	counts := make([]string, 0, 3)
	for _, i := range []int{fieldMultipleChoice, fieldIdentification, fieldTrueFalse} {
		counts = append(counts, lipgloss.NewStyle().Width(cw/3).Render(s.fields[i].View()))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, counts...))
	b.WriteString("\n\n")

	b.WriteString(s.fields[fieldNotes].View())
	b.WriteString("\n")

	if s.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(theme.ErrorText.Width(cw).Render(s.errMsg))
		b.WriteString("\n")
	}

	card := theme.Card.Width(cw).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
