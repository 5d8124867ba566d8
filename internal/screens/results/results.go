// Package results shows the outcome of a quiz submission.
package results

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/studyquest/studyquest/internal/router"
	"github.com/studyquest/studyquest/internal/screen"
	"github.com/studyquest/studyquest/internal/screens/history"
	"github.com/studyquest/studyquest/internal/session"
	"github.com/studyquest/studyquest/internal/ui/components"
	"github.com/studyquest/studyquest/internal/ui/layout"
	"github.com/studyquest/studyquest/internal/ui/theme"
)

// ResultsScreen lists every outcome with the expected answer.
type ResultsScreen struct {
	deps     *screen.Deps
	outcomes []session.Outcome
	summary  session.Summary
	offset   int
}

var _ screen.Screen = (*ResultsScreen)(nil)
var _ screen.KeyHintProvider = (*ResultsScreen)(nil)

// New creates a ResultsScreen for one submission.
func New(deps *screen.Deps, outcomes []session.Outcome) *ResultsScreen {
	return &ResultsScreen{
		deps:     deps,
		outcomes: outcomes,
		summary:  session.Summarize(outcomes),
	}
}

func (s *ResultsScreen) Init() tea.Cmd {
	return nil
}

func (s *ResultsScreen) Title() string {
	return "Results"
}

func (s *ResultsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Enter", Description: "Back to quiz"},
		{Key: "H", Description: "History"},
		{Key: "M", Description: "Menu"},
	}
}

func (s *ResultsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}

	switch kmsg.String() {
	case "up", "k":
		if s.offset > 0 {
			s.offset--
		}
	case "down", "j":
		if s.offset < len(s.outcomes)-1 {
			s.offset++
		}
	case "enter":
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	case "h", "H":
		next := history.New(s.deps)
		return s, func() tea.Msg { return router.PushScreenMsg{Screen: next} }
	case "m", "M":
		return s, func() tea.Msg { return router.PopToRootMsg{} }
	}
	return s, nil
}

// Summary returns the tallies shown at the top of the screen.
func (s *ResultsScreen) Summary() session.Summary {
	return s.summary
}

func (s *ResultsScreen) View(width, height int) string {
	sum := s.summary

	var b strings.Builder
	b.WriteString(layout.Center(theme.Title.Render("Quiz submitted!"), width))
	b.WriteString("\n\n")

	stats := fmt.Sprintf("Score: %d/%d        Accuracy: %.0f%%", sum.Correct, sum.Total, sum.Accuracy*100)
	b.WriteString(layout.Center(theme.Body.Render(stats), width))
	b.WriteString("\n")
	bar := components.NewProgressBar("", sum.Accuracy, false, min(width-8, 60))
	b.WriteString(layout.Center(bar.View(), width))
	b.WriteString("\n\n")

	for _, r := range sum.ByType {
		line := fmt.Sprintf("%-16s %d/%d", r.Type.Label(), r.Correct, r.Total)
		b.WriteString(layout.Center(theme.Hint.Render(line), width))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(layout.Center(layout.Divider(width), width))
	b.WriteString("\n\n")

	used := lipgloss.Height(b.String())
	rows := max((height-used)/3, 1)
	end := min(s.offset+rows, len(s.outcomes))
	for _, o := range s.outcomes[s.offset:end] {
		b.WriteString(renderOutcome(o, width))
	}
	return b.String()
}

func renderOutcome(o session.Outcome, width int) string {
	cw := min(width-8, 76)

	mark := theme.Correct.Render("✓")
	if !o.Correct {
		mark = theme.Incorrect.Render("✗")
	}
	head := fmt.Sprintf("%s %s. %s", mark, o.Question.Num(), o.Question.Prompt())

	answer := o.Answer
	if strings.TrimSpace(answer) == "" {
		answer = "(no answer)"
	}
	detail := fmt.Sprintf("   your answer: %s   ·   expected: %s   ·   missed %d×", answer, o.Question.AnswerText(), o.TimesWrong)

	block := lipgloss.NewStyle().Width(cw).MaxHeight(1).Render(head) + "\n" +
		theme.Hint.Width(cw).MaxHeight(1).Render(detail) + "\n"
	return layout.Center(block, width) + "\n"
}
