// Package history shows how often each question has been answered wrong.
package history

import (
	"fmt"
	"sort"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/studyquest/studyquest/internal/router"
	"github.com/studyquest/studyquest/internal/screen"
	"github.com/studyquest/studyquest/internal/session"
	"github.com/studyquest/studyquest/internal/ui/layout"
	"github.com/studyquest/studyquest/internal/ui/theme"
)

// SortMode orders the history list.
type SortMode int

const (
	ByNumber SortMode = iota
	ByMissed
)

type row struct {
	index int
	entry session.ScoringEntry
}

// HistoryScreen lists the scoring history of the loaded questions.
type HistoryScreen struct {
	deps   *screen.Deps
	rows   []row
	mode   SortMode
	offset int
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a HistoryScreen from the current session.
func New(deps *screen.Deps) *HistoryScreen {
	s := &HistoryScreen{deps: deps}
	s.reload()
	return s
}

func (s *HistoryScreen) reload() {
	entries := s.deps.Session.History()
	s.rows = make([]row, len(entries))
	for i, e := range entries {
		s.rows[i] = row{index: i, entry: e}
	}
	s.sort()
}

func (s *HistoryScreen) sort() {
	sort.SliceStable(s.rows, func(i, j int) bool {
		if s.mode == ByMissed && s.rows[i].entry.TimesWrong != s.rows[j].entry.TimesWrong {
			return s.rows[i].entry.TimesWrong > s.rows[j].entry.TimesWrong
		}
		return s.rows[i].index < s.rows[j].index
	})
}

// Rows returns the question indexes in display order.
func (s *HistoryScreen) Rows() []int {
	out := make([]int, len(s.rows))
	for i, r := range s.rows {
		out[i] = r.index
	}
	return out
}

func (s *HistoryScreen) Init() tea.Cmd {
	return nil
}

func (s *HistoryScreen) Title() string {
	return "Scoring History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "S", Description: "Toggle sort"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case router.ResumeMsg:
		s.reload()
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.offset > 0 {
				s.offset--
			}
		case "down", "j":
			if s.offset < len(s.rows)-1 {
				s.offset++
			}
		case "s", "S":
			if s.mode == ByNumber {
				s.mode = ByMissed
			} else {
				s.mode = ByNumber
			}
			s.offset = 0
			s.sort()
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if len(s.rows) == 0 {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Hint.Render("No scoring history yet."))
	}

	cw := min(width-8, 80)
	order := "question number"
	if s.mode == ByMissed {
		order = "most missed"
	}

	var b strings.Builder
	b.WriteString(layout.Center(theme.Subtitle.Render("Sorted by "+order), width))
	b.WriteString("\n\n")

	rows := max(height-4, 1)
	end := min(s.offset+rows, len(s.rows))
	for _, r := range s.rows[s.offset:end] {
		q := r.entry.Question
		prompt, num := "", fmt.Sprint(r.index+1)
		if q != nil {
			prompt, num = q.Prompt(), q.Num()
		}

		missed := theme.Correct.Render("never missed")
		if r.entry.TimesWrong > 0 {
			missed = theme.Incorrect.Render(fmt.Sprintf("missed %d×", r.entry.TimesWrong))
		}

		text := lipgloss.NewStyle().Width(cw - 16).MaxHeight(1).Render(fmt.Sprintf("%s. %s", num, prompt))
		line := lipgloss.JoinHorizontal(lipgloss.Top, text, lipgloss.NewStyle().Width(16).Align(lipgloss.Right).Render(missed))
		b.WriteString(layout.Center(line, width))
		b.WriteString("\n")
	}
	return b.String()
}
