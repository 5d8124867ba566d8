package home

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/studyquest/studyquest/internal/quiz"
	"github.com/studyquest/studyquest/internal/router"
	"github.com/studyquest/studyquest/internal/screen"
	"github.com/studyquest/studyquest/internal/screens/edit"
	"github.com/studyquest/studyquest/internal/screens/history"
	quizscreen "github.com/studyquest/studyquest/internal/screens/quiz"
	"github.com/studyquest/studyquest/internal/screens/setup"
	"github.com/studyquest/studyquest/internal/screens/transfer"
	"github.com/studyquest/studyquest/internal/ui/components"
	"github.com/studyquest/studyquest/internal/ui/theme"
)

// Menu positions of the items that need loaded questions.
const (
	itemGenerate = iota
	itemQuiz
	itemEdit
	itemHistory
	itemExport
	itemImport
	itemQuit
)

// HomeScreen is the main menu.
type HomeScreen struct {
	deps *screen.Deps
	menu components.Menu
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(deps *screen.Deps) *HomeScreen {
	push := func(factory func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd {
			return func() tea.Msg { return router.PushScreenMsg{Screen: factory()} }
		}
	}

	items := []components.MenuItem{
		itemGenerate: {Label: "Generate Questions", Action: push(func() screen.Screen { return setup.New(deps) })},
		itemQuiz:     {Label: "Take Quiz", Action: push(func() screen.Screen { return quizscreen.New(deps) })},
		itemEdit:     {Label: "Edit Questions", Action: push(func() screen.Screen { return edit.New(deps, 0) })},
		itemHistory:  {Label: "Scoring History", Action: push(func() screen.Screen { return history.New(deps) })},
		itemExport:   {Label: "Export", Action: push(func() screen.Screen { return transfer.NewExport(deps) })},
		itemImport:   {Label: "Import", Action: push(func() screen.Screen { return transfer.NewImport(deps) })},
		itemQuit:     {Label: "Quit", Action: func() tea.Cmd { return tea.Quit }},
	}

	h := &HomeScreen{deps: deps, menu: components.NewMenu(items)}
	h.refresh()
	return h
}

// refresh enables the items that need questions only when some are loaded.
func (h *HomeScreen) refresh() {
	empty := h.deps.Session.Len() == 0
	for _, i := range []int{itemQuiz, itemEdit, itemHistory, itemExport} {
		h.menu.SetDisabled(i, empty)
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if _, ok := msg.(router.ResumeMsg); ok {
		h.refresh()
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	var sections []string

	sections = append(sections, renderBanner(width))
	sections = append(sections, theme.Subtitle.Render("Turn your notes into a quiz"))
	sections = append(sections, h.renderStatus())

	if h.deps.Generator == nil && h.deps.GeneratorErr != nil {
		sections = append(sections, theme.Warning.Render("Generation disabled: "+h.deps.GeneratorErr.Error()))
	}

	sections = append(sections, theme.Card.Render(strings.TrimRight(h.menu.View(), "\n")))

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (h *HomeScreen) renderStatus() string {
	sess := h.deps.Session
	n := sess.Len()
	if n == 0 {
		return theme.Hint.Render("No questions loaded yet")
	}

	counts := quiz.Count(sess.Questions())
	parts := make([]string, 0, len(quiz.Types))
	for _, t := range quiz.Types {
		if counts[t] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counts[t], t.Label()))
		}
	}
	return theme.Body.Render(fmt.Sprintf("%d questions loaded: %s", n, strings.Join(parts, ", ")))
}

func (h *HomeScreen) Title() string {
	return "Home"
}
