// Package transfer saves the session to a JSON file and loads it back.
package transfer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/studyquest/studyquest/internal/router"
	"github.com/studyquest/studyquest/internal/screen"
	"github.com/studyquest/studyquest/internal/session"
	"github.com/studyquest/studyquest/internal/ui/components"
	"github.com/studyquest/studyquest/internal/ui/layout"
	"github.com/studyquest/studyquest/internal/ui/theme"
)

// Direction selects export or import.
type Direction int

const (
	Export Direction = iota
	Import
)

type doneMsg struct {
	path string
	err  error
}

// TransferScreen asks for a file path and runs the export or import.
type TransferScreen struct {
	deps   *screen.Deps
	dir    Direction
	input  components.TextInput
	busy   bool
	done   bool
	status string
	errMsg string
}

var _ screen.Screen = (*TransferScreen)(nil)
var _ screen.KeyHintProvider = (*TransferScreen)(nil)

// NewExport creates the export screen.
func NewExport(deps *screen.Deps) *TransferScreen {
	return newScreen(deps, Export, "Export to file")
}

// NewImport creates the import screen.
func NewImport(deps *screen.Deps) *TransferScreen {
	return newScreen(deps, Import, "Import from file")
}

func newScreen(deps *screen.Deps, dir Direction, label string) *TransferScreen {
	path := deps.ExportPath
	if path == "" {
		path = session.DefaultExportFile
	}
	in := components.NewTextInput(label, session.DefaultExportFile, false, 0)
	in.SetValue(path)
	return &TransferScreen{deps: deps, dir: dir, input: in}
}

func (s *TransferScreen) Init() tea.Cmd {
	return s.input.Focus()
}

func (s *TransferScreen) Title() string {
	if s.dir == Import {
		return "Import"
	}
	return "Export"
}

func (s *TransferScreen) KeyHints() []layout.KeyHint {
	if s.done {
		return []layout.KeyHint{{Key: "Enter", Description: "Back"}}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: s.Title()},
		{Key: "Esc", Description: "Cancel"},
	}
}

func (s *TransferScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		s.busy = false
		log := s.deps.Logger()
		if msg.err != nil {
			log.Warn("session transfer failed", zap.String("path", msg.path), zap.Error(msg.err))
			s.errMsg = msg.err.Error()
			return s, nil
		}
		log.Info("session transfer complete", zap.String("path", msg.path), zap.Int("questions", s.deps.Session.Len()))
		s.done = true
		s.errMsg = ""
		if s.dir == Import {
			s.status = fmt.Sprintf("Loaded %d questions from %s", s.deps.Session.Len(), msg.path)
		} else {
			s.status = fmt.Sprintf("Saved %d questions to %s", s.deps.Session.Len(), msg.path)
		}
		return s, nil

	case tea.KeyMsg:
		if s.busy {
			return s, nil
		}
		if msg.String() == "enter" {
			if s.done {
				return s, func() tea.Msg { return router.PopScreenMsg{} }
			}
			path := strings.TrimSpace(s.input.Value())
			if path == "" {
				s.errMsg = "enter a file path"
				return s, nil
			}
			s.busy = true
			return s, s.run(path)
		}
	}

	if s.done {
		return s, nil
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *TransferScreen) run(path string) tea.Cmd {
	sess, dir := s.deps.Session, s.dir
	return func() tea.Msg {
		if dir == Import {
			return doneMsg{path: path, err: importFile(sess, path)}
		}
		return doneMsg{path: path, err: exportFile(sess, path)}
	}
}

// exportFile writes the session to path, creating parent directories.
func exportFile(sess *session.Session, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := sess.Export(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func importFile(sess *session.Session, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()
	return sess.Import(f)
}

func (s *TransferScreen) View(width, height int) string {
	cw := min(width-4, 72)

	var b strings.Builder
	b.WriteString(s.input.View())
	b.WriteString("\n")

	switch {
	case s.busy:
		b.WriteString("\n" + theme.Hint.Render("Working..."))
	case s.errMsg != "":
		b.WriteString("\n" + theme.ErrorText.Width(cw-6).Render(s.errMsg))
	case s.status != "":
		b.WriteString("\n" + theme.Correct.Render(s.status))
	case s.dir == Import:
		b.WriteString("\n" + theme.Warning.Render("Importing replaces the current questions and history."))
	}

	card := theme.Card.Width(cw).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
