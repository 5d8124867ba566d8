package edit

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/studyquest/studyquest/internal/quiz"
	"github.com/studyquest/studyquest/internal/router"
	"github.com/studyquest/studyquest/internal/screen"
	"github.com/studyquest/studyquest/internal/session"
)

func newDeps() *screen.Deps {
	sess := session.New()
	sess.Load([]quiz.Question{
		&quiz.MultipleChoice{
			Question: "Largest planet?",
			Choices:  quiz.Choices{A: "Mars", B: "Jupiter", C: "Venus", D: "Earth"},
			Answer:   "b",
		},
		&quiz.TrueFalse{Question: "Pluto is a planet.", Answer: false},
	})
	return &screen.Deps{Session: sess}
}

func ctrl(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Mod: tea.ModCtrl}
}

func TestEditFieldsPerType(t *testing.T) {
	deps := newDeps()
	s := New(deps, 0)
	if len(s.fields) != 6 {
		t.Fatalf("multiple choice fields = %d, want 6", len(s.fields))
	}
	if s.fields[2].Value() != "Jupiter" || s.fields[5].Value() != "b" {
		t.Errorf("fields not populated: %q %q", s.fields[2].Value(), s.fields[5].Value())
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyPgDown})
	if s.index != 1 || len(s.fields) != 2 {
		t.Fatalf("index=%d fields=%d, want 1 and 2", s.index, len(s.fields))
	}
	if s.fields[1].Value() != "false" {
		t.Errorf("answer field = %q, want false", s.fields[1].Value())
	}
}

func TestEditSaveKeepsNumber(t *testing.T) {
	deps := newDeps()
	s := New(deps, 1)
	s.Init()
	if !deps.Session.EditMode() {
		t.Error("expected edit mode on")
	}

	s.fields[0].SetValue("Pluto is a dwarf planet.")
	s.fields[1].SetValue("yes")
	s.Update(ctrl('s'))
	if s.errMsg != "" {
		t.Fatalf("save failed: %s", s.errMsg)
	}

	q, err := deps.Session.Question(1)
	if err != nil {
		t.Fatal(err)
	}
	tf, ok := q.(*quiz.TrueFalse)
	if !ok {
		t.Fatalf("question type = %T", q)
	}
	if tf.Question != "Pluto is a dwarf planet." || !tf.Answer || tf.Number != "2" {
		t.Errorf("saved question = %+v", tf)
	}
}

func TestEditRejectsInvalid(t *testing.T) {
	deps := newDeps()
	s := New(deps, 0)

	s.fields[5].SetValue("e")
	s.Update(ctrl('s'))
	if s.errMsg == "" {
		t.Error("expected error for answer letter e")
	}

	q, _ := deps.Session.Question(0)
	if q.(*quiz.MultipleChoice).Answer != "b" {
		t.Error("session must keep the original question")
	}

	s.fields[5].SetValue("c")
	s.fields[3].SetValue("")
	s.Update(ctrl('s'))
	if s.errMsg == "" {
		t.Error("expected error for empty choice")
	}
}

func TestEditBadBoolean(t *testing.T) {
	s := New(newDeps(), 1)
	s.fields[1].SetValue("maybe")
	if _, err := s.Question(); err == nil {
		t.Error("expected error for non-boolean answer")
	}
}

func TestEditEscLeavesEditMode(t *testing.T) {
	deps := newDeps()
	s := New(deps, 0)
	s.Init()

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if deps.Session.EditMode() {
		t.Error("expected edit mode off after Esc")
	}
	if cmd == nil {
		t.Fatal("expected pop command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}
