package transfer

import (
	"os"
	"path/filepath"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/studyquest/studyquest/internal/quiz"
	"github.com/studyquest/studyquest/internal/screen"
	"github.com/studyquest/studyquest/internal/session"
)

func enter(s *TransferScreen) tea.Cmd {
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	return cmd
}

func TestExportThenImport(t *testing.T) {
	src := session.New()
	src.Load([]quiz.Question{&quiz.Identification{Question: "Capital of France?", Answer: "Paris"}})
	if _, err := src.Submit(); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "out", "set.json")

	exp := NewExport(&screen.Deps{Session: src, ExportPath: path})
	cmd := enter(exp)
	if cmd == nil {
		t.Fatal("expected export command")
	}
	exp.Update(cmd())
	if !exp.done || exp.errMsg != "" {
		t.Fatalf("export done=%v err=%q", exp.done, exp.errMsg)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("export file missing: %v", err)
	}

	dst := session.New()
	imp := NewImport(&screen.Deps{Session: dst, ExportPath: path})
	imp.Update(enter(imp)())
	if imp.errMsg != "" {
		t.Fatalf("import error: %s", imp.errMsg)
	}
	if dst.Len() != 1 || dst.History()[0].TimesWrong != 1 {
		t.Errorf("imported len=%d history=%+v", dst.Len(), dst.History())
	}
}

func TestImportInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"questions": [{"type_of_test": "essay"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	sess := session.New()
	imp := NewImport(&screen.Deps{Session: sess, ExportPath: path})
	imp.Update(enter(imp)())
	if imp.errMsg == "" {
		t.Error("expected import error")
	}
	if imp.done {
		t.Error("failed import should not be done")
	}
}

func TestImportMissingFile(t *testing.T) {
	imp := NewImport(&screen.Deps{Session: session.New(), ExportPath: filepath.Join(t.TempDir(), "none.json")})
	imp.Update(enter(imp)())
	if imp.errMsg == "" {
		t.Error("expected error for missing file")
	}
}

func TestDefaultPath(t *testing.T) {
	exp := NewExport(&screen.Deps{Session: session.New()})
	if exp.input.Value() != session.DefaultExportFile {
		t.Errorf("default path = %q", exp.input.Value())
	}
}
