package generating

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/studyquest/studyquest/internal/questiongen"
	"github.com/studyquest/studyquest/internal/quiz"
	"github.com/studyquest/studyquest/internal/router"
	"github.com/studyquest/studyquest/internal/screen"
	"github.com/studyquest/studyquest/internal/session"
)

type fakeGenerator struct {
	questions []quiz.Question
	err       error
	got       questiongen.Input
}

func (f *fakeGenerator) Run(ctx context.Context, in questiongen.Input, onProgress func(questiongen.Progress)) (*questiongen.Result, error) {
	f.got = in
	if f.err != nil {
		return nil, f.err
	}
	onProgress(questiongen.Progress{Chunk: 1, Chunks: 2, Generated: quiz.Count(f.questions)})
	return &questiongen.Result{Questions: f.questions, Generated: quiz.Count(f.questions), ChunksTotal: 2, ChunksProcessed: 1, RunID: "run"}, nil
}

func writeDoc(t *testing.T, text string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(p, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func newScreen(t *testing.T, gen *fakeGenerator, text string) (*GeneratingScreen, *screen.Deps) {
	t.Helper()
	deps := &screen.Deps{Session: session.New(), Generator: gen}
	req := Request{Paths: []string{writeDoc(t, text)}, Quota: quiz.Quota{quiz.TrueFalseType: 1}, Notes: "n"}
	return New(deps, req), deps
}

func drain(s *GeneratingScreen) []tea.Msg {
	var msgs []tea.Msg
	for {
		msg := s.wait()()
		if msg == nil {
			return msgs
		}
		msgs = append(msgs, msg)
	}
}

func TestGeneratingSuccessLoadsSession(t *testing.T) {
	gen := &fakeGenerator{questions: []quiz.Question{&quiz.TrueFalse{Question: "Sky is blue.", Answer: true}}}
	s, deps := newScreen(t, gen, "The sky is blue.")

	done := s.run()()
	for _, msg := range drain(s) {
		s.Update(msg)
	}
	if s.progress.Chunk != 1 || s.progress.Chunks != 2 {
		t.Errorf("progress = %+v, want chunk 1 of 2", s.progress)
	}
	if gen.got.Text != "The sky is blue." || gen.got.Notes != "n" {
		t.Errorf("generator input = %+v", gen.got)
	}

	_, cmd := s.Update(done)
	if cmd == nil {
		t.Fatal("expected a navigation command")
	}
	if _, ok := cmd().(router.ReplaceScreenMsg); !ok {
		t.Error("expected ReplaceScreenMsg to the quiz screen")
	}
	if deps.Session.Len() != 1 {
		t.Errorf("session has %d questions, want 1", deps.Session.Len())
	}
}

func TestGeneratingFailureShowsError(t *testing.T) {
	s, deps := newScreen(t, &fakeGenerator{err: errors.New("quota exceeded")}, "text")

	s.Update(s.run()())
	if s.phase != phaseFailed {
		t.Fatalf("phase = %v, want failed", s.phase)
	}
	if s.errMsg != "quota exceeded" {
		t.Errorf("errMsg = %q", s.errMsg)
	}
	if s.HandlesEscape() {
		t.Error("finished screen should let the app handle Esc")
	}
	if deps.Session.Len() != 0 {
		t.Error("session should stay empty")
	}

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected pop on key press")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}

func TestGeneratingEmptyResult(t *testing.T) {
	s, _ := newScreen(t, &fakeGenerator{}, "text")
	s.Update(s.run()())
	if s.phase != phaseEmpty {
		t.Errorf("phase = %v, want empty", s.phase)
	}
}

func TestGeneratingBlankDocument(t *testing.T) {
	gen := &fakeGenerator{}
	s, _ := newScreen(t, gen, "   \n")
	s.Update(s.run()())
	if s.phase != phaseFailed {
		t.Errorf("phase = %v, want failed", s.phase)
	}
	if gen.got.Text != "" {
		t.Error("generator should not be called for blank documents")
	}
}

func TestGeneratingEscCancels(t *testing.T) {
	s, _ := newScreen(t, &fakeGenerator{}, "text")
	if !s.HandlesEscape() {
		t.Fatal("running screen should handle Esc")
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if s.phase != phaseCancelling {
		t.Fatalf("phase = %v, want cancelling", s.phase)
	}
	if s.ctx.Err() == nil {
		t.Error("expected context to be cancelled")
	}

	_, cmd := s.Update(doneMsg{err: context.Canceled})
	if cmd == nil {
		t.Fatal("expected pop after cancellation")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}

func TestGeneratingView(t *testing.T) {
	s, _ := newScreen(t, &fakeGenerator{}, "text")
	s.phase = phaseGenerating
	s.progress = questiongen.Progress{Chunk: 1, Chunks: 3, Generated: quiz.Quota{quiz.TrueFalseType: 1}}
	if view := s.View(100, 30); view == "" {
		t.Error("expected non-empty view")
	}
}
