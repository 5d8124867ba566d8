// Package session holds the quiz state shared by the TUI and the HTTP API:
// the current questions, the learner's answers, and the scoring history.
package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/studyquest/studyquest/internal/questiongen"
	"github.com/studyquest/studyquest/internal/quiz"
)

var (
	ErrIndexOutOfRange = errors.New("question index out of range")
	ErrNoQuestions     = errors.New("no questions loaded")
	ErrInvalidImport   = errors.New("invalid import file")
	ErrInvalidQuestion = errors.New("question is incomplete")
)

// ScoringEntry tracks how often the question at one index was missed.
type ScoringEntry struct {
	Question   quiz.Question
	TimesWrong int
}

// Outcome is the graded result for one question of a submission.
type Outcome struct {
	Index      int
	Question   quiz.Question
	Answer     string
	Correct    bool
	TimesWrong int
}

// Session is the quiz state for one user. It is safe for concurrent use.
type Session struct {
	mu        sync.RWMutex
	questions []quiz.Question
	answers   []string
	history   []ScoringEntry
	outcomes  []Outcome
	editMode  bool
}

// New returns an empty session.
func New() *Session {
	return &Session{}
}

// Load replaces the question set. Questions are copied and numbered
// "1".."N"; answers, the last submission and the scoring history reset,
// and the session leaves edit mode.
func (s *Session) Load(qs []quiz.Question) {
	cp := cloneAll(qs)
	questiongen.Number(cp)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions = cp
	s.answers = make([]string, len(cp))
	s.outcomes = nil
	s.history = newHistory(cp)
	s.editMode = false
}

// Len returns the number of loaded questions.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.questions)
}

// Questions returns a copy of the current questions.
func (s *Session) Questions() []quiz.Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.questions)
}

// Question returns a copy of the question at i.
func (s *Session) Question(i int) (quiz.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkIndex(i); err != nil {
		return nil, err
	}
	return quiz.Clone(s.questions[i]), nil
}

// SetAnswer records the learner's answer for question i.
func (s *Session) SetAnswer(i int, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIndex(i); err != nil {
		return err
	}
	s.answers[i] = answer
	return nil
}

// Answers returns a copy of the recorded answers, "" where unanswered.
func (s *Session) Answers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.answers...)
}

// Submit grades every question against the recorded answers. Each wrong
// or unanswered question increments its times_wrong counter by one.
func (s *Session) Submit() ([]Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.questions) == 0 {
		return nil, ErrNoQuestions
	}
	if len(s.history) != len(s.questions) {
		s.history = newHistory(s.questions)
	}

	out := make([]Outcome, len(s.questions))
	for i, q := range s.questions {
		correct := quiz.Check(q, s.answers[i])
		if !correct {
			s.history[i].TimesWrong++
		}
		out[i] = Outcome{
			Index:      i,
			Question:   quiz.Clone(q),
			Answer:     s.answers[i],
			Correct:    correct,
			TimesWrong: s.history[i].TimesWrong,
		}
	}
	s.outcomes = out
	return append([]Outcome(nil), out...), nil
}

// Outcomes returns the graded results of the last submission, if any.
func (s *Session) Outcomes() []Outcome {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Outcome(nil), s.outcomes...)
}

// History returns a copy of the scoring history, one entry per question.
func (s *Session) History() []ScoringEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ScoringEntry, len(s.history))
	for i, e := range s.history {
		out[i] = ScoringEntry{Question: quiz.Clone(e.Question), TimesWrong: e.TimesWrong}
	}
	return out
}

// Replace swaps the question at i for an edited version. The question
// number and the times_wrong counter are kept.
func (s *Session) Replace(i int, q quiz.Question) error {
	if !quiz.Complete(q) {
		return ErrInvalidQuestion
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIndex(i); err != nil {
		return err
	}

	cp := quiz.Clone(q)
	cp.SetNum(s.questions[i].Num())
	s.questions[i] = cp
	if i < len(s.history) {
		s.history[i].Question = quiz.Clone(cp)
	}
	return nil
}

// EditMode reports whether questions are being edited instead of answered.
func (s *Session) EditMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.editMode
}

// SetEditMode switches between answering and editing.
func (s *Session) SetEditMode(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editMode = on
}

func (s *Session) checkIndex(i int) error {
	if i < 0 || i >= len(s.questions) {
		return fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, i, len(s.questions))
	}
	return nil
}

func newHistory(qs []quiz.Question) []ScoringEntry {
	h := make([]ScoringEntry, len(qs))
	for i, q := range qs {
		h[i] = ScoringEntry{Question: quiz.Clone(q)}
	}
	return h
}

func cloneAll(qs []quiz.Question) []quiz.Question {
	out := make([]quiz.Question, len(qs))
	for i, q := range qs {
		out[i] = quiz.Clone(q)
	}
	return out
}
