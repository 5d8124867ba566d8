package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/studyquest/studyquest/internal/quiz"
)

// DefaultExportFile is the file name used when the user does not pick one.
const DefaultExportFile = "questions_and_history.json"

// exportFile is the on-disk form:
//
//	{"questions": [...], "scoring_history": {"0": {"question": {...}, "times_wrong": 0}}}
type exportFile struct {
	Questions      quiz.List              `json:"questions"`
	ScoringHistory map[string]exportEntry `json:"scoring_history"`
}

type exportEntry struct {
	Question   json.RawMessage `json:"question"`
	TimesWrong int             `json:"times_wrong"`
}

type importFile struct {
	Questions      []json.RawMessage      `json:"questions"`
	ScoringHistory map[string]exportEntry `json:"scoring_history"`
}

// Export writes the questions and scoring history as indented JSON.
func (s *Session) Export(w io.Writer) error {
	s.mu.RLock()
	f := exportFile{
		Questions:      quiz.List(cloneAll(s.questions)),
		ScoringHistory: make(map[string]exportEntry, len(s.history)),
	}
	history := append([]ScoringEntry(nil), s.history...)
	s.mu.RUnlock()

	for i, e := range history {
		raw, err := quiz.Marshal(e.Question)
		if err != nil {
			return fmt.Errorf("scoring history %d: %w", i, err)
		}
		f.ScoringHistory[strconv.Itoa(i)] = exportEntry{Question: raw, TimesWrong: e.TimesWrong}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return nil
}

// Import replaces the session state with a previously exported file.
// Every question must be complete; on any problem the session is left
// unchanged and the error wraps ErrInvalidImport. Missing keys are
// treated as empty, and history entries missing for a question start at
// zero.
func (s *Session) Import(r io.Reader) error {
	qs, history, err := Decode(r)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions = qs
	s.answers = make([]string, len(qs))
	s.outcomes = nil
	s.history = history
	s.editMode = false
	return nil
}

// Decode parses and validates an export file without touching a session.
func Decode(r io.Reader) ([]quiz.Question, []ScoringEntry, error) {
	var f importFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}

	qs := make([]quiz.Question, 0, len(f.Questions))
	for i, raw := range f.Questions {
		q, err := quiz.Unmarshal(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: question %d: %v", ErrInvalidImport, i, err)
		}
		if !quiz.Complete(q) {
			return nil, nil, fmt.Errorf("%w: question %d is incomplete", ErrInvalidImport, i)
		}
		qs = append(qs, q)
	}

	history := newHistory(qs)
	for key, e := range f.ScoringHistory {
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= len(qs) {
			return nil, nil, fmt.Errorf("%w: scoring history key %q does not match a question", ErrInvalidImport, key)
		}
		if e.TimesWrong < 0 {
			return nil, nil, fmt.Errorf("%w: scoring history %d has negative times_wrong", ErrInvalidImport, i)
		}
		history[i].TimesWrong = e.TimesWrong

		if len(bytes.TrimSpace(e.Question)) == 0 || bytes.Equal(bytes.TrimSpace(e.Question), []byte("null")) {
			continue
		}
		q, err := quiz.Unmarshal(e.Question)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: scoring history %d: %v", ErrInvalidImport, i, err)
		}
		history[i].Question = q
	}

	return qs, history, nil
}
