package session

import "github.com/studyquest/studyquest/internal/quiz"

// TypeResult is the per-type tally of a submission.
type TypeResult struct {
	Type    quiz.Type
	Correct int
	Total   int
}

// Summary holds the data displayed after a submission.
type Summary struct {
	Total    int
	Correct  int
	Accuracy float64
	ByType   []TypeResult
}

// Summarize tallies outcomes overall and per question type. Types with no
// questions are omitted.
func Summarize(outcomes []Outcome) Summary {
	byType := map[quiz.Type]*TypeResult{}
	var sum Summary
	for _, o := range outcomes {
		t := o.Question.Type()
		r, ok := byType[t]
		if !ok {
			r = &TypeResult{Type: t}
			byType[t] = r
		}
		r.Total++
		sum.Total++
		if o.Correct {
			r.Correct++
			sum.Correct++
		}
	}

	for _, t := range quiz.Types {
		if r, ok := byType[t]; ok {
			sum.ByType = append(sum.ByType, *r)
		}
	}
	if sum.Total > 0 {
		sum.Accuracy = float64(sum.Correct) / float64(sum.Total)
	}
	return sum
}

// Score summarizes the last submission. It is zero before any submission.
func (s *Session) Score() Summary {
	return Summarize(s.Outcomes())
}
