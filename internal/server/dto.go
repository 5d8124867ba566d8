package server

import (
	"github.com/studyquest/studyquest/internal/quiz"
	"github.com/studyquest/studyquest/internal/session"
)

// GenerateRequest is the JSON body of POST /api/generate. Multipart
// uploads use the same names as form fields plus "files".
type GenerateRequest struct {
	Text           string `json:"text" form:"text"`
	MultipleChoice int    `json:"multiple_choice" form:"multiple_choice"`
	Identification int    `json:"identification" form:"identification"`
	TrueFalse      int    `json:"true_false" form:"true_false"`
	Notes          string `json:"notes" form:"notes"`
}

func (r GenerateRequest) quota() quiz.Quota {
	return quiz.Quota{
		quiz.MultipleChoiceType: r.MultipleChoice,
		quiz.IdentificationType: r.Identification,
		quiz.TrueFalseType:      r.TrueFalse,
	}
}

type GenerateResponse struct {
	RunID           string         `json:"run_id"`
	Questions       quiz.List      `json:"questions"`
	Generated       map[string]int `json:"generated"`
	ChunksTotal     int            `json:"chunks_total"`
	ChunksProcessed int            `json:"chunks_processed"`
}

type QuestionsResponse struct {
	Questions quiz.List `json:"questions"`
	Answers   []string  `json:"answers"`
	EditMode  bool      `json:"edit_mode"`
}

type AnswerRequest struct {
	Answer string `json:"answer"`
}

type EditModeRequest struct {
	EditMode bool `json:"edit_mode"`
}

type OutcomeResponse struct {
	Index      int    `json:"index"`
	Number     string `json:"question_number"`
	Answer     string `json:"answer"`
	Expected   string `json:"expected"`
	Correct    bool   `json:"correct"`
	TimesWrong int    `json:"times_wrong"`
}

type TypeScore struct {
	Type    string `json:"type_of_test"`
	Correct int    `json:"correct"`
	Total   int    `json:"total"`
}

type ScoreResponse struct {
	Correct  int         `json:"correct"`
	Total    int         `json:"total"`
	Accuracy float64     `json:"accuracy"`
	ByType   []TypeScore `json:"by_type"`
}

type SubmitResponse struct {
	Outcomes []OutcomeResponse `json:"outcomes"`
	Score    ScoreResponse     `json:"score"`
}

type HistoryEntry struct {
	Index      int    `json:"index"`
	Number     string `json:"question_number"`
	Question   string `json:"question"`
	TimesWrong int    `json:"times_wrong"`
}

type HistoryResponse struct {
	History []HistoryEntry `json:"scoring_history"`
}

func toScore(s session.Summary) ScoreResponse {
	out := ScoreResponse{Correct: s.Correct, Total: s.Total, Accuracy: s.Accuracy, ByType: []TypeScore{}}
	for _, r := range s.ByType {
		out.ByType = append(out.ByType, TypeScore{Type: string(r.Type), Correct: r.Correct, Total: r.Total})
	}
	return out
}

func quotaMap(q quiz.Quota) map[string]int {
	out := make(map[string]int, len(quiz.Types))
	for _, t := range quiz.Types {
		out[string(t)] = q[t]
	}
	return out
}
