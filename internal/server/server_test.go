package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/studyquest/studyquest/internal/questiongen"
	"github.com/studyquest/studyquest/internal/quiz"
	"github.com/studyquest/studyquest/internal/session"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Run(ctx context.Context, in questiongen.Input, onProgress func(questiongen.Progress)) (*questiongen.Result, error) {
	args := m.Called(ctx, in, onProgress)
	res, _ := args.Get(0).(*questiongen.Result)
	return res, args.Error(1)
}

func sampleQuestions() []quiz.Question {
	return []quiz.Question{
		&quiz.MultipleChoice{
			Question: "Which planet is largest?",
			Choices:  quiz.Choices{A: "Mars", B: "Jupiter", C: "Venus", D: "Earth"},
			Answer:   "b",
		},
		&quiz.TrueFalse{Question: "Water boils at 100C at sea level.", Answer: true},
	}
}

func newTestServer(t *testing.T, gen Generator) (*Server, *session.Session) {
	t.Helper()
	sess := session.New()
	return New(Config{}, sess, gen, nil), sess
}

func do(t *testing.T, s *Server, method, path string, body io.Reader, contentType string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, nil)
	resp := do(t, s, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGenerateJSON(t *testing.T) {
	gen := &mockGenerator{}
	numbered := sampleQuestions()
	questiongen.Number(numbered)
	gen.On("Run", mock.Anything, mock.MatchedBy(func(in questiongen.Input) bool {
		return in.Text == "The solar system has eight planets." &&
			in.Quota[quiz.MultipleChoiceType] == 1 &&
			in.Quota[quiz.TrueFalseType] == 1 &&
			in.Notes == "focus on planets"
	}), mock.Anything).Return(&questiongen.Result{
		Questions:       numbered,
		Generated:       quiz.Quota{quiz.MultipleChoiceType: 1, quiz.TrueFalseType: 1},
		ChunksTotal:     1,
		ChunksProcessed: 1,
		RunID:           "run-1",
	}, nil)

	s, sess := newTestServer(t, gen)
	body := `{"text": "The solar system has eight planets.", "multiple_choice": 1, "true_false": 1, "notes": "focus on planets"}`
	resp := do(t, s, http.MethodPost, "/api/generate", strings.NewReader(body), "application/json")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := decode[GenerateResponse](t, resp)
	assert.Equal(t, "run-1", got.RunID)
	require.Len(t, got.Questions, 2)
	assert.Equal(t, "1", got.Questions[0].Num())
	assert.Equal(t, map[string]int{"multiple_choice": 1, "identification": 0, "true_false": 1}, got.Generated)
	assert.Equal(t, 2, sess.Len())
	gen.AssertExpectations(t)
}

func TestGenerateMultipart(t *testing.T) {
	gen := &mockGenerator{}
	gen.On("Run", mock.Anything, mock.MatchedBy(func(in questiongen.Input) bool {
		return in.Text == "Mitochondria make ATP." && in.Quota[quiz.IdentificationType] == 2
	}), mock.Anything).Return(&questiongen.Result{
		Questions: []quiz.Question{&quiz.Identification{Question: "Powerhouse of the cell?", Answer: "Mitochondria"}},
		Generated: quiz.Quota{quiz.IdentificationType: 1},
	}, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("identification", "2"))
	fw, err := mw.CreateFormFile("files", "notes.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("Mitochondria make ATP."))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	s, sess := newTestServer(t, gen)
	resp := do(t, s, http.MethodPost, "/api/generate", &buf, mw.FormDataContentType())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, sess.Len())
	gen.AssertExpectations(t)
}

func TestGenerateErrors(t *testing.T) {
	t.Run("no generator", func(t *testing.T) {
		s, _ := newTestServer(t, nil)
		resp := do(t, s, http.MethodPost, "/api/generate", strings.NewReader(`{"text": "x"}`), "application/json")
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "GENERATION_UNAVAILABLE", decode[ErrorResponse](t, resp).Code)
	})

	t.Run("empty text", func(t *testing.T) {
		s, _ := newTestServer(t, &mockGenerator{})
		resp := do(t, s, http.MethodPost, "/api/generate", strings.NewReader(`{"text": "  "}`), "application/json")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("negative count", func(t *testing.T) {
		s, _ := newTestServer(t, &mockGenerator{})
		resp := do(t, s, http.MethodPost, "/api/generate", strings.NewReader(`{"text": "x", "true_false": -1}`), "application/json")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("generator failure", func(t *testing.T) {
		gen := &mockGenerator{}
		gen.On("Run", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("boom"))
		s, sess := newTestServer(t, gen)
		sess.Load(sampleQuestions())

		resp := do(t, s, http.MethodPost, "/api/generate", strings.NewReader(`{"text": "x", "true_false": 1}`), "application/json")
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		got := decode[ErrorResponse](t, resp)
		assert.Equal(t, "INTERNAL_ERROR", got.Code)
		assert.NotContains(t, got.Message, "boom")
		assert.Equal(t, 2, sess.Len(), "previous questions kept")
	})
}

func TestAnswerAndSubmit(t *testing.T) {
	s, sess := newTestServer(t, nil)
	sess.Load(sampleQuestions())

	resp := do(t, s, http.MethodPut, "/api/answers/0", strings.NewReader(`{"answer": "b"}`), "application/json")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, s, http.MethodPut, "/api/answers/7", strings.NewReader(`{"answer": "a"}`), "application/json")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, s, http.MethodPost, "/api/submit", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[SubmitResponse](t, resp)
	require.Len(t, got.Outcomes, 2)
	assert.True(t, got.Outcomes[0].Correct)
	assert.False(t, got.Outcomes[1].Correct)
	assert.Equal(t, "True", got.Outcomes[1].Expected)
	assert.Equal(t, 1, got.Score.Correct)
	assert.Equal(t, 2, got.Score.Total)

	resp = do(t, s, http.MethodGet, "/api/history", nil, "")
	hist := decode[HistoryResponse](t, resp)
	require.Len(t, hist.History, 2)
	assert.Equal(t, 0, hist.History[0].TimesWrong)
	assert.Equal(t, 1, hist.History[1].TimesWrong)
}

func TestSubmitWithoutQuestions(t *testing.T) {
	s, _ := newTestServer(t, nil)
	resp := do(t, s, http.MethodPost, "/api/submit", nil, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "NO_QUESTIONS", decode[ErrorResponse](t, resp).Code)
}

func TestReplaceQuestion(t *testing.T) {
	s, sess := newTestServer(t, nil)
	sess.Load(sampleQuestions())

	body := `{"type_of_test": "true_false", "question": "Ice is colder than steam.", "answer": true}`
	resp := do(t, s, http.MethodPut, "/api/questions/1", strings.NewReader(body), "application/json")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	q, err := sess.Question(1)
	require.NoError(t, err)
	assert.Equal(t, "Ice is colder than steam.", q.Prompt())
	assert.Equal(t, "2", q.Num())

	resp = do(t, s, http.MethodPut, "/api/questions/1", strings.NewReader(`{"type_of_test": "true_false", "question": ""}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, s, http.MethodPut, "/api/questions/x", strings.NewReader(body), "application/json")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEditMode(t *testing.T) {
	s, sess := newTestServer(t, nil)
	resp := do(t, s, http.MethodPut, "/api/edit-mode", strings.NewReader(`{"edit_mode": true}`), "application/json")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, sess.EditMode())

	resp = do(t, s, http.MethodGet, "/api/questions", nil, "")
	assert.True(t, decode[QuestionsResponse](t, resp).EditMode)
}

func TestExportImport(t *testing.T) {
	s, sess := newTestServer(t, nil)
	sess.Load(sampleQuestions())
	_, err := sess.Submit()
	require.NoError(t, err)

	resp := do(t, s, http.MethodGet, "/api/export", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), session.DefaultExportFile)
	exported, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	other, otherSess := newTestServer(t, nil)
	resp = do(t, other, http.MethodPost, "/api/import", bytes.NewReader(exported), "application/json")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, sess.History(), otherSess.History())

	resp = do(t, other, http.MethodPost, "/api/import", strings.NewReader(`{"questions": [{"type_of_test": "essay"}]}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_IMPORT", decode[ErrorResponse](t, resp).Code)
	assert.Equal(t, 2, otherSess.Len())
}

func TestImportMultipart(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", session.DefaultExportFile)
	require.NoError(t, err)
	_, err = fw.Write([]byte(`{"questions": [{"type_of_test": "identification", "question": "H2O?", "answer": "Water"}]}`))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	s, sess := newTestServer(t, nil)
	resp := do(t, s, http.MethodPost, "/api/import", &buf, mw.FormDataContentType())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, sess.Len())
}
