package questiongen

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyquest/studyquest/internal/chunker"
	"github.com/studyquest/studyquest/internal/llm"
	"github.com/studyquest/studyquest/internal/quiz"
	"github.com/studyquest/studyquest/internal/store"
)

// fixedSplitter cuts text into n equal chunks.
func fixedSplitter(n int) SplitFunc {
	return func(text string) ([]chunker.Chunk, error) {
		size := (len(text) + n - 1) / n
		var out []chunker.Chunk
		for i := 0; i < n; i++ {
			end := min((i+1)*size, len(text))
			out = append(out, chunker.Chunk{Index: i, Text: text[i*size : end]})
		}
		return out, nil
	}
}

type recordingRuns struct {
	mu   sync.Mutex
	runs []store.GenerationRunData
	llm  []store.LLMRequestEventData
}

func (r *recordingRuns) AppendLLMRequest(_ context.Context, d store.LLMRequestEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.llm = append(r.llm, d)
	return nil
}

func (r *recordingRuns) AppendGenerationRun(_ context.Context, d store.GenerationRunData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, d)
	return nil
}

func TestRunStopsOnceQuotaIsMet(t *testing.T) {
	text := strings.Repeat("a", 20000)
	requested := quiz.Quota{quiz.MultipleChoiceType: 2, quiz.IdentificationType: 1, quiz.TrueFalseType: 1}

	mock := llm.NewMockProvider(
		llm.MockResponse{Text: array(mcItem("m1"), idItem("i1"), tfItem("t1"))},
		llm.MockResponse{Text: array(mcItem("m2"))},
		llm.MockResponse{Text: array(mcItem("should not be requested"))},
	)
	runs := &recordingRuns{}
	orch, err := NewOrchestrator(mock, DefaultConfig(),
		WithSplitter(fixedSplitter(3)),
		WithEventRepo(runs, "mock"))
	require.NoError(t, err)

	var progress []Progress
	res, err := orch.Run(context.Background(), Input{Text: text, Quota: requested}, func(p Progress) {
		progress = append(progress, p)
	})
	require.NoError(t, err)

	assert.Equal(t, 3, res.ChunksTotal)
	assert.Equal(t, 2, res.ChunksProcessed)
	assert.Equal(t, 2, mock.CallCount(), "chunk 3 is skipped")
	assert.Equal(t, requested, res.Generated)
	assert.NotEmpty(t, res.RunID)

	prompts := mock.Prompts()
	assert.Contains(t, prompts[0], "Multiple Choice: 1 questions")
	assert.Contains(t, prompts[0], "Identification: 1 questions")
	assert.Contains(t, prompts[0], "True or False: 1 questions")
	assert.Contains(t, prompts[1], "Multiple Choice: 1 questions")
	assert.Contains(t, prompts[1], "Identification: 0 questions")
	assert.Contains(t, prompts[1], "True or False: 0 questions")

	// Chunk order, then model order.
	var order []string
	for _, q := range res.Questions {
		order = append(order, q.Prompt())
	}
	assert.Equal(t, []string{"m1", "i1", "t1", "m2"}, order)

	require.Len(t, progress, 2)
	assert.Equal(t, Progress{Chunk: 1, Chunks: 3, Generated: quiz.Quota{
		quiz.MultipleChoiceType: 1, quiz.IdentificationType: 1, quiz.TrueFalseType: 1,
	}}, progress[0])
	assert.Equal(t, 2, progress[1].Chunk)

	require.Len(t, runs.runs, 1)
	run := runs.runs[0]
	assert.Equal(t, res.RunID, run.RunID)
	assert.Equal(t, "mock", run.Provider)
	assert.Equal(t, 2, run.ChunksProcessed)
	assert.Equal(t, 2, run.Requested["multiple_choice"])
	assert.Equal(t, 1, run.Requested["true_false"])
}

// studyText returns n runes of plain prose.
func studyText(n int) string {
	text := strings.Repeat("The cell is the basic unit of life. ", n/36+1)
	return string([]rune(text)[:n])
}

func TestRunSplitsDocumentWithConfiguredChunker(t *testing.T) {
	requested := quiz.Quota{quiz.MultipleChoiceType: 2, quiz.IdentificationType: 1, quiz.TrueFalseType: 1}

	mock := llm.NewMockProvider(
		llm.MockResponse{Text: array(mcItem("m1"), idItem("i1"), tfItem("t1"))},
		llm.MockResponse{Text: array(mcItem("m2"))},
		llm.MockResponse{Text: array(mcItem("should not be requested"))},
	)
	orch, err := NewOrchestrator(mock, DefaultConfig())
	require.NoError(t, err)

	res, err := orch.Run(context.Background(), Input{Text: studyText(20000), Quota: requested}, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, res.ChunksTotal)
	assert.Equal(t, 2, res.ChunksProcessed)
	assert.Equal(t, 2, mock.CallCount())
	assert.Equal(t, requested, res.Generated)

	prompts := mock.Prompts()
	require.Len(t, prompts, 2)
	assert.Contains(t, prompts[0], "Multiple Choice: 1 questions")
	assert.Contains(t, prompts[0], "Identification: 1 questions")
	assert.Contains(t, prompts[0], "True or False: 1 questions")
	assert.Contains(t, prompts[1], "Multiple Choice: 1 questions")
	assert.Contains(t, prompts[1], "Identification: 0 questions")
	assert.Contains(t, prompts[1], "True or False: 0 questions")
}

func TestRunToleratesEmptyChunks(t *testing.T) {
	mock := llm.NewMockProvider(
		// chunk 1: every attempt fails
		llm.MockResponse{Text: "x"},
		llm.MockResponse{Text: "y"},
		llm.MockResponse{Text: "z"},
		// chunk 2
		llm.MockResponse{Text: array(tfItem("t2"))},
	)
	orch, err := NewOrchestrator(mock, DefaultConfig(), WithSplitter(fixedSplitter(2)))
	require.NoError(t, err)

	res, err := orch.Run(context.Background(), Input{Text: "abcdef", Quota: quiz.Quota{quiz.TrueFalseType: 2}}, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, res.ChunksProcessed)
	assert.Equal(t, 1, res.Generated[quiz.TrueFalseType], "under-delivery is not an error")
	require.Len(t, res.Questions, 1)
	assert.Equal(t, "t2", res.Questions[0].Prompt())
}

func TestRunEmptyText(t *testing.T) {
	mock := llm.NewMockProvider()
	orch, err := NewOrchestrator(mock, DefaultConfig())
	require.NoError(t, err)

	res, err := orch.Run(context.Background(), Input{Text: " \n\t ", Quota: quiz.Quota{quiz.TrueFalseType: 1}}, nil)
	require.NoError(t, err)
	assert.Zero(t, res.ChunksTotal)
	assert.Empty(t, res.Questions)
	assert.Zero(t, mock.CallCount())
}

func TestRunZeroQuota(t *testing.T) {
	mock := llm.NewMockProvider()
	orch, err := NewOrchestrator(mock, DefaultConfig())
	require.NoError(t, err)

	res, err := orch.Run(context.Background(), Input{Text: "Some notes.", Quota: quiz.Quota{}}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ChunksTotal)
	assert.Empty(t, res.Questions)
	assert.Zero(t, mock.CallCount())
}

func TestRunRejectsNegativeQuota(t *testing.T) {
	orch, err := NewOrchestrator(llm.NewMockProvider(), DefaultConfig())
	require.NoError(t, err)

	_, err = orch.Run(context.Background(), Input{Text: "t", Quota: quiz.Quota{quiz.TrueFalseType: -1}}, nil)
	assert.Error(t, err)
}

func TestRunUsesChunkerForShortText(t *testing.T) {
	text := "Mitochondria are the powerhouse of the cell."
	mock := llm.NewMockProvider(llm.MockResponse{Text: array(idItem("i1"))})
	orch, err := NewOrchestrator(mock, DefaultConfig())
	require.NoError(t, err)

	res, err := orch.Run(context.Background(), Input{Text: text, Quota: quiz.Quota{quiz.IdentificationType: 1}}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ChunksTotal)
	assert.Contains(t, mock.Prompts()[0], text)
}

func TestRunTagsRequestsWithRunID(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: array(tfItem("t"))})
	events := &recordingRuns{}
	logged := llm.WithLogging(mock, "mock", events, nil)

	orch, err := NewOrchestrator(logged, DefaultConfig())
	require.NoError(t, err)

	res, err := orch.Run(context.Background(), Input{Text: "text", Quota: quiz.Quota{quiz.TrueFalseType: 1}}, nil)
	require.NoError(t, err)

	require.Len(t, events.llm, 1)
	assert.Equal(t, res.RunID, events.llm[0].RunID)
	assert.Equal(t, Purpose, events.llm[0].Purpose)
}

func TestRunCancelled(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: array(tfItem("t"))})
	orch, err := NewOrchestrator(mock, DefaultConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = orch.Run(ctx, Input{Text: "text", Quota: quiz.Quota{quiz.TrueFalseType: 1}}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNumber(t *testing.T) {
	qs := []quiz.Question{
		&quiz.TrueFalse{Question: "a", Number: "7"},
		&quiz.Identification{Question: "b", Answer: "x"},
	}
	Number(qs)
	assert.Equal(t, "1", qs[0].Num())
	assert.Equal(t, "2", qs[1].Num())
}
