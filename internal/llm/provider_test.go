package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/studyquest/studyquest/internal/store"
)

func TestMockProvider_ReturnsCannedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Text: `[1]`, Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Text: `[2]`},
	)

	resp1, err := mock.Generate(context.Background(), UserRequest("first"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp1.Text != `[1]` {
		t.Fatalf("expected [1], got %s", resp1.Text)
	}
	if resp1.Usage.InputTokens != 10 {
		t.Fatalf("expected 10 input tokens, got %d", resp1.Usage.InputTokens)
	}

	resp2, err := mock.Generate(context.Background(), UserRequest("second"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp2.Text != `[2]` {
		t.Fatalf("expected [2], got %s", resp2.Text)
	}

	if got := mock.Prompts(); len(got) != 2 || got[1] != "second" {
		t.Fatalf("unexpected prompts: %v", got)
	}
}

func TestMockProvider_EmptyQueueReturnsError(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T", err)
	}
}

func TestPurposeAndRunIDContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}
	if id := RunIDFrom(ctx); id != "" {
		t.Fatalf("expected empty run id, got %q", id)
	}

	ctx = WithRunID(WithPurpose(ctx, "question-gen"), "run-1")
	if p := PurposeFrom(ctx); p != "question-gen" {
		t.Fatalf("expected 'question-gen', got %q", p)
	}
	if id := RunIDFrom(ctx); id != "run-1" {
		t.Fatalf("expected 'run-1', got %q", id)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"gemini without key", Config{Provider: ProviderGemini}, "STUDYQUEST_GEMINI_API_KEY"},
		{"gemini with key", Config{Provider: ProviderGemini, Gemini: GeminiConfig{APIKey: "k"}}, ""},
		{"openai without key", Config{Provider: ProviderOpenAI}, "STUDYQUEST_OPENAI_API_KEY"},
		{"anthropic without key", Config{Provider: ProviderAnthropic}, "STUDYQUEST_ANTHROPIC_API_KEY"},
		{"openrouter without key", Config{Provider: ProviderOpenRouter}, "STUDYQUEST_OPENROUTER_API_KEY"},
		{"ollama needs only a model", Config{Provider: ProviderOllama, Ollama: OllamaConfig{Model: "llama3.2"}}, ""},
		{"mock needs no key", Config{Provider: ProviderMock}, ""},
		{"unknown provider", Config{Provider: "unknown"}, "unknown LLM provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestNewProvider_MissingCredential(t *testing.T) {
	cfg := DefaultConfig()
	_, err := NewProvider(context.Background(), cfg, nil, nil)
	if err == nil || !strings.Contains(err.Error(), "STUDYQUEST_GEMINI_API_KEY") {
		t.Fatalf("expected missing credential error, got %v", err)
	}
}

func TestNewProvider_Mock(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: ProviderMock}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("expected mock, got %q", p.ModelID())
	}
}

type recordingRepo struct {
	events []store.LLMRequestEventData
	err    error
}

func (r *recordingRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.events = append(r.events, data)
	return r.err
}

func (r *recordingRepo) AppendGenerationRun(context.Context, store.GenerationRunData) error {
	return nil
}

func TestLoggingProvider_RecordsEvents(t *testing.T) {
	repo := &recordingRepo{}
	mock := NewMockProvider(
		MockResponse{Text: `[]`, Usage: Usage{InputTokens: 7, OutputTokens: 3}},
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
	)
	p := WithLogging(mock, "mock", repo, zap.NewNop())

	ctx := WithRunID(WithPurpose(context.Background(), "question-gen"), "run-42")
	req := Request{System: "sys", Messages: []Message{{Role: RoleUser, Content: "hello"}}, JSON: true}

	if _, err := p.Generate(ctx, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Generate(ctx, req); err == nil {
		t.Fatal("expected error on second call")
	}

	if len(repo.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(repo.events))
	}
	ok := repo.events[0]
	if !ok.Success || ok.RunID != "run-42" || ok.Purpose != "question-gen" || ok.InputTokens != 7 {
		t.Fatalf("unexpected success event: %+v", ok)
	}
	if !strings.Contains(ok.RequestBody, "[system]\nsys") || !strings.Contains(ok.RequestBody, "[format: json]") {
		t.Fatalf("unexpected request body: %q", ok.RequestBody)
	}
	if ok.ResponseBody != `[]` {
		t.Fatalf("unexpected response body: %q", ok.ResponseBody)
	}

	failed := repo.events[1]
	if failed.Success || !strings.Contains(failed.ErrorMessage, "down") {
		t.Fatalf("unexpected failure event: %+v", failed)
	}
}

func TestLoggingProvider_RepoErrorDoesNotFailRequest(t *testing.T) {
	repo := &recordingRepo{err: errors.New("disk full")}
	p := WithLogging(NewMockProvider(MockResponse{Text: "ok"}), "mock", repo, nil)

	resp, err := p.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "ok" {
		t.Fatalf("unexpected text: %q", resp.Text)
	}
}

func TestTimeoutProvider_SetsDeadline(t *testing.T) {
	var deadlineSet bool
	inner := providerFunc(func(ctx context.Context, _ Request) (*Response, error) {
		_, deadlineSet = ctx.Deadline()
		return &Response{Text: "ok"}, nil
	})

	if _, err := WithTimeout(inner, time.Second).Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !deadlineSet {
		t.Fatal("expected a deadline on the inner context")
	}
	if _, wrapped := WithTimeout(inner, 0).(*TimeoutProvider); wrapped {
		t.Fatal("expected zero timeout to return the provider unchanged")
	}
}

type providerFunc func(context.Context, Request) (*Response, error)

func (f providerFunc) Generate(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

func (f providerFunc) ModelID() string { return "func" }

func TestSerializeRequest_Schema(t *testing.T) {
	body := serializeRequest(Request{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
		JSON:     true,
		Schema:   &Schema{Name: "quiz-single", Definition: map[string]any{"type": "object"}},
	})
	if !strings.Contains(body, "[schema: quiz-single]\n{\"type\":\"object\"}") {
		t.Fatalf("expected schema block, got %q", body)
	}
	if strings.Contains(body, "[format: json]") {
		t.Fatalf("schema should replace the json marker, got %q", body)
	}
}
