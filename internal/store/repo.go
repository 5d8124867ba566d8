package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	Purpose string    // exact purpose match when set
	RunID   string    // exact run match when set
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
}

// LLMRequestEventData captures a single model request.
type LLMRequestEventData struct {
	RunID        string
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored model request.
type LLMEvent struct {
	ID        int
	Timestamp time.Time
	LLMRequestEventData
}

// GenerationRunData summarises one question generation run.
type GenerationRunData struct {
	RunID           string
	Provider        string
	Model           string
	ChunksTotal     int
	ChunksProcessed int
	Requested       map[string]int
	Generated       map[string]int
	Duration        time.Duration
}

// GenerationRun is a stored run summary.
type GenerationRun struct {
	ID        int
	Timestamp time.Time
	GenerationRunData
}

// PurposeUsage aggregates token usage per purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates token usage per model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append access to diagnostic events.
type EventRepo interface {
	// AppendLLMRequest records a model API call.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// AppendGenerationRun records the summary of a generation run.
	AppendGenerationRun(ctx context.Context, data GenerationRunData) error
}

// Discard is an EventRepo that drops everything.
var Discard EventRepo = discard{}

type discard struct{}

func (discard) AppendLLMRequest(context.Context, LLMRequestEventData) error { return nil }
func (discard) AppendGenerationRun(context.Context, GenerationRunData) error { return nil }
