package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// Events implements EventRepo and the read queries used by the llm
// inspection commands.
type Events struct {
	db *sqlx.DB
}

var _ EventRepo = (*Events)(nil)

type llmEventRow struct {
	ID           int    `db:"id"`
	RunID        string `db:"run_id"`
	CreatedAt    int64  `db:"created_at"`
	Provider     string `db:"provider"`
	Model        string `db:"model"`
	Purpose      string `db:"purpose"`
	InputTokens  int    `db:"input_tokens"`
	OutputTokens int    `db:"output_tokens"`
	LatencyMs    int64  `db:"latency_ms"`
	Success      bool   `db:"success"`
	ErrorMessage string `db:"error_message"`
	RequestBody  string `db:"request_body"`
	ResponseBody string `db:"response_body"`
}

func (r llmEventRow) event() LLMEvent {
	return LLMEvent{
		ID:        r.ID,
		Timestamp: time.UnixMilli(r.CreatedAt).UTC(),
		LLMRequestEventData: LLMRequestEventData{
			RunID:        r.RunID,
			Provider:     r.Provider,
			Model:        r.Model,
			Purpose:      r.Purpose,
			InputTokens:  r.InputTokens,
			OutputTokens: r.OutputTokens,
			LatencyMs:    r.LatencyMs,
			Success:      r.Success,
			ErrorMessage: r.ErrorMessage,
			RequestBody:  r.RequestBody,
			ResponseBody: r.ResponseBody,
		},
	}
}

type runRow struct {
	ID              int    `db:"id"`
	RunID           string `db:"run_id"`
	CreatedAt       int64  `db:"created_at"`
	Provider        string `db:"provider"`
	Model           string `db:"model"`
	ChunksTotal     int    `db:"chunks_total"`
	ChunksProcessed int    `db:"chunks_processed"`
	Requested       string `db:"requested"`
	Generated       string `db:"generated"`
	DurationMs      int64  `db:"duration_ms"`
}

func (e *Events) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	row := llmEventRow{
		RunID:        data.RunID,
		CreatedAt:    time.Now().UnixMilli(),
		Provider:     data.Provider,
		Model:        data.Model,
		Purpose:      data.Purpose,
		InputTokens:  data.InputTokens,
		OutputTokens: data.OutputTokens,
		LatencyMs:    data.LatencyMs,
		Success:      data.Success,
		ErrorMessage: data.ErrorMessage,
		RequestBody:  data.RequestBody,
		ResponseBody: data.ResponseBody,
	}

	_, err := e.db.NamedExecContext(ctx, `INSERT INTO llm_request_events
		(run_id, created_at, provider, model, purpose, input_tokens, output_tokens,
		 latency_ms, success, error_message, request_body, response_body)
		VALUES
		(:run_id, :created_at, :provider, :model, :purpose, :input_tokens, :output_tokens,
		 :latency_ms, :success, :error_message, :request_body, :response_body)`, row)
	if err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (e *Events) AppendGenerationRun(ctx context.Context, data GenerationRunData) error {
	requested, err := json.Marshal(data.Requested)
	if err != nil {
		return fmt.Errorf("encode requested: %w", err)
	}
	generated, err := json.Marshal(data.Generated)
	if err != nil {
		return fmt.Errorf("encode generated: %w", err)
	}

	row := runRow{
		RunID:           data.RunID,
		CreatedAt:       time.Now().UnixMilli(),
		Provider:        data.Provider,
		Model:           data.Model,
		ChunksTotal:     data.ChunksTotal,
		ChunksProcessed: data.ChunksProcessed,
		Requested:       string(requested),
		Generated:       string(generated),
		DurationMs:      data.Duration.Milliseconds(),
	}

	_, err = e.db.NamedExecContext(ctx, `INSERT INTO generation_runs
		(run_id, created_at, provider, model, chunks_total, chunks_processed, requested, generated, duration_ms)
		VALUES
		(:run_id, :created_at, :provider, :model, :chunks_total, :chunks_processed, :requested, :generated, :duration_ms)`, row)
	if err != nil {
		return fmt.Errorf("save generation run: %w", err)
	}
	return nil
}

// QueryLLMEvents returns events newest first.
func (e *Events) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error) {
	var where []string
	var args []any

	if opts.Purpose != "" {
		where = append(where, "purpose = ?")
		args = append(args, opts.Purpose)
	}
	if opts.RunID != "" {
		where = append(where, "run_id = ?")
		args = append(args, opts.RunID)
	}
	if !opts.From.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, opts.From.UnixMilli())
	}
	if !opts.To.IsZero() {
		where = append(where, "created_at <= ?")
		args = append(args, opts.To.UnixMilli())
	}

	q := "SELECT * FROM llm_request_events"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY id DESC"
	if opts.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	var rows []llmEventRow
	if err := e.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}

	out := make([]LLMEvent, len(rows))
	for i, r := range rows {
		out[i] = r.event()
	}
	return out, nil
}

// GetLLMEvent returns one event, or nil if it does not exist.
func (e *Events) GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error) {
	var row llmEventRow
	err := e.db.GetContext(ctx, &row, "SELECT * FROM llm_request_events WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get LLM event %d: %w", id, err)
	}
	ev := row.event()
	return &ev, nil
}

// LLMUsageByPurpose aggregates token usage per purpose.
func (e *Events) LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error) {
	var rows []struct {
		Purpose      string  `db:"purpose"`
		Calls        int     `db:"calls"`
		InputTokens  int     `db:"input_tokens"`
		OutputTokens int     `db:"output_tokens"`
		AvgLatencyMs float64 `db:"avg_latency_ms"`
	}
	err := e.db.SelectContext(ctx, &rows, `SELECT purpose,
			COUNT(*) AS calls,
			COALESCE(SUM(input_tokens), 0) AS input_tokens,
			COALESCE(SUM(output_tokens), 0) AS output_tokens,
			COALESCE(AVG(latency_ms), 0) AS avg_latency_ms
		FROM llm_request_events
		GROUP BY purpose
		ORDER BY calls DESC, purpose`)
	if err != nil {
		return nil, fmt.Errorf("usage by purpose: %w", err)
	}

	out := make([]PurposeUsage, len(rows))
	for i, r := range rows {
		out[i] = PurposeUsage{
			Purpose:      r.Purpose,
			Calls:        r.Calls,
			InputTokens:  r.InputTokens,
			OutputTokens: r.OutputTokens,
			AvgLatencyMs: int64(r.AvgLatencyMs),
		}
	}
	return out, nil
}

// LLMUsageByModel aggregates token usage per model.
func (e *Events) LLMUsageByModel(ctx context.Context) ([]ModelUsage, error) {
	var rows []ModelUsage
	err := e.db.SelectContext(ctx, &rows, `SELECT model AS model,
			COUNT(*) AS calls,
			COALESCE(SUM(input_tokens), 0) AS inputtokens,
			COALESCE(SUM(output_tokens), 0) AS outputtokens
		FROM llm_request_events
		GROUP BY model
		ORDER BY calls DESC, model`)
	if err != nil {
		return nil, fmt.Errorf("usage by model: %w", err)
	}
	return rows, nil
}

// RecentGenerationRuns returns the newest runs first.
func (e *Events) RecentGenerationRuns(ctx context.Context, limit int) ([]GenerationRun, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows []runRow
	err := e.db.SelectContext(ctx, &rows, "SELECT * FROM generation_runs ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("query generation runs: %w", err)
	}

	out := make([]GenerationRun, 0, len(rows))
	for _, r := range rows {
		run := GenerationRun{
			ID:        r.ID,
			Timestamp: time.UnixMilli(r.CreatedAt).UTC(),
			GenerationRunData: GenerationRunData{
				RunID:           r.RunID,
				Provider:        r.Provider,
				Model:           r.Model,
				ChunksTotal:     r.ChunksTotal,
				ChunksProcessed: r.ChunksProcessed,
				Duration:        time.Duration(r.DurationMs) * time.Millisecond,
			},
		}
		if err := json.Unmarshal([]byte(r.Requested), &run.Requested); err != nil {
			return nil, fmt.Errorf("decode requested for run %s: %w", r.RunID, err)
		}
		if err := json.Unmarshal([]byte(r.Generated), &run.Generated); err != nil {
			return nil, fmt.Errorf("decode generated for run %s: %w", r.RunID, err)
		}
		out = append(out, run)
	}
	return out, nil
}
