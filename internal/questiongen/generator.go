package questiongen

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/studyquest/studyquest/internal/chunker"
	"github.com/studyquest/studyquest/internal/llm"
	"github.com/studyquest/studyquest/internal/quiz"
)

// ChunkGenerator turns one chunk and its quota slice into questions.
type ChunkGenerator struct {
	provider llm.Provider
	config   Config
	log      *zap.Logger
}

// NewChunkGenerator creates a ChunkGenerator. A nil log discards output.
func NewChunkGenerator(provider llm.Provider, cfg Config, log *zap.Logger) *ChunkGenerator {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &ChunkGenerator{provider: provider, config: cfg, log: log}
}

// Generate returns at most need[t] questions of each type t for the chunk.
//
// Invalid model output is retried up to MaxAttempts times and then given
// up on; a short or empty result is not an error. The only errors are
// context cancellation and deadline expiry.
func (g *ChunkGenerator) Generate(ctx context.Context, chunk chunker.Chunk, need quiz.Quota, notes string) ([]quiz.Question, error) {
	if need.Total() == 0 {
		return nil, nil
	}
	notes = TruncateNotes(notes, g.config.NotesMaxLength)

	if g.config.Mode == ModeSingle {
		return g.generateSingle(ctx, chunk, need, notes)
	}
	return g.generateBatch(ctx, chunk, need, notes)
}

func (g *ChunkGenerator) generateBatch(ctx context.Context, chunk chunker.Chunk, need quiz.Quota, notes string) ([]quiz.Question, error) {
	prompt := buildBatchPrompt(chunk.Text, need, notes)
	return g.attempt(ctx, prompt, BatchResponseSchema(), func(items []any) []quiz.Question {
		return Trim(ValidateMixed(items), need)
	}, zap.Int("chunk", chunk.Index), zap.Stringer("need", need))
}

func (g *ChunkGenerator) generateSingle(ctx context.Context, chunk chunker.Chunk, need quiz.Quota, notes string) ([]quiz.Question, error) {
	var out []quiz.Question
	for _, t := range quiz.Types {
		prompt := buildSinglePrompt(chunk.Text, t, notes)
		schema := SingleResponseSchema(t)
		for i := 0; i < need[t]; i++ {
			qs, err := g.attempt(ctx, prompt, schema, func(items []any) []quiz.Question {
				return Trim(ValidateBatch(items, t), quiz.Quota{t: 1})
			}, zap.Int("chunk", chunk.Index), zap.String("type", string(t)), zap.Int("question", i+1))
			if err != nil {
				return out, err
			}
			out = append(out, qs...)
		}
	}
	return out, nil
}

// attempt issues prompt until validate accepts at least one question or
// the attempt budget runs out. schema is passed on as a structured output
// hint; validate alone decides what is kept.
func (g *ChunkGenerator) attempt(ctx context.Context, prompt string, schema *llm.Schema, validate func([]any) []quiz.Question, fields ...zap.Field) ([]quiz.Question, error) {
	req := llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		JSON:        true,
		Schema:      schema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	for n := 1; n <= g.config.MaxAttempts; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		log := g.log.With(fields...).With(zap.Int("attempt", n))

		resp, err := g.provider.Generate(ctx, req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if errors.Is(err, context.Canceled) {
				return nil, err
			}
			log.Warn("model call failed", zap.Error(err))
			continue
		}

		v, ok := Extract(resp.Text)
		if !ok {
			log.Warn("no JSON array in model output", zap.Int("length", len(resp.Text)))
			continue
		}
		items, _ := v.([]any)

		qs := validate(items)
		if len(qs) == 0 {
			log.Warn("no valid questions in model output", zap.Int("items", len(items)))
			continue
		}

		log.Debug("questions generated", zap.Int("count", len(qs)))
		return qs, nil
	}

	g.log.Warn("giving up after max attempts", append(fields, zap.Int("attempts", g.config.MaxAttempts))...)
	return nil, nil
}

// Trim drops questions beyond need's count for their type, keeping order.
func Trim(qs []quiz.Question, need quiz.Quota) []quiz.Question {
	taken := quiz.Quota{}
	var out []quiz.Question
	for _, q := range qs {
		t := q.Type()
		if taken[t] >= need[t] {
			continue
		}
		taken[t]++
		out = append(out, q)
	}
	return out
}
