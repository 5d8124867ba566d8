package questiongen

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/studyquest/studyquest/internal/chunker"
	"github.com/studyquest/studyquest/internal/llm"
	"github.com/studyquest/studyquest/internal/quiz"
	"github.com/studyquest/studyquest/internal/quota"
	"github.com/studyquest/studyquest/internal/store"
)

// Purpose labels model requests made during generation.
const Purpose = "question-gen"

// Input is one generation request.
type Input struct {
	Text  string
	Quota quiz.Quota
	Notes string
}

// Result is the merged output of a run, in chunk order and then model order.
type Result struct {
	Questions       []quiz.Question
	Generated       quiz.Quota
	ChunksTotal     int
	ChunksProcessed int
	RunID           string
}

// Progress is reported after each chunk is processed.
type Progress struct {
	Chunk     int // 1-based
	Chunks    int
	Generated quiz.Quota
}

// SplitFunc splits source text into chunks.
type SplitFunc func(text string) ([]chunker.Chunk, error)

// Orchestrator runs chunking, quota distribution and per-chunk generation.
type Orchestrator struct {
	gen      *ChunkGenerator
	split    SplitFunc
	events   store.EventRepo
	provider string
	model    string
	log      *zap.Logger
}

// Option customises an Orchestrator.
type Option func(*Orchestrator)

// WithSplitter replaces the configured chunker.
func WithSplitter(fn SplitFunc) Option {
	return func(o *Orchestrator) { o.split = fn }
}

// WithEventRepo records a summary of every run.
func WithEventRepo(repo store.EventRepo, providerName string) Option {
	return func(o *Orchestrator) {
		o.events = repo
		o.provider = providerName
	}
}

// WithLogger sets the logger used by the orchestrator and its generator.
func WithLogger(log *zap.Logger) Option {
	return func(o *Orchestrator) { o.log = log }
}

// NewOrchestrator creates an Orchestrator using provider for model calls.
func NewOrchestrator(provider llm.Provider, cfg Config, opts ...Option) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &Orchestrator{
		events: store.Discard,
		model:  provider.ModelID(),
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.split == nil {
		s, err := chunker.New(cfg.Chunking)
		if err != nil {
			return nil, err
		}
		o.split = s.Split
	}
	o.gen = NewChunkGenerator(provider, cfg, o.log)
	return o, nil
}

// Run generates questions for in. Chunks are processed in order and the
// run stops as soon as every type's quota is met. Chunks that yield
// nothing are skipped over; the result may fall short of the quota.
//
// onProgress may be nil.
func (o *Orchestrator) Run(ctx context.Context, in Input, onProgress func(Progress)) (*Result, error) {
	if err := in.Quota.Validate(); err != nil {
		return nil, fmt.Errorf("invalid quota: %w", err)
	}

	start := time.Now()
	res := &Result{Generated: quiz.Quota{}, RunID: uuid.NewString()}

	ctx = llm.WithPurpose(ctx, Purpose)
	ctx = llm.WithRunID(ctx, res.RunID)
	log := o.log.With(zap.String("run_id", res.RunID))

	chunks, err := o.split(in.Text)
	if err != nil {
		return nil, fmt.Errorf("split text: %w", err)
	}
	res.ChunksTotal = len(chunks)
	log.Info("generation started",
		zap.Int("chunks", len(chunks)),
		zap.Stringer("requested", in.Quota))

	if len(chunks) == 0 || in.Quota.Total() == 0 {
		o.record(ctx, log, res, in.Quota, start)
		return res, nil
	}

	shares := quota.Split(in.Quota, len(chunks))

	for i, chunk := range chunks {
		if in.Quota.Met(res.Generated) {
			log.Debug("quota met, skipping remaining chunks", zap.Int("chunk", i))
			break
		}

		need := quota.Cap(shares[i], in.Quota, res.Generated)
		if need.Total() > 0 {
			qs, err := o.gen.Generate(ctx, chunk, need, in.Notes)
			if err != nil {
				return nil, err
			}
			if len(qs) == 0 {
				log.Warn("chunk produced no questions", zap.Int("chunk", i), zap.Stringer("need", need))
			}
			res.Questions = append(res.Questions, qs...)
			for _, q := range qs {
				res.Generated[q.Type()]++
			}
		}

		res.ChunksProcessed++
		if onProgress != nil {
			onProgress(Progress{Chunk: i + 1, Chunks: len(chunks), Generated: copyQuota(res.Generated)})
		}
	}

	log.Info("generation finished",
		zap.Int("chunks_processed", res.ChunksProcessed),
		zap.Stringer("generated", res.Generated),
		zap.Duration("elapsed", time.Since(start)))

	o.record(ctx, log, res, in.Quota, start)
	return res, nil
}

// record stores the run summary. Failures are logged and otherwise ignored.
func (o *Orchestrator) record(ctx context.Context, log *zap.Logger, res *Result, requested quiz.Quota, start time.Time) {
	err := o.events.AppendGenerationRun(context.WithoutCancel(ctx), store.GenerationRunData{
		RunID:           res.RunID,
		Provider:        o.provider,
		Model:           o.model,
		ChunksTotal:     res.ChunksTotal,
		ChunksProcessed: res.ChunksProcessed,
		Requested:       quotaMap(requested),
		Generated:       quotaMap(res.Generated),
		Duration:        time.Since(start),
	})
	if err != nil {
		log.Warn("failed to record generation run", zap.Error(err))
	}
}

func quotaMap(q quiz.Quota) map[string]int {
	out := make(map[string]int, len(quiz.Types))
	for _, t := range quiz.Types {
		out[string(t)] = q[t]
	}
	return out
}

func copyQuota(q quiz.Quota) quiz.Quota {
	out := make(quiz.Quota, len(q))
	for t, n := range q {
		out[t] = n
	}
	return out
}

// Number assigns question numbers "1".."N" in slice order.
func Number(qs []quiz.Question) {
	for i, q := range qs {
		q.SetNum(strconv.Itoa(i + 1))
	}
}
