package screen

import (
	"context"

	"go.uber.org/zap"

	"github.com/studyquest/studyquest/internal/questiongen"
	"github.com/studyquest/studyquest/internal/session"
)

// Generator runs a question generation over document text.
type Generator interface {
	Run(ctx context.Context, in questiongen.Input, onProgress func(questiongen.Progress)) (*questiongen.Result, error)
}

// Deps carries the shared state every screen works against.
type Deps struct {
	Session *session.Session

	// Generator is nil when no model provider could be configured;
	// GeneratorErr then explains why.
	Generator    Generator
	GeneratorErr error

	NotesMaxLength int
	ExportPath     string
	Log            *zap.Logger
}

// Logger returns d.Log or a no-op logger.
func (d *Deps) Logger() *zap.Logger {
	if d.Log == nil {
		return zap.NewNop()
	}
	return d.Log
}
