// Package generating runs a question generation and shows its progress.
package generating

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/studyquest/studyquest/internal/ingest"
	"github.com/studyquest/studyquest/internal/questiongen"
	"github.com/studyquest/studyquest/internal/quiz"
	"github.com/studyquest/studyquest/internal/router"
	"github.com/studyquest/studyquest/internal/screen"
	quizscreen "github.com/studyquest/studyquest/internal/screens/quiz"
	"github.com/studyquest/studyquest/internal/ui/components"
	"github.com/studyquest/studyquest/internal/ui/layout"
	"github.com/studyquest/studyquest/internal/ui/theme"
)

// Request is what the setup form collected.
type Request struct {
	Paths []string
	Quota quiz.Quota
	Notes string
}

type phase int

const (
	phaseReading phase = iota
	phaseGenerating
	phaseCancelling
	phaseFailed
	phaseEmpty
)

type readMsg struct {
	chunks int
}

type progressMsg questiongen.Progress

type doneMsg struct {
	result *questiongen.Result
	err    error
}

type spinnerTickMsg time.Time

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// GeneratingScreen drives one generation run.
type GeneratingScreen struct {
	deps     *screen.Deps
	req      Request
	ctx      context.Context
	cancel   context.CancelFunc
	events   chan tea.Msg
	phase    phase
	progress questiongen.Progress
	frame    int
	started  time.Time
	errMsg   string
}

var _ screen.Screen = (*GeneratingScreen)(nil)
var _ screen.KeyHintProvider = (*GeneratingScreen)(nil)
var _ screen.EscapeHandler = (*GeneratingScreen)(nil)

// New creates the screen; the run starts on Init.
func New(deps *screen.Deps, req Request) *GeneratingScreen {
	ctx, cancel := context.WithCancel(context.Background())
	return &GeneratingScreen{
		deps:   deps,
		req:    req,
		ctx:    ctx,
		cancel: cancel,
		events: make(chan tea.Msg, 16),
	}
}

func (s *GeneratingScreen) Init() tea.Cmd {
	s.started = time.Now()
	return tea.Batch(s.run(), s.wait(), spinnerTick())
}

func (s *GeneratingScreen) Title() string {
	return "Generating"
}

func (s *GeneratingScreen) HandlesEscape() bool {
	return s.running()
}

func (s *GeneratingScreen) running() bool {
	return s.phase == phaseReading || s.phase == phaseGenerating || s.phase == phaseCancelling
}

func (s *GeneratingScreen) KeyHints() []layout.KeyHint {
	if s.running() {
		return []layout.KeyHint{{Key: "Esc", Description: "Cancel"}}
	}
	return []layout.KeyHint{{Key: "any key", Description: "Back"}}
}

// run reads the documents and calls the generator. Intermediate events
// go through s.events; the final result is the command's message.
func (s *GeneratingScreen) run() tea.Cmd {
	ctx, events, deps, req := s.ctx, s.events, s.deps, s.req
	return func() tea.Msg {
		defer close(events)

		text, err := ingest.Texts(ctx, req.Paths)
		if err != nil {
			return doneMsg{err: err}
		}
		if strings.TrimSpace(text) == "" {
			return doneMsg{err: errors.New("the selected documents contain no text")}
		}
		send(ctx, events, readMsg{})

		res, err := deps.Generator.Run(ctx, questiongen.Input{Text: text, Quota: req.Quota, Notes: req.Notes},
			func(p questiongen.Progress) { send(ctx, events, progressMsg(p)) })
		return doneMsg{result: res, err: err}
	}
}

func send(ctx context.Context, ch chan<- tea.Msg, msg tea.Msg) {
	select {
	case ch <- msg:
	case <-ctx.Done():
	}
}

// wait delivers the next event; it returns nil once the run has finished.
func (s *GeneratingScreen) wait() tea.Cmd {
	events := s.events
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}

func spinnerTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return spinnerTickMsg(t)
	})
}

func (s *GeneratingScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case readMsg:
		if s.phase == phaseReading {
			s.phase = phaseGenerating
		}
		return s, s.wait()

	case progressMsg:
		s.progress = questiongen.Progress(msg)
		return s, s.wait()

	case spinnerTickMsg:
		if !s.running() {
			return s, nil
		}
		s.frame = (s.frame + 1) % len(spinnerFrames)
		return s, spinnerTick()

	case doneMsg:
		return s.finish(msg)

	case tea.KeyMsg:
		if s.running() {
			if msg.String() == "esc" && s.phase != phaseCancelling {
				s.phase = phaseCancelling
				s.cancel()
			}
			return s, nil
		}
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	return s, nil
}

func (s *GeneratingScreen) finish(msg doneMsg) (screen.Screen, tea.Cmd) {
	log := s.deps.Logger()
	cancelled := s.phase == phaseCancelling
	s.cancel()

	if cancelled {
		log.Info("generation cancelled")
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	if msg.err != nil {
		log.Error("generation failed", zap.Error(msg.err))
		s.phase = phaseFailed
		s.errMsg = msg.err.Error()
		return s, nil
	}

	res := msg.result
	log.Info("generation finished",
		zap.String("run_id", res.RunID),
		zap.Int("questions", len(res.Questions)),
		zap.Int("chunks_processed", res.ChunksProcessed),
		zap.Duration("elapsed", time.Since(s.started)))

	if len(res.Questions) == 0 {
		s.phase = phaseEmpty
		return s, nil
	}

	s.deps.Session.Load(res.Questions)
	next := quizscreen.New(s.deps)
	return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

func (s *GeneratingScreen) View(width, height int) string {
	cw := min(width-4, 64)

	var b strings.Builder
	switch s.phase {
	case phaseReading:
		b.WriteString(theme.Body.Render(spinnerFrames[s.frame] + " Reading documents..."))
	case phaseGenerating, phaseCancelling:
		s.renderProgress(&b, cw)
	case phaseFailed:
		b.WriteString(theme.Incorrect.Render("Generation failed"))
		b.WriteString("\n\n")
		b.WriteString(theme.ErrorText.Width(cw).Render(s.errMsg))
	case phaseEmpty:
		b.WriteString(theme.Warning.Render("No questions were generated."))
		b.WriteString("\n\n")
		b.WriteString(theme.Hint.Width(cw).Render("The model did not return usable questions. Try different documents or notes."))
	}

	card := theme.Card.Width(cw).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

func (s *GeneratingScreen) renderProgress(b *strings.Builder, cw int) {
	p := s.progress
	status := spinnerFrames[s.frame] + " Generating questions..."
	if s.phase == phaseCancelling {
		status = "Cancelling..."
	}
	b.WriteString(theme.Body.Render(status))
	b.WriteString("\n\n")

	label := "Chunk 0/?"
	if p.Chunks > 0 {
		label = fmt.Sprintf("Chunk %d/%d", p.Chunk, p.Chunks)
	}
	bar := components.NewProgressBar(label, components.Fraction(p.Chunk, p.Chunks), true, cw-6)
	b.WriteString(bar.View())
	b.WriteString("\n\n")

	b.WriteString(theme.Hint.Render(fmt.Sprintf("%d of %d questions so far", p.Generated.Total(), s.req.Quota.Total())))
}
