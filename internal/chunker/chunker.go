// Package chunker splits document text into bounded, overlapping chunks.
package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tmc/langchaingo/textsplitter"
)

// Chunk is one ordered slice of the source text.
type Chunk struct {
	Index int
	Text  string
}

// DefaultSeparators are tried in order: paragraph break, sentence end,
// bulleted lines, newline, tab. A hard character cut is the last resort.
var DefaultSeparators = []string{"\n\n", ". ", "\n•\n", "\n-\n", "\n", "\t"}

// Options configures the splitter. Sizes are measured in characters (runes).
type Options struct {
	Size       int
	Overlap    int
	Separators []string
}

// DefaultOptions returns 8000-character chunks with 200 characters of overlap.
func DefaultOptions() Options {
	return Options{
		Size:       8000,
		Overlap:    200,
		Separators: DefaultSeparators,
	}
}

// Validate checks that the options describe a usable splitter.
func (o Options) Validate() error {
	if o.Size <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", o.Size)
	}
	if o.Overlap < 0 || o.Overlap >= o.Size {
		return fmt.Errorf("chunk overlap must be in [0, %d), got %d", o.Size, o.Overlap)
	}
	return nil
}

// Splitter splits text with fixed options.
type Splitter struct {
	opts Options
}

// New returns a Splitter for opts.
func New(opts Options) (*Splitter, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Splitter{opts: opts}, nil
}

// Split splits text into ordered chunks.
func (s *Splitter) Split(text string) ([]Chunk, error) {
	return Split(text, s.opts)
}

// Split splits text into ordered chunks no longer than opts.Size.
//
// Whitespace-only input yields no chunks. Input that already fits is
// returned unchanged as a single chunk.
func Split(text string, opts Options) ([]Chunk, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(text) <= opts.Size {
		return []Chunk{{Index: 0, Text: text}}, nil
	}

	seps := append([]string{}, opts.Separators...)
	if len(seps) == 0 || seps[len(seps)-1] != "" {
		seps = append(seps, "")
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(opts.Size),
		textsplitter.WithChunkOverlap(opts.Overlap),
		textsplitter.WithSeparators(seps),
	)

	parts, err := splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("split text: %w", err)
	}

	chunks := make([]Chunk, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		chunks = append(chunks, Chunk{Index: len(chunks), Text: p})
	}
	return chunks, nil
}
