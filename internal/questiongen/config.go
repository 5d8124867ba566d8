package questiongen

import (
	"fmt"

	"github.com/studyquest/studyquest/internal/chunker"
)

// Mode selects how a chunk's quota is requested from the model.
type Mode string

const (
	// ModeBatch asks for a chunk's whole quota slice in one prompt.
	ModeBatch Mode = "batch"
	// ModeSingle asks for one question per prompt.
	ModeSingle Mode = "single"
)

// Config controls the behavior of the generator and orchestrator.
type Config struct {
	Mode Mode

	// MaxAttempts bounds how often one prompt is re-issued when the
	// model output cannot be parsed or validated.
	MaxAttempts int

	// Temperature controls model output randomness.
	Temperature float64

	// MaxTokens is the token budget for one model response.
	MaxTokens int

	// NotesMaxLength caps the additional notes interpolated into prompts.
	NotesMaxLength int

	Chunking chunker.Options
}

// DefaultConfig returns a Config with recommended defaults.
func DefaultConfig() Config {
	return Config{
		Mode:           ModeBatch,
		MaxAttempts:    3,
		Temperature:    0.8,
		MaxTokens:      8192,
		NotesMaxLength: 200,
		Chunking:       chunker.DefaultOptions(),
	}
}

// Validate checks the config for values the generator cannot work with.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeBatch, ModeSingle:
	default:
		return fmt.Errorf("unknown mode %q (want batch or single)", c.Mode)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d", c.MaxAttempts)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be within [0, 2], got %v", c.Temperature)
	}
	if c.NotesMaxLength < 0 {
		return fmt.Errorf("notes max length must not be negative, got %d", c.NotesMaxLength)
	}
	return c.Chunking.Validate()
}
