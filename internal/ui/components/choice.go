package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/studyquest/studyquest/internal/ui/theme"
)

// Choice is a vertical single-select list with keyed options, used for
// multiple-choice letters and true/false answers.
type Choice struct {
	Keys    []string
	Options []string
	Cursor  int
	Chosen  int
}

// NewChoice creates a selector. keys and options must have equal length.
func NewChoice(keys, options []string) Choice {
	return Choice{Keys: keys, Options: options, Chosen: -1}
}

// Select marks the option whose key is k. Unknown keys clear the choice.
func (c *Choice) Select(k string) {
	c.Chosen = -1
	for i, key := range c.Keys {
		if strings.EqualFold(key, k) {
			c.Chosen = i
			c.Cursor = i
			return
		}
	}
}

// Value returns the chosen key, or "" when nothing is chosen.
func (c Choice) Value() string {
	if c.Chosen < 0 || c.Chosen >= len(c.Keys) {
		return ""
	}
	return c.Keys[c.Chosen]
}

// Update moves the cursor with the arrows and chooses with enter, space,
// or an option's key.
func (c Choice) Update(msg tea.Msg) (Choice, bool) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, false
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if c.Cursor > 0 {
			c.Cursor--
		}
		return c, false
	case "down", "j":
		if c.Cursor < len(c.Options)-1 {
			c.Cursor++
		}
		return c, false
	case "enter", "space", " ":
		c.Chosen = c.Cursor
		return c, true
	}

	for i, k := range c.Keys {
		if strings.EqualFold(k, key) {
			c.Chosen = i
			c.Cursor = i
			return c, true
		}
	}
	return c, false
}

// View renders the options.
func (c Choice) View() string {
	var b strings.Builder
	for i, opt := range c.Options {
		prefix := "  "
		if i == c.Cursor {
			prefix = "▸ "
		}
		mark := "( )"
		if i == c.Chosen {
			mark = "(•)"
		}

		line := fmt.Sprintf("%s%s %s)  %s", prefix, mark, c.Keys[i], opt)
		switch {
		case i == c.Chosen:
			b.WriteString(theme.Selected.Render(line))
		case i == c.Cursor:
			b.WriteString(theme.Body.Bold(true).Render(line))
		default:
			b.WriteString(theme.Unselected.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}
