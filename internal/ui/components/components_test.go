package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func key(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func TestMenuSkipsDisabled(t *testing.T) {
	m := NewMenu([]MenuItem{
		{Label: "Generate"},
		{Label: "Take quiz", Disabled: true},
		{Label: "Quit"},
	})

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if m.Selected != 2 {
		t.Errorf("Selected = %d, want 2", m.Selected)
	}
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if m.Selected != 0 {
		t.Errorf("Selected = %d, want 0", m.Selected)
	}
}

func TestMenuSetDisabledMovesSelection(t *testing.T) {
	m := NewMenu([]MenuItem{{Label: "a"}, {Label: "b"}})
	m.Selected = 1
	m.SetDisabled(1, true)
	if m.Selected != 0 {
		t.Errorf("Selected = %d, want 0", m.Selected)
	}
}

func TestMenuEnterRunsAction(t *testing.T) {
	ran := false
	m := NewMenu([]MenuItem{{Label: "Go", Action: func() tea.Cmd {
		ran = true
		return nil
	}}})
	m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !ran {
		t.Error("expected action to run on enter")
	}
}

func TestChoiceKeysAndArrows(t *testing.T) {
	c := NewChoice([]string{"a", "b", "c", "d"}, []string{"Mars", "Jupiter", "Venus", "Earth"})
	if c.Value() != "" {
		t.Errorf("Value = %q before choosing, want empty", c.Value())
	}

	c, done := c.Update(key('c'))
	if !done || c.Value() != "c" {
		t.Errorf("after 'c': done=%v value=%q", done, c.Value())
	}

	c, _ = c.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	c, done = c.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !done || c.Value() != "d" {
		t.Errorf("after down+enter: done=%v value=%q", done, c.Value())
	}

	c.Select("B")
	if c.Value() != "b" {
		t.Errorf("Select(B) value = %q", c.Value())
	}
	c.Select("z")
	if c.Value() != "" {
		t.Errorf("Select(z) value = %q, want empty", c.Value())
	}
}

func TestChoiceView(t *testing.T) {
	c := NewChoice([]string{"true", "false"}, []string{"True", "False"})
	c.Select("false")
	view := c.View()
	if !strings.Contains(view, "(•) false)  False") {
		t.Errorf("chosen option not marked: %q", view)
	}
}

func TestTextInputNumericOnly(t *testing.T) {
	in := NewTextInput("Count", "1", true, 3)
	in.Focus()
	in, _ = in.Update(key('x'))
	in, _ = in.Update(key('4'))
	if in.Value() != "4" {
		t.Errorf("Value = %q, want 4", in.Value())
	}
	n, err := in.NumericValue()
	if err != nil || n != 4 {
		t.Errorf("NumericValue = %d, %v", n, err)
	}
}

func TestFraction(t *testing.T) {
	if Fraction(1, 0) != 0 {
		t.Error("expected zero for empty total")
	}
	if Fraction(3, 2) != 1 {
		t.Error("expected clamp at 1")
	}
	if Fraction(1, 4) != 0.25 {
		t.Error("expected 0.25")
	}
}
