package components

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/reflectquest/internal/ui/theme"
)

// NoteCharLimit caps a single-line note typed in the terminal.
const NoteCharLimit = 500

// NoteInput wraps bubbles/textinput for editing a free-text note.
type NoteInput struct {
	Model textinput.Model
	dirty bool
}

// NewNoteInput creates a focused input pre-filled with value.
func NewNoteInput(placeholder, value string) NoteInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = NoteCharLimit
	ti.SetValue(value)
	ti.Focus()
	return NoteInput{Model: ti}
}

// Init returns the initial command.
func (n NoteInput) Init() tea.Cmd {
	return n.Model.Focus()
}

// Update handles messages.
func (n NoteInput) Update(msg tea.Msg) (NoteInput, tea.Cmd) {
	before := n.Model.Value()
	var cmd tea.Cmd
	n.Model, cmd = n.Model.Update(msg)
	if n.Model.Value() != before {
		n.dirty = true
	}
	return n, cmd
}

// View renders the input with a marker once it has unsaved edits.
func (n NoteInput) View() string {
	view := n.Model.View()
	if n.dirty {
		view += " " + lipgloss.NewStyle().Foreground(theme.Accent).Render("*")
	}
	return view
}

// Value returns the trimmed input text.
func (n NoteInput) Value() string {
	return strings.TrimSpace(n.Model.Value())
}

// Dirty reports whether the text changed since the input was created.
func (n NoteInput) Dirty() bool {
	return n.dirty
}
