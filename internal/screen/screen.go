package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/reflectquest/internal/ui/layout"
)

// Screen defines the interface for all terminal screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// PushMsg requests a new screen on top of the stack.
type PushMsg struct {
	Screen Screen
}

// PopMsg requests the current screen be removed from the stack.
type PopMsg struct{}

// ReplaceMsg swaps the current screen for another.
type ReplaceMsg struct {
	Screen Screen
}

// Push returns a command that pushes s.
func Push(s Screen) tea.Cmd {
	return func() tea.Msg { return PushMsg{Screen: s} }
}

// Pop returns a command that pops the current screen.
func Pop() tea.Cmd {
	return func() tea.Msg { return PopMsg{} }
}

// Stack manages a stack of screens.
type Stack struct {
	stack []Screen
}

// NewStack creates a Stack with the given initial screen.
func NewStack(initial Screen) *Stack {
	return &Stack{stack: []Screen{initial}}
}

// Active returns the top screen on the stack.
func (s *Stack) Active() Screen {
	if len(s.stack) == 0 {
		return nil
	}
	return s.stack[len(s.stack)-1]
}

// Depth returns the number of screens on the stack.
func (s *Stack) Depth() int {
	return len(s.stack)
}

// Update forwards a message to the active screen and handles push/pop.
// The bottom screen is never popped.
func (s *Stack) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PushMsg:
		s.stack = append(s.stack, msg.Screen)
		return msg.Screen.Init()
	case PopMsg:
		if len(s.stack) > 1 {
			s.stack = s.stack[:len(s.stack)-1]
		}
		return nil
	case ReplaceMsg:
		if len(s.stack) == 0 {
			s.stack = []Screen{msg.Screen}
		} else {
			s.stack[len(s.stack)-1] = msg.Screen
		}
		return msg.Screen.Init()
	}

	active := s.Active()
	if active == nil {
		return nil
	}
	updated, cmd := active.Update(msg)
	s.stack[len(s.stack)-1] = updated
	return cmd
}

// View renders the active screen.
func (s *Stack) View(width, height int) string {
	active := s.Active()
	if active == nil {
		return ""
	}
	return active.View(width, height)
}
