package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/reflectquest/internal/progress"
	"github.com/abhisek/reflectquest/internal/quest"
	"github.com/abhisek/reflectquest/internal/screen"
	"github.com/abhisek/reflectquest/internal/screens/course"
	"github.com/abhisek/reflectquest/internal/screens/welcome"
	"github.com/abhisek/reflectquest/internal/ui/layout"
)

// AppModel is the root Bubble Tea model.
type AppModel struct {
	app     *App
	screens *screen.Stack
	width   int
	height  int
}

// newAppModel creates an AppModel showing the course screen, behind the
// welcome splash when splash is set.
func newAppModel(a *App, splash bool) AppModel {
	courseScreen := func() screen.Screen {
		return course.New(a.manifest, a.quest, a.router)
	}
	first := courseScreen()
	if splash {
		first = welcome.New(greeting(a), courseScreen)
	}
	return AppModel{
		app:     a,
		screens: screen.NewStack(first),
	}
}

// greeting tells a returning learner where they left off.
func greeting(a *App) string {
	if a.quest.Origin() == quest.SourceDefault {
		return "Your quest begins."
	}
	return fmt.Sprintf("Welcome back! You were on page %d.", a.router.Current()+1)
}

func (m AppModel) Init() tea.Cmd {
	if active := m.screens.Active(); active != nil {
		return active.Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	cmd := m.screens.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	v.SetContent(m.render())
	return v
}

// render draws the frame as a string; empty until the size is known.
func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	title := ""
	var hints []layout.KeyHint
	if active := m.screens.Active(); active != nil {
		title = active.Title()
		if hp, ok := active.(screen.KeyHintProvider); ok {
			hints = hp.KeyHints()
		}
	}
	hints = append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})

	overall := progress.Overall(m.app.manifest, m.app.quest.Snapshot().Visited)
	header := layout.RenderHeader(m.app.manifest.Title, title, overall, m.width)
	footer := layout.RenderFooter(hints, m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.screens.View(m.width, contentHeight)

	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program over an opened App.
func Run(a *App) error {
	p := tea.NewProgram(newAppModel(a, true))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
