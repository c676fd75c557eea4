package welcome

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/reflectquest/internal/screen"
	"github.com/abhisek/reflectquest/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	phase1End    = 500 * time.Millisecond
	phase2End    = 1500 * time.Millisecond
	totalDur     = 2500 * time.Millisecond
)

const summitArt = `        /\
       /  \    /\
      / /\ \  /  \
     / /  \ \/ /\ \
    /_/____\__/__\_\`

// star frames twinkle above the summit
var starFrames = []string{"✦", "·"}

type tickMsg time.Time

// WelcomeScreen shows a splash before handing over to the course screen.
type WelcomeScreen struct {
	next         func() screen.Screen
	greeting     string
	elapsed      time.Duration
	tickCount    int
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen that greets the learner and then replaces
// itself with the screen produced by next.
func New(greeting string, next func() screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{
		next:     next,
		greeting: greeting,
	}
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tick()
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		if w.transitioned {
			return w, nil
		}
		if w.elapsed < totalDur {
			w.elapsed += tickInterval
		}
		w.tickCount++
		return w, tick()

	case tea.KeyPressMsg:
		return w, w.transition()
	}

	return w, nil
}

func (w *WelcomeScreen) transition() tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true
	return func() tea.Msg {
		return screen.ReplaceMsg{Screen: w.next()}
	}
}

func (w *WelcomeScreen) View(width, height int) string {
	var sections []string

	rendered := lipgloss.NewStyle().Foreground(theme.Secondary).Render(summitArt)

	if w.elapsed >= phase1End {
		star := starFrames[w.tickCount%len(starFrames)]
		stars := lipgloss.NewStyle().Foreground(theme.Accent).Render(
			"  " + star + "      " + star + "    " + star)
		rendered = stars + "\n" + rendered
	}
	sections = append(sections, rendered)

	if w.elapsed >= phase2End {
		sections = append(sections, "", RenderBanner(width), "")
		sections = append(sections, lipgloss.NewStyle().
			Foreground(theme.Text).
			Bold(true).
			Render(w.greeting))
	}

	if w.elapsed >= totalDur {
		sections = append(sections, "", theme.Hint.Render("press any key to continue"))
	}

	content := strings.Join(sections, "\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
