package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/reflectquest/internal/progress"
	"github.com/abhisek/reflectquest/internal/screen"
	"github.com/abhisek/reflectquest/internal/ui/components"
	"github.com/abhisek/reflectquest/internal/ui/layout"
	"github.com/abhisek/reflectquest/internal/ui/theme"
)

// SummaryScreen displays the quest progress summary.
type SummaryScreen struct {
	summary progress.Summary
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(summary progress.Summary) *SummaryScreen {
	return &SummaryScreen{summary: summary}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Quest Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, screen.Pop()
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary
	center := func(str string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, str)
	}

	var b strings.Builder

	title := "Your quest so far"
	if sum.Finished {
		title = "Quest complete!"
	}
	b.WriteString(center(theme.Title.Render(title)))
	b.WriteString("\n\n")

	b.WriteString(center(theme.Subtitle.Render(
		fmt.Sprintf("On page %d of %d", sum.Page+1, sum.TotalPages))))
	b.WriteString("\n\n")

	barWidth := min(width-8, 60)
	b.WriteString(center(components.NewProgressBar("Overall   ", sum.Overall, true, barWidth).View()))
	b.WriteString("\n")
	b.WriteString(center(components.NewProgressBar("Activities", sum.Activities.Ratio(), true, barWidth).View()))
	b.WriteString("\n\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(barWidth, 0)))
	b.WriteString(center(divider))
	b.WriteString("\n\n")

	stats := fmt.Sprintf("Activities visited: %d/%d        Items done: %d        Reflections: %d",
		sum.Activities.Done, sum.Activities.Total, sum.Completed, sum.Notes)
	b.WriteString(center(theme.Body.Render(stats)))
	b.WriteString("\n")

	return b.String()
}
