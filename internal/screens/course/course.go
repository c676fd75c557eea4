// Package course is the terminal screen a learner walks the quest in.
package course

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/reflectquest/internal/manifest"
	"github.com/abhisek/reflectquest/internal/progress"
	"github.com/abhisek/reflectquest/internal/quest"
	"github.com/abhisek/reflectquest/internal/router"
	"github.com/abhisek/reflectquest/internal/screen"
	"github.com/abhisek/reflectquest/internal/screens/summary"
	"github.com/abhisek/reflectquest/internal/store"
	"github.com/abhisek/reflectquest/internal/ui/components"
	"github.com/abhisek/reflectquest/internal/ui/layout"
	"github.com/abhisek/reflectquest/internal/ui/theme"
)

// CourseScreen shows the page map and the current page, and lets the
// learner navigate, write notes and mark items done.
type CourseScreen struct {
	manifest *manifest.Manifest
	quest    *quest.Store
	router   *router.Router

	editing  bool
	editKind noteKind
	input    components.NoteInput
	status   string
}

var _ screen.Screen = (*CourseScreen)(nil)
var _ screen.KeyHintProvider = (*CourseScreen)(nil)

// New creates a CourseScreen over a hydrated quest.
func New(m *manifest.Manifest, qs *quest.Store, r *router.Router) *CourseScreen {
	return &CourseScreen{manifest: m, quest: qs, router: r}
}

func (c *CourseScreen) Init() tea.Cmd {
	return nil
}

func (c *CourseScreen) Title() string {
	p, ok := c.manifest.Page(c.router.Current())
	if !ok {
		return "Quest"
	}
	return p.Title
}

func (c *CourseScreen) KeyHints() []layout.KeyHint {
	if c.editing {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Save note"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	hints := []layout.KeyHint{
		{Key: "←→", Description: "Page"},
	}
	if c.currentPage().ItemID != "" {
		hints = append(hints,
			layout.KeyHint{Key: "E", Description: "Note"},
			layout.KeyHint{Key: "Space", Description: "Done"},
		)
	}
	if c.router.AtEnd() {
		hints = append(hints, layout.KeyHint{Key: "F", Description: "Finish"})
	}
	return append(hints,
		layout.KeyHint{Key: "S", Description: "Summary"},
		layout.KeyHint{Key: "Q", Description: "Quit"},
	)
}

func (c *CourseScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	ctx := context.Background()

	switch msg := msg.(type) {
	case router.GoToPageMsg, router.NextPageMsg, router.PrevPageMsg:
		c.router.Update(ctx, msg)
		c.status = ""
		return c, nil

	case tea.KeyMsg:
		if c.editing {
			return c.updateEditing(ctx, msg)
		}
		switch msg.String() {
		case "right", "l", "pgdown":
			c.router.Next(ctx)
			c.status = ""
		case "left", "h", "pgup":
			c.router.Prev(ctx)
			c.status = ""
		case "home":
			c.router.Go(ctx, 0)
		case "end":
			c.router.Go(ctx, c.manifest.Len()-1)
		case "e", "enter":
			return c.startEditing()
		case "space", " ":
			if id := c.currentPage().ItemID; id != "" {
				c.quest.ToggleComplete(ctx, id)
				if c.quest.Snapshot().IsCompleted(id) {
					c.status = "Marked done"
				} else {
					c.status = "Marked not done"
				}
			}
		case "f":
			if c.router.AtEnd() {
				c.quest.Finish(ctx)
				c.status = "Quest finished!"
			}
		case "s":
			sum := progress.Summarize(c.manifest, c.quest.Snapshot())
			return c, screen.Push(summary.New(sum))
		case "q":
			return c, tea.Quit
		}
	}
	return c, nil
}

func (c *CourseScreen) startEditing() (screen.Screen, tea.Cmd) {
	id := c.currentPage().ItemID
	if id == "" {
		return c, nil
	}
	raw, _ := c.quest.Snapshot().Note(id)
	text, kind := noteText(raw)
	if kind == noteStructured {
		c.status = "This answer is structured and can't be edited here"
		return c, nil
	}
	c.input = components.NewNoteInput("Write your reflection...", text)
	c.editKind = kind
	c.editing = true
	c.status = ""
	return c, c.input.Init()
}

func (c *CourseScreen) updateEditing(ctx context.Context, msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		c.editing = false
		c.status = "Note unchanged"
		return c, nil
	case "enter":
		c.editing = false
		if c.input.Dirty() {
			c.quest.SetNote(ctx, c.currentPage().ItemID, c.editedNote())
			c.status = "Note saved"
		}
		return c, nil
	}
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

// editedNote encodes the editor text in the shape the note already had.
func (c *CourseScreen) editedNote() json.RawMessage {
	if c.editKind == noteRich {
		if raw, err := store.MakeNote(store.RichText{Text: c.input.Value()}); err == nil {
			return raw
		}
	}
	return store.TextNote(c.input.Value())
}

func (c *CourseScreen) currentPage() manifest.Page {
	p, _ := c.manifest.Page(c.router.Current())
	return p
}

func (c *CourseScreen) View(width, height int) string {
	snap := c.quest.Snapshot()
	pages := progress.Pages(c.manifest, snap)

	listWidth := min(36, width/3)
	list := c.renderPageList(pages, listWidth)
	detail := c.renderDetail(pages, snap, width-listWidth-4)

	body := lipgloss.JoinHorizontal(lipgloss.Top, list, "  ", detail)
	return lipgloss.NewStyle().Padding(1, 1).MaxHeight(height).Render(body)
}

func (c *CourseScreen) renderPageList(pages []progress.PageStatus, width int) string {
	var b strings.Builder
	for _, p := range pages {
		marker := "○"
		if p.Visited {
			marker = "●"
		}
		if p.Current {
			marker = "▸"
		}
		flags := ""
		if p.Completed {
			flags += " ✓"
		}
		if p.HasNote {
			flags += " ✎"
		}

		style := lipgloss.NewStyle().Foreground(theme.AccentColor(p.Accent))
		if !p.Visited {
			style = style.Foreground(theme.TextDim)
		}
		if p.Current {
			style = style.Bold(true)
		}
		line := fmt.Sprintf("%s %2d %s", marker, p.Index+1, p.Page.Title)
		b.WriteString(style.MaxWidth(width-lipgloss.Width(flags)).Render(line))
		b.WriteString(theme.Done.Render(flags))
		b.WriteString("\n")
	}
	return lipgloss.NewStyle().Width(width).Render(b.String())
}

func (c *CourseScreen) renderDetail(pages []progress.PageStatus, snap *store.Snapshot, width int) string {
	cur := pages[snap.PageIndex]
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().
		Foreground(theme.AccentColor(cur.Accent)).
		Bold(true).
		Render(cur.Page.Title))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("Page %d of %d · %s",
		cur.Index+1, len(pages), cur.Slot)))
	b.WriteString("\n\n")

	if id := cur.Page.ItemID; id != "" {
		done := "not done yet"
		if cur.Completed {
			done = theme.Done.Render("done")
		}
		b.WriteString(theme.Body.Render("Status: ") + done + "\n\n")

		switch {
		case c.editing:
			b.WriteString(c.input.View())
		case cur.HasNote:
			raw, _ := snap.Note(id)
			b.WriteString(theme.Body.Width(width).Render(noteSummary(raw)))
		default:
			b.WriteString(theme.Hint.Render("No reflection yet. Press E to write one."))
		}
		b.WriteString("\n\n")
	}

	sum := progress.Summarize(c.manifest, snap)
	barWidth := min(width, 50)
	b.WriteString(components.NewProgressBar("Quest     ", sum.Overall, true, barWidth).View())
	b.WriteString("\n")
	acts := components.NewProgressBar("Activities", sum.Activities.Ratio(), true, barWidth)
	acts.Fill = theme.AccentColor(progress.Accent(manifest.SlotActivities))
	b.WriteString(acts.View())
	b.WriteString("\n")

	if snap.Finished {
		b.WriteString("\n" + theme.Done.Render("You reached the summit."))
	}
	if c.status != "" {
		b.WriteString("\n" + theme.Hint.Render(c.status))
	}
	return b.String()
}

type noteKind int

const (
	notePlain noteKind = iota
	noteRich
	noteStructured
)

// noteText extracts editable text from a note. Plain strings and rich-text
// objects are editable; bullets, flashcards and recipes are not.
func noteText(raw json.RawMessage) (string, noteKind) {
	if len(raw) == 0 {
		return "", notePlain
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, notePlain
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err == nil && len(fields) == 1 {
		if err := json.Unmarshal(fields["text"], &s); err == nil {
			return s, noteRich
		}
	}
	return "", noteStructured
}

// noteSummary renders any note shape as short plain text.
func noteSummary(raw json.RawMessage) string {
	if t, kind := noteText(raw); kind != noteStructured && t != "" {
		return t
	}
	var b store.Bullets
	if err := json.Unmarshal(raw, &b); err == nil && len(b.Bullets) > 0 {
		return "• " + strings.Join(b.Bullets, "\n• ")
	}
	var f store.Flashcards
	if err := json.Unmarshal(raw, &f); err == nil && len(f.Cards) > 0 {
		return fmt.Sprintf("%d flashcards", len(f.Cards))
	}
	var r store.Recipes
	if err := json.Unmarshal(raw, &r); err == nil && len(r.Groups) > 0 {
		return fmt.Sprintf("%d recipe groups", len(r.Groups))
	}
	return string(raw)
}
