package course

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/reflectquest/internal/manifest"
	"github.com/abhisek/reflectquest/internal/quest"
	"github.com/abhisek/reflectquest/internal/router"
	"github.com/abhisek/reflectquest/internal/screen"
	"github.com/abhisek/reflectquest/internal/store"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func testCourseScreen() (*CourseScreen, *quest.Store) {
	m := manifest.Default()
	qs := quest.New(context.Background(), quest.Options{
		SchemaVersion: 1,
		BuildID:       "test",
		TotalPages:    m.Len(),
		Local:         store.NewFallback(store.NewMemory()),
	})
	return New(m, qs, router.New(qs)), qs
}

func TestCourseScreen_Navigation(t *testing.T) {
	c, qs := testCourseScreen()

	c.Update(specialKey(tea.KeyRight))
	c.Update(keyPress('l'))
	if got := qs.Snapshot().PageIndex; got != 2 {
		t.Errorf("page = %d, want 2", got)
	}
	c.Update(specialKey(tea.KeyLeft))
	if got := qs.Snapshot().PageIndex; got != 1 {
		t.Errorf("page = %d, want 1", got)
	}
	c.Update(specialKey(tea.KeyEnd))
	if !c.router.AtEnd() {
		t.Error("expected to be at the last page")
	}
	c.Update(router.GoToPageMsg{Index: 3})
	if got := qs.Snapshot().PageIndex; got != 3 {
		t.Errorf("page = %d, want 3", got)
	}
	if c.Title() != "Trail notes" {
		t.Errorf("Title = %q", c.Title())
	}
}

func TestCourseScreen_ToggleDone(t *testing.T) {
	c, qs := testCourseScreen()

	// The intro page has no item, so space does nothing.
	c.Update(specialKey(tea.KeySpace))
	if len(qs.Snapshot().Completed) != 0 {
		t.Error("intro page should not be completable")
	}

	c.Update(router.GoToPageMsg{Index: 2})
	c.Update(specialKey(tea.KeySpace))
	if !qs.Snapshot().IsCompleted("activity-1") {
		t.Error("expected activity-1 completed")
	}
	c.Update(specialKey(tea.KeySpace))
	if qs.Snapshot().IsCompleted("activity-1") {
		t.Error("expected activity-1 cleared")
	}
}

func TestCourseScreen_EditNote(t *testing.T) {
	c, qs := testCourseScreen()
	c.Update(router.GoToPageMsg{Index: 2})

	c.Update(keyPress('e'))
	if !c.editing {
		t.Fatal("expected editing mode")
	}
	for _, r := range "brave" {
		c.Update(keyPress(r))
	}
	c.Update(specialKey(tea.KeyEnter))
	if c.editing {
		t.Error("expected editing to end on Enter")
	}

	raw, ok := qs.Snapshot().Note("activity-1")
	if !ok {
		t.Fatal("expected a saved note")
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil || text != "brave" {
		t.Errorf("note = %s, want \"brave\"", raw)
	}
	if !strings.Contains(c.View(100, 30), "brave") {
		t.Error("expected the note in the page view")
	}
}

func TestCourseScreen_EditCancel(t *testing.T) {
	c, qs := testCourseScreen()
	c.Update(router.GoToPageMsg{Index: 2})

	c.Update(keyPress('e'))
	c.Update(keyPress('x'))
	c.Update(specialKey(tea.KeyEscape))
	if _, ok := qs.Snapshot().Note("activity-1"); ok {
		t.Error("cancelled edit should not save a note")
	}
}

func TestCourseScreen_StructuredNoteIsReadOnly(t *testing.T) {
	c, qs := testCourseScreen()
	ctx := context.Background()
	c.Update(router.GoToPageMsg{Index: 2})

	deck, err := store.MakeNote(store.Flashcards{Cards: []store.Flashcard{{Front: "q", Back: "a"}}})
	if err != nil {
		t.Fatal(err)
	}
	qs.SetNote(ctx, "activity-1", deck)
	before, _ := qs.Snapshot().Note("activity-1")

	c.Update(keyPress('e'))
	if c.editing {
		t.Fatal("structured notes should not open the editor")
	}
	c.Update(keyPress('x'))
	c.Update(specialKey(tea.KeyEnter))

	after, _ := qs.Snapshot().Note("activity-1")
	if string(after) != string(before) {
		t.Errorf("note = %s, want unchanged %s", after, before)
	}
}

func TestCourseScreen_RichNoteKeepsShape(t *testing.T) {
	c, qs := testCourseScreen()
	ctx := context.Background()
	c.Update(router.GoToPageMsg{Index: 2})
	qs.SetNote(ctx, "activity-1", json.RawMessage(`{"text":"rich"}`))

	c.Update(keyPress('e'))
	if !c.editing {
		t.Fatal("rich-text notes should be editable")
	}
	for _, r := range "er" {
		c.Update(keyPress(r))
	}
	c.Update(specialKey(tea.KeyEnter))

	raw, _ := qs.Snapshot().Note("activity-1")
	var rt store.RichText
	if err := json.Unmarshal(raw, &rt); err != nil || rt.Text != "richer" {
		t.Errorf("note = %s, want {\"text\":\"richer\"}", raw)
	}
}

func TestNoteText(t *testing.T) {
	tests := []struct {
		raw  string
		text string
		kind noteKind
	}{
		{``, "", notePlain},
		{`"plain"`, "plain", notePlain},
		{`{"text":"rich"}`, "rich", noteRich},
		{`{"bullets":["a"]}`, "", noteStructured},
		{`{"cards":[]}`, "", noteStructured},
		{`{"text":"t","bullets":["a"]}`, "", noteStructured},
	}
	for _, tt := range tests {
		text, kind := noteText(json.RawMessage(tt.raw))
		if text != tt.text || kind != tt.kind {
			t.Errorf("noteText(%s) = %q, %d; want %q, %d", tt.raw, text, kind, tt.text, tt.kind)
		}
	}
}

func TestCourseScreen_Finish(t *testing.T) {
	c, qs := testCourseScreen()

	c.Update(keyPress('f'))
	if qs.Snapshot().Finished {
		t.Error("finish should only work on the last page")
	}
	c.Update(specialKey(tea.KeyEnd))
	c.Update(keyPress('f'))
	if !qs.Snapshot().Finished {
		t.Error("expected the quest finished")
	}
}

func TestCourseScreen_SummaryAndQuit(t *testing.T) {
	c, _ := testCourseScreen()

	_, cmd := c.Update(keyPress('s'))
	if cmd == nil {
		t.Fatal("expected a push command")
	}
	if _, ok := cmd().(screen.PushMsg); !ok {
		t.Error("expected PushMsg for the summary")
	}

	_, cmd = c.Update(keyPress('q'))
	if cmd == nil {
		t.Error("expected quit command")
	}
}

func TestCourseScreen_KeyHints(t *testing.T) {
	c, _ := testCourseScreen()
	if len(c.KeyHints()) != 3 {
		t.Errorf("intro KeyHints = %d, want 3", len(c.KeyHints()))
	}
	c.Update(router.GoToPageMsg{Index: 2})
	if len(c.KeyHints()) != 5 {
		t.Errorf("activity KeyHints = %d, want 5", len(c.KeyHints()))
	}
}

func TestNoteSummary(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`"plain"`, "plain"},
		{`{"text":"rich"}`, "rich"},
		{`{"bullets":["a","b"]}`, "• a\n• b"},
		{`{"cards":[{"front":"f","back":"b"}]}`, "1 flashcards"},
		{`{"groups":[{"title":"t","items":["x"]}]}`, "1 recipe groups"},
	}
	for _, tt := range tests {
		if got := noteSummary(json.RawMessage(tt.raw)); got != tt.want {
			t.Errorf("noteSummary(%s) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
