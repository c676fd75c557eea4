package store

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Snapshot is the complete persisted progress state. Snapshots are treated
// as immutable: every change goes through a With* method that returns a new
// value, so holders can detect change by pointer comparison.
type Snapshot struct {
	PageIndex int                        `json:"pageIndex"`
	Notes     map[string]json.RawMessage `json:"notes"`
	Completed map[string]bool            `json:"completed"`
	Visited   PageSet                    `json:"visited"`
	Finished  bool                       `json:"finished"`
	Version   int                        `json:"version"`
	BuildID   string                     `json:"buildId"`
}

// Default returns the starting snapshot for a course build.
func Default(version int, buildID string) *Snapshot {
	return &Snapshot{
		PageIndex: 0,
		Notes:     map[string]json.RawMessage{},
		Completed: map[string]bool{},
		Visited:   NewPageSet(0),
		Version:   version,
		BuildID:   buildID,
	}
}

// clone copies the top level only; maps stay shared until a With* method
// replaces the one it changes.
func (s *Snapshot) clone() *Snapshot {
	c := *s
	return &c
}

// WithNote returns a copy with notes[id] set to value. Values that are not
// valid JSON are stored as a JSON string.
func (s *Snapshot) WithNote(id string, value json.RawMessage) *Snapshot {
	c := s.clone()
	c.Notes = maps.Clone(s.Notes)
	if c.Notes == nil {
		c.Notes = map[string]json.RawMessage{}
	}
	c.Notes[id] = normalizeNote(value)
	return c
}

// WithCompletionToggled returns a copy with completed[id] flipped. A
// cleared flag is removed rather than stored as false.
func (s *Snapshot) WithCompletionToggled(id string) *Snapshot {
	c := s.clone()
	c.Completed = maps.Clone(s.Completed)
	if c.Completed == nil {
		c.Completed = map[string]bool{}
	}
	if c.Completed[id] {
		delete(c.Completed, id)
	} else {
		c.Completed[id] = true
	}
	return c
}

// WithPage returns a copy positioned at page with page added to Visited.
func (s *Snapshot) WithPage(page int) *Snapshot {
	c := s.clone()
	c.PageIndex = page
	c.Visited = s.Visited.With(page)
	return c
}

// WithFinished returns a copy marked finished.
func (s *Snapshot) WithFinished() *Snapshot {
	c := s.clone()
	c.Finished = true
	return c
}

// IsCompleted reports whether item id is marked completed.
func (s *Snapshot) IsCompleted(id string) bool {
	return s.Completed[id]
}

// Note returns the raw note for id.
func (s *Snapshot) Note(id string) (json.RawMessage, bool) {
	n, ok := s.Notes[id]
	return n, ok
}

func (s *Snapshot) String() string {
	return fmt.Sprintf("page=%d visited=%v notes=%d completed=%d finished=%v v%d/%s",
		s.PageIndex, s.Visited.Sorted(), len(s.Notes), len(s.Completed), s.Finished, s.Version, s.BuildID)
}

// PageSet is a set of page indices. It serialises as a sorted JSON array.
type PageSet map[int]struct{}

// NewPageSet returns a set holding pages.
func NewPageSet(pages ...int) PageSet {
	s := make(PageSet, len(pages))
	for _, p := range pages {
		s[p] = struct{}{}
	}
	return s
}

// Has reports whether page is in the set.
func (s PageSet) Has(page int) bool {
	_, ok := s[page]
	return ok
}

// Len returns the number of pages in the set.
func (s PageSet) Len() int { return len(s) }

// With returns a copy of s that also contains page.
func (s PageSet) With(page int) PageSet {
	c := make(PageSet, len(s)+1)
	for p := range s {
		c[p] = struct{}{}
	}
	c[page] = struct{}{}
	return c
}

// Sorted returns the pages in ascending order.
func (s PageSet) Sorted() []int {
	out := slices.Collect(maps.Keys(s))
	slices.Sort(out)
	return out
}

func (s PageSet) MarshalJSON() ([]byte, error) {
	pages := s.Sorted()
	if pages == nil {
		pages = []int{}
	}
	return json.Marshal(pages)
}

func (s *PageSet) UnmarshalJSON(b []byte) error {
	var pages []int
	if err := json.Unmarshal(b, &pages); err != nil {
		return err
	}
	*s = NewPageSet(pages...)
	return nil
}
