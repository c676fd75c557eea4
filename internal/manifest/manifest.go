// Package manifest describes the static, ordered list of course pages the
// engine navigates over.
package manifest

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed course.yaml
var defaultCourse []byte

// PageType tags a page with the role it plays in the course.
type PageType string

const (
	TypeIntro              PageType = "intro"
	TypePreparation        PageType = "preparation"
	TypeActivity           PageType = "activity"
	TypeTeamReflection     PageType = "team-reflection"
	TypeOptionalReflection PageType = "optional-reflection"
	TypeConclusion         PageType = "conclusion"
	TypeResources          PageType = "resources"
)

// Slot is a milestone of the course. Slots are ordered; progress is
// credited linearly through them.
type Slot string

const (
	SlotIntroduction       Slot = "introduction"
	SlotPreparation        Slot = "preparation"
	SlotActivities         Slot = "activities"
	SlotTeamReflection     Slot = "team-reflection"
	SlotOptionalReflection Slot = "optional-reflection"
	SlotConclusion         Slot = "conclusion"
	SlotResources          Slot = "resources"
)

// Slots lists every milestone in course order.
var Slots = []Slot{
	SlotIntroduction,
	SlotPreparation,
	SlotActivities,
	SlotTeamReflection,
	SlotOptionalReflection,
	SlotConclusion,
	SlotResources,
}

var slotOf = map[PageType]Slot{
	TypeIntro:              SlotIntroduction,
	TypePreparation:        SlotPreparation,
	TypeActivity:           SlotActivities,
	TypeTeamReflection:     SlotTeamReflection,
	TypeOptionalReflection: SlotOptionalReflection,
	TypeConclusion:         SlotConclusion,
	TypeResources:          SlotResources,
}

// SlotOf returns the milestone a page type belongs to.
func SlotOf(t PageType) (Slot, bool) {
	s, ok := slotOf[t]
	return s, ok
}

// Page is one entry of the manifest. ItemID is the stable key notes and
// completion flags are stored under; activity pages must carry one.
type Page struct {
	Type   PageType `yaml:"type" json:"type"`
	ItemID string   `yaml:"item,omitempty" json:"item,omitempty"`
	Title  string   `yaml:"title" json:"title"`
}

// Slot returns the milestone the page belongs to.
func (p Page) Slot() Slot {
	return slotOf[p.Type]
}

// Manifest is the ordered page list of one course build.
type Manifest struct {
	Title string `yaml:"title" json:"title"`
	Pages []Page `yaml:"pages" json:"pages"`
}

// Len returns the number of pages.
func (m *Manifest) Len() int { return len(m.Pages) }

// Page returns the page at index i.
func (m *Manifest) Page(i int) (Page, bool) {
	if i < 0 || i >= len(m.Pages) {
		return Page{}, false
	}
	return m.Pages[i], true
}

// IndexOf returns the index of the page carrying itemID, or -1.
func (m *Manifest) IndexOf(itemID string) int {
	for i, p := range m.Pages {
		if p.ItemID != "" && p.ItemID == itemID {
			return i
		}
	}
	return -1
}

// Validate checks the manifest is navigable: at least one page, only known
// page types, and unique item ids with every activity page carrying one.
func (m *Manifest) Validate() error {
	if len(m.Pages) == 0 {
		return errors.New("manifest has no pages")
	}
	seen := make(map[string]int)
	for i, p := range m.Pages {
		if _, ok := slotOf[p.Type]; !ok {
			return fmt.Errorf("page %d: unknown type %q", i, p.Type)
		}
		if p.Type == TypeActivity && p.ItemID == "" {
			return fmt.Errorf("page %d: activity without item id", i)
		}
		if p.ItemID == "" {
			continue
		}
		if j, dup := seen[p.ItemID]; dup {
			return fmt.Errorf("page %d: item id %q already used by page %d", i, p.ItemID, j)
		}
		seen[p.ItemID] = i
	}
	return nil
}

// Parse decodes and validates a YAML manifest.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	return &m, nil
}

// Load reads a YAML manifest from path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(data)
}

// Default returns the course bundled with the binary.
func Default() *Manifest {
	m, err := Parse(defaultCourse)
	if err != nil {
		panic(fmt.Sprintf("embedded course manifest: %v", err))
	}
	return m
}
