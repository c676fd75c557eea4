// Package progress derives read-only progress figures from a snapshot and
// the course manifest. Every function here is pure.
package progress

import (
	"github.com/abhisek/reflectquest/internal/manifest"
	"github.com/abhisek/reflectquest/internal/store"
)

// Fraction counts visited pages out of a total.
type Fraction struct {
	Done  int
	Total int
}

// Ratio returns Done/Total, or 0 for an empty fraction.
func (f Fraction) Ratio() float64 {
	if f.Total == 0 {
		return 0
	}
	return float64(f.Done) / float64(f.Total)
}

// Complete reports whether every counted page was visited.
func (f Fraction) Complete() bool {
	return f.Done >= f.Total
}

// SlotPages counts the pages of slot in m and how many of them are visited.
func SlotPages(m *manifest.Manifest, visited store.PageSet, slot manifest.Slot) Fraction {
	var f Fraction
	for i, p := range m.Pages {
		if p.Slot() != slot {
			continue
		}
		f.Total++
		if visited.Has(i) {
			f.Done++
		}
	}
	return f
}

// Activities counts visited activity pages.
func Activities(m *manifest.Manifest, visited store.PageSet) Fraction {
	return SlotPages(m, visited, manifest.SlotActivities)
}

// Overall returns course progress in [0, 1]. Each milestone slot present in
// the manifest carries equal weight. The activities slot earns its visited
// fraction; every other slot earns all or nothing. Credit stops after the
// first slot that is not fully visited, so later slots visited out of order
// earn nothing.
func Overall(m *manifest.Manifest, visited store.PageSet) float64 {
	type slotFraction struct {
		slot manifest.Slot
		f    Fraction
	}
	var present []slotFraction
	for _, slot := range manifest.Slots {
		if f := SlotPages(m, visited, slot); f.Total > 0 {
			present = append(present, slotFraction{slot, f})
		}
	}
	if len(present) == 0 {
		return 0
	}

	weight := 1 / float64(len(present))
	var sum float64
	for _, sf := range present {
		switch {
		case sf.slot == manifest.SlotActivities:
			sum += weight * sf.f.Ratio()
		case sf.f.Complete():
			sum += weight
		}
		if !sf.f.Complete() {
			break
		}
	}
	return sum
}

// Accent names the palette colour a milestone is drawn with.
func Accent(slot manifest.Slot) string {
	switch slot {
	case manifest.SlotIntroduction:
		return "violet"
	case manifest.SlotPreparation:
		return "teal"
	case manifest.SlotActivities:
		return "orange"
	case manifest.SlotTeamReflection:
		return "rose"
	case manifest.SlotConclusion:
		return "green"
	default:
		return "slate"
	}
}

// PageStatus is the per-page metadata a page list or map is drawn from.
type PageStatus struct {
	Index     int
	Page      manifest.Page
	Slot      manifest.Slot
	Accent    string
	Current   bool
	Visited   bool
	Completed bool
	HasNote   bool
}

// Pages returns the status of every page in manifest order.
func Pages(m *manifest.Manifest, snap *store.Snapshot) []PageStatus {
	out := make([]PageStatus, len(m.Pages))
	for i, p := range m.Pages {
		ps := PageStatus{
			Index:   i,
			Page:    p,
			Slot:    p.Slot(),
			Accent:  Accent(p.Slot()),
			Current: i == snap.PageIndex,
			Visited: snap.Visited.Has(i),
		}
		if p.ItemID != "" {
			ps.Completed = snap.IsCompleted(p.ItemID)
			if raw, ok := snap.Note(p.ItemID); ok {
				ps.HasNote = store.NoteHasContent(raw)
			}
		}
		out[i] = ps
	}
	return out
}

// Summary gathers the figures status views show.
type Summary struct {
	Page       int
	TotalPages int
	Overall    float64
	Activities Fraction
	Completed  int
	Notes      int
	Finished   bool
}

// Summarize computes a Summary for snap.
func Summarize(m *manifest.Manifest, snap *store.Snapshot) Summary {
	s := Summary{
		Page:       snap.PageIndex,
		TotalPages: m.Len(),
		Overall:    Overall(m, snap.Visited),
		Activities: Activities(m, snap.Visited),
		Finished:   snap.Finished,
	}
	for _, p := range Pages(m, snap) {
		if p.Completed {
			s.Completed++
		}
		if p.HasNote {
			s.Notes++
		}
	}
	return s
}
