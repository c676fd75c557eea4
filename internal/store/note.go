package store

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Note shapes the course writes. The engine treats note values as opaque
// JSON; these helpers only exist so callers build well-formed values.

// RichText is a formatted free-text answer.
type RichText struct {
	Text string `json:"text"`
}

// Bullets is a list answer.
type Bullets struct {
	Bullets []string `json:"bullets"`
}

// Flashcard is one front/back pair.
type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// Flashcards is a deck answer.
type Flashcards struct {
	Cards []Flashcard `json:"cards"`
}

// RecipeGroup is a titled list of steps.
type RecipeGroup struct {
	Title string   `json:"title"`
	Items []string `json:"items"`
}

// Recipes is a grouped-recipe answer.
type Recipes struct {
	Groups []RecipeGroup `json:"groups"`
}

// TextNote encodes plain text as a note value.
func TextNote(text string) json.RawMessage {
	b, _ := json.Marshal(text)
	return b
}

// MakeNote encodes any of the note shapes.
func MakeNote(v any) (json.RawMessage, error) {
	return json.Marshal(v)
}

// normalizeNote compacts valid JSON and wraps anything else as a string.
func normalizeNote(raw json.RawMessage) json.RawMessage {
	if !json.Valid(raw) {
		return TextNote(string(raw))
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return TextNote(string(raw))
	}
	return buf.Bytes()
}

// NoteHasContent reports whether a note value holds anything the learner
// wrote: a non-blank string, or an object or array with at least one
// non-empty leaf.
func NoteHasContent(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	return hasContent(v)
}

func hasContent(v any) bool {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x) != ""
	case []any:
		for _, e := range x {
			if hasContent(e) {
				return true
			}
		}
	case map[string]any:
		for _, e := range x {
			if hasContent(e) {
				return true
			}
		}
	case bool, float64:
		return true
	}
	return false
}
