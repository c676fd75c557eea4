package store

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrMalformed indicates stored data that is not a valid snapshot.
type ErrMalformed struct {
	Err error
}

func (e *ErrMalformed) Error() string {
	return fmt.Sprintf("malformed snapshot: %v", e.Err)
}

func (e *ErrMalformed) Unwrap() error { return e.Err }

const snapshotSchemaURL = "schema://quest-snapshot.json"

const snapshotSchemaDef = `{
	"type": "object",
	"required": ["pageIndex", "version", "buildId"],
	"properties": {
		"pageIndex": {"type": "integer", "minimum": 0},
		"notes": {"type": "object"},
		"completed": {"type": "object", "additionalProperties": {"type": "boolean"}},
		"visited": {"type": "array", "items": {"type": "integer", "minimum": 0}},
		"finished": {"type": "boolean"},
		"version": {"type": "integer"},
		"buildId": {"type": "string"}
	}
}`

var (
	schemaOnce     sync.Once
	snapshotSchema *jsonschema.Schema
	schemaErr      error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		var def any
		if err := json.Unmarshal([]byte(snapshotSchemaDef), &def); err != nil {
			schemaErr = fmt.Errorf("parse schema definition: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(snapshotSchemaURL, def); err != nil {
			schemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		snapshotSchema, schemaErr = c.Compile(snapshotSchemaURL)
	})
	return snapshotSchema, schemaErr
}

// Encode serialises a snapshot. Nil collections are written as empty ones
// so that every encoded snapshot decodes again.
func Encode(s *Snapshot) ([]byte, error) {
	if s.Notes == nil || s.Completed == nil {
		c := s.clone()
		if c.Notes == nil {
			c.Notes = map[string]json.RawMessage{}
		}
		if c.Completed == nil {
			c.Completed = map[string]bool{}
		}
		s = c
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return b, nil
}

// Decode parses and validates a serialised snapshot. Any problem is
// reported as *ErrMalformed.
func Decode(b []byte) (*Snapshot, error) {
	var parsed any
	if err := json.Unmarshal(b, &parsed); err != nil {
		return nil, &ErrMalformed{Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	schema, err := compiledSchema()
	if err != nil {
		return nil, &ErrMalformed{Err: fmt.Errorf("compile schema: %w", err)}
	}
	if err := schema.Validate(parsed); err != nil {
		return nil, &ErrMalformed{Err: fmt.Errorf("schema validation failed: %w", err)}
	}

	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, &ErrMalformed{Err: err}
	}
	if s.Notes == nil {
		s.Notes = map[string]json.RawMessage{}
	}
	if s.Completed == nil {
		s.Completed = map[string]bool{}
	}
	if s.Visited == nil {
		s.Visited = NewPageSet()
	}
	return &s, nil
}
