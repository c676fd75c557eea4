// Package host locates the runtime object an embedding LMS publishes to the
// course, possibly several frames above the content window, and detects which
// dialect it speaks.
package host

import (
	"errors"
	"fmt"
)

// Runtime is the host-provided API object. Call returns whatever the host
// returned (a string or bool in practice) or an error when the call threw.
type Runtime interface {
	Has(verb string) bool
	Call(verb string, args ...string) (any, error)
}

// Frame is a capability over one window in the embedding hierarchy. Any method
// may fail when the frame belongs to another origin. A top-level frame returns
// itself from Parent.
type Frame interface {
	Parent() (Frame, error)
	Top() (Frame, error)
	// Slot returns the runtime published under name, or nil when absent.
	Slot(name string) (Runtime, error)
}

// Handle is a located runtime together with its detected dialect.
type Handle struct {
	Runtime Runtime
	Dialect *Dialect
}

// ErrNoParent is returned by frames that have no reachable parent.
var ErrNoParent = errors.New("frame has no parent")

// ErrAccessDenied indicates a frame could not be read, typically because it
// belongs to another origin.
type ErrAccessDenied struct {
	Step string
	Err  error
}

func (e *ErrAccessDenied) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("frame access denied (%s): %v", e.Step, e.Err)
	}
	return fmt.Sprintf("frame access denied (%s)", e.Step)
}

func (e *ErrAccessDenied) Unwrap() error { return e.Err }
