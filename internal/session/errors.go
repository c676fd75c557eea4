package session

import "fmt"

// ErrHostCall describes a runtime verb that did not return the dialect's
// success sentinel. It is logged, never returned to callers of the facade.
type ErrHostCall struct {
	Verb   string
	Result any
	Code   string
	Err    error
}

func (e *ErrHostCall) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("host %s: %v", e.Verb, e.Err)
	}
	if e.Code != "" {
		return fmt.Sprintf("host %s returned %v (error code %s)", e.Verb, e.Result, e.Code)
	}
	return fmt.Sprintf("host %s returned %v", e.Verb, e.Result)
}

func (e *ErrHostCall) Unwrap() error { return e.Err }
