// Package session wraps a located host runtime in a small lifecycle state
// machine and maps the canonical verbs onto the detected dialect.
package session

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/abhisek/reflectquest/internal/host"
)

// HandleSource yields the host handle, or nil when no host is present.
// *host.Locator satisfies it.
type HandleSource interface {
	Locate() *host.Handle
}

// Session is the facade over the host runtime. Every verb is safe to call in
// any state; verbs that are not permitted return false without contacting
// the host.
type Session struct {
	source HandleSource
	logger *slog.Logger

	mu     sync.Mutex
	state  State
	handle *host.Handle
}

// Option customises a Session.
type Option func(*Session)

// WithLogger sets the logger used for host failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates an uninitialized session. source may be nil.
func New(source HandleSource, opts ...Option) *Session {
	s := &Session{
		source: source,
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Initialize begins the host session. It returns false when no host is
// present or the host rejects the call; the state then stays uninitialized.
func (s *Session) Initialize() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateActive:
		return true
	case StateTerminated:
		return false
	}

	if s.handle == nil && s.source != nil {
		s.handle = s.source.Locate()
	}
	if s.handle == nil {
		return false
	}
	if !s.call(host.VerbInitialize, "") {
		return false
	}
	s.state = StateActive
	s.logger.Info("host session initialized", "dialect", s.handle.Dialect.Name())
	return true
}

// GetValue reads a data-model element. ok is false when the session is not
// active or the call failed.
func (s *Session) GetValue(key string) (value string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return "", false
	}
	verb := s.handle.Dialect.Verb(host.VerbGetValue)
	res, err := s.invoke(verb, key)
	if err != nil {
		s.logger.Warn("host read failed", "key", key, "error", &ErrHostCall{Verb: verb, Err: err})
		return "", false
	}
	switch v := res.(type) {
	case nil:
		return "", true
	case string:
		return v, true
	default:
		return fmt.Sprint(v), true
	}
}

// SetValue writes a data-model element.
func (s *Session) SetValue(key, value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return false
	}
	return s.call(host.VerbSetValue, key, value)
}

// Save asks the host to commit everything set so far.
func (s *Session) Save() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return false
	}
	return s.call(host.VerbCommit, "")
}

// Terminate commits and then ends the host session. Once it succeeds every
// further verb is a no-op.
func (s *Session) Terminate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return false
	}
	if !s.call(host.VerbCommit, "") {
		s.logger.Warn("commit before terminate failed")
	}
	if !s.call(host.VerbTerminate, "") {
		return false
	}
	s.state = StateTerminated
	s.logger.Info("host session terminated")
	return true
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Active reports whether verbs currently reach the host.
func (s *Session) Active() bool {
	return s.State() == StateActive
}

// Dialect returns the detected dialect, or nil before a host was found.
func (s *Session) Dialect() *host.Dialect {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle == nil {
		return nil
	}
	return s.handle.Dialect
}

// call invokes v and compares the result with the dialect's success
// sentinel. Callers hold s.mu.
func (s *Session) call(v host.Verb, args ...string) bool {
	d := s.handle.Dialect
	verb := d.Verb(v)
	res, err := s.invoke(verb, args...)
	if err != nil {
		s.logger.Warn("host call failed", "error", &ErrHostCall{Verb: verb, Err: err})
		return false
	}
	if d.Succeeded(res) {
		return true
	}
	s.logger.Warn("host call rejected", "error", &ErrHostCall{Verb: verb, Result: res, Code: s.lastError()})
	return false
}

func (s *Session) lastError() (code string) {
	defer func() {
		if recover() != nil {
			code = ""
		}
	}()
	verb := s.handle.Dialect.Verb(host.VerbLastError)
	if !s.handle.Runtime.Has(verb) {
		return ""
	}
	res, err := s.invoke(verb)
	if err != nil || res == nil {
		return ""
	}
	return fmt.Sprint(res)
}

// invoke calls verb on the runtime. A panic inside the host comes back as
// an error so it never unwinds through the facade.
func (s *Session) invoke(verb string, args ...string) (res any, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("host panic: %v", r)
		}
	}()
	return s.handle.Runtime.Call(verb, args...)
}
