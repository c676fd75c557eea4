package host

import (
	"fmt"
	"log/slog"
	"sync"
)

// DefaultMaxDepth bounds the upward frame walk.
const DefaultMaxDepth = 10

// Locator finds the host runtime starting from the content window and caches
// the first handle it finds.
type Locator struct {
	window   Frame
	maxDepth int
	logger   *slog.Logger

	mu     sync.Mutex
	cached *Handle
}

// Option customises a Locator.
type Option func(*Locator)

// WithMaxDepth sets how many ancestors the walk may visit. Values below 1 are ignored.
func WithMaxDepth(n int) Option {
	return func(l *Locator) {
		if n > 0 {
			l.maxDepth = n
		}
	}
}

// WithLogger sets the logger used for search diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Locator) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLocator creates a Locator rooted at window. A nil window yields a locator
// that never finds anything.
func NewLocator(window Frame, opts ...Option) *Locator {
	l := &Locator{
		window:   window,
		maxDepth: DefaultMaxDepth,
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Locate returns the host handle or nil when no host is present. After the
// first success the cached handle is returned without searching again.
func (l *Locator) Locate() *Handle {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cached != nil {
		return l.cached
	}
	if l.window == nil {
		return nil
	}

	h := l.search()
	if h == nil {
		l.logger.Debug("host runtime not found", "max_depth", l.maxDepth)
		return nil
	}
	l.logger.Info("host runtime located", "dialect", h.Dialect.Name())
	l.cached = h
	return h
}

// search runs the ordered lookup: own window, parent, top, then a bounded
// walk up the parent chain.
func (l *Locator) search() *Handle {
	if h := l.probe("window", l.window); h != nil {
		return h
	}

	parent, err := guardFrame(l.window.Parent)
	if err != nil {
		l.logger.Debug("parent frame unreadable", "error", err)
	} else if h := l.probe("parent", parent); h != nil {
		return h
	}

	top, err := guardFrame(l.window.Top)
	if err != nil {
		l.logger.Debug("top frame unreadable", "error", err)
	} else if h := l.probe("top", top); h != nil {
		return h
	}

	if parent == nil {
		return nil
	}
	w := parent
	for depth := 0; depth < l.maxDepth; depth++ {
		next, err := guardFrame(w.Parent)
		if err != nil {
			l.logger.Debug("frame walk stopped", "depth", depth, "error", err)
			return nil
		}
		if next == nil || sameFrame(next, w) {
			return nil
		}
		w = next
		if h := l.probe(fmt.Sprintf("ancestor[%d]", depth+2), w); h != nil {
			return h
		}
	}
	return nil
}

// probe checks both well-known slots of f. Failures on one slot do not
// prevent the other from being read.
func (l *Locator) probe(step string, f Frame) *Handle {
	if f == nil {
		return nil
	}
	for _, name := range slots {
		rt, err := guardSlot(f, name)
		if err != nil {
			l.logger.Debug("slot unreadable", "step", step, "slot", name, "error", err)
			continue
		}
		if rt == nil {
			continue
		}
		d, err := guardDialect(rt)
		if err != nil {
			l.logger.Debug("dialect probe failed", "step", step, "slot", name, "error", err)
			continue
		}
		l.logger.Debug("runtime found", "step", step, "slot", name, "dialect", d.Name())
		return &Handle{Runtime: rt, Dialect: d}
	}
	return nil
}

// guardFrame runs fn, converting a panic from a foreign frame into an error.
func guardFrame(fn func() (Frame, error)) (f Frame, err error) {
	defer func() {
		if r := recover(); r != nil {
			f, err = nil, &ErrAccessDenied{Step: "frame", Err: fmt.Errorf("%v", r)}
		}
	}()
	return fn()
}

func guardSlot(f Frame, name string) (rt Runtime, err error) {
	defer func() {
		if r := recover(); r != nil {
			rt, err = nil, &ErrAccessDenied{Step: "slot " + name, Err: fmt.Errorf("%v", r)}
		}
	}()
	return f.Slot(name)
}

func guardDialect(rt Runtime) (d *Dialect, err error) {
	defer func() {
		if r := recover(); r != nil {
			d, err = nil, &ErrAccessDenied{Step: "dialect", Err: fmt.Errorf("%v", r)}
		}
	}()
	return DetectDialect(rt), nil
}

// sameFrame compares frames by identity. Uncomparable dynamic types are
// treated as distinct.
func sameFrame(a, b Frame) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}
