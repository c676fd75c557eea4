package host

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/dop251/goja"
)

//go:embed lms.js
var lmsScript string

// Bindings backs the __hostGet/__hostSet functions exposed to scripts, letting
// a scripted host keep its data model somewhere durable.
type Bindings interface {
	HostGet(key string) (string, bool)
	HostSet(key, value string)
}

// ErrScript wraps an exception thrown by script code.
type ErrScript struct {
	Op  string
	Err error
}

func (e *ErrScript) Error() string {
	return fmt.Sprintf("script %s: %v", e.Op, e.Err)
}

func (e *ErrScript) Unwrap() error { return e.Err }

// ScriptHost is a frame hierarchy described by a JavaScript program. The
// program must define a global "window" object; its "parent" and "top"
// properties form the frame chain and it may carry an "API" or "API_1484_11"
// runtime object. Property getters that throw behave like cross-origin frames.
type ScriptHost struct {
	mu     sync.Mutex
	vm     *goja.Runtime
	get    goja.Callable
	frames map[*goja.Object]*JSFrame
	window *JSFrame
}

type scriptConfig struct {
	bindings Bindings
	globals  map[string]any
}

// ScriptOption customises LoadScript.
type ScriptOption func(*scriptConfig)

// WithBindings sets the storage behind __hostGet/__hostSet. Defaults to an
// in-memory map.
func WithBindings(b Bindings) ScriptOption {
	return func(c *scriptConfig) { c.bindings = b }
}

// WithGlobal defines a global variable before the script runs.
func WithGlobal(name string, value any) ScriptOption {
	return func(c *scriptConfig) { c.globals[name] = value }
}

// LoadScript runs src in a fresh VM and returns the resulting frame tree.
func LoadScript(name, src string, opts ...ScriptOption) (*ScriptHost, error) {
	cfg := scriptConfig{globals: map[string]any{}}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.bindings == nil {
		cfg.bindings = &memoryBindings{values: map[string]string{}}
	}

	vm := goja.New()
	for k, v := range cfg.globals {
		if err := vm.Set(k, v); err != nil {
			return nil, fmt.Errorf("set global %s: %w", k, err)
		}
	}
	b := cfg.bindings
	if err := vm.Set("__hostGet", func(key string) any {
		if v, ok := b.HostGet(key); ok {
			return v
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("bind __hostGet: %w", err)
	}
	if err := vm.Set("__hostSet", func(key, value string) {
		b.HostSet(key, value)
	}); err != nil {
		return nil, fmt.Errorf("bind __hostSet: %w", err)
	}

	if _, err := vm.RunScript(name, src); err != nil {
		return nil, &ErrScript{Op: "load " + name, Err: err}
	}

	getter, err := vm.RunString(`(function (o, k) { return o[k]; })`)
	if err != nil {
		return nil, fmt.Errorf("compile accessor: %w", err)
	}
	get, ok := goja.AssertFunction(getter)
	if !ok {
		return nil, errors.New("accessor is not callable")
	}

	win := vm.Get("window")
	if win == nil || goja.IsUndefined(win) || goja.IsNull(win) {
		return nil, fmt.Errorf("script %s: no global window defined", name)
	}
	winObj, ok := win.(*goja.Object)
	if !ok {
		return nil, fmt.Errorf("script %s: window is not an object", name)
	}

	h := &ScriptHost{
		vm:     vm,
		get:    get,
		frames: map[*goja.Object]*JSFrame{},
	}
	h.window = h.frame(winObj)
	return h, nil
}

// SimulatedLMS returns a script host with a runtime of dialect d published at
// the top of a chain of depth frames. When crossOrigin is set, every
// intermediate frame throws on slot access.
func SimulatedLMS(d *Dialect, depth int, crossOrigin bool, opts ...ScriptOption) (*ScriptHost, error) {
	if d == nil {
		return nil, errors.New("simulated lms: dialect required")
	}
	opts = append(opts,
		WithGlobal("__lmsDialect", d.Name()),
		WithGlobal("__lmsDepth", depth),
		WithGlobal("__lmsCrossOrigin", crossOrigin),
	)
	return LoadScript("lms.js", lmsScript, opts...)
}

// Window returns the content window the script defined.
func (h *ScriptHost) Window() Frame { return h.window }

// frame returns the canonical JSFrame for obj so identity comparison works.
func (h *ScriptHost) frame(obj *goja.Object) *JSFrame {
	if f, ok := h.frames[obj]; ok {
		return f
	}
	f := &JSFrame{host: h, obj: obj}
	h.frames[obj] = f
	return f
}

// prop reads obj[key] through script code so throwing getters surface as errors.
func (h *ScriptHost) prop(obj *goja.Object, key string) (goja.Value, error) {
	v, err := h.get(goja.Undefined(), obj, h.vm.ToValue(key))
	if err != nil {
		return nil, err
	}
	return v, nil
}

func isNullish(v goja.Value) bool {
	return v == nil || goja.IsUndefined(v) || goja.IsNull(v)
}

// JSFrame is one window object inside a ScriptHost.
type JSFrame struct {
	host *ScriptHost
	obj  *goja.Object
}

func (f *JSFrame) Parent() (Frame, error) { return f.related("parent") }

func (f *JSFrame) Top() (Frame, error) { return f.related("top") }

func (f *JSFrame) related(key string) (Frame, error) {
	f.host.mu.Lock()
	defer f.host.mu.Unlock()

	v, err := f.host.prop(f.obj, key)
	if err != nil {
		return nil, &ErrAccessDenied{Step: key, Err: err}
	}
	if isNullish(v) {
		// A window without parent/top behaves like a top-level window.
		return f, nil
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil, &ErrAccessDenied{Step: key, Err: fmt.Errorf("%s is not an object", key)}
	}
	return f.host.frame(obj), nil
}

func (f *JSFrame) Slot(name string) (Runtime, error) {
	f.host.mu.Lock()
	defer f.host.mu.Unlock()

	v, err := f.host.prop(f.obj, name)
	if err != nil {
		return nil, &ErrAccessDenied{Step: "slot " + name, Err: err}
	}
	if isNullish(v) {
		return nil, nil
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil, nil
	}
	return &jsRuntime{host: f.host, obj: obj}, nil
}

// jsRuntime adapts a script object to Runtime.
type jsRuntime struct {
	host *ScriptHost
	obj  *goja.Object
}

func (r *jsRuntime) Has(verb string) bool {
	r.host.mu.Lock()
	defer r.host.mu.Unlock()

	v, err := r.host.prop(r.obj, verb)
	if err != nil {
		return false
	}
	_, ok := goja.AssertFunction(v)
	return ok
}

func (r *jsRuntime) Call(verb string, args ...string) (any, error) {
	r.host.mu.Lock()
	defer r.host.mu.Unlock()

	v, err := r.host.prop(r.obj, verb)
	if err != nil {
		return nil, &ErrScript{Op: verb, Err: err}
	}
	fn, ok := goja.AssertFunction(v)
	if !ok {
		return nil, &ErrScript{Op: verb, Err: errors.New("not a function")}
	}
	jsArgs := make([]goja.Value, len(args))
	for i, a := range args {
		jsArgs[i] = r.host.vm.ToValue(a)
	}
	res, err := fn(r.obj, jsArgs...)
	if err != nil {
		return nil, &ErrScript{Op: verb, Err: err}
	}
	if isNullish(res) {
		return nil, nil
	}
	return res.Export(), nil
}

type memoryBindings struct {
	mu     sync.Mutex
	values map[string]string
}

func (m *memoryBindings) HostGet(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *memoryBindings) HostSet(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}
