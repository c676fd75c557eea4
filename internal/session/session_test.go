package session

import (
	"errors"
	"testing"

	"github.com/abhisek/reflectquest/internal/host"
)

// scriptedRuntime answers each verb with a fixed result and records calls.
type scriptedRuntime struct {
	results map[string]any
	errs    map[string]error
	values  map[string]string
	panics  map[string]string
	calls   []string
}

func newScriptedRuntime(d *host.Dialect) *scriptedRuntime {
	ok := any("true")
	if d == host.Current {
		ok = true
	}
	rt := &scriptedRuntime{
		results: map[string]any{},
		errs:    map[string]error{},
		values:  map[string]string{},
		panics:  map[string]string{},
	}
	for _, v := range []host.Verb{host.VerbInitialize, host.VerbSetValue, host.VerbCommit, host.VerbTerminate} {
		rt.results[d.Verb(v)] = ok
	}
	rt.results[d.Verb(host.VerbGetValue)] = nil
	rt.results[d.Verb(host.VerbLastError)] = "0"
	return rt
}

func (r *scriptedRuntime) Has(verb string) bool {
	_, ok := r.results[verb]
	return ok
}

func (r *scriptedRuntime) Call(verb string, args ...string) (any, error) {
	r.calls = append(r.calls, verb)
	if msg, ok := r.panics[verb]; ok {
		panic(msg)
	}
	if err := r.errs[verb]; err != nil {
		return nil, err
	}
	switch verb {
	case "LMSGetValue", "GetValue":
		return r.values[args[0]], nil
	case "LMSSetValue", "SetValue":
		r.values[args[0]] = args[1]
	}
	return r.results[verb], nil
}

type staticSource struct {
	h       *host.Handle
	lookups int
}

func (s *staticSource) Locate() *host.Handle {
	s.lookups++
	return s.h
}

func newTestSession(d *host.Dialect) (*Session, *scriptedRuntime) {
	rt := newScriptedRuntime(d)
	return New(&staticSource{h: &host.Handle{Runtime: rt, Dialect: d}}), rt
}

func TestSession_NoHost(t *testing.T) {
	for _, s := range []*Session{New(nil), New(&staticSource{})} {
		if s.Initialize() {
			t.Error("Initialize without host should fail")
		}
		if s.State() != StateUninitialized {
			t.Errorf("state = %s, want uninitialized", s.State())
		}
		if _, ok := s.GetValue("cmi.suspend_data"); ok {
			t.Error("GetValue without host should fail")
		}
		if s.SetValue("k", "v") || s.Save() || s.Terminate() {
			t.Error("verbs without host should fail")
		}
		if s.Dialect() != nil {
			t.Error("no dialect without host")
		}
	}
}

func TestSession_VerbsRequireActive(t *testing.T) {
	s, rt := newTestSession(host.Legacy)

	if _, ok := s.GetValue("cmi.suspend_data"); ok {
		t.Error("GetValue before initialize should fail")
	}
	if s.SetValue("k", "v") || s.Save() || s.Terminate() {
		t.Error("verbs before initialize should fail")
	}
	if len(rt.calls) != 0 {
		t.Errorf("host contacted before initialize: %v", rt.calls)
	}
}

func TestSession_Lifecycle(t *testing.T) {
	tests := []struct {
		name    string
		dialect *host.Dialect
		verbs   []string
	}{
		{"legacy", host.Legacy, []string{"LMSInitialize", "LMSSetValue", "LMSGetValue", "LMSCommit", "LMSCommit", "LMSFinish"}},
		{"current", host.Current, []string{"Initialize", "SetValue", "GetValue", "Commit", "Commit", "Terminate"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, rt := newTestSession(tt.dialect)

			if !s.Initialize() {
				t.Fatal("Initialize failed")
			}
			if !s.Active() {
				t.Fatal("expected active")
			}
			if !s.SetValue("cmi.suspend_data", "{}") {
				t.Error("SetValue failed")
			}
			v, ok := s.GetValue("cmi.suspend_data")
			if !ok || v != "{}" {
				t.Errorf("GetValue = %q, %v", v, ok)
			}
			if !s.Save() {
				t.Error("Save failed")
			}
			if !s.Terminate() {
				t.Error("Terminate failed")
			}
			if s.State() != StateTerminated {
				t.Errorf("state = %s, want terminated", s.State())
			}

			if len(rt.calls) != len(tt.verbs) {
				t.Fatalf("calls = %v, want %v", rt.calls, tt.verbs)
			}
			for i := range tt.verbs {
				if rt.calls[i] != tt.verbs[i] {
					t.Errorf("call %d = %s, want %s", i, rt.calls[i], tt.verbs[i])
				}
			}

			// Terminated sessions are inert.
			before := len(rt.calls)
			if s.Initialize() || s.SetValue("k", "v") || s.Save() || s.Terminate() {
				t.Error("verbs after terminate should fail")
			}
			if len(rt.calls) != before {
				t.Error("host contacted after terminate")
			}
		})
	}
}

func TestSession_InitializeRejected(t *testing.T) {
	s, rt := newTestSession(host.Legacy)
	rt.results["LMSInitialize"] = "false"
	rt.results["LMSGetLastError"] = "101"

	if s.Initialize() {
		t.Fatal("expected rejection")
	}
	if s.State() != StateUninitialized {
		t.Errorf("state = %s, want uninitialized", s.State())
	}

	// A later attempt may still succeed.
	rt.results["LMSInitialize"] = "true"
	if !s.Initialize() {
		t.Fatal("retry should succeed")
	}
}

func TestSession_SentinelIsDialectSpecific(t *testing.T) {
	// A boolean true is not the legacy success sentinel.
	s, rt := newTestSession(host.Legacy)
	rt.results["LMSInitialize"] = true
	if s.Initialize() {
		t.Error("legacy should not accept boolean true")
	}

	s, rt = newTestSession(host.Current)
	rt.results["Initialize"] = "true"
	if !s.Initialize() {
		t.Error("current should accept the string true")
	}
}

func TestSession_TerminateCommitsFirst(t *testing.T) {
	s, rt := newTestSession(host.Current)
	if !s.Initialize() {
		t.Fatal("Initialize failed")
	}
	rt.calls = nil

	if !s.Terminate() {
		t.Fatal("Terminate failed")
	}
	if len(rt.calls) != 2 || rt.calls[0] != "Commit" || rt.calls[1] != "Terminate" {
		t.Errorf("calls = %v, want [Commit Terminate]", rt.calls)
	}
}

func TestSession_TerminateRejectedStaysActive(t *testing.T) {
	s, rt := newTestSession(host.Current)
	s.Initialize()
	rt.results["Terminate"] = false

	if s.Terminate() {
		t.Fatal("expected failure")
	}
	if !s.Active() {
		t.Error("failed terminate should leave the session active")
	}
}

func TestSession_HostErrorsAreFailures(t *testing.T) {
	s, rt := newTestSession(host.Current)
	s.Initialize()
	rt.errs["SetValue"] = errors.New("exception")
	rt.errs["GetValue"] = errors.New("exception")

	if s.SetValue("k", "v") {
		t.Error("SetValue should report failure")
	}
	if _, ok := s.GetValue("k"); ok {
		t.Error("GetValue should report failure")
	}
}

func TestSession_HostPanicsAreFailures(t *testing.T) {
	s, rt := newTestSession(host.Legacy)
	s.Initialize()
	rt.panics["LMSSetValue"] = "host blew up"
	rt.panics["LMSGetValue"] = "host blew up"

	if s.SetValue("k", "v") {
		t.Error("SetValue should report failure")
	}
	if _, ok := s.GetValue("k"); ok {
		t.Error("GetValue should report failure")
	}
	if !s.Active() {
		t.Fatal("a panicking verb must not change the state")
	}

	// the facade lock must still be free
	if !s.Save() {
		t.Error("Save should still reach the host")
	}
	if !s.Terminate() {
		t.Error("Terminate should still reach the host")
	}
}

func TestSession_PanickingLastErrorIsIgnored(t *testing.T) {
	s, rt := newTestSession(host.Legacy)
	s.Initialize()
	rt.results["LMSSetValue"] = "false"
	rt.panics["LMSGetLastError"] = "no error table"

	if s.SetValue("k", "v") {
		t.Error("SetValue should report the rejection")
	}
	if !s.Save() {
		t.Error("Save should still reach the host")
	}
}

func TestSession_LocatesOnce(t *testing.T) {
	src := &staticSource{h: &host.Handle{Runtime: newScriptedRuntime(host.Legacy), Dialect: host.Legacy}}
	s := New(src)
	s.Initialize()
	s.Initialize()
	if src.lookups != 1 {
		t.Errorf("lookups = %d, want 1", src.lookups)
	}
	if s.Dialect() != host.Legacy {
		t.Errorf("dialect = %v", s.Dialect())
	}
}

func TestSession_SimulatedLMS(t *testing.T) {
	sh, err := host.SimulatedLMS(host.Legacy, 3, true)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	s := New(host.NewLocator(sh.Window()))

	if !s.Initialize() {
		t.Fatal("Initialize failed")
	}
	if !s.SetValue("cmi.core.lesson_location", "2") {
		t.Fatal("SetValue failed")
	}
	if v, ok := s.GetValue("cmi.core.lesson_location"); !ok || v != "2" {
		t.Errorf("GetValue = %q, %v", v, ok)
	}
	if !s.Terminate() {
		t.Fatal("Terminate failed")
	}
}
