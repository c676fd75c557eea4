package host

// Verb names a canonical runtime operation independent of dialect.
type Verb int

const (
	VerbInitialize Verb = iota
	VerbGetValue
	VerbSetValue
	VerbCommit
	VerbTerminate
	VerbLastError
)

// Keys holds the data-model element names a dialect uses.
type Keys struct {
	SuspendData string
	Location    string
	Completion  string
	Exit        string
}

// Data-model limits on the suspend data element, in characters.
const (
	LegacySuspendLimit  = 4096
	CurrentSuspendLimit = 64000
)

// Dialect is one of the two verb-naming and success conventions a host
// runtime may speak. Values are compared by identity; use Legacy or Current.
type Dialect struct {
	name      string
	slot      string
	verbs     map[Verb]string
	keys      Keys
	limit     int
	succeeded func(result any) bool
}

// Legacy is the older dialect published under the "API" slot.
var Legacy = &Dialect{
	name: "legacy",
	slot: "API",
	verbs: map[Verb]string{
		VerbInitialize: "LMSInitialize",
		VerbGetValue:   "LMSGetValue",
		VerbSetValue:   "LMSSetValue",
		VerbCommit:     "LMSCommit",
		VerbTerminate:  "LMSFinish",
		VerbLastError:  "LMSGetLastError",
	},
	keys: Keys{
		SuspendData: "cmi.suspend_data",
		Location:    "cmi.core.lesson_location",
		Completion:  "cmi.core.lesson_status",
		Exit:        "cmi.core.exit",
	},
	limit: LegacySuspendLimit,
	// Legacy runtimes only ever answer with the strings "true" and "false".
	succeeded: func(result any) bool {
		s, ok := result.(string)
		return ok && s == "true"
	},
}

// Current is the newer dialect published under the "API_1484_11" slot.
var Current = &Dialect{
	name: "current",
	slot: "API_1484_11",
	verbs: map[Verb]string{
		VerbInitialize: "Initialize",
		VerbGetValue:   "GetValue",
		VerbSetValue:   "SetValue",
		VerbCommit:     "Commit",
		VerbTerminate:  "Terminate",
		VerbLastError:  "GetLastError",
	},
	keys: Keys{
		SuspendData: "cmi.suspend_data",
		Location:    "cmi.location",
		Completion:  "cmi.completion_status",
		Exit:        "cmi.exit",
	},
	limit: CurrentSuspendLimit,
	succeeded: func(result any) bool {
		switch v := result.(type) {
		case bool:
			return v
		case string:
			return v == "true"
		}
		return false
	},
}

// slots lists the global slot names probed in each frame, in order.
var slots = []string{Legacy.slot, Current.slot}

// legacyProbe is the verb whose presence marks a runtime as legacy.
const legacyProbe = "LMSInitialize"

// Name returns "legacy" or "current".
func (d *Dialect) Name() string { return d.name }

// Slot returns the global name this dialect's runtime is usually published under.
func (d *Dialect) Slot() string { return d.slot }

// Verb returns the dialect's method name for v.
func (d *Dialect) Verb(v Verb) string { return d.verbs[v] }

// Keys returns the dialect's data-model element names.
func (d *Dialect) Keys() Keys { return d.keys }

// SuspendLimit is the longest suspend data value the host must accept.
func (d *Dialect) SuspendLimit() int { return d.limit }

// Succeeded reports whether result is this dialect's success sentinel.
func (d *Dialect) Succeeded(result any) bool { return d.succeeded(result) }

func (d *Dialect) String() string { return d.name }

// DetectDialect selects the dialect a runtime speaks by probing for the
// legacy initialize verb.
func DetectDialect(rt Runtime) *Dialect {
	if rt.Has(legacyProbe) {
		return Legacy
	}
	return Current
}

// DialectByName resolves "legacy" or "current". It returns nil for anything else.
func DialectByName(name string) *Dialect {
	switch name {
	case Legacy.name:
		return Legacy
	case Current.name:
		return Current
	}
	return nil
}
