package host

import "testing"

func TestDialect_Succeeded(t *testing.T) {
	tests := []struct {
		name    string
		dialect *Dialect
		result  any
		want    bool
	}{
		{"legacy string true", Legacy, "true", true},
		{"legacy string false", Legacy, "false", false},
		{"legacy bool true", Legacy, true, false},
		{"legacy empty", Legacy, "", false},
		{"legacy nil", Legacy, nil, false},
		{"current string true", Current, "true", true},
		{"current bool true", Current, true, true},
		{"current bool false", Current, false, false},
		{"current string TRUE", Current, "TRUE", false},
		{"current number", Current, int64(1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dialect.Succeeded(tt.result); got != tt.want {
				t.Errorf("Succeeded(%#v) = %v, want %v", tt.result, got, tt.want)
			}
		})
	}
}

func TestDialect_Verbs(t *testing.T) {
	if got := Legacy.Verb(VerbTerminate); got != "LMSFinish" {
		t.Errorf("legacy terminate = %q", got)
	}
	if got := Current.Verb(VerbTerminate); got != "Terminate" {
		t.Errorf("current terminate = %q", got)
	}
	if Legacy.Keys().Location == Current.Keys().Location {
		t.Error("location keys should differ between dialects")
	}
}

func TestDetectDialect(t *testing.T) {
	if d := DetectDialect(newFakeRuntime(Legacy)); d != Legacy {
		t.Errorf("got %s, want legacy", d)
	}
	if d := DetectDialect(newFakeRuntime(Current)); d != Current {
		t.Errorf("got %s, want current", d)
	}
}

func TestDialectByName(t *testing.T) {
	if DialectByName("legacy") != Legacy || DialectByName("current") != Current {
		t.Error("known names should resolve")
	}
	if DialectByName("other") != nil {
		t.Error("unknown name should be nil")
	}
}
