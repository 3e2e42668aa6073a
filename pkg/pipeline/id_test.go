package pipeline

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func TestIDUnmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  IDKind
		value string
	}{
		{"string", `"input-1"`, KindString, "input-1"},
		{"empty string", `""`, KindString, ""},
		{"unicode string", `"nœud"`, KindString, "nœud"},
		{"integer", `42`, KindNumber, "42"},
		{"negative", `-7`, KindNumber, "-7"},
		{"integral float", `1.0`, KindNumber, "1"},
		{"exponent", `1e0`, KindNumber, "1"},
		{"fraction", `2.5`, KindNumber, "2.5"},
		{"negative zero", `-0.0`, KindNumber, "0"},
		{"true", `true`, KindBool, "true"},
		{"false", `false`, KindBool, "false"},
		{"padded", "  \"a\"\n", KindString, "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id ID
			if err := json.Unmarshal([]byte(tt.input), &id); err != nil {
				t.Fatalf("Unmarshal(%s) error: %v", tt.input, err)
			}
			if id.Kind() != tt.kind {
				t.Errorf("Kind() = %v, want %v", id.Kind(), tt.kind)
			}
			if id.String() != tt.value {
				t.Errorf("String() = %q, want %q", id.String(), tt.value)
			}
		})
	}
}

func TestIDUnmarshalRejects(t *testing.T) {
	for _, input := range []string{`null`, `{}`, `{"a":1}`, `[]`, `[1]`} {
		t.Run(input, func(t *testing.T) {
			var id ID
			if err := id.UnmarshalJSON([]byte(input)); err == nil {
				t.Errorf("UnmarshalJSON(%s) should fail", input)
			}
		})
	}
}

func TestIDIdentity(t *testing.T) {
	decode := func(s string) ID {
		t.Helper()
		var id ID
		if err := id.UnmarshalJSON([]byte(s)); err != nil {
			t.Fatalf("UnmarshalJSON(%s): %v", s, err)
		}
		return id
	}

	if decode(`1`) != decode(`1.0`) || decode(`1`) != decode(`1e0`) {
		t.Error("equal numbers should yield equal IDs")
	}
	if decode(`1`) == decode(`"1"`) {
		t.Error("number 1 and string \"1\" should be different IDs")
	}
	if decode(`true`) == decode(`"true"`) {
		t.Error("boolean true and string \"true\" should be different IDs")
	}
	if decode(`1`) != NumberID(1) {
		t.Error("decoded 1 should equal NumberID(1)")
	}
	if decode(`"a"`) != StringID("a") {
		t.Error("decoded \"a\" should equal StringID(\"a\")")
	}
	if decode(`false`) != BoolID(false) {
		t.Error("decoded false should equal BoolID(false)")
	}

	seen := map[ID]bool{decode(`"x"`): true}
	if !seen[StringID("x")] {
		t.Error("IDs should work as map keys")
	}
}

func TestIDLargeIntegers(t *testing.T) {
	var a, b ID
	if err := a.UnmarshalJSON([]byte(`9007199254740993`)); err != nil {
		t.Fatal(err)
	}
	if err := b.UnmarshalJSON([]byte(`9007199254740992`)); err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("integers beyond float64 precision should stay distinct")
	}
}

func TestIDBeyondInt64(t *testing.T) {
	var a, b ID
	if err := a.UnmarshalJSON([]byte(`18446744073709551616`)); err != nil {
		t.Fatal(err)
	}
	if err := b.UnmarshalJSON([]byte(`18446744073709551617`)); err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("integers beyond int64 should stay distinct")
	}
	if a.String() != "18446744073709551616" {
		t.Errorf("String() = %q, want the submitted digits", a.String())
	}
	data, err := json.Marshal(b)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "18446744073709551617" {
		t.Errorf("Marshal = %s, want 18446744073709551617", data)
	}
}

func TestIDNumberCanonicalForms(t *testing.T) {
	tests := []struct {
		a, b string
	}{
		{`1`, `1.000`},
		{`1`, `10e-1`},
		{`100`, `1E2`},
		{`0.5`, `5e-1`},
		{`0.5`, `0.50`},
		{`-12.25`, `-1225e-2`},
		{`0`, `-0e5`},
		{`18446744073709551616`, `1.8446744073709551616e19`},
	}

	for _, tt := range tests {
		t.Run(tt.a+"="+tt.b, func(t *testing.T) {
			var a, b ID
			if err := a.UnmarshalJSON([]byte(tt.a)); err != nil {
				t.Fatal(err)
			}
			if err := b.UnmarshalJSON([]byte(tt.b)); err != nil {
				t.Fatal(err)
			}
			if a != b {
				t.Errorf("%s and %s should be the same ID, got %q and %q", tt.a, tt.b, a, b)
			}
		})
	}

	var x, y ID
	_ = x.UnmarshalJSON([]byte(`0.1`))
	_ = y.UnmarshalJSON([]byte(`0.10000000000000001`))
	if x == y {
		t.Error("0.1 and 0.10000000000000001 should be different IDs")
	}
}

func TestIDNumberLimits(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ok    bool
	}{
		{"large exponent", `1e1000`, true},
		{"exponent too large", `1e1001`, false},
		{"exponent too small", `1e-1001`, false},
		{"huge exponent", `1e99999999999999999999`, false},
		{"long literal", strings.Repeat("9", maxNumberLen+1), false},
		{"not a number", `1x`, false},
		{"rational form", `1/2`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id ID
			err := id.UnmarshalJSON([]byte(tt.input))
			if (err == nil) != tt.ok {
				t.Errorf("UnmarshalJSON(%.20s) error = %v, want ok=%v", tt.input, err, tt.ok)
			}
		})
	}
}

func TestNumberIDMatchesDecode(t *testing.T) {
	for _, lit := range []string{`3`, `0.5`, `0.1`, `-2.75`, `1e21`, `1.5e-7`} {
		var id ID
		if err := id.UnmarshalJSON([]byte(lit)); err != nil {
			t.Fatal(err)
		}
		var f float64
		if err := json.Unmarshal([]byte(lit), &f); err != nil {
			t.Fatal(err)
		}
		if NumberID(f) != id {
			t.Errorf("NumberID(%v) = %q, decoded %s = %q", f, NumberID(f), lit, id)
		}
	}
}

func TestIDMarshalRoundTrip(t *testing.T) {
	for _, id := range []ID{StringID("a\"b"), NumberID(3), NumberID(0.5), BoolID(true)} {
		data, err := json.Marshal(id)
		if err != nil {
			t.Fatalf("Marshal(%v) error: %v", id, err)
		}
		var got ID
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("Unmarshal(%s) error: %v", data, err)
		}
		if got != id {
			t.Errorf("round trip of %v gave %v", id, got)
		}
	}

	if _, err := json.Marshal(ID{}); err == nil {
		t.Error("marshaling the zero ID should fail")
	}
	if _, err := json.Marshal(NumberID(math.Inf(1))); err == nil {
		t.Error("marshaling an infinite number ID should fail")
	}
}

func TestIDKindString(t *testing.T) {
	tests := map[IDKind]string{
		KindString:  "string",
		KindNumber:  "number",
		KindBool:    "boolean",
		KindInvalid: "invalid",
	}
	for k, want := range tests {
		if got := k.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", k, got, want)
		}
	}
	if !(ID{}).IsZero() {
		t.Error("zero ID should report IsZero")
	}
	if StringID("").IsZero() {
		t.Error("empty string ID should not be zero")
	}
}
