package sqlite

import (
	"testing"
	"time"
)

func TestInstantConversionRoundTrip(t *testing.T) {
	in := time.Date(2026, 1, 2, 3, 4, 5, 678900000, time.FixedZone("CET", 3600))
	out := nanosToInstant(instantToNanos(in))
	if !out.Equal(in) {
		t.Errorf("round trip changed instant: %v != %v", out, in)
	}
	if out.Location() != time.UTC {
		t.Errorf("expected UTC, got %v", out.Location())
	}
}

func TestNameCondition(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantCond string
		wantArg  string
	}{
		{name: "exact", input: "Growth Fund", wantCond: "LOWER(name) = LOWER(?)", wantArg: "Growth Fund"},
		{name: "interior star stays literal", input: "Gro*th", wantCond: "LOWER(name) = LOWER(?)", wantArg: "Gro*th"},
		{name: "trailing wildcard", input: "Growth*", wantCond: `LOWER(name) LIKE LOWER(?) ESCAPE '\'`, wantArg: "Growth%"},
		{name: "wildcard escapes like metachars", input: "100%_done*", wantCond: `LOWER(name) LIKE LOWER(?) ESCAPE '\'`, wantArg: `100\%\_done%`},
		{name: "bare star matches all", input: "*", wantCond: `LOWER(name) LIKE LOWER(?) ESCAPE '\'`, wantArg: "%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond, arg := nameCondition(tt.input)
			if cond != tt.wantCond || arg != tt.wantArg {
				t.Errorf("expected (%q, %q), got (%q, %q)", tt.wantCond, tt.wantArg, cond, arg)
			}
		})
	}
}

func TestMarshalAttributes(t *testing.T) {
	s, err := marshalAttributes(nil)
	if err != nil || s != "{}" {
		t.Fatalf("expected empty object for nil map, got %q (%v)", s, err)
	}

	s, err = marshalAttributes(map[string]string{"owner": "desk-7"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	attrs, err := unmarshalAttributes(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attrs["owner"] != "desk-7" {
		t.Errorf("round trip lost attribute: %v", attrs)
	}

	if _, err := unmarshalAttributes("not json"); err == nil {
		t.Errorf("expected error for malformed attributes")
	}
}
