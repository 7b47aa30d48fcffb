package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestNewObjectID(t *testing.T) {
	a := NewObjectID("Doc")
	b := NewObjectID("Doc")
	if a.Scheme != "Doc" || a.Value == "" {
		t.Fatalf("unexpected id: %v", a)
	}
	if a == b {
		t.Fatalf("expected distinct values, got %v twice", a)
	}
}

func TestParseObjectID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ObjectID
		wantErr bool
	}{
		{name: "valid", input: "Doc:abc", want: ObjectID{Scheme: "Doc", Value: "abc"}},
		{name: "value with colon", input: "Doc:a:b", want: ObjectID{Scheme: "Doc", Value: "a:b"}},
		{name: "missing scheme", input: ":abc", wantErr: true},
		{name: "missing value", input: "Doc:", wantErr: true},
		{name: "no separator", input: "Doc", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseObjectID(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidArgument) {
					t.Fatalf("expected invalid argument, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestUniqueIDRendering(t *testing.T) {
	oid := ObjectID{Scheme: "Doc", Value: "abc"}
	tests := []struct {
		name          string
		versionOrd    int
		correctionOrd int
		want          string
	}{
		{name: "first version", versionOrd: 0, correctionOrd: 0, want: "Doc:abc:0"},
		{name: "later version", versionOrd: 3, correctionOrd: 0, want: "Doc:abc:3"},
		{name: "corrected version", versionOrd: 3, correctionOrd: 2, want: "Doc:abc:3.2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uid := NewUniqueID(oid, tt.versionOrd, tt.correctionOrd)
			if uid.String() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, uid.String())
			}

			parsed, err := ParseUniqueID(uid.String())
			if err != nil {
				t.Fatalf("round trip failed: %v", err)
			}
			if parsed != uid {
				t.Errorf("round trip changed id: %v != %v", parsed, uid)
			}

			v, c, ok := parsed.Ordinals()
			if !ok || v != tt.versionOrd || c != tt.correctionOrd {
				t.Errorf("expected ordinals (%d, %d), got (%d, %d, %v)", tt.versionOrd, tt.correctionOrd, v, c, ok)
			}
		})
	}
}

func TestParseUniqueIDUnversioned(t *testing.T) {
	uid, err := ParseUniqueID("Doc:abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if uid.IsVersioned() {
		t.Errorf("expected unversioned id")
	}
	if uid.String() != "Doc:abc" {
		t.Errorf("expected bare form, got %q", uid.String())
	}
	if _, _, ok := uid.Ordinals(); ok {
		t.Errorf("unversioned id must yield no ordinals")
	}
}

func TestParseUniqueIDColonValue(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantValue   string
		wantVersion string
	}{
		{name: "colon value unversioned", input: "Doc:a:b", wantValue: "a:b"},
		{name: "colon value versioned", input: "Doc:a:b:3", wantValue: "a:b", wantVersion: "3"},
		{name: "colon value corrected version", input: "Doc:a:b:3.2", wantValue: "a:b", wantVersion: "3.2"},
		{name: "non-numeric tail stays in value", input: "Doc:a:v2x", wantValue: "a:v2x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uid, err := ParseUniqueID(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if uid.ObjectID.Value != tt.wantValue || uid.Version != tt.wantVersion {
				t.Fatalf("expected value %q version %q, got %q %q", tt.wantValue, tt.wantVersion, uid.ObjectID.Value, uid.Version)
			}
			if uid.String() != tt.input {
				t.Errorf("round trip changed id: %q != %q", uid.String(), tt.input)
			}
		})
	}

	// An id built from a colon value renders and parses back unchanged.
	built := NewUniqueID(ObjectID{Scheme: "Doc", Value: "a:b"}, 2, 0)
	parsed, err := ParseUniqueID(built.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed != built {
		t.Errorf("round trip changed id: %v != %v", parsed, built)
	}
}

func TestParseUniqueIDMalformed(t *testing.T) {
	for _, input := range []string{"", "Doc", ":abc:1", "Doc::1", "Doc:abc:"} {
		t.Run(input, func(t *testing.T) {
			if _, err := ParseUniqueID(input); !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("expected invalid argument for %q, got %v", input, err)
			}
		})
	}
}

func TestOrdinalsMalformedVersion(t *testing.T) {
	for _, version := range []string{"x", "1.x", "-1", "1.-2", "1.2.3"} {
		t.Run(version, func(t *testing.T) {
			uid := UniqueID{ObjectID: ObjectID{Scheme: "Doc", Value: "abc"}, Version: version}
			if _, _, ok := uid.Ordinals(); ok {
				t.Errorf("expected no ordinals for version %q", version)
			}
		})
	}
}

func TestVersionCorrectionString(t *testing.T) {
	vc := LatestVersionCorrection()
	if !vc.IsLatest() {
		t.Errorf("expected latest coordinate")
	}
	if !strings.Contains(vc.String(), "LATEST") {
		t.Errorf("expected LATEST markers, got %q", vc.String())
	}
}
