package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ObjectID is the stable identity of a document lineage, independent of time.
// It renders as "scheme:value" and is never reused once assigned.
type ObjectID struct {
	Scheme string `json:"scheme"`
	Value  string `json:"value"`
}

// NewObjectID creates an ObjectID with a freshly generated value.
func NewObjectID(scheme string) ObjectID {
	return ObjectID{Scheme: scheme, Value: uuid.NewString()}
}

// ParseObjectID parses the "scheme:value" string form.
func ParseObjectID(s string) (ObjectID, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return ObjectID{}, fmt.Errorf("%w: malformed object id %q", ErrInvalidArgument, s)
	}
	return ObjectID{Scheme: parts[0], Value: parts[1]}, nil
}

// String renders the id as "scheme:value".
func (oid ObjectID) String() string {
	return oid.Scheme + ":" + oid.Value
}

// IsZero reports whether the id is unset.
func (oid ObjectID) IsZero() bool {
	return oid.Scheme == "" && oid.Value == ""
}

// UniqueID is an ObjectID plus a version marker. An empty Version means
// "latest"; a resolved UniqueID returned by the engine is always versioned.
//
// The version string is the version ordinal ("3"), with an internal
// correction ordinal appended after a dot for corrected rows ("3.2"). Only
// the ordinal before the dot participates in "which version" comparisons.
type UniqueID struct {
	ObjectID ObjectID `json:"object_id"`
	Version  string   `json:"version,omitempty"`
}

// NewUniqueID builds a UniqueID from ordinals. A correction ordinal of zero
// renders as the bare version ordinal.
func NewUniqueID(oid ObjectID, versionOrd, correctionOrd int) UniqueID {
	v := strconv.Itoa(versionOrd)
	if correctionOrd > 0 {
		v = fmt.Sprintf("%d.%d", versionOrd, correctionOrd)
	}
	return UniqueID{ObjectID: oid, Version: v}
}

// ParseUniqueID parses "scheme:value" or "scheme:value:version". The version
// is split off the last separator, and only when the final segment is a
// well-formed version string; values may therefore contain colons and still
// round-trip, unless the value itself ends in ":<digits>", which parses as a
// version.
func ParseUniqueID(s string) (UniqueID, error) {
	scheme, rest, found := strings.Cut(s, ":")
	if !found || scheme == "" || rest == "" || strings.HasSuffix(rest, ":") {
		return UniqueID{}, fmt.Errorf("%w: malformed unique id %q", ErrInvalidArgument, s)
	}
	value, version := rest, ""
	if i := strings.LastIndexByte(rest, ':'); i >= 0 && isVersionString(rest[i+1:]) {
		value, version = rest[:i], rest[i+1:]
	}
	if value == "" {
		return UniqueID{}, fmt.Errorf("%w: malformed unique id %q", ErrInvalidArgument, s)
	}
	return UniqueID{ObjectID: ObjectID{Scheme: scheme, Value: value}, Version: version}, nil
}

// isVersionString reports whether s parses as version ordinals ("3", "3.2").
func isVersionString(s string) bool {
	_, _, ok := UniqueID{Version: s}.Ordinals()
	return ok
}

// String renders as "scheme:value:version", omitting the version when unset.
func (uid UniqueID) String() string {
	if uid.Version == "" {
		return uid.ObjectID.String()
	}
	return uid.ObjectID.String() + ":" + uid.Version
}

// IsVersioned reports whether the id names an exact version.
func (uid UniqueID) IsVersioned() bool {
	return uid.Version != ""
}

// IsZero reports whether the id is unset.
func (uid UniqueID) IsZero() bool {
	return uid.ObjectID.IsZero() && uid.Version == ""
}

// Ordinals splits the version string into its version and correction
// ordinals. An unversioned id yields (0, 0, false).
func (uid UniqueID) Ordinals() (versionOrd, correctionOrd int, ok bool) {
	if uid.Version == "" {
		return 0, 0, false
	}
	v := uid.Version
	if dot := strings.IndexByte(v, '.'); dot >= 0 {
		c, err := strconv.Atoi(v[dot+1:])
		if err != nil || c < 0 {
			return 0, 0, false
		}
		correctionOrd = c
		v = v[:dot]
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, 0, false
	}
	return n, correctionOrd, true
}
