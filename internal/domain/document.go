package domain

import "time"

// Visibility is a filterable attribute of a document, independent of time.
type Visibility string

const (
	VisibilityVisible Visibility = "VISIBLE"
	VisibilityHidden  Visibility = "HIDDEN"
)

// Valid reports whether the visibility is one of the known values.
func (v Visibility) Valid() bool {
	return v == VisibilityVisible || v == VisibilityHidden
}

// Document is one stored envelope: a fully qualified UniqueID, the version
// and correction intervals, visibility, and the portfolio payload.
//
// Both intervals are half-open: From is inclusive, To exclusive. A nil To
// means the interval is open-ended (the current row on that axis).
type Document struct {
	UniqueID UniqueID `json:"unique_id"`

	VersionFrom    time.Time  `json:"version_from"`
	VersionTo      *time.Time `json:"version_to,omitempty"`
	CorrectionFrom time.Time  `json:"correction_from"`
	CorrectionTo   *time.Time `json:"correction_to,omitempty"`

	Visibility Visibility `json:"visibility"`
	Portfolio  *Portfolio `json:"portfolio"`
}

// ObjectID returns the lineage identity of the document.
func (d *Document) ObjectID() ObjectID {
	return d.UniqueID.ObjectID
}

// IsLatestVersion reports whether the version interval is open-ended.
func (d *Document) IsLatestVersion() bool {
	return d.VersionTo == nil
}

// IsLatestCorrection reports whether the correction interval is open-ended.
func (d *Document) IsLatestCorrection() bool {
	return d.CorrectionTo == nil
}
