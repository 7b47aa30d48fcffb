package temporal

import (
	"time"

	"chronodoc/internal/domain"
)

// Window is the storage predicate a VersionCorrection coordinate translates
// to. A nil version instant leaves that axis unbounded; a nil correction
// instant selects only the latest correction of each version (rows open on
// the correction axis), so superseded content never resolves at "latest".
// Selection among matching rows is then "greatest versionFrom, then greatest
// correctionFrom, then highest row id", which the adapter encodes in its
// ORDER BY.
type Window struct {
	VersionAsOf   *time.Time
	CorrectedAsOf *time.Time
}

// WindowOf translates a coordinate into its predicate.
func WindowOf(vc domain.VersionCorrection) Window {
	return Window{VersionAsOf: vc.VersionAsOf, CorrectedAsOf: vc.CorrectedAsOf}
}

// Matches reports whether an envelope's intervals contain the window's
// instants. Intervals are half-open: From inclusive, To exclusive, nil To
// open-ended. An unbounded axis matches every row.
func (w Window) Matches(versionFrom time.Time, versionTo *time.Time, correctionFrom time.Time, correctionTo *time.Time) bool {
	return intervalContains(versionFrom, versionTo, w.VersionAsOf) &&
		intervalContains(correctionFrom, correctionTo, w.CorrectedAsOf)
}

func intervalContains(from time.Time, to *time.Time, at *time.Time) bool {
	if at == nil {
		return true
	}
	if at.Before(from) {
		return false
	}
	return to == nil || at.Before(*to)
}

// HistoryWindow restricts history enumeration to versions whose interval
// intersects [VersionsFrom, VersionsTo]. Either bound may be nil.
type HistoryWindow struct {
	VersionsFrom *time.Time
	VersionsTo   *time.Time
}

// Intersects reports whether a version interval overlaps the requested
// range. Used by tests; the adapter renders the same condition to SQL.
func (h HistoryWindow) Intersects(versionFrom time.Time, versionTo *time.Time) bool {
	if h.VersionsTo != nil && versionFrom.After(*h.VersionsTo) {
		return false
	}
	if h.VersionsFrom != nil && versionTo != nil && !versionTo.After(*h.VersionsFrom) {
		return false
	}
	return true
}
