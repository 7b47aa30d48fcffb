package domain

import "time"

// VersionCorrection is a coordinate on the two time axes: the version instant
// selects which business-effective state is wanted, the correction instant
// selects which recorded amendment of it. A nil instant means "latest".
type VersionCorrection struct {
	VersionAsOf   *time.Time `json:"version_as_of,omitempty"`
	CorrectedAsOf *time.Time `json:"corrected_as_of,omitempty"`
}

// LatestVersionCorrection selects the latest state on both axes.
func LatestVersionCorrection() VersionCorrection {
	return VersionCorrection{}
}

// VersionCorrectionOf fixes both axes to the given instants.
func VersionCorrectionOf(versionAsOf, correctedAsOf time.Time) VersionCorrection {
	return VersionCorrection{VersionAsOf: &versionAsOf, CorrectedAsOf: &correctedAsOf}
}

// IsLatest reports whether both axes are unbounded.
func (vc VersionCorrection) IsLatest() bool {
	return vc.VersionAsOf == nil && vc.CorrectedAsOf == nil
}

// String renders the coordinate for logging, e.g. "V2026-01-02T15:04:05Z.CLATEST".
func (vc VersionCorrection) String() string {
	format := func(t *time.Time) string {
		if t == nil {
			return "LATEST"
		}
		return t.UTC().Format(time.RFC3339Nano)
	}
	return "V" + format(vc.VersionAsOf) + ".C" + format(vc.CorrectedAsOf)
}
