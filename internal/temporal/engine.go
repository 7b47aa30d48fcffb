package temporal

import (
	"fmt"
	"time"

	"chronodoc/internal/domain"
)

// Close instructs the caller to terminate one axis of the stale row at the
// given instant.
type Close struct {
	Axis domain.Axis
	At   time.Time
}

// Transition is the full row change set computed for one mutation: zero or
// more axis closes applied to the current row, and optionally one new open
// row to insert.
type Transition struct {
	Closes []Close
	Open   *domain.Document
}

// PlanAdd computes the first envelope of a new lineage: both intervals start
// now and are open-ended, ordinals start at zero.
func PlanAdd(oid domain.ObjectID, payload *domain.Portfolio, visibility domain.Visibility, now time.Time) *domain.Document {
	return &domain.Document{
		UniqueID:       domain.NewUniqueID(oid, 0, 0),
		VersionFrom:    now,
		CorrectionFrom: now,
		Visibility:     visibility,
		Portfolio:      payload,
	}
}

// PlanUpdate computes the transition for replacing the current version with
// new content. The current envelope must be the open version at its open
// correction; a stale envelope is rejected with ConcurrentModification.
func PlanUpdate(current *domain.Document, payload *domain.Portfolio, now time.Time) (*Transition, error) {
	if !current.IsLatestVersion() || !current.IsLatestCorrection() {
		return nil, domain.NewConcurrentModification(current.UniqueID)
	}
	versionOrd, _, ok := current.UniqueID.Ordinals()
	if !ok {
		return nil, fmt.Errorf("%w: envelope %s has no version ordinal", domain.ErrInvalidArgument, current.UniqueID)
	}
	return &Transition{
		Closes: []Close{{Axis: domain.AxisVersion, At: now}},
		Open: &domain.Document{
			UniqueID:       domain.NewUniqueID(current.ObjectID(), versionOrd+1, 0),
			VersionFrom:    now,
			CorrectionFrom: now,
			Visibility:     current.Visibility,
			Portfolio:      payload,
		},
	}, nil
}

// PlanCorrect computes the transition for amending the content of one
// version without moving its version interval. The target must be the open
// correction of its version; the version itself may already be closed.
func PlanCorrect(target *domain.Document, payload *domain.Portfolio, now time.Time) (*Transition, error) {
	if !target.IsLatestCorrection() {
		return nil, domain.NewConcurrentModification(target.UniqueID)
	}
	versionOrd, correctionOrd, ok := target.UniqueID.Ordinals()
	if !ok {
		return nil, fmt.Errorf("%w: envelope %s has no version ordinal", domain.ErrInvalidArgument, target.UniqueID)
	}
	return &Transition{
		Closes: []Close{{Axis: domain.AxisCorrection, At: now}},
		Open: &domain.Document{
			UniqueID:       domain.NewUniqueID(target.ObjectID(), versionOrd, correctionOrd+1),
			VersionFrom:    target.VersionFrom,
			VersionTo:      target.VersionTo,
			CorrectionFrom: now,
			Visibility:     target.Visibility,
			Portfolio:      payload,
		},
	}, nil
}

// PlanRemove closes the open version without opening a replacement.
func PlanRemove(current *domain.Document, now time.Time) (*Transition, error) {
	if !current.IsLatestVersion() || !current.IsLatestCorrection() {
		return nil, domain.NewConcurrentModification(current.UniqueID)
	}
	return &Transition{
		Closes: []Close{{Axis: domain.AxisVersion, At: now}},
	}, nil
}

// PlanReinstate opens a new version carrying forward the content of the most
// recent closed version. The caller must have verified that the object has
// no open version.
func PlanReinstate(lastClosed *domain.Document, now time.Time) (*Transition, error) {
	if lastClosed.IsLatestVersion() {
		return nil, fmt.Errorf("%w: %s is still the open version", domain.ErrInvalidArgument, lastClosed.UniqueID)
	}
	versionOrd, _, ok := lastClosed.UniqueID.Ordinals()
	if !ok {
		return nil, fmt.Errorf("%w: envelope %s has no version ordinal", domain.ErrInvalidArgument, lastClosed.UniqueID)
	}
	return &Transition{
		Open: &domain.Document{
			UniqueID:       domain.NewUniqueID(lastClosed.ObjectID(), versionOrd+1, 0),
			VersionFrom:    now,
			CorrectionFrom: now,
			Visibility:     lastClosed.Visibility,
			Portfolio:      lastClosed.Portfolio,
		},
	}, nil
}
