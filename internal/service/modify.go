package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"chronodoc/internal/domain"
	"chronodoc/internal/repository"
	"chronodoc/internal/temporal"
)

// ModifyService applies document mutations. Every operation runs its
// read-check-write sequence inside one storage transaction; the transaction
// boundary is the only synchronization primitive.
type ModifyService struct {
	store      repository.Store
	bus        *EventBus
	clock      Clock
	scheme     string
	nodeScheme string
	logger     *zap.Logger
}

// NewModifyService creates a modify service. scheme and nodeScheme are the
// identifier schemes assigned to new documents and their tree nodes.
func NewModifyService(store repository.Store, bus *EventBus, clock Clock, scheme, nodeScheme string, logger *zap.Logger) *ModifyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModifyService{
		store:      store,
		bus:        bus,
		clock:      clock,
		scheme:     scheme,
		nodeScheme: nodeScheme,
		logger:     logger,
	}
}

// Add stores the first version of a new document and returns its id.
func (s *ModifyService) Add(ctx context.Context, payload *domain.Portfolio, visibility domain.Visibility) (domain.UniqueID, error) {
	if err := payload.Validate(); err != nil {
		return domain.UniqueID{}, err
	}
	if visibility == "" {
		visibility = domain.VisibilityVisible
	}
	if !visibility.Valid() {
		return domain.UniqueID{}, fmt.Errorf("%w: unknown visibility %q", domain.ErrInvalidArgument, visibility)
	}

	now := s.clock.Now()
	doc := temporal.PlanAdd(domain.NewObjectID(s.scheme), payload, visibility, now)
	s.assignNodeIDs(doc)

	err := s.store.Transact(ctx, func(tx repository.Tx) error {
		_, err := tx.InsertEnvelope(ctx, doc)
		return err
	})
	if err != nil {
		return domain.UniqueID{}, fmt.Errorf("add document: %w", err)
	}

	s.bus.Publish(Event{Type: EventDocumentAdded, UniqueID: doc.UniqueID})
	s.logger.Info("document added", zap.Stringer("uid", doc.UniqueID))
	return doc.UniqueID, nil
}

// Update closes the version the given id names and opens a new version with
// the new payload. The id must name the current open version.
func (s *ModifyService) Update(ctx context.Context, uid domain.UniqueID, payload *domain.Portfolio) (domain.UniqueID, error) {
	if err := s.checkVersionedID(uid); err != nil {
		return domain.UniqueID{}, err
	}
	if err := payload.Validate(); err != nil {
		return domain.UniqueID{}, err
	}

	now := s.clock.Now()
	var newUID domain.UniqueID
	err := s.store.Transact(ctx, func(tx repository.Tx) error {
		env, err := s.loadForMutation(ctx, tx, uid)
		if err != nil {
			return err
		}
		trans, err := temporal.PlanUpdate(env.Document, payload, now)
		if err != nil {
			return err
		}
		if err := s.apply(ctx, tx, env.RowID, trans); err != nil {
			return err
		}
		newUID = trans.Open.UniqueID
		return nil
	})
	if err != nil {
		return domain.UniqueID{}, fmt.Errorf("update document %s: %w", uid, err)
	}

	s.bus.Publish(Event{Type: EventDocumentUpdated, UniqueID: newUID})
	s.logger.Info("document updated", zap.Stringer("from", uid), zap.Stringer("to", newUID))
	return newUID, nil
}

// Correct amends the content of the version the given id names without
// moving its version interval. The id must name the open correction of its
// version.
func (s *ModifyService) Correct(ctx context.Context, uid domain.UniqueID, payload *domain.Portfolio) (domain.UniqueID, error) {
	if err := s.checkVersionedID(uid); err != nil {
		return domain.UniqueID{}, err
	}
	if err := payload.Validate(); err != nil {
		return domain.UniqueID{}, err
	}

	now := s.clock.Now()
	var newUID domain.UniqueID
	err := s.store.Transact(ctx, func(tx repository.Tx) error {
		env, err := s.loadForMutation(ctx, tx, uid)
		if err != nil {
			return err
		}
		trans, err := temporal.PlanCorrect(env.Document, payload, now)
		if err != nil {
			return err
		}
		if err := s.apply(ctx, tx, env.RowID, trans); err != nil {
			return err
		}
		newUID = trans.Open.UniqueID
		return nil
	})
	if err != nil {
		return domain.UniqueID{}, fmt.Errorf("correct document %s: %w", uid, err)
	}

	s.bus.Publish(Event{Type: EventDocumentCorrected, UniqueID: newUID})
	s.logger.Info("document corrected", zap.Stringer("from", uid), zap.Stringer("to", newUID))
	return newUID, nil
}

// Remove closes the current open version without opening a replacement. The
// history stays intact; nothing is physically deleted.
func (s *ModifyService) Remove(ctx context.Context, uid domain.UniqueID) error {
	if err := s.checkVersionedID(uid); err != nil {
		return err
	}

	now := s.clock.Now()
	err := s.store.Transact(ctx, func(tx repository.Tx) error {
		env, err := s.loadForMutation(ctx, tx, uid)
		if err != nil {
			return err
		}
		trans, err := temporal.PlanRemove(env.Document, now)
		if err != nil {
			return err
		}
		return s.apply(ctx, tx, env.RowID, trans)
	})
	if err != nil {
		return fmt.Errorf("remove document %s: %w", uid, err)
	}

	s.bus.Publish(Event{Type: EventDocumentRemoved, UniqueID: uid})
	s.logger.Info("document removed", zap.Stringer("uid", uid))
	return nil
}

// Reinstate opens a new version carrying forward the content of the most
// recent removed version. Reinstating an object that already has an open
// version is a no-op returning the open version's id, so callers can check
// whether anything changed by comparing ids.
func (s *ModifyService) Reinstate(ctx context.Context, uid domain.UniqueID) (domain.UniqueID, error) {
	if uid.ObjectID.Scheme != s.scheme {
		return domain.UniqueID{}, fmt.Errorf("%w: unknown scheme %q", domain.ErrInvalidArgument, uid.ObjectID.Scheme)
	}

	now := s.clock.Now()
	var (
		outUID     domain.UniqueID
		reinstated bool
	)
	err := s.store.Transact(ctx, func(tx repository.Tx) error {
		latest, err := tx.SelectLatestVersion(ctx, uid.ObjectID)
		if err != nil {
			return err
		}
		if latest != nil {
			outUID = latest.Document.UniqueID
			return nil
		}
		last, err := tx.SelectByCoordinate(ctx, uid.ObjectID, temporal.Window{}, repository.DepthUnlimited)
		if err != nil {
			return err
		}
		if last == nil {
			return fmt.Errorf("%w: object %s has no version to reinstate", domain.ErrNotFound, uid.ObjectID)
		}
		trans, err := temporal.PlanReinstate(last.Document, now)
		if err != nil {
			return err
		}
		s.assignNodeIDs(trans.Open)
		if _, err := tx.InsertEnvelope(ctx, trans.Open); err != nil {
			return err
		}
		outUID = trans.Open.UniqueID
		reinstated = true
		return nil
	})
	if err != nil {
		return domain.UniqueID{}, fmt.Errorf("reinstate document %s: %w", uid.ObjectID, err)
	}

	if reinstated {
		s.bus.Publish(Event{Type: EventDocumentReinstated, UniqueID: outUID})
		s.logger.Info("document reinstated", zap.Stringer("uid", outUID))
	}
	return outUID, nil
}

// apply closes the stale row's axes and inserts the replacement row, if any.
func (s *ModifyService) apply(ctx context.Context, tx repository.Tx, staleRowID int64, trans *temporal.Transition) error {
	for _, c := range trans.Closes {
		if err := tx.CloseEnvelope(ctx, staleRowID, c.At, c.Axis); err != nil {
			return err
		}
	}
	if trans.Open != nil {
		s.assignNodeIDs(trans.Open)
		if _, err := tx.InsertEnvelope(ctx, trans.Open); err != nil {
			return err
		}
	}
	return nil
}

func (s *ModifyService) checkVersionedID(uid domain.UniqueID) error {
	if uid.ObjectID.Scheme != s.scheme {
		return fmt.Errorf("%w: unknown scheme %q", domain.ErrInvalidArgument, uid.ObjectID.Scheme)
	}
	if !uid.IsVersioned() {
		return fmt.Errorf("%w: %s must name an exact version", domain.ErrInvalidArgument, uid)
	}
	return nil
}

// loadForMutation fetches the exact row a mutation targets. An unknown row
// on a known object is NotFound; stale-but-existing rows are rejected later
// by the engine's latest checks.
func (s *ModifyService) loadForMutation(ctx context.Context, tx repository.Tx, uid domain.UniqueID) (*repository.Envelope, error) {
	env, err := tx.SelectByUniqueID(ctx, uid, repository.DepthUnlimited)
	if err != nil {
		return nil, err
	}
	if env == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, uid)
	}
	return env, nil
}

// assignNodeIDs gives every node an ObjectID if it lacks one and restamps
// every node's version to the envelope's. Node ObjectIDs carried over from a
// fetched document stay stable across versions.
func (s *ModifyService) assignNodeIDs(doc *domain.Document) {
	var walk func(n *domain.Node)
	walk = func(n *domain.Node) {
		if n == nil {
			return
		}
		if n.UniqueID.ObjectID.IsZero() {
			n.UniqueID.ObjectID = domain.NewObjectID(s.nodeScheme)
		}
		n.UniqueID.Version = doc.UniqueID.Version
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(doc.Portfolio.Root)
}
