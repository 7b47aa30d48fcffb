package repository

import (
	"context"
	"time"

	"chronodoc/internal/domain"
	"chronodoc/internal/temporal"
)

// DepthUnlimited returns the whole tree; a depth of zero returns the root
// node with empty children.
const DepthUnlimited = -1

// Envelope is one stored row together with its internal row identity. RowID
// is never exposed outside the storage layer and the services that feed it
// back into CloseEnvelope.
type Envelope struct {
	RowID    int64
	Document *domain.Document
}

// HistoryFilter restricts a history enumeration.
type HistoryFilter struct {
	Window temporal.HistoryWindow
	Depth  int
}

// SearchFilter restricts a search. A nil ObjectIDs slice means "no filter";
// an empty non-nil slice matches nothing. Name is matched exactly or with a
// trailing-*, case-insensitively. An empty Visibility selects VISIBLE rows.
type SearchFilter struct {
	ObjectIDs     []domain.ObjectID
	NodeObjectIDs []domain.ObjectID
	Name          string
	Window        temporal.Window
	Visibility    domain.Visibility
	Depth         int
}

// Reader is the query surface of the store. Implementations return a nil
// envelope (not an error) when nothing matches a point lookup.
type Reader interface {
	// SelectLatestVersion returns the row with an open version interval, at
	// its open correction, or nil when the object has no open version.
	SelectLatestVersion(ctx context.Context, oid domain.ObjectID) (*Envelope, error)

	// SelectLatestCorrection returns the open correction of the given
	// version ordinal, or nil.
	SelectLatestCorrection(ctx context.Context, oid domain.ObjectID, versionOrd int) (*Envelope, error)

	// SelectByUniqueID returns the exact row a fully qualified id names.
	SelectByUniqueID(ctx context.Context, uid domain.UniqueID, depth int) (*Envelope, error)

	// SelectByCoordinate returns the single row visible from the window,
	// preferring greatest versionFrom, then correctionFrom, then row id.
	SelectByCoordinate(ctx context.Context, oid domain.ObjectID, w temporal.Window, depth int) (*Envelope, error)

	// SelectHistory returns each version intersecting the filter at its
	// latest correction, newest first, plus the total match count.
	SelectHistory(ctx context.Context, oid domain.ObjectID, filter HistoryFilter, paging domain.PagingRequest) ([]*Envelope, int, error)

	// SelectSearch returns the latest row per matching object, ordered by
	// ObjectID ascending, plus the total match count.
	SelectSearch(ctx context.Context, filter SearchFilter, paging domain.PagingRequest) ([]*Envelope, int, error)

	// SelectNode returns the whole subtree rooted at the named node, taken
	// from the envelope the node version belongs to (the open version when
	// the id is unversioned). Nil when the node is unknown.
	SelectNode(ctx context.Context, uid domain.UniqueID) (*domain.Node, error)
}

// Tx is the mutation surface available inside a transaction.
type Tx interface {
	Reader

	// InsertEnvelope writes one envelope row and its node tree, returning
	// the new row id.
	InsertEnvelope(ctx context.Context, doc *domain.Document) (int64, error)

	// CloseEnvelope terminates one axis of an existing row.
	CloseEnvelope(ctx context.Context, rowID int64, at time.Time, axis domain.Axis) error
}

// Store is the full storage port.
type Store interface {
	Reader

	// Transact runs fn atomically: either every write in fn is applied or
	// none is.
	Transact(ctx context.Context, fn func(tx Tx) error) error

	// Close releases resources.
	Close() error
}
