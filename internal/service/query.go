package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"chronodoc/internal/domain"
	"chronodoc/internal/repository"
	"chronodoc/internal/temporal"
)

// QueryService resolves read coordinates against the store.
type QueryService struct {
	store      repository.Store
	scheme     string
	nodeScheme string
	logger     *zap.Logger
}

// NewQueryService creates a query service for the given identifier schemes.
func NewQueryService(store repository.Store, scheme, nodeScheme string, logger *zap.Logger) *QueryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryService{store: store, scheme: scheme, nodeScheme: nodeScheme, logger: logger}
}

// Get resolves a UniqueID to exactly one envelope. A versioned id names an
// exact row; an unversioned id resolves to the latest state.
func (s *QueryService) Get(ctx context.Context, uid domain.UniqueID) (*domain.Document, error) {
	if uid.ObjectID.Scheme != s.scheme {
		return nil, fmt.Errorf("%w: unknown scheme %q", domain.ErrInvalidArgument, uid.ObjectID.Scheme)
	}
	var (
		env *repository.Envelope
		err error
	)
	if uid.IsVersioned() {
		env, err = s.store.SelectByUniqueID(ctx, uid, repository.DepthUnlimited)
	} else {
		env, err = s.store.SelectByCoordinate(ctx, uid.ObjectID, temporal.Window{}, repository.DepthUnlimited)
	}
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", uid, err)
	}
	if env == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, uid)
	}
	return env.Document, nil
}

// GetAt resolves the single envelope visible from the given coordinate.
func (s *QueryService) GetAt(ctx context.Context, oid domain.ObjectID, vc domain.VersionCorrection) (*domain.Document, error) {
	if oid.Scheme != s.scheme {
		return nil, fmt.Errorf("%w: unknown scheme %q", domain.ErrInvalidArgument, oid.Scheme)
	}
	env, err := s.store.SelectByCoordinate(ctx, oid, temporal.WindowOf(vc), repository.DepthUnlimited)
	if err != nil {
		return nil, fmt.Errorf("get document %s at %s: %w", oid, vc, err)
	}
	if env == nil {
		return nil, fmt.Errorf("%w: %s at %s", domain.ErrNotFound, oid, vc)
	}
	return env.Document, nil
}

// GetNode resolves a node id to its whole subtree.
func (s *QueryService) GetNode(ctx context.Context, uid domain.UniqueID) (*domain.Node, error) {
	if uid.ObjectID.Scheme != s.nodeScheme {
		return nil, fmt.Errorf("%w: unknown node scheme %q", domain.ErrInvalidArgument, uid.ObjectID.Scheme)
	}
	node, err := s.store.SelectNode(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("get node %s: %w", uid, err)
	}
	if node == nil {
		return nil, fmt.Errorf("%w: node %s", domain.ErrNotFound, uid)
	}
	return node, nil
}

// HistoryRequest restricts a history enumeration. Depth follows the
// repository convention: -1 unlimited, 0 root only.
type HistoryRequest struct {
	VersionsFrom *time.Time
	VersionsTo   *time.Time
	Depth        int
	Paging       domain.PagingRequest
}

// DefaultHistoryRequest enumerates everything with unlimited tree depth.
func DefaultHistoryRequest() HistoryRequest {
	return HistoryRequest{Depth: repository.DepthUnlimited, Paging: domain.PagingAll()}
}

// HistoryResult is one page of a history enumeration, newest version first.
type HistoryResult struct {
	Documents []*domain.Document `json:"documents"`
	Paging    domain.Paging      `json:"paging"`
}

// History returns the versions of one object intersecting the requested
// instant range, each at its latest correction, newest first.
func (s *QueryService) History(ctx context.Context, oid domain.ObjectID, req HistoryRequest) (*HistoryResult, error) {
	if oid.Scheme != s.scheme {
		return nil, fmt.Errorf("%w: unknown scheme %q", domain.ErrInvalidArgument, oid.Scheme)
	}
	filter := repository.HistoryFilter{
		Window: temporal.HistoryWindow{VersionsFrom: req.VersionsFrom, VersionsTo: req.VersionsTo},
		Depth:  req.Depth,
	}
	envelopes, total, err := s.store.SelectHistory(ctx, oid, filter, req.Paging)
	if err != nil {
		return nil, fmt.Errorf("history of %s: %w", oid, err)
	}
	return &HistoryResult{
		Documents: documentsOf(envelopes),
		Paging:    domain.NewPaging(req.Paging, total),
	}, nil
}

// SearchRequest filters a search. A nil ObjectIDs slice means no id filter;
// an explicitly empty slice matches nothing. Name is exact or
// trailing-wildcard, case-insensitive. An empty Visibility selects VISIBLE
// documents only.
type SearchRequest struct {
	ObjectIDs         []domain.ObjectID
	NodeObjectIDs     []domain.ObjectID
	Name              string
	VersionCorrection domain.VersionCorrection
	Visibility        domain.Visibility
	Depth             int
	Paging            domain.PagingRequest
}

// DefaultSearchRequest searches the latest visible state of everything.
func DefaultSearchRequest() SearchRequest {
	return SearchRequest{Depth: repository.DepthUnlimited, Paging: domain.PagingAll()}
}

// SearchResult is one page of matches, ordered by ObjectID ascending.
type SearchResult struct {
	Documents []*domain.Document `json:"documents"`
	Paging    domain.Paging      `json:"paging"`
}

// Search returns the latest envelope per matching object as of the requested
// coordinate.
func (s *QueryService) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	for _, oid := range req.ObjectIDs {
		if oid.Scheme != s.scheme {
			return nil, fmt.Errorf("%w: unknown scheme %q", domain.ErrInvalidArgument, oid.Scheme)
		}
	}
	for _, oid := range req.NodeObjectIDs {
		if oid.Scheme != s.nodeScheme {
			return nil, fmt.Errorf("%w: unknown node scheme %q", domain.ErrInvalidArgument, oid.Scheme)
		}
	}
	if req.Visibility != "" && !req.Visibility.Valid() {
		return nil, fmt.Errorf("%w: unknown visibility %q", domain.ErrInvalidArgument, req.Visibility)
	}

	// An explicitly empty id list matches nothing.
	if req.ObjectIDs != nil && len(req.ObjectIDs) == 0 {
		return &SearchResult{
			Documents: []*domain.Document{},
			Paging:    domain.NewPaging(req.Paging, 0),
		}, nil
	}

	filter := repository.SearchFilter{
		ObjectIDs:     req.ObjectIDs,
		NodeObjectIDs: req.NodeObjectIDs,
		Name:          req.Name,
		Window:        temporal.WindowOf(req.VersionCorrection),
		Visibility:    req.Visibility,
		Depth:         req.Depth,
	}
	envelopes, total, err := s.store.SelectSearch(ctx, filter, req.Paging)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	return &SearchResult{
		Documents: documentsOf(envelopes),
		Paging:    domain.NewPaging(req.Paging, total),
	}, nil
}

func documentsOf(envelopes []*repository.Envelope) []*domain.Document {
	docs := make([]*domain.Document, 0, len(envelopes))
	for _, env := range envelopes {
		docs = append(docs, env.Document)
	}
	return docs
}
