package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"chronodoc/internal/domain"
)

// insertTree writes the node tree of one envelope, depth-first so parents
// exist before their children.
func (s *session) insertTree(ctx context.Context, docID int64, root *domain.Node) error {
	if root == nil {
		return fmt.Errorf("%w: envelope has no root node", domain.ErrInvalidArgument)
	}
	return s.insertNode(ctx, docID, root, sql.NullInt64{}, 0, 0)
}

func (s *session) insertNode(ctx context.Context, docID int64, n *domain.Node, parent sql.NullInt64, depth, siblingOrd int) error {
	if n.UniqueID.ObjectID.IsZero() {
		return fmt.Errorf("%w: node %q has no assigned id", domain.ErrInvalidArgument, n.Name)
	}
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO nodes (document_id, node_scheme, node_oid, parent_id, depth, sibling_ord, name)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		docID, n.UniqueID.ObjectID.Scheme, n.UniqueID.ObjectID.Value, parent, depth, siblingOrd, n.Name)
	if err != nil {
		return storageErr("insert node", err)
	}
	nodeID, err := res.LastInsertId()
	if err != nil {
		return storageErr("insert node", err)
	}

	for ord, pos := range n.Positions {
		_, err := s.q.ExecContext(ctx, `
			INSERT INTO node_positions (node_id, position_ord, position_scheme, position_oid)
			VALUES (?, ?, ?, ?)`,
			nodeID, ord, pos.Scheme, pos.Value)
		if err != nil {
			return storageErr("insert position reference", err)
		}
	}

	parentRef := sql.NullInt64{Int64: nodeID, Valid: true}
	for ord, child := range n.Children {
		if err := s.insertNode(ctx, docID, child, parentRef, depth+1, ord); err != nil {
			return err
		}
	}
	return nil
}

// loadTree assembles the node tree of one envelope from its flat rows.
// A non-negative depth keeps only nodes within that many hops of the root.
func (s *session) loadTree(ctx context.Context, docID int64, depth int, version string) (*domain.Node, error) {
	query := `SELECT id, node_scheme, node_oid, parent_id, depth, sibling_ord, name
		FROM nodes WHERE document_id = ?`
	args := []any{docID}
	if depth >= 0 {
		query += ` AND depth <= ?`
		args = append(args, depth)
	}
	query += ` ORDER BY depth ASC, parent_id ASC, sibling_ord ASC`

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("select nodes", err)
	}
	defer rows.Close()

	byRowID := make(map[int64]*domain.Node)
	var root *domain.Node
	for rows.Next() {
		var (
			id, nodeDepth, siblingOrd int64
			scheme, oid, name         string
			parentID                  sql.NullInt64
		)
		if err := rows.Scan(&id, &scheme, &oid, &parentID, &nodeDepth, &siblingOrd, &name); err != nil {
			return nil, storageErr("scan node", err)
		}
		node := &domain.Node{
			UniqueID: domain.UniqueID{ObjectID: domain.ObjectID{Scheme: scheme, Value: oid}, Version: version},
			Name:     name,
		}
		byRowID[id] = node
		if !parentID.Valid {
			root = node
		} else if parent := byRowID[parentID.Int64]; parent != nil {
			parent.Children = append(parent.Children, node)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate nodes", err)
	}
	if root == nil {
		return nil, nil
	}

	if err := s.loadPositions(ctx, docID, depth, byRowID); err != nil {
		return nil, err
	}
	return root, nil
}

func (s *session) loadPositions(ctx context.Context, docID int64, depth int, byRowID map[int64]*domain.Node) error {
	query := `SELECT p.node_id, p.position_scheme, p.position_oid
		FROM node_positions p JOIN nodes n ON n.id = p.node_id
		WHERE n.document_id = ?`
	args := []any{docID}
	if depth >= 0 {
		query += ` AND n.depth <= ?`
		args = append(args, depth)
	}
	query += ` ORDER BY p.node_id ASC, p.position_ord ASC`

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return storageErr("select position references", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			nodeID      int64
			scheme, oid string
		)
		if err := rows.Scan(&nodeID, &scheme, &oid); err != nil {
			return storageErr("scan position reference", err)
		}
		if node := byRowID[nodeID]; node != nil {
			node.Positions = append(node.Positions, domain.ObjectID{Scheme: scheme, Value: oid})
		}
	}
	return rows.Err()
}

// SelectNode resolves a node id to its whole subtree. An unversioned id
// resolves against the open version at its open correction.
func (s *session) SelectNode(ctx context.Context, uid domain.UniqueID) (*domain.Node, error) {
	var (
		query string
		args  []any
	)
	if uid.IsVersioned() {
		versionOrd, correctionOrd, ok := uid.Ordinals()
		if !ok {
			return nil, fmt.Errorf("%w: malformed node id %s", domain.ErrInvalidArgument, uid)
		}
		query = `SELECT d.id, d.version_ord, d.correction_ord
			FROM nodes n JOIN documents d ON d.id = n.document_id
			WHERE n.node_scheme = ? AND n.node_oid = ? AND d.version_ord = ? AND d.correction_ord = ?
			ORDER BY d.id DESC LIMIT 1`
		args = []any{uid.ObjectID.Scheme, uid.ObjectID.Value, versionOrd, correctionOrd}
	} else {
		query = `SELECT d.id, d.version_ord, d.correction_ord
			FROM nodes n JOIN documents d ON d.id = n.document_id
			WHERE n.node_scheme = ? AND n.node_oid = ? AND d.ver_to IS NULL AND d.corr_to IS NULL
			ORDER BY d.id DESC LIMIT 1`
		args = []any{uid.ObjectID.Scheme, uid.ObjectID.Value}
	}

	var (
		docID                     int64
		versionOrd, correctionOrd int
	)
	err := s.q.QueryRowContext(ctx, query, args...).Scan(&docID, &versionOrd, &correctionOrd)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("select node", err)
	}

	version := domain.NewUniqueID(domain.ObjectID{}, versionOrd, correctionOrd).Version
	root, err := s.loadTree(ctx, docID, -1, version)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, nil
	}
	return root.FindNode(uid.ObjectID), nil
}
