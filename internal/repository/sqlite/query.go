package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"chronodoc/internal/domain"
	"chronodoc/internal/repository"
	"chronodoc/internal/temporal"
)

const docColumns = "id, scheme, oid, version_ord, correction_ord, ver_from, ver_to, corr_from, corr_to, visibility, name, attributes"

// docRow mirrors one documents table row.
type docRow struct {
	id            int64
	scheme        string
	oid           string
	versionOrd    int
	correctionOrd int
	verFrom       int64
	verTo         sql.NullInt64
	corrFrom      int64
	corrTo        sql.NullInt64
	visibility    string
	name          string
	attributes    string
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocRow(s rowScanner) (*docRow, error) {
	var r docRow
	err := s.Scan(&r.id, &r.scheme, &r.oid, &r.versionOrd, &r.correctionOrd,
		&r.verFrom, &r.verTo, &r.corrFrom, &r.corrTo, &r.visibility, &r.name, &r.attributes)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// fromRow converts a table row into an envelope, assembling its node tree to
// the requested depth.
func (s *session) fromRow(ctx context.Context, r *docRow, depth int) (*repository.Envelope, error) {
	attrs, err := unmarshalAttributes(r.attributes)
	if err != nil {
		return nil, err
	}
	uid := domain.NewUniqueID(domain.ObjectID{Scheme: r.scheme, Value: r.oid}, r.versionOrd, r.correctionOrd)
	root, err := s.loadTree(ctx, r.id, depth, uid.Version)
	if err != nil {
		return nil, err
	}
	doc := &domain.Document{
		UniqueID:       uid,
		VersionFrom:    nanosToInstant(r.verFrom),
		VersionTo:      nullToInstantPtr(r.verTo),
		CorrectionFrom: nanosToInstant(r.corrFrom),
		CorrectionTo:   nullToInstantPtr(r.corrTo),
		Visibility:     domain.Visibility(r.visibility),
		Portfolio: &domain.Portfolio{
			Name:       r.name,
			Attributes: attrs,
			Root:       root,
		},
	}
	return &repository.Envelope{RowID: r.id, Document: doc}, nil
}

// selectOne runs a point query and maps sql.ErrNoRows to a nil envelope.
func (s *session) selectOne(ctx context.Context, depth int, query string, args ...any) (*repository.Envelope, error) {
	r, err := scanDocRow(s.q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("select envelope", err)
	}
	return s.fromRow(ctx, r, depth)
}

// windowConds renders the bitemporal containment predicate for the given
// column prefix. An unbounded version axis adds no condition; an unbounded
// correction axis restricts to rows open on the correction axis, which are
// exactly the latest corrections. Without that guard a superseded correction
// row, whose ver_to snapshot predates later version closes, could win a
// version-instant match with content that was amended away.
func windowConds(w temporal.Window, prefix string) (conds []string, args []any) {
	if w.VersionAsOf != nil {
		v := instantToNanos(*w.VersionAsOf)
		conds = append(conds, fmt.Sprintf("%sver_from <= ? AND (%sver_to IS NULL OR %sver_to > ?)", prefix, prefix, prefix))
		args = append(args, v, v)
	}
	if w.CorrectedAsOf != nil {
		c := instantToNanos(*w.CorrectedAsOf)
		conds = append(conds, fmt.Sprintf("%scorr_from <= ? AND (%scorr_to IS NULL OR %scorr_to > ?)", prefix, prefix, prefix))
		args = append(args, c, c)
	} else {
		conds = append(conds, prefix+"corr_to IS NULL")
	}
	return conds, args
}

// ============================================================================
// Reader
// ============================================================================

func (s *session) SelectLatestVersion(ctx context.Context, oid domain.ObjectID) (*repository.Envelope, error) {
	query := `SELECT ` + docColumns + ` FROM documents
		WHERE scheme = ? AND oid = ? AND ver_to IS NULL AND corr_to IS NULL
		ORDER BY id DESC LIMIT 1`
	return s.selectOne(ctx, repository.DepthUnlimited, query, oid.Scheme, oid.Value)
}

func (s *session) SelectLatestCorrection(ctx context.Context, oid domain.ObjectID, versionOrd int) (*repository.Envelope, error) {
	query := `SELECT ` + docColumns + ` FROM documents
		WHERE scheme = ? AND oid = ? AND version_ord = ? AND corr_to IS NULL
		ORDER BY id DESC LIMIT 1`
	return s.selectOne(ctx, repository.DepthUnlimited, query, oid.Scheme, oid.Value, versionOrd)
}

func (s *session) SelectByUniqueID(ctx context.Context, uid domain.UniqueID, depth int) (*repository.Envelope, error) {
	versionOrd, correctionOrd, ok := uid.Ordinals()
	if !ok {
		return nil, fmt.Errorf("%w: unique id %s has no version", domain.ErrInvalidArgument, uid)
	}
	query := `SELECT ` + docColumns + ` FROM documents
		WHERE scheme = ? AND oid = ? AND version_ord = ? AND correction_ord = ?`
	return s.selectOne(ctx, depth, query, uid.ObjectID.Scheme, uid.ObjectID.Value, versionOrd, correctionOrd)
}

func (s *session) SelectByCoordinate(ctx context.Context, oid domain.ObjectID, w temporal.Window, depth int) (*repository.Envelope, error) {
	conds := []string{"scheme = ?", "oid = ?"}
	args := []any{oid.Scheme, oid.Value}
	wc, wa := windowConds(w, "")
	conds = append(conds, wc...)
	args = append(args, wa...)

	query := `SELECT ` + docColumns + ` FROM documents
		WHERE ` + strings.Join(conds, " AND ") + `
		ORDER BY ver_from DESC, corr_from DESC, id DESC LIMIT 1`
	return s.selectOne(ctx, depth, query, args...)
}

func (s *session) SelectHistory(ctx context.Context, oid domain.ObjectID, filter repository.HistoryFilter, paging domain.PagingRequest) ([]*repository.Envelope, int, error) {
	// Latest correction only: the open correction row represents each version.
	conds := []string{"scheme = ?", "oid = ?", "corr_to IS NULL"}
	args := []any{oid.Scheme, oid.Value}
	if filter.Window.VersionsFrom != nil {
		conds = append(conds, "(ver_to IS NULL OR ver_to > ?)")
		args = append(args, instantToNanos(*filter.Window.VersionsFrom))
	}
	if filter.Window.VersionsTo != nil {
		conds = append(conds, "ver_from <= ?")
		args = append(args, instantToNanos(*filter.Window.VersionsTo))
	}
	where := strings.Join(conds, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM documents WHERE ` + where
	if err := s.q.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, storageErr("count history", err)
	}

	query := `SELECT ` + docColumns + ` FROM documents WHERE ` + where + `
		ORDER BY ver_from DESC, id DESC` + limitClause(paging)
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, storageErr("select history", err)
	}
	defer rows.Close()

	envelopes, err := s.collectRows(ctx, rows, filter.Depth)
	if err != nil {
		return nil, 0, err
	}
	return envelopes, total, nil
}

func (s *session) SelectSearch(ctx context.Context, filter repository.SearchFilter, paging domain.PagingRequest) ([]*repository.Envelope, int, error) {
	// One row per object: the row visible from the window, preferring the
	// greatest ver_from, then corr_from, then row id.
	subConds := []string{"d2.scheme = d.scheme", "d2.oid = d.oid"}
	subArgs := []any{}
	wc, wa := windowConds(filter.Window, "d2.")
	subConds = append(subConds, wc...)
	subArgs = append(subArgs, wa...)

	latest := `d.id = (
		SELECT d2.id FROM documents d2
		WHERE ` + strings.Join(subConds, " AND ") + `
		ORDER BY d2.ver_from DESC, d2.corr_from DESC, d2.id DESC LIMIT 1)`

	conds := []string{latest}
	args := subArgs

	visibility := filter.Visibility
	if visibility == "" {
		visibility = domain.VisibilityVisible
	}
	conds = append(conds, "d.visibility = ?")
	args = append(args, string(visibility))

	if filter.Name != "" {
		cond, arg := nameCondition(filter.Name)
		conds = append(conds, strings.ReplaceAll(cond, "name", "d.name"))
		args = append(args, arg)
	}

	if filter.ObjectIDs != nil {
		cond, idArgs := objectIDConds("d", filter.ObjectIDs)
		conds = append(conds, cond)
		args = append(args, idArgs...)
	}

	if len(filter.NodeObjectIDs) > 0 {
		cond, idArgs := nodeObjectIDConds(filter.NodeObjectIDs)
		conds = append(conds, cond)
		args = append(args, idArgs...)
	}

	where := strings.Join(conds, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM documents d WHERE ` + where
	if err := s.q.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, storageErr("count search", err)
	}

	query := `SELECT ` + dAliased(docColumns) + ` FROM documents d WHERE ` + where + `
		ORDER BY d.scheme ASC, d.oid ASC` + limitClause(paging)
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, storageErr("select search", err)
	}
	defer rows.Close()

	envelopes, err := s.collectRows(ctx, rows, filter.Depth)
	if err != nil {
		return nil, 0, err
	}
	return envelopes, total, nil
}

func (s *session) collectRows(ctx context.Context, rows *sql.Rows, depth int) ([]*repository.Envelope, error) {
	var scanned []*docRow
	for rows.Next() {
		r, err := scanDocRow(rows)
		if err != nil {
			return nil, storageErr("scan envelope", err)
		}
		scanned = append(scanned, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate envelopes", err)
	}

	envelopes := make([]*repository.Envelope, 0, len(scanned))
	for _, r := range scanned {
		env, err := s.fromRow(ctx, r, depth)
		if err != nil {
			return nil, err
		}
		envelopes = append(envelopes, env)
	}
	return envelopes, nil
}

// objectIDConds builds an OR group matching any of the given object ids. An
// empty list yields a condition matching nothing.
func objectIDConds(alias string, oids []domain.ObjectID) (string, []any) {
	if len(oids) == 0 {
		return "1 = 0", nil
	}
	parts := make([]string, 0, len(oids))
	args := make([]any, 0, 2*len(oids))
	for _, oid := range oids {
		parts = append(parts, fmt.Sprintf("(%s.scheme = ? AND %s.oid = ?)", alias, alias))
		args = append(args, oid.Scheme, oid.Value)
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}

func nodeObjectIDConds(oids []domain.ObjectID) (string, []any) {
	parts := make([]string, 0, len(oids))
	args := make([]any, 0, 2*len(oids))
	for _, oid := range oids {
		parts = append(parts, "(n.node_scheme = ? AND n.node_oid = ?)")
		args = append(args, oid.Scheme, oid.Value)
	}
	return `EXISTS (SELECT 1 FROM nodes n WHERE n.document_id = d.id AND (` +
		strings.Join(parts, " OR ") + `))`, args
}

func dAliased(columns string) string {
	parts := strings.Split(columns, ", ")
	for i, p := range parts {
		parts[i] = "d." + p
	}
	return strings.Join(parts, ", ")
}

// limitClause renders paging. A zero size means no limit; SQLite requires
// LIMIT -1 when OFFSET is present.
func limitClause(paging domain.PagingRequest) string {
	if paging.Unlimited() {
		if paging.Offset() == 0 {
			return ""
		}
		return fmt.Sprintf(" LIMIT -1 OFFSET %d", paging.Offset())
	}
	return fmt.Sprintf(" LIMIT %d OFFSET %d", paging.Size, paging.Offset())
}

// ============================================================================
// Writes
// ============================================================================

func (s *session) InsertEnvelope(ctx context.Context, doc *domain.Document) (int64, error) {
	versionOrd, correctionOrd, ok := doc.UniqueID.Ordinals()
	if !ok {
		return 0, fmt.Errorf("%w: envelope %s has no version", domain.ErrInvalidArgument, doc.UniqueID)
	}
	attrs, err := marshalAttributes(doc.Portfolio.Attributes)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}

	res, err := s.q.ExecContext(ctx, `
		INSERT INTO documents (scheme, oid, version_ord, correction_ord, ver_from, ver_to, corr_from, corr_to, visibility, name, attributes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.UniqueID.ObjectID.Scheme, doc.UniqueID.ObjectID.Value, versionOrd, correctionOrd,
		instantToNanos(doc.VersionFrom), instantPtrToNull(doc.VersionTo),
		instantToNanos(doc.CorrectionFrom), instantPtrToNull(doc.CorrectionTo),
		string(doc.Visibility), doc.Portfolio.Name, attrs)
	if err != nil {
		return 0, storageErr("insert envelope", err)
	}
	rowID, err := res.LastInsertId()
	if err != nil {
		return 0, storageErr("insert envelope", err)
	}

	if err := s.insertTree(ctx, rowID, doc.Portfolio.Root); err != nil {
		return 0, err
	}
	return rowID, nil
}

func (s *session) CloseEnvelope(ctx context.Context, rowID int64, at time.Time, axis domain.Axis) error {
	var query string
	switch axis {
	case domain.AxisVersion:
		query = `UPDATE documents SET ver_to = ? WHERE id = ? AND ver_to IS NULL`
	case domain.AxisCorrection:
		query = `UPDATE documents SET corr_to = ? WHERE id = ? AND corr_to IS NULL`
	default:
		return fmt.Errorf("%w: unknown axis %q", domain.ErrInvalidArgument, axis)
	}
	res, err := s.q.ExecContext(ctx, query, instantToNanos(at), rowID)
	if err != nil {
		return storageErr("close envelope", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return storageErr("close envelope", err)
	}
	// The WHERE guard is the row-level check: the row must still be open on
	// the axis being closed.
	if affected != 1 {
		return storageErr("close envelope", fmt.Errorf("row %d not open on %s axis", rowID, axis))
	}
	return nil
}
