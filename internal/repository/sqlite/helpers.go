package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"chronodoc/internal/domain"
)

// ============================================================================
// Instant Conversion Helpers
// ============================================================================

// Instants are stored as UTC nanoseconds since the epoch, so interval
// comparisons are plain integer comparisons in SQL.

func instantToNanos(t time.Time) int64 {
	return t.UTC().UnixNano()
}

func nanosToInstant(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func instantPtrToNull(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: instantToNanos(*t), Valid: true}
}

func nullToInstantPtr(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := nanosToInstant(n.Int64)
	return &t
}

// ============================================================================
// JSON and Pattern Helpers
// ============================================================================

func marshalAttributes(attrs map[string]string) (string, error) {
	if len(attrs) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(attrs)
	if err != nil {
		return "", fmt.Errorf("marshal attributes: %w", err)
	}
	return string(data), nil
}

func unmarshalAttributes(data string) (map[string]string, error) {
	attrs := make(map[string]string)
	if data == "" {
		return attrs, nil
	}
	if err := json.Unmarshal([]byte(data), &attrs); err != nil {
		return nil, fmt.Errorf("unmarshal attributes: %w", err)
	}
	return attrs, nil
}

// nameCondition renders the case-insensitive exact or trailing-wildcard name
// match. Only a trailing * is a wildcard; everything else is literal.
func nameCondition(name string) (cond string, arg string) {
	if strings.HasSuffix(name, "*") {
		prefix := strings.TrimSuffix(name, "*")
		return `LOWER(name) LIKE LOWER(?) ESCAPE '\'`, escapeLike(prefix) + "%"
	}
	return "LOWER(name) = LOWER(?)", name
}

func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}

// storageErr wraps a database failure as ErrStorageUnavailable so callers
// can match the kind without string inspection.
func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrStorageUnavailable, op, err)
}
