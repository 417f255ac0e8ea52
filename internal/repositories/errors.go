package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq" // For pq.Error
)

var (
	// ErrNotFound is returned when a specific record is not found.
	ErrNotFound = errors.New("requested record not found")

	// ErrDatabaseError is returned for unexpected database errors.
	// It can be used to wrap more specific driver errors.
	ErrDatabaseError = errors.New("database error")

	// ErrDuplicateKey is returned when an insert/update violates a unique constraint.
	ErrDuplicateKey = errors.New("duplicate key value violates unique constraint")

	// ErrForeignKeyViolation is returned when a row references a missing parent,
	// or when a parent that is still referenced is deleted.
	ErrForeignKeyViolation = errors.New("foreign key constraint violation")
)

// SQLExecutor defines an interface that can be satisfied by *sql.DB or *sql.Tx
// This allows repository methods to be used within transactions or with a direct DB connection.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// scanner is an interface satisfied by *sql.Row and *sql.Rows.
// This allows for generic scanning helpers.
type scanner interface {
	Scan(dest ...interface{}) error
}

// translateError maps driver errors onto the package sentinels.
func translateError(err error, action string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Name() {
		case "unique_violation":
			return fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
		case "foreign_key_violation":
			return fmt.Errorf("%w: %s (constraint: %s)", ErrForeignKeyViolation, action, pqErr.Constraint)
		}
	}
	return fmt.Errorf("%w: %s: %v", ErrDatabaseError, action, err)
}

// affectedOrNotFound returns ErrNotFound when the statement touched no rows.
func affectedOrNotFound(result sql.Result, action string) (int64, error) {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: getting rows affected for %s: %v", ErrDatabaseError, action, err)
	}
	if rowsAffected == 0 {
		return 0, ErrNotFound
	}
	return rowsAffected, nil
}

// dateString renders a DATE column as YYYY-MM-DD.
func dateString(nt sql.NullTime) *string {
	if !nt.Valid {
		return nil
	}
	s := nt.Time.Format("2006-01-02")
	return &s
}

// whereBuilder accumulates positional predicates for list queries.
type whereBuilder struct {
	conditions []string
	args       []interface{}
}

func (w *whereBuilder) add(format string, value interface{}) {
	w.args = append(w.args, value)
	w.conditions = append(w.conditions, fmt.Sprintf(format, len(w.args)))
}

func (w *whereBuilder) addRaw(condition string) {
	w.conditions = append(w.conditions, condition)
}

// writeTo appends the WHERE clause, the ordering and LIMIT/OFFSET.
func (w *whereBuilder) writeTo(qb *strings.Builder, orderBy string, page, pageSize int) {
	if len(w.conditions) > 0 {
		qb.WriteString(" WHERE " + strings.Join(w.conditions, " AND "))
	}
	qb.WriteString(" ORDER BY " + orderBy)
	if pageSize > 0 {
		w.args = append(w.args, pageSize)
		qb.WriteString(fmt.Sprintf(" LIMIT $%d", len(w.args)))
		if page > 0 {
			w.args = append(w.args, (page-1)*pageSize)
			qb.WriteString(fmt.Sprintf(" OFFSET $%d", len(w.args)))
		}
	}
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

// selectStrings runs a single-column query and collects the values.
func selectStrings(ctx context.Context, executor SQLExecutor, query, label string, args ...interface{}) ([]string, error) {
	values := []string{}
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying %s: %v", ErrDatabaseError, label, err)
	}
	defer rows.Close()

	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("%w: scanning %s: %v", ErrDatabaseError, label, err)
		}
		values = append(values, v)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating %s: %v", ErrDatabaseError, label, err)
	}
	return values, nil
}
