package source

import (
	"database/sql"

	"github.com/pkg/errors"

	"github.com/shrek82/dbutils/core"
)

// SQLRows adapts a database/sql result set to core.Rows. SQL NULL is reported
// as core.Absent; byte cells are copies and stay valid after Next.
type SQLRows struct {
	rows    *sql.Rows
	columns []string
	index   map[string]int
	values  []any
	dest    []any
	loaded  bool
	err     error
}

// FromSQL reads the column list of rows and returns a cursor positioned
// before the first row. The caller still owns rows and must close it.
func FromSQL(rows *sql.Rows) (*SQLRows, error) {
	if rows == nil {
		return nil, errors.New("dbutils: nil *sql.Rows")
	}

	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, "dbutils: read columns")
	}

	r := &SQLRows{
		rows:    rows,
		columns: columns,
		index:   make(map[string]int, len(columns)),
		values:  make([]any, len(columns)),
		dest:    make([]any, len(columns)),
	}
	for i, col := range columns {
		// the first of duplicate column names wins
		if _, ok := r.index[col]; !ok {
			r.index[col] = i
		}
		r.dest[i] = &r.values[i]
	}
	return r, nil
}

// Columns returns the column names in result order.
func (r *SQLRows) Columns() []string {
	return r.columns
}

func (r *SQLRows) Next() bool {
	r.loaded = false
	if r.err != nil || !r.rows.Next() {
		return false
	}
	clear(r.values)
	if err := r.rows.Scan(r.dest...); err != nil {
		r.err = errors.Wrap(err, "dbutils: scan row")
		return false
	}
	r.loaded = true
	return true
}

func (r *SQLRows) HasColumn(name string) bool {
	_, ok := r.index[name]
	return ok
}

func (r *SQLRows) Value(name string) any {
	i, ok := r.index[name]
	if !ok || !r.loaded || r.values[i] == nil {
		return core.Absent
	}
	return r.values[i]
}

func (r *SQLRows) Err() error {
	if r.err != nil {
		return r.err
	}
	if err := r.rows.Err(); err != nil {
		return errors.Wrap(err, "dbutils: iterate rows")
	}
	return nil
}

// Collect maps every row of rows to a T and closes rows.
func Collect[T any](m *core.Mapper, rows *sql.Rows) ([]T, error) {
	if rows == nil {
		return nil, errors.New("dbutils: nil *sql.Rows")
	}
	defer rows.Close()

	r, err := FromSQL(rows)
	if err != nil {
		return nil, err
	}
	return core.MapMany[T](m, r)
}

// CollectOne maps the first row of rows to a T and closes rows. It returns
// sql.ErrNoRows when the result is empty.
func CollectOne[T any](m *core.Mapper, rows *sql.Rows) (T, error) {
	var zero T
	if rows == nil {
		return zero, errors.New("dbutils: nil *sql.Rows")
	}
	defer rows.Close()

	r, err := FromSQL(rows)
	if err != nil {
		return zero, err
	}
	if !r.Next() {
		if err := r.Err(); err != nil {
			return zero, err
		}
		return zero, sql.ErrNoRows
	}
	return core.MapOne[T](m, r)
}
