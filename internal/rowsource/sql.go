package rowsource

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLSource reads rows from a relational snapshot store. The query's column
// names become the Row keys, so callers alias columns to match whatever
// schema mapping the engine is configured with.
type SQLSource struct {
	db    *sql.DB
	query string
	args  []any
}

func NewSQLSource(db *sql.DB, query string, args ...any) *SQLSource {
	return &SQLSource{db: db, query: query, args: args}
}

func (s *SQLSource) ReadAll(ctx context.Context) ([]Row, error) {
	rs, err := s.db.QueryContext(ctx, s.query, s.args...)
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}
	defer rs.Close()

	cols, err := rs.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	var rows []Row
	vals := make([]sql.NullString, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rs.Next() {
		if err := rs.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			if vals[i].Valid {
				row[c] = vals[i].String
			} else {
				row[c] = ""
			}
		}
		rows = append(rows, row)
	}
	if err := rs.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return rows, nil
}
