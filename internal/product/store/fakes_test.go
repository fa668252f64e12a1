package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakePool hands out the same fakeConn and counts acquisitions.
type fakePool struct {
	conn     *fakeConn
	err      error
	acquired int
}

func (p *fakePool) Acquire(_ context.Context) (Conn, error) {
	p.acquired++
	if p.err != nil {
		return nil, p.err
	}
	return p.conn, nil
}

type statement struct {
	sql  string
	args []any
}

// fakeConn records statements and counts releases.
type fakeConn struct {
	row      fakeRow
	rows     *fakeRows
	queryErr error
	tag      pgconn.CommandTag
	execErr  error

	statements []statement
	released   int
}

func (c *fakeConn) Exec(_ context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	c.statements = append(c.statements, statement{sql: sql, args: arguments})
	return c.tag, c.execErr
}

func (c *fakeConn) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	c.statements = append(c.statements, statement{sql: sql, args: args})
	if c.queryErr != nil {
		return nil, c.queryErr
	}
	return c.rows, nil
}

func (c *fakeConn) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	c.statements = append(c.statements, statement{sql: sql, args: args})
	return c.row
}

func (c *fakeConn) Release() {
	c.released++
}

// fakeRow scans values into *int64 and *string destinations.
type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(dest, r.values)
}

// fakeRows implements pgx.Rows over an in-memory result set.
type fakeRows struct {
	data    [][]any
	pos     int
	scanErr error
	err     error
	closed  bool
}

func (r *fakeRows) Close() { r.closed = true }

func (r *fakeRows) Err() error { return r.err }

func (r *fakeRows) CommandTag() pgconn.CommandTag {
	return pgconn.NewCommandTag(fmt.Sprintf("SELECT %d", len(r.data)))
}

func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }

func (r *fakeRows) Next() bool {
	if r.closed || r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	return assign(dest, r.data[r.pos-1])
}

func (r *fakeRows) Values() ([]any, error) { return r.data[r.pos-1], nil }

func (r *fakeRows) RawValues() [][]byte { return nil }

func (r *fakeRows) Conn() *pgx.Conn { return nil }

func assign(dest []any, values []any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("expected %d scan destinations, got %d", len(values), len(dest))
	}
	for i, d := range dest {
		switch target := d.(type) {
		case *int64:
			*target = values[i].(int64)
		case *string:
			*target = values[i].(string)
		default:
			return fmt.Errorf("unsupported scan destination %T", d)
		}
	}
	return nil
}

func ptr[T any](v T) *T {
	return &v
}
