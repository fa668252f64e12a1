// Package store provides an interface for product storage operations.
package store

import (
	"context"
	"iter"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ProductStore is an interface for product storage operations.
// Every call borrows one pooled connection and releases it before returning.
type ProductStore interface {
	// Create inserts a new product and returns it with the generated ID.
	// Returns a validation error (ErrInvalidItem) if the item is nil, has an empty name,
	// a negative stock or already carries an ID.
	Create(ctx context.Context, item *Item) (Product, error)

	// ReadAll returns a lazy, single-use sequence of every stored product.
	// No ordering is guaranteed.
	ReadAll(ctx context.Context) iter.Seq2[Product, error]

	// Read retrieves a single product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Read(ctx context.Context, id int64) (Product, error)

	// Update replaces the name and stock of an existing product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id int64, item *Item) error

	// Delete removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Delete(ctx context.Context, id int64) error
}

// Product represents a stored product.
type Product struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Stock int64  `json:"stock"`
}

// Item is the caller-supplied shape for Create and Update.
// ID is optional and Stock defaults to 0 when nil.
type Item struct {
	ID    *int64 `json:"id,omitempty"`
	Name  string `json:"name"            validate:"required"`
	Stock *int64 `json:"stock,omitempty" validate:"omitempty,gte=0"`
}

// StockOrDefault returns the item stock, or 0 when it is absent.
func (i *Item) StockOrDefault() int64 {
	if i.Stock == nil {
		return 0
	}
	return *i.Stock
}

// Conn is a connection borrowed from a pool.
// It is satisfied by *pgxpool.Conn.
type Conn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Release()
}

// ConnPool hands out connections. Callers must Release every acquired Conn.
type ConnPool interface {
	Acquire(ctx context.Context) (Conn, error)
}
