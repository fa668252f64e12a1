package store

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sync/atomic"

	perrors "github.com/abgdnv/productstore/internal/product/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	insertProduct = "INSERT INTO products (name, stock) VALUES ($1, $2) RETURNING id"
	selectProduct = "SELECT id, name, stock FROM products WHERE id = $1"
	selectAll     = "SELECT id, name, stock FROM products"
	updateProduct = "UPDATE products SET name = $1, stock = $2 WHERE id = $3"
	deleteProduct = "DELETE FROM products WHERE id = $1"
)

var _ ProductStore = (*PgStore)(nil)

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	pool   ConnPool
	logger *slog.Logger
	inst   *instruments
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool, logger *slog.Logger) *PgStore {
	return NewWithPool(pgxPool{pool: dbp}, logger)
}

// NewWithPool creates a PgStore on top of any ConnPool.
func NewWithPool(pool ConnPool, logger *slog.Logger) *PgStore {
	return &PgStore{
		pool:   pool,
		logger: logger.With("component", "store"),
		inst:   newInstruments(),
	}
}

// pgxPool adapts *pgxpool.Pool to ConnPool.
type pgxPool struct {
	pool *pgxpool.Pool
}

func (p pgxPool) Acquire(ctx context.Context) (Conn, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Create inserts the item and returns it with the generated ID.
func (p *PgStore) Create(ctx context.Context, item *Item) (created Product, err error) {
	ctx, done := p.inst.begin(ctx, opCreate)
	defer func() { done(err) }()

	if err = validateCreate(item); err != nil {
		p.logger.DebugContext(ctx, "Rejected product creation", "error", err)
		return Product{}, err
	}

	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		p.logger.ErrorContext(ctx, "Failed to acquire connection", "operation", opCreate, "error", err)
		return Product{}, err
	}
	defer conn.Release()

	stock := item.StockOrDefault()
	var id int64
	if err = conn.QueryRow(ctx, insertProduct, item.Name, stock).Scan(&id); err != nil {
		p.logger.ErrorContext(ctx, "Error inserting product", "Name", item.Name, "error", err)
		return Product{}, err
	}
	p.logger.DebugContext(ctx, "Product created", "ID", id, "Name", item.Name)
	return Product{ID: id, Name: item.Name, Stock: stock}, nil
}

// ReadAll streams every row of the products table.
// The connection is acquired on the first iteration and released when the iteration ends,
// whether the rows are exhausted, an error occurs or the caller breaks out.
func (p *PgStore) ReadAll(ctx context.Context) iter.Seq2[Product, error] {
	var consumed atomic.Bool
	return func(yield func(Product, error) bool) {
		if !consumed.CompareAndSwap(false, true) {
			yield(Product{}, perrors.ErrSequenceConsumed)
			return
		}

		spanCtx, done := p.inst.begin(ctx, opReadAll)
		var err error
		count := 0
		defer func() { done(err) }()

		conn, err := p.pool.Acquire(spanCtx)
		if err != nil {
			p.logger.ErrorContext(spanCtx, "Failed to acquire connection", "operation", opReadAll, "error", err)
			yield(Product{}, err)
			return
		}
		defer conn.Release()

		rows, err := conn.Query(spanCtx, selectAll)
		if err != nil {
			p.logger.ErrorContext(spanCtx, "Error querying products", "error", err)
			yield(Product{}, err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			var product Product
			if err = rows.Scan(&product.ID, &product.Name, &product.Stock); err != nil {
				p.logger.ErrorContext(spanCtx, "Error scanning product row", "error", err)
				yield(Product{}, err)
				return
			}
			count++
			if !yield(product, nil) {
				p.logger.DebugContext(spanCtx, "Product stream stopped by caller", "count", count)
				return
			}
		}
		if err = rows.Err(); err != nil {
			p.logger.ErrorContext(spanCtx, "Error reading product rows", "error", err)
			yield(Product{}, err)
			return
		}
		p.logger.DebugContext(spanCtx, "Product stream completed", "count", count)
	}
}

// Read retrieves a product by its ID.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) Read(ctx context.Context, id int64) (product Product, err error) {
	ctx, done := p.inst.begin(ctx, opRead)
	defer func() { done(err) }()

	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		p.logger.ErrorContext(ctx, "Failed to acquire connection", "operation", opRead, "error", err)
		return Product{}, err
	}
	defer conn.Release()

	err = conn.QueryRow(ctx, selectProduct, id).Scan(&product.ID, &product.Name, &product.Stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			p.logger.WarnContext(ctx, "Product not found", "ID", id)
			err = fmt.Errorf("%w: item '%d'", perrors.ErrProductNotFound, id)
			return Product{}, err
		}
		p.logger.ErrorContext(ctx, "Error retrieving product", "ID", id, "error", err)
		return Product{}, err
	}
	return product, nil
}

// Update replaces the name and stock of the product with the given ID.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) Update(ctx context.Context, id int64, item *Item) (err error) {
	ctx, done := p.inst.begin(ctx, opUpdate)
	defer func() { done(err) }()

	if err = validateUpdate(id, item); err != nil {
		p.logger.DebugContext(ctx, "Rejected product update", "ID", id, "error", err)
		return err
	}

	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		p.logger.ErrorContext(ctx, "Failed to acquire connection", "operation", opUpdate, "error", err)
		return err
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, updateProduct, item.Name, item.StockOrDefault(), id)
	if err != nil {
		p.logger.ErrorContext(ctx, "Error updating product", "ID", id, "error", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		p.logger.WarnContext(ctx, "Product not found for update", "ID", id)
		err = fmt.Errorf("%w: unknown item '%d'", perrors.ErrProductNotFound, id)
		return err
	}
	p.logger.DebugContext(ctx, "Product updated", "ID", id, "Name", item.Name)
	return nil
}

// Delete removes the product with the given ID.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) Delete(ctx context.Context, id int64) (err error) {
	ctx, done := p.inst.begin(ctx, opDelete)
	defer func() { done(err) }()

	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		p.logger.ErrorContext(ctx, "Failed to acquire connection", "operation", opDelete, "error", err)
		return err
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, deleteProduct, id)
	if err != nil {
		p.logger.ErrorContext(ctx, "Error deleting product", "ID", id, "error", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		p.logger.WarnContext(ctx, "Product not found for deletion", "ID", id)
		err = fmt.Errorf("%w: unknown item '%d'", perrors.ErrProductNotFound, id)
		return err
	}
	p.logger.DebugContext(ctx, "Product deleted", "ID", id)
	return nil
}
