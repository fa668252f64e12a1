package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/abgdnv/productstore/internal/product/store"
	"golang.org/x/sync/errgroup"
)

var errUsage = errors.New("invalid usage")

// command runs one store operation and writes its JSON result to out.
type command func(ctx context.Context, s store.ProductStore, out io.Writer, args []string) error

var commands = map[string]command{
	"create": runCreate,
	"get":    runGet,
	"list":   runList,
	"update": runUpdate,
	"delete": runDelete,
	"seed":   runSeed,
}

func runCreate(ctx context.Context, s store.ProductStore, out io.Writer, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: create expects one JSON item", errUsage)
	}
	item, err := parseItem(args[0])
	if err != nil {
		return err
	}
	created, err := s.Create(ctx, item)
	if err != nil {
		return err
	}
	return writeJSON(out, created)
}

func runGet(ctx context.Context, s store.ProductStore, out io.Writer, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: get expects an id", errUsage)
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	product, err := s.Read(ctx, id)
	if err != nil {
		return err
	}
	return writeJSON(out, product)
}

func runList(ctx context.Context, s store.ProductStore, out io.Writer, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("%w: list takes no arguments", errUsage)
	}
	for product, err := range s.ReadAll(ctx) {
		if err != nil {
			return err
		}
		if err := writeJSON(out, product); err != nil {
			return err
		}
	}
	return nil
}

func runUpdate(ctx context.Context, s store.ProductStore, _ io.Writer, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: update expects an id and one JSON item", errUsage)
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	item, err := parseItem(args[1])
	if err != nil {
		return err
	}
	return s.Update(ctx, id, item)
}

func runDelete(ctx context.Context, s store.ProductStore, _ io.Writer, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: delete expects an id", errUsage)
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return s.Delete(ctx, id)
}

// runSeed creates n products named <prefix>-<i>, running at most c creates at a time.
// Created products are written in completion order.
func runSeed(ctx context.Context, s store.ProductStore, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	n := fs.Int("n", 10, "number of products to create")
	c := fs.Int("c", 4, "maximum number of concurrent creates")
	prefix := fs.String("prefix", "product", "name prefix")
	stock := fs.Int64("stock", 0, "stock of every created product")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if *n < 0 || *c < 1 {
		return fmt.Errorf("%w: seed needs -n >= 0 and -c >= 1", errUsage)
	}

	var mu sync.Mutex
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(*c)
	for i := range *n {
		g.Go(func() error {
			created, err := s.Create(gCtx, &store.Item{Name: fmt.Sprintf("%s-%d", *prefix, i+1), Stock: stock})
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return writeJSON(out, created)
		})
	}
	return g.Wait()
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid id %q", errUsage, raw)
	}
	return id, nil
}

// parseItem decodes a JSON item. The literal null yields a nil item, which the store rejects.
func parseItem(raw string) (*store.Item, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.DisallowUnknownFields()
	var item *store.Item
	if err := dec.Decode(&item); err != nil {
		return nil, fmt.Errorf("%w: invalid item: %v", errUsage, err)
	}
	return item, nil
}

func writeJSON(out io.Writer, v any) error {
	return json.NewEncoder(out).Encode(v)
}
