// Package errors provides custom error types for product-related operations.
package errors

import (
	"errors"
	"fmt"
)

// ErrProductNotFound is returned when the targeted row does not exist.
var ErrProductNotFound = errors.New("product not found")

// ErrInvalidItem is the parent of every input validation error.
// Validation errors are reported before any database interaction.
var ErrInvalidItem = errors.New("invalid item")

var (
	ErrItemRequired  = fmt.Errorf("%w: the item must not be nil", ErrInvalidItem)
	ErrNameRequired  = fmt.Errorf("%w: the name must not be empty", ErrInvalidItem)
	ErrNegativeStock = fmt.Errorf("%w: the stock must be greater or equal to 0", ErrInvalidItem)
	ErrIDAlreadySet  = fmt.Errorf("%w: the created item already contains an 'id'", ErrInvalidItem)
	ErrIDImmutable   = fmt.Errorf("%w: the 'id' cannot be changed", ErrInvalidItem)
)

// ErrSequenceConsumed is yielded when a ReadAll sequence is ranged over more than once.
var ErrSequenceConsumed = errors.New("product sequence already consumed")
