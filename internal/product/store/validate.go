package store

import (
	"errors"
	"fmt"

	perrors "github.com/abgdnv/productstore/internal/product/errors"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// validateItem checks the rules shared by Create and Update.
// Name is reported before Stock when both are invalid.
func validateItem(item *Item) error {
	if item == nil {
		return perrors.ErrItemRequired
	}
	err := validate.Struct(item)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: %v", perrors.ErrInvalidItem, err)
	}
	failed := make(map[string]bool, len(validationErrors))
	for _, fieldErr := range validationErrors {
		failed[fieldErr.StructField()] = true
	}
	switch {
	case failed["Name"]:
		return perrors.ErrNameRequired
	case failed["Stock"]:
		return perrors.ErrNegativeStock
	default:
		return fmt.Errorf("%w: %v", perrors.ErrInvalidItem, err)
	}
}

func validateCreate(item *Item) error {
	if err := validateItem(item); err != nil {
		return err
	}
	if item.ID != nil {
		return perrors.ErrIDAlreadySet
	}
	return nil
}

func validateUpdate(id int64, item *Item) error {
	if err := validateItem(item); err != nil {
		return err
	}
	if item.ID != nil && *item.ID != id {
		return perrors.ErrIDImmutable
	}
	return nil
}
