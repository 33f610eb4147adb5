// Package domain defines the entity types, enumerations and error taxonomy
// shared by the store, the services and the gateway.
package domain

import (
	"errors"
	"fmt"
)

// NotFoundError is returned when a lookup by id yields no record.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: id=%s", e.Kind, e.ID)
}

// Is allows errors.Is(err, &NotFoundError{}) regardless of field values.
func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// InsufficientStockError is returned when an order or sale asks for more
// units than the product currently holds.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested=%d, available=%d",
		e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	_, ok := target.(*InsufficientStockError)
	return ok
}

// ValidationError is returned when input fails a field check. No mutation
// has been performed when it is returned.
type ValidationError struct {
	Field  string
	Reason string
	Value  interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s (value=%v)", e.Field, e.Reason, e.Value)
}

func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// PersistenceParseError describes a stored collection that could not be
// decoded. The store logs it and carries on with an empty collection.
type PersistenceParseError struct {
	Key string
	Err error
}

func (e *PersistenceParseError) Error() string {
	return fmt.Sprintf("corrupt collection %q: %v", e.Key, e.Err)
}

func (e *PersistenceParseError) Unwrap() error { return e.Err }

func NewNotFoundError(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

func NewInsufficientStockError(productID string, requested, available int) error {
	return &InsufficientStockError{ProductID: productID, Requested: requested, Available: available}
}

func NewValidationError(field, reason string, value interface{}) error {
	return &ValidationError{Field: field, Reason: reason, Value: value}
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsInsufficientStock(err error) bool {
	var ise *InsufficientStockError
	return errors.As(err, &ise)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
