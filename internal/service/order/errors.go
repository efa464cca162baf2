package order

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation failed")

	ErrMissingStoreID   = fmt.Errorf("%w: store id is required", ErrValidation)
	ErrEmptyItems       = fmt.Errorf("%w: order must contain at least one item", ErrValidation)
	ErrInvalidItem      = fmt.Errorf("%w: invalid order item", ErrValidation)
	ErrNonPositiveTotal = fmt.Errorf("%w: total must be positive", ErrValidation)
	ErrInvalidPhone     = fmt.Errorf("%w: invalid phone", ErrValidation)
	ErrInvalidPayment   = fmt.Errorf("%w: invalid payment status", ErrValidation)
	ErrInvalidOrderID   = fmt.Errorf("%w: invalid order id", ErrValidation)
	ErrInvalidStatus    = fmt.Errorf("%w: invalid order status", ErrValidation)
	ErrStatusNotForward = fmt.Errorf("%w: status may only advance one step", ErrValidation)

	ErrOrderNotFound = errors.New("order not found")
	ErrConflict      = errors.New("order status changed concurrently")
	ErrDuplicate     = errors.New("order already exists")
)
