package transition

import (
	"errors"
	"fmt"

	service_order "storefront/internal/service/order"
)

var (
	ErrIllegalTransition = errors.New("illegal transition")

	ErrUnknownTarget   = fmt.Errorf("%w: unknown target status", service_order.ErrValidation)
	ErrMissingEstimate = fmt.Errorf("%w: estimated time must be a positive number of minutes", service_order.ErrValidation)
	ErrMissingPhone    = fmt.Errorf("%w: customer phone is required for this transition", service_order.ErrValidation)
)
