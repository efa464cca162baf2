package notification

import "errors"

var (
	// ErrDeliveryFailed шлюз не доставил сообщение. Переход заказа при этом уже закоммичен.
	ErrDeliveryFailed = errors.New("notification delivery failed")

	ErrAlreadyDispatched = errors.New("notification already dispatched for this transition")
	ErrMissingPhone      = errors.New("order has no phone to notify")
	ErrUnknownTemplate   = errors.New("unknown notification template")
	ErrTemplateMismatch  = errors.New("template does not match order status")
	ErrMissingStoreID    = errors.New("store id is required")
)
