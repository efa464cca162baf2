package transition

import (
	"context"
	"fmt"

	"storefront/internal/entities"
	service_order "storefront/internal/service/order"
	"storefront/pkg/logger"
)

type Engine struct {
	orders   OrderService
	notifier Notifier
	log      handlerLogger
}

func New(orders OrderService, notifier Notifier, log handlerLogger) *Engine {
	return &Engine{
		orders:   orders,
		notifier: notifier,
		log:      log.With(logger.NewField("component", "transition-engine")),
	}
}

// Transition переводит заказ в target, если это единственный следующий статус.
// Если заказ уже в target или дальше, это проигранная гонка: ErrConflict.
// Уведомление ставится в очередь только после успешного compare-and-set.
func (e *Engine) Transition(
	ctx context.Context,
	orderID string,
	target entities.OrderStatusType,
	params entities.OrderTransition,
) (*entities.Order, error) {
	if !target.IsValid() {
		return nil, fmt.Errorf("%q: %w", target, ErrUnknownTarget)
	}

	current, err := e.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if target != entities.OrderPending && current.Status.Rank() >= target.Rank() {
		// заказ уже дошел до target или дальше: кто-то успел раньше
		return nil, fmt.Errorf("%s -> %s: order already moved on: %w", current.Status, target, service_order.ErrConflict)
	}

	next, ok := current.Status.Next()
	if !ok || next != target {
		return nil, fmt.Errorf("%s -> %s: %w", current.Status, target, ErrIllegalTransition)
	}

	transition, err := edgeParams(current, target, params)
	if err != nil {
		return nil, err
	}

	updated, err := e.orders.TransitionIfStatus(ctx, orderID, current.Status, target, transition)
	if err != nil {
		return nil, err
	}

	e.log.Info("order transitioned",
		logger.NewField("order", updated.ID),
		logger.NewField("store", updated.StoreID),
		logger.NewField("from", current.Status.String()),
		logger.NewField("to", updated.Status.String()),
	)

	if kind, ok := entities.TemplateForStatus(target); ok {
		e.notifier.Enqueue(*updated, kind)
	}

	return updated, nil
}

// edgeParams проверяет предусловия ребра и оставляет только поля, которые ребро пишет.
func edgeParams(
	current *entities.Order,
	target entities.OrderStatusType,
	params entities.OrderTransition,
) (entities.OrderTransition, error) {
	if current.Phone == "" {
		return entities.OrderTransition{}, ErrMissingPhone
	}

	if current.Status == entities.OrderPending && target == entities.OrderConfirmed {
		if params.EstimatedTime == nil || *params.EstimatedTime <= 0 {
			return entities.OrderTransition{}, ErrMissingEstimate
		}
		estimate := *params.EstimatedTime
		return entities.OrderTransition{EstimatedTime: &estimate}, nil
	}

	return entities.OrderTransition{}, nil
}
