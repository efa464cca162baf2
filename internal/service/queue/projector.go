package queue

import (
	"context"
	"fmt"
	"slices"

	"storefront/internal/entities"
)

// kitchenParallelism сколько заказов готовится одновременно.
const kitchenParallelism = 2

// Project считает очередь выдачи и ожидание по текущему набору заказов.
func Project(storeID string, orders []entities.Order) entities.QueueSnapshot {
	snapshot := entities.QueueSnapshot{
		StoreID: storeID,
		Ready:   ReadyQueue(orders),
	}
	for _, order := range orders {
		if order.Status == entities.OrderConfirmed {
			snapshot.ConfirmedCount++
		}
	}
	snapshot.WaitMinutes = EstimatedWait(orders)
	return snapshot
}

// ReadyQueue заказы в статусе ready, свежие первыми.
func ReadyQueue(orders []entities.Order) []entities.Order {
	ready := make([]entities.Order, 0)
	for _, order := range orders {
		if order.Status == entities.OrderReady {
			ready = append(ready, order)
		}
	}
	slices.SortStableFunc(ready, func(a, b entities.Order) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return ready
}

// EstimatedWait ceil(сумма estimated_time подтвержденных / 2), 0 если подтвержденных нет.
func EstimatedWait(orders []entities.Order) int {
	var total int
	for _, order := range orders {
		if order.Status != entities.OrderConfirmed || order.EstimatedTime == nil {
			continue
		}
		total += *order.EstimatedTime
	}
	return (total + kitchenParallelism - 1) / kitchenParallelism
}

// Projector читает актуальные заказы магазина и пересчитывает представления на каждый запрос.
type Projector struct {
	orders OrderLister
}

func NewProjector(orders OrderLister) *Projector {
	return &Projector{orders: orders}
}

func (p *Projector) Snapshot(ctx context.Context, storeID string) (entities.QueueSnapshot, error) {
	orders, err := p.orders.ListByStore(ctx, storeID, entities.OrderConfirmed, entities.OrderReady)
	if err != nil {
		return entities.QueueSnapshot{}, fmt.Errorf("list queue orders: %w", err)
	}
	return Project(storeID, orders), nil
}

func (p *Projector) ReadyQueue(ctx context.Context, storeID string) ([]entities.Order, error) {
	orders, err := p.orders.ListByStore(ctx, storeID, entities.OrderReady)
	if err != nil {
		return nil, fmt.Errorf("list ready orders: %w", err)
	}
	return ReadyQueue(orders), nil
}

func (p *Projector) EstimatedWait(ctx context.Context, storeID string) (int, error) {
	orders, err := p.orders.ListByStore(ctx, storeID, entities.OrderConfirmed)
	if err != nil {
		return 0, fmt.Errorf("list confirmed orders: %w", err)
	}
	return EstimatedWait(orders), nil
}
