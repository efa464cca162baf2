package reconciler

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"storefront/internal/entities"
	"storefront/internal/feed"
	"storefront/pkg/logger"
)

// Reconciler локальная проекция заказов одного магазина, собранная из ленты изменений.
// Дубликаты и события со старым updated_at не меняют проекцию, разрыв ленты
// приводит к полной перезагрузке через ListByStore.
type Reconciler struct {
	storeID string
	orders  OrderLister
	feed    Feed
	log     handlerLogger

	mu             sync.RWMutex
	items          map[string]entities.Order
	newSinceViewed int
	synced         bool

	changes chan struct{}
}

func New(storeID string, orders OrderLister, feed Feed, log handlerLogger) *Reconciler {
	return &Reconciler{
		storeID: storeID,
		orders:  orders,
		feed:    feed,
		log:     log.With(logger.NewField("component", "reconciler"), logger.NewField("store", storeID)),
		items:   make(map[string]entities.Order),
		changes: make(chan struct{}, 1),
	}
}

// Apply применяет событие и возвращает true, если проекция изменилась.
func (r *Reconciler) Apply(event entities.ChangeEvent) bool {
	if event.Order.StoreID != r.storeID {
		return false
	}

	r.mu.Lock()
	changed := r.apply(event)
	r.mu.Unlock()

	if changed {
		r.notify()
	}
	return changed
}

func (r *Reconciler) apply(event entities.ChangeEvent) bool {
	incoming := event.Order
	held, ok := r.items[incoming.ID]

	if !ok {
		r.items[incoming.ID] = incoming
		if event.Type == entities.ChangeInsert {
			r.newSinceViewed++
		}
		return true
	}

	// INSERT для уже известного заказа обрабатывается как UPDATE
	if incoming.UpdatedAt.Before(held.UpdatedAt) {
		return false
	}

	r.items[incoming.ID] = incoming
	return !incoming.UpdatedAt.Equal(held.UpdatedAt) || incoming.Status != held.Status
}

// Resync отбрасывает локальную коллекцию и заполняет ее заново из хранилища.
func (r *Reconciler) Resync(ctx context.Context) error {
	orders, err := r.orders.ListByStore(ctx, r.storeID)
	if err != nil {
		return fmt.Errorf("resync store %s: %w", r.storeID, err)
	}

	items := make(map[string]entities.Order, len(orders))
	for _, order := range orders {
		items[order.ID] = order
	}

	r.mu.Lock()
	r.items = items
	r.synced = true
	r.mu.Unlock()

	r.notify()
	return nil
}

// Run подписывается на ленту, делает resync и применяет события до отмены ctx.
// Подписка оформляется до чтения списка, поэтому изменения во время resync не теряются.
func (r *Reconciler) Run(ctx context.Context) error {
	for {
		sub, err := r.feed.Subscribe(r.storeID)
		if err != nil {
			return fmt.Errorf("subscribe store %s: %w", r.storeID, err)
		}

		err = r.consume(ctx, sub)
		sub.Close()

		switch {
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, feed.ErrGap):
			r.log.Warn("change feed gap, resyncing")
			continue
		default:
			return err
		}
	}
}

func (r *Reconciler) consume(ctx context.Context, sub *feed.Subscription) error {
	r.mu.Lock()
	r.synced = false
	r.mu.Unlock()

	err := r.Resync(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-sub.Events():
			if !ok {
				err = sub.Err()
				if err == nil {
					return feed.ErrClosed
				}
				return err
			}
			r.Apply(event)
		}
	}
}

// Snapshot копия проекции, отфильтрованная по статусам, свежие заказы первыми.
func (r *Reconciler) Snapshot(statuses ...entities.OrderStatusType) []entities.Order {
	r.mu.RLock()
	orders := make([]entities.Order, 0, len(r.items))
	for _, order := range r.items {
		if len(statuses) == 0 || slices.Contains(statuses, order.Status) {
			orders = append(orders, order)
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(orders, func(a, b entities.Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return orders
}

func (r *Reconciler) Get(orderID string) (entities.Order, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.items[orderID]
	return order, ok
}

// Synced false между разрывом ленты и завершением resync.
func (r *Reconciler) Synced() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.synced
}

func (r *Reconciler) NewSinceViewed() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.newSinceViewed
}

// MarkViewed сбрасывает счетчик новых заказов, когда оператор открыл экран.
func (r *Reconciler) MarkViewed() {
	r.mu.Lock()
	r.newSinceViewed = 0
	r.mu.Unlock()

	r.notify()
}

// Changes сигнализирует об изменении проекции. Сигналы схлопываются.
func (r *Reconciler) Changes() <-chan struct{} {
	return r.changes
}

func (r *Reconciler) notify() {
	select {
	case r.changes <- struct{}{}:
	default:
	}
}
