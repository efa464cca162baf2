package feed

import (
	"context"
	"sync"

	"storefront/internal/entities"
	"storefront/pkg/logger"
)

const DefaultBufferSize = 64

// Hub широковещательный канал изменений заказов с разбиением по магазинам.
// Событие магазина получают только подписчики этого магазина.
type Hub struct {
	mu         sync.RWMutex
	stores     map[string]map[*Subscription]struct{}
	bufferSize int
	closed     bool
	log        handlerLogger
}

func NewHub(bufferSize int, log handlerLogger) *Hub {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}

	return &Hub{
		stores:     make(map[string]map[*Subscription]struct{}),
		bufferSize: bufferSize,
		log:        log.With(logger.NewField("component", "change-feed")),
	}
}

func (h *Hub) Subscribe(storeID string) (*Subscription, error) {
	if storeID == "" {
		return nil, ErrMissingStore
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrClosed
	}

	sub := &Subscription{
		hub:     h,
		storeID: storeID,
		events:  make(chan entities.ChangeEvent, h.bufferSize),
	}

	subs, ok := h.stores[storeID]
	if !ok {
		subs = make(map[*Subscription]struct{})
		h.stores[storeID] = subs
	}
	subs[sub] = struct{}{}

	FeedSubscribers.Inc()
	return sub, nil
}

// Publish локальный транспорт: событие сразу уходит подписчикам этого процесса.
func (h *Hub) Publish(_ context.Context, event entities.ChangeEvent) error {
	if event.Order.StoreID == "" {
		FeedPublishTotal.WithLabelValues("local", "rejected").Inc()
		return ErrMissingStore
	}

	h.Broadcast(event)
	FeedPublishTotal.WithLabelValues("local", "ok").Inc()
	return nil
}

// Broadcast не блокируется на медленных подписчиках: переполненная подписка
// закрывается с ErrGap.
func (h *Hub) Broadcast(event entities.ChangeEvent) {
	var lagged []*Subscription

	h.mu.RLock()
	for sub := range h.stores[event.Order.StoreID] {
		select {
		case sub.events <- event:
		default:
			lagged = append(lagged, sub)
		}
	}
	h.mu.RUnlock()

	FeedEventsTotal.WithLabelValues(event.Type.String()).Inc()

	for _, sub := range lagged {
		if h.remove(sub, ErrGap) {
			FeedGapsTotal.Inc()
			h.log.Warn("subscriber fell behind, subscription dropped",
				logger.NewField("store", sub.storeID),
				logger.NewField("buffer", h.bufferSize),
			)
		}
	}
}

// DropAll закрывает все подписки с err, хаб продолжает принимать новые.
// Нужен, когда транспорт мог потерять события: подписчики обязаны перечитать состояние.
func (h *Hub) DropAll(err error) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	var dropped int
	for storeID, subs := range h.stores {
		for sub := range subs {
			sub.err = err
			close(sub.events)
			FeedSubscribers.Dec()
			dropped++
		}
		delete(h.stores, storeID)
	}
	if dropped > 0 && err == ErrGap {
		FeedGapsTotal.Add(float64(dropped))
	}
	return dropped
}

// Subscribers количество активных подписок магазина.
func (h *Hub) Subscribers(storeID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.stores[storeID])
}

// Close завершает все подписки с ErrClosed, новые подписки не принимаются.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for storeID, subs := range h.stores {
		for sub := range subs {
			sub.err = ErrClosed
			close(sub.events)
			FeedSubscribers.Dec()
		}
		delete(h.stores, storeID)
	}
}

func (h *Hub) remove(sub *Subscription, err error) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.stores[sub.storeID]
	if !ok {
		return false
	}
	if _, ok = subs[sub]; !ok {
		return false
	}

	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.stores, sub.storeID)
	}

	sub.err = err
	close(sub.events)
	FeedSubscribers.Dec()
	return true
}
