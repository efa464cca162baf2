package feed

import "storefront/internal/entities"

// Subscription подписка на изменения одного магазина.
// Канал Events закрывается при Close, при отставании и при остановке хаба.
type Subscription struct {
	hub     *Hub
	storeID string
	events  chan entities.ChangeEvent
	err     error
}

func (s *Subscription) StoreID() string {
	return s.storeID
}

func (s *Subscription) Events() <-chan entities.ChangeEvent {
	return s.events
}

// Err причина закрытия канала: ErrGap, ErrClosed или nil после Close.
func (s *Subscription) Err() error {
	s.hub.mu.RLock()
	defer s.hub.mu.RUnlock()

	return s.err
}

func (s *Subscription) Close() {
	s.hub.remove(s, nil)
}
