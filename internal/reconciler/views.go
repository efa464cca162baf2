package reconciler

import "sync"

// Views живые проекции по магазинам. Экран оператора открылся - MarkViewed
// сбрасывает счетчик новых заказов во всех открытых потоках магазина.
type Views struct {
	mu      sync.Mutex
	byStore map[string]map[*Reconciler]struct{}
}

func NewViews() *Views {
	return &Views{byStore: make(map[string]map[*Reconciler]struct{})}
}

// Track регистрирует проекцию, возвращенная функция снимает регистрацию.
func (v *Views) Track(storeID string, projection *Reconciler) func() {
	v.mu.Lock()
	defer v.mu.Unlock()

	tracked, ok := v.byStore[storeID]
	if !ok {
		tracked = make(map[*Reconciler]struct{})
		v.byStore[storeID] = tracked
	}
	tracked[projection] = struct{}{}

	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()

		current := v.byStore[storeID]
		delete(current, projection)
		if len(current) == 0 {
			delete(v.byStore, storeID)
		}
	}
}

// MarkViewed сбрасывает счетчики и возвращает число затронутых проекций.
func (v *Views) MarkViewed(storeID string) int {
	v.mu.Lock()
	projections := make([]*Reconciler, 0, len(v.byStore[storeID]))
	for projection := range v.byStore[storeID] {
		projections = append(projections, projection)
	}
	v.mu.Unlock()

	for _, projection := range projections {
		projection.MarkViewed()
	}
	return len(projections)
}
