package entities

// QueueSnapshot производные представления очереди магазина.
type QueueSnapshot struct {
	StoreID        string
	Ready          []Order
	ConfirmedCount int
	WaitMinutes    int
}
