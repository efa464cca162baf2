package notification

import "time"

type DeliveryDB struct {
	OrderID      string
	StoreID      string
	TemplateKind string
	Status       string
	Attempts     int
	LastError    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const deliveryColumns = "order_id, store_id, template_kind, status, attempts, last_error, created_at, updated_at"
