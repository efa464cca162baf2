package order

import "time"

type OrderDB struct {
	ID            string
	StoreID       string
	OrderNumber   string
	Items         []byte
	Total         string
	CustomerName  string
	Phone         string
	Status        string
	EstimatedTime *int
	PaymentStatus string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// колонки в порядке scanOrder
const orderColumns = "id, store_id, order_number, items, total::text, customer_name, phone, " +
	"status, estimated_time, payment_status, created_at, updated_at"
