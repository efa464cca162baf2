package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID            string
	StoreID       string
	OrderNumber   string
	Items         []OrderItem
	Total         decimal.Decimal
	CustomerName  string
	Phone         string
	Status        OrderStatusType
	EstimatedTime *int
	PaymentStatus PaymentStatusType
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type OrderItem struct {
	Name        string          `json:"name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Preferences string          `json:"preferences,omitempty"`
}

type OrderStatusType string

const (
	OrderPending   OrderStatusType = "pending"
	OrderConfirmed OrderStatusType = "confirmed"
	OrderReady     OrderStatusType = "ready"
	OrderCompleted OrderStatusType = "completed"
)

// OrderStatuses жизненный цикл заказа в порядке продвижения.
var OrderStatuses = []OrderStatusType{
	OrderPending,
	OrderConfirmed,
	OrderReady,
	OrderCompleted,
}

func (s OrderStatusType) String() string {
	return string(s)
}

// Rank позиция статуса в жизненном цикле, -1 для неизвестного.
func (s OrderStatusType) Rank() int {
	for i, status := range OrderStatuses {
		if status == s {
			return i
		}
	}
	return -1
}

func (s OrderStatusType) IsValid() bool {
	return s.Rank() >= 0
}

type PaymentStatusType string

const (
	PaymentPaid    PaymentStatusType = "paid"
	PaymentPending PaymentStatusType = "pending"
)

func (s PaymentStatusType) String() string {
	return string(s)
}

func (s PaymentStatusType) IsValid() bool {
	return s == PaymentPaid || s == PaymentPending
}

// OrderModify входные данные для создания заказа, nil - поле не задано.
type OrderModify struct {
	StoreID       *string
	Items         []OrderItem
	Total         *decimal.Decimal
	CustomerName  *string
	Phone         *string
	PaymentStatus *PaymentStatusType
}

// OrderTransition поля, которые записываются вместе со сменой статуса.
type OrderTransition struct {
	EstimatedTime *int
}

// Next единственный допустимый следующий статус.
func (s OrderStatusType) Next() (OrderStatusType, bool) {
	rank := s.Rank()
	if rank < 0 || rank+1 >= len(OrderStatuses) {
		return "", false
	}
	return OrderStatuses[rank+1], true
}
