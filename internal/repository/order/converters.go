package order

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"storefront/internal/entities"
)

func ToDomain(o *OrderDB) (*entities.Order, error) {
	if o == nil {
		return nil, nil
	}

	var items []entities.OrderItem
	if err := json.Unmarshal(o.Items, &items); err != nil {
		return nil, fmt.Errorf("decode items of order %s: %w", o.ID, err)
	}

	total, err := decimal.NewFromString(o.Total)
	if err != nil {
		return nil, fmt.Errorf("decode total of order %s: %w", o.ID, err)
	}

	return &entities.Order{
		ID:            o.ID,
		StoreID:       o.StoreID,
		OrderNumber:   o.OrderNumber,
		Items:         items,
		Total:         total,
		CustomerName:  o.CustomerName,
		Phone:         o.Phone,
		Status:        entities.OrderStatusType(o.Status),
		EstimatedTime: o.EstimatedTime,
		PaymentStatus: entities.PaymentStatusType(o.PaymentStatus),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}, nil
}

func FromDomain(o *entities.Order) (*OrderDB, error) {
	if o == nil {
		return nil, nil
	}

	items, err := json.Marshal(o.Items)
	if err != nil {
		return nil, fmt.Errorf("encode items: %w", err)
	}

	return &OrderDB{
		ID:            o.ID,
		StoreID:       o.StoreID,
		OrderNumber:   o.OrderNumber,
		Items:         items,
		Total:         o.Total.String(),
		CustomerName:  o.CustomerName,
		Phone:         o.Phone,
		Status:        o.Status.String(),
		EstimatedTime: o.EstimatedTime,
		PaymentStatus: o.PaymentStatus.String(),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}, nil
}

func statusesToDB(statuses []entities.OrderStatusType) []string {
	result := make([]string, 0, len(statuses))
	for _, status := range statuses {
		result = append(result, status.String())
	}
	return result
}
