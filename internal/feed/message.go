package feed

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"storefront/internal/entities"
)

type changeMessage struct {
	Type  string       `json:"type"`
	Order orderMessage `json:"order"`
}

type orderMessage struct {
	ID            string               `json:"id"`
	StoreID       string               `json:"store_id"`
	OrderNumber   string               `json:"order_number"`
	Items         []entities.OrderItem `json:"items"`
	Total         decimal.Decimal      `json:"total"`
	CustomerName  string               `json:"customer_name"`
	Phone         string               `json:"phone,omitempty"`
	Status        string               `json:"status"`
	EstimatedTime *int                 `json:"estimated_time,omitempty"`
	PaymentStatus string               `json:"payment_status"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

func EncodeEvent(event entities.ChangeEvent) ([]byte, error) {
	order := event.Order
	return json.Marshal(changeMessage{
		Type: event.Type.String(),
		Order: orderMessage{
			ID:            order.ID,
			StoreID:       order.StoreID,
			OrderNumber:   order.OrderNumber,
			Items:         order.Items,
			Total:         order.Total,
			CustomerName:  order.CustomerName,
			Phone:         order.Phone,
			Status:        order.Status.String(),
			EstimatedTime: order.EstimatedTime,
			PaymentStatus: order.PaymentStatus.String(),
			CreatedAt:     order.CreatedAt,
			UpdatedAt:     order.UpdatedAt,
		},
	})
}

func DecodeEvent(data []byte) (entities.ChangeEvent, error) {
	var message changeMessage
	err := json.Unmarshal(data, &message)
	if err != nil {
		return entities.ChangeEvent{}, fmt.Errorf("%w: %w", ErrBadMessage, err)
	}

	changeType := entities.ChangeType(message.Type)
	if changeType != entities.ChangeInsert && changeType != entities.ChangeUpdate {
		return entities.ChangeEvent{}, fmt.Errorf("%w: unknown type %q", ErrBadMessage, message.Type)
	}

	status := entities.OrderStatusType(message.Order.Status)
	if !status.IsValid() {
		return entities.ChangeEvent{}, fmt.Errorf("%w: unknown status %q", ErrBadMessage, message.Order.Status)
	}

	if message.Order.ID == "" || message.Order.StoreID == "" {
		return entities.ChangeEvent{}, fmt.Errorf("%w: order id and store id are required", ErrBadMessage)
	}

	return entities.ChangeEvent{
		Type: changeType,
		Order: entities.Order{
			ID:            message.Order.ID,
			StoreID:       message.Order.StoreID,
			OrderNumber:   message.Order.OrderNumber,
			Items:         message.Order.Items,
			Total:         message.Order.Total,
			CustomerName:  message.Order.CustomerName,
			Phone:         message.Order.Phone,
			Status:        status,
			EstimatedTime: message.Order.EstimatedTime,
			PaymentStatus: entities.PaymentStatusType(message.Order.PaymentStatus),
			CreatedAt:     message.Order.CreatedAt,
			UpdatedAt:     message.Order.UpdatedAt,
		},
	}, nil
}
