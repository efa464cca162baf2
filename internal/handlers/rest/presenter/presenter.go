package presenter

import (
	"encoding/json"
	"net/http"

	"storefront/internal/entities"
	"storefront/internal/generated/dto"
)

func Order(order entities.Order) dto.Order {
	items := make([]dto.OrderItem, len(order.Items))
	for i, item := range order.Items {
		items[i] = dto.OrderItem{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.StringFixed(2),
		}
		if item.Preferences != "" {
			preferences := item.Preferences
			items[i].Preferences = &preferences
		}
	}

	orderDTO := dto.Order{
		Id:            order.ID,
		StoreId:       order.StoreID,
		OrderNumber:   order.OrderNumber,
		Items:         items,
		Total:         order.Total.StringFixed(2),
		CustomerName:  order.CustomerName,
		Status:        order.Status.String(),
		EstimatedTime: order.EstimatedTime,
		PaymentStatus: order.PaymentStatus.String(),
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
	if order.Phone != "" {
		phone := order.Phone
		orderDTO.Phone = &phone
	}
	return orderDTO
}

func Orders(orders []entities.Order) []dto.Order {
	result := make([]dto.Order, len(orders))
	for i, order := range orders {
		result[i] = Order(order)
	}
	return result
}

func ChangeEvent(event entities.ChangeEvent) dto.ChangeEvent {
	return dto.ChangeEvent{
		Type:  event.Type.String(),
		Order: Order(event.Order),
	}
}

func Queue(snapshot entities.QueueSnapshot) dto.QueueSnapshot {
	return dto.QueueSnapshot{
		StoreId:        snapshot.StoreID,
		Ready:          Orders(snapshot.Ready),
		ConfirmedCount: snapshot.ConfirmedCount,
		WaitMinutes:    snapshot.WaitMinutes,
	}
}

func NotificationFailures(deliveries []entities.NotificationDelivery) []dto.NotificationFailure {
	result := make([]dto.NotificationFailure, len(deliveries))
	for i, delivery := range deliveries {
		result[i] = dto.NotificationFailure{
			OrderId:   delivery.OrderID,
			Template:  delivery.TemplateKind.String(),
			Attempts:  delivery.Attempts,
			LastError: delivery.LastError,
			UpdatedAt: delivery.UpdatedAt,
		}
	}
	return result
}

func WriteJSON(w http.ResponseWriter, status int, body any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(body)
}

// WriteError пишет статус и текст ошибки для клиента.
func WriteError(w http.ResponseWriter, status int, err error) error {
	return WriteJSON(w, status, dto.Error{Message: err.Error()})
}
