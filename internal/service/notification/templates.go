package notification

import (
	"strconv"

	"storefront/internal/entities"
)

// templateParams параметры шаблона. Подтверждение несет ожидание и сумму заказа.
func templateParams(order entities.Order, kind entities.TemplateKind) (map[string]string, error) {
	params := map[string]string{
		"customer_name": order.CustomerName,
		"order_number":  order.OrderNumber,
	}

	switch kind {
	case entities.TemplateConfirmation:
		if order.EstimatedTime != nil {
			params["estimated_time"] = strconv.Itoa(*order.EstimatedTime)
		}
		params["total"] = order.Total.StringFixed(2)
	case entities.TemplateReady, entities.TemplateThankYou:
	default:
		return nil, ErrUnknownTemplate
	}

	return params, nil
}

func claimKey(orderID string, kind entities.TemplateKind) string {
	return "notification:" + orderID + ":" + kind.String()
}
