package notification

import "storefront/internal/entities"

func ToDomain(d *DeliveryDB) *entities.NotificationDelivery {
	if d == nil {
		return nil
	}
	return &entities.NotificationDelivery{
		OrderID:      d.OrderID,
		StoreID:      d.StoreID,
		TemplateKind: entities.TemplateKind(d.TemplateKind),
		Status:       entities.DeliveryStatusType(d.Status),
		Attempts:     d.Attempts,
		LastError:    d.LastError,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func FromDomain(d *entities.NotificationDelivery) *DeliveryDB {
	if d == nil {
		return nil
	}
	return &DeliveryDB{
		OrderID:      d.OrderID,
		StoreID:      d.StoreID,
		TemplateKind: d.TemplateKind.String(),
		Status:       d.Status.String(),
		Attempts:     d.Attempts,
		LastError:    d.LastError,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}
