package entities

import "time"

type TemplateKind string

const (
	TemplateConfirmation TemplateKind = "confirmation"
	TemplateReady        TemplateKind = "ready_for_pickup"
	TemplateThankYou     TemplateKind = "thank_you"
)

func (k TemplateKind) String() string {
	return string(k)
}

type DeliveryResult struct {
	Success     bool
	ErrorReason string
}

type DeliveryStatusType string

const (
	DeliverySent   DeliveryStatusType = "sent"
	DeliveryFailed DeliveryStatusType = "failed"
)

func (s DeliveryStatusType) String() string {
	return string(s)
}

// NotificationDelivery запись журнала доставки уведомления по ребру перехода.
type NotificationDelivery struct {
	OrderID      string
	StoreID      string
	TemplateKind TemplateKind
	Status       DeliveryStatusType
	Attempts     int
	LastError    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TemplateForStatus шаблон, который отправляется при переходе заказа в status.
func TemplateForStatus(status OrderStatusType) (TemplateKind, bool) {
	switch status {
	case OrderConfirmed:
		return TemplateConfirmation, true
	case OrderReady:
		return TemplateReady, true
	case OrderCompleted:
		return TemplateThankYou, true
	default:
		return "", false
	}
}

// Message сообщение для шлюза: номер в E.164, шаблон и его параметры.
type Message struct {
	To       string
	Template TemplateKind
	Params   map[string]string
}
