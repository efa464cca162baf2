package order

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"storefront/internal/entities"
	"storefront/pkg/logger"
)

type Service struct {
	repository Repository
	publisher  Publisher
	txManager  TxManager
	log        handlerLogger
}

func New(repository Repository, publisher Publisher, txManager TxManager, log handlerLogger) *Service {
	return &Service{
		repository: repository,
		publisher:  publisher,
		txManager:  txManager,
		log:        log.With(logger.NewField("component", "order-service")),
	}
}

// Create сохраняет оплаченный заказ в статусе pending и публикует INSERT в ленту магазина.
func (s *Service) Create(ctx context.Context, orderModify entities.OrderModify) (*entities.Order, error) {
	order, err := newOrder(orderModify)
	if err != nil {
		return nil, err
	}

	var created *entities.Order
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		number, err := s.repository.NextOrderNumber(ctx, order.StoreID)
		if err != nil {
			return fmt.Errorf("allocate order number: %w", err)
		}
		order.OrderNumber = formatOrderNumber(number)

		created, err = s.repository.Create(ctx, order)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, entities.ChangeInsert, created)
	return created, nil
}

// TransitionIfStatus единственный путь изменения статуса: compare-and-set по ожидаемому статусу.
func (s *Service) TransitionIfStatus(
	ctx context.Context,
	orderID string,
	expected entities.OrderStatusType,
	next entities.OrderStatusType,
	transition entities.OrderTransition,
) (*entities.Order, error) {
	if !isValidID(orderID) {
		return nil, ErrInvalidOrderID
	}
	if !isForwardStep(expected, next) {
		return nil, fmt.Errorf("%s -> %s: %w", expected, next, ErrStatusNotForward)
	}

	updated, err := s.repository.UpdateStatusIfCurrent(ctx, orderID, expected, next, transition)
	if err != nil {
		return nil, fmt.Errorf("transition order %s to %s: %w", orderID, next, err)
	}

	s.publish(ctx, entities.ChangeUpdate, updated)
	return updated, nil
}

func (s *Service) Get(ctx context.Context, orderID string) (*entities.Order, error) {
	if !isValidID(orderID) {
		return nil, ErrInvalidOrderID
	}

	order, err := s.repository.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

func (s *Service) ListByStore(ctx context.Context, storeID string, statuses ...entities.OrderStatusType) ([]entities.Order, error) {
	if !isValidID(storeID) {
		return nil, ErrMissingStoreID
	}
	for _, status := range statuses {
		if !status.IsValid() {
			return nil, fmt.Errorf("%q: %w", status, ErrInvalidStatus)
		}
	}

	orders, err := s.repository.ListByStore(ctx, storeID, statuses)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// publish не возвращает ошибку: запись уже закоммичена, подписчики догонят через полный resync.
func (s *Service) publish(ctx context.Context, changeType entities.ChangeType, order *entities.Order) {
	err := s.publisher.Publish(ctx, entities.ChangeEvent{
		Type:  changeType,
		Order: *order,
	})
	if err != nil {
		s.log.Warn("change feed publish failed",
			logger.NewField("order", order.ID),
			logger.NewField("store", order.StoreID),
			logger.NewField("type", changeType.String()),
			logger.NewField("error", err),
		)
	}
}

func newOrder(orderModify entities.OrderModify) (entities.Order, error) {
	if orderModify.StoreID == nil || !isValidID(*orderModify.StoreID) {
		return entities.Order{}, ErrMissingStoreID
	}
	if len(orderModify.Items) == 0 {
		return entities.Order{}, ErrEmptyItems
	}
	for i, item := range orderModify.Items {
		if !isValidItem(item) {
			return entities.Order{}, fmt.Errorf("item %d: %w", i, ErrInvalidItem)
		}
	}
	if orderModify.Total == nil || !orderModify.Total.IsPositive() {
		return entities.Order{}, ErrNonPositiveTotal
	}

	var phone string
	if orderModify.Phone != nil && strings.TrimSpace(*orderModify.Phone) != "" {
		normalized, ok := NormalizePhone(*orderModify.Phone)
		if !ok {
			return entities.Order{}, ErrInvalidPhone
		}
		phone = normalized
	}

	var customerName string
	if orderModify.CustomerName != nil {
		customerName = strings.TrimSpace(*orderModify.CustomerName)
	}

	paymentStatus := entities.PaymentPaid
	if orderModify.PaymentStatus != nil {
		if !orderModify.PaymentStatus.IsValid() {
			return entities.Order{}, ErrInvalidPayment
		}
		paymentStatus = *orderModify.PaymentStatus
	}

	items := make([]entities.OrderItem, len(orderModify.Items))
	copy(items, orderModify.Items)

	return entities.Order{
		ID:            uuid.NewString(),
		StoreID:       strings.TrimSpace(*orderModify.StoreID),
		Items:         items,
		Total:         *orderModify.Total,
		CustomerName:  customerName,
		Phone:         phone,
		Status:        entities.OrderPending,
		PaymentStatus: paymentStatus,
	}, nil
}

func formatOrderNumber(number int64) string {
	return fmt.Sprintf("%04d", number)
}
