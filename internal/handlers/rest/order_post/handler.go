package order_post

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"storefront/internal/entities"
	"storefront/internal/generated/dto"
	"storefront/internal/handlers/rest/presenter"
	"storefront/internal/service/order"
	"storefront/pkg/logger"
)

var errInvalidAmount = errors.New("invalid decimal amount")

type Handler struct {
	log     handlerLogger
	service Service
}

func New(log handlerLogger, service Service) *Handler {
	handlerLog := log.With()

	return &Handler{
		log:     handlerLog,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var orderCreateDTO dto.OrderCreate
	err := json.NewDecoder(r.Body).Decode(&orderCreateDTO)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	orderModify, err := toOrderModify(orderCreateDTO)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	created, err := h.service.Create(r.Context(), orderModify)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrValidation):
			h.writeError(w, http.StatusBadRequest, err)
		case errors.Is(err, order.ErrDuplicate):
			h.writeError(w, http.StatusConflict, err)
		default:
			h.log.With(
				logger.NewField("error", err),
			).Error("create order")
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}

	err = presenter.WriteJSON(w, http.StatusCreated, presenter.Order(*created))
	if err != nil {
		h.log.With(
			logger.NewField("error", err),
		).Error("encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	if encodeErr := presenter.WriteError(w, status, err); encodeErr != nil {
		h.log.With(
			logger.NewField("error", encodeErr),
		).Error("encode JSON response")
	}
}

func toOrderModify(orderCreateDTO dto.OrderCreate) (entities.OrderModify, error) {
	total, err := decimal.NewFromString(orderCreateDTO.Total)
	if err != nil {
		return entities.OrderModify{}, fmt.Errorf("total %q: %w", orderCreateDTO.Total, errInvalidAmount)
	}

	items := make([]entities.OrderItem, len(orderCreateDTO.Items))
	for i, itemDTO := range orderCreateDTO.Items {
		unitPrice, err := decimal.NewFromString(itemDTO.UnitPrice)
		if err != nil {
			return entities.OrderModify{}, fmt.Errorf("item %d unit price %q: %w", i, itemDTO.UnitPrice, errInvalidAmount)
		}

		items[i] = entities.OrderItem{
			Name:      itemDTO.Name,
			Quantity:  itemDTO.Quantity,
			UnitPrice: unitPrice,
		}
		if itemDTO.Preferences != nil {
			items[i].Preferences = *itemDTO.Preferences
		}
	}

	orderModify := entities.OrderModify{
		StoreID:      &orderCreateDTO.StoreId,
		Items:        items,
		Total:        &total,
		CustomerName: orderCreateDTO.CustomerName,
		Phone:        orderCreateDTO.Phone,
	}
	if orderCreateDTO.PaymentStatus != nil {
		paymentStatus := entities.PaymentStatusType(*orderCreateDTO.PaymentStatus)
		orderModify.PaymentStatus = &paymentStatus
	}

	return orderModify, nil
}
