package orders_get

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"storefront/internal/entities"
	"storefront/internal/handlers/rest/presenter"
	"storefront/internal/service/order"
	"storefront/pkg/logger"
)

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
	storeID := mux.Vars(r)["store_id"]
	statuses := ParseStatuses(r.URL.Query().Get("status"))

	orderEntities, err := h.service.ListByStore(r.Context(), storeID, statuses...)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrValidation):
			if encodeErr := presenter.WriteError(w, http.StatusBadRequest, err); encodeErr != nil {
				h.log.With(
					logger.NewField("error", encodeErr),
				).Error("encode JSON response")
			}
		default:
			h.log.With(
				logger.NewField("error", err),
				logger.NewField("store_id", storeID),
			).Error("list store orders")
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}

	err = presenter.WriteJSON(w, http.StatusOK, presenter.Orders(orderEntities))
	if err != nil {
		h.log.With(
			logger.NewField("error", err),
		).Error("encode JSON response")
	}
}

// ParseStatuses разбирает фильтр вида "confirmed,ready". Пустая строка - без фильтра.
func ParseStatuses(raw string) []entities.OrderStatusType {
	var statuses []entities.OrderStatusType
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		statuses = append(statuses, entities.OrderStatusType(part))
	}
	return statuses
}
