package notification_failures_get

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"storefront/internal/handlers/rest/presenter"
	"storefront/internal/service/notification"
	"storefront/pkg/logger"
)

// Handler отдает персоналу неуспешные доставки уведомлений магазина.
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

	failures, err := h.service.Failures(r.Context(), storeID)
	if err != nil {
		switch {
		case errors.Is(err, notification.ErrMissingStoreID):
			w.WriteHeader(http.StatusBadRequest)
		default:
			h.log.With(
				logger.NewField("error", err),
				logger.NewField("store_id", storeID),
			).Error("list notification failures")
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}

	err = presenter.WriteJSON(w, http.StatusOK, presenter.NotificationFailures(failures))
	if err != nil {
		h.log.With(
			logger.NewField("error", err),
		).Error("encode JSON response")
	}
}
