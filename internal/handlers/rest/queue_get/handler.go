package queue_get

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"storefront/internal/handlers/rest/presenter"
	"storefront/internal/service/order"
	"storefront/pkg/logger"
)

type Handler struct {
	log       handlerLogger
	projector Projector
}

func New(log handlerLogger, projector Projector) *Handler {
	handlerLog := log.With()

	return &Handler{
		log:       handlerLog,
		projector: projector,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	storeID := mux.Vars(r)["store_id"]

	snapshot, err := h.projector.Snapshot(r.Context(), storeID)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrValidation):
			w.WriteHeader(http.StatusBadRequest)
		default:
			h.log.With(
				logger.NewField("error", err),
				logger.NewField("store_id", storeID),
			).Error("project store queue")
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}

	err = presenter.WriteJSON(w, http.StatusOK, presenter.Queue(snapshot))
	if err != nil {
		h.log.With(
			logger.NewField("error", err),
		).Error("encode JSON response")
	}
}
