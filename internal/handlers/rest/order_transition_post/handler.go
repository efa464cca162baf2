package order_transition_post

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"storefront/internal/entities"
	"storefront/internal/generated/dto"
	"storefront/internal/handlers/rest/presenter"
	"storefront/internal/service/order"
	"storefront/internal/service/transition"
	"storefront/pkg/logger"
)

type Handler struct {
	log    handlerLogger
	engine Engine
}

func New(log handlerLogger, engine Engine) *Handler {
	handlerLog := log.With()

	return &Handler{
		log:    handlerLog,
		engine: engine,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]

	var transitionDTO dto.OrderTransition
	err := json.NewDecoder(r.Body).Decode(&transitionDTO)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	updated, err := h.engine.Transition(
		r.Context(),
		orderID,
		entities.OrderStatusType(transitionDTO.Target),
		entities.OrderTransition{EstimatedTime: transitionDTO.EstimatedTime},
	)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrValidation):
			h.writeError(w, http.StatusBadRequest, err)
		case errors.Is(err, order.ErrOrderNotFound):
			w.WriteHeader(http.StatusNotFound)
		case errors.Is(err, order.ErrConflict):
			h.writeError(w, http.StatusConflict, err)
		case errors.Is(err, transition.ErrIllegalTransition):
			h.writeError(w, http.StatusUnprocessableEntity, err)
		default:
			h.log.With(
				logger.NewField("error", err),
				logger.NewField("order_id", orderID),
			).Error("transition order")
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}

	err = presenter.WriteJSON(w, http.StatusOK, presenter.Order(*updated))
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
