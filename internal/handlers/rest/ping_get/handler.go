package ping_get

import (
	"net/http"

	"storefront/internal/generated/dto"
	"storefront/internal/handlers/rest/presenter"
	"storefront/pkg/logger"
)

type Handler struct {
	log handlerLogger
}

func New(log handlerLogger) *Handler {
	handlerLog := log.With()

	return &Handler{
		log: handlerLog,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	message := "pong"

	err := presenter.WriteJSON(w, http.StatusOK, dto.PingResponse{Message: &message})
	if err != nil {
		h.log.With(
			logger.NewField("error", err),
		).Error("encode JSON response")
	}
}
