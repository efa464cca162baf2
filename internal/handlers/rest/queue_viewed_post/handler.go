package queue_viewed_post

import (
	"net/http"

	"github.com/gorilla/mux"
	"storefront/pkg/logger"
)

// Handler оператор открыл экран очереди: счетчик новых заказов в открытых
// потоках магазина обнуляется, потоки сразу отправляют обновленную очередь.
type Handler struct {
	log   handlerLogger
	views Views
}

func New(log handlerLogger, views Views) *Handler {
	return &Handler{
		log:   log.With(),
		views: views,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	storeID := mux.Vars(r)["store_id"]
	if storeID == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	reset := h.views.MarkViewed(storeID)
	h.log.Info("queue marked viewed",
		logger.NewField("store_id", storeID),
		logger.NewField("streams", reset),
	)

	w.WriteHeader(http.StatusNoContent)
}
