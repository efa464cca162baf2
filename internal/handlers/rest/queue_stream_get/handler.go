package queue_stream_get

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"storefront/internal/entities"
	"storefront/internal/feed"
	"storefront/internal/generated/dto"
	"storefront/internal/handlers/rest/presenter"
	"storefront/internal/handlers/rest/sse"
	"storefront/internal/reconciler"
	"storefront/internal/service/queue"
	"storefront/pkg/logger"
)

const (
	EventQueue = "queue"

	DefaultHeartbeat = 15 * time.Second
)

// Handler живая очередь магазина: своя проекция заказов на каждое соединение,
// новое состояние очереди отправляется после каждого изменения проекции.
type Handler struct {
	log       handlerLogger
	service   Service
	feed      Feed
	views     Views
	heartbeat time.Duration
}

func New(log handlerLogger, service Service, feed Feed, views Views, heartbeat time.Duration) *Handler {
	handlerLog := log.With(logger.NewField("stream", "queue"))
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}

	return &Handler{
		log:       handlerLog,
		service:   service,
		feed:      feed,
		views:     views,
		heartbeat: heartbeat,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	storeID := mux.Vars(r)["store_id"]
	if storeID == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	stream, err := sse.Open(w)
	if err != nil {
		h.log.With(logger.NewField("error", err)).Error("open event stream")
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	projection := reconciler.New(storeID, h.service, h.feed, h.log)
	untrack := h.views.Track(storeID, projection)
	defer untrack()

	done := make(chan error, 1)
	go func() {
		done <- projection.Run(ctx)
	}()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			<-done
			return
		case err = <-done:
			if ctx.Err() == nil && !errors.Is(err, feed.ErrClosed) {
				h.log.With(
					logger.NewField("error", err),
					logger.NewField("store_id", storeID),
				).Error("queue stream aborted")
			}
			return
		case <-ticker.C:
			err = stream.Heartbeat()
		case <-projection.Changes():
			if !projection.Synced() {
				continue
			}
			err = stream.Event(EventQueue, Snapshot(storeID, projection))
		}

		if err != nil {
			cancel()
			<-done
			return
		}
	}
}

// Snapshot очередь выдачи по текущей проекции плюс счетчик новых заказов.
func Snapshot(storeID string, projection *reconciler.Reconciler) dto.QueueSnapshot {
	active := projection.Snapshot(entities.OrderConfirmed, entities.OrderReady)

	snapshot := presenter.Queue(queue.Project(storeID, active))
	newOrders := projection.NewSinceViewed()
	snapshot.NewOrders = &newOrders
	return snapshot
}
