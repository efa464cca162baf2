package orders_stream_get

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"storefront/internal/entities"
	"storefront/internal/feed"
	"storefront/internal/handlers/rest/presenter"
	"storefront/internal/handlers/rest/sse"
	"storefront/internal/service/order"
	"storefront/pkg/logger"
)

const (
	EventSnapshot = "snapshot"
	EventChange   = "change"

	DefaultHeartbeat = 15 * time.Second
)

// Handler поток изменений заказов магазина: сначала snapshot, затем change.
// После разрыва ленты клиент получает новый snapshot.
type Handler struct {
	log       handlerLogger
	service   Service
	feed      Feed
	heartbeat time.Duration
}

func New(log handlerLogger, service Service, feed Feed, heartbeat time.Duration) *Handler {
	handlerLog := log.With(logger.NewField("stream", "orders"))
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}

	return &Handler{
		log:       handlerLog,
		service:   service,
		feed:      feed,
		heartbeat: heartbeat,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	storeID := mux.Vars(r)["store_id"]

	sub, orders, err := h.subscribe(ctx, storeID)
	if err != nil {
		switch {
		case errors.Is(err, feed.ErrMissingStore), errors.Is(err, order.ErrValidation):
			w.WriteHeader(http.StatusBadRequest)
		case errors.Is(err, feed.ErrClosed):
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			h.log.With(
				logger.NewField("error", err),
				logger.NewField("store_id", storeID),
			).Error("open orders stream")
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}

	stream, err := sse.Open(w)
	if err != nil {
		sub.Close()
		h.log.With(logger.NewField("error", err)).Error("open event stream")
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		err = stream.Event(EventSnapshot, presenter.Orders(orders))
		if err == nil {
			err = h.relay(ctx, stream, sub, ticker.C)
		}
		sub.Close()

		if !errors.Is(err, feed.ErrGap) {
			break
		}

		h.log.Warn("change feed gap, sending new snapshot", logger.NewField("store_id", storeID))
		sub, orders, err = h.subscribe(ctx, storeID)
		if err != nil {
			break
		}
	}

	if err != nil && ctx.Err() == nil && !errors.Is(err, feed.ErrClosed) {
		h.log.With(
			logger.NewField("error", err),
			logger.NewField("store_id", storeID),
		).Error("orders stream aborted")
	}
}

// subscribe оформляет подписку до чтения списка, чтобы не потерять изменения между ними.
func (h *Handler) subscribe(ctx context.Context, storeID string) (*feed.Subscription, []entities.Order, error) {
	sub, err := h.feed.Subscribe(storeID)
	if err != nil {
		return nil, nil, err
	}

	orders, err := h.service.ListByStore(ctx, storeID)
	if err != nil {
		sub.Close()
		return nil, nil, err
	}
	return sub, orders, nil
}

func (h *Handler) relay(ctx context.Context, stream *sse.Writer, sub *feed.Subscription, heartbeat <-chan time.Time) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-heartbeat:
			if err := stream.Heartbeat(); err != nil {
				return err
			}
		case event, ok := <-sub.Events():
			if !ok {
				if err := sub.Err(); err != nil {
					return err
				}
				return feed.ErrClosed
			}
			if err := stream.Event(EventChange, presenter.ChangeEvent(event)); err != nil {
				return err
			}
		}
	}
}
