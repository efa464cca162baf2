package order_changed

import (
	"sync/atomic"

	"github.com/IBM/sarama"
	"storefront/internal/feed"
	"storefront/pkg/logger"
)

// Handler ретранслирует события изменения заказов из топика в локальный Hub.
type Handler struct {
	broadcaster Broadcaster
	log         handlerLogger
	sessions    atomic.Int64
}

func New(log handlerLogger, broadcaster Broadcaster) *Handler {
	return &Handler{
		broadcaster: broadcaster,
		log:         log.With(logger.NewField("handler", "order.changed")),
	}
}

// Setup каждая сессия после первой начинается после разрыва или ребаланса,
// события между сессиями могли потеряться: подписчики закрываются с ErrGap и делают resync.
func (h *Handler) Setup(sarama.ConsumerGroupSession) error {
	if h.sessions.Add(1) == 1 {
		return nil
	}

	dropped := h.broadcaster.DropAll(feed.ErrGap)
	h.log.Warn("order.changed: consumer session restarted, subscribers resync",
		logger.NewField("dropped", dropped),
	)
	return nil
}

func (h *Handler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *Handler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				h.log.Info("order.changed: claim.Messages() closed, exiting ConsumeClaim")
				return nil
			}

			shouldExit := h.messageProcessing(sess, message)
			if shouldExit {
				return nil
			}

		case <-sess.Context().Done():
			h.log.Info("order.changed: session context done, exiting ConsumeClaim")
			return nil
		}
	}
}

// messageProcessing возвращает true, если сессия уже закрыта и сообщение нужно перечитать.
func (h *Handler) messageProcessing(sess sarama.ConsumerGroupSession, message *sarama.ConsumerMessage) bool {
	if sess.Context().Err() != nil {
		h.log.Warn("order.changed: session closed, message will be reprocessed",
			logger.NewField("offset", message.Offset),
		)
		return true
	}

	event, err := feed.DecodeEvent(message.Value)
	if err != nil {
		h.log.With(
			logger.NewField("error", err),
			logger.NewField("offset", message.Offset),
		).Error("order.changed handler received bad message")
		sess.MarkMessage(message, "")
		return false
	}

	h.broadcaster.Broadcast(event)

	sess.MarkMessage(message, "")
	return false
}
