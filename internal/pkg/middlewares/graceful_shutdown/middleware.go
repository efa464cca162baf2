package graceful_shutdown

import (
	"context"
	"net/http"
	"sync/atomic"

	"storefront/internal/generated/dto"
	"storefront/internal/handlers/rest/presenter"
)

const retryAfterSeconds = "5"

// Middleware после начала остановки отвечает 503 и просит клиента переподключиться позже.
// Отмена ongoingCtx без выставленного флага запросы не блокирует.
func Middleware(isShuttingDown *atomic.Bool, ongoingCtx context.Context) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ongoingCtx.Err() == nil || !isShuttingDown.Load() {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Connection", "close")
			w.Header().Set("Retry-After", retryAfterSeconds)
			_ = presenter.WriteJSON(w, http.StatusServiceUnavailable, dto.Error{Message: "service is shutting down"})
		})
	}
}
