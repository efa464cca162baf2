package timeout

import (
	"context"
	"net/http"
	"time"

	"storefront/internal/pkg/middlewares/metrics"
)

// Middleware ограничивает время обработки запроса. Потоки Server-Sent Events
// живут до отключения клиента и остановки сервиса, для них ограничения нет.
func Middleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if metrics.IsEventStream(r) {
				next.ServeHTTP(w, r)
				return
			}

			// r.Context() = ongoingCtx (из BaseContext)
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
