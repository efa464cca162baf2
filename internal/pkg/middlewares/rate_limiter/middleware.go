package rate_limiter

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"storefront/internal/generated/dto"
	"storefront/internal/handlers/rest/presenter"
	"storefront/pkg/logger"
)

const defaultRetryAfter = time.Second

// Middleware отклоняет запросы клиента сверх его token bucket с 429.
// Вебхук оплаты повторяет доставку, поэтому отказ не теряет заказ.
func Middleware(log handlerLogger, rateLimiterQPS int, rlimiter Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := ClientKey(r)

			ok, wait := rlimiter.Allow(client)
			if ok {
				next.ServeHTTP(w, r)
				return
			}

			route := r.URL.Path
			if current := mux.CurrentRoute(r); current != nil {
				if template, err := current.GetPathTemplate(); err == nil {
					route = template
				}
			}

			log.With(
				logger.NewField("method", r.Method),
				logger.NewField("route", route),
				logger.NewField("client", client),
			).Warn("rate limit exceeded")

			RateLimitExceededTotal.WithLabelValues(r.Method, route).Inc()

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rateLimiterQPS))
			w.Header().Set("Retry-After", retryAfter(wait))

			err := presenter.WriteJSON(w, http.StatusTooManyRequests, dto.Error{Message: "rate limit exceeded, try again later"})
			if err != nil {
				log.Error("failed to write rate limit response", logger.NewField("error", err))
			}
		})
	}
}

// ClientKey адрес клиента без порта.
func ClientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// retryAfter целые секунды вверх, не меньше одной.
func retryAfter(wait time.Duration) string {
	if wait <= 0 {
		wait = defaultRetryAfter
	}
	return strconv.Itoa(int(math.Ceil(wait.Seconds())))
}
