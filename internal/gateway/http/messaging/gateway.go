package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"storefront/internal/entities"
	retrierconfig "storefront/pkg/retrier"
	"storefront/pkg/retrier/backoff_adapter"
)

const (
	serviceName  = "messaging-gateway"
	sendMethod   = "SendMessage"
	sendPath     = "/v1/messages"
	maxErrorBody = 512
)

const (
	initialInterval = 100 * time.Millisecond
	maxInterval     = 2 * time.Second
	maxElapsedTime  = 5 * time.Second
	randomization   = 0.5
	multiplier      = 2.0
)

type Config struct {
	BaseURL string
	Token   string
	// Timeout на одну попытку, ретраи ограничены MaxElapsedTime
	Timeout        time.Duration
	MaxElapsedTime time.Duration
}

type Gateway struct {
	client  httpClient
	cfg     Config
	retrier *backoff_adapter.Retrier
}

var errBadResponse = errors.New("malformed gateway response")

// statusError ответ шлюза с неуспешным HTTP-кодом.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("messaging gateway responded %d", e.code)
	}
	return fmt.Sprintf("messaging gateway responded %d: %s", e.code, e.body)
}

func New(cfg Config, client httpClient) *Gateway {
	if cfg.MaxElapsedTime == 0 {
		cfg.MaxElapsedTime = maxElapsedTime
	}

	retryConfig := retrierconfig.Config{
		InitialInterval: initialInterval,
		MaxInterval:     maxInterval,
		MaxElapsedTime:  cfg.MaxElapsedTime,
		Randomization:   randomization,
		Multiplier:      multiplier,
		ShouldRetry:     isRetryable,
	}

	return &Gateway{
		client:  client,
		cfg:     cfg,
		retrier: backoff_adapter.New(retryConfig),
	}
}

// Send отправляет шаблонное сообщение. Отказ шлюза по существу (success=false в ответе)
// возвращается как результат, транспортные ошибки и неуспешные коды - как error.
func (g *Gateway) Send(ctx context.Context, message entities.Message) (entities.DeliveryResult, error) {
	payload, err := json.Marshal(sendRequest{
		To:       message.To,
		Template: message.Template.String(),
		Params:   message.Params,
	})
	if err != nil {
		return entities.DeliveryResult{}, fmt.Errorf("gateway messaging, encode request: %w", err)
	}

	var resp sendResponse
	err = g.executeWithMetrics(ctx, sendMethod, func(ctx context.Context) error {
		var err error
		resp, err = g.post(ctx, payload)
		return err
	})
	if err != nil {
		return entities.DeliveryResult{}, fmt.Errorf("gateway messaging, send %s: %w", message.Template, err)
	}

	return entities.DeliveryResult{
		Success:     resp.Success,
		ErrorReason: resp.ErrorReason,
	}, nil
}

func (g *Gateway) post(ctx context.Context, payload []byte) (sendResponse, error) {
	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(g.cfg.BaseURL, "/")+sendPath, bytes.NewReader(payload))
	if err != nil {
		return sendResponse{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+g.cfg.Token)
	}

	httpResp, err := g.client.Do(req)
	if err != nil {
		return sendResponse{}, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(httpResp.Body, maxErrorBody))
		return sendResponse{}, &statusError{code: httpResp.StatusCode, body: strings.TrimSpace(string(body))}
	}

	var resp sendResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return sendResponse{}, fmt.Errorf("%w: %w", errBadResponse, err)
	}
	return resp, nil
}

// isRetryable ретраим 429, 5xx и транспортные ошибки (в т.ч. таймаут попытки).
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	var statusErr *statusError
	if errors.As(err, &statusErr) {
		return statusErr.code == http.StatusTooManyRequests || statusErr.code >= http.StatusInternalServerError
	}

	if errors.Is(err, errBadResponse) {
		return false
	}

	return !errors.Is(err, context.Canceled)
}

func (g *Gateway) executeWithMetrics(ctx context.Context, method string, fn func(context.Context) error) error {
	var attempt uint64
	start := time.Now()

	err := g.retrier.ExecuteWithContext(ctx, func(ctx context.Context) error {
		attempt++
		return fn(ctx)
	})

	code := statusCode(err)
	GatewayRequestDuration.WithLabelValues(serviceName, method, code).Observe(time.Since(start).Seconds())

	if attempt > 1 {
		GatewayRetriesTotal.WithLabelValues(serviceName, method, code).Inc()
	}

	return err
}

func statusCode(err error) string {
	if err == nil {
		return "OK"
	}
	var statusErr *statusError
	if errors.As(err, &statusErr) {
		return strconv.Itoa(statusErr.code)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "TIMEOUT"
	}
	return "UNKNOWN"
}
