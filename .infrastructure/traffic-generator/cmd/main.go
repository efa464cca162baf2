package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Метрики
var (
	opsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_traffic_operations_total",
		Help: "Количество запросов генератора по операции и коду ответа",
	}, []string{"operation", "code"})

	opsDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_traffic_operation_duration_seconds",
		Help:    "Длительность запроса генератора в секундах",
		Buckets: []float64{0.01, 0.05, 0.1, 0.3, 0.5, 1, 2},
	}, []string{"operation"})
)

type orderItem struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

type orderCreate struct {
	StoreID       string      `json:"store_id"`
	CustomerName  string      `json:"customer_name"`
	Phone         string      `json:"phone"`
	PaymentStatus string      `json:"payment_status"`
	Total         string      `json:"total"`
	Items         []orderItem `json:"items"`
}

type orderTransition struct {
	Target        string `json:"target"`
	EstimatedTime *int   `json:"estimated_time,omitempty"`
}

type order struct {
	ID string `json:"id"`
}

func post(client *http.Client, operation, url string, body, out any) error {
	start := time.Now()
	defer func() {
		opsDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}()

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	resp, err := client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		opsCounter.WithLabelValues(operation, "error").Inc()
		return err
	}
	defer resp.Body.Close()

	opsCounter.WithLabelValues(operation, strconv.Itoa(resp.StatusCode)).Inc()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%s: status %d", operation, resp.StatusCode)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// simulateOrder проводит заказ по всему жизненному циклу pending -> confirmed -> ready -> completed.
func simulateOrder(client *http.Client, baseURL, storeID string) error {
	quantity := 1 + rand.Intn(3)
	create := orderCreate{
		StoreID:       storeID,
		CustomerName:  "Load Test",
		Phone:         fmt.Sprintf("+1555%07d", rand.Intn(10_000_000)),
		PaymentStatus: "paid",
		Total:         fmt.Sprintf("%.2f", float64(quantity)*4.5),
		Items: []orderItem{
			{Name: "Flat White", Quantity: quantity, UnitPrice: "4.50"},
		},
	}

	var created order
	err := post(client, "create", baseURL+"/orders", create, &created)
	if err != nil {
		return err
	}

	estimate := 5 + rand.Intn(20)
	steps := []orderTransition{
		{Target: "confirmed", EstimatedTime: &estimate},
		{Target: "ready"},
		{Target: "completed"},
	}
	for _, step := range steps {
		time.Sleep(time.Duration(100+rand.Intn(900)) * time.Millisecond)

		err := post(client, step.Target, baseURL+"/orders/"+created.ID+"/transition", step, nil)
		if err != nil {
			return err
		}
	}
	return nil
}

func main() {
	baseURL := flag.String("target", "http://localhost:8080", "storefront base URL")
	storeID := flag.String("store", "store-loadtest", "store id for generated orders")
	pause := flag.Duration("pause", 5*time.Second, "pause between orders")
	flag.Parse()

	http.Handle("/metrics", promhttp.Handler())
	go http.ListenAndServe(":2112", nil) //nolint:errcheck,gosec // локальный экспорт метрик

	client := &http.Client{Timeout: 10 * time.Second}
	for {
		if err := simulateOrder(client, *baseURL, *storeID); err != nil {
			log.Printf("simulate order: %v", err)
		}
		time.Sleep(*pause)
	}
}
