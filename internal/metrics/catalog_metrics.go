package metrics

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vladislavdragonenkov/costumeshop/internal/domain"
)

// CatalogMetrics содержит метрики операций над коллекциями и HTTP-запросов.
type CatalogMetrics struct {
	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	collectionSize    *prometheus.GaugeVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	changeEvents *prometheus.CounterVec
}

// NewCatalogMetrics регистрирует метрики в DefaultRegisterer.
func NewCatalogMetrics() *CatalogMetrics {
	return NewCatalogMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewCatalogMetricsWithRegisterer регистрирует метрики в переданном реестре.
// Повторная регистрация возвращает уже существующие коллекторы.
func NewCatalogMetricsWithRegisterer(registerer prometheus.Registerer) *CatalogMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &CatalogMetrics{
		operations: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "costumeshop_catalog_operations_total",
			Help: "Total number of collection operations by result",
		}, []string{"collection", "operation", "result"})),
		operationDuration: register(registerer, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "costumeshop_catalog_operation_duration_seconds",
			Help:    "Duration of collection operations including storage round trips",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		}, []string{"collection", "operation"})),
		collectionSize: register(registerer, prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "costumeshop_collection_records",
			Help: "Number of records observed in a collection on the last load",
		}, []string{"collection"})),
		httpRequests: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "costumeshop_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		}, []string{"method", "route", "status"})),
		httpDuration: register(registerer, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "costumeshop_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"})),
		changeEvents: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "costumeshop_change_events_total",
			Help: "Total number of record change events by publish result",
		}, []string{"collection", "result"})),
	}
}

func register[C prometheus.Collector](registerer prometheus.Registerer, collector C) C {
	if err := registerer.Register(collector); err != nil {
		var alreadyRegistered prometheus.AlreadyRegisteredError
		if errors.As(err, &alreadyRegistered) {
			existing, ok := alreadyRegistered.ExistingCollector.(C)
			if !ok {
				panic(fmt.Sprintf("collector already registered with unexpected type %T", alreadyRegistered.ExistingCollector))
			}
			return existing
		}
		panic(fmt.Sprintf("register collector: %v", err))
	}
	return collector
}

// ResultLabel переводит ошибку операции в значение метки result.
func ResultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrValidationFailed):
		return "validation_failed"
	case errors.Is(err, domain.ErrDuplicateIdentity):
		return "duplicate"
	case errors.Is(err, domain.ErrInvalidOperand):
		return "invalid_operand"
	case domain.IsStorageError(err):
		return "storage_error"
	default:
		return "error"
	}
}

// ObserveOperation учитывает результат и длительность операции над коллекцией.
func (m *CatalogMetrics) ObserveOperation(collection, operation string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(collection, operation, ResultLabel(err)).Inc()
	m.operationDuration.WithLabelValues(collection, operation).Observe(duration.Seconds())
}

// ObserveCollectionSize фиксирует размер коллекции после загрузки.
func (m *CatalogMetrics) ObserveCollectionSize(collection string, size int) {
	if m == nil {
		return
	}
	m.collectionSize.WithLabelValues(collection).Set(float64(size))
}

// ObserveHTTPRequest учитывает обработанный HTTP-запрос.
func (m *CatalogMetrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveChangeEvent учитывает попытку публикации события изменения.
func (m *CatalogMetrics) ObserveChangeEvent(collection string, err error) {
	if m == nil {
		return
	}
	result := "published"
	if err != nil {
		result = "failed"
	}
	m.changeEvents.WithLabelValues(collection, result).Inc()
}
