// Package outbox развязывает мутации каталога и доставку событий изменений:
// события складываются в ограниченную очередь и отправляются в брокер отдельной горутиной.
package outbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/costumeshop/internal/domain"
)

const (
	defaultQueueSize      = 1024
	defaultMaxAttempts    = 3
	defaultRetryBaseDelay = 50 * time.Millisecond
)

// ErrQueueFull возвращается PublishChange, когда очередь заполнена; событие отбрасывается.
var ErrQueueFull = errors.New("change event queue is full")

var (
	relayDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "costumeshop_outbox_deliveries_total",
		Help: "Change event delivery attempts grouped by result.",
	}, []string{"result"})
	relayPending = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "costumeshop_outbox_pending_events",
		Help: "Change events waiting in the relay queue.",
	})
)

// RelayOptions задаёт параметры Relay.
type RelayOptions struct {
	Logger         *log.Entry
	QueueSize      int
	MaxAttempts    int
	RetryBaseDelay time.Duration
}

// Option настраивает Relay.
type Option func(*RelayOptions)

// WithLogger задаёт logger.
func WithLogger(logger *log.Entry) Option {
	return func(opts *RelayOptions) {
		opts.Logger = logger
	}
}

// WithQueueSize задаёт ёмкость очереди.
func WithQueueSize(size int) Option {
	return func(opts *RelayOptions) {
		opts.QueueSize = size
	}
}

// WithMaxAttempts задаёт число попыток доставки одного события.
func WithMaxAttempts(maxAttempts int) Option {
	return func(opts *RelayOptions) {
		opts.MaxAttempts = maxAttempts
	}
}

// WithRetryBaseDelay задаёт базовую задержку exponential backoff.
func WithRetryBaseDelay(delay time.Duration) Option {
	return func(opts *RelayOptions) {
		opts.RetryBaseDelay = delay
	}
}

// Relay — domain.ChangePublisher, который не блокирует мутацию на брокере.
type Relay struct {
	downstream     domain.ChangePublisher
	queue          chan domain.ChangeEvent
	logger         *log.Entry
	maxAttempts    int
	retryBaseDelay time.Duration
}

// NewRelay создаёт relay поверх downstream (обычно kafka.Producer).
func NewRelay(downstream domain.ChangePublisher, options ...Option) *Relay {
	opts := RelayOptions{
		QueueSize:      defaultQueueSize,
		MaxAttempts:    defaultMaxAttempts,
		RetryBaseDelay: defaultRetryBaseDelay,
	}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "outbox-relay")
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.RetryBaseDelay < 0 {
		opts.RetryBaseDelay = 0
	}

	return &Relay{
		downstream:     downstream,
		queue:          make(chan domain.ChangeEvent, opts.QueueSize),
		logger:         logger,
		maxAttempts:    opts.MaxAttempts,
		retryBaseDelay: opts.RetryBaseDelay,
	}
}

// PublishChange ставит событие в очередь и сразу возвращается.
func (r *Relay) PublishChange(_ context.Context, event domain.ChangeEvent) error {
	select {
	case r.queue <- event:
		relayPending.Set(float64(len(r.queue)))
		return nil
	default:
		relayDeliveries.WithLabelValues("dropped").Inc()
		r.logger.WithFields(log.Fields{
			"collection": event.Collection,
			"record_id":  event.RecordID,
		}).Warn("change event dropped: queue is full")
		return ErrQueueFull
	}
}

// Pending возвращает число событий в очереди.
func (r *Relay) Pending() int {
	return len(r.queue)
}

// Run доставляет события до отмены ctx. Оставшиеся в очереди события отправляет Flush.
func (r *Relay) Run(ctx context.Context) {
	if r.downstream == nil {
		r.logger.Warn("outbox relay is disabled: downstream publisher is nil")
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-r.queue:
			r.deliver(ctx, event)
		}
	}
}

// Flush синхронно доставляет всё, что осталось в очереди, пока ctx не истёк.
func (r *Relay) Flush(ctx context.Context) int {
	if r.downstream == nil {
		return 0
	}
	delivered := 0
	for {
		if ctx.Err() != nil {
			return delivered
		}
		select {
		case event := <-r.queue:
			if r.deliver(ctx, event) {
				delivered++
			}
		default:
			return delivered
		}
	}
}

func (r *Relay) deliver(ctx context.Context, event domain.ChangeEvent) bool {
	defer relayPending.Set(float64(len(r.queue)))

	if err := r.publishWithRetry(ctx, event); err != nil {
		relayDeliveries.WithLabelValues("failed").Inc()
		r.logger.WithError(err).WithFields(log.Fields{
			"collection": event.Collection,
			"action":     event.Action,
			"record_id":  event.RecordID,
		}).Error("change event delivery failed after retries")
		return false
	}
	return true
}

func (r *Relay) publishWithRetry(ctx context.Context, event domain.ChangeEvent) error {
	var lastErr error

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		err := r.downstream.PublishChange(ctx, event)
		if err == nil {
			relayDeliveries.WithLabelValues("sent").Inc()
			return nil
		}
		lastErr = err
		relayDeliveries.WithLabelValues("retry_error").Inc()

		if attempt >= r.maxAttempts {
			break
		}

		delay := r.retryBackoff(attempt)
		if delay <= 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("publish failed after %d attempts: %w", r.maxAttempts, lastErr)
}

func (r *Relay) retryBackoff(attempt int) time.Duration {
	if r.retryBaseDelay <= 0 {
		return 0
	}
	if attempt <= 1 {
		return r.retryBaseDelay
	}

	const maxDuration = time.Duration(1<<63 - 1)
	delay := r.retryBaseDelay
	for i := 1; i < attempt; i++ {
		if delay > maxDuration/2 {
			return maxDuration
		}
		delay *= 2
	}
	return delay
}
