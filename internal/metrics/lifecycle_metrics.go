package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LifecycleMetrics содержит метрики жизненного цикла заказа.
type LifecycleMetrics struct {
	// Счётчики переходов заказа
	ordersPlaced    prometheus.Counter
	ordersConfirmed prometheus.Counter
	ordersShipped   prometheus.Counter
	ordersCancelled prometheus.Counter
	ordersRefunded  prometheus.Counter

	// Гистограмма времени размещения заказа
	placementDuration prometheus.Histogram

	// Вызовы платёжного шлюза по операциям и результатам
	gatewayCalls *prometheus.CounterVec

	// Счётчики событий timeline и outbox
	timelineEvents prometheus.Counter
	outboxEvents   prometheus.Counter
}

// NewLifecycleMetrics создаёт метрики в default-регистраторе.
func NewLifecycleMetrics() *LifecycleMetrics {
	return newLifecycleMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newLifecycleMetricsWithRegisterer(registerer prometheus.Registerer) *LifecycleMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &LifecycleMetrics{
		ordersPlaced: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_orders_placed_total",
			Help: "Total number of orders placed",
		}),
		ordersConfirmed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_orders_payment_confirmed_total",
			Help: "Total number of orders with confirmed payment",
		}),
		ordersShipped: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_orders_shipped_total",
			Help: "Total number of orders shipped",
		}),
		ordersCancelled: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_orders_cancelled_total",
			Help: "Total number of orders cancelled",
		}),
		ordersRefunded: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_orders_refunded_total",
			Help: "Total number of orders refunded",
		}),
		placementDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "storefront_order_placement_duration_seconds",
			Help:    "Duration of order placement in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		gatewayCalls: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storefront_gateway_calls_total",
			Help: "Total number of payment gateway calls by operation and result",
		}, []string{"operation", "result"}),
		timelineEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_timeline_events_total",
			Help: "Total number of order timeline events recorded",
		}),
		outboxEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_outbox_events_total",
			Help: "Total number of outbox events enqueued",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderPlaced увеличивает счётчик размещённых заказов.
func (m *LifecycleMetrics) RecordOrderPlaced() {
	m.ordersPlaced.Inc()
}

// RecordPaymentConfirmed увеличивает счётчик подтверждённых оплат.
func (m *LifecycleMetrics) RecordPaymentConfirmed() {
	m.ordersConfirmed.Inc()
}

// RecordOrderShipped увеличивает счётчик отгруженных заказов.
func (m *LifecycleMetrics) RecordOrderShipped() {
	m.ordersShipped.Inc()
}

// RecordOrderCancelled увеличивает счётчик отменённых заказов.
func (m *LifecycleMetrics) RecordOrderCancelled() {
	m.ordersCancelled.Inc()
}

// RecordOrderRefunded увеличивает счётчик возвратов.
func (m *LifecycleMetrics) RecordOrderRefunded() {
	m.ordersRefunded.Inc()
}

// RecordPlacementDuration записывает длительность размещения заказа.
func (m *LifecycleMetrics) RecordPlacementDuration(duration time.Duration) {
	m.placementDuration.Observe(duration.Seconds())
}

// RecordGatewayCall фиксирует вызов платёжного шлюза.
func (m *LifecycleMetrics) RecordGatewayCall(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.gatewayCalls.WithLabelValues(operation, result).Inc()
}

// RecordTimelineEvent увеличивает счётчик событий timeline.
func (m *LifecycleMetrics) RecordTimelineEvent() {
	m.timelineEvents.Inc()
}

// RecordOutboxEvent увеличивает счётчик событий outbox.
func (m *LifecycleMetrics) RecordOutboxEvent() {
	m.outboxEvents.Inc()
}
