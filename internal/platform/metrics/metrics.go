package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application. Every method is
// nil-safe so packages can run without metrics in tests.
type Metrics struct {
	// HTTP traffic by matched route
	RequestDuration *prometheus.HistogramVec
	ErrorResponses  *prometheus.CounterVec

	ABEventsTracked       *prometheus.CounterVec
	LoyaltyPointsRedeemed prometheus.Counter
	LoyaltyPointsEarned   prometheus.Counter
	OrdersPlaced          *prometheus.CounterVec
	ExportsGenerated      *prometheus.CounterVec
	NotificationsSent     *prometheus.CounterVec
	PublisherFallback     prometheus.Gauge
	SchedulerJobRuns      *prometheus.CounterVec
	SchedulerJobDuration  *prometheus.HistogramVec
	CurrencyCacheLookups  *prometheus.CounterVec
	RateLimited           *prometheus.CounterVec
}

// New creates and registers all metrics on reg. Pass prometheus.DefaultRegisterer
// in main and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route, method and status",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"route", "method", "status"}),

		ErrorResponses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_http_error_responses_total",
			Help: "Total error envelopes by route and status class",
		}, []string{"route", "class"}), // class: "4xx", "5xx"

		ABEventsTracked: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_abtest_events_total",
			Help: "Total A/B test events tracked by event type",
		}, []string{"event_type"}),

		LoyaltyPointsRedeemed: factory.NewCounter(prometheus.CounterOpts{
			Name: "storefront_loyalty_points_redeemed_total",
			Help: "Total loyalty points spent on rewards",
		}),

		LoyaltyPointsEarned: factory.NewCounter(prometheus.CounterOpts{
			Name: "storefront_loyalty_points_earned_total",
			Help: "Total loyalty points earned from orders",
		}),

		OrdersPlaced: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_orders_placed_total",
			Help: "Total orders placed by currency",
		}, []string{"currency"}),

		ExportsGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_exports_generated_total",
			Help: "Total export files generated by dataset and format",
		}, []string{"dataset", "format"}),

		NotificationsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_notifications_published_total",
			Help: "Total messages published by topic and sink",
		}, []string{"topic", "sink"}), // sink: "kafka", "outbox"

		PublisherFallback: factory.NewGauge(prometheus.GaugeOpts{
			Name: "storefront_publisher_fallback_active",
			Help: "1 while the notification publisher is routing to the in-memory outbox",
		}),

		SchedulerJobRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_scheduler_job_runs_total",
			Help: "Total scheduled job runs by job and outcome",
		}, []string{"job", "outcome"}),

		SchedulerJobDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storefront_scheduler_job_duration_seconds",
			Help:    "Duration of scheduled job runs",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		}, []string{"job"}),

		CurrencyCacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_currency_cache_lookups_total",
			Help: "Currency rate cache lookups by result",
		}, []string{"result"}), // result: "hit", "miss"

		RateLimited: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_ratelimit_rejections_total",
			Help: "Requests rejected by the rate limiter by endpoint class",
		}, []string{"class"}),
	}
}

// ObserveRequest records one served request.
func (m *Metrics) ObserveRequest(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(d.Seconds())
	switch {
	case status >= 500:
		m.ErrorResponses.WithLabelValues(route, "5xx").Inc()
	case status >= 400:
		m.ErrorResponses.WithLabelValues(route, "4xx").Inc()
	}
}

func (m *Metrics) IncrementABEvent(eventType string) {
	if m != nil {
		m.ABEventsTracked.WithLabelValues(eventType).Inc()
	}
}

func (m *Metrics) AddPointsRedeemed(points int) {
	if m != nil && points > 0 {
		m.LoyaltyPointsRedeemed.Add(float64(points))
	}
}

func (m *Metrics) AddPointsEarned(points int) {
	if m != nil && points > 0 {
		m.LoyaltyPointsEarned.Add(float64(points))
	}
}

func (m *Metrics) IncrementOrderPlaced(currency string) {
	if m != nil {
		m.OrdersPlaced.WithLabelValues(currency).Inc()
	}
}

func (m *Metrics) IncrementExport(dataset, format string) {
	if m != nil {
		m.ExportsGenerated.WithLabelValues(dataset, format).Inc()
	}
}

func (m *Metrics) IncrementPublished(topic, sink string) {
	if m != nil {
		m.NotificationsSent.WithLabelValues(topic, sink).Inc()
	}
}

// SetPublisherFallback flips the fallback gauge.
func (m *Metrics) SetPublisherFallback(active bool) {
	if m == nil {
		return
	}
	if active {
		m.PublisherFallback.Set(1)
		return
	}
	m.PublisherFallback.Set(0)
}

func (m *Metrics) ObserveJobRun(job string, err error, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.SchedulerJobRuns.WithLabelValues(job, outcome).Inc()
	m.SchedulerJobDuration.WithLabelValues(job).Observe(d.Seconds())
}

func (m *Metrics) IncrementCacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CurrencyCacheLookups.WithLabelValues("hit").Inc()
		return
	}
	m.CurrencyCacheLookups.WithLabelValues("miss").Inc()
}

func (m *Metrics) IncrementRateLimited(class string) {
	if m != nil {
		m.RateLimited.WithLabelValues(class).Inc()
	}
}
