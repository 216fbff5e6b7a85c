// Package metrics collects Prometheus metrics for the API.
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/anjiri1684/educonnect/models"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector is registered once at startup and shared by middleware, jobs and
// the session lifecycle.
type Collector struct {
	requests           *prometheus.CounterVec
	latency            *prometheus.HistogramVec
	sessionTransitions *prometheus.CounterVec
	storeUp            prometheus.Gauge
	wsClients          prometheus.Gauge
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "educonnect_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "educonnect_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		sessionTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "educonnect_session_transitions_total",
			Help: "Session lifecycle transitions by target status.",
		}, []string{"from", "to"}),
		storeUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "educonnect_store_up",
			Help: "1 when the last document store ping succeeded.",
		}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "educonnect_ws_clients",
			Help: "Connected websocket event clients.",
		}),
	}

	reg.MustRegister(
		c.requests,
		c.latency,
		c.sessionTransitions,
		c.storeUp,
		c.wsClients,
	)
	return c
}

func (c *Collector) RecordRequest(method, route string, status int, d time.Duration) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.latency.WithLabelValues(method, route).Observe(d.Seconds())
}

// SessionChanged counts lifecycle transitions.
func (c *Collector) SessionChanged(_ context.Context, ev models.SessionEvent) {
	c.sessionTransitions.WithLabelValues(string(ev.From), string(ev.To)).Inc()
}

func (c *Collector) SetStoreUp(up bool) {
	if up {
		c.storeUp.Set(1)
		return
	}
	c.storeUp.Set(0)
}

func (c *Collector) SetWSClients(n int) {
	c.wsClients.Set(float64(n))
}

// Handler serves the scrape endpoint on a Fiber route.
func Handler(gatherer prometheus.Gatherer) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}
