// Package metrics records prometheus metrics for the HTTP surface and the
// gym data layer. A nil *Recorder is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Recorder struct {
	serviceName string

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	statusCategory  *prometheus.CounterVec

	mutations *prometheus.CounterVec
	sessions  *prometheus.CounterVec
	refreshes *prometheus.HistogramVec
	conflicts prometheus.Counter
}

// NewRecorder creates and registers every collector on reg.
func NewRecorder(reg prometheus.Registerer, serviceName string) *Recorder {
	r := &Recorder{
		serviceName: serviceName,
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"service", "method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service", "method", "path", "status"},
		),
		statusCategory: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_status_category_total",
				Help: "Total number of responses by status category (2xx, 4xx, 5xx)",
			},
			[]string{"service", "category"},
		),
		mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gym_mutations_total",
				Help: "Entity mutations applied to the collection store",
			},
			[]string{"service", "operation"},
		),
		sessions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gym_workout_sessions_total",
				Help: "Workout session transitions by outcome",
			},
			[]string{"service", "outcome"},
		),
		refreshes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gym_snapshot_refresh_seconds",
				Help:    "Duration of tenant snapshot rebuilds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service"},
		),
		conflicts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "gym_version_conflicts_total",
				Help: "Writes rejected because the collection changed underneath",
			},
		),
	}
	reg.MustRegister(
		r.requests,
		r.requestDuration,
		r.statusCategory,
		r.mutations,
		r.sessions,
		r.refreshes,
		r.conflicts,
	)
	return r
}

func (r *Recorder) Mutation(operation string) {
	if r == nil {
		return
	}
	r.mutations.WithLabelValues(r.serviceName, operation).Inc()
}

func (r *Recorder) Session(outcome string) {
	if r == nil {
		return
	}
	r.sessions.WithLabelValues(r.serviceName, outcome).Inc()
}

func (r *Recorder) ObserveRefresh(d time.Duration) {
	if r == nil {
		return
	}
	r.refreshes.WithLabelValues(r.serviceName).Observe(d.Seconds())
}

func (r *Recorder) Conflict() {
	if r == nil {
		return
	}
	r.conflicts.Inc()
}

func statusCategory(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500 && status < 600:
		return "5xx"
	}
	return ""
}

// Middleware records request count, duration and status category.
func (r *Recorder) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if r == nil {
			c.Next()
			return
		}
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		method := c.Request.Method
		path := c.FullPath()
		statusStr := strconv.Itoa(status)

		r.requests.WithLabelValues(r.serviceName, method, path, statusStr).Inc()
		r.requestDuration.WithLabelValues(r.serviceName, method, path, statusStr).Observe(time.Since(start).Seconds())
		if category := statusCategory(status); category != "" {
			r.statusCategory.WithLabelValues(r.serviceName, category).Inc()
		}
	}
}

// Handler exposes the collectors gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
