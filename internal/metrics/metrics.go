// Package metrics holds the Prometheus collectors shared by the API and the CLI.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"contractview/internal/render"
)

var (
	rendersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contractview_renders_total",
		Help: "Total render passes by source and outcome",
	}, []string{"source", "outcome"})

	renderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "contractview_render_duration_seconds",
		Help:    "Duration of a render pass",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	})

	malformedNodes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "contractview_malformed_nodes_total",
		Help: "Total nodes omitted because they were malformed",
	})

	clausesNumbered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "contractview_clauses_numbered_total",
		Help: "Total top-level clauses numbered",
	})

	unknownNodeTypes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "contractview_unknown_node_types_total",
		Help: "Total nodes with an unrecognized type rendered as generic containers",
	})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contractview_http_requests_total",
		Help: "Total HTTP requests by method and status",
	}, []string{"method", "status"})

	exportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contractview_exports_total",
		Help: "Total exports by format and outcome",
	}, []string{"format", "outcome"})
)

// ObserveRender records a finished render pass.
func ObserveRender(source string, stats render.Stats, elapsed time.Duration) {
	rendersTotal.WithLabelValues(source, "ok").Inc()
	renderDuration.Observe(elapsed.Seconds())
	clausesNumbered.Add(float64(stats.Clauses))
	unknownNodeTypes.Add(float64(stats.UnknownTypes))
}

// RenderFailed records a render request that never reached the engine, for
// example because the contract could not be loaded.
func RenderFailed(source string) {
	rendersTotal.WithLabelValues(source, "error").Inc()
}

func MalformedNode() {
	malformedNodes.Inc()
}

func HTTPRequest(method string, status int) {
	httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

func Export(format string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	exportsTotal.WithLabelValues(format, outcome).Inc()
}
