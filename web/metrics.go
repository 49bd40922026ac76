package web

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"net/http"
	"strconv"
	"time"
)

var (
	requestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchdsl_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "searchdsl_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	// queryErrorsTotal counts rejected queries by the kind of error, e.g. "parse error".
	queryErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchdsl_query_errors_total",
			Help: "Total number of rejected queries",
		},
		[]string{"kind"},
	)
	searchResultsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "searchdsl_search_results_total",
			Help: "Total number of records returned by searches",
		},
	)
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		path := request.URL.Path
		if route := mux.CurrentRoute(request); route != nil {
			if template, err := route.GetPathTemplate(); err == nil {
				path = template
			}
		}

		recorder := &statusRecorder{ResponseWriter: writer, status: http.StatusOK}
		startTime := time.Now()

		next.ServeHTTP(recorder, request)

		requestDuration.WithLabelValues(request.Method, path).Observe(time.Since(startTime).Seconds())
		requestTotal.WithLabelValues(request.Method, path, strconv.Itoa(recorder.status)).Inc()
	})
}
