package router

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// AccessLog logs every handled request
func AccessLog() MiddlewareFunc {
	return func(handler HandlerFunc) HandlerFunc {
		return func(ctx *Context) error {
			start := time.Now()

			err := handler(ctx)

			status := ctx.StatusFor(err)

			entry := ctx.Log.WithFields(logrus.Fields{
				"method":   ctx.Request.Method,
				"path":     ctx.Request.URL.Path,
				"status":   status,
				"duration": time.Since(start),
			})

			switch {
			case status >= http.StatusInternalServerError:
				entry.WithError(err).Error("Request failed")
			case err != nil:
				entry.WithError(err).Info("Request rejected")
			default:
				entry.Debug("Request handled")
			}

			return err
		}
	}
}

// Metrics registers request counters and returns middleware updating them
func Metrics(registerer prometheus.Registerer) (MiddlewareFunc, error) {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "eagle_http_requests_total",
		Help: "Number of handled http requests",
	}, []string{"method", "route", "code"})

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "eagle_http_request_duration_seconds",
		Help:    "Duration of handled http requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	for _, c := range []prometheus.Collector{requests, durations} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}

	return func(handler HandlerFunc) HandlerFunc {
		return func(ctx *Context) error {
			start := time.Now()

			err := handler(ctx)

			route := ""
			if ctx.Route != nil {
				route = ctx.Route.Pattern
			}

			requests.WithLabelValues(ctx.Request.Method, route, strconv.Itoa(ctx.StatusFor(err))).Inc()
			durations.WithLabelValues(ctx.Request.Method, route).Observe(time.Since(start).Seconds())

			return err
		}
	}, nil
}

// MetricsHandler returns prometheus exposition handler
func MetricsHandler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
