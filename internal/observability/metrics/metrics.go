// Package metrics registers the Prometheus instruments for the HTTP surface
// and the billing engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type HTTPMetrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
	reg.MustRegister(m.RequestsTotal, m.RequestDuration)
	return m
}

type BillingMetrics struct {
	InvoicesGenerated  prometheus.Counter
	GenerationFailures prometheus.Counter
	GenerationRuns     prometheus.Counter
}

func NewBillingMetrics(reg prometheus.Registerer) *BillingMetrics {
	m := &BillingMetrics{
		InvoicesGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "billing_invoices_generated_total",
			Help: "Invoices created by the generation orchestrator.",
		}),
		GenerationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "billing_generation_failures_total",
			Help: "Per-client generation failures recorded in batch results.",
		}),
		GenerationRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "billing_generation_runs_total",
			Help: "Generation requests processed, single-client and bulk.",
		}),
	}
	reg.MustRegister(m.InvoicesGenerated, m.GenerationFailures, m.GenerationRuns)
	return m
}
