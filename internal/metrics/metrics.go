// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package metrics exposes migration progress as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metric names.
const (
	MetricStepsTotal          = "wpml2pll_steps_total"
	MetricStepDurationSeconds = "wpml2pll_step_duration_seconds"
	MetricStepFailuresTotal   = "wpml2pll_step_failures_total"
	MetricStagePercentage     = "wpml2pll_stage_percentage"
	MetricRowsTotal           = "wpml2pll_rows_total"
)

// Collector records migration steps and written rows in a private registry.
// It is safe for concurrent use.
type Collector struct {
	registry *prometheus.Registry

	steps      *prometheus.CounterVec
	failures   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	percentage *prometheus.GaugeVec
	rows       *prometheus.CounterVec
}

// New creates a collector with its own registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricStepsTotal,
			Help: "Migration steps processed, by stage.",
		}, []string{"stage"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricStepFailuresTotal,
			Help: "Migration steps that returned an error, by stage.",
		}, []string{"stage"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricStepDurationSeconds,
			Help:    "Duration of migration steps in seconds, by stage.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"stage"}),
		percentage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: MetricStagePercentage,
			Help: "Completion of each stage after its last step.",
		}, []string{"stage"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricRowsTotal,
			Help: "Rows written by the migration, by stage and kind.",
		}, []string{"stage", "kind"}),
	}

	c.registry.MustRegister(c.steps, c.failures, c.duration, c.percentage, c.rows)
	return c
}

// ObserveStep records one processed step.
func (c *Collector) ObserveStep(stage string, d time.Duration, pct int, err error) {
	c.duration.WithLabelValues(stage).Observe(d.Seconds())
	if err != nil {
		c.failures.WithLabelValues(stage).Inc()
		return
	}
	c.steps.WithLabelValues(stage).Inc()
	c.percentage.WithLabelValues(stage).Set(float64(pct))
}

// AddRows counts rows written by a stage.
func (c *Collector) AddRows(stage, kind string, n int) {
	if n <= 0 {
		return
	}
	c.rows.WithLabelValues(stage, kind).Add(float64(n))
}

// Registry returns the registry holding the migration metrics.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
