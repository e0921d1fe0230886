// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func family(t *testing.T, c *Collector, name string) *dto.MetricFamily {
	t.Helper()
	families, err := c.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	return nil
}

func labelled(f *dto.MetricFamily, labels map[string]string) *dto.Metric {
	if f == nil {
		return nil
	}
	for _, m := range f.GetMetric() {
		matched := 0
		for _, lp := range m.GetLabel() {
			if v, ok := labels[lp.GetName()]; ok && v == lp.GetValue() {
				matched++
			}
		}
		if matched == len(labels) {
			return m
		}
	}
	return nil
}

func TestObserveStep(t *testing.T) {
	c := New()
	c.ObserveStep("process_posts", 200*time.Millisecond, 40, nil)
	c.ObserveStep("process_posts", 300*time.Millisecond, 80, nil)
	c.ObserveStep("process_posts", time.Second, 0, errors.New("boom"))

	steps := labelled(family(t, c, MetricStepsTotal), map[string]string{"stage": "process_posts"})
	require.NotNil(t, steps)
	assert.Equal(t, 2.0, steps.GetCounter().GetValue())

	failures := labelled(family(t, c, MetricStepFailuresTotal), map[string]string{"stage": "process_posts"})
	require.NotNil(t, failures)
	assert.Equal(t, 1.0, failures.GetCounter().GetValue())

	pct := labelled(family(t, c, MetricStagePercentage), map[string]string{"stage": "process_posts"})
	require.NotNil(t, pct)
	assert.Equal(t, 80.0, pct.GetGauge().GetValue())

	hist := family(t, c, MetricStepDurationSeconds)
	require.NotNil(t, hist)
	assert.Equal(t, dto.MetricType_HISTOGRAM, hist.GetType())
	assert.Equal(t, uint64(3), labelled(hist, map[string]string{"stage": "process_posts"}).GetHistogram().GetSampleCount())
}

func TestAddRows(t *testing.T) {
	c := New()
	c.AddRows("process_terms", "language_relations", 10)
	c.AddRows("process_terms", "language_relations", 5)
	c.AddRows("process_terms", "translation_relations", 0)

	f := family(t, c, MetricRowsTotal)
	require.NotNil(t, f)
	assert.Len(t, f.GetMetric(), 1)
	m := labelled(f, map[string]string{"stage": "process_terms", "kind": "language_relations"})
	require.NotNil(t, m)
	assert.Equal(t, 15.0, m.GetCounter().GetValue())
}

func TestHandler(t *testing.T) {
	c := New()
	c.ObserveStep("create_languages", time.Millisecond, 100, nil)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `wpml2pll_steps_total{stage="create_languages"} 1`)
}
