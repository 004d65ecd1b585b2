// Package metrics exposes Prometheus instruments for the polling and
// highlighting pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Poll outcomes.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

var (
	// pollsTotal counts completed polls.
	// Labels: stream, outcome (ok, failed)
	pollsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tablero",
		Subsystem: "feed",
		Name:      "polls_total",
		Help:      "Total polls by stream and outcome",
	}, []string{"stream", "outcome"})

	// pollDuration measures wall time per poll, including retries.
	pollDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tablero",
		Subsystem: "feed",
		Name:      "poll_duration_seconds",
		Help:      "Poll latency in seconds",
		Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"stream"})

	// rowsGauge holds the row count of the latest snapshot.
	rowsGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "tablero",
		Subsystem: "feed",
		Name:      "rows",
		Help:      "Rows in the latest snapshot",
	}, []string{"stream"})

	// highlightCells counts tagged cells.
	// Labels: stream, tag (increase, decrease)
	highlightCells = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tablero",
		Subsystem: "highlight",
		Name:      "cells_total",
		Help:      "Total highlighted cells by stream and direction",
	}, []string{"stream", "tag"})

	// expiries counts StyleMaps cleared by their own timer.
	expiries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tablero",
		Subsystem: "highlight",
		Name:      "expiries_total",
		Help:      "Total highlight windows that ran to completion",
	}, []string{"stream"})

	// wsClients tracks connected websocket subscribers.
	wsClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "tablero",
		Subsystem: "http",
		Name:      "ws_clients",
		Help:      "Connected websocket clients",
	})
)

// ObservePoll records one poll.
func ObservePoll(stream string, ok bool, rows int, d time.Duration) {
	outcome := OutcomeOK
	if !ok {
		outcome = OutcomeFailed
	}
	pollsTotal.WithLabelValues(stream, outcome).Inc()
	pollDuration.WithLabelValues(stream).Observe(d.Seconds())
	rowsGauge.WithLabelValues(stream).Set(float64(rows))
}

// ObserveHighlights records the tagged cells of one diff.
func ObserveHighlights(stream string, increased, decreased int) {
	if increased > 0 {
		highlightCells.WithLabelValues(stream, "increase").Add(float64(increased))
	}
	if decreased > 0 {
		highlightCells.WithLabelValues(stream, "decrease").Add(float64(decreased))
	}
}

// ObserveExpiry records a highlight window that was not superseded.
func ObserveExpiry(stream string) {
	expiries.WithLabelValues(stream).Inc()
}

// WSConnected adjusts the websocket client gauge by delta.
func WSConnected(delta int) {
	wsClients.Add(float64(delta))
}
