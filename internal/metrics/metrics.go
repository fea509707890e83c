/*
 * metrics/metrics.go, part of stitch.
 *
 * Copyright 2024 Raul Mera <rauldotmeraatusachdotcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

// Package metrics keeps the counters of one stitching run in a private
// Prometheus registry, and writes them in the text exposition format, for
// node_exporter's textfile collector or similar.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the counters and gauges of a run.
type Metrics struct {
	registry         *prometheus.Registry
	segmentsLoaded   prometheus.Counter
	framesAssembled  prometheus.Counter
	failures         *prometheus.CounterVec
	traceLength      prometheus.Gauge
	durationSeconds  prometheus.Gauge
	lastSuccessStamp prometheus.Gauge
}

// New creates and registers the metrics of a run.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	segmentsLoaded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stitch_segments_loaded_total",
		Help: "Number of segments read while assembling",
	})
	framesAssembled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stitch_frames_assembled_total",
		Help: "Number of frames in the assembled trajectory",
	})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stitch_failures_total",
		Help: "Number of failed runs, by kind of failure",
	}, []string{"kind"})
	traceLength := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "stitch_trace_breakpoints",
		Help: "Number of breakpoints in the trace",
	})
	durationSeconds := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "stitch_run_duration_seconds",
		Help: "Wall time of the run",
	})
	lastSuccessStamp := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "stitch_last_success_timestamp_seconds",
		Help: "Unix time of the end of the run, if it succeeded",
	})
	registry.MustRegister(
		segmentsLoaded,
		framesAssembled,
		failures,
		traceLength,
		durationSeconds,
		lastSuccessStamp,
	)
	return &Metrics{
		registry:         registry,
		segmentsLoaded:   segmentsLoaded,
		framesAssembled:  framesAssembled,
		failures:         failures,
		traceLength:      traceLength,
		durationSeconds:  durationSeconds,
		lastSuccessStamp: lastSuccessStamp,
	}
}

// AddSegment counts a segment read, with the frames it contributed.
func (m *Metrics) AddSegment(frames int) {
	m.segmentsLoaded.Inc()
	m.framesAssembled.Add(float64(frames))
}

// SetTraceLength sets the number of breakpoints in the trace.
func (m *Metrics) SetTraceLength(n int) {
	m.traceLength.Set(float64(n))
}

// Failure counts a failed run of the given kind.
func (m *Metrics) Failure(kind string) {
	m.failures.WithLabelValues(kind).Inc()
}

// Done records the duration of a run that started at start, and,
// if ok, the time it finished.
func (m *Metrics) Done(start time.Time, ok bool) {
	now := time.Now()
	m.durationSeconds.Set(now.Sub(start).Seconds())
	if ok {
		m.lastSuccessStamp.Set(float64(now.Unix()))
	}
}

// WriteTextfile writes the metrics to the file name, in the Prometheus text format.
// The file is written to a temporary file and renamed into place.
func (m *Metrics) WriteTextfile(name string) error {
	return prometheus.WriteToTextfile(name, m.registry)
}
