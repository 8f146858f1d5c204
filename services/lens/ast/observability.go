// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ast

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("lens.ast")

var (
	// extractDuration measures Extract latency including the parse.
	// Labels: variant (typescript, tsx), status (success, error)
	extractDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "lens",
		Subsystem: "ast",
		Name:      "extract_duration_seconds",
		Help:      "Duration of call-site extraction including parsing.",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"variant", "status"})

	// callSitesTotal counts emitted call sites.
	callSitesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lens",
		Subsystem: "ast",
		Name:      "call_sites_total",
		Help:      "Total call sites emitted by the extractor.",
	}, []string{"variant"})

	// syntaxErrorsTotal counts parses whose tree contained ERROR or MISSING nodes.
	syntaxErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lens",
		Subsystem: "ast",
		Name:      "syntax_errors_total",
		Help:      "Total parses that produced a tree with syntax errors.",
	}, []string{"variant"})
)

func startExtractSpan(ctx context.Context, variant Variant, size int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Extractor.Extract", trace.WithAttributes(
		attribute.String("variant", variant.String()),
		attribute.Int("source_bytes", size),
	))
}

func recordExtractMetrics(variant Variant, duration time.Duration, sites int, syntaxErrors bool, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	extractDuration.WithLabelValues(variant.String(), status).Observe(duration.Seconds())
	if sites > 0 {
		callSitesTotal.WithLabelValues(variant.String()).Add(float64(sites))
	}
	if syntaxErrors {
		syntaxErrorsTotal.WithLabelValues(variant.String()).Inc()
	}
}
