// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package annotate

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("lens.annotate")

var (
	// annotateDuration tracks end-to-end annotation time per document.
	annotateDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "lens",
		Subsystem: "annotate",
		Name:      "duration_seconds",
		Help:      "Time to annotate one document.",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})

	// annotationsTotal counts emitted annotations.
	// Labels: found (true, false)
	annotationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lens",
		Subsystem: "annotate",
		Name:      "annotations_total",
		Help:      "Total annotations emitted by resolution outcome.",
	}, []string{"found"})
)

func recordAnnotate(annotations []Annotation, duration time.Duration) {
	annotateDuration.Observe(duration.Seconds())
	var found, missing int
	for _, a := range annotations {
		if a.Found {
			found++
		} else {
			missing++
		}
	}
	if found > 0 {
		annotationsTotal.WithLabelValues("true").Add(float64(found))
	}
	if missing > 0 {
		annotationsTotal.WithLabelValues("false").Add(float64(missing))
	}
}
