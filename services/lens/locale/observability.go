// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package locale

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("lens.locale")

var (
	// lookupsTotal counts key resolutions.
	// Labels: result (found, missing)
	lookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lens",
		Subsystem: "locale",
		Name:      "lookups_total",
		Help:      "Total key resolutions by result.",
	}, []string{"result"})

	// loadsTotal counts dictionary loads.
	// Labels: format (json, yaml, po), status (success, error)
	loadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lens",
		Subsystem: "locale",
		Name:      "loads_total",
		Help:      "Total dictionary loads by format and status.",
	}, []string{"format", "status"})

	// dictionaryEntries reports the size of the most recently loaded dictionary.
	dictionaryEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "lens",
		Subsystem: "locale",
		Name:      "dictionary_entries",
		Help:      "Number of entries in the most recently loaded dictionary.",
	})
)

func recordLookup(found bool) {
	if found {
		lookupsTotal.WithLabelValues("found").Inc()
		return
	}
	lookupsTotal.WithLabelValues("missing").Inc()
}

func recordLoad(format Format, entries int, err error) {
	if err != nil {
		loadsTotal.WithLabelValues(format.String(), "error").Inc()
		return
	}
	loadsTotal.WithLabelValues(format.String(), "success").Inc()
	dictionaryEntries.Set(float64(entries))
}
