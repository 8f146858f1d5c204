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
	"context"

	"github.com/AleutianAI/i18nlens/services/lens/locale"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds AnnotateAll when the caller passes zero.
const DefaultConcurrency = 4

// AnnotateAll annotates docs in parallel against one dictionary.
//
// Description:
//
//	Results are positionally aligned with docs. The first extraction error
//	cancels the remaining work and is returned; partial results are
//	discarded.
//
// Inputs:
//   - concurrency: Maximum documents in flight. Values below 1 use DefaultConcurrency.
func (a *Annotator) AnnotateAll(ctx context.Context, docs []Document, dict locale.Dictionary, concurrency int) ([][]Annotation, error) {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}

	results := make([][]Annotation, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, doc := range docs {
		g.Go(func() error {
			anns, err := a.Annotate(gctx, doc, dict)
			if err != nil {
				return err
			}
			results[i] = anns
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
