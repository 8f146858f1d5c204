// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package annotate composes call-site extraction with key resolution.
//
// An Annotator turns one source document plus one dictionary into the
// annotations a host renders next to each translation call. It holds no
// state between calls; the dictionary is supplied by the caller.
package annotate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AleutianAI/i18nlens/services/lens/ast"
	"github.com/AleutianAI/i18nlens/services/lens/locale"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// JoinSeparator separates resolved texts under FoldJoin.
const JoinSeparator = " / "

// ErrUnknownFoldPolicy is returned by ParseFoldPolicy.
var ErrUnknownFoldPolicy = errors.New("unknown fold policy")

// FoldPolicy controls how a call site with several candidate keys becomes annotations.
type FoldPolicy int

const (
	// FoldEach emits one annotation per key, all anchored to the call's range.
	FoldEach FoldPolicy = iota

	// FoldFirst emits one annotation for the first key only.
	FoldFirst

	// FoldJoin emits one annotation whose text joins every key's display text.
	FoldJoin
)

// String returns the configuration spelling of the policy.
func (p FoldPolicy) String() string {
	switch p {
	case FoldFirst:
		return "first"
	case FoldJoin:
		return "join"
	default:
		return "each"
	}
}

// ParseFoldPolicy parses "each", "first" or "join". Empty means FoldEach.
func ParseFoldPolicy(s string) (FoldPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "each":
		return FoldEach, nil
	case "first":
		return FoldFirst, nil
	case "join":
		return FoldJoin, nil
	default:
		return FoldEach, fmt.Errorf("%w: %q", ErrUnknownFoldPolicy, s)
	}
}

// Annotation is one piece of decoration text anchored to a call site.
type Annotation struct {
	// Range is the byte range of the whole call expression.
	Range ast.Range `json:"range"`

	// Start and End are the zero-based row/byte-column of Range.
	Start ast.Position `json:"start"`
	End   ast.Position `json:"end"`

	// Callee is the matched callee name, e.g. "t" or "i18n.t".
	Callee string `json:"callee"`

	// Key is the resolved key. Under FoldJoin it is the first key and Keys
	// carries all of them.
	Key  string   `json:"key"`
	Keys []string `json:"keys,omitempty"`

	// Text is what the host displays: the translation, or the not-found text.
	Text string `json:"text"`

	// Found reports whether Key resolved. Under FoldJoin it reports whether
	// every key resolved.
	Found bool `json:"found"`
}

// Document is one source buffer to annotate.
type Document struct {
	Path    string
	Source  []byte
	Variant ast.Variant
}

// NewDocument builds a Document, choosing the grammar from the file extension.
// It returns false when path is not a TypeScript file.
func NewDocument(path string, source []byte) (Document, bool) {
	variant, ok := ast.VariantForPath(path)
	if !ok {
		return Document{}, false
	}
	return Document{Path: path, Source: source, Variant: variant}, true
}

// Extractor finds call sites. *ast.Extractor satisfies it.
type Extractor interface {
	Extract(ctx context.Context, source []byte, variant ast.Variant, patterns ast.CallPatterns) ([]ast.CallSite, error)
}

// Option configures an Annotator.
type Option func(*Annotator)

// WithExtractor replaces the default tree-sitter extractor.
func WithExtractor(e Extractor) Option {
	return func(a *Annotator) {
		if e != nil {
			a.extractor = e
		}
	}
}

// WithPatterns sets the recognized call shapes.
func WithPatterns(p ast.CallPatterns) Option {
	return func(a *Annotator) {
		a.patterns = p
	}
}

// WithFoldPolicy sets how multi-key call sites are folded.
func WithFoldPolicy(p FoldPolicy) Option {
	return func(a *Annotator) {
		a.policy = p
	}
}

// WithNotFoundText sets the text shown for unresolved keys.
func WithNotFoundText(text string) Option {
	return func(a *Annotator) {
		if text != "" {
			a.notFound = text
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Annotator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// Annotator joins extraction and resolution.
//
// Thread Safety: Safe for concurrent use after construction.
type Annotator struct {
	extractor Extractor
	patterns  ast.CallPatterns
	policy    FoldPolicy
	notFound  string
	logger    *slog.Logger
}

// NewAnnotator creates an Annotator.
//
// Defaults: tree-sitter extraction, the simple call name "t", FoldEach, and
// locale.NotFoundText for unresolved keys.
func NewAnnotator(opts ...Option) *Annotator {
	a := &Annotator{
		patterns: ast.DefaultCallPatterns(),
		policy:   FoldEach,
		notFound: locale.NotFoundText,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.extractor == nil {
		a.extractor = ast.NewExtractor(ast.WithLogger(a.logger))
	}
	return a
}

// Patterns returns the configured call patterns.
func (a *Annotator) Patterns() ast.CallPatterns {
	return a.patterns
}

// Annotate extracts the call sites of doc and resolves their keys against dict.
//
// Description:
//
//	Annotations are returned in the extractor's order (pre-order over the
//	syntax tree). Call sites without keys produce nothing. The dictionary is
//	read, never written.
//
// Inputs:
//   - ctx: Cancellation and tracing.
//   - doc: The source and its grammar.
//   - dict: The active dictionary. Nil behaves as empty.
//
// Outputs:
//   - []Annotation: Never nil on success.
//   - error: Non-nil only when extraction fails (cancellation, unknown variant).
func (a *Annotator) Annotate(ctx context.Context, doc Document, dict locale.Dictionary) ([]Annotation, error) {
	return a.AnnotateWithPatterns(ctx, doc, dict, a.patterns)
}

// AnnotateWithPatterns is Annotate with per-call patterns.
func (a *Annotator) AnnotateWithPatterns(ctx context.Context, doc Document, dict locale.Dictionary, patterns ast.CallPatterns) ([]Annotation, error) {
	ctx, span := tracer.Start(ctx, "annotate.Annotate")
	defer span.End()
	span.SetAttributes(
		attribute.String("path", doc.Path),
		attribute.String("variant", doc.Variant.String()),
		attribute.String("fold", a.policy.String()),
	)

	start := time.Now()
	sites, err := a.extractor.Extract(ctx, doc.Source, doc.Variant, patterns)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("annotate %s: %w", doc.Path, err)
	}

	out := make([]Annotation, 0, len(sites))
	for _, site := range sites {
		out = a.fold(out, site, dict)
	}
	recordAnnotate(out, time.Since(start))

	span.SetAttributes(
		attribute.Int("call_sites", len(sites)),
		attribute.Int("annotations", len(out)),
	)
	a.logger.Debug("annotated document",
		slog.String("path", doc.Path),
		slog.Int("call_sites", len(sites)),
		slog.Int("annotations", len(out)),
	)
	return out, nil
}

func (a *Annotator) fold(out []Annotation, site ast.CallSite, dict locale.Dictionary) []Annotation {
	if len(site.Keys) == 0 {
		return out
	}

	switch a.policy {
	case FoldFirst:
		return append(out, a.single(site, locale.Resolve(dict, site.Keys[0])))

	case FoldJoin:
		texts := make([]string, 0, len(site.Keys))
		allFound := true
		for _, key := range site.Keys {
			res := locale.Resolve(dict, key)
			allFound = allFound && res.Found
			texts = append(texts, res.Display(a.notFound))
		}
		ann := a.single(site, locale.Resolution{Key: site.Keys[0], Found: allFound})
		ann.Keys = append([]string(nil), site.Keys...)
		ann.Text = strings.Join(texts, JoinSeparator)
		return append(out, ann)

	default:
		for _, key := range site.Keys {
			out = append(out, a.single(site, locale.Resolve(dict, key)))
		}
		return out
	}
}

func (a *Annotator) single(site ast.CallSite, res locale.Resolution) Annotation {
	return Annotation{
		Range:  site.Range,
		Start:  site.Start,
		End:    site.End,
		Callee: site.Callee,
		Key:    res.Key,
		Text:   res.Display(a.notFound),
		Found:  res.Found,
	}
}
