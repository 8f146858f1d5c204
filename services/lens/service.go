// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package lens exposes call-site annotation over HTTP and to the CLI.
//
// A Service ties together one workspace's settings, the extractor, the
// annotator and the workspace dictionary source. Handlers adapt it to gin.
package lens

import (
	"context"
	"log/slog"

	"github.com/AleutianAI/i18nlens/services/lens/annotate"
	"github.com/AleutianAI/i18nlens/services/lens/ast"
	"github.com/AleutianAI/i18nlens/services/lens/config"
	"github.com/AleutianAI/i18nlens/services/lens/locale"
)

// ServiceConfig configures a Service.
type ServiceConfig struct {
	// Workspace is the root that relative dictionary paths resolve against.
	Workspace string

	// Config holds the user settings. Nil uses config.Default().
	Config *config.Config

	// OnDictionaryChange, if set, runs after Source().Watch sees the
	// dictionary file change.
	OnDictionaryChange func()

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Service annotates documents for one workspace.
//
// Thread Safety: Safe for concurrent use.
type Service struct {
	workspace string
	cfg       *config.Config
	logger    *slog.Logger

	extractor *ast.Extractor
	annotator *annotate.Annotator
	source    *locale.Source
}

// NewService builds a Service from cfg.
func NewService(sc ServiceConfig) *Service {
	cfg := sc.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := sc.Logger
	if logger == nil {
		logger = slog.Default()
	}

	extractor := ast.NewExtractor(ast.WithLogger(logger))
	return &Service{
		workspace: sc.Workspace,
		cfg:       cfg,
		logger:    logger,
		extractor: extractor,
		annotator: annotate.NewAnnotator(
			annotate.WithExtractor(extractor),
			annotate.WithPatterns(cfg.CallPatterns()),
			annotate.WithFoldPolicy(cfg.FoldPolicy()),
			annotate.WithNotFoundText(cfg.NotFoundText),
			annotate.WithLogger(logger),
		),
		source: locale.NewSource(locale.SourceConfig{
			Workspace:       sc.Workspace,
			PathPattern:     cfg.LocaleFilePath,
			DisplayLanguage: cfg.DisplayLanguage,
			TTL:             cfg.CacheTTL,
			OnInvalidate:    sc.OnDictionaryChange,
			Logger:          logger,
		}),
	}
}

// Config returns the active settings.
func (s *Service) Config() *config.Config {
	return s.cfg
}

// Source returns the workspace dictionary source.
func (s *Service) Source() *locale.Source {
	return s.source
}

// Annotate annotates doc against the current workspace dictionary.
// Nil patterns use the configured ones.
func (s *Service) Annotate(ctx context.Context, doc annotate.Document, patterns *ast.CallPatterns) ([]annotate.Annotation, error) {
	dict := s.source.Dictionary(ctx)
	if patterns == nil {
		return s.annotator.Annotate(ctx, doc, dict)
	}
	return s.annotator.AnnotateWithPatterns(ctx, doc, dict, *patterns)
}

// AnnotateAll annotates docs concurrently against one dictionary snapshot.
func (s *Service) AnnotateAll(ctx context.Context, docs []annotate.Document, concurrency int) ([][]annotate.Annotation, error) {
	return s.annotator.AnnotateAll(ctx, docs, s.source.Dictionary(ctx), concurrency)
}

// Extract returns the raw call sites of doc. Nil patterns use the configured ones.
func (s *Service) Extract(ctx context.Context, doc annotate.Document, patterns *ast.CallPatterns) ([]ast.CallSite, error) {
	p := s.cfg.CallPatterns()
	if patterns != nil {
		p = *patterns
	}
	return s.extractor.Extract(ctx, doc.Source, doc.Variant, p)
}

// Resolve looks key up in the current workspace dictionary.
func (s *Service) Resolve(ctx context.Context, key string) locale.Resolution {
	return locale.Resolve(s.source.Dictionary(ctx), key)
}
