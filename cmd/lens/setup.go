// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/AleutianAI/i18nlens/services/lens"
	"github.com/AleutianAI/i18nlens/services/lens/annotate"
	"github.com/AleutianAI/i18nlens/services/lens/config"
)

// loadConfig reads the settings file and applies environment and flag overrides.
func loadConfig(ctx context.Context) (*config.Config, error) {
	path := configPath
	if path == "" {
		path = filepath.Join(workspace, config.DefaultFileName)
	}

	cfg, err := config.LoadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if displayLang != "" {
		cfg.DisplayLanguage = displayLang
	}
	return cfg, nil
}

// newService builds the lens service for the current workspace.
func newService(ctx context.Context, onDictionaryChange func()) (*lens.Service, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	svc := lens.NewService(lens.ServiceConfig{
		Workspace:          workspace,
		Config:             cfg,
		OnDictionaryChange: onDictionaryChange,
		Logger:             slog.Default(),
	})
	slog.Debug("lens ready",
		slog.String("workspace", workspace),
		slog.String("display_language", cfg.DisplayLanguage),
		slog.Any("dictionary_paths", svc.Source().Paths()),
	)
	return svc, nil
}

// readDocuments loads the TypeScript files among paths. Other files are
// skipped with a warning.
func readDocuments(paths []string) ([]annotate.Document, error) {
	docs := make([]annotate.Document, 0, len(paths))
	for _, path := range paths {
		source, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		doc, ok := annotate.NewDocument(path, source)
		if !ok {
			slog.Warn("skipping non-TypeScript file", slog.String("path", path))
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
