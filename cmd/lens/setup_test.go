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
	"os"
	"path/filepath"
	"testing"

	"github.com/AleutianAI/i18nlens/services/lens/ast"
)

// withGlobals sets the persistent flag values for one test.
func withGlobals(t *testing.T, ws, cfg, lang string) {
	t.Helper()
	oldWS, oldCfg, oldLang := workspace, configPath, displayLang
	workspace, configPath, displayLang = ws, cfg, lang
	t.Cleanup(func() {
		workspace, configPath, displayLang = oldWS, oldCfg, oldLang
	})
}

func TestLoadConfig_WorkspaceFileAndFlagOverride(t *testing.T) {
	ws := t.TempDir()
	if err := os.WriteFile(filepath.Join(ws, ".i18nlens.yaml"), []byte("display_language: fr\nfold: first\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	withGlobals(t, ws, "", "")
	cfg, err := loadConfig(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DisplayLanguage != "fr" || cfg.Fold != "first" {
		t.Errorf("unexpected config %+v", cfg)
	}

	withGlobals(t, ws, "", "ko")
	cfg, err = loadConfig(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DisplayLanguage != "ko" {
		t.Errorf("DisplayLanguage = %q, want flag value ko", cfg.DisplayLanguage)
	}
}

func TestLoadConfig_ExplicitPathInvalid(t *testing.T) {
	ws := t.TempDir()
	path := filepath.Join(ws, "custom.yaml")
	if err := os.WriteFile(path, []byte("fold: nope\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	withGlobals(t, ws, path, "")
	if _, err := loadConfig(context.Background()); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestNewService_ResolvesWorkspaceDictionary(t *testing.T) {
	ws := t.TempDir()
	dir := filepath.Join(ws, "src", "locales")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "ja.json"), []byte(`{"greeting": "こんにちは"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	withGlobals(t, ws, "", "")
	svc, err := newService(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res := svc.Resolve(context.Background(), "greeting"); res.Text != "こんにちは" {
		t.Errorf("Resolve = %+v", res)
	}
}

func TestReadDocuments(t *testing.T) {
	dir := t.TempDir()
	ts := filepath.Join(dir, "a.ts")
	tsx := filepath.Join(dir, "b.tsx")
	md := filepath.Join(dir, "c.md")
	for _, p := range []string{ts, tsx, md} {
		if err := os.WriteFile(p, []byte(`t("k")`), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	docs, err := readDocuments([]string{ts, md, tsx})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].Variant != ast.VariantTypeScript || docs[1].Variant != ast.VariantTSX {
		t.Errorf("unexpected variants %v %v", docs[0].Variant, docs[1].Variant)
	}

	if _, err := readDocuments([]string{filepath.Join(dir, "missing.ts")}); err == nil {
		t.Error("expected error for missing file")
	}
}
