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
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
)

const (
	// LocalePlaceholder is replaced with the display language in a path pattern.
	LocalePlaceholder = "{locale}"

	// DefaultPathPattern is the workspace-relative dictionary location.
	DefaultPathPattern = "src/locales/{locale}.json"

	// DefaultDisplayLanguage fills LocalePlaceholder when no language is configured.
	DefaultDisplayLanguage = "ja"
)

// CandidatePaths expands a dictionary path pattern into the files to try, in order.
//
// Description:
//
//	The first occurrence of LocalePlaceholder is replaced with displayLanguage
//	and the result is resolved against workspace (absolute patterns are kept).
//	When displayLanguage carries a region or script ("pt-BR", "zh_Hant"), the
//	same pattern with the base language ("pt", "zh") follows as a fallback.
//
// Inputs:
//   - workspace: Workspace root. Relative patterns resolve against it.
//   - pattern: Path pattern. Empty uses DefaultPathPattern.
//   - displayLanguage: Locale code. Empty uses DefaultDisplayLanguage.
//
// Outputs:
//   - []string: One or two cleaned paths. Never empty.
func CandidatePaths(workspace, pattern, displayLanguage string) []string {
	if pattern == "" {
		pattern = DefaultPathPattern
	}
	if !strings.Contains(pattern, LocalePlaceholder) {
		return []string{resolveAgainst(workspace, pattern)}
	}
	if displayLanguage == "" {
		displayLanguage = DefaultDisplayLanguage
	}

	paths := []string{resolveAgainst(workspace, strings.Replace(pattern, LocalePlaceholder, displayLanguage, 1))}
	if base, ok := baseLanguage(displayLanguage); ok {
		paths = append(paths, resolveAgainst(workspace, strings.Replace(pattern, LocalePlaceholder, base, 1)))
	}
	return paths
}

func resolveAgainst(workspace, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(workspace, path)
}

// baseLanguage returns the base language subtag of code when it differs from code.
func baseLanguage(code string) (string, bool) {
	tag, err := language.Parse(strings.ReplaceAll(code, "_", "-"))
	if err != nil {
		return "", false
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return "", false
	}
	if b := base.String(); !strings.EqualFold(b, code) {
		return b, true
	}
	return "", false
}
