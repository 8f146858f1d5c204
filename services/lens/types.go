// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package lens

import (
	"github.com/AleutianAI/i18nlens/services/lens/annotate"
	"github.com/AleutianAI/i18nlens/services/lens/ast"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// Error codes.
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeMissingParameter    = "MISSING_PARAMETER"
	CodeUnsupportedLanguage = "UNSUPPORTED_LANGUAGE"
	CodeExtractFailed       = "EXTRACT_FAILED"
	CodeRateLimited         = "RATE_LIMITED"
)

// DocumentRequest identifies a source buffer and its grammar.
//
// The grammar is chosen from LanguageID when set, else from Path's
// extension, else from JSX. With none of them the buffer is plain TypeScript.
type DocumentRequest struct {
	Source     string `json:"source"`
	Path       string `json:"path,omitempty"`
	LanguageID string `json:"language_id,omitempty"`
	JSX        bool   `json:"jsx,omitempty"`

	// Optional per-request call shapes. When both are empty the workspace
	// settings apply.
	SimpleCallNames     []string            `json:"simple_call_names,omitempty"`
	ObjectPropertyCalls map[string][]string `json:"object_property_calls,omitempty"`
}

// AnnotationView is an annotation plus its UTF-16 positions for editor hosts.
type AnnotationView struct {
	annotate.Annotation
	StartUTF16 ast.Position `json:"start_utf16"`
	EndUTF16   ast.Position `json:"end_utf16"`
}

// AnnotateResponse is returned by POST /v1/lens/annotate.
type AnnotateResponse struct {
	Path        string           `json:"path,omitempty"`
	Variant     string           `json:"variant"`
	Annotations []AnnotationView `json:"annotations"`
}

// ExtractResponse is returned by POST /v1/lens/extract.
type ExtractResponse struct {
	Path      string         `json:"path,omitempty"`
	Variant   string         `json:"variant"`
	CallSites []ast.CallSite `json:"call_sites"`
}

// ResolveResponse is returned by GET /v1/lens/resolve.
type ResolveResponse struct {
	Key     string `json:"key"`
	Text    string `json:"text"`
	Found   bool   `json:"found"`
	Display string `json:"display"`
}

// HealthResponse is returned by GET /v1/lens/health.
type HealthResponse struct {
	Status            string   `json:"status"`
	DictionaryPaths   []string `json:"dictionary_paths"`
	DictionaryEntries int      `json:"dictionary_entries"`
	DisplayLanguage   string   `json:"display_language"`
}
