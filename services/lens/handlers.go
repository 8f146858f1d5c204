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
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/AleutianAI/i18nlens/services/lens/annotate"
	"github.com/AleutianAI/i18nlens/services/lens/ast"
	"github.com/gin-gonic/gin"
)

// errUnsupportedLanguage is reported when a request names a non-TypeScript grammar.
var errUnsupportedLanguage = errors.New("unsupported language")

// Handlers serves the lens HTTP API.
type Handlers struct {
	svc *Service
}

// NewHandlers creates Handlers for svc.
func NewHandlers(svc *Service) *Handlers {
	return &Handlers{svc: svc}
}

// HandleAnnotate handles POST /v1/lens/annotate.
//
// Description:
//
//	Extracts the translation calls in the posted source and resolves each
//	key against the workspace dictionary.
//
// Response:
//
//	200 OK: AnnotateResponse
//	400 Bad Request: Malformed body or unsupported language
//	500 Internal Server Error: Extraction failed
func (h *Handlers) HandleAnnotate(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleAnnotate")

	req, doc, ok := bindDocument(c, requestID)
	if !ok {
		return
	}

	anns, err := h.svc.Annotate(c.Request.Context(), doc, requestPatterns(req))
	if err != nil {
		logger.Error("annotate failed", slog.String("path", doc.Path), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:     err.Error(),
			Code:      CodeExtractFailed,
			RequestID: requestID,
		})
		return
	}

	views := make([]AnnotationView, 0, len(anns))
	for _, a := range anns {
		start, end := annotate.UTF16Range(doc.Source, a.Range)
		views = append(views, AnnotationView{Annotation: a, StartUTF16: start, EndUTF16: end})
	}

	logger.Debug("annotated", slog.String("path", doc.Path), slog.Int("annotations", len(views)))
	c.JSON(http.StatusOK, AnnotateResponse{
		Path:        doc.Path,
		Variant:     doc.Variant.String(),
		Annotations: views,
	})
}

// HandleExtract handles POST /v1/lens/extract.
//
// Response:
//
//	200 OK: ExtractResponse
//	400 Bad Request: Malformed body or unsupported language
//	500 Internal Server Error: Extraction failed
func (h *Handlers) HandleExtract(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleExtract")

	req, doc, ok := bindDocument(c, requestID)
	if !ok {
		return
	}

	sites, err := h.svc.Extract(c.Request.Context(), doc, requestPatterns(req))
	if err != nil {
		logger.Error("extract failed", slog.String("path", doc.Path), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:     err.Error(),
			Code:      CodeExtractFailed,
			RequestID: requestID,
		})
		return
	}

	c.JSON(http.StatusOK, ExtractResponse{
		Path:      doc.Path,
		Variant:   doc.Variant.String(),
		CallSites: sites,
	})
}

// HandleResolve handles GET /v1/lens/resolve?key=.
//
// Response:
//
//	200 OK: ResolveResponse (found or not)
//	400 Bad Request: Missing key
func (h *Handlers) HandleResolve(c *gin.Context) {
	requestID := getOrCreateRequestID(c)

	key, ok := c.GetQuery("key")
	if !ok || key == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:     "key parameter is required",
			Code:      CodeMissingParameter,
			RequestID: requestID,
		})
		return
	}

	res := h.svc.Resolve(c.Request.Context(), key)
	c.JSON(http.StatusOK, ResolveResponse{
		Key:     res.Key,
		Text:    res.Text,
		Found:   res.Found,
		Display: res.Display(h.svc.Config().NotFoundText),
	})
}

// HandleHealth handles GET /v1/lens/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	dict := h.svc.Source().Dictionary(c.Request.Context())
	c.JSON(http.StatusOK, HealthResponse{
		Status:            "healthy",
		DictionaryPaths:   h.svc.Source().Paths(),
		DictionaryEntries: len(dict),
		DisplayLanguage:   h.svc.Config().DisplayLanguage,
	})
}

// bindDocument decodes a DocumentRequest and picks its grammar. On failure
// it writes the 400 response and returns false.
func bindDocument(c *gin.Context, requestID string) (DocumentRequest, annotate.Document, bool) {
	var req DocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:     fmt.Sprintf("invalid request body: %v", err),
			Code:      CodeInvalidRequest,
			RequestID: requestID,
		})
		return req, annotate.Document{}, false
	}

	variant, err := requestVariant(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:     err.Error(),
			Code:      CodeUnsupportedLanguage,
			RequestID: requestID,
		})
		return req, annotate.Document{}, false
	}

	return req, annotate.Document{Path: req.Path, Source: []byte(req.Source), Variant: variant}, true
}

func requestVariant(req DocumentRequest) (ast.Variant, error) {
	if req.LanguageID != "" {
		if v, ok := ast.VariantForLanguageID(req.LanguageID); ok {
			return v, nil
		}
		return 0, fmt.Errorf("%w: language_id %q", errUnsupportedLanguage, req.LanguageID)
	}
	if req.Path != "" {
		if v, ok := ast.VariantForPath(req.Path); ok {
			return v, nil
		}
		return 0, fmt.Errorf("%w: path %q", errUnsupportedLanguage, req.Path)
	}
	return ast.VariantFromJSX(req.JSX), nil
}

func requestPatterns(req DocumentRequest) *ast.CallPatterns {
	if len(req.SimpleCallNames) == 0 && len(req.ObjectPropertyCalls) == 0 {
		return nil
	}
	return &ast.CallPatterns{
		SimpleNames:     req.SimpleCallNames,
		NamespacedCalls: req.ObjectPropertyCalls,
	}
}
