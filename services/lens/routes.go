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
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"
)

// RegisterRoutes registers the lens endpoints.
//
// Description:
//
//	Registers all /v1/lens/* endpoints with the given Gin router group.
//	The router group should already have any required middleware applied.
//
// Endpoints:
//
//	POST /v1/lens/annotate - Annotate a source buffer
//	POST /v1/lens/extract - List raw call sites
//	GET  /v1/lens/resolve - Resolve one key
//	GET  /v1/lens/health - Health check
//
// Example:
//
//	svc := lens.NewService(lens.ServiceConfig{Workspace: ws})
//	v1 := router.Group("/v1")
//	lens.RegisterRoutes(v1, lens.NewHandlers(svc))
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	lens := rg.Group("/lens")
	{
		lens.POST("/annotate", handlers.HandleAnnotate)
		lens.POST("/extract", handlers.HandleExtract)
		lens.GET("/resolve", handlers.HandleResolve)
		lens.GET("/health", handlers.HandleHealth)
	}
}

// RouterConfig configures NewRouter.
type RouterConfig struct {
	// ServiceName labels spans from the otelgin middleware.
	ServiceName string

	// RateLimit is the sustained requests per second. Zero disables limiting.
	RateLimit float64

	// Burst is the token bucket size.
	Burst int

	// AccessLog enables gin's request logger.
	AccessLog bool
}

// DefaultRouterConfig returns the settings used by "lens serve".
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		ServiceName: "i18nlens",
		RateLimit:   50,
		Burst:       100,
	}
}

// NewRouter builds the gin engine: recovery, tracing, request ids, metrics,
// rate limiting, /metrics and the /v1 API.
func NewRouter(svc *Service, rc RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(rc.ServiceName))
	if rc.AccessLog {
		router.Use(gin.Logger())
	}
	router.Use(RequestIDMiddleware(), MetricsMiddleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var limiter *rate.Limiter
	if rc.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(rc.RateLimit), rc.Burst)
	}
	v1 := router.Group("/v1", RateLimitMiddleware(limiter))
	RegisterRoutes(v1, NewHandlers(svc))
	return router
}
