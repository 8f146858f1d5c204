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
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AleutianAI/i18nlens/services/lens"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var (
	servePort      int
	serveRateLimit float64
	serveBurst     int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the annotation API over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	defaults := lens.DefaultRouterConfig()
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "Port to listen on")
	serveCmd.Flags().Float64Var(&serveRateLimit, "rate-limit", defaults.RateLimit, "Sustained requests per second (0 disables)")
	serveCmd.Flags().IntVar(&serveBurst, "burst", defaults.Burst, "Rate limiter burst size")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	svc, err := newService(ctx, nil)
	if err != nil {
		return err
	}

	rc := lens.DefaultRouterConfig()
	rc.RateLimit = serveRateLimit
	rc.Burst = serveBurst
	rc.AccessLog = debug

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", servePort),
		Handler:           lens.NewRouter(svc, rc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting lens server",
			slog.String("address", srv.Addr),
			slog.String("workspace", workspace),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return svc.Source().Watch(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down lens server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
