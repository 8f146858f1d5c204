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
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/AleutianAI/i18nlens/services/lens"
	"github.com/AleutianAI/i18nlens/services/lens/annotate"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <files...>",
	Short: "Re-annotate files whenever they or the dictionary change",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 150*time.Millisecond, "Quiet period before re-annotating a changed file")
}

// watcher re-renders annotations for a fixed set of files.
type watcher struct {
	svc      *lens.Service
	renderer *annotate.Renderer
	debounce time.Duration

	mu     sync.Mutex
	files  map[string]struct{}
	timers map[string]*time.Timer
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := newWatcher(args, watchDebounce)
	if err != nil {
		return err
	}

	svc, err := newService(ctx, w.dictionaryChanged(ctx))
	if err != nil {
		return err
	}
	w.svc = svc
	w.renderer = annotate.NewRenderer(os.Stdout, annotate.WithPrefix(svc.Config().Prefix))

	w.renderAll(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return svc.Source().Watch(gctx) })
	g.Go(func() error { return w.watchFiles(gctx) })
	return g.Wait()
}

// newWatcher tracks the absolute form of each path. The service and
// renderer are attached by the caller.
func newWatcher(paths []string, debounce time.Duration) (*watcher, error) {
	w := &watcher{
		debounce: debounce,
		files:    make(map[string]struct{}, len(paths)),
		timers:   make(map[string]*time.Timer),
	}
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", path, err)
		}
		w.files[abs] = struct{}{}
	}
	return w, nil
}

// dictionaryChanged returns the hook the dictionary source calls after an
// invalidation. Every tracked file is re-rendered against the new entries.
func (w *watcher) dictionaryChanged(ctx context.Context) func() {
	return func() { w.renderAll(ctx) }
}

func (w *watcher) watchFiles(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer fw.Close()

	dirs := make(map[string]struct{})
	for path := range w.files {
		dirs[filepath.Dir(path)] = struct{}{}
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	slog.Info("watching files", slog.Int("files", len(w.files)))

	for {
		select {
		case <-ctx.Done():
			w.stopTimers()
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if _, tracked := w.files[filepath.Clean(event.Name)]; tracked {
				w.schedule(ctx, filepath.Clean(event.Name))
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("file watcher error", slog.String("error", err.Error()))
		}
	}
}

// schedule re-renders path once no further events arrive within the debounce window.
func (w *watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.render(ctx, path)
	})
}

func (w *watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
}

func (w *watcher) renderAll(ctx context.Context) {
	for path := range w.files {
		w.render(ctx, path)
	}
}

func (w *watcher) render(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}
	docs, err := readDocuments([]string{path})
	if err != nil {
		slog.Warn("cannot read file", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	if len(docs) == 0 {
		return
	}

	anns, err := w.svc.Annotate(ctx, docs[0], nil)
	if err != nil {
		slog.Warn("annotate failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.renderer.Render(path, anns); err != nil {
		slog.Warn("render failed", slog.String("error", err.Error()))
	}
}
