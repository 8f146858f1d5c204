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
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// SourceConfig configures a Source.
type SourceConfig struct {
	// Workspace is the root relative dictionary paths resolve against.
	Workspace string

	// PathPattern is the dictionary path, optionally containing LocalePlaceholder.
	PathPattern string

	// DisplayLanguage substitutes LocalePlaceholder.
	DisplayLanguage string

	// TTL is how long a loaded dictionary is served before reloading.
	// Zero or negative reloads on every call.
	TTL time.Duration

	// OnInvalidate, if set, is called after a watched dictionary file changes.
	OnInvalidate func()

	// Logger receives load and watch diagnostics. Nil uses slog.Default().
	Logger *slog.Logger
}

// Source supplies the dictionary for one workspace and locale.
//
// Description:
//
//	Source owns the short-lived cache between the file system and the
//	resolver. Every failure to read or parse the file degrades to an empty
//	Dictionary, so callers never see why a dictionary is empty. The cache is
//	dropped when TTL expires or when Watch sees the file change.
//
// Thread Safety: Safe for concurrent use.
type Source struct {
	cfg    SourceConfig
	paths  []string
	logger *slog.Logger
	now    func() time.Time

	mu       sync.RWMutex
	dict     Dictionary
	loadedAt time.Time
	loaded   bool
}

// NewSource creates a Source. Nothing is read until Dictionary is called.
func NewSource(cfg SourceConfig) *Source {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{
		cfg:    cfg,
		paths:  CandidatePaths(cfg.Workspace, cfg.PathPattern, cfg.DisplayLanguage),
		logger: logger,
		now:    time.Now,
	}
}

// Paths returns the candidate dictionary files in the order they are tried.
func (s *Source) Paths() []string {
	out := make([]string, len(s.paths))
	copy(out, s.paths)
	return out
}

// Dictionary returns the current dictionary, reloading it when stale.
// The returned map must not be mutated.
func (s *Source) Dictionary(ctx context.Context) Dictionary {
	s.mu.RLock()
	if s.freshLocked() {
		dict := s.dict
		s.mu.RUnlock()
		return dict
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.freshLocked() {
		return s.dict
	}

	s.dict = s.load(ctx)
	s.loadedAt = s.now()
	s.loaded = true
	return s.dict
}

// Invalidate drops the cached dictionary so the next call reloads it.
func (s *Source) Invalidate() {
	s.mu.Lock()
	s.loaded = false
	s.dict = nil
	s.mu.Unlock()
}

func (s *Source) freshLocked() bool {
	return s.loaded && s.cfg.TTL > 0 && s.now().Sub(s.loadedAt) < s.cfg.TTL
}

// load tries each candidate in order. A missing file moves on to the next
// candidate; any other failure ends the search with an empty dictionary.
func (s *Source) load(ctx context.Context) Dictionary {
	for _, path := range s.paths {
		dict, err := Load(ctx, path)
		if err == nil {
			s.logger.Debug("dictionary loaded",
				slog.String("path", path),
				slog.Int("entries", len(dict)),
			)
			return dict
		}
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		s.logger.Warn("dictionary unavailable, using empty dictionary",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return Dictionary{}
	}

	s.logger.Warn("no dictionary file found, using empty dictionary",
		slog.Any("paths", s.paths),
	)
	return Dictionary{}
}

// Watch invalidates the cache whenever a candidate dictionary file changes.
//
// Description:
//
//	Watch observes the directories holding the candidate files, since
//	editors often replace a file rather than write it in place. Directories
//	that do not exist are skipped. Watch blocks until ctx ends.
//
// Outputs:
//   - error: Non-nil only if the watcher cannot be created.
func (s *Source) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create dictionary watcher: %w", err)
	}
	defer watcher.Close()

	watched := make(map[string]struct{})
	for _, path := range s.paths {
		dir := filepath.Dir(path)
		if _, ok := watched[dir]; ok {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			s.logger.Debug("cannot watch dictionary directory",
				slog.String("dir", dir),
				slog.String("error", err.Error()),
			)
			continue
		}
		watched[dir] = struct{}{}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !s.isCandidate(event.Name) {
				continue
			}
			s.logger.Debug("dictionary changed",
				slog.String("path", event.Name),
				slog.String("op", event.Op.String()),
			)
			s.Invalidate()
			if s.cfg.OnInvalidate != nil {
				s.cfg.OnInvalidate()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("dictionary watcher error", slog.String("error", err.Error()))
		}
	}
}

func (s *Source) isCandidate(name string) bool {
	name = filepath.Clean(name)
	for _, path := range s.paths {
		if path == name {
			return true
		}
	}
	return false
}
