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
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a settable time source for TTL tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestSource(t *testing.T, ws string, ttl time.Duration) (*Source, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	src := NewSource(SourceConfig{Workspace: ws, DisplayLanguage: "ja", TTL: ttl})
	src.now = clock.Now
	return src, clock
}

func TestSource_Dictionary_LoadsDefaultLocation(t *testing.T) {
	ws := t.TempDir()
	writeFile(t, ws, "src/locales/ja.json", `{"greeting": "こんにちは"}`)

	src, _ := newTestSource(t, ws, time.Minute)

	assert.Equal(t, Dictionary{"greeting": "こんにちは"}, src.Dictionary(context.Background()))
	assert.Equal(t, []string{filepath.Join(ws, "src/locales/ja.json")}, src.Paths())
}

func TestSource_Dictionary_CachedUntilTTL(t *testing.T) {
	ws := t.TempDir()
	path := writeFile(t, ws, "src/locales/ja.json", `{"k": "old"}`)
	src, clock := newTestSource(t, ws, 2*time.Second)
	ctx := context.Background()

	require.Equal(t, "old", src.Dictionary(ctx)["k"])

	require.NoError(t, os.WriteFile(path, []byte(`{"k": "new"}`), 0o644))
	clock.Advance(time.Second)
	assert.Equal(t, "old", src.Dictionary(ctx)["k"], "served from cache while fresh")

	clock.Advance(time.Second)
	assert.Equal(t, "new", src.Dictionary(ctx)["k"], "reloaded after TTL")
}

func TestSource_Dictionary_ZeroTTLAlwaysReloads(t *testing.T) {
	ws := t.TempDir()
	path := writeFile(t, ws, "src/locales/ja.json", `{"k": "old"}`)
	src, _ := newTestSource(t, ws, 0)
	ctx := context.Background()

	require.Equal(t, "old", src.Dictionary(ctx)["k"])
	require.NoError(t, os.WriteFile(path, []byte(`{"k": "new"}`), 0o644))
	assert.Equal(t, "new", src.Dictionary(ctx)["k"])
}

func TestSource_Invalidate(t *testing.T) {
	ws := t.TempDir()
	path := writeFile(t, ws, "src/locales/ja.json", `{"k": "old"}`)
	src, _ := newTestSource(t, ws, time.Hour)
	ctx := context.Background()

	require.Equal(t, "old", src.Dictionary(ctx)["k"])
	require.NoError(t, os.WriteFile(path, []byte(`{"k": "new"}`), 0o644))

	src.Invalidate()
	assert.Equal(t, "new", src.Dictionary(ctx)["k"])
}

func TestSource_Dictionary_MissingFileIsEmpty(t *testing.T) {
	src, _ := newTestSource(t, t.TempDir(), time.Minute)

	dict := src.Dictionary(context.Background())

	require.NotNil(t, dict)
	assert.Empty(t, dict)
}

func TestSource_Dictionary_MalformedFileIsEmpty(t *testing.T) {
	ws := t.TempDir()
	writeFile(t, ws, "src/locales/ja.json", `{"k": `)
	src, _ := newTestSource(t, ws, time.Minute)

	dict := src.Dictionary(context.Background())

	require.NotNil(t, dict)
	assert.Empty(t, dict)
}

func TestSource_Dictionary_BaseLanguageFallback(t *testing.T) {
	ws := t.TempDir()
	writeFile(t, ws, "src/locales/pt.json", `{"greeting": "olá"}`)
	src := NewSource(SourceConfig{Workspace: ws, DisplayLanguage: "pt-BR", TTL: time.Minute})

	assert.Equal(t, "olá", src.Dictionary(context.Background())["greeting"])
}

func TestSource_Dictionary_Concurrent(t *testing.T) {
	ws := t.TempDir()
	writeFile(t, ws, "src/locales/ja.json", `{"k": "v"}`)
	src := NewSource(SourceConfig{Workspace: ws, TTL: time.Millisecond})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				assert.Equal(t, "v", src.Dictionary(context.Background())["k"])
			}
		}()
	}
	wg.Wait()
}

func TestSource_Watch_InvalidatesOnChange(t *testing.T) {
	ws := t.TempDir()
	path := writeFile(t, ws, "src/locales/ja.json", `{"k": "old"}`)

	var invalidations atomic.Int32
	src := NewSource(SourceConfig{
		Workspace:    ws,
		TTL:          time.Hour,
		OnInvalidate: func() { invalidations.Add(1) },
	})
	require.Equal(t, "old", src.Dictionary(context.Background())["k"])

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- src.Watch(ctx) }()

	// The watcher registers asynchronously; keep rewriting until it notices.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte(`{"k": "new"}`), 0o644)
		return invalidations.Load() > 0
	}, 5*time.Second, 50*time.Millisecond)

	assert.Equal(t, "new", src.Dictionary(context.Background())["k"])

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancellation")
	}
}

func TestSource_Watch_IgnoresOtherFiles(t *testing.T) {
	ws := t.TempDir()
	writeFile(t, ws, "src/locales/ja.json", `{"k": "v"}`)
	src := NewSource(SourceConfig{Workspace: ws, TTL: time.Hour})

	assert.True(t, src.isCandidate(filepath.Join(ws, "src/locales/ja.json")))
	assert.True(t, src.isCandidate(filepath.Join(ws, "src/locales/./ja.json")))
	assert.False(t, src.isCandidate(filepath.Join(ws, "src/locales/en.json")))
}
