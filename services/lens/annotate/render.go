// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package annotate

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// DefaultPrefix precedes every rendered text.
const DefaultPrefix = "· "

// Renderer prints annotations as "path:line:col  · text" lines.
//
// Lines and columns are one-based for people; the column counts bytes within
// the line, as compilers report it. Styling is applied only when the
// destination is a terminal.
type Renderer struct {
	w      io.Writer
	prefix string
	color  bool

	found   lipgloss.Style
	missing lipgloss.Style
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithPrefix replaces DefaultPrefix.
func WithPrefix(prefix string) RendererOption {
	return func(r *Renderer) {
		r.prefix = prefix
	}
}

// WithColor forces styling on or off.
func WithColor(enabled bool) RendererOption {
	return func(r *Renderer) {
		r.color = enabled
	}
}

// NewRenderer creates a Renderer writing to w.
func NewRenderer(w io.Writer, opts ...RendererOption) *Renderer {
	r := &Renderer{
		w:       w,
		prefix:  DefaultPrefix,
		color:   isTerminal(w),
		found:   lipgloss.NewStyle().Faint(true),
		missing: lipgloss.NewStyle().Faint(true).Italic(true).Foreground(lipgloss.Color("9")),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Render writes one line per annotation of the document at path.
func (r *Renderer) Render(path string, anns []Annotation) error {
	for _, ann := range anns {
		if _, err := fmt.Fprintf(r.w, "%s:%d:%d  %s\n", path, ann.Start.Line+1, ann.Start.Column+1, r.text(ann)); err != nil {
			return fmt.Errorf("render %s: %w", path, err)
		}
	}
	return nil
}

func (r *Renderer) text(ann Annotation) string {
	text := r.prefix + ann.Text
	if !r.color {
		return text
	}
	if ann.Found {
		return r.found.Render(text)
	}
	return r.missing.Render(text)
}
